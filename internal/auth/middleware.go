package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/slooze/foodorder/internal/platform/httpx"
	"github.com/slooze/foodorder/internal/rbac"
	"github.com/slooze/foodorder/internal/shared"
)

// Verifier resolves bearer tokens.
type Verifier interface {
	Verify(ctx context.Context, token string) (rbac.Principal, error)
}

// BearerToken extracts the token from an Authorization header.
func BearerToken(r *http.Request) (string, bool) {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// Authenticate rejects requests without a valid bearer token and stores the
// principal on the request context.
func Authenticate(v Verifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := BearerToken(r)
			if !ok {
				httpx.RespondError(w, fmt.Errorf("%w: missing bearer token", shared.ErrUnauthenticated))
				return
			}
			p, err := v.Verify(r.Context(), token)
			if err != nil {
				if logger != nil && shared.ErrorCode(err) == "INTERNAL" {
					logger.Error("auth: verify token", slog.Any("error", err))
				}
				httpx.RespondError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(rbac.ContextWithPrincipal(r.Context(), p)))
		})
	}
}
