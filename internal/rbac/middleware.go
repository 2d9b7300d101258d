package rbac

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/slooze/foodorder/internal/platform/httpx"
	"github.com/slooze/foodorder/internal/shared"
)

// AccessObserver receives every guard decision.
type AccessObserver interface {
	ObserveAccess(op string, allowed bool)
}

// Middleware wires role gate helpers for HTTP handlers.
type Middleware struct {
	Logger   *slog.Logger
	Observer AccessObserver
}

// Guard ensures the request carries a principal permitted to perform op.
func (m Middleware) Guard(op Operation) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFromContext(r.Context())
			if !ok {
				httpx.RespondError(w, fmt.Errorf("%w: missing principal", shared.ErrUnauthenticated))
				return
			}
			err := Permit(p, op)
			if m.Observer != nil {
				m.Observer.ObserveAccess(string(op), err == nil)
			}
			if err != nil {
				if m.Logger != nil {
					m.Logger.Warn("rbac guard denied",
						slog.String("operation", string(op)),
						slog.String("principal", p.ID),
						slog.String("role", string(p.Role)),
					)
				}
				httpx.RespondError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
