package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/slooze/foodorder/internal/rbac"
	"github.com/slooze/foodorder/internal/shared"
)

type tokenClaims struct {
	Email  string  `json:"email"`
	Role   string  `json:"role"`
	Region *string `json:"region"`
	jwt.RegisteredClaims
}

// Claims is the verified content of an access token.
type Claims struct {
	Principal rbac.Principal
	TokenID   string
	ExpiresAt time.Time
}

// Tokens mints and verifies HS256 access tokens.
type Tokens struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewTokens builds a token codec. secret must not be empty.
func NewTokens(secret, issuer string, ttl time.Duration) (*Tokens, error) {
	if secret == "" {
		return nil, errors.New("auth: empty token secret")
	}
	if ttl <= 0 {
		return nil, errors.New("auth: token ttl must be positive")
	}
	return &Tokens{secret: []byte(secret), issuer: issuer, ttl: ttl, now: time.Now}, nil
}

// Issue signs a token for p.
func (t *Tokens) Issue(p rbac.Principal) (string, time.Time, error) {
	now := t.now().UTC()
	exp := now.Add(t.ttl)
	var region *string
	if p.Region != nil {
		r := string(*p.Region)
		region = &r
	}
	c := tokenClaims{
		Email:  p.Email,
		Role:   string(p.Role),
		Region: region,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID,
			Issuer:    t.issuer,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, exp, nil
}

// Parse verifies the signature, algorithm, issuer and expiry of raw and
// rebuilds the principal. Every failure wraps shared.ErrUnauthenticated.
func (t *Tokens) Parse(raw string) (Claims, error) {
	var c tokenClaims
	_, err := jwt.ParseWithClaims(raw, &c, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", shared.ErrUnauthenticated, err)
	}

	p := rbac.Principal{ID: c.Subject, Email: c.Email, Role: rbac.Role(c.Role)}
	if c.Region != nil {
		p.Region = rbac.RegionPtr(rbac.Region(*c.Region))
	}
	if err := p.Validate(); err != nil {
		return Claims{}, fmt.Errorf("%w: %v", shared.ErrUnauthenticated, err)
	}
	if c.ID == "" {
		return Claims{}, fmt.Errorf("%w: token without id", shared.ErrUnauthenticated)
	}
	return Claims{Principal: p, TokenID: c.ID, ExpiresAt: c.ExpiresAt.Time}, nil
}
