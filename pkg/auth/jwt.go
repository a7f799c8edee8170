package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// contextKey avoids collisions with other packages' context keys,
// matching the teacher's pkg/common/context.go idiom.
type contextKey string

const claimsContextKey contextKey = "graphd.auth.claims"

// Claims is the JWT payload graphd's admin surface expects: a subject
// (operator identity) plus the request classes (spec.md §4.7's
// RequestClass) this token is authorized to submit.
type Claims struct {
	jwt.RegisteredClaims
	Classes []string `json:"classes,omitempty"`
}

// JWTValidator verifies bearer tokens presented to the admin HTTP
// surface (interfaces/http/rest), grounded on the teacher's
// interfaces/http/rest/middleware/auth.go HS256-keyed middleware shape.
type JWTValidator struct {
	secret []byte
	issuer string
}

// NewJWTValidator builds a validator keyed by secret and expecting the
// given issuer claim.
func NewJWTValidator(secret, issuer string) *JWTValidator {
	return &JWTValidator{secret: []byte(secret), issuer: issuer}
}

// ErrMissingToken is returned when no bearer token is present.
var ErrMissingToken = errors.New("auth: missing bearer token")

// Validate parses and verifies a raw "Bearer <token>" header value.
func (v *JWTValidator) Validate(authHeader string) (*Claims, error) {
	raw, ok := strings.CutPrefix(authHeader, "Bearer ")
	if !ok || raw == "" {
		return nil, ErrMissingToken
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("auth: unexpected signing method")
		}
		return v.secret, nil
	}, jwt.WithIssuer(v.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("auth: invalid token")
	}
	return claims, nil
}

// Middleware rejects requests without a valid bearer token and stashes
// the parsed Claims in the request context for downstream handlers
// (interfaces/http/rest/handlers) to read via ClaimsFromContext.
func (v *JWTValidator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := v.Validate(r.Header.Get("Authorization"))
		if err != nil {
			http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), claimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClaimsFromContext retrieves the Claims stashed by Middleware.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*Claims)
	return claims, ok
}

// Authorized reports whether claims permits the given request class
// (e.g. "write", "restore") per spec.md §4.7's class table.
func (c *Claims) Authorized(class string) bool {
	for _, allowed := range c.Classes {
		if allowed == class || allowed == "*" {
			return true
		}
	}
	return false
}

// NewToken issues a signed token for tests and the gld CLI's local
// debug mode; production tokens are minted by an operator's own
// identity provider, not by graphd itself.
func NewToken(secret, issuer, subject string, classes []string, ttl time.Duration) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
		Classes: classes,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
