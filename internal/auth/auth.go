// Package auth resolves the user behind an API request.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"strings"
)

// ErrUnauthorized is returned for a missing, invalid or expired token.
var ErrUnauthorized = errors.New("unauthorized")

// User is an authenticated caller. Token is the bearer token it presented.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
	Token string `json:"-"`
}

// Verifier checks a bearer token.
type Verifier interface {
	Verify(ctx context.Context, token string) (User, error)
}

type ctxKey int

const (
	userKey ctxKey = iota
	claimedIDKey
)

// UserFrom returns the user stored by Middleware.
func UserFrom(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(userKey).(User)
	return u, ok
}

// WithUser stores u in ctx.
func WithUser(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// UserIDHeader names the header a StaticVerifier takes the user id from.
const UserIDHeader = "X-User-ID"

// Middleware rejects requests without a valid bearer token and stores the
// verified User in the request context.
func Middleware(v Verifier, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				http.Error(w, `{"error":"missing authorization"}`, http.StatusUnauthorized)
				return
			}
			token := strings.TrimPrefix(header, "Bearer ")

			ctx := context.WithValue(r.Context(), claimedIDKey, r.Header.Get(UserIDHeader))
			user, err := v.Verify(ctx, token)
			if err != nil {
				if !errors.Is(err, ErrUnauthorized) {
					log.Error("verify token", "error", err)
				}
				http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// DefaultUserID is used by StaticVerifier when no X-User-ID header is sent.
const DefaultUserID = "local"

// StaticVerifier accepts a single shared API key. The user id comes from the
// X-User-ID header; it is meant for local and single-tenant deployments.
type StaticVerifier struct {
	APIKey string
}

func (v StaticVerifier) Verify(ctx context.Context, token string) (User, error) {
	if v.APIKey == "" || subtle.ConstantTimeCompare([]byte(token), []byte(v.APIKey)) != 1 {
		return User{}, ErrUnauthorized
	}
	id, _ := ctx.Value(claimedIDKey).(string)
	id = strings.TrimSpace(id)
	if id == "" {
		id = DefaultUserID
	}
	return User{ID: id, Token: token}, nil
}
