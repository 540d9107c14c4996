package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/schoolhub/school-api/internal/httputil"
	"github.com/schoolhub/school-api/internal/user"
)

// ContextKey is a type for context keys to avoid collisions
type ContextKey string

const identityContextKey ContextKey = "auth_identity"

// Identity is the resolved caller attached to the request context.
type Identity struct {
	UserID int64
	Email  string
	Name   string
}

// Middleware handles authentication for protected routes
type Middleware struct {
	tokens TokenService
	users  UserStore
}

func NewMiddleware(tokens TokenService, users UserStore) *Middleware {
	return &Middleware{tokens: tokens, users: users}
}

// RequireAuth validates the bearer token, re-confirms the user still exists
// and attaches the caller's identity to the request context.
//
// Status codes are part of the external contract: 401 means "no usable
// identity, authenticate again" (missing token, vanished user), 403 means
// "identity understood but the credential was rejected" (expired, invalid).
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			httputil.RespondErrorDetail(w, "Access token required",
				"Authorization header with Bearer token is required", http.StatusUnauthorized)
			return
		}

		claims, err := m.tokens.Verify(token)
		if err != nil {
			switch {
			case errors.Is(err, ErrTokenExpired):
				httputil.RespondErrorDetail(w, "Token expired",
					"Please login again", http.StatusForbidden)
			case errors.Is(err, ErrTokenMalformed):
				httputil.RespondErrorDetail(w, "Invalid token",
					"Token is malformed or invalid", http.StatusForbidden)
			default:
				httputil.RespondErrorDetail(w, "Token verification failed",
					err.Error(), http.StatusInternalServerError)
			}
			return
		}

		// The token may outlive the account it was issued for.
		existing, err := m.users.GetByID(r.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				httputil.RespondErrorDetail(w, "Invalid token",
					"User associated with token no longer exists", http.StatusUnauthorized)
				return
			}
			httputil.RespondErrorDetail(w, "Token verification failed",
				err.Error(), http.StatusInternalServerError)
			return
		}

		identity := Identity{
			UserID: existing.ID,
			Email:  claims.Email,
			Name:   existing.Name,
		}
		ctx := context.WithValue(r.Context(), identityContextKey, identity)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// IdentityFromContext extracts the authenticated caller from the request context.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(Identity)
	return identity, ok
}

func bearerToken(header string) (string, bool) {
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
