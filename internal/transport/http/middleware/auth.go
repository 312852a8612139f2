package middleware

import (
	"context"
	"net/http"
	"strings"

	"goalspark/internal/domain/auth"
	"goalspark/internal/transport/http/api"
)

// UserLoader resolves a token's subject to the current user record so the
// context carries fresh role and manager data, not token-time values.
type UserLoader interface {
	FindByID(ctx context.Context, userID string) (auth.User, error)
}

// Auth parses a bearer token when present and stashes the user on the
// context. Requests without a valid token pass through anonymous; route
// guards decide what requires authentication.
func Auth(secret string, users UserLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := auth.ParseToken(secret, parts[1])
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			userCtx := auth.UserContext{UserID: claims.UserID, Role: claims.Role}
			if users != nil {
				user, err := users.FindByID(r.Context(), claims.UserID)
				if err != nil {
					// Deactivated or deleted since the token was issued.
					next.ServeHTTP(w, r)
					return
				}
				userCtx = auth.UserContext{
					UserID:    user.ID,
					Email:     user.Email,
					Role:      user.Role,
					ManagerID: user.ManagerID,
					FullName:  user.FullName(),
				}
			}

			ctx := context.WithValue(r.Context(), ctxKeyUser, userCtx)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetUser(r.Context()); !ok {
			api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", GetRequestID(r.Context()))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := GetUser(r.Context())
		if !ok {
			api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", GetRequestID(r.Context()))
			return
		}
		if !user.IsAdmin() {
			api.Fail(w, http.StatusForbidden, "forbidden", "manager access required", GetRequestID(r.Context()))
			return
		}
		next.ServeHTTP(w, r)
	})
}
