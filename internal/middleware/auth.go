// internal/middleware/auth.go
package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	appErrors "github.com/unclebandit/campaignhub-backend/internal/errors"
	"github.com/unclebandit/campaignhub-backend/internal/service"
)

type contextKey int

const ownerKey contextKey = iota

// OwnerID returns the authenticated user resolved by Authenticator. Zero
// value means the request did not pass through it.
func OwnerID(r *http.Request) int {
	id, _ := r.Context().Value(ownerKey).(int)
	return id
}

// WithOwner injects an owner ID directly, for tests.
func WithOwner(r *http.Request, ownerID int) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), ownerKey, ownerID))
}

// Authenticator resolves the Bearer token to an owner ID. Token and session
// failures reject with 401; a live session whose email is still unconfirmed
// rejects with 403 so clients can prompt for the verification code.
func Authenticator(auth *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				reject(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			ownerID, err := auth.Verify(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				var uv *appErrors.UnverifiedError
				if errors.As(err, &uv) {
					reject(w, http.StatusForbidden, uv.Error())
					return
				}
				reject(w, http.StatusUnauthorized, "invalid or expired session")
				return
			}

			next.ServeHTTP(w, WithOwner(r, ownerID))
		})
	}
}

func reject(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": msg})
}
