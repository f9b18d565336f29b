package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/taskpad/taskpad-go/internal/crypto"
	"github.com/taskpad/taskpad-go/internal/model"
	"github.com/taskpad/taskpad-go/internal/repository"
)

// Principal is the resolved identity attached to the request context by the
// auth gate. Downstream handlers get a typed value, never a loose id.
type Principal struct {
	UserID string
	User   *model.User
}

type contextKey int

const principalKey contextKey = iota

// UserLoader resolves a user id to its record. The auth gate uses it to
// reject tokens for deleted accounts.
type UserLoader interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
}

// Authenticate returns middleware that verifies the bearer token, loads the
// user and attaches a Principal to the context. Expired tokens get their own
// message so clients can distinguish re-login from tampering.
func Authenticate(tokens *crypto.TokenManager, users UserLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			token, found := strings.CutPrefix(authHeader, "Bearer ")
			if authHeader == "" || !found || token == "" {
				writeUnauthorized(w, "Access token required")
				return
			}

			userID, err := tokens.Verify(token, crypto.PurposeSession)
			if err != nil {
				if errors.Is(err, crypto.ErrTokenExpired) {
					writeUnauthorized(w, "Token expired")
					return
				}
				writeUnauthorized(w, "Invalid token")
				return
			}

			user, err := users.GetByID(r.Context(), userID)
			if err != nil {
				if errors.Is(err, repository.ErrUserNotFound) {
					writeUnauthorized(w, "User not found")
					return
				}
				writeError(w, http.StatusInternalServerError, "internal server error")
				return
			}

			ctx := context.WithValue(r.Context(), principalKey, &Principal{UserID: user.ID, User: user})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PrincipalFromContext extracts the authenticated principal, if any.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey).(*Principal)
	return p, ok
}

func writeUnauthorized(w http.ResponseWriter, msg string) {
	writeError(w, http.StatusUnauthorized, msg)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(model.Envelope{Success: false, Message: msg})
}
