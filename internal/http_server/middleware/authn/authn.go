package authn

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	resp "message_service/internal/lib/api/response"
	sl "message_service/internal/lib/logger"
	"message_service/internal/models"

	"github.com/go-chi/render"
)

type ctxKey int

const userKey ctxKey = 0

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (models.User, error)
}

// New resolves the bearer token and puts the user into the request context.
// Every failure, whatever the internal cause, gets the same 401 body.
func New(log *slog.Logger, auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middleware.authn.New"

			token, ok := BearerToken(r)
			if !ok {
				unauthenticated(w, r)
				return
			}

			user, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				log.Debug("authentication failed", slog.String("op", op), sl.Err(err))
				unauthenticated(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(
				context.WithValue(r.Context(), userKey, user),
			))
		})
	}
}

// BearerToken extracts the token from the Authorization header.
func BearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}

	return parts[1], true
}

// UserFromContext returns the authenticated user placed by the middleware.
func UserFromContext(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(userKey).(models.User)
	return user, ok
}

func unauthenticated(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusUnauthorized)
	render.JSON(w, r, resp.Error("invalid credentials"))
}
