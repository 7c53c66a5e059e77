package token

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"message_service/internal/auth"
	resp "message_service/internal/lib/api/response"
	sl "message_service/internal/lib/logger"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type Response struct {
	resp.Response
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Username    string `json:"username"`
	UserID      int64  `json:"user_id"`
}

// New exchanges form credentials for a bearer access token.
func New(
	log *slog.Logger,
	authService *auth.Auth,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.token.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		if err := r.ParseForm(); err != nil {
			log.Error("failed to parse form", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("failed to decode request"))

			return
		}

		username := r.PostFormValue("username")
		pass := r.PostFormValue("password")

		if username == "" || pass == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("username and password are required"))

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		accessToken, user, err := authService.Login(ctx, username, pass)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, resp.Error("invalid credentials"))

				return
			}

			log.Error("failed to login user", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("internal error"))

			return
		}

		log.Info("user logged in successfully")

		render.JSON(w, r, Response{
			Response:    resp.OK(),
			AccessToken: accessToken,
			TokenType:   "bearer",
			Username:    user.Username,
			UserID:      user.ID,
		})
	}
}
