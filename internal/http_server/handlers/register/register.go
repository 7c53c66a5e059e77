package register

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
	"github.com/go-playground/validator/v10"
)

type Request struct {
	Username string `json:"username" validate:"required"`
	Pass     string `json:"password" validate:"required"`
}

type Response struct {
	resp.Response
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

func New(
	log *slog.Logger,
	validate *validator.Validate,
	authService *auth.Auth,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.register.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req Request

		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			log.Error("failed to decode request body", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("failed to decode request"))

			return
		}

		log.Info("request body decoded")

		if err := validate.Struct(req); err != nil {
			validateErr := err.(validator.ValidationErrors)

			log.Error("invalid request", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.ValidationError(validateErr))

			return
		}

		registerUser(w, r, log, authService, req.Username, req.Pass)
	}
}

// NewForm handles the form-encoded variant of registration.
func NewForm(
	log *slog.Logger,
	authService *auth.Auth,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.register.NewForm"

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

		registerUser(w, r, log, authService, username, pass)
	}
}

func registerUser(
	w http.ResponseWriter,
	r *http.Request,
	log *slog.Logger,
	authService *auth.Auth,
	username, pass string,
) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	user, err := authService.RegisterNewUser(ctx, username, pass)
	if err != nil {
		if errors.Is(err, auth.ErrUserExists) {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("username already registered"))

			return
		}

		log.Error("failed to register user", sl.Err(err))

		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, resp.Error("internal error"))

		return
	}

	log.Info("user registered", slog.Int64("id", user.ID))

	render.JSON(w, r, Response{
		Response: resp.OK(),
		ID:       user.ID,
		Username: user.Username,
	})
}
