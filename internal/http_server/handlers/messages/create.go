package messages

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"message_service/internal/http_server/middleware/authn"
	resp "message_service/internal/lib/api/response"
	sl "message_service/internal/lib/logger"
	"message_service/internal/messaging"
	"message_service/internal/models"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type CreateRequest struct {
	Content string `json:"content" validate:"required"`
}

type MessageResponse struct {
	resp.Response
	Message models.Message `json:"message"`
}

func NewCreate(
	log *slog.Logger,
	validate *validator.Validate,
	msgService *messaging.Messaging,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.messages.NewCreate"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		caller, ok := authn.UserFromContext(r.Context())
		if !ok {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, resp.Error("invalid credentials"))

			return
		}

		var req CreateRequest

		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			log.Error("failed to decode request body", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("failed to decode request"))

			return
		}

		if err := validate.Struct(req); err != nil {
			validateErr := err.(validator.ValidationErrors)

			log.Error("invalid request", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.ValidationError(validateErr))

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		msg, err := msgService.Create(ctx, caller, req.Content)
		if err != nil {
			log.Error("failed to create message", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("internal error"))

			return
		}

		render.JSON(w, r, MessageResponse{
			Response: resp.OK(),
			Message:  msg,
		})
	}
}
