package messages

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"message_service/internal/http_server/middleware/authn"
	resp "message_service/internal/lib/api/response"
	"message_service/internal/messaging"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

func NewDelete(
	log *slog.Logger,
	msgService *messaging.Messaging,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.messages.NewDelete"

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

		id, err := messageID(r)
		if err != nil {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, resp.Error("message not found"))

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		msg, err := msgService.Delete(ctx, caller, id)
		if err != nil {
			respondOwnershipError(w, r, log, err)
			return
		}

		render.JSON(w, r, MessageResponse{
			Response: resp.OK(),
			Message:  msg,
		})
	}
}
