package messages

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"message_service/internal/http_server/middleware/authn"
	resp "message_service/internal/lib/api/response"
	sl "message_service/internal/lib/logger"
	"message_service/internal/messaging"
	"message_service/internal/models"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

const defaultLimit = 10

type ListResponse struct {
	resp.Response
	Messages []models.Message `json:"messages"`
}

func NewList(
	log *slog.Logger,
	msgService *messaging.Messaging,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.messages.NewList"

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

		skip := queryInt(r, "skip", 0)
		limit := queryInt(r, "limit", defaultLimit)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		msgs, err := msgService.List(ctx, caller, skip, limit)
		if err != nil {
			log.Error("failed to list messages", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("internal error"))

			return
		}

		render.JSON(w, r, ListResponse{
			Response: resp.OK(),
			Messages: msgs,
		})
	}
}

func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}

	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return def
	}

	return v
}
