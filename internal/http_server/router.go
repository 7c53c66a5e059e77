package httpserver

import (
	"log/slog"

	"message_service/internal/auth"
	"message_service/internal/http_server/handlers/logout"
	"message_service/internal/http_server/handlers/messages"
	registerhandler "message_service/internal/http_server/handlers/register"
	"message_service/internal/http_server/handlers/token"
	"message_service/internal/http_server/middleware/authn"
	"message_service/internal/messaging"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
)

// New builds the full route tree. Everything under /messages goes through
// the authn middleware; register/token/logout do not.
func New(
	log *slog.Logger,
	authService *auth.Auth,
	msgService *messaging.Messaging,
	allowedOrigins []string,
) *chi.Mux {
	validate := validator.New()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Post("/register",
		registerhandler.New(log, validate, authService),
	)
	r.Post("/register-form",
		registerhandler.NewForm(log, authService),
	)
	r.Post("/token",
		token.New(log, authService),
	)
	r.Post("/logout",
		logout.New(log, authService),
	)

	r.Route("/messages", func(r chi.Router) {
		r.Use(authn.New(log, authService))

		r.Post("/", messages.NewCreate(log, validate, msgService))
		r.Get("/", messages.NewList(log, msgService))
		r.Put("/{id}", messages.NewUpdate(log, validate, msgService))
		r.Delete("/{id}", messages.NewDelete(log, msgService))
	})

	return r
}
