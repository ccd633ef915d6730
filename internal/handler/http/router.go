package http

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/letusconnect/connect-gateway-go/internal/handler/http/middleware"
	"github.com/letusconnect/connect-gateway-go/internal/pkg/jwt"
)

func NewRouter(
	JWTService jwt.Service,
	unreadHandler UnreadHandler,
	chatsHandler ChatsHandler,
	sessionHandler SessionHandler,
	notificationHandler NotificationHandler,
	frontendURL string,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "connect-gateway"),
		slog.String("version", "v1.0.0"),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{frontendURL},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {

		// SSE stream authenticates via its own short-lived token
		r.Get("/notifications/stream", notificationHandler.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

			r.Route("/unread", func(r chi.Router) {
				r.Get("/", unreadHandler.State)
				r.Post("/refetch", unreadHandler.Refetch)
			})

			r.Get("/chats", chatsHandler.List)

			r.Route("/session", func(r chi.Router) {
				r.Put("/selected-chat", sessionHandler.SelectChat)
				r.Delete("/selected-chat", sessionHandler.ClearChat)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/stats", notificationHandler.Stats)
				r.Get("/unread-count", notificationHandler.UnreadCount)
				r.Post("/{id}/read", notificationHandler.MarkRead)
				r.Get("/stream-token", notificationHandler.GetStreamToken)
			})
		})
	})
	return r
}
