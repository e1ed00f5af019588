package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/good-pics/backend/internal/middleware"
)

func NewRouter(handler *Handler, authMiddleware *middleware.AuthMiddleware, allowedOrigins []string, uploadsDir string) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Generated images are served as static files.
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadsDir))))

	// Auth routes (public)
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", handler.Register)
		r.Post("/login", handler.Login)
		r.Post("/refresh", handler.Refresh)
		r.Post("/logout", handler.Logout)
	})

	r.Get("/flux/health", handler.FluxHealth)

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)

		r.Route("/users", func(r chi.Router) {
			r.Get("/profile/me", handler.GetProfile)
			r.Get("/profile/sessions", handler.MySessionEvents)
			r.With(authMiddleware.AdminOnly).Get("/all", handler.ListUsers)
			r.With(authMiddleware.AdminOnly).Get("/login-events", handler.SessionEvents)
			r.Get("/{id}", handler.GetUser)
			r.Patch("/{id}", handler.UpdateUser)
			r.Delete("/{id}", handler.DeleteUser)
		})

		r.Route("/flux", func(r chi.Router) {
			r.Post("/generate-and-save", handler.GenerateAndSave)
			r.Post("/generate-file", handler.GenerateFile)
		})

		r.Route("/images", func(r chi.Router) {
			r.Get("/my-images", handler.MyImages)
			r.Delete("/{id}", handler.DeleteImage)
		})

		r.Route("/chat", func(r chi.Router) {
			r.Post("/message", handler.SendChatMessage)
			r.Get("/history", handler.ChatHistory)
			r.Get("/conversations", handler.ChatConversations)
			r.Delete("/conversation/{conversationId}", handler.DeleteConversation)
		})

		r.Route("/chat-settings", func(r chi.Router) {
			r.Get("/", handler.GetChatSettings)
			r.Put("/", handler.UpdateChatSettings)
			r.Delete("/", handler.DeleteChatSettings)
		})
	})

	return r
}
