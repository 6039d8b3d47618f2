package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/taskify-api/shared/auth"
)

// RouterConfig holds the dependencies for building the HTTP router.
type RouterConfig struct {
	AuthHandler *AuthHandler
	TaskHandler *TaskHandler
	UserHandler *UserHandler
	JWTAuth     auth.JWTAuthenticator
	TokenSecret string
	Logger      *zerolog.Logger
}

// NewRouter builds the chi router with the full API surface.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(RequestLogger(cfg.Logger))
	r.Use(middleware.Recoverer)

	authenticated := Authenticate(cfg.JWTAuth, cfg.TokenSecret)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: "ok"})
	})

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", cfg.AuthHandler.Register)
		r.Get("/verify/{token}", cfg.AuthHandler.VerifyEmail)
		r.Post("/login", cfg.AuthHandler.Login)
		r.Post("/google", cfg.AuthHandler.GoogleLogin)
		r.Post("/guest", cfg.AuthHandler.GuestLogin)
		r.Post("/logout", cfg.AuthHandler.Logout)
		r.Post("/forgot-password", cfg.AuthHandler.ForgotPassword)
		r.Post("/reset-password/{token}", cfg.AuthHandler.ResetPassword)

		r.With(authenticated).Post("/change-password", cfg.AuthHandler.ChangePassword)
	})

	r.Route("/api/tasks", func(r chi.Router) {
		r.Use(authenticated)

		r.Get("/", cfg.TaskHandler.List)
		r.Get("/stats", cfg.TaskHandler.Stats)
		r.Get("/overdue", cfg.TaskHandler.ListOverdue)
		r.Post("/", cfg.TaskHandler.Create)
		r.Get("/{id}", cfg.TaskHandler.Get)
		r.Put("/{id}", cfg.TaskHandler.Update)
		r.Delete("/{id}", cfg.TaskHandler.Delete)
		r.Post("/{id}/subtasks", cfg.TaskHandler.AddSubtask)
		r.Put("/{id}/subtasks/{subtaskID}", cfg.TaskHandler.UpdateSubtask)
	})

	r.Route("/api/users", func(r chi.Router) {
		r.Use(authenticated)

		r.Get("/me", cfg.UserHandler.Me)
		r.Put("/profile", cfg.UserHandler.UpdateProfile)
		r.Put("/change-password", cfg.AuthHandler.ChangePassword)
		r.Get("/search/{query}", cfg.UserHandler.Search)
		r.Get("/{id}", cfg.UserHandler.Get)
	})

	return r
}
