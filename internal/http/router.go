package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/signalix/otplogin/internal/auth"
	"github.com/signalix/otplogin/internal/http/handlers"
	"github.com/signalix/otplogin/internal/middleware"
)

// NewRouter creates a new HTTP router with all routes configured
func NewRouter(loginHandler *handlers.LoginHandler, dashboardHandler *handlers.DashboardHandler, verifier auth.TokenVerifier, secureCookies bool) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimw.Recoverer)

	healthHandler := handlers.NewHealthHandler()
	r.Get("/health", healthHandler.ServeHTTP)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, middleware.LoginPath, http.StatusSeeOther)
	})

	r.Get("/login", loginHandler.ShowLogin)
	r.Post("/send-otp", loginHandler.HandleSendOTP)
	r.Get("/verify-otp", loginHandler.ShowVerifyOTP)
	r.Post("/verify-otp", loginHandler.HandleVerifyOTP)
	r.Post("/logout", loginHandler.HandleLogout)

	// Protected routes (require a valid provider session)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireSession(verifier, secureCookies))
		r.Get("/dashboard", dashboardHandler.ServeHTTP)
	})

	return r
}
