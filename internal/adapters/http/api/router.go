package api

import (
	"net/http"

	"github.com/Entinus-oss/howmuchtime/internal/adapters/http/swagger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Router builds the chi router with the full middleware chain and every
// dashboard route attached.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", metricsHandler("healthz", s.handleHealth))
	r.Get("/api-docs", swagger.Docs)
	r.Get("/openapi.yaml", swagger.Spec)

	r.Route("/api", func(r chi.Router) {
		r.Get("/resolve", metricsHandler("resolve", s.handleResolve))

		r.Route("/profile/{account}", func(r chi.Router) {
			r.Get("/", metricsHandler("profile", s.handleOverview))
			r.Get("/friends", metricsHandler("friends", s.handleFriends))
			r.Get("/rankings", metricsHandler("rankings", s.handleRankings))
			r.Get("/achievements", metricsHandler("achievements", s.handleAchievements))
			r.Get("/games", metricsHandler("games", s.handleGameDetails))
		})

		r.Route("/auth", func(r chi.Router) {
			r.Get("/login", metricsHandler("auth_login", s.handleLogin))
			r.Get("/callback", metricsHandler("auth_callback", s.handleCallback))
			r.Post("/logout", metricsHandler("auth_logout", s.handleLogout))
			r.Get("/me", metricsHandler("auth_me", s.handleMe))
		})

		r.Route("/recent", func(r chi.Router) {
			r.Get("/", metricsHandler("recent_list", s.handleRecents))
			r.Post("/", metricsHandler("recent_touch", s.handleTouchAccount))
		})
	})

	return r
}
