package api

import (
	"net/http"
	"time"

	"leafloop/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func (s *Server) RegisterRoutes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(s.logger))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.corsOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           int((5 * time.Minute).Seconds()),
	}))

	r.Get("/healthz", s.healthz)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", s.register)
		r.Post("/auth/login", s.login)
		r.Get("/users/leaderboard", s.leaderboard)
		r.Get("/users/{id}", s.getProfile)
		r.Get("/users/{id}/ratings", s.listRatings)
		r.Get("/items", s.listItems)
		r.Get("/items/{id}", s.getItem)

		r.Group(func(r chi.Router) {
			r.Use(s.auth.Middleware)

			r.Post("/auth/logout", s.logout)
			r.Get("/users/me", s.me)
			r.With(middleware.OwnerOrAdmin).Get("/users/{id}/transactions", s.listUserTransactions)

			r.Post("/items", s.createItem)
			r.Put("/items/{id}", s.updateItem)
			r.Put("/items/{id}/availability", s.setAvailability)

			r.Post("/transactions", s.initiateTransaction)
			r.Get("/transactions", s.listMyTransactions)
			r.Get("/transactions/{id}", s.getTransaction)
			r.Put("/transactions/{id}/status", s.updateTransactionStatus)
			r.Post("/transactions/{id}/confirm", s.confirmTransaction)
			r.Post("/transactions/{id}/ratings", s.rateTransaction)

			r.With(middleware.AdminOnly).Get("/admin/transactions", s.listAllTransactions)
		})
	})

	return r
}
