package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/pawmart/pawmart/internal/api/handlers"
	"github.com/pawmart/pawmart/internal/api/middleware"
)

// NewRouter creates the HTTP router with all API routes.
func NewRouter(h *handlers.Handlers, resolver middleware.Resolver) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(middleware.Logger)
	r.Use(middleware.Telemetry)
	r.Use(middleware.Auth(resolver))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health & info
	r.Get("/health", h.Health)
	r.Get("/version", h.GetVersion)

	r.Route("/api", func(r chi.Router) {
		// Assistant — anonymous turns allowed (catalog browsing works
		// without an account; the executors enforce the rest)
		r.Post("/chat/completions", h.ChatCompletions)

		// Accounts
		r.Post("/signup", h.Signup)
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.With(middleware.RequireAuth).Get("/userinfo", h.UserInfo)

		// Catalog (public)
		r.Get("/products", h.ListProducts)
		r.Get("/carousel", h.Carousel)

		// Orders
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Get("/orders", h.ListOrders)
			r.Delete("/orders/{orderId}", h.DeleteOrder)
			r.Post("/buy", h.Buy)

			// Cart
			r.Get("/cart", h.ListCart)
			r.Post("/cart", h.AddCartItem)
			r.Delete("/cart/{itemId}", h.DeleteCartItem)
		})
	})

	return r
}
