package http

import (
	"net/http"

	wsDelivery "matchmaker/internal/delivery/websocket"
	"matchmaker/internal/entity"

	"github.com/go-chi/chi/v5"
)

type Handlers struct {
	Auth    *AuthHandler
	User    *UserHandler
	Chat    *ChatHandler
	Product *ProductHandler
	Health  http.HandlerFunc
}

func MapHttpRoutes(r chi.Router, h Handlers, websocketHandler *wsDelivery.WebsocketHandler, authMiddleware *AuthMiddleware, rateLimiter *RateLimiter) {
	if h.Health != nil {
		r.Get("/health", h.Health)
	}
	if websocketHandler != nil {
		r.Get("/ws", websocketHandler.HandleWebSocket)
	}

	r.Route("/api", func(r chi.Router) {
		// Auth routes (public, rate limited)
		r.Route("/auth", func(r chi.Router) {
			r.Use(rateLimiter.Limit)
			r.Post("/register", h.Auth.Register)
			r.Post("/login", h.Auth.Login)
			r.Post("/refresh", h.Auth.RefreshToken)
			r.Post("/logout", h.Auth.Logout)

			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.Authenticate)
				r.Post("/logout-all", h.Auth.LogoutAllDevices)
			})
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.Product.ListProducts)
			r.Get("/{id}", h.Product.GetProduct)

			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.Authenticate)
				r.Post("/", h.Product.CreateProduct)
				r.Put("/{id}", h.Product.UpdateProduct)
				r.Delete("/{id}", h.Product.DeleteProduct)
			})
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Route("/user", func(r chi.Router) {
				r.Get("/", h.User.Discover)
				r.Post("/like", h.User.Like)
				r.Post("/match", h.User.CreateMatch)
				r.Delete("/match/{selectedUserId}", h.User.Unmatch)
				r.Get("/{id}", h.User.GetUser)

				r.Group(func(r chi.Router) {
					r.Use(RequireOwner("id"))
					r.Delete("/{id}", h.User.DeleteUser)
					r.Put("/{id}/gender", h.User.UpdateGender)
					r.Put("/{id}/description", h.User.UpdateDescription)
					r.Post("/{id}/turn-ons", h.User.AddToList(entity.ListTurnOns))
					r.Delete("/{id}/turn-ons", h.User.RemoveFromList(entity.ListTurnOns))
					r.Post("/{id}/looking-for", h.User.AddToList(entity.ListLookingFor))
					r.Delete("/{id}/looking-for", h.User.RemoveFromList(entity.ListLookingFor))
					r.Post("/{id}/profile-images", h.User.AddToList(entity.ListProfileImages))
					r.Delete("/{id}/profile-images", h.User.RemoveFromList(entity.ListProfileImages))
					r.Get("/{id}/received-likes", h.User.ReceivedLikes)
					r.Get("/{id}/matches", h.User.Matches)
				})
			})

			r.Route("/chat", func(r chi.Router) {
				r.Get("/messages", h.Chat.GetMessages)
				r.Post("/messages", h.Chat.SendMessage)
				r.Delete("/messages", h.Chat.DeleteMessages)
				r.Get("/messages/{id}", h.Chat.GetMessage)
			})
		})
	})
}
