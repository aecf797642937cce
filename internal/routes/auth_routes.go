package routes

import (
	"github.com/go-chi/chi/v5"

	"expensetracker/internal/handlers"
	"expensetracker/internal/middleware"
)

func RegisterAuthRoutes(router chi.Router, deps Deps) {
	authHandler := handlers.NewAuthHandler(deps.Auth, deps.Logger)

	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/forgot-password", authHandler.ForgotPassword)
		r.Get("/verify-reset-token/{token}", authHandler.VerifyResetToken)
		r.Post("/reset-password", authHandler.ResetPassword)
		r.With(middleware.JWTAuth(deps.Tokens)).Get("/me", authHandler.Me)
	})
}
