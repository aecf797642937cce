package routes

import (
	"github.com/go-chi/chi/v5"

	"expensetracker/internal/handlers"
	"expensetracker/internal/repository"
)

func RegisterCategoryRoutes(router chi.Router, deps Deps) {
	categoryHandler := handlers.NewCategoryHandler(repository.NewCategoryRepository(deps.DB), deps.Logger)

	router.Route("/categories", func(r chi.Router) {
		r.Get("/", categoryHandler.ListCategories)
		r.Post("/", categoryHandler.CreateCategory)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", categoryHandler.GetCategory)
			r.Patch("/", categoryHandler.UpdateCategory)
			r.Delete("/", categoryHandler.DeleteCategory)
		})
	})
}

func RegisterCreditCardRoutes(router chi.Router, deps Deps) {
	cardHandler := handlers.NewCreditCardHandler(repository.NewCreditCardRepository(deps.DB), deps.Logger)

	router.Route("/credit-cards", func(r chi.Router) {
		r.Get("/", cardHandler.ListCreditCards)
		r.Post("/", cardHandler.CreateCreditCard)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", cardHandler.GetCreditCard)
			r.Patch("/", cardHandler.UpdateCreditCard)
			r.Delete("/", cardHandler.DeleteCreditCard)
		})
	})
}

func RegisterBudgetRoutes(router chi.Router, deps Deps) {
	budgetHandler := handlers.NewBudgetHandler(
		repository.NewBudgetRepository(deps.DB),
		repository.NewCategoryRepository(deps.DB),
		deps.Logger,
	)

	router.Route("/budget", func(r chi.Router) {
		r.Get("/", budgetHandler.GetBudget)
		r.Post("/items", budgetHandler.CreateBudgetItem)
		r.Patch("/items/{id}", budgetHandler.UpdateBudgetItem)
		r.Delete("/items/{id}", budgetHandler.DeleteBudgetItem)
	})
}
