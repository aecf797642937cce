// internal/routes/expense_routes.go
package routes

import (
	"github.com/go-chi/chi/v5"

	"expensetracker/internal/handlers"
	"expensetracker/internal/repository"
)

func RegisterExpenseRoutes(router chi.Router, deps Deps) {
	expenseHandler := handlers.NewExpenseHandler(
		repository.NewExpenseRepository(deps.DB),
		repository.NewCreditCardRepository(deps.DB),
		repository.NewCategoryRepository(deps.DB),
		deps.Receipts,
		deps.Logger,
	)

	router.Route("/expenses", func(r chi.Router) {
		r.Get("/", expenseHandler.ListExpenses)
		r.Post("/", expenseHandler.CreateExpense)
		r.Get("/summary", expenseHandler.Summary)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", expenseHandler.GetExpense)
			r.Patch("/", expenseHandler.UpdateExpense)
			r.Delete("/", expenseHandler.DeleteExpense)
			r.Post("/receipt", expenseHandler.UploadReceipt)
			r.Get("/receipt", expenseHandler.ReceiptURL)
		})
	})
}
