// internal/routes/routes.go
package routes

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"expensetracker/internal/config"
	"expensetracker/internal/handlers"
	"expensetracker/internal/middleware"
	"expensetracker/internal/observability"
	"expensetracker/internal/services"
)

// Deps is everything the router needs. Receipts and Metrics may be nil.
type Deps struct {
	DB       *sql.DB
	Config   *config.Config
	Logger   *slog.Logger
	Auth     handlers.AuthService
	Tokens   middleware.TokenParser
	Receipts services.ReceiptStore
	Metrics  *observability.Metrics
}

const healthTimeout = 2 * time.Second

func SetupRoutes(deps Deps) *chi.Mux {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	r := chi.NewRouter()

	// Middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Language", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	if deps.Metrics != nil {
		r.Use(middleware.Metrics(deps.Metrics))
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "Expense Tracker API"})
	})
	r.Get("/health", healthHandler(deps.DB))

	RegisterSwaggerRoutes(r)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		RegisterAuthRoutes(r, deps)

		r.Group(func(r chi.Router) {
			r.Use(middleware.JWTAuth(deps.Tokens))
			RegisterExpenseRoutes(r, deps)
			RegisterCategoryRoutes(r, deps)
			RegisterCreditCardRoutes(r, deps)
			RegisterBudgetRoutes(r, deps)
		})
	})

	return r
}

type dbHealth struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type healthResponse struct {
	Status string   `json:"status"`
	DB     dbHealth `json:"db"`
}

// healthHandler godoc
// @Tags Health
// @Summary Liveness and database reachability
// @Produce json
// @Success 200 {object} healthResponse
// @Failure 503 {object} healthResponse
// @Router /health [get]
func healthHandler(conn *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		resp := healthResponse{Status: "ok", DB: dbHealth{Status: "ok"}}
		if err := conn.PingContext(ctx); err != nil {
			resp.Status = "degraded"
			resp.DB = dbHealth{Status: "down", Error: err.Error()}
			writeJSON(w, http.StatusServiceUnavailable, resp)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
