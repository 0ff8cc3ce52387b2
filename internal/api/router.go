package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fastprodman/casino/internal/metrics"
)

// Deps are the collaborators of the HTTP layer. Log, Metrics and Gatherer
// are optional.
type Deps struct {
	Service        WagerService
	Log            *slog.Logger
	Metrics        *metrics.HTTP
	Gatherer       prometheus.Gatherer
	AllowedOrigins []string
}

// NewRouter builds the chi router with all API endpoints registered.
func NewRouter(d Deps) http.Handler {
	h := NewHandler(d.Service, d.Log)
	r := chi.NewRouter()

	origins := d.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(AccessLog(d.Log))
	r.Use(Metrics(d.Metrics))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", idempotencyHeader},
		AllowCredentials: false,
		MaxAge:           60 * 15,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if d.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(rr chi.Router) {
		rr.Post("/slots/spin", h.SlotsSpinHandler)
		rr.Post("/roulette/spin", h.RouletteSpinHandler)

		rr.Get("/user/{userId}/balance", h.GetBalanceHandler)
		rr.Post("/user/{userId}/deposit", h.DepositHandler)
		rr.Get("/user/{userId}/stats", h.StatsHandler)
	})

	return r
}
