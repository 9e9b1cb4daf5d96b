package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	authHandler "github.com/wastewise/wastewise/internal/http/auth"
	"github.com/wastewise/wastewise/internal/http/listing"
	mw "github.com/wastewise/wastewise/internal/http/middleware"
	"github.com/wastewise/wastewise/internal/http/respond"
	"github.com/wastewise/wastewise/internal/http/transaction"
	"github.com/wastewise/wastewise/internal/ratelimit"
)

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Options struct {
	Verifier    mw.TokenVerifier
	Limiter     ratelimit.Limiter
	DB          Pinger
	Timeout     time.Duration
	CORSOrigins []string
}

func New(
	authV1 *authHandler.Handler,
	listingsV1 *listing.Handler,
	transactionsV1 *transaction.Handler,
	opts Options,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	if opts.Timeout > 0 {
		router.Use(middleware.Timeout(opts.Timeout))
	}

	router.Get("/healthz", healthz(opts.DB))

	authn := mw.Authenticate(opts.Verifier)

	router.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			r.Use(mw.RateLimit(opts.Limiter, "auth"))
			authV1.Routes(r)
		})

		r.Route("/listings", func(r chi.Router) {
			listingsV1.Routes(r)

			r.Group(func(r chi.Router) {
				r.Use(authn)
				r.Use(middleware.AllowContentType("application/json", "multipart/form-data"))
				listingsV1.PrivateRoutes(r)
			})
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Use(authn)
			r.Use(middleware.AllowContentType("application/json"))
			transactionsV1.Routes(r)
		})

		r.Route("/dashboard", func(r chi.Router) {
			r.Use(authn)
			listingsV1.DashboardRoutes(r)
			transactionsV1.DashboardRoutes(r)
		})
	})

	return router
}

func healthz(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()

			if err := db.PingContext(ctx); err != nil {
				respond.Error(w, http.StatusServiceUnavailable, "database unavailable")
				return
			}
		}

		respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
