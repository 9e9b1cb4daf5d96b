package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/wastewise/wastewise/internal/auth"
	"github.com/wastewise/wastewise/internal/config"
	"github.com/wastewise/wastewise/internal/database"
	wasteHttp "github.com/wastewise/wastewise/internal/http"
	authHandler "github.com/wastewise/wastewise/internal/http/auth"
	listingHandler "github.com/wastewise/wastewise/internal/http/listing"
	txHandler "github.com/wastewise/wastewise/internal/http/transaction"
	"github.com/wastewise/wastewise/internal/listing"
	listingStore "github.com/wastewise/wastewise/internal/listing/store"
	"github.com/wastewise/wastewise/internal/ratelimit"
	"github.com/wastewise/wastewise/internal/transaction"
	txStore "github.com/wastewise/wastewise/internal/transaction/store"
	"github.com/wastewise/wastewise/internal/user"
	userStore "github.com/wastewise/wastewise/internal/user/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(cfg.App.LogLevel),
	})).With("app", cfg.App.Name))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	commission, err := cfg.Commission()
	if err != nil {
		slog.Error("invalid commission rate", "error", err)
		os.Exit(1)
	}

	var limiter ratelimit.Limiter = ratelimit.Noop{}

	if cfg.Redis.Addr != "" {
		rdb, err := ratelimit.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			slog.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer rdb.Close()

		limiter = ratelimit.NewRedis(rdb, cfg.RateLimit.AuthLimit, cfg.RateLimit.AuthWindow)
	} else {
		slog.Warn("REDIS_ADDR not set, auth endpoints are not rate limited")
	}

	var (
		issuer             = auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
		userService        = user.NewService(userStore.New(db))
		listingService     = listing.NewService(listingStore.New(db))
		transactionService = transaction.NewService(txStore.New(db), listingService,
			transaction.WithTransactor(database.NewTransactor(db)),
			transaction.WithCommissionRate(commission),
			transaction.WithStrictOfferQuantity(cfg.Market.StrictOfferQuantity),
		)
	)

	router := wasteHttp.New(
		authHandler.NewHandler(userService, issuer),
		listingHandler.NewHandler(listingService),
		txHandler.NewHandler(transactionService),
		wasteHttp.Options{
			Verifier:    issuer,
			Limiter:     limiter,
			DB:          db,
			Timeout:     cfg.Server.Timeout,
			CORSOrigins: cfg.Server.CORSOrigins,
		},
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout + 5*time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown failed", "error", err)
		}
	}()

	slog.Info("starting server", "addr", srv.Addr)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return slog.LevelInfo
	}

	return level
}
