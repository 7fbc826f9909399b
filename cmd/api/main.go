package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/vaultpass/passgen-go/internal/app"
	"github.com/vaultpass/passgen-go/internal/config"
	"github.com/vaultpass/passgen-go/internal/crypto"
	"github.com/vaultpass/passgen-go/internal/handler"
	"github.com/vaultpass/passgen-go/internal/middleware"
	"github.com/vaultpass/passgen-go/internal/model"
	"github.com/vaultpass/passgen-go/internal/repository"
	"github.com/vaultpass/passgen-go/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg := config.Load()

	gens, err := app.NewGenerators(context.Background(), cfg)
	if err != nil {
		slog.Error("failed to initialise generators", "error", err)
		os.Exit(1)
	}
	defer gens.Close()

	genService := service.NewGeneratorService(model.Mode(cfg.Generator), gens.All()...)

	done := make(chan struct{})
	defer close(done)

	// Initialize DB, accounts and quotas if the database is available.
	var (
		authHandler *handler.AuthHandler
		tokens      *crypto.TokenIssuer
	)
	db, err := repository.NewDB(context.Background(), cfg.DatabaseDSN)
	if err != nil {
		slog.Warn("database connection failed, accounts disabled", "error", err)
	} else {
		defer db.Close()

		tokens = crypto.NewTokenIssuer(cfg.JWTSecret, cfg.JWTExpiry)
		authService := service.NewAuthService(repository.NewUserRepository(db), crypto.NewHasher(crypto.DefaultHashParams()), tokens)
		authHandler = handler.NewAuthHandler(authService)
		genService.WithUsage(repository.NewUsageRepository(db), cfg.ModelDailyQuota)
	}

	genHandler := handler.NewGeneratorHandler(genService)

	r := newRouter(routes{
		generator: genHandler,
		auth:      authHandler,
		tokens:    tokens,
		rateLimit: middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst, done),
	})

	// The write deadline outlasts the longest model generation.
	writeTimeout := 30 * time.Second
	if budget := gens.ModelBudget(); budget > 0 {
		writeTimeout = budget + 10*time.Second
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      writeTimeout,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.Env, "generator", cfg.Generator, "model", gens.Model != nil)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}
