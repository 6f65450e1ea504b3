package main

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/geotrack/geotrack-go/internal/config"
	"github.com/geotrack/geotrack-go/internal/handler"
	"github.com/geotrack/geotrack-go/internal/middleware"
	"github.com/geotrack/geotrack-go/internal/repository"
	"github.com/geotrack/geotrack-go/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg := config.Load()

	db, err := repository.Open(cfg.DatabaseDSN, repository.DefaultRetryPolicy())
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := repository.Migrate(context.Background(), db); err != nil {
		slog.Error("schema migration failed", "error", err)
		os.Exit(1)
	}

	userRepo := repository.NewUserRepository(db)
	deviceRepo := repository.NewDeviceRepository(db)
	locationRepo := repository.NewLocationRepository(db)

	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTExpiry)
	deviceService := service.NewDeviceService(deviceRepo)
	locationService := service.NewLocationService(deviceRepo, locationRepo)

	router := handler.NewRouter(handler.RouterConfig{
		Auth:      handler.NewAuthHandler(authService),
		Devices:   handler.NewDeviceHandler(deviceService),
		Locations: handler.NewLocationHandler(locationService),
		JWTSecret: cfg.JWTSecret,
		Limiter:   middleware.NewWindowLimiter(cfg.RateLimit, time.Minute),
	})

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Host, cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: cfg.Timeout,
		IdleTimeout:  cfg.Timeout,
	}

	go func() {
		slog.Info("server starting", "addr", srv.Addr, "env", cfg.Env)
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
