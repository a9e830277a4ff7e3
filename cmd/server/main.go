package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	_ "github.com/ZanzyTHEbar/criteria-ranker/docs"
	"github.com/ZanzyTHEbar/criteria-ranker/internal/config"
	"github.com/ZanzyTHEbar/criteria-ranker/internal/errors"
	"github.com/ZanzyTHEbar/criteria-ranker/internal/llm"
	"github.com/ZanzyTHEbar/criteria-ranker/internal/monitoring"
	"github.com/ZanzyTHEbar/criteria-ranker/internal/ratelimit"
	"github.com/ZanzyTHEbar/criteria-ranker/internal/resilience"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

// @title Criteria Ranker API
// @version 1.0
// @description Ranks candidates against weighted criteria with an external language model and a deterministic heuristic fallback.
// @BasePath /
func main() {
	cfg, errs := config.Load(os.Getenv("CONFIG_FILE"))
	if len(errs) > 0 {
		appErr := errors.NewConfigValidationError(errs)
		slog.Error("Invalid configuration", "error", appErr, "problems", errs)
		os.Exit(1)
	}

	appLogger := monitoring.NewLogger(monitoring.ParseLevel(cfg.LogLevel))
	slog.SetDefault(appLogger.Logger)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	appLogger.Info("Configuration loaded", "config", cfg.LogSummary())

	startCtx, startCancel := context.WithTimeout(context.Background(), 5*time.Second)
	redisClient, err := ratelimit.NewRedisClient(startCtx, ratelimit.RedisOptions{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	startCancel()
	if err != nil {
		appLogger.Warn("Redis unavailable, call budget is kept in memory", "error", err)
	}
	defer errors.SafeClose(redisClient, "redis")

	httpClient := resilience.NewHTTPClient(resilience.HTTPClientConfig{})
	factory := llm.NewFactory(llm.Config{
		APIKey:      cfg.OpenAIAPIKey,
		BaseURL:     cfg.OpenAIBaseURL,
		Model:       cfg.OpenAIModel,
		Temperature: cfg.OpenAITemperature,
		Timeout:     cfg.OpenAITimeout,
		HTTPClient:  httpClient,
	}, appLogger)

	if !factory.Configured() {
		appLogger.Warn("OPENAI_API_KEY not set, every ranking uses the heuristic")
	}

	s, err := newServer(cfg, appLogger, factory, factory.New, redisClient)
	if err != nil {
		appErr := errors.NewConfigurationError("failed to build server", err)
		appLogger.Error("Startup failed", "error", appErr)
		os.Exit(1)
	}
	defer s.Close()

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Port),
		Handler:           s.setupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.SystemLogger("startup", "listening on "+srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.SystemLogger("shutdown", "draining connections")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", "error", err)
		return
	}

	httpClient.CloseIdleConnections()
	appLogger.SystemLogger("shutdown", "server exited")
}
