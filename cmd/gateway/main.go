// Command gateway runs the LonganiCore message gateway: the HTTP/WS
// server that exposes translation and voice sessions to embedding
// sites behind the authentication and rate limiting pipeline.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/ban2lab/longanicore-gateway/internal/api"
	"github.com/ban2lab/longanicore-gateway/internal/api/handlers"
	"github.com/ban2lab/longanicore-gateway/internal/auth"
	"github.com/ban2lab/longanicore-gateway/internal/config"
	"github.com/ban2lab/longanicore-gateway/internal/connlog"
	"github.com/ban2lab/longanicore-gateway/internal/database"
	"github.com/ban2lab/longanicore-gateway/internal/gateway"
	"github.com/ban2lab/longanicore-gateway/internal/ratelimit"
	"github.com/ban2lab/longanicore-gateway/internal/session"
	"github.com/ban2lab/longanicore-gateway/internal/store"
	"github.com/ban2lab/longanicore-gateway/internal/translate"
	"github.com/ban2lab/longanicore-gateway/internal/voice"
)

func main() {
	// .env is optional; real deployments configure the environment directly.
	if err := godotenv.Load(); err == nil {
		logrus.Debug("Loaded configuration from .env")
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Invalid configuration: %v", err)
	}

	setupLogger(cfg.LogLevel)

	db, err := database.Initialize(cfg.DatabasePath)
	if err != nil {
		logrus.Fatalf("Failed to initialize database: %v", err)
	}
	if err := database.RunMigrations(db); err != nil {
		logrus.Fatalf("Failed to run migrations: %v", err)
	}

	credStore := store.New(db)
	audit := connlog.New()

	translator := translate.NewCachedTranslator(
		translate.NewGeminiTranslator(cfg.GeminiAPIKey, cfg.GeminiModel),
		cfg.CacheSize,
	)
	voiceService := voice.NewGeminiLiveService(cfg.GeminiAPIKey, cfg.GeminiLiveModel)

	gw := gateway.New(gateway.Options{
		Switch:     credStore,
		Validator:  auth.NewValidator(credStore),
		Limiter:    ratelimit.NewLimiter(cfg.BucketCapacity, cfg.RefillPerSecond),
		Translator: translator,
		Voice:      voiceService,
		Sessions:   session.New(),
		Audit:      audit,
	})

	router := api.NewRouter(cfg, api.Handlers{
		Channel:   handlers.NewChannelHandler(gw, cfg.ConnPerSecond, cfg.ConnBurst),
		Admin:     handlers.NewAdminHandler(credStore, audit),
		Translate: handlers.NewTranslateHandler(translator),
	})

	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: router,
	}

	go func() {
		logrus.Infof("Gateway listening on %s", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("HTTP server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down gateway...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logrus.Errorf("Forced shutdown: %v", err)
	}
	logrus.Info("Gateway stopped")
}

func setupLogger(level string) {
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		logrus.Warn("Invalid log level, using info")
		parsed = logrus.InfoLevel
	}
	logrus.SetLevel(parsed)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}
