package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/medeiros-dev/push-notification-service/configs"
	"github.com/medeiros-dev/push-notification-service/internal/app/delivery"
	"github.com/medeiros-dev/push-notification-service/internal/app/message"
	"github.com/medeiros-dev/push-notification-service/internal/app/registry"
	"github.com/medeiros-dev/push-notification-service/internal/infrastructure/mongodb"
	"github.com/medeiros-dev/push-notification-service/internal/infrastructure/push/fcm"
	"github.com/medeiros-dev/push-notification-service/internal/middleware"
	"github.com/medeiros-dev/push-notification-service/internal/observability/metrics"
	"github.com/medeiros-dev/push-notification-service/internal/observability/tracing"
	"github.com/medeiros-dev/push-notification-service/internal/usecases/consumer"
	"github.com/medeiros-dev/push-notification-service/internal/usecases/eventwatcher"
	"github.com/medeiros-dev/push-notification-service/internal/usecases/sendpush"
	"github.com/medeiros-dev/push-notification-service/pkg/logger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	// Trigger sources register themselves with the source registry.
	_ "github.com/medeiros-dev/push-notification-service/internal/infrastructure/broker"
)

func main() {
	if err := logger.InitializeLogger(false); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			log.Printf("Error syncing logger: %v", err)
		}
	}()

	cfg, err := configs.NewConfig(".")
	if err != nil {
		logger.L().Fatal("Failed to load configuration", zap.Error(err))
	}
	if cfg.LogDevelopment {
		if err := logger.InitializeLogger(true); err != nil {
			log.Fatalf("Failed to initialize development logger: %v", err)
		}
	}
	logger.L().Info("Configuration loaded",
		zap.String("httpAddress", cfg.HTTPServerAddress),
		zap.Strings("enabledSources", cfg.EnabledSources),
		zap.Strings("watchedTypes", cfg.WatchedTypes),
		zap.Strings("registeredSources", registry.SourceNames()),
		zap.Int("workerPoolSize", cfg.WorkerPoolSize),
	)

	if _, err := tracing.InitTracer(cfg); err != nil {
		logger.L().Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		tracing.ShutdownTracer(shutdownCtx)
	}()

	// --- Backing store ---
	db, err := mongodb.NewMongoDB(cfg.Mongo())
	if err != nil {
		logger.L().Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.L().Error("Error closing MongoDB", zap.Error(err))
		}
	}()

	// --- Push delivery ---
	sender, err := fcm.NewSenderFromConfig(context.Background(), cfg)
	if err != nil {
		logger.L().Fatal("Failed to initialize push sender", zap.Error(err))
	}
	deliveryClient := delivery.NewClient(sender)
	builder := message.NewBuilder()

	// --- Store-triggered path ---
	watcher := eventwatcher.NewEventWatcher(db.Users(), db.Groups(), db.Comments(), builder, deliveryClient, cfg.WatchedTypes)

	sources, err := registry.BuildSources(cfg, registry.Resources{Mongo: db.Database})
	if err != nil {
		logger.L().Fatal("Failed to initialize trigger sources", zap.Error(err))
	}
	defer func() {
		for _, src := range sources {
			if err := src.Close(); err != nil {
				logger.L().Error("Error closing trigger source", zap.String("source", src.Name()), zap.Error(err))
			}
		}
	}()
	eventConsumer := consumer.NewConsumer(sources, watcher, cfg.Consumer())

	// --- HTTP path ---
	sendPushHandler := sendpush.NewSendPush(builder, deliveryClient)

	if !cfg.LogDevelopment {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.OtelServiceName))
	router.Use(middleware.RequestMetrics())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": cfg.ServiceName})
	})
	router.GET("/metrics", gin.WrapH(metrics.MetricsHandler()))

	sendHandlers := []gin.HandlerFunc{sendPushHandler.RequireMethod}
	if cfg.RateLimitRPS > 0 {
		limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
		sendHandlers = append(sendHandlers, limiter.RateLimit())
		go func() {
			ticker := time.NewTicker(5 * time.Minute)
			defer ticker.Stop()
			for range ticker.C {
				limiter.Cleanup()
			}
		}()
	}
	sendHandlers = append(sendHandlers, sendPushHandler.Handle)
	router.Any("/send-notification", sendHandlers...)

	server := &http.Server{
		Addr:              cfg.HTTPServerAddress,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// --- Graceful Shutdown Setup ---
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		if err := eventConsumer.Handle(ctx); err != nil {
			logger.L().Error("Event consumer exited with error", zap.Error(err))
		} else {
			logger.L().Info("Event consumer exited cleanly.")
		}
	}()

	go func() {
		logger.L().Info("HTTP server starting", zap.String("address", cfg.HTTPServerAddress))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L().Error("HTTP server ListenAndServe failed", zap.Error(err))
			sigChan <- syscall.SIGTERM
		}
	}()

	sig := <-sigChan
	logger.L().Info("Received signal, shutting down gracefully...", zap.String("signal", sig.String()))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.L().Error("HTTP server shutdown error", zap.Error(err))
	}

	cancel()
	logger.L().Info("Waiting for event consumer to stop...")
	<-consumerDone

	logger.L().Info("Push notification service shut down complete.")
}
