package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	// Adapters
	"github.com/mapmarket/reaction-service/internal/adapter/email"
	imagingAdapter "github.com/mapmarket/reaction-service/internal/adapter/imaging"
	natsAdapter "github.com/mapmarket/reaction-service/internal/adapter/messaging/nats"
	"github.com/mapmarket/reaction-service/internal/adapter/push/fcm"
	"github.com/mapmarket/reaction-service/internal/adapter/repository/cache"
	mongoRepo "github.com/mapmarket/reaction-service/internal/adapter/repository/mongodb"
	"github.com/mapmarket/reaction-service/internal/adapter/search/algolia"
	"github.com/mapmarket/reaction-service/internal/adapter/storage/s3"

	// Config
	"github.com/mapmarket/reaction-service/internal/config"
	// Domain & Usecase
	"github.com/mapmarket/reaction-service/internal/domain"
	"github.com/mapmarket/reaction-service/internal/event"
	"github.com/mapmarket/reaction-service/internal/scheduler"
	"github.com/mapmarket/reaction-service/internal/usecase"
	// Platform
	"github.com/mapmarket/reaction-service/internal/platform/logger"
	"github.com/mapmarket/reaction-service/internal/platform/metrics"
	"github.com/mapmarket/reaction-service/internal/platform/tracer"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

const (
	serviceName = "reaction-service"
	queueGroup  = "reaction-service"
)

func main() {
	// Load .env file (optional, for local development)
	if err := godotenv.Load(); err != nil {
		fmt.Printf("INFO: .env file not found or error loading: %v. Relying on OS environment variables.\n", err)
	}

	// 1. Initialize Logger
	appLogger := logger.NewLogger()
	appLogger.Info("Application starting...", zap.String("service_name", serviceName))

	// 2. Load Configuration
	cfg, err := config.LoadConfig(appLogger)
	if err != nil {
		appLogger.Fatal("Failed to load configuration", zap.Error(err))
	}

	// 3. Initialize OpenTelemetry Tracer
	var tp *sdktrace.TracerProvider
	if cfg.OTExporterOTLPEndpoint != "" {
		tp = tracer.InitTracer(serviceName, cfg.OTExporterOTLPEndpoint, appLogger)
		defer func() {
			appLogger.Info("Shutting down tracer provider...")
			ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancelShutdown()
			if err := tp.Shutdown(ctxShutdown); err != nil {
				appLogger.Error("Failed to shutdown tracer provider", zap.Error(err))
			}
		}()
		appLogger.Info("OpenTelemetry Tracer initialized.")
	} else {
		appLogger.Info("OpenTelemetry Tracer not initialized (OTEL_EXPORTER_OTLP_ENDPOINT not set).")
	}

	// 4. Connect to MongoDB
	mongoClient, err := mongo.Connect(context.Background(), options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		appLogger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer func() {
		appLogger.Info("Disconnecting from MongoDB...")
		if err = mongoClient.Disconnect(context.Background()); err != nil {
			appLogger.Error("Error disconnecting from MongoDB", zap.Error(err))
		}
	}()
	ctxPingMongo, cancelPingMongo := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelPingMongo()
	if err = mongoClient.Ping(ctxPingMongo, nil); err != nil {
		appLogger.Fatal("Failed to ping MongoDB", zap.Error(err))
	}
	appLogger.Info("Successfully connected and pinged MongoDB.")
	db := mongoClient.Database(cfg.MongoDatabase)

	// 5. Initialize Metrics
	metricsManager := metrics.NewManager("reaction_service")

	// 6. Initialize Secondary-Effect Adapters.
	// Each of these may be absent; handlers treat a nil port as a disabled
	// feature, so a typed-nil pointer must never end up in the interface.
	var searchIndex domain.SearchIndex
	if cfg.AlgoliaAppID != "" && cfg.AlgoliaAPIKey != "" {
		searchIndex = algolia.NewIndex(cfg.AlgoliaAppID, cfg.AlgoliaAPIKey, cfg.AlgoliaIndexName, appLogger)
		appLogger.Info("Algolia search index initialized.", zap.String("index", cfg.AlgoliaIndexName))
	}

	var pushSender domain.PushSender
	var accountDeleter domain.AccountDeleter
	if cfg.FirebaseCredentialsFile != "" {
		fcmClient, err := fcm.NewClient(context.Background(), cfg.FirebaseCredentialsFile, appLogger)
		if err != nil {
			appLogger.Fatal("Failed to initialize Firebase client", zap.Error(err))
		}
		pushSender = fcmClient
		accountDeleter = fcmClient
		appLogger.Info("Firebase messaging client initialized.")
	}

	var emailSender domain.EmailSender
	if cfg.SMTPEmail != "" {
		emailSender = email.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPEmail, cfg.SMTPPassword)
		appLogger.Info("SMTP mailer initialized.", zap.String("host", cfg.SMTPHost))
	}

	var listingCache domain.ListingCache
	redisCache, err := cache.NewListingCache(cfg.RedisAddress)
	if err != nil {
		appLogger.Warn("Redis unavailable; listing cache invalidation disabled.", zap.Error(err))
	} else {
		listingCache = redisCache
		defer redisCache.Close()
		appLogger.Info("Redis listing cache initialized.")
	}

	objectStore, err := s3.NewStorage(cfg.MinIOEndpoint, cfg.MinIOAccessKey, cfg.MinIOSecretKey, cfg.MinIOBucket, cfg.MinIOUseSSL, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize object storage", zap.Error(err))
	}
	appLogger.Info("Object storage initialized.", zap.String("bucket", cfg.MinIOBucket))

	// 7. Initialize Repositories
	listingRepo := mongoRepo.NewListingRepository(db, appLogger)
	userRepo := mongoRepo.NewUserRepository(db, appLogger)
	alertRepo := mongoRepo.NewAlertRepository(db, appLogger)
	chatRepo := mongoRepo.NewChatRepository(db, appLogger)
	counterStore := mongoRepo.NewCounterStore(mongoClient, db, appLogger)
	appLogger.Info("Repositories initialized.")

	// 8. Initialize Usecases
	notifier := usecase.NewNotifier(userRepo, pushSender, emailSender, metricsManager, appLogger)
	alertEngine := usecase.NewAlertEngine(userRepo, alertRepo, notifier, appLogger)
	listingHandler := usecase.NewListingHandler(counterStore, listingRepo, searchIndex, listingCache, objectStore, alertEngine, appLogger)
	messageHandler := usecase.NewMessageHandler(chatRepo, userRepo, notifier, appLogger)
	reviewHandler := usecase.NewReviewHandler(counterStore, appLogger)
	favoriteHandler := usecase.NewFavoriteHandler(counterStore, listingRepo, notifier, appLogger)
	accountHandler := usecase.NewAccountHandler(userRepo, appLogger)
	mediaPipeline := usecase.NewMediaPipeline(objectStore, imagingAdapter.NewResizer(), metricsManager, appLogger)
	cleaner := usecase.NewCleaner(userRepo, listingRepo, accountDeleter, objectStore, metricsManager, appLogger)
	dispatcher := usecase.NewDispatcher(listingHandler, messageHandler, reviewHandler, favoriteHandler, accountHandler, mediaPipeline, metricsManager, appLogger)
	appLogger.Info("Usecases initialized.")

	// 9. Subscribe to Events
	subscriber, err := natsAdapter.NewSubscriber(cfg.NATSURL, appLogger, serviceName)
	if err != nil {
		appLogger.Fatal("Failed to initialize NATS subscriber", zap.Error(err))
	}
	defer subscriber.Close()

	subscriptions := []struct {
		subject string
		handler natsAdapter.HandlerFunc
	}{
		{event.SubjectListingWritten, dispatcher.OnListingWritten},
		{event.SubjectMessageCreated, dispatcher.OnMessageCreated},
		{event.SubjectReviewCreated, dispatcher.OnReviewCreated},
		{event.SubjectFavoriteWritten, dispatcher.OnFavoriteWritten},
		{event.SubjectAccountCreated, dispatcher.OnAccountCreated},
		{event.SubjectMediaFinalized, dispatcher.OnMediaFinalized},
	}
	for _, s := range subscriptions {
		if err := subscriber.Subscribe(s.subject, queueGroup, s.handler); err != nil {
			appLogger.Fatal("Failed to subscribe", zap.String("subject", s.subject), zap.Error(err))
		}
	}
	appLogger.Info("Event subscriptions established.", zap.Int("count", len(subscriptions)))

	// 10. Start Scheduled Sweeps
	sched := scheduler.New(appLogger)
	if err := sched.Add(cfg.AccountSweepSchedule, "inactive_accounts", cleaner.SweepInactiveAccounts); err != nil {
		appLogger.Fatal("Failed to schedule inactive account sweep", zap.Error(err))
	}
	if err := sched.Add(cfg.MediaSweepSchedule, "orphaned_media", cleaner.SweepOrphanedMedia); err != nil {
		appLogger.Fatal("Failed to schedule orphaned media sweep", zap.Error(err))
	}
	sched.Start()
	defer sched.Stop()

	// 11. Start Prometheus Metrics Server
	if cfg.PrometheusMetricsPort != "" {
		go func() {
			if err := metrics.StartServer(cfg.PrometheusMetricsPort, appLogger, metricsManager.Registry); err != nil && !errors.Is(err, http.ErrServerClosed) {
				appLogger.Error("Prometheus metrics server failed", zap.Error(err))
			}
		}()
	} else {
		appLogger.Info("Prometheus metrics server not started (PROMETHEUS_METRICS_PORT not set).")
	}

	// 12. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	appLogger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	appLogger.Info("Application shutting down...")
	// Deferred cleanups (scheduler, NATS, Redis, MongoDB, tracer) execute now.
}
