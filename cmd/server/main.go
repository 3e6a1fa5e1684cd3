package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"farewatch-service/internal/infrastructure/config"
	"farewatch-service/internal/infrastructure/oauth"
	"farewatch-service/internal/infrastructure/persistence"
	"farewatch-service/internal/infrastructure/scheduler"
	"farewatch-service/internal/interface/amadeus"
	"farewatch-service/internal/interface/httpapi"
	"farewatch-service/internal/interface/mailer"
	"farewatch-service/internal/interface/repository"
	"farewatch-service/internal/usecase"
	"farewatch-service/pkg/logger"
	"farewatch-service/pkg/metrics"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to load config:", err)
		os.Exit(1)
	}

	// Create logger
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("Starting Farewatch Service", "version", cfg.AppVersion)

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loc, err := time.LoadLocation(cfg.ScheduleTimezone)
	if err != nil {
		log.Fatal("Invalid schedule timezone", "timezone", cfg.ScheduleTimezone, "error", err)
	}

	// Set up PostgreSQL connection (fail fast: no watch store, no work)
	log.Info("Connecting to PostgreSQL")
	db, err := persistence.NewPostgresDB(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", "error", err)
	}
	if err := repository.Migrate(db); err != nil {
		log.Fatal("Failed to migrate watch store schema", "error", err)
	}

	// Set up MongoDB connection for the price drop audit log
	log.Info("Connecting to MongoDB")
	mongoClient, err := persistence.NewMongoClient(ctx, cfg.MongoURI, cfg.MongoUser, cfg.MongoPassword)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", "error", err)
	}
	mongoDB := persistence.GetDatabase(mongoClient, cfg.MongoDB)

	// Set up repositories
	userRepo := repository.NewGormUserRepository(db)
	watchRepo := repository.NewGormWatchRepository(db)
	priceEventRepo := repository.NewMongoPriceEventRepository(mongoDB)

	// Set up the flight offer provider
	offerClient := amadeus.NewClient(ctx, cfg.AmadeusAPIKey, cfg.AmadeusAPISecret,
		cfg.AmadeusBaseURL, cfg.QuoteTimeout, log)

	// Set up Gmail OAuth and the notifier
	gmailOAuth := oauth.NewGmailOAuth(
		cfg.GmailClientID,
		cfg.GmailClientSecret,
		cfg.GmailRefreshToken,
		log,
	)
	notifier, err := mailer.NewGmailMailer(ctx, gmailOAuth.GetTokenSource(ctx), cfg.EmailFrom, log)
	if err != nil {
		log.Fatal("Failed to create Gmail mailer", "error", err)
	}

	appMetrics := metrics.NewMetrics("farewatch")

	// Set up usecases
	cartService := usecase.NewCartService(userRepo, watchRepo, offerClient, notifier, log, loc)
	flightFinder := usecase.NewFlightFinder(offerClient, log)
	priceWatcher := usecase.NewPriceWatcher(watchRepo, offerClient, notifier, priceEventRepo,
		appMetrics, log, loc, cfg.PriceCheckWorkers, cfg.QuoteTimeout)

	// Start the price check schedule in a goroutine
	priceCheckSchedule := scheduler.New(cfg.PriceCheckInterval, loc, priceWatcher.RunCycle, log)
	go priceCheckSchedule.Start(ctx)

	// Set up HTTP server
	handler := httpapi.NewHandler(cartService, flightFinder, log)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      httpapi.NewRouter(handler),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start HTTP server in a goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info("Received signal", "signal", sig)

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	cancel() // Cancel the context to stop the scheduler and in-flight checks

	// Disconnect from MongoDB
	if err := mongoClient.Disconnect(shutdownCtx); err != nil {
		log.Error("MongoDB disconnect error", "error", err)
	}

	log.Info("Farewatch Service stopped")
}
