package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"question_rotation_service/internal/app"
	rcache "question_rotation_service/internal/infra/cache"
	"question_rotation_service/internal/infra/config"
	idb "question_rotation_service/internal/infra/database"
	"question_rotation_service/internal/infra/httpapi"
	"question_rotation_service/internal/infra/logger"
	"question_rotation_service/internal/infra/scheduler"
	"question_rotation_service/internal/infra/telegram"

	domainTelegram "question_rotation_service/internal/domain/telegram"

	"gopkg.in/telebot.v3"
)

func main() {
	fmt.Println("Question Rotation Service starting...")

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Could not load application configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg)
	log := logger.Get()
	log.Infof("Configuration loaded. LogLevel: %s, Environment: %s", cfg.LogLevel, cfg.Environment)

	// Initialize Database Connection
	db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("FATAL: Could not connect to database: %v", err)
	}
	defer db.Close()
	log.Info("Database connection established successfully.")

	// Initialize Lookup Cache
	lookupCache, err := rcache.NewRedisLookupCache(cfg.RedisURL)
	if err != nil {
		log.Fatalf("FATAL: Could not connect to redis: %v", err)
	}
	log.Info("Lookup cache connection established successfully.")

	// Initialize Repositories
	regionRepo := idb.NewPostgresRegionRepository(db)
	questionRepo := idb.NewPostgresQuestionRepository(db)
	rotationRepo := idb.NewPostgresRotationRepository(db)
	log.Info("Repositories initialized.")

	// Initialize Services
	durationProvider := config.NewEnvDurationProvider()
	rotationService := app.NewRotationServiceImpl(regionRepo, questionRepo, rotationRepo, lookupCache, durationProvider, log)
	lookupService := app.NewLookupServiceImpl(rotationRepo, regionRepo, lookupCache, log)
	catalogService := app.NewCatalogService(regionRepo, questionRepo, log)
	log.Info("Application services initialized.")

	// Initialize optional Telegram alert client
	var alertClient domainTelegram.Client
	if cfg.TelegramToken != "" {
		bot, err := telebot.NewBot(telebot.Settings{
			Token:   cfg.TelegramToken,
			Offline: true, // outbound alerts only, no update polling
		})
		if err != nil {
			log.Fatalf("FATAL: Could not create Telegram alert bot: %v", err)
		}
		alertClient = telegram.NewTelebotAdapter(bot)
		log.Info("Telegram alert client initialized.")
	} else {
		log.Info("TELEGRAM_TOKEN not set; rotation alerts disabled.")
	}

	// Initialize RotationScheduler
	rotScheduler := scheduler.NewRotationScheduler(
		rotationService,
		alertClient,
		cfg.AdminTelegramID,
		log,
		cfg.CronSpecRotation,
	)
	if err := rotScheduler.Start(); err != nil {
		log.Fatalf("FATAL: Could not start rotation scheduler: %v", err)
	}

	// Initialize HTTP server
	srv := httpapi.NewServer(lookupService, catalogService, log)
	go func() {
		if err := srv.Start(cfg.ListenAddr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("FATAL: HTTP server failed: %v", err)
		}
	}()
	log.Infof("Application setup complete. Serving on %s", cfg.ListenAddr)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit // Block until a signal is received

	log.Info("Shutting down application...")
	rotScheduler.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("HTTP server shutdown error: %v", err)
	}
	// db.Close() is handled by defer
	log.Info("Application shut down gracefully.")
}
