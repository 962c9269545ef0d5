package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v3"

	"github.com/reactioncam/rcam-go/internal/config"
	"github.com/reactioncam/rcam-go/internal/db"
	"github.com/reactioncam/rcam-go/internal/handler"
	"github.com/reactioncam/rcam-go/internal/middleware"
	"github.com/reactioncam/rcam-go/internal/repository"
	"github.com/reactioncam/rcam-go/internal/router"
	"github.com/reactioncam/rcam-go/internal/service"
)

func main() {
	cfg := config.Load()
	middleware.InitLogger(cfg.LogLevel, "rcam-engine")
	logger := middleware.Logger

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns, logger)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer pool.Close()

	handler.InitMetrics(pool)

	cache := service.NewCacheService(cfg.RedisURL)
	defer cache.Close()

	// Repositories
	accounts := repository.NewAccountRepo(pool)
	contents := repository.NewContentRepo(pool)
	wallets := repository.NewWalletRepo(pool)
	requests := repository.NewRequestRepo(pool)
	entries := repository.NewEntryRepo(pool, wallets)

	// Services
	analytics := service.NewAnalytics(logger)
	notifs := service.NewNotifService(accounts, logger)
	ledger := service.NewLedgerService(wallets, accounts, analytics, logger)
	contentSvc := service.NewContentService(contents, accounts, notifs, analytics, cache, logger)
	feedSvc := service.NewFeedService(contents, cache, logger)
	requestSvc := service.NewRequestService(requests, entries, contents, wallets, ledger, notifs, logger)
	youtube := service.NewYouTubeService(cfg.YouTubeAPIKey)
	reconcile := service.NewReconcileService(contents, entries, youtube, notifs, analytics,
		cfg.ReconcileStaleness, cfg.RewardCapPerTick, logger)

	// Background workers
	reconcileWorker := service.NewReconcileWorker(reconcile, cfg.ReconcileSchedule, logger)
	if youtube.Enabled() {
		if err := reconcileWorker.Start(ctx); err != nil {
			log.Fatalf("failed to start reconcile worker: %v", err)
		}
		defer reconcileWorker.Stop()
	} else {
		logger.Warn().Msg("no YouTube API key configured, reconciliation disabled")
	}
	recountWorker := service.NewRecountWorker(contents, cfg.RecountSchedule, logger)
	if err := recountWorker.Start(ctx); err != nil {
		log.Fatalf("failed to start recount worker: %v", err)
	}
	defer recountWorker.Stop()

	app := fiber.New(fiber.Config{
		AppName:      "rcam engine",
		ServerHeader: "rcam",
	})

	router.Setup(app, &router.Handlers{
		Content: handler.NewContentHandler(contentSvc, feedSvc),
		Account: handler.NewAccountHandler(accounts),
		Wallet:  handler.NewWalletHandler(ledger),
		Request: handler.NewRequestHandler(requestSvc),
		Admin:   handler.NewAdminHandler(ledger, reconcile),
		Health:  handler.NewHealthHandler(pool, cache.Client()),
	}, accounts, cfg.CORSOrigins, cfg.AdminToken)

	go func() {
		<-ctx.Done()
		logger.Info().Msg("shutting down")
		_ = app.Shutdown()
	}()

	logger.Info().
		Str("port", cfg.Port).
		Str("env", cfg.Environment).
		Msg("rcam engine starting")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
