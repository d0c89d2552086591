package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"game-ledger/config"
	"game-ledger/handlers"
	"game-ledger/middleware"
	"game-ledger/services"
	"game-ledger/store"
	"game-ledger/utils"
	"game-ledger/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/jonboulle/clockwork"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config:", err)
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 64 * 1024,
	})

	// 🔐❗ GLOBAL: Only Gateway requests allowed, no exceptions
	app.Use(middleware.GatewayAuthMiddleware(cfg.ServiceToken))

	allowedOrigins := strings.Join(cfg.AllowedOrigins, ",")
	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     "GET,POST,OPTIONS,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control, X-Service-Token, X-User-ID",
		ExposeHeaders:    "Content-Length, Content-Type, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	var st store.Store
	switch cfg.StoreDriver {
	case config.StoreMemory:
		log.Println("⚠️  STORE_DRIVER=memory, ledger state is lost on restart")
		st = store.NewMemory()
	default:
		st, err = store.OpenPostgres(cfg.DatabaseURL)
		if err != nil {
			log.Fatal("failed to open store:", err)
		}
	}
	defer st.Close()

	clock := clockwork.NewRealClock()
	engine := services.NewEngine(st, clock)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	schedCfg := services.SchedulerConfig{
		RegistrationTTL:  cfg.RegistrationTTL,
		StaleCheckEvery:  cfg.StaleCheckEvery,
		ArchiveEvery:     cfg.ArchiveEvery,
		ArchiveBatchSize: cfg.ArchiveBatchSize,
	}
	if r2 := cfg.R2.Settings(); r2.Enabled() {
		archiver, err := utils.NewR2Client(ctx, r2)
		if err != nil {
			log.Fatal("failed to initialize R2 client:", err)
		}
		schedCfg.Archiver = archiver
	} else {
		log.Println("⚠️  R2 not configured, replay archiving disabled")
	}

	sched, err := engine.StartScheduler(ctx, schedCfg)
	if err != nil {
		log.Fatal("failed to start scheduler:", err)
	}
	defer func() {
		if err := sched.Shutdown(); err != nil {
			log.Printf("Scheduler shutdown error: %v", err)
		}
	}()

	if cfg.DepositFeedURL != "" {
		depositClient := workers.NewDepositSyncClient(cfg.DepositFeedURL, cfg.ServiceToken, engine, clock)
		go workers.PollDeposits(ctx, depositClient, cfg.DepositPollInterval)
		log.Printf("✅ Deposit polling running (every %s)", cfg.DepositPollInterval)
	}

	if cfg.ProfileSyncURL != "" {
		syncWorker := workers.NewProfileSyncWorker(engine, clock, cfg.ProfileSyncURL, "/api/v1/public/profiles", cfg.ServiceToken, cfg.ProfileSyncInterval)
		syncWorker.Start(ctx)
	}

	handlers.SetupLedgerRoutes(app, engine)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s", cfg.Port)
	log.Println("✅ GatewayAuthMiddleware enforced globally — all requests must come from Gateway")
	log.Printf("✅ CORS configured for origins: %s", allowedOrigins)

	<-ctx.Done()
	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}
