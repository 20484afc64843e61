package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/jonboulle/clockwork"
	"github.com/token-ledger/backend/internal/catalog"
	"github.com/token-ledger/backend/internal/config"
	"github.com/token-ledger/backend/internal/db"
	"github.com/token-ledger/backend/internal/events"
	apphttp "github.com/token-ledger/backend/internal/http"
	"github.com/token-ledger/backend/internal/http/handlers"
	"github.com/token-ledger/backend/internal/repositories"
	"github.com/token-ledger/backend/internal/services"
	"go.uber.org/zap"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	cfg.Validate(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	backend, err := db.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to open store backend", zap.Error(err))
	}
	defer backend.Close()

	clock := clockwork.NewRealClock()

	// Events: Redis fans out to every API instance; without it the bus
	// only reaches this process.
	var (
		publisher  events.Publisher
		subscriber events.Subscriber
		payloads   repositories.ProofPayloadRepo
	)
	if backend.Redis != nil {
		publisher = events.NewRedisPublisher(backend.Redis, cfg.RedisPrefix)
		subscriber = events.NewRedisSubscriber(backend.Redis, cfg.RedisPrefix, log)
		payloads = repositories.NewRedisProofPayloadRepo(backend.Redis)
	} else {
		bus := events.NewBus()
		publisher = bus
		subscriber = bus
		payloads = repositories.NewMemoryProofPayloadRepo(clock)
	}

	// Services
	ledger, err := services.NewLedger(backend.Store, publisher, cfg, catalog.Default(), clock, log)
	if err != nil {
		log.Fatal("failed to build ledger", zap.Error(err))
	}
	walletService := services.NewWalletService(ledger, payloads, cfg, clock, log)

	// Start WS hub
	wsHub := handlers.NewWSHub(cfg, subscriber, log)
	if err := wsHub.Start(ctx); err != nil {
		log.Fatal("failed to subscribe to ledger events", zap.Error(err))
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	apphttp.SetupRouter(app, cfg, log, backend.Redis, apphttp.NewHandlers(ledger, walletService, wsHub, log))

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")
		cancel()
		_ = app.Shutdown()
	}()

	addr := fmt.Sprintf(":%s", cfg.APIPort)
	log.Info("starting API server", zap.String("addr", addr), zap.String("network", cfg.TONNetwork))
	if err := app.Listen(addr); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
