package http

import (
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"github.com/token-ledger/backend/internal/config"
	"github.com/token-ledger/backend/internal/http/handlers"
	"github.com/token-ledger/backend/internal/middleware"
	"github.com/token-ledger/backend/internal/services"
	"go.uber.org/zap"
)

// Handlers groups everything SetupRouter mounts.
type Handlers struct {
	Auth        *handlers.AuthHandler
	Account     *handlers.AccountHandler
	Staking     *handlers.StakingHandler
	Investment  *handlers.InvestmentHandler
	Activity    *handlers.ActivityHandler
	Installment *handlers.InstallmentHandler
	WS          *handlers.WSHub
}

// NewHandlers builds the handler set for one ledger.
func NewHandlers(ledger *services.Ledger, wallet *services.WalletService, wsHub *handlers.WSHub, log *zap.Logger) *Handlers {
	return &Handlers{
		Auth:        handlers.NewAuthHandler(wallet, log),
		Account:     handlers.NewAccountHandler(ledger, log),
		Staking:     handlers.NewStakingHandler(ledger.Staking, log),
		Investment:  handlers.NewInvestmentHandler(ledger.Investment, log),
		Activity:    handlers.NewActivityHandler(ledger.Activity, log),
		Installment: handlers.NewInstallmentHandler(ledger.Installments, log),
		WS:          wsHub,
	}
}

// SetupRouter mounts the REST API. rdb may be nil, in which case rate
// limiting is kept in process.
func SetupRouter(app *fiber.App, cfg *config.Config, log *zap.Logger, rdb *redis.Client, h *Handlers) {
	// Global middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
	}))
	app.Use(middleware.RequestIDMiddleware())
	app.Use(middleware.LoggerMiddleware(log))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api/v1")

	api.Use(middleware.RateLimitMiddleware(rdb, cfg.RateLimitPerMinute, time.Minute))

	// Auth (public)
	api.Post("/auth/proof-payload", h.Auth.ProofPayload)
	api.Post("/auth/ton-proof", h.Auth.TonProof)

	// Catalogs (public)
	api.Get("/staking/options", h.Staking.ListOptions)
	api.Get("/governance/tokens", h.Investment.ListGovernanceTokens)
	api.Get("/pools", h.Investment.ListPools)
	api.Get("/nfts", h.Investment.ListNFTs)
	api.Get("/subscriptions/plans", h.Activity.ListPlans)

	// Protected endpoints
	protected := api.Group("", middleware.AuthMiddleware(cfg, log))

	// Account
	protected.Get("/me", h.Account.GetMe)
	protected.Get("/me/balance", h.Account.GetBalance)
	protected.Get("/me/journal", h.Account.GetJournal)

	// Missions
	protected.Get("/missions", h.Account.ListMissions)
	protected.Get("/missions/next", h.Account.NextMission)

	// Staking
	protected.Get("/staking/positions", h.Staking.ListPositions)
	protected.Post("/staking/stake", h.Staking.Stake)
	protected.Post("/staking/positions/:id/unstake", h.Staking.Unstake)

	// Governance
	protected.Post("/governance/buy", h.Investment.BuyGovernanceToken)
	protected.Get("/governance/purchases", h.Investment.ListGovernancePurchases)

	// Pools
	protected.Post("/pools/join", h.Investment.JoinPool)
	protected.Get("/pools/contributions", h.Investment.ListPoolContributions)

	// NFTs
	protected.Get("/nfts/owned", h.Investment.ListOwnedNFTs)
	protected.Post("/nfts/buy", h.Investment.BuyNFT)

	// Airdrops
	protected.Get("/airdrops", h.Investment.ListAirdrops)
	protected.Post("/airdrops/:id/claim", h.Investment.ClaimAirdrop)

	// Activity
	protected.Post("/faucet/claim", h.Activity.ClaimFaucet)
	protected.Get("/subscriptions", h.Activity.ListSubscriptions)
	protected.Post("/subscriptions", h.Activity.Subscribe)
	protected.Post("/passive-income/activate", h.Activity.ActivatePassiveIncome)

	// Installments
	protected.Get("/installments", h.Installment.List)
	protected.Post("/installments", h.Installment.Create)
	protected.Post("/installments/:id/pay", h.Installment.Pay)

	// WebSocket
	app.Use("/ws", handlers.WSUpgradeMiddleware())
	app.Get("/ws", websocket.New(h.WS.HandleWS))
}
