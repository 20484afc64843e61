package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/token-ledger/backend/internal/http/dto"
	"github.com/token-ledger/backend/internal/middleware"
	"github.com/token-ledger/backend/internal/services"
	"go.uber.org/zap"
)

type InvestmentHandler struct {
	investment *services.InvestmentService
	log        *zap.Logger
}

func NewInvestmentHandler(investment *services.InvestmentService, log *zap.Logger) *InvestmentHandler {
	return &InvestmentHandler{investment: investment, log: log}
}

// Governance

func (h *InvestmentHandler) ListGovernanceTokens(c *fiber.Ctx) error {
	return c.JSON(dto.SuccessResponse{OK: true, Data: h.investment.GovernanceTokens()})
}

func (h *InvestmentHandler) BuyGovernanceToken(c *fiber.Ctx) error {
	var req dto.BuyGovernanceRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.TokenID == "" {
		return badRequest(c, "token_id is required")
	}

	purchase, err := h.investment.BuyGovernanceToken(c.Context(), middleware.GetUserID(c), req.TokenID, req.Quantity)
	if err != nil {
		return ledgerError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: purchase})
}

func (h *InvestmentHandler) ListGovernancePurchases(c *fiber.Ctx) error {
	purchases, err := h.investment.GovernancePurchases(c.Context(), middleware.GetUserID(c))
	if err != nil {
		return ledgerError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: purchases})
}

// Pools

func (h *InvestmentHandler) ListPools(c *fiber.Ctx) error {
	return c.JSON(dto.SuccessResponse{OK: true, Data: h.investment.Pools()})
}

func (h *InvestmentHandler) JoinPool(c *fiber.Ctx) error {
	var req dto.JoinPoolRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.PoolID == "" {
		return badRequest(c, "pool_id is required")
	}

	contribution, err := h.investment.JoinPool(c.Context(), middleware.GetUserID(c), req.PoolID, req.Amount)
	if err != nil {
		return ledgerError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: contribution})
}

func (h *InvestmentHandler) ListPoolContributions(c *fiber.Ctx) error {
	contributions, err := h.investment.PoolContributions(c.Context(), middleware.GetUserID(c))
	if err != nil {
		return ledgerError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: contributions})
}

// NFTs

func (h *InvestmentHandler) ListNFTs(c *fiber.Ctx) error {
	return c.JSON(dto.SuccessResponse{OK: true, Data: h.investment.NFTs()})
}

func (h *InvestmentHandler) ListOwnedNFTs(c *fiber.Ctx) error {
	owned, err := h.investment.OwnedNFTs(c.Context(), middleware.GetUserID(c))
	if err != nil {
		return ledgerError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: owned})
}

func (h *InvestmentHandler) BuyNFT(c *fiber.Ctx) error {
	var req dto.BuyNFTRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.NftID == "" {
		return badRequest(c, "nft_id is required")
	}

	if err := h.investment.BuyNFT(c.Context(), middleware.GetUserID(c), req.NftID); err != nil {
		return ledgerError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true})
}

// Airdrops

func (h *InvestmentHandler) ListAirdrops(c *fiber.Ctx) error {
	airdrops, err := h.investment.Airdrops(c.Context(), middleware.GetUserID(c))
	if err != nil {
		return ledgerError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: airdrops})
}

func (h *InvestmentHandler) ClaimAirdrop(c *fiber.Ctx) error {
	claim, err := h.investment.ClaimAirdrop(c.Context(), middleware.GetUserID(c), c.Params("id"))
	if err != nil {
		return ledgerError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: claim})
}
