package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/token-ledger/backend/internal/http/dto"
	"github.com/token-ledger/backend/internal/middleware"
	"github.com/token-ledger/backend/internal/services"
	"go.uber.org/zap"
)

type StakingHandler struct {
	staking *services.StakingService
	log     *zap.Logger
}

func NewStakingHandler(staking *services.StakingService, log *zap.Logger) *StakingHandler {
	return &StakingHandler{staking: staking, log: log}
}

func (h *StakingHandler) ListOptions(c *fiber.Ctx) error {
	return c.JSON(dto.SuccessResponse{OK: true, Data: h.staking.Options()})
}

func (h *StakingHandler) ListPositions(c *fiber.Ctx) error {
	positions, err := h.staking.Positions(c.Context(), middleware.GetUserID(c))
	if err != nil {
		return ledgerError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: positions})
}

func (h *StakingHandler) Stake(c *fiber.Ctx) error {
	var req dto.StakeRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.OptionID == "" {
		return badRequest(c, "option_id is required")
	}

	pos, err := h.staking.Stake(c.Context(), middleware.GetUserID(c), req.OptionID, req.Amount)
	if err != nil {
		return ledgerError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: pos})
}

func (h *StakingHandler) Unstake(c *fiber.Ctx) error {
	pos, err := h.staking.Unstake(c.Context(), middleware.GetUserID(c), c.Params("id"))
	if err != nil {
		return ledgerError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: pos})
}
