package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/token-ledger/backend/internal/http/dto"
	"github.com/token-ledger/backend/internal/middleware"
	"github.com/token-ledger/backend/internal/services"
	"go.uber.org/zap"
)

type ActivityHandler struct {
	activity *services.ActivityService
	log      *zap.Logger
}

func NewActivityHandler(activity *services.ActivityService, log *zap.Logger) *ActivityHandler {
	return &ActivityHandler{activity: activity, log: log}
}

func (h *ActivityHandler) ClaimFaucet(c *fiber.Ctx) error {
	bal, err := h.activity.ClaimFaucet(c.Context(), middleware.GetUserID(c))
	if err != nil {
		return ledgerError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: dto.BalanceResponse{Balance: bal}})
}

func (h *ActivityHandler) ListPlans(c *fiber.Ctx) error {
	return c.JSON(dto.SuccessResponse{OK: true, Data: h.activity.SubscriptionPlans()})
}

func (h *ActivityHandler) ListSubscriptions(c *fiber.Ctx) error {
	subs, err := h.activity.Subscriptions(c.Context(), middleware.GetUserID(c))
	if err != nil {
		return ledgerError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: subs})
}

func (h *ActivityHandler) Subscribe(c *fiber.Ctx) error {
	var req dto.SubscribeRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.PlanID == "" {
		return badRequest(c, "plan_id is required")
	}

	sub, err := h.activity.Subscribe(c.Context(), middleware.GetUserID(c), req.PlanID)
	if err != nil {
		return ledgerError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: sub})
}

func (h *ActivityHandler) ActivatePassiveIncome(c *fiber.Ctx) error {
	at, err := h.activity.ActivatePassiveIncome(c.Context(), middleware.GetUserID(c))
	if err != nil {
		return ledgerError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: dto.PassiveIncomeResponse{ActivatedAt: at}})
}
