package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/token-ledger/backend/internal/http/dto"
	"github.com/token-ledger/backend/internal/middleware"
	"github.com/token-ledger/backend/internal/services"
	"go.uber.org/zap"
)

type InstallmentHandler struct {
	installments *services.InstallmentService
	log          *zap.Logger
}

func NewInstallmentHandler(installments *services.InstallmentService, log *zap.Logger) *InstallmentHandler {
	return &InstallmentHandler{installments: installments, log: log}
}

func (h *InstallmentHandler) List(c *fiber.Ctx) error {
	purchases, err := h.installments.Purchases(c.Context(), middleware.GetUserID(c))
	if err != nil {
		return ledgerError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: purchases})
}

func (h *InstallmentHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateInstallmentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.ProductID == "" {
		return badRequest(c, "product_id is required")
	}

	purchase, err := h.installments.CreatePurchase(c.Context(), middleware.GetUserID(c), req.ProductID, req.TotalAmount, req.Installments)
	if err != nil {
		return ledgerError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: purchase})
}

func (h *InstallmentHandler) Pay(c *fiber.Ctx) error {
	purchase, err := h.installments.PayInstallment(c.Context(), middleware.GetUserID(c), c.Params("id"))
	if err != nil {
		return ledgerError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: purchase})
}
