package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/token-ledger/backend/internal/http/dto"
	"github.com/token-ledger/backend/internal/middleware"
	"github.com/token-ledger/backend/internal/services"
	"go.uber.org/zap"
)

type AccountHandler struct {
	ledger *services.Ledger
	log    *zap.Logger
}

func NewAccountHandler(ledger *services.Ledger, log *zap.Logger) *AccountHandler {
	return &AccountHandler{ledger: ledger, log: log}
}

func (h *AccountHandler) GetMe(c *fiber.Ctx) error {
	sum, err := h.ledger.Account(c.Context(), middleware.GetUserID(c))
	if err != nil {
		return ledgerError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: sum})
}

func (h *AccountHandler) GetBalance(c *fiber.Ctx) error {
	bal, err := h.ledger.Balance.GetBalance(c.Context(), middleware.GetUserID(c))
	if err != nil {
		return ledgerError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: dto.BalanceResponse{Balance: bal}})
}

func (h *AccountHandler) GetJournal(c *fiber.Ctx) error {
	entries, err := h.ledger.Journal(c.Context(), middleware.GetUserID(c))
	if err != nil {
		return ledgerError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: entries})
}

func (h *AccountHandler) ListMissions(c *fiber.Ctx) error {
	missions, err := h.ledger.Missions.Missions(c.Context(), middleware.GetUserID(c))
	if err != nil {
		return ledgerError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: missions})
}

// NextMission returns data=null once every mission is completed.
func (h *AccountHandler) NextMission(c *fiber.Ctx) error {
	next, err := h.ledger.Missions.NextAvailable(c.Context(), middleware.GetUserID(c))
	if err != nil {
		return ledgerError(c, h.log, err)
	}
	if next == nil {
		return c.JSON(fiber.Map{"ok": true, "data": nil})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: next})
}
