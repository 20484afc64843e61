package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/token-ledger/backend/internal/http/dto"
	"github.com/token-ledger/backend/internal/middleware"
	"github.com/token-ledger/backend/internal/services"
	"go.uber.org/zap"
)

// statusFor maps a ledger error kind to an HTTP status.
func statusFor(kind services.Kind) int {
	switch kind {
	case services.KindUnknownMission, services.KindUnknownOption, services.KindUnknownToken,
		services.KindUnknownPool, services.KindUnknownNFT, services.KindUnknownAirdrop,
		services.KindUnknownPlan, services.KindPositionNotFound, services.KindPurchaseNotFound:
		return fiber.StatusNotFound
	case services.KindAlreadyClaimed, services.KindAlreadyOwned, services.KindNotActive,
		services.KindMissionLocked, services.KindCooldownActive:
		return fiber.StatusConflict
	case services.KindInsufficientFunds, services.KindInvalidAmount, services.KindBelowMinimum,
		services.KindBelowMinContribution, services.KindEligibilityNotMet, services.KindNotEligible:
		return fiber.StatusUnprocessableEntity
	case services.KindStorageUnavailable:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// ledgerError writes err as an ErrorResponse. Storage failures are logged
// and their cause hidden from the client.
func ledgerError(c *fiber.Ctx, log *zap.Logger, err error) error {
	kind := services.KindOf(err)
	status := statusFor(kind)
	msg := err.Error()
	if status >= fiber.StatusInternalServerError {
		log.Error("ledger operation failed",
			zap.String("path", c.Path()),
			zap.String("user_id", middleware.GetUserID(c)),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
		var le *services.LedgerError
		if errors.As(err, &le) {
			msg = le.Message
		} else {
			msg = "internal error"
		}
	}
	return c.Status(status).JSON(dto.ErrorResponse{
		Error:     msg,
		Kind:      string(kind),
		RequestID: middleware.GetRequestID(c),
	})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: msg, RequestID: middleware.GetRequestID(c)})
}
