package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/token-ledger/backend/internal/http/dto"
	"github.com/token-ledger/backend/internal/middleware"
	"github.com/token-ledger/backend/internal/services"
	"github.com/token-ledger/backend/internal/ton"
	"go.uber.org/zap"
)

type AuthHandler struct {
	walletService *services.WalletService
	log           *zap.Logger
}

func NewAuthHandler(walletService *services.WalletService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{walletService: walletService, log: log}
}

// ProofPayload POST /auth/proof-payload
func (h *AuthHandler) ProofPayload(c *fiber.Ctx) error {
	payload, err := h.walletService.GeneratePayload(c.Context())
	if err != nil {
		h.log.Error("failed to generate proof payload", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
			Error:     "failed to generate payload",
			RequestID: middleware.GetRequestID(c),
		})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: dto.ProofPayloadResponse{Payload: payload}})
}

// TonProof POST /auth/ton-proof
func (h *AuthHandler) TonProof(c *fiber.Ctx) error {
	var req dto.ConnectWalletRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.Address == "" || req.PublicKey == "" || req.Proof.Payload == "" || req.Proof.Signature == "" {
		return badRequest(c, "address, public_key, proof.payload and proof.signature are required")
	}

	session, err := h.walletService.ConnectWallet(c.Context(), ton.ProofData{
		Address:   req.Address,
		Network:   req.Network,
		PublicKey: req.PublicKey,
		Proof: ton.Proof{
			Timestamp: req.Proof.Timestamp,
			Domain: ton.ProofDomain{
				LengthBytes: req.Proof.Domain.LengthBytes,
				Value:       req.Proof.Domain.Value,
			},
			Payload:   req.Proof.Payload,
			Signature: req.Proof.Signature,
		},
		StateInit: req.StateInit,
	})
	if errors.Is(err, services.ErrProofRejected) {
		h.log.Debug("ton proof rejected", zap.Error(err))
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error:     err.Error(),
			RequestID: middleware.GetRequestID(c),
		})
	}
	if err != nil {
		return ledgerError(c, h.log, err)
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: session})
}
