package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type ProofPayloadResponse struct {
	Payload string `json:"payload"`
}

type ErrorResponse struct {
	Error     string `json:"error"`
	Kind      string `json:"kind,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type SuccessResponse struct {
	OK   bool `json:"ok"`
	Data any  `json:"data,omitempty"`
}

type BalanceResponse struct {
	Balance decimal.Decimal `json:"balance"`
}

type PassiveIncomeResponse struct {
	ActivatedAt time.Time `json:"activated_at"`
}
