package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	StakeStatusActive    = "active"
	StakeStatusWithdrawn = "withdrawn"
)

// RewardPrecision is the number of decimal places kept for rewards and
// fractional balances.
const RewardPrecision = 8

var daysPerYearPercent = decimal.NewFromInt(36500)

type StakeOption struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	MinTokens    int64           `json:"min_tokens"`
	APY          decimal.Decimal `json:"apy"`
	DurationDays int             `json:"duration_days"`
}

type StakePosition struct {
	ID            string           `json:"id"`
	UserID        string           `json:"user_id"`
	OptionID      string           `json:"option_id"`
	Amount        int64            `json:"amount"`
	APY           decimal.Decimal  `json:"apy"`
	DurationDays  int              `json:"duration_days"`
	StartTime     time.Time        `json:"start_time"`
	EndTime       time.Time        `json:"end_time"`
	AccruedReward decimal.Decimal  `json:"accrued_reward"`
	Status        string           `json:"status"`
	WithdrawnAt   *time.Time       `json:"withdrawn_at,omitempty"`
	PaidReward    *decimal.Decimal `json:"paid_reward,omitempty"`
}

func (p *StakePosition) IsActive() bool {
	return p.Status == StakeStatusActive
}

// Matured is a hint for the UI; it never blocks unstaking.
func (p *StakePosition) Matured(now time.Time) bool {
	return !now.Before(p.EndTime)
}

// LiveReward prorates the fixed reward by elapsed time, capped at maturity.
func (p *StakePosition) LiveReward(now time.Time) decimal.Decimal {
	if p.Matured(now) {
		return p.AccruedReward
	}
	total := p.EndTime.Sub(p.StartTime)
	elapsed := now.Sub(p.StartTime)
	if total <= 0 || elapsed <= 0 {
		return decimal.Zero
	}
	return p.AccruedReward.
		Mul(decimal.NewFromInt(int64(elapsed))).
		DivRound(decimal.NewFromInt(int64(total)), RewardPrecision)
}

// ComputeStakeReward is amount * apy / 100 / 365 * days, evaluated as a
// single division so the result does not depend on operation order.
func ComputeStakeReward(amount int64, apy decimal.Decimal, durationDays int) decimal.Decimal {
	return decimal.NewFromInt(amount).
		Mul(apy).
		Mul(decimal.NewFromInt(int64(durationDays))).
		DivRound(daysPerYearPercent, RewardPrecision)
}

type StakePositionView struct {
	StakePosition
	Matured    bool            `json:"matured"`
	LiveReward decimal.Decimal `json:"live_reward"`
}
