package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/token-ledger/backend/internal/models"
	"github.com/token-ledger/backend/internal/repositories"
	"go.uber.org/zap"
)

// Journal reasons
const (
	ReasonCredit        = "credit"
	ReasonDebit         = "debit"
	ReasonWelcomeBonus  = "welcome_bonus"
	ReasonMissionReward = "mission_reward"
	ReasonStake         = "stake"
	ReasonUnstake       = "unstake"
	ReasonGovernance    = "governance_purchase"
	ReasonPool          = "pool_contribution"
	ReasonNFT           = "nft_purchase"
	ReasonAirdrop       = "airdrop"
	ReasonInstallment   = "installment_payment"
	ReasonFaucet        = "faucet"
	ReasonSubscription  = "subscription"
)

type BalanceService struct {
	run      *runner
	balances *repositories.BalanceRepo
	journal  *repositories.JournalRepo
	log      *zap.Logger
}

func newBalanceService(run *runner, balances *repositories.BalanceRepo, journal *repositories.JournalRepo, log *zap.Logger) *BalanceService {
	return &BalanceService{run: run, balances: balances, journal: journal, log: log}
}

// GetBalance returns zero for unknown users.
func (s *BalanceService) GetBalance(ctx context.Context, userID string) (decimal.Decimal, error) {
	var bal decimal.Decimal
	err := s.run.view(ctx, userID, func(u *unit) error {
		var err error
		bal, err = s.balance(u)
		return err
	})
	return bal, err
}

func (s *BalanceService) Credit(ctx context.Context, userID string, amount decimal.Decimal) (decimal.Decimal, error) {
	var bal decimal.Decimal
	err := s.run.mutate(ctx, userID, "credit", func(u *unit) error {
		var err error
		bal, err = s.credit(u, amount, ReasonCredit)
		u.set("balance", bal)
		return err
	})
	return bal, err
}

func (s *BalanceService) Debit(ctx context.Context, userID string, amount decimal.Decimal) (decimal.Decimal, error) {
	var bal decimal.Decimal
	err := s.run.mutate(ctx, userID, "debit", func(u *unit) error {
		var err error
		bal, err = s.debit(u, amount, ReasonDebit)
		u.set("balance", bal)
		return err
	})
	return bal, err
}

// Journal returns recent balance movements, newest first.
func (s *BalanceService) Journal(ctx context.Context, userID string) ([]models.JournalEntry, error) {
	var entries []models.JournalEntry
	err := s.run.view(ctx, userID, func(u *unit) error {
		var err error
		entries, err = s.journal.List(u.ctx, u.tx, userID)
		return err
	})
	return entries, err
}

func (s *BalanceService) balance(u *unit) (decimal.Decimal, error) {
	return s.balances.Get(u.ctx, u.tx, u.userID)
}

func (s *BalanceService) credit(u *unit, amount decimal.Decimal, reason string) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	bal, err := s.balance(u)
	if err != nil {
		return decimal.Zero, err
	}
	return s.apply(u, bal, amount, reason)
}

// debit leaves the transaction untouched when funds are short.
func (s *BalanceService) debit(u *unit, amount decimal.Decimal, reason string) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	bal, err := s.balance(u)
	if err != nil {
		return decimal.Zero, err
	}
	if bal.LessThan(amount) {
		return bal, fmt.Errorf("%w: balance %s, need %s", ErrInsufficientFunds, bal, amount)
	}
	return s.apply(u, bal, amount.Neg(), reason)
}

func (s *BalanceService) apply(u *unit, bal, delta decimal.Decimal, reason string) (decimal.Decimal, error) {
	next := bal.Add(delta)
	s.balances.Put(u.tx, u.userID, next)
	if err := s.journal.Append(u.ctx, u.tx, u.userID, models.JournalEntry{
		At:           u.now,
		Delta:        delta,
		Reason:       reason,
		BalanceAfter: next,
	}); err != nil {
		return decimal.Zero, err
	}
	return next, nil
}
