package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/token-ledger/backend/internal/catalog"
	"github.com/token-ledger/backend/internal/config"
	"github.com/token-ledger/backend/internal/models"
	"github.com/token-ledger/backend/internal/repositories"
	"go.uber.org/zap"
)

// ActivityService covers the faucet, subscriptions and passive income.
type ActivityService struct {
	run         *runner
	catalog     *catalog.Catalog
	accounts    *repositories.AccountRepo
	investments *repositories.InvestmentRepo
	balance     *BalanceService
	missions    *MissionService
	staking     *StakingService
	cfg         *config.Config
	log         *zap.Logger
}

func newActivityService(
	run *runner,
	cat *catalog.Catalog,
	accounts *repositories.AccountRepo,
	investments *repositories.InvestmentRepo,
	balance *BalanceService,
	missions *MissionService,
	staking *StakingService,
	cfg *config.Config,
	log *zap.Logger,
) *ActivityService {
	return &ActivityService{
		run:         run,
		catalog:     cat,
		accounts:    accounts,
		investments: investments,
		balance:     balance,
		missions:    missions,
		staking:     staking,
		cfg:         cfg,
		log:         log,
	}
}

// ClaimFaucet credits the faucet amount at most once per cooldown.
func (s *ActivityService) ClaimFaucet(ctx context.Context, userID string) (decimal.Decimal, error) {
	var bal decimal.Decimal
	err := s.run.mutate(ctx, userID, "claim_faucet", func(u *unit) error {
		acc, err := s.accounts.GetOrNew(u.ctx, u.tx, userID, u.now)
		if err != nil {
			return err
		}
		if ready := faucetReadyAt(acc, s.cfg.FaucetCooldown); ready != nil && u.now.Before(*ready) {
			return fmt.Errorf("%w: next claim at %s", ErrCooldownActive, ready.Format(time.RFC3339))
		}

		bal, err = s.balance.credit(u, decimal.NewFromInt(s.cfg.FaucetAmount), ReasonFaucet)
		if err != nil {
			return err
		}
		now := u.now
		acc.LastFaucetAt = &now
		if err := s.accounts.Put(u.tx, acc); err != nil {
			return err
		}
		u.set("amount", s.cfg.FaucetAmount)
		u.set("balance", bal)
		return s.missions.completeSideEffect(u, models.MissionFaucet)
	})
	return bal, err
}

func (s *ActivityService) SubscriptionPlans() []models.SubscriptionPlan {
	return s.catalog.SubscriptionPlans
}

func (s *ActivityService) Subscribe(ctx context.Context, userID, planID string) (*models.Subscription, error) {
	var sub *models.Subscription
	err := s.run.mutate(ctx, userID, "subscribe", func(u *unit) error {
		plan, ok := s.catalog.SubscriptionPlan(planID)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownPlan, planID)
		}
		if plan.Price > 0 {
			if _, err := s.balance.debit(u, decimal.NewFromInt(plan.Price), ReasonSubscription); err != nil {
				return err
			}
		}
		sub = &models.Subscription{
			PlanID:    plan.ID,
			StartedAt: u.now,
			EndsAt:    u.now.Add(time.Duration(plan.PeriodDays) * 24 * time.Hour),
		}
		if err := s.investments.AddSubscription(u.ctx, u.tx, userID, *sub); err != nil {
			return err
		}
		u.set("plan_id", plan.ID)
		return s.missions.completeSideEffect(u, models.MissionSubscription)
	})
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *ActivityService) Subscriptions(ctx context.Context, userID string) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := s.run.view(ctx, userID, func(u *unit) error {
		var err error
		subs, err = s.investments.Subscriptions(u.ctx, u.tx, userID)
		return err
	})
	return subs, err
}

// ActivatePassiveIncome requires any active stake. Activating twice keeps
// the original activation time.
func (s *ActivityService) ActivatePassiveIncome(ctx context.Context, userID string) (time.Time, error) {
	var at time.Time
	err := s.run.mutate(ctx, userID, "activate_passive_income", func(u *unit) error {
		staking, err := s.staking.hasActiveStake(u, 1)
		if err != nil {
			return err
		}
		if !staking {
			return fmt.Errorf("%w: requires an active stake", ErrEligibilityNotMet)
		}
		acc, err := s.accounts.GetOrNew(u.ctx, u.tx, userID, u.now)
		if err != nil {
			return err
		}
		if acc.PassiveIncomeAt == nil {
			now := u.now
			acc.PassiveIncomeAt = &now
			if err := s.accounts.Put(u.tx, acc); err != nil {
				return err
			}
		}
		at = *acc.PassiveIncomeAt
		return s.missions.completeSideEffect(u, models.MissionPassiveIncome)
	})
	return at, err
}

func faucetReadyAt(acc *models.Account, cooldown time.Duration) *time.Time {
	if acc.LastFaucetAt == nil {
		return nil
	}
	ready := acc.LastFaucetAt.Add(cooldown)
	return &ready
}
