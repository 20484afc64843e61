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

type StakingService struct {
	run      *runner
	catalog  *catalog.Catalog
	stakes   *repositories.StakeRepo
	accounts *repositories.AccountRepo
	balance  *BalanceService
	missions *MissionService
	cfg      *config.Config
	log      *zap.Logger
}

func newStakingService(
	run *runner,
	cat *catalog.Catalog,
	stakes *repositories.StakeRepo,
	accounts *repositories.AccountRepo,
	balance *BalanceService,
	missions *MissionService,
	cfg *config.Config,
	log *zap.Logger,
) *StakingService {
	return &StakingService{
		run:      run,
		catalog:  cat,
		stakes:   stakes,
		accounts: accounts,
		balance:  balance,
		missions: missions,
		cfg:      cfg,
		log:      log,
	}
}

func (s *StakingService) Options() []models.StakeOption {
	return s.catalog.StakeOptions
}

// Stake debits amount and opens a position whose reward is fixed now.
func (s *StakingService) Stake(ctx context.Context, userID, optionID string, amount int64) (*models.StakePosition, error) {
	var pos *models.StakePosition
	err := s.run.mutate(ctx, userID, "stake", func(u *unit) error {
		opt, ok := s.catalog.StakeOption(optionID)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownOption, optionID)
		}
		if amount < opt.MinTokens {
			return fmt.Errorf("%w: %d < %d", ErrBelowMinimum, amount, opt.MinTokens)
		}
		if amount <= 0 {
			return ErrInvalidAmount
		}
		if _, err := s.balance.debit(u, decimal.NewFromInt(amount), ReasonStake); err != nil {
			return err
		}

		acc, err := s.accounts.GetOrNew(u.ctx, u.tx, userID, u.now)
		if err != nil {
			return err
		}
		seq := acc.NextSequence()
		if err := s.accounts.Put(u.tx, acc); err != nil {
			return err
		}

		pos = &models.StakePosition{
			ID:            fmt.Sprintf("%d-%d", u.now.UnixMilli(), seq),
			UserID:        userID,
			OptionID:      opt.ID,
			Amount:        amount,
			APY:           opt.APY,
			DurationDays:  opt.DurationDays,
			StartTime:     u.now,
			EndTime:       u.now.Add(time.Duration(opt.DurationDays) * 24 * time.Hour),
			AccruedReward: models.ComputeStakeReward(amount, opt.APY, opt.DurationDays),
			Status:        models.StakeStatusActive,
		}
		if err := s.stakes.Put(u.ctx, u.tx, pos); err != nil {
			return err
		}
		if err := s.missions.completeSideEffect(u, models.MissionStake); err != nil {
			return err
		}

		u.set("position_id", pos.ID)
		u.set("amount", amount)
		s.log.Info("stake opened",
			zap.String("user_id", userID),
			zap.String("position_id", pos.ID),
			zap.Int64("amount", amount),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pos, nil
}

// Unstake returns principal plus reward regardless of maturity. With live
// accrual enabled the reward is prorated by elapsed time.
func (s *StakingService) Unstake(ctx context.Context, userID, positionID string) (*models.StakePosition, error) {
	var pos *models.StakePosition
	err := s.run.mutate(ctx, userID, "unstake", func(u *unit) error {
		var err error
		pos, err = s.stakes.Get(u.ctx, u.tx, userID, positionID)
		if err != nil {
			return err
		}
		if pos == nil {
			return fmt.Errorf("%w: %q", ErrPositionNotFound, positionID)
		}
		if !models.CanTransition(models.ValidStakeTransitions, pos.Status, models.StakeStatusWithdrawn) {
			return fmt.Errorf("%w: position %q is %s", ErrNotActive, positionID, pos.Status)
		}

		reward := pos.AccruedReward
		if s.cfg.LiveAccrual {
			reward = pos.LiveReward(u.now)
		}
		payout := decimal.NewFromInt(pos.Amount).Add(reward)
		if _, err := s.balance.credit(u, payout, ReasonUnstake); err != nil {
			return err
		}

		now := u.now
		pos.Status = models.StakeStatusWithdrawn
		pos.WithdrawnAt = &now
		pos.PaidReward = &reward
		if err := s.stakes.Put(u.ctx, u.tx, pos); err != nil {
			return err
		}

		u.set("position_id", pos.ID)
		u.set("payout", payout)
		s.log.Info("stake withdrawn",
			zap.String("user_id", userID),
			zap.String("position_id", pos.ID),
			zap.String("payout", payout.String()),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pos, nil
}

// Positions lists every position, newest first, withdrawn ones included.
func (s *StakingService) Positions(ctx context.Context, userID string) ([]models.StakePositionView, error) {
	var views []models.StakePositionView
	err := s.run.view(ctx, userID, func(u *unit) error {
		positions, err := s.stakes.List(u.ctx, u.tx, userID)
		if err != nil {
			return err
		}
		views = make([]models.StakePositionView, 0, len(positions))
		for _, p := range positions {
			v := models.StakePositionView{StakePosition: p, Matured: p.Matured(u.now), LiveReward: p.AccruedReward}
			if p.IsActive() {
				v.LiveReward = p.LiveReward(u.now)
			} else if p.PaidReward != nil {
				v.LiveReward = *p.PaidReward
			}
			views = append(views, v)
		}
		return nil
	})
	return views, err
}

// hasActiveStake reports whether the user holds an active position of at
// least minAmount.
func (s *StakingService) hasActiveStake(u *unit, minAmount int64) (bool, error) {
	positions, err := s.stakes.List(u.ctx, u.tx, u.userID)
	if err != nil {
		return false, err
	}
	for _, p := range positions {
		if p.IsActive() && p.Amount >= minAmount {
			return true, nil
		}
	}
	return false, nil
}
