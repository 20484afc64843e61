package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/token-ledger/backend/internal/config"
	"github.com/token-ledger/backend/internal/events"
	"github.com/token-ledger/backend/internal/models"
	"github.com/token-ledger/backend/internal/repositories"
	"github.com/token-ledger/backend/internal/store"
	"go.uber.org/zap"
)

type InstallmentService struct {
	run          *runner
	installments *repositories.InstallmentRepo
	balance      *BalanceService
	staking      *StakingService
	cfg          *config.Config
	log          *zap.Logger

	// indexMu guards the global installment index. It is always taken
	// after the user lock.
	indexMu sync.Mutex
}

func newInstallmentService(
	run *runner,
	installments *repositories.InstallmentRepo,
	balance *BalanceService,
	staking *StakingService,
	cfg *config.Config,
	log *zap.Logger,
) *InstallmentService {
	return &InstallmentService{
		run:          run,
		installments: installments,
		balance:      balance,
		staking:      staking,
		cfg:          cfg,
		log:          log,
	}
}

// CreatePurchase opens a plan without any upfront debit. The user needs an
// active stake of at least the configured threshold.
func (s *InstallmentService) CreatePurchase(ctx context.Context, userID, productID string, totalAmount int64, count int) (*models.InstallmentPurchase, error) {
	var plan *models.InstallmentPurchase
	err := s.run.mutate(ctx, userID, "create_installment", func(u *unit) error {
		if totalAmount <= 0 || count <= 0 {
			return fmt.Errorf("%w: total %d, installments %d", ErrInvalidAmount, totalAmount, count)
		}
		split := models.SplitInstallments(totalAmount, count)
		if !split.IsPositive() {
			return fmt.Errorf("%w: %d split into %d installments rounds to zero", ErrInvalidAmount, totalAmount, count)
		}
		eligible, err := s.staking.hasActiveStake(u, s.cfg.InstallmentMinStake)
		if err != nil {
			return err
		}
		if !eligible {
			return fmt.Errorf("%w: requires an active stake of at least %d", ErrEligibilityNotMet, s.cfg.InstallmentMinStake)
		}

		plan = &models.InstallmentPurchase{
			ID:                uuid.NewString(),
			UserID:            userID,
			ProductID:         productID,
			TotalAmount:       totalAmount,
			InstallmentsCount: count,
			InstallmentAmount: split,
			PaidAmount:        decimal.Zero,
			NextPaymentDate:   u.now.Add(s.cfg.InstallmentPeriod),
			Status:            models.InstallmentStatusActive,
			CreatedAt:         u.now,
		}
		if err := s.installments.Put(u.ctx, u.tx, plan); err != nil {
			return err
		}

		u.hold(&s.indexMu)
		if err := s.installments.AddToIndex(u.ctx, u.tx, models.InstallmentRef{UserID: userID, PurchaseID: plan.ID}); err != nil {
			return err
		}

		u.set("purchase_id", plan.ID)
		u.set("installment_amount", plan.InstallmentAmount)
		s.log.Info("installment plan created",
			zap.String("user_id", userID),
			zap.String("purchase_id", plan.ID),
			zap.Int64("total", totalAmount),
			zap.Int("installments", count),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return plan, nil
}

// PayInstallment debits the amount due. Overdue plans can still be paid.
func (s *InstallmentService) PayInstallment(ctx context.Context, userID, purchaseID string) (*models.InstallmentPurchase, error) {
	var plan *models.InstallmentPurchase
	err := s.run.mutate(ctx, userID, "pay_installment", func(u *unit) error {
		var err error
		plan, err = s.installments.Get(u.ctx, u.tx, userID, purchaseID)
		if err != nil {
			return err
		}
		if plan == nil {
			return fmt.Errorf("%w: %q", ErrPurchaseNotFound, purchaseID)
		}
		if !plan.IsActive() {
			return fmt.Errorf("%w: purchase %q is %s", ErrNotActive, purchaseID, plan.Status)
		}

		due := plan.AmountDue()
		if _, err := s.balance.debit(u, due, ReasonInstallment); err != nil {
			return err
		}
		plan.PaidInstallments++
		plan.PaidAmount = plan.PaidAmount.Add(due)

		if plan.PaidInstallments >= plan.InstallmentsCount {
			if !models.CanTransition(models.ValidInstallmentTransitions, plan.Status, models.InstallmentStatusCompleted) {
				return fmt.Errorf("invalid installment transition from %s", plan.Status)
			}
			now := u.now
			plan.Status = models.InstallmentStatusCompleted
			plan.CompletedAt = &now

			u.hold(&s.indexMu)
			if err := s.installments.RemoveFromIndex(u.ctx, u.tx, models.InstallmentRef{UserID: userID, PurchaseID: plan.ID}); err != nil {
				return err
			}
		} else {
			plan.NextPaymentDate = plan.NextPaymentDate.Add(s.cfg.InstallmentPeriod)
		}
		if err := s.installments.Put(u.ctx, u.tx, plan); err != nil {
			return err
		}

		u.set("purchase_id", plan.ID)
		u.set("paid", due)
		u.set("status", plan.Status)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return plan, nil
}

// Purchases lists plans newest first with the derived overdue status.
func (s *InstallmentService) Purchases(ctx context.Context, userID string) ([]models.InstallmentView, error) {
	var views []models.InstallmentView
	err := s.run.view(ctx, userID, func(u *unit) error {
		plans, err := s.installments.List(u.ctx, u.tx, userID)
		if err != nil {
			return err
		}
		views = make([]models.InstallmentView, 0, len(plans))
		for _, p := range plans {
			v := models.InstallmentView{InstallmentPurchase: p, EffectiveStatus: p.EffectiveStatus(u.now)}
			if p.IsActive() {
				v.AmountDue = p.AmountDue()
			}
			views = append(views, v)
		}
		return nil
	})
	return views, err
}

type Reminder struct {
	UserID     string          `json:"user_id"`
	PurchaseID string          `json:"purchase_id"`
	ProductID  string          `json:"product_id"`
	AmountDue  decimal.Decimal `json:"amount_due"`
	DueAt      time.Time       `json:"due_at"`
	Overdue    bool            `json:"overdue"`
}

// DueReminders scans active plans that are overdue or due within window.
// It only reads.
func (s *InstallmentService) DueReminders(ctx context.Context, window time.Duration) ([]Reminder, error) {
	now := s.run.clock.Now().UTC()
	tx := store.NewTx(s.run.store)

	s.indexMu.Lock()
	refs, err := s.installments.Index(ctx, tx)
	s.indexMu.Unlock()
	if err != nil {
		return nil, storageErr(err)
	}

	var reminders []Reminder
	for _, ref := range refs {
		plan, err := s.installments.Get(ctx, tx, ref.UserID, ref.PurchaseID)
		if err != nil {
			return nil, storageErr(err)
		}
		if plan == nil || !plan.IsActive() {
			continue
		}
		overdue := plan.EffectiveStatus(now) == models.InstallmentStatusOverdue
		if !overdue && plan.NextPaymentDate.Sub(now) > window {
			continue
		}
		reminders = append(reminders, Reminder{
			UserID:     plan.UserID,
			PurchaseID: plan.ID,
			ProductID:  plan.ProductID,
			AmountDue:  plan.AmountDue(),
			DueAt:      plan.NextPaymentDate,
			Overdue:    overdue,
		})
	}
	return reminders, nil
}

// SendReminders publishes installment_due and installment_overdue events
// and returns how many were sent.
func (s *InstallmentService) SendReminders(ctx context.Context, window time.Duration) (int, error) {
	reminders, err := s.DueReminders(ctx, window)
	if err != nil {
		return 0, err
	}
	for _, r := range reminders {
		eventType := events.EventInstallmentDue
		if r.Overdue {
			eventType = events.EventInstallmentOverdue
		}
		s.run.publish(ctx, events.Event{
			Type: eventType,
			Payload: map[string]any{
				"user_id":     r.UserID,
				"purchase_id": r.PurchaseID,
				"product_id":  r.ProductID,
				"amount_due":  r.AmountDue.String(),
				"due_at":      r.DueAt,
			},
		})
	}
	return len(reminders), nil
}
