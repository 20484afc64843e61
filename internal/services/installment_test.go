package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/token-ledger/backend/internal/events"
	"github.com/token-ledger/backend/internal/models"
)

func stakeForInstallments(t *testing.T, env *testEnv, credit int64) {
	t.Helper()
	env.credit(t, user, credit)
	_, err := env.ledger.Staking.Stake(context.Background(), user, "stake-2", 50)
	require.NoError(t, err)
}

func TestCreatePurchase_Validation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.ledger.Installments.CreatePurchase(ctx, user, "p1", 0, 4)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = env.ledger.Installments.CreatePurchase(ctx, user, "p1", 100, 0)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	// a small stake does not qualify
	env.credit(t, user, 100)
	_, err = env.ledger.Staking.Stake(ctx, user, "stake-1", 49)
	require.NoError(t, err)
	_, err = env.ledger.Installments.CreatePurchase(ctx, user, "p1", 100, 4)
	assert.ErrorIs(t, err, ErrEligibilityNotMet)
}

func TestCreatePurchase_EligibilityLostAfterUnstake(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.credit(t, user, 50)

	pos, err := env.ledger.Staking.Stake(ctx, user, "stake-1", 50)
	require.NoError(t, err)
	_, err = env.ledger.Staking.Unstake(ctx, user, pos.ID)
	require.NoError(t, err)

	_, err = env.ledger.Installments.CreatePurchase(ctx, user, "p1", 100, 4)
	assert.ErrorIs(t, err, ErrEligibilityNotMet)
}

func TestPayInstallment_FinalSettlesRemainder(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	stakeForInstallments(t, env, 150)

	plan, err := env.ledger.Installments.CreatePurchase(ctx, user, "p1", 100, 3)
	require.NoError(t, err)
	assert.Equal(t, "33.33333333", plan.InstallmentAmount.String())

	want := []string{"33.33333333", "33.33333333", "33.33333334"}
	for _, amount := range want {
		views, err := env.ledger.Installments.Purchases(ctx, user)
		require.NoError(t, err)
		assert.Equal(t, amount, views[0].AmountDue.String())

		_, err = env.ledger.Installments.PayInstallment(ctx, user, plan.ID)
		require.NoError(t, err)
	}
	assert.Equal(t, "0", env.balance(t, user))

	views, err := env.ledger.Installments.Purchases(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, models.InstallmentStatusCompleted, views[0].EffectiveStatus)
	assert.Equal(t, "100", views[0].PaidAmount.String())
}

func TestCreatePurchase_SplitKeepsPlanPayable(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	stakeForInstallments(t, env, 52)

	_, err := env.ledger.Installments.CreatePurchase(ctx, user, "p1", 1, 300000000)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	plan, err := env.ledger.Installments.CreatePurchase(ctx, user, "p2", 2, 3)
	require.NoError(t, err)
	assert.Equal(t, "0.66666666", plan.InstallmentAmount.String())

	for _, amount := range []string{"0.66666666", "0.66666666", "0.66666668"} {
		views, err := env.ledger.Installments.Purchases(ctx, user)
		require.NoError(t, err)
		assert.Equal(t, amount, views[0].AmountDue.String())

		_, err = env.ledger.Installments.PayInstallment(ctx, user, plan.ID)
		require.NoError(t, err)
	}
	assert.Equal(t, "0", env.balance(t, user))

	views, err := env.ledger.Installments.Purchases(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, models.InstallmentStatusCompleted, views[0].EffectiveStatus)
}

func TestPayInstallment_Errors(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	stakeForInstallments(t, env, 50)

	_, err := env.ledger.Installments.PayInstallment(ctx, user, "missing")
	assert.ErrorIs(t, err, ErrPurchaseNotFound)

	plan, err := env.ledger.Installments.CreatePurchase(ctx, user, "p1", 100, 4)
	require.NoError(t, err)
	_, err = env.ledger.Installments.PayInstallment(ctx, user, plan.ID)
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	views, err := env.ledger.Installments.Purchases(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 0, views[0].PaidInstallments)
}

func TestInstallments_OverdueIsDerivedAndPayable(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	stakeForInstallments(t, env, 100)

	plan, err := env.ledger.Installments.CreatePurchase(ctx, user, "p1", 40, 2)
	require.NoError(t, err)
	firstDue := plan.NextPaymentDate
	assert.True(t, testEpoch.Add(30*24*time.Hour).Equal(firstDue))

	env.clock.Advance(31 * 24 * time.Hour)
	views, err := env.ledger.Installments.Purchases(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, models.InstallmentStatusOverdue, views[0].EffectiveStatus)
	assert.Equal(t, models.InstallmentStatusActive, views[0].Status)

	plan, err = env.ledger.Installments.PayInstallment(ctx, user, plan.ID)
	require.NoError(t, err)
	assert.True(t, firstDue.Add(30*24*time.Hour).Equal(plan.NextPaymentDate))

	views, err = env.ledger.Installments.Purchases(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, models.InstallmentStatusActive, views[0].EffectiveStatus)
}

func TestSendReminders(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	stakeForInstallments(t, env, 100)

	plan, err := env.ledger.Installments.CreatePurchase(ctx, user, "p1", 40, 2)
	require.NoError(t, err)

	reminders, err := env.ledger.Installments.DueReminders(ctx, 72*time.Hour)
	require.NoError(t, err)
	assert.Empty(t, reminders)

	env.clock.Advance(28 * 24 * time.Hour)
	n, err := env.ledger.Installments.SendReminders(ctx, 72*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	due := env.bus.OfType(events.EventInstallmentDue)
	require.Len(t, due, 1)
	assert.Equal(t, plan.ID, due[0].Payload["purchase_id"])
	assert.Equal(t, user, due[0].UserID())

	env.clock.Advance(3 * 24 * time.Hour)
	n, err = env.ledger.Installments.SendReminders(ctx, 72*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Len(t, env.bus.OfType(events.EventInstallmentOverdue), 1)

	// settled plans leave the index
	for i := 0; i < 2; i++ {
		_, err = env.ledger.Installments.PayInstallment(ctx, user, plan.ID)
		require.NoError(t, err)
	}
	reminders, err = env.ledger.Installments.DueReminders(ctx, 72*time.Hour)
	require.NoError(t, err)
	assert.Empty(t, reminders)
}
