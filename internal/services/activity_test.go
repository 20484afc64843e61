package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaimFaucet_Cooldown(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	bal, err := env.ledger.Activity.ClaimFaucet(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, "10", bal.String())

	_, err = env.ledger.Activity.ClaimFaucet(ctx, user)
	require.ErrorIs(t, err, ErrCooldownActive)

	env.clock.Advance(23 * time.Hour)
	_, err = env.ledger.Activity.ClaimFaucet(ctx, user)
	require.ErrorIs(t, err, ErrCooldownActive)
	assert.Equal(t, "10", env.balance(t, user))

	env.clock.Advance(time.Hour)
	bal, err = env.ledger.Activity.ClaimFaucet(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, "20", bal.String())

	sum, err := env.ledger.Account(ctx, user)
	require.NoError(t, err)
	require.NotNil(t, sum.FaucetReadyAt)
	assert.True(t, env.clock.Now().Add(24*time.Hour).Equal(*sum.FaucetReadyAt))
}

func TestSubscribe(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.ledger.Activity.Subscribe(ctx, user, "plan-gold")
	require.ErrorIs(t, err, ErrUnknownPlan)
	_, err = env.ledger.Activity.Subscribe(ctx, user, "plan-basic")
	require.ErrorIs(t, err, ErrInsufficientFunds)

	env.credit(t, user, 20)
	sub, err := env.ledger.Activity.Subscribe(ctx, user, "plan-basic")
	require.NoError(t, err)
	assert.True(t, sub.Active(env.clock.Now()))
	assert.False(t, sub.Active(env.clock.Now().Add(31*24*time.Hour)))
	assert.Equal(t, "5", env.balance(t, user))

	subs, err := env.ledger.Activity.Subscriptions(ctx, user)
	require.NoError(t, err)
	assert.Len(t, subs, 1)
}

func TestActivatePassiveIncome(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.ledger.Activity.ActivatePassiveIncome(ctx, user)
	require.ErrorIs(t, err, ErrEligibilityNotMet)

	env.credit(t, user, 10)
	_, err = env.ledger.Staking.Stake(ctx, user, "stake-1", 10)
	require.NoError(t, err)

	first, err := env.ledger.Activity.ActivatePassiveIncome(ctx, user)
	require.NoError(t, err)
	env.clock.Advance(time.Hour)
	second, err := env.ledger.Activity.ActivatePassiveIncome(ctx, user)
	require.NoError(t, err)
	assert.True(t, first.Equal(second))
}
