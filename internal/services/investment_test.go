package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/token-ledger/backend/internal/catalog"
)

func TestBuyGovernanceToken(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.credit(t, user, 100)

	_, err := env.ledger.Investment.BuyGovernanceToken(ctx, user, "gov-ultra", 1)
	assert.ErrorIs(t, err, ErrUnknownToken)
	_, err = env.ledger.Investment.BuyGovernanceToken(ctx, user, "gov-basic", 0)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = env.ledger.Investment.BuyGovernanceToken(ctx, user, "gov-plus", 3)
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	p, err := env.ledger.Investment.BuyGovernanceToken(ctx, user, "gov-plus", 2)
	require.NoError(t, err)
	assert.Equal(t, "90", p.Total.String())
	assert.Equal(t, int64(10), p.VotingPower)
	assert.Equal(t, "10", env.balance(t, user))

	purchases, err := env.ledger.Investment.GovernancePurchases(ctx, user)
	require.NoError(t, err)
	assert.Len(t, purchases, 1)
}

func TestJoinPool(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.credit(t, user, 60)

	_, err := env.ledger.Investment.JoinPool(ctx, user, "pool-x", 20)
	assert.ErrorIs(t, err, ErrUnknownPool)
	_, err = env.ledger.Investment.JoinPool(ctx, user, "pool-growth", 49)
	assert.ErrorIs(t, err, ErrBelowMinContribution)
	_, err = env.ledger.Investment.JoinPool(ctx, user, "pool-degen", 150)
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	_, err = env.ledger.Investment.JoinPool(ctx, user, "pool-stable", 20)
	require.NoError(t, err)
	assert.Equal(t, "40", env.balance(t, user))

	contributions, err := env.ledger.Investment.PoolContributions(ctx, user)
	require.NoError(t, err)
	require.Len(t, contributions, 1)
	assert.Equal(t, int64(20), contributions[0].Amount)
}

func TestBuyNFT(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.credit(t, user, 30)

	assert.ErrorIs(t, env.ledger.Investment.BuyNFT(ctx, user, "dragon"), ErrUnknownNFT)
	assert.ErrorIs(t, env.ledger.Investment.BuyNFT(ctx, user, "guardian"), ErrInsufficientFunds)
	require.NoError(t, env.ledger.Investment.BuyNFT(ctx, user, "explorer"))
	assert.ErrorIs(t, env.ledger.Investment.BuyNFT(ctx, user, "explorer"), ErrAlreadyOwned)
	assert.Equal(t, "5", env.balance(t, user))
}

func TestGrantWelcomeNFT_Once(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	require.NoError(t, env.ledger.Investment.GrantWelcomeNFT(ctx, user))
	require.NoError(t, env.ledger.Investment.GrantWelcomeNFT(ctx, user))

	owned, err := env.ledger.Investment.OwnedNFTs(ctx, user)
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.Equal(t, catalog.PioneerNFT, owned[0].NftID)

	assert.ErrorIs(t, env.ledger.Investment.BuyNFT(ctx, user, catalog.PioneerNFT), ErrAlreadyOwned)
}

func TestClaimAirdrop_Eligibility(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.ledger.Investment.ClaimAirdrop(ctx, user, "a9")
	assert.ErrorIs(t, err, ErrUnknownAirdrop)

	_, err = env.ledger.Investment.ClaimAirdrop(ctx, user, "a4")
	assert.ErrorIs(t, err, ErrNotEligible)
	require.NoError(t, env.ledger.Investment.GrantWelcomeNFT(ctx, user))
	_, err = env.ledger.Investment.ClaimAirdrop(ctx, user, "a4")
	require.NoError(t, err)

	_, err = env.ledger.Investment.ClaimAirdrop(ctx, user, "a3")
	assert.ErrorIs(t, err, ErrNotEligible)
	env.credit(t, user, 90)
	_, err = env.ledger.Staking.Stake(ctx, user, "stake-1", 10)
	require.NoError(t, err)
	_, err = env.ledger.Investment.ClaimAirdrop(ctx, user, "a3")
	require.NoError(t, err)

	// 10 + 90 - 10 + 30
	assert.Equal(t, "120", env.balance(t, user))
	_, err = env.ledger.Investment.ClaimAirdrop(ctx, user, "a2")
	require.NoError(t, err)
	assert.Equal(t, "140", env.balance(t, user))
}
