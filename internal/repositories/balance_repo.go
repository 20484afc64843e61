package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/token-ledger/backend/internal/store"
)

// BalanceRepo stores the balance as a plain decimal string together with
// the one-time welcome flags.
type BalanceRepo struct{}

func NewBalanceRepo() *BalanceRepo {
	return &BalanceRepo{}
}

// Get returns zero for users that were never credited.
func (r *BalanceRepo) Get(ctx context.Context, kv KV, userID string) (decimal.Decimal, error) {
	key := store.Key(nsBalance, userID)
	data, err := kv.Get(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("get %s: %w", key, err)
	}
	bal, err := decimal.NewFromString(string(data))
	if err != nil {
		return decimal.Zero, fmt.Errorf("decode %s: %w", key, err)
	}
	return bal, nil
}

func (r *BalanceRepo) Put(kv KV, userID string, balance decimal.Decimal) {
	kv.Set(store.Key(nsBalance, userID), []byte(balance.String()))
}

func (r *BalanceRepo) WelcomeGranted(ctx context.Context, kv KV, userID string) (bool, error) {
	return getFlag(ctx, kv, store.Key(nsWelcome, userID))
}

func (r *BalanceRepo) MarkWelcomeGranted(kv KV, userID string) {
	setFlag(kv, store.Key(nsWelcome, userID))
}

func (r *BalanceRepo) WelcomeNFTGranted(ctx context.Context, kv KV, userID string) (bool, error) {
	return getFlag(ctx, kv, store.Key(nsWelcomeNFT, userID))
}

func (r *BalanceRepo) MarkWelcomeNFTGranted(kv KV, userID string) {
	setFlag(kv, store.Key(nsWelcomeNFT, userID))
}
