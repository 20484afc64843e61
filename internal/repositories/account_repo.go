package repositories

import (
	"context"
	"time"

	"github.com/token-ledger/backend/internal/models"
	"github.com/token-ledger/backend/internal/store"
)

type AccountRepo struct{}

func NewAccountRepo() *AccountRepo {
	return &AccountRepo{}
}

// GetOrNew returns the stored profile, or a fresh one stamped with now.
// A fresh profile is not persisted until Put.
func (r *AccountRepo) GetOrNew(ctx context.Context, kv KV, userID string, now time.Time) (*models.Account, error) {
	var a models.Account
	found, err := getJSON(ctx, kv, store.Key(nsAccount, userID), &a)
	if err != nil {
		return nil, err
	}
	if !found {
		return &models.Account{UserID: userID, CreatedAt: now}, nil
	}
	return &a, nil
}

func (r *AccountRepo) Put(kv KV, a *models.Account) error {
	return putJSON(kv, store.Key(nsAccount, a.UserID), a)
}
