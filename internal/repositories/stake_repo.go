package repositories

import (
	"context"
	"fmt"

	"github.com/token-ledger/backend/internal/models"
	"github.com/token-ledger/backend/internal/store"
)

// StakeRepo stores each position under stake:{user}:{id} and keeps the
// ids in creation order under stake:{user}.
type StakeRepo struct{}

func NewStakeRepo() *StakeRepo {
	return &StakeRepo{}
}

// Get returns nil when the position does not exist.
func (r *StakeRepo) Get(ctx context.Context, kv KV, userID, positionID string) (*models.StakePosition, error) {
	var p models.StakePosition
	found, err := getJSON(ctx, kv, store.Key(nsStake, userID, positionID), &p)
	if err != nil || !found {
		return nil, err
	}
	return &p, nil
}

// List returns positions newest first.
func (r *StakeRepo) List(ctx context.Context, kv KV, userID string) ([]models.StakePosition, error) {
	var ids []string
	if _, err := getJSON(ctx, kv, store.Key(nsStake, userID), &ids); err != nil {
		return nil, err
	}
	positions := make([]models.StakePosition, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		p, err := r.Get(ctx, kv, userID, ids[i])
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, fmt.Errorf("stake index references missing position %s", ids[i])
		}
		positions = append(positions, *p)
	}
	return positions, nil
}

func (r *StakeRepo) Put(ctx context.Context, kv KV, p *models.StakePosition) error {
	if err := putJSON(kv, store.Key(nsStake, p.UserID, p.ID), p); err != nil {
		return err
	}
	return appendUnique(ctx, kv, store.Key(nsStake, p.UserID), p.ID)
}
