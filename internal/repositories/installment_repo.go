package repositories

import (
	"context"
	"fmt"

	"github.com/token-ledger/backend/internal/models"
	"github.com/token-ledger/backend/internal/store"
)

// InstallmentRepo stores plans per user plus a global index of every plan
// for the reminder worker. Writers of the index must hold the index lock.
type InstallmentRepo struct{}

func NewInstallmentRepo() *InstallmentRepo {
	return &InstallmentRepo{}
}

// Get returns nil when the plan does not exist.
func (r *InstallmentRepo) Get(ctx context.Context, kv KV, userID, purchaseID string) (*models.InstallmentPurchase, error) {
	var p models.InstallmentPurchase
	found, err := getJSON(ctx, kv, store.Key(nsInstallment, userID, purchaseID), &p)
	if err != nil || !found {
		return nil, err
	}
	return &p, nil
}

// List returns plans newest first.
func (r *InstallmentRepo) List(ctx context.Context, kv KV, userID string) ([]models.InstallmentPurchase, error) {
	var ids []string
	if _, err := getJSON(ctx, kv, store.Key(nsInstallment, userID), &ids); err != nil {
		return nil, err
	}
	out := make([]models.InstallmentPurchase, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		p, err := r.Get(ctx, kv, userID, ids[i])
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, fmt.Errorf("installment index references missing plan %s", ids[i])
		}
		out = append(out, *p)
	}
	return out, nil
}

func (r *InstallmentRepo) Put(ctx context.Context, kv KV, p *models.InstallmentPurchase) error {
	if err := putJSON(kv, store.Key(nsInstallment, p.UserID, p.ID), p); err != nil {
		return err
	}
	return appendUnique(ctx, kv, store.Key(nsInstallment, p.UserID), p.ID)
}

func (r *InstallmentRepo) Index(ctx context.Context, kv KV) ([]models.InstallmentRef, error) {
	var refs []models.InstallmentRef
	if _, err := getJSON(ctx, kv, nsInstallmentIndex, &refs); err != nil {
		return nil, err
	}
	return refs, nil
}

func (r *InstallmentRepo) AddToIndex(ctx context.Context, kv KV, ref models.InstallmentRef) error {
	refs, err := r.Index(ctx, kv)
	if err != nil {
		return err
	}
	return putJSON(kv, nsInstallmentIndex, append(refs, ref))
}

// RemoveFromIndex drops a settled plan so the worker stops scanning it.
func (r *InstallmentRepo) RemoveFromIndex(ctx context.Context, kv KV, ref models.InstallmentRef) error {
	refs, err := r.Index(ctx, kv)
	if err != nil {
		return err
	}
	kept := refs[:0]
	for _, existing := range refs {
		if existing != ref {
			kept = append(kept, existing)
		}
	}
	return putJSON(kv, nsInstallmentIndex, kept)
}
