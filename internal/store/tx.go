package store

import (
	"context"
	"errors"
	"fmt"
)

// Tx stages writes in memory and exposes them to subsequent reads of the
// same transaction. Nothing reaches the backend before Commit.
type Tx struct {
	backend Store
	staged  map[string][]byte
	order   []string
}

func NewTx(backend Store) *Tx {
	return &Tx{backend: backend, staged: make(map[string][]byte)}
}

func (t *Tx) Get(ctx context.Context, key string) ([]byte, error) {
	if v, ok := t.staged[key]; ok {
		return v, nil
	}
	return t.backend.Get(ctx, key)
}

func (t *Tx) Set(key string, value []byte) {
	if _, ok := t.staged[key]; !ok {
		t.order = append(t.order, key)
	}
	t.staged[key] = value
}

func (t *Tx) Dirty() bool {
	return len(t.order) > 0
}

// Entries returns staged writes in first-write order.
func (t *Tx) Entries() []Entry {
	entries := make([]Entry, 0, len(t.order))
	for _, k := range t.order {
		entries = append(entries, Entry{Key: k, Value: t.staged[k]})
	}
	return entries
}

func (t *Tx) Commit(ctx context.Context) error {
	if !t.Dirty() {
		return nil
	}
	entries := t.Entries()
	if b, ok := t.backend.(Batcher); ok {
		return b.SetBatch(ctx, entries)
	}
	return commitSequential(ctx, t.backend, entries)
}

// commitSequential is the fallback for backends without atomic batches.
// Keys that already had a value are restored when a later write fails.
func commitSequential(ctx context.Context, backend Store, entries []Entry) error {
	previous := make([]Entry, 0, len(entries))
	for _, e := range entries {
		old, err := backend.Get(ctx, e.Key)
		switch {
		case err == nil:
			previous = append(previous, Entry{Key: e.Key, Value: old})
		case errors.Is(err, ErrNotFound):
		default:
			return err
		}
	}

	for i, e := range entries {
		if err := backend.Set(ctx, e.Key, e.Value); err != nil {
			restore(ctx, backend, previous, entries[:i])
			return fmt.Errorf("write %s: %w", e.Key, err)
		}
	}
	return nil
}

func restore(ctx context.Context, backend Store, previous, written []Entry) {
	touched := make(map[string]bool, len(written))
	for _, w := range written {
		touched[w.Key] = true
	}
	for _, p := range previous {
		if touched[p.Key] {
			_ = backend.Set(ctx, p.Key, p.Value)
		}
	}
}
