package repositories

import (
	"context"

	"github.com/token-ledger/backend/internal/models"
	"github.com/token-ledger/backend/internal/store"
)

// JournalRepo keeps the most recent balance movements per user.
type JournalRepo struct{}

func NewJournalRepo() *JournalRepo {
	return &JournalRepo{}
}

// List returns entries newest first.
func (r *JournalRepo) List(ctx context.Context, kv KV, userID string) ([]models.JournalEntry, error) {
	var entries []models.JournalEntry
	if _, err := getJSON(ctx, kv, store.Key(nsJournal, userID), &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *JournalRepo) Append(ctx context.Context, kv KV, userID string, entry models.JournalEntry) error {
	entries, err := r.List(ctx, kv, userID)
	if err != nil {
		return err
	}
	entries = append([]models.JournalEntry{entry}, entries...)
	if len(entries) > models.MaxJournalEntries {
		entries = entries[:models.MaxJournalEntries]
	}
	return putJSON(kv, store.Key(nsJournal, userID), entries)
}
