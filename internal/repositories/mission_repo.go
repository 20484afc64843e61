package repositories

import (
	"context"
	"time"

	"github.com/token-ledger/backend/internal/models"
	"github.com/token-ledger/backend/internal/store"
)

type MissionRepo struct{}

func NewMissionRepo() *MissionRepo {
	return &MissionRepo{}
}

// Get returns nil when the user has no mission state yet.
func (r *MissionRepo) Get(ctx context.Context, kv KV, userID string) (*models.MissionState, error) {
	state := models.NewMissionState()
	found, err := getJSON(ctx, kv, store.Key(nsMissions, userID), state)
	if err != nil || !found {
		return nil, err
	}
	if state.Unlocked == nil {
		state.Unlocked = make(map[string]time.Time)
	}
	if state.Completed == nil {
		state.Completed = make(map[string]time.Time)
	}
	return state, nil
}

func (r *MissionRepo) Put(kv KV, userID string, state *models.MissionState) error {
	return putJSON(kv, store.Key(nsMissions, userID), state)
}
