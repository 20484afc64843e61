package models

import "time"

// Mission lifecycle: locked -> unlocked -> completed.
const (
	MissionLocked    = "locked"
	MissionUnlocked  = "unlocked"
	MissionCompleted = "completed"
)

// Well-known mission ids of the default graph.
const (
	MissionLogin         = "login"
	MissionFaucet        = "faucet"
	MissionStake         = "stake"
	MissionNFT           = "nft"
	MissionAirdrop       = "airdrop"
	MissionSubscription  = "subscription"
	MissionPassiveIncome = "passive-income"
)

type Mission struct {
	ID           string
	Title        string
	Reward       Reward
	Requirements []string
}

func (m Mission) IsRoot() bool {
	return len(m.Requirements) == 0
}

// MissionState is the persisted per-user progress.
type MissionState struct {
	Unlocked  map[string]time.Time `json:"unlocked"`
	Completed map[string]time.Time `json:"completed"`
}

func NewMissionState() *MissionState {
	return &MissionState{
		Unlocked:  make(map[string]time.Time),
		Completed: make(map[string]time.Time),
	}
}

func (s *MissionState) IsCompleted(id string) bool {
	_, ok := s.Completed[id]
	return ok
}

func (s *MissionState) IsUnlocked(id string) bool {
	_, ok := s.Unlocked[id]
	return ok
}

func (s *MissionState) Status(id string) string {
	switch {
	case s.IsCompleted(id):
		return MissionCompleted
	case s.IsUnlocked(id):
		return MissionUnlocked
	default:
		return MissionLocked
	}
}

type MissionView struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	RewardKind   RewardKind `json:"reward_kind"`
	Reward       Reward     `json:"reward"`
	Requirements []string   `json:"requirements"`
	Status       string     `json:"status"`
	Unlocked     bool       `json:"unlocked"`
	Completed    bool       `json:"completed"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}
