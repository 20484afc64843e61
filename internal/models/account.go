package models

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// Account is the per-user profile record. Balance and the welcome flags
// live under their own keys.
type Account struct {
	UserID          string     `json:"user_id"`
	CreatedAt       time.Time  `json:"created_at"`
	Sequence        uint64     `json:"sequence"`
	AccessGrants    []string   `json:"access_grants,omitempty"`
	CustomRewards   []string   `json:"custom_rewards,omitempty"`
	LastFaucetAt    *time.Time `json:"last_faucet_at,omitempty"`
	PassiveIncomeAt *time.Time `json:"passive_income_at,omitempty"`
}

func (a *Account) HasAccess(feature string) bool {
	return slices.Contains(a.AccessGrants, feature)
}

// GrantAccess reports whether the feature was newly granted.
func (a *Account) GrantAccess(feature string) bool {
	if a.HasAccess(feature) {
		return false
	}
	a.AccessGrants = append(a.AccessGrants, feature)
	return true
}

func (a *Account) AddCustomReward(label string) {
	if slices.Contains(a.CustomRewards, label) {
		return
	}
	a.CustomRewards = append(a.CustomRewards, label)
}

// NextSequence bumps and returns the per-user id sequence.
func (a *Account) NextSequence() uint64 {
	a.Sequence++
	return a.Sequence
}

const MaxJournalEntries = 100

// JournalEntry records one balance movement.
type JournalEntry struct {
	At           time.Time       `json:"at"`
	Delta        decimal.Decimal `json:"delta"`
	Reason       string          `json:"reason"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
}

// AccountSummary is what the presentation layer renders on the profile page.
type AccountSummary struct {
	UserID            string          `json:"user_id"`
	Balance           decimal.Decimal `json:"balance"`
	WelcomeGranted    bool            `json:"welcome_granted"`
	WelcomeNFTGranted bool            `json:"welcome_nft_granted"`
	AccessGrants      []string        `json:"access_grants"`
	CustomRewards     []string        `json:"custom_rewards"`
	OwnedNFTs         []OwnedNFT      `json:"owned_nfts"`
	NextMission       *MissionView    `json:"next_mission,omitempty"`
	PassiveIncome     bool            `json:"passive_income"`
	FaucetReadyAt     *time.Time      `json:"faucet_ready_at,omitempty"`
}
