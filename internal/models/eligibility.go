package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// EligibilityFacts is the snapshot of user state an airdrop rule is
// evaluated against.
type EligibilityFacts struct {
	Balance           decimal.Decimal
	CompletedMissions map[string]bool
	OwnedNFTs         map[string]bool
}

// EligibilityRule is a closed sum over the rule types below.
type EligibilityRule interface {
	Eligible(f EligibilityFacts) bool
	Describe() string
}

type AlwaysEligible struct{}

type MinBalance struct {
	Amount int64
}

type MissionCompletedRule struct {
	MissionID string
}

type HoldsNFT struct {
	NftID string
}

func (AlwaysEligible) Eligible(EligibilityFacts) bool { return true }
func (AlwaysEligible) Describe() string               { return "everyone" }

func (r MinBalance) Eligible(f EligibilityFacts) bool {
	return f.Balance.GreaterThanOrEqual(decimal.NewFromInt(r.Amount))
}

func (r MinBalance) Describe() string {
	return fmt.Sprintf("balance of at least %d", r.Amount)
}

func (r MissionCompletedRule) Eligible(f EligibilityFacts) bool {
	return f.CompletedMissions[r.MissionID]
}

func (r MissionCompletedRule) Describe() string {
	return fmt.Sprintf("mission %q completed", r.MissionID)
}

func (r HoldsNFT) Eligible(f EligibilityFacts) bool {
	return f.OwnedNFTs[r.NftID]
}

func (r HoldsNFT) Describe() string {
	return fmt.Sprintf("holds NFT %q", r.NftID)
}
