package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type GovernanceToken struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Price       int64  `json:"price"`
	VotingPower int64  `json:"voting_power"`
}

// GovernancePurchase is kept for auditability; holdings are not tracked
// beyond this log.
type GovernancePurchase struct {
	ID          string          `json:"id"`
	TokenID     string          `json:"token_id"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   int64           `json:"unit_price"`
	Total       decimal.Decimal `json:"total"`
	VotingPower int64           `json:"voting_power"`
	At          time.Time       `json:"at"`
}

type TokenPool struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	APY             decimal.Decimal `json:"apy"`
	MinContribution int64           `json:"min_contribution"`
}

type PoolContribution struct {
	ID     string    `json:"id"`
	PoolID string    `json:"pool_id"`
	Amount int64     `json:"amount"`
	At     time.Time `json:"at"`
}

const (
	RarityCommon    = "common"
	RarityRare      = "rare"
	RarityEpic      = "epic"
	RarityLegendary = "legendary"
)

type NFT struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Price    int64    `json:"price"`
	Rarity   string   `json:"rarity"`
	Benefits []string `json:"benefits"`
	// Pioneer marks the NFT handed out by the one-time welcome grant.
	Pioneer bool `json:"pioneer"`
}

const (
	NFTSourcePurchase = "purchase"
	NFTSourceWelcome  = "welcome"
	NFTSourceMission  = "mission"
)

type OwnedNFT struct {
	NftID      string    `json:"nft_id"`
	Source     string    `json:"source"`
	AcquiredAt time.Time `json:"acquired_at"`
}

type Airdrop struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Amount int64           `json:"amount"`
	Rule   EligibilityRule `json:"-"`
}

type AirdropClaim struct {
	AirdropID string    `json:"airdrop_id"`
	Amount    int64     `json:"amount"`
	ClaimedAt time.Time `json:"claimed_at"`
}

type AirdropView struct {
	Airdrop
	Eligibility string `json:"eligibility"`
	Eligible    bool   `json:"eligible"`
	Claimed     bool   `json:"claimed"`
}

type SubscriptionPlan struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Price      int64    `json:"price"`
	PeriodDays int      `json:"period_days"`
	Features   []string `json:"features"`
}

type Subscription struct {
	PlanID    string    `json:"plan_id"`
	StartedAt time.Time `json:"started_at"`
	EndsAt    time.Time `json:"ends_at"`
}

func (s Subscription) Active(now time.Time) bool {
	return now.Before(s.EndsAt)
}
