// Package catalog holds the static product catalogs the ledger prices
// operations against.
package catalog

import (
	"github.com/shopspring/decimal"
	"github.com/token-ledger/backend/internal/models"
)

type Catalog struct {
	Missions          []models.Mission
	StakeOptions      []models.StakeOption
	GovernanceTokens  []models.GovernanceToken
	Pools             []models.TokenPool
	NFTs              []models.NFT
	Airdrops          []models.Airdrop
	SubscriptionPlans []models.SubscriptionPlan
}

const (
	FeatureInstallments = "installments"
	FeaturePremium      = "premium"

	PioneerNFT     = "pioneer"
	PioneerGoldNFT = "pioneer-gold"
)

// Default returns a fresh copy of the production catalog.
func Default() *Catalog {
	return &Catalog{
		Missions: []models.Mission{
			{ID: models.MissionLogin, Title: "Connect your wallet", Reward: models.TokensReward{Amount: 10}},
			{ID: models.MissionFaucet, Title: "Claim from the faucet", Reward: models.TokensReward{Amount: 5},
				Requirements: []string{models.MissionLogin}},
			{ID: models.MissionStake, Title: "Open a stake position", Reward: models.AccessGrant{Feature: FeatureInstallments}},
			{ID: models.MissionNFT, Title: "Buy an NFT", Reward: models.CustomReward{Label: "collector"},
				Requirements: []string{models.MissionFaucet, models.MissionStake}},
			{ID: models.MissionAirdrop, Title: "Claim an airdrop", Reward: models.TokensReward{Amount: 15},
				Requirements: []string{models.MissionNFT}},
			{ID: models.MissionSubscription, Title: "Subscribe to a plan", Reward: models.AccessGrant{Feature: FeaturePremium},
				Requirements: []string{models.MissionAirdrop}},
			{ID: models.MissionPassiveIncome, Title: "Activate passive income", Reward: models.NftGrant{NftID: PioneerGoldNFT},
				Requirements: []string{models.MissionSubscription, models.MissionStake}},
		},
		StakeOptions: []models.StakeOption{
			{ID: "stake-1", Name: "Flexible 30", MinTokens: 10, APY: decimal.NewFromInt(5), DurationDays: 30},
			{ID: "stake-2", Name: "Growth 90", MinTokens: 50, APY: decimal.NewFromInt(8), DurationDays: 90},
			{ID: "stake-3", Name: "Vault 180", MinTokens: 100, APY: decimal.NewFromInt(12), DurationDays: 180},
		},
		GovernanceTokens: []models.GovernanceToken{
			{ID: "gov-basic", Name: "Council Seat", Symbol: "CSEAT", Price: 10, VotingPower: 1},
			{ID: "gov-plus", Name: "Senate Seat", Symbol: "SSEAT", Price: 45, VotingPower: 5},
			{ID: "gov-max", Name: "Founders Seat", Symbol: "FSEAT", Price: 200, VotingPower: 25},
		},
		Pools: []models.TokenPool{
			{ID: "pool-stable", Name: "Stable Pool", APY: decimal.NewFromInt(4), MinContribution: 20},
			{ID: "pool-growth", Name: "Growth Pool", APY: decimal.NewFromInt(9), MinContribution: 50},
			{ID: "pool-degen", Name: "Frontier Pool", APY: decimal.NewFromInt(18), MinContribution: 150},
		},
		NFTs: []models.NFT{
			{ID: PioneerNFT, Name: "Pioneer Badge", Price: 0, Rarity: models.RarityCommon,
				Benefits: []string{"early access"}, Pioneer: true},
			{ID: "explorer", Name: "Explorer Compass", Price: 25, Rarity: models.RarityRare,
				Benefits: []string{"+1% staking APY display badge"}},
			{ID: "guardian", Name: "Guardian Shield", Price: 80, Rarity: models.RarityEpic,
				Benefits: []string{"priority airdrops", "governance boost"}},
			{ID: PioneerGoldNFT, Name: "Golden Pioneer", Price: 500, Rarity: models.RarityLegendary,
				Benefits: []string{"passive income boost"}},
		},
		Airdrops: []models.Airdrop{
			{ID: "a1", Name: "Genesis Drop", Amount: 5, Rule: models.AlwaysEligible{}},
			{ID: "a2", Name: "Holder Drop", Amount: 20, Rule: models.MinBalance{Amount: 100}},
			{ID: "a3", Name: "Staker Drop", Amount: 30, Rule: models.MissionCompletedRule{MissionID: models.MissionStake}},
			{ID: "a4", Name: "Pioneer Drop", Amount: 10, Rule: models.HoldsNFT{NftID: PioneerNFT}},
		},
		SubscriptionPlans: []models.SubscriptionPlan{
			{ID: "plan-basic", Name: "Basic", Price: 15, PeriodDays: 30, Features: []string{"market insights"}},
			{ID: "plan-pro", Name: "Pro", Price: 40, PeriodDays: 30, Features: []string{"market insights", "signals"}},
		},
	}
}

func (c *Catalog) StakeOption(id string) (models.StakeOption, bool) {
	for _, o := range c.StakeOptions {
		if o.ID == id {
			return o, true
		}
	}
	return models.StakeOption{}, false
}

func (c *Catalog) GovernanceToken(id string) (models.GovernanceToken, bool) {
	for _, t := range c.GovernanceTokens {
		if t.ID == id {
			return t, true
		}
	}
	return models.GovernanceToken{}, false
}

func (c *Catalog) Pool(id string) (models.TokenPool, bool) {
	for _, p := range c.Pools {
		if p.ID == id {
			return p, true
		}
	}
	return models.TokenPool{}, false
}

func (c *Catalog) NFT(id string) (models.NFT, bool) {
	for _, n := range c.NFTs {
		if n.ID == id {
			return n, true
		}
	}
	return models.NFT{}, false
}

// PioneerNFT returns the NFT used by the welcome grant.
func (c *Catalog) PioneerNFT() (models.NFT, bool) {
	for _, n := range c.NFTs {
		if n.Pioneer {
			return n, true
		}
	}
	return models.NFT{}, false
}

func (c *Catalog) Airdrop(id string) (models.Airdrop, bool) {
	for _, a := range c.Airdrops {
		if a.ID == id {
			return a, true
		}
	}
	return models.Airdrop{}, false
}

func (c *Catalog) SubscriptionPlan(id string) (models.SubscriptionPlan, bool) {
	for _, p := range c.SubscriptionPlans {
		if p.ID == id {
			return p, true
		}
	}
	return models.SubscriptionPlan{}, false
}
