package models

type RewardKind string

const (
	RewardTokens RewardKind = "tokens"
	RewardAccess RewardKind = "access"
	RewardNFT    RewardKind = "nft"
	RewardCustom RewardKind = "custom"
)

// Reward is a closed sum: TokensReward, AccessGrant, NftGrant, CustomReward.
type Reward interface {
	Kind() RewardKind
	isReward()
}

type TokensReward struct {
	Amount int64 `json:"amount"`
}

type AccessGrant struct {
	Feature string `json:"feature"`
}

type NftGrant struct {
	NftID string `json:"nft_id"`
}

type CustomReward struct {
	Label string `json:"label"`
}

func (TokensReward) Kind() RewardKind { return RewardTokens }
func (AccessGrant) Kind() RewardKind  { return RewardAccess }
func (NftGrant) Kind() RewardKind     { return RewardNFT }
func (CustomReward) Kind() RewardKind { return RewardCustom }

func (TokensReward) isReward() {}
func (AccessGrant) isReward()  {}
func (NftGrant) isReward()     {}
func (CustomReward) isReward() {}
