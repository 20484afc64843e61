package dto

// Auth

type ConnectWalletRequest struct {
	Address   string       `json:"address"`
	Network   string       `json:"network"`
	PublicKey string       `json:"public_key"`
	Proof     ProofPayload `json:"proof"`
	StateInit string       `json:"state_init,omitempty"`
}

type ProofPayload struct {
	Timestamp int64  `json:"timestamp"`
	Domain    Domain `json:"domain"`
	Payload   string `json:"payload"`
	Signature string `json:"signature"`
}

type Domain struct {
	LengthBytes int    `json:"lengthBytes"`
	Value       string `json:"value"`
}

// Staking

type StakeRequest struct {
	OptionID string `json:"option_id"`
	Amount   int64  `json:"amount"`
}

// Investment

type BuyGovernanceRequest struct {
	TokenID  string `json:"token_id"`
	Quantity int64  `json:"quantity"`
}

type JoinPoolRequest struct {
	PoolID string `json:"pool_id"`
	Amount int64  `json:"amount"`
}

type BuyNFTRequest struct {
	NftID string `json:"nft_id"`
}

// Activity

type SubscribeRequest struct {
	PlanID string `json:"plan_id"`
}

// Installments

type CreateInstallmentRequest struct {
	ProductID    string `json:"product_id"`
	TotalAmount  int64  `json:"total_amount"`
	Installments int    `json:"installments"`
}
