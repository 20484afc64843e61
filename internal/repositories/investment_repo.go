package repositories

import (
	"context"

	"github.com/token-ledger/backend/internal/models"
	"github.com/token-ledger/backend/internal/store"
)

// InvestmentRepo covers governance purchases, pool contributions, NFT
// ownership, airdrop claims and subscriptions.
type InvestmentRepo struct{}

func NewInvestmentRepo() *InvestmentRepo {
	return &InvestmentRepo{}
}

// --- Governance ---

func (r *InvestmentRepo) GovernancePurchases(ctx context.Context, kv KV, userID string) ([]models.GovernancePurchase, error) {
	var out []models.GovernancePurchase
	if _, err := getJSON(ctx, kv, store.Key(nsGovernance, userID), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *InvestmentRepo) AddGovernancePurchase(ctx context.Context, kv KV, userID string, p models.GovernancePurchase) error {
	list, err := r.GovernancePurchases(ctx, kv, userID)
	if err != nil {
		return err
	}
	return putJSON(kv, store.Key(nsGovernance, userID), append(list, p))
}

// --- Pools ---

func (r *InvestmentRepo) PoolContributions(ctx context.Context, kv KV, userID string) ([]models.PoolContribution, error) {
	var out []models.PoolContribution
	if _, err := getJSON(ctx, kv, store.Key(nsPools, userID), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *InvestmentRepo) AddPoolContribution(ctx context.Context, kv KV, userID string, c models.PoolContribution) error {
	list, err := r.PoolContributions(ctx, kv, userID)
	if err != nil {
		return err
	}
	return putJSON(kv, store.Key(nsPools, userID), append(list, c))
}

// --- NFTs ---

func (r *InvestmentRepo) OwnedNFTs(ctx context.Context, kv KV, userID string) ([]models.OwnedNFT, error) {
	var out []models.OwnedNFT
	if _, err := getJSON(ctx, kv, store.Key(nsNFTs, userID), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddNFT reports false when the user already owns the NFT.
func (r *InvestmentRepo) AddNFT(ctx context.Context, kv KV, userID string, nft models.OwnedNFT) (bool, error) {
	owned, err := r.OwnedNFTs(ctx, kv, userID)
	if err != nil {
		return false, err
	}
	for _, o := range owned {
		if o.NftID == nft.NftID {
			return false, nil
		}
	}
	return true, putJSON(kv, store.Key(nsNFTs, userID), append(owned, nft))
}

// --- Airdrops ---

// AirdropClaim returns nil when the airdrop was not claimed.
func (r *InvestmentRepo) AirdropClaim(ctx context.Context, kv KV, userID, airdropID string) (*models.AirdropClaim, error) {
	var c models.AirdropClaim
	found, err := getJSON(ctx, kv, store.Key(nsAirdrop, userID, airdropID), &c)
	if err != nil || !found {
		return nil, err
	}
	return &c, nil
}

func (r *InvestmentRepo) PutAirdropClaim(kv KV, userID string, c models.AirdropClaim) error {
	return putJSON(kv, store.Key(nsAirdrop, userID, c.AirdropID), c)
}

// --- Subscriptions ---

func (r *InvestmentRepo) Subscriptions(ctx context.Context, kv KV, userID string) ([]models.Subscription, error) {
	var out []models.Subscription
	if _, err := getJSON(ctx, kv, store.Key(nsSubscriptions, userID), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *InvestmentRepo) AddSubscription(ctx context.Context, kv KV, userID string, s models.Subscription) error {
	list, err := r.Subscriptions(ctx, kv, userID)
	if err != nil {
		return err
	}
	return putJSON(kv, store.Key(nsSubscriptions, userID), append(list, s))
}
