package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/token-ledger/backend/internal/store"
)

// Key namespaces
const (
	nsBalance          = "balance"
	nsWelcome          = "welcome"
	nsWelcomeNFT       = "welcome-nft"
	nsAccount          = "account"
	nsMissions         = "missions"
	nsJournal          = "journal"
	nsStake            = "stake"
	nsInstallment      = "installment"
	nsInstallmentIndex = "installment-index"
	nsGovernance       = "governance"
	nsPools            = "pools"
	nsNFTs             = "nfts"
	nsAirdrop          = "airdrop"
	nsSubscriptions    = "subscriptions"
)

// KV is the view of a ledger transaction the repositories work against.
// *store.Tx implements it.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(key string, value []byte)
}

var _ KV = (*store.Tx)(nil)

func getJSON(ctx context.Context, kv KV, key string, dst any) (bool, error) {
	data, err := kv.Get(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func putJSON(kv KV, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	kv.Set(key, data)
	return nil
}

func getFlag(ctx context.Context, kv KV, key string) (bool, error) {
	data, err := kv.Get(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get %s: %w", key, err)
	}
	return string(data) == "true", nil
}

func setFlag(kv KV, key string) {
	kv.Set(key, []byte("true"))
}

// appendUnique adds id to the index list stored at key unless present.
func appendUnique(ctx context.Context, kv KV, key, id string) error {
	var ids []string
	if _, err := getJSON(ctx, kv, key, &ids); err != nil {
		return err
	}
	for _, existing := range ids {
		if existing == id {
			return nil
		}
	}
	return putJSON(kv, key, append(ids, id))
}
