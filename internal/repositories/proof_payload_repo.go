package repositories

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
)

// ProofPayloadRepo issues and consumes single-use TON Proof nonces.
type ProofPayloadRepo interface {
	Create(ctx context.Context, ttl time.Duration) (string, error)
	// Consume reports whether the payload existed and had not expired.
	Consume(ctx context.Context, payload string) (bool, error)
}

type RedisProofPayloadRepo struct {
	rdb *redis.Client
}

func NewRedisProofPayloadRepo(rdb *redis.Client) *RedisProofPayloadRepo {
	return &RedisProofPayloadRepo{rdb: rdb}
}

func (r *RedisProofPayloadRepo) Create(ctx context.Context, ttl time.Duration) (string, error) {
	payload := generateNonce(32)
	if err := r.rdb.Set(ctx, proofPayloadKey(payload), "1", ttl).Err(); err != nil {
		return "", err
	}
	return payload, nil
}

func (r *RedisProofPayloadRepo) Consume(ctx context.Context, payload string) (bool, error) {
	n, err := r.rdb.Del(ctx, proofPayloadKey(payload)).Result()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// MemoryProofPayloadRepo keeps nonces in process; for single-instance
// deployments and tests.
type MemoryProofPayloadRepo struct {
	clock    clockwork.Clock
	mu       sync.Mutex
	payloads map[string]time.Time
}

func NewMemoryProofPayloadRepo(clock clockwork.Clock) *MemoryProofPayloadRepo {
	return &MemoryProofPayloadRepo{clock: clock, payloads: make(map[string]time.Time)}
}

func (r *MemoryProofPayloadRepo) Create(_ context.Context, ttl time.Duration) (string, error) {
	payload := generateNonce(32)
	now := r.clock.Now()

	r.mu.Lock()
	defer r.mu.Unlock()
	for p, exp := range r.payloads {
		if now.After(exp) {
			delete(r.payloads, p)
		}
	}
	r.payloads[payload] = now.Add(ttl)
	return payload, nil
}

func (r *MemoryProofPayloadRepo) Consume(_ context.Context, payload string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	exp, ok := r.payloads[payload]
	if !ok {
		return false, nil
	}
	delete(r.payloads, payload)
	return !r.clock.Now().After(exp), nil
}

func proofPayloadKey(payload string) string {
	return "ton-proof:" + payload
}

func generateNonce(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
