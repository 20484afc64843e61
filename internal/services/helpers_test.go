package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/token-ledger/backend/internal/catalog"
	"github.com/token-ledger/backend/internal/config"
	"github.com/token-ledger/backend/internal/events"
	"github.com/token-ledger/backend/internal/store"
	"go.uber.org/zap/zaptest"
)

var testEpoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// flakyStore fails every write while failWrites is set.
type flakyStore struct {
	*store.Memory
	failWrites atomic.Bool
}

var errConnRefused = errors.New("dial tcp 127.0.0.1:6379: connection refused")

func (f *flakyStore) Set(ctx context.Context, key string, value []byte) error {
	if f.failWrites.Load() {
		return errConnRefused
	}
	return f.Memory.Set(ctx, key, value)
}

func (f *flakyStore) SetBatch(ctx context.Context, entries []store.Entry) error {
	if f.failWrites.Load() {
		return errConnRefused
	}
	return f.Memory.SetBatch(ctx, entries)
}

type testEnv struct {
	ledger *Ledger
	bus    *events.RecordingBus
	clock  *clockwork.FakeClock
	store  *flakyStore
	cfg    *config.Config
}

func testConfig() *config.Config {
	return &config.Config{
		StoreBackend:        config.StoreMemory,
		WelcomeBonus:        100,
		FaucetAmount:        10,
		FaucetCooldown:      24 * time.Hour,
		InstallmentMinStake: 50,
		InstallmentPeriod:   30 * 24 * time.Hour,
		ReminderWindow:      72 * time.Hour,
	}
}

func newTestEnv(t *testing.T, tweak ...func(*config.Config)) *testEnv {
	t.Helper()
	cfg := testConfig()
	for _, fn := range tweak {
		fn(cfg)
	}
	env := &testEnv{
		bus:   events.NewRecordingBus(),
		clock: clockwork.NewFakeClockAt(testEpoch),
		store: &flakyStore{Memory: store.NewMemory()},
		cfg:   cfg,
	}
	ledger, err := NewLedger(env.store, env.bus, cfg, catalog.Default(), env.clock, zaptest.NewLogger(t))
	require.NoError(t, err)
	env.ledger = ledger
	return env
}

func (e *testEnv) balance(t *testing.T, userID string) string {
	t.Helper()
	bal, err := e.ledger.Balance.GetBalance(context.Background(), userID)
	require.NoError(t, err)
	return bal.String()
}

func (e *testEnv) credit(t *testing.T, userID string, amount int64) {
	t.Helper()
	_, err := e.ledger.Balance.Credit(context.Background(), userID, decimal.NewFromInt(amount))
	require.NoError(t, err)
}

// lastOutcome returns the payload of the most recent ledger_outcome event.
func (e *testEnv) lastOutcome(t *testing.T) map[string]any {
	t.Helper()
	outcomes := e.bus.OfType(events.EventLedgerOutcome)
	require.NotEmpty(t, outcomes)
	return outcomes[len(outcomes)-1].Payload
}
