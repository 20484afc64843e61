package http

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/token-ledger/backend/internal/catalog"
	"github.com/token-ledger/backend/internal/config"
	"github.com/token-ledger/backend/internal/events"
	"github.com/token-ledger/backend/internal/http/handlers"
	"github.com/token-ledger/backend/internal/repositories"
	"github.com/token-ledger/backend/internal/services"
	"github.com/token-ledger/backend/internal/store"
	"github.com/token-ledger/backend/internal/ton"
	"go.uber.org/zap/zaptest"
)

const wallet = "0:5f1c0e7a9b3d2e4f6a8c0b1d3e5f7a9c1e3b5d7f9a1c3e5b7d9f1a3c5e7b9d1f"

type apiEnv struct {
	app   *fiber.App
	clock *clockwork.FakeClock
	bus   *events.RecordingBus
}

func newAPI(t *testing.T) *apiEnv {
	t.Helper()
	log := zaptest.NewLogger(t)
	cfg := &config.Config{
		StoreBackend:           config.StoreMemory,
		TONNetwork:             "testnet",
		TONProofAllowedDomains: []string{"ledger.example"},
		ProofPayloadTTL:        5 * time.Minute,
		WelcomeBonus:           100,
		FaucetAmount:           10,
		FaucetCooldown:         24 * time.Hour,
		InstallmentMinStake:    50,
		InstallmentPeriod:      30 * 24 * time.Hour,
		JWTSecret:              "router-test-secret",
		JWTExpiration:          time.Hour,
		RateLimitPerMinute:     1000,
	}
	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	bus := events.NewRecordingBus()

	ledger, err := services.NewLedger(store.NewMemory(), bus, cfg, catalog.Default(), clock, log)
	require.NoError(t, err)
	walletSvc := services.NewWalletService(ledger, repositories.NewMemoryProofPayloadRepo(clock), cfg, clock, log)
	hub := handlers.NewWSHub(cfg, bus, log)
	require.NoError(t, hub.Start(context.Background()))

	app := fiber.New()
	SetupRouter(app, cfg, log, nil, NewHandlers(ledger, walletSvc, hub, log))
	return &apiEnv{app: app, clock: clock, bus: bus}
}

type envelope struct {
	OK    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
	Kind  string          `json:"kind"`
}

func (e *apiEnv) do(t *testing.T, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

// login runs the TON Connect proof flow and returns the session token.
func (e *apiEnv) login(t *testing.T) string {
	t.Helper()
	status, env := e.do(t, fiber.MethodPost, "/api/v1/auth/proof-payload", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	var payload struct {
		Payload string `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &payload))

	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	addr, err := ton.ParseAddress(wallet)
	require.NoError(t, err)
	proof := ton.Proof{
		Timestamp: e.clock.Now().Unix(),
		Domain:    ton.ProofDomain{LengthBytes: len("ledger.example"), Value: "ledger.example"},
		Payload:   payload.Payload,
	}
	msgHash := sha256.Sum256(ton.ProofMessage(addr, proof))
	sigMsg := append([]byte{0xff, 0xff}, []byte(ton.TonConnectPrefix)...)
	sigMsg = append(sigMsg, msgHash[:]...)
	final := sha256.Sum256(sigMsg)

	status, env = e.do(t, fiber.MethodPost, "/api/v1/auth/ton-proof", "", map[string]any{
		"address":    wallet,
		"network":    "-3",
		"public_key": hex.EncodeToString(pub),
		"proof": map[string]any{
			"timestamp": proof.Timestamp,
			"domain":    map[string]any{"lengthBytes": proof.Domain.LengthBytes, "value": proof.Domain.Value},
			"payload":   proof.Payload,
			"signature": base64.StdEncoding.EncodeToString(ed25519.Sign(priv, final[:])),
		},
	})
	require.Equal(t, fiber.StatusOK, status, env.Error)

	var session services.WalletSession
	require.NoError(t, json.Unmarshal(env.Data, &session))
	require.True(t, session.Connect.WelcomeGranted)
	return session.Token
}

func balanceOf(t *testing.T, env envelope) string {
	t.Helper()
	var bal struct {
		Balance string `json:"balance"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &bal))
	return bal.Balance
}

func TestRouter_RequiresToken(t *testing.T) {
	api := newAPI(t)

	status, _ := api.do(t, fiber.MethodGet, "/api/v1/me", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = api.do(t, fiber.MethodGet, "/api/v1/me/balance", "not-a-jwt", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	// catalogs stay public
	status, env := api.do(t, fiber.MethodGet, "/api/v1/staking/options", "", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.True(t, env.OK)
}

func TestRouter_RejectsForgedProof(t *testing.T) {
	api := newAPI(t)

	status, env := api.do(t, fiber.MethodPost, "/api/v1/auth/ton-proof", "", map[string]any{
		"address":    wallet,
		"network":    "-3",
		"public_key": hex.EncodeToString(make([]byte, ed25519.PublicKeySize)),
		"proof": map[string]any{
			"timestamp": api.clock.Now().Unix(),
			"domain":    map[string]any{"lengthBytes": 14, "value": "ledger.example"},
			"payload":   "never-issued",
			"signature": base64.StdEncoding.EncodeToString(make([]byte, ed25519.SignatureSize)),
		},
	})
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.False(t, env.OK)
}

func TestRouter_LedgerFlow(t *testing.T) {
	api := newAPI(t)
	token := api.login(t)

	status, env := api.do(t, fiber.MethodGet, "/api/v1/me/balance", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	// welcome bonus + login mission
	assert.Equal(t, "110", balanceOf(t, env))

	status, env = api.do(t, fiber.MethodPost, "/api/v1/staking/stake", token, map[string]any{"option_id": "stake-1", "amount": 1000})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Equal(t, string(services.KindInsufficientFunds), env.Kind)

	status, env = api.do(t, fiber.MethodPost, "/api/v1/staking/stake", token, map[string]any{"option_id": "stake-9", "amount": 20})
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, string(services.KindUnknownOption), env.Kind)

	status, _ = api.do(t, fiber.MethodPost, "/api/v1/staking/stake", token, map[string]any{"option_id": "stake-1", "amount": 20})
	assert.Equal(t, fiber.StatusCreated, status)

	status, env = api.do(t, fiber.MethodGet, "/api/v1/me/balance", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "90", balanceOf(t, env))

	status, _ = api.do(t, fiber.MethodPost, "/api/v1/faucet/claim", token, nil)
	assert.Equal(t, fiber.StatusOK, status)
	status, env = api.do(t, fiber.MethodPost, "/api/v1/faucet/claim", token, nil)
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, string(services.KindCooldownActive), env.Kind)

	status, env = api.do(t, fiber.MethodPost, "/api/v1/airdrops/nope/claim", token, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, string(services.KindUnknownAirdrop), env.Kind)

	status, env = api.do(t, fiber.MethodPost, "/api/v1/installments/missing/pay", token, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, string(services.KindPurchaseNotFound), env.Kind)

	status, env = api.do(t, fiber.MethodGet, "/api/v1/missions/next", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.True(t, env.OK)

	// every mutation published an outcome for this wallet
	for _, ev := range api.bus.OfType(events.EventLedgerOutcome) {
		assert.Equal(t, wallet, ev.UserID())
	}
}
