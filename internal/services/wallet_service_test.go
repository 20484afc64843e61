package services

import (
	"context"
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/token-ledger/backend/internal/auth"
	"github.com/token-ledger/backend/internal/repositories"
	"github.com/token-ledger/backend/internal/ton"
	"go.uber.org/zap/zaptest"
)

func signedProof(t *testing.T, priv ed25519.PrivateKey, address, payload string, at time.Time) ton.Proof {
	t.Helper()
	addr, err := ton.ParseAddress(address)
	require.NoError(t, err)
	proof := ton.Proof{
		Timestamp: at.Unix(),
		Domain:    ton.ProofDomain{LengthBytes: len("ledger.example"), Value: "ledger.example"},
		Payload:   payload,
	}
	msgHash := sha256.Sum256(ton.ProofMessage(addr, proof))
	sigMsg := append([]byte{0xff, 0xff}, []byte(ton.TonConnectPrefix)...)
	sigMsg = append(sigMsg, msgHash[:]...)
	final := sha256.Sum256(sigMsg)
	proof.Signature = base64.StdEncoding.EncodeToString(ed25519.Sign(priv, final[:]))
	return proof
}

func newWalletService(t *testing.T) (*WalletService, *testEnv) {
	t.Helper()
	env := newTestEnv(t)
	env.cfg.TONNetwork = "testnet"
	env.cfg.TONProofAllowedDomains = []string{"ledger.example"}
	env.cfg.ProofPayloadTTL = 5 * time.Minute
	env.cfg.JWTSecret = "test-secret"
	env.cfg.JWTExpiration = time.Hour
	svc := NewWalletService(env.ledger, repositories.NewMemoryProofPayloadRepo(env.clock), env.cfg, env.clock, zaptest.NewLogger(t))
	return svc, env
}

func TestWalletService_ConnectWallet(t *testing.T) {
	ctx := context.Background()
	svc, env := newWalletService(t)
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	payload, err := svc.GeneratePayload(ctx)
	require.NoError(t, err)

	req := ton.ProofData{
		Address:   user,
		Network:   "-3",
		PublicKey: hex.EncodeToString(pub),
		Proof:     signedProof(t, priv, user, payload, env.clock.Now()),
	}
	session, err := svc.ConnectWallet(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, user, session.Address)
	assert.True(t, session.Connect.WelcomeGranted)
	assert.Equal(t, "110", env.balance(t, user))

	claims, err := auth.ParseJWT("test-secret", session.Token)
	require.NoError(t, err)
	assert.Equal(t, user, claims.Address)

	// the payload is single use
	_, err = svc.ConnectWallet(ctx, req)
	assert.ErrorIs(t, err, ErrProofRejected)
	assert.Equal(t, "110", env.balance(t, user))
}

func TestWalletService_RejectsBadProofs(t *testing.T) {
	ctx := context.Background()
	svc, env := newWalletService(t)
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	_, otherPriv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	tests := []struct {
		name    string
		network string
		signer  ed25519.PrivateKey
		payload func(string) string
	}{
		{"unknown payload", "-3", priv, func(string) string { return "deadbeef" }},
		{"wrong network", "-239", priv, func(p string) string { return p }},
		{"wrong key", "-3", otherPriv, func(p string) string { return p }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := svc.GeneratePayload(ctx)
			require.NoError(t, err)
			_, err = svc.ConnectWallet(ctx, ton.ProofData{
				Address:   user,
				Network:   tt.network,
				PublicKey: hex.EncodeToString(pub),
				Proof:     signedProof(t, tt.signer, user, tt.payload(payload), env.clock.Now()),
			})
			assert.ErrorIs(t, err, ErrProofRejected)
		})
	}
	assert.Equal(t, "0", env.balance(t, user))
}
