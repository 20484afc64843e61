package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/token-ledger/backend/internal/auth"
	"github.com/token-ledger/backend/internal/config"
	"github.com/token-ledger/backend/internal/repositories"
	"github.com/token-ledger/backend/internal/ton"
	"go.uber.org/zap"
)

var ErrProofRejected = errors.New("ton proof rejected")

// WalletService turns a verified TON Connect proof into a ledger identity
// and a session token.
type WalletService struct {
	ledger   *Ledger
	payloads repositories.ProofPayloadRepo
	cfg      *config.Config
	clock    clockwork.Clock
	log      *zap.Logger
}

func NewWalletService(
	ledger *Ledger,
	payloads repositories.ProofPayloadRepo,
	cfg *config.Config,
	clock clockwork.Clock,
	log *zap.Logger,
) *WalletService {
	return &WalletService{
		ledger:   ledger,
		payloads: payloads,
		cfg:      cfg,
		clock:    clock,
		log:      log,
	}
}

// GeneratePayload создаёт nonce для TON Proof.
// Клиент передаёт его в tonconnect при подключении кошелька.
func (s *WalletService) GeneratePayload(ctx context.Context) (string, error) {
	payload, err := s.payloads.Create(ctx, s.cfg.ProofPayloadTTL)
	if err != nil {
		return "", fmt.Errorf("failed to create proof payload: %w", err)
	}
	return payload, nil
}

type WalletSession struct {
	Token   string         `json:"token"`
	Address string         `json:"address"`
	Connect *ConnectResult `json:"connect"`
}

// ConnectWallet verifies the proof, signals the ledger that the wallet is
// connected and issues a JWT whose subject is the raw address.
func (s *WalletService) ConnectWallet(ctx context.Context, req ton.ProofData) (*WalletSession, error) {
	// 1. Consume payload (nonce), защита от replay
	ok, err := s.payloads.Consume(ctx, req.Proof.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to consume proof payload: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: invalid or expired proof payload", ErrProofRejected)
	}

	// 2. Адрес
	addr, err := ton.ParseAddress(req.Address)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProofRejected, err)
	}
	userID, err := ton.NormalizeAddress(req.Address)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProofRejected, err)
	}

	// 3. Network
	if network := networkName(req.Network); network != "" && network != s.cfg.TONNetwork {
		return nil, fmt.Errorf("%w: network mismatch: expected %s, got %s", ErrProofRejected, s.cfg.TONNetwork, network)
	}

	// 4. Подпись
	if err := ton.VerifyProof(req.PublicKey, addr, req.Proof, s.cfg.TONProofAllowedDomains, s.clock.Now()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProofRejected, err)
	}

	// 5. Ledger
	res, err := s.ledger.ConnectWallet(ctx, userID, true)
	if err != nil {
		return nil, err
	}

	token, err := auth.GenerateJWT(s.cfg.JWTSecret, userID, s.cfg.TONNetwork, s.cfg.JWTExpiration)
	if err != nil {
		return nil, fmt.Errorf("failed to generate jwt: %w", err)
	}

	s.log.Info("wallet connected",
		zap.String("user_id", userID),
		zap.Bool("welcome_granted", res.WelcomeGranted),
	)
	return &WalletSession{Token: token, Address: userID, Connect: res}, nil
}

// networkName maps TON Connect chain ids to config names.
func networkName(network string) string {
	switch network {
	case "-239":
		return "mainnet"
	case "-3":
		return "testnet"
	default:
		return network
	}
}
