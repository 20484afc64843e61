package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE_BACKEND", "")
	t.Setenv("INSTALLMENT_MIN_STAKE", "")
	t.Setenv("LEDGER_LIVE_ACCRUAL", "")

	cfg := Load()
	assert.Equal(t, StoreMemory, cfg.StoreBackend)
	assert.Equal(t, int64(50), cfg.InstallmentMinStake)
	assert.Equal(t, 24*time.Hour, cfg.FaucetCooldown)
	assert.Equal(t, 30*24*time.Hour, cfg.InstallmentPeriod)
	assert.False(t, cfg.LiveAccrual)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORE_BACKEND", "Redis")
	t.Setenv("FAUCET_COOLDOWN_HOURS", "12")
	t.Setenv("LEDGER_LIVE_ACCRUAL", "true")
	t.Setenv("TON_PROOF_ALLOWED_DOMAINS", "app.example.com, ,ledger.example.com")
	t.Setenv("WELCOME_BONUS", "not-a-number")

	cfg := Load()
	assert.Equal(t, StoreRedis, cfg.StoreBackend)
	assert.Equal(t, 12*time.Hour, cfg.FaucetCooldown)
	assert.True(t, cfg.LiveAccrual)
	assert.Equal(t, []string{"app.example.com", "ledger.example.com"}, cfg.TONProofAllowedDomains)
	assert.Equal(t, int64(100), cfg.WelcomeBonus)
}

func TestValidateFallsBackToMemory(t *testing.T) {
	cfg := &Config{StoreBackend: "cassandra", InstallmentPeriod: 0}
	cfg.Validate(zap.NewNop())
	assert.Equal(t, StoreMemory, cfg.StoreBackend)
	assert.Equal(t, 30*24*time.Hour, cfg.InstallmentPeriod)
}
