package services

import (
	"context"

	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
	"github.com/token-ledger/backend/internal/catalog"
	"github.com/token-ledger/backend/internal/config"
	"github.com/token-ledger/backend/internal/events"
	"github.com/token-ledger/backend/internal/models"
	"github.com/token-ledger/backend/internal/repositories"
	"github.com/token-ledger/backend/internal/store"
	"go.uber.org/zap"
)

// Ledger owns every ledger component. Build one per process and share it.
type Ledger struct {
	Balance      *BalanceService
	Missions     *MissionService
	Staking      *StakingService
	Investment   *InvestmentService
	Installments *InstallmentService
	Activity     *ActivityService

	run         *runner
	balances    *repositories.BalanceRepo
	accounts    *repositories.AccountRepo
	investments *repositories.InvestmentRepo
	catalog     *catalog.Catalog
	cfg         *config.Config
	log         *zap.Logger
}

func NewLedger(
	st store.Store,
	publisher events.Publisher,
	cfg *config.Config,
	cat *catalog.Catalog,
	clock clockwork.Clock,
	log *zap.Logger,
) (*Ledger, error) {
	graph, err := NewMissionGraph(cat.Missions)
	if err != nil {
		return nil, err
	}

	run := newRunner(st, publisher, clock, log)

	balances := repositories.NewBalanceRepo()
	accounts := repositories.NewAccountRepo()
	journal := repositories.NewJournalRepo()
	missionRepo := repositories.NewMissionRepo()
	stakes := repositories.NewStakeRepo()
	investments := repositories.NewInvestmentRepo()
	installments := repositories.NewInstallmentRepo()

	balance := newBalanceService(run, balances, journal, log)
	missions := newMissionService(run, graph, missionRepo, accounts, investments, balance, log)
	staking := newStakingService(run, cat, stakes, accounts, balance, missions, cfg, log)

	return &Ledger{
		Balance:      balance,
		Missions:     missions,
		Staking:      staking,
		Investment:   newInvestmentService(run, cat, investments, balances, balance, missions, log),
		Installments: newInstallmentService(run, installments, balance, staking, cfg, log),
		Activity:     newActivityService(run, cat, accounts, investments, balance, missions, staking, cfg, log),
		run:          run,
		balances:     balances,
		accounts:     accounts,
		investments:  investments,
		catalog:      cat,
		cfg:          cfg,
		log:          log,
	}, nil
}

type ConnectResult struct {
	Balance           decimal.Decimal `json:"balance"`
	WelcomeGranted    bool            `json:"welcome_granted"`
	WelcomeNFTGranted bool            `json:"welcome_nft_granted"`
	LoginCompleted    bool            `json:"login_completed"`
}

// ConnectWallet handles the identity signal. A disconnected wallet changes
// nothing. On connect the user gets mission state, the one-time welcome
// bonus and NFT, and the login mission.
func (l *Ledger) ConnectWallet(ctx context.Context, userID string, connected bool) (*ConnectResult, error) {
	if !connected {
		return &ConnectResult{}, nil
	}
	res := &ConnectResult{}
	err := l.run.mutate(ctx, userID, "connect_wallet", func(u *unit) error {
		if _, err := l.Missions.initialize(u); err != nil {
			return err
		}

		acc, err := l.accounts.GetOrNew(u.ctx, u.tx, userID, u.now)
		if err != nil {
			return err
		}
		if err := l.accounts.Put(u.tx, acc); err != nil {
			return err
		}

		granted, err := l.balances.WelcomeGranted(u.ctx, u.tx, userID)
		if err != nil {
			return err
		}
		if !granted {
			if l.cfg.WelcomeBonus > 0 {
				if _, err := l.Balance.credit(u, decimal.NewFromInt(l.cfg.WelcomeBonus), ReasonWelcomeBonus); err != nil {
					return err
				}
			}
			l.balances.MarkWelcomeGranted(u.tx, userID)
			res.WelcomeGranted = true
		}

		if res.WelcomeNFTGranted, err = l.Investment.grantWelcomeNFT(u); err != nil {
			return err
		}

		if _, ok := l.Missions.graph.Mission(models.MissionLogin); ok {
			if res.LoginCompleted, err = l.Missions.complete(u, models.MissionLogin); err != nil {
				return err
			}
		}

		if res.Balance, err = l.Balance.balance(u); err != nil {
			return err
		}
		u.set("welcome_granted", res.WelcomeGranted)
		u.set("balance", res.Balance)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if res.WelcomeGranted {
		l.log.Info("welcome bonus granted", zap.String("user_id", userID), zap.Int64("amount", l.cfg.WelcomeBonus))
	}
	return res, nil
}

// Account returns the profile summary rendered by the UI.
func (l *Ledger) Account(ctx context.Context, userID string) (*models.AccountSummary, error) {
	var sum *models.AccountSummary
	err := l.run.view(ctx, userID, func(u *unit) error {
		acc, err := l.accounts.GetOrNew(u.ctx, u.tx, userID, u.now)
		if err != nil {
			return err
		}
		bal, err := l.Balance.balance(u)
		if err != nil {
			return err
		}
		welcome, err := l.balances.WelcomeGranted(u.ctx, u.tx, userID)
		if err != nil {
			return err
		}
		welcomeNFT, err := l.balances.WelcomeNFTGranted(u.ctx, u.tx, userID)
		if err != nil {
			return err
		}
		owned, err := l.investments.OwnedNFTs(u.ctx, u.tx, userID)
		if err != nil {
			return err
		}
		next, err := l.Missions.nextAvailable(u)
		if err != nil {
			return err
		}

		sum = &models.AccountSummary{
			UserID:            userID,
			Balance:           bal,
			WelcomeGranted:    welcome,
			WelcomeNFTGranted: welcomeNFT,
			AccessGrants:      nonNil(acc.AccessGrants),
			CustomRewards:     nonNil(acc.CustomRewards),
			OwnedNFTs:         owned,
			NextMission:       next,
			PassiveIncome:     acc.PassiveIncomeAt != nil,
			FaucetReadyAt:     faucetReadyAt(acc, l.cfg.FaucetCooldown),
		}
		if sum.OwnedNFTs == nil {
			sum.OwnedNFTs = []models.OwnedNFT{}
		}
		return nil
	})
	return sum, err
}

func (l *Ledger) Journal(ctx context.Context, userID string) ([]models.JournalEntry, error) {
	return l.Balance.Journal(ctx, userID)
}

func (l *Ledger) Catalog() *catalog.Catalog {
	return l.catalog
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
