package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/token-ledger/backend/internal/catalog"
	"github.com/token-ledger/backend/internal/models"
	"github.com/token-ledger/backend/internal/repositories"
	"go.uber.org/zap"
)

type InvestmentService struct {
	run         *runner
	catalog     *catalog.Catalog
	investments *repositories.InvestmentRepo
	balances    *repositories.BalanceRepo
	balance     *BalanceService
	missions    *MissionService
	log         *zap.Logger
}

func newInvestmentService(
	run *runner,
	cat *catalog.Catalog,
	investments *repositories.InvestmentRepo,
	balances *repositories.BalanceRepo,
	balance *BalanceService,
	missions *MissionService,
	log *zap.Logger,
) *InvestmentService {
	return &InvestmentService{
		run:         run,
		catalog:     cat,
		investments: investments,
		balances:    balances,
		balance:     balance,
		missions:    missions,
		log:         log,
	}
}

func (s *InvestmentService) GovernanceTokens() []models.GovernanceToken {
	return s.catalog.GovernanceTokens
}

func (s *InvestmentService) Pools() []models.TokenPool {
	return s.catalog.Pools
}

func (s *InvestmentService) NFTs() []models.NFT {
	return s.catalog.NFTs
}

func (s *InvestmentService) BuyGovernanceToken(ctx context.Context, userID, tokenID string, qty int64) (*models.GovernancePurchase, error) {
	var purchase *models.GovernancePurchase
	err := s.run.mutate(ctx, userID, "buy_governance_token", func(u *unit) error {
		token, ok := s.catalog.GovernanceToken(tokenID)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownToken, tokenID)
		}
		if qty <= 0 {
			return ErrInvalidAmount
		}
		total := decimal.NewFromInt(token.Price).Mul(decimal.NewFromInt(qty))
		if _, err := s.balance.debit(u, total, ReasonGovernance); err != nil {
			return err
		}
		purchase = &models.GovernancePurchase{
			ID:          uuid.NewString(),
			TokenID:     token.ID,
			Quantity:    qty,
			UnitPrice:   token.Price,
			Total:       total,
			VotingPower: token.VotingPower * qty,
			At:          u.now,
		}
		u.set("token_id", token.ID)
		u.set("quantity", qty)
		return s.investments.AddGovernancePurchase(u.ctx, u.tx, userID, *purchase)
	})
	if err != nil {
		return nil, err
	}
	return purchase, nil
}

func (s *InvestmentService) JoinPool(ctx context.Context, userID, poolID string, amount int64) (*models.PoolContribution, error) {
	var contribution *models.PoolContribution
	err := s.run.mutate(ctx, userID, "join_pool", func(u *unit) error {
		pool, ok := s.catalog.Pool(poolID)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownPool, poolID)
		}
		if amount < pool.MinContribution {
			return fmt.Errorf("%w: %d < %d", ErrBelowMinContribution, amount, pool.MinContribution)
		}
		if amount <= 0 {
			return ErrInvalidAmount
		}
		if _, err := s.balance.debit(u, decimal.NewFromInt(amount), ReasonPool); err != nil {
			return err
		}
		contribution = &models.PoolContribution{
			ID:     uuid.NewString(),
			PoolID: pool.ID,
			Amount: amount,
			At:     u.now,
		}
		u.set("pool_id", pool.ID)
		u.set("amount", amount)
		return s.investments.AddPoolContribution(u.ctx, u.tx, userID, *contribution)
	})
	if err != nil {
		return nil, err
	}
	return contribution, nil
}

func (s *InvestmentService) BuyNFT(ctx context.Context, userID, nftID string) error {
	return s.run.mutate(ctx, userID, "buy_nft", func(u *unit) error {
		nft, ok := s.catalog.NFT(nftID)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownNFT, nftID)
		}
		if owned, err := s.owns(u, nftID); err != nil {
			return err
		} else if owned {
			return fmt.Errorf("%w: %q", ErrAlreadyOwned, nftID)
		}
		if nft.Price > 0 {
			if _, err := s.balance.debit(u, decimal.NewFromInt(nft.Price), ReasonNFT); err != nil {
				return err
			}
		}
		if _, err := s.investments.AddNFT(u.ctx, u.tx, userID, models.OwnedNFT{
			NftID:      nft.ID,
			Source:     models.NFTSourcePurchase,
			AcquiredAt: u.now,
		}); err != nil {
			return err
		}
		u.set("nft_id", nft.ID)
		return s.missions.completeSideEffect(u, models.MissionNFT)
	})
}

// GrantWelcomeNFT hands out the pioneer NFT once per user.
func (s *InvestmentService) GrantWelcomeNFT(ctx context.Context, userID string) error {
	return s.run.mutate(ctx, userID, "grant_welcome_nft", func(u *unit) error {
		_, err := s.grantWelcomeNFT(u)
		return err
	})
}

func (s *InvestmentService) grantWelcomeNFT(u *unit) (bool, error) {
	granted, err := s.balances.WelcomeNFTGranted(u.ctx, u.tx, u.userID)
	if err != nil || granted {
		return false, err
	}
	pioneer, ok := s.catalog.PioneerNFT()
	if !ok {
		return false, nil
	}
	if _, err := s.investments.AddNFT(u.ctx, u.tx, u.userID, models.OwnedNFT{
		NftID:      pioneer.ID,
		Source:     models.NFTSourceWelcome,
		AcquiredAt: u.now,
	}); err != nil {
		return false, err
	}
	s.balances.MarkWelcomeNFTGranted(u.tx, u.userID)
	return true, nil
}

func (s *InvestmentService) ClaimAirdrop(ctx context.Context, userID, airdropID string) (*models.AirdropClaim, error) {
	var claim *models.AirdropClaim
	err := s.run.mutate(ctx, userID, "claim_airdrop", func(u *unit) error {
		drop, ok := s.catalog.Airdrop(airdropID)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownAirdrop, airdropID)
		}
		existing, err := s.investments.AirdropClaim(u.ctx, u.tx, userID, airdropID)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("%w: %q", ErrAlreadyClaimed, airdropID)
		}
		facts, err := s.facts(u)
		if err != nil {
			return err
		}
		if !drop.Rule.Eligible(facts) {
			return fmt.Errorf("%w: requires %s", ErrNotEligible, drop.Rule.Describe())
		}
		if _, err := s.balance.credit(u, decimal.NewFromInt(drop.Amount), ReasonAirdrop); err != nil {
			return err
		}
		claim = &models.AirdropClaim{AirdropID: drop.ID, Amount: drop.Amount, ClaimedAt: u.now}
		if err := s.investments.PutAirdropClaim(u.tx, userID, *claim); err != nil {
			return err
		}
		u.set("airdrop_id", drop.ID)
		u.set("amount", drop.Amount)
		return s.missions.completeSideEffect(u, models.MissionAirdrop)
	})
	if err != nil {
		return nil, err
	}
	return claim, nil
}

// Airdrops lists the catalog with the user's claimed and eligible flags.
func (s *InvestmentService) Airdrops(ctx context.Context, userID string) ([]models.AirdropView, error) {
	var views []models.AirdropView
	err := s.run.view(ctx, userID, func(u *unit) error {
		facts, err := s.facts(u)
		if err != nil {
			return err
		}
		views = make([]models.AirdropView, 0, len(s.catalog.Airdrops))
		for _, a := range s.catalog.Airdrops {
			claim, err := s.investments.AirdropClaim(u.ctx, u.tx, userID, a.ID)
			if err != nil {
				return err
			}
			views = append(views, models.AirdropView{
				Airdrop:     a,
				Eligibility: a.Rule.Describe(),
				Eligible:    a.Rule.Eligible(facts),
				Claimed:     claim != nil,
			})
		}
		return nil
	})
	return views, err
}

func (s *InvestmentService) OwnedNFTs(ctx context.Context, userID string) ([]models.OwnedNFT, error) {
	var owned []models.OwnedNFT
	err := s.run.view(ctx, userID, func(u *unit) error {
		var err error
		owned, err = s.investments.OwnedNFTs(u.ctx, u.tx, userID)
		return err
	})
	return owned, err
}

func (s *InvestmentService) GovernancePurchases(ctx context.Context, userID string) ([]models.GovernancePurchase, error) {
	var out []models.GovernancePurchase
	err := s.run.view(ctx, userID, func(u *unit) error {
		var err error
		out, err = s.investments.GovernancePurchases(u.ctx, u.tx, userID)
		return err
	})
	return out, err
}

func (s *InvestmentService) PoolContributions(ctx context.Context, userID string) ([]models.PoolContribution, error) {
	var out []models.PoolContribution
	err := s.run.view(ctx, userID, func(u *unit) error {
		var err error
		out, err = s.investments.PoolContributions(u.ctx, u.tx, userID)
		return err
	})
	return out, err
}

func (s *InvestmentService) owns(u *unit, nftID string) (bool, error) {
	owned, err := s.investments.OwnedNFTs(u.ctx, u.tx, u.userID)
	if err != nil {
		return false, err
	}
	for _, o := range owned {
		if o.NftID == nftID {
			return true, nil
		}
	}
	return false, nil
}

func (s *InvestmentService) facts(u *unit) (models.EligibilityFacts, error) {
	bal, err := s.balance.balance(u)
	if err != nil {
		return models.EligibilityFacts{}, err
	}
	done, err := s.missions.completedSet(u)
	if err != nil {
		return models.EligibilityFacts{}, err
	}
	owned, err := s.investments.OwnedNFTs(u.ctx, u.tx, u.userID)
	if err != nil {
		return models.EligibilityFacts{}, err
	}
	nfts := make(map[string]bool, len(owned))
	for _, o := range owned {
		nfts[o.NftID] = true
	}
	return models.EligibilityFacts{Balance: bal, CompletedMissions: done, OwnedNFTs: nfts}, nil
}
