package app

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/trader-sentinel/business/payment/domain"
	"github.com/fd1az/trader-sentinel/internal/apperror"
	"github.com/fd1az/trader-sentinel/internal/cache"
	"github.com/fd1az/trader-sentinel/internal/logger"
)

// Service is the payment entry point used by the CLI and the TUI. It fills
// in the connected wallet, applies the business rules around each action
// and mirrors confirmed outcomes into the state store.
type Service struct {
	seq      *Sequencer
	store    StateStore
	queries  GatewayQueries
	fiat     FiatPayments
	chainID  uint64
	cacheTTL time.Duration
	cache    *cache.Cache[string, any]
	logger   logger.LoggerInterface
}

// ServiceConfig holds Service settings.
type ServiceConfig struct {
	ChainID  uint64
	CacheTTL time.Duration
}

// NewService creates a Service.
func NewService(seq *Sequencer, store StateStore, queries GatewayQueries, fiat FiatPayments, cfg ServiceConfig, log logger.LoggerInterface) *Service {
	return &Service{
		seq:      seq,
		store:    store,
		queries:  queries,
		fiat:     fiat,
		chainID:  cfg.ChainID,
		cacheTTL: cfg.CacheTTL,
		cache:    cache.New[string, any](),
		logger:   log,
	}
}

// Close releases the query cache.
func (s *Service) Close() {
	s.cache.Close()
}

// Execute runs kind for req on behalf of the connected wallet.
func (s *Service) Execute(ctx context.Context, kind domain.ActionKind, req domain.PaymentRequest) domain.PaymentResult {
	if addr, ok := s.store.WalletAddress(); ok && req.Payer == (common.Address{}) {
		req.Payer = addr
	}
	if req.ChainID == 0 {
		req.ChainID = s.chainID
	}

	switch kind {
	case domain.ActionClaimRewards:
		if !s.store.PendingRewards().IsPositive() {
			return domain.Failed(apperror.Message(apperror.New(apperror.CodeNoRewardsToClaim)), kind.FallbackMessage())
		}
	case domain.ActionAddLiquidity:
		if req.PoolID != "" {
			pool, ok := domain.PoolByID(req.PoolID)
			if !ok {
				return domain.Failed(fmt.Sprintf("unknown pool %q", req.PoolID), kind.FallbackMessage())
			}
			req.ChainID = pool.ChainID
			if req.Token == "" {
				req.Token = pool.TokenA
			}
			if req.TokenB == "" {
				req.TokenB = pool.TokenB
			}
		}
	}

	result := s.seq.ExecuteAction(ctx, kind, req)
	if !result.Success {
		return result
	}

	switch kind {
	case domain.ActionPaySubscription:
		s.store.SetSubscription(ctx, req.PackageID)
	case domain.ActionClaimRewards:
		s.store.ClaimRewards(ctx)
	}
	s.invalidate(req.Payer)

	return result
}

// Subscribe pays for tier with tokenSymbol at the package price.
func (s *Service) Subscribe(ctx context.Context, tier domain.Tier, tokenSymbol string) domain.PaymentResult {
	return s.Execute(ctx, domain.ActionPaySubscription, domain.PaymentRequest{PackageID: tier, Token: tokenSymbol})
}

// AddLiquidity deposits into a known pool.
func (s *Service) AddLiquidity(ctx context.Context, poolID, amountA, amountB string) domain.PaymentResult {
	return s.Execute(ctx, domain.ActionAddLiquidity, domain.PaymentRequest{PoolID: poolID, Amount: amountA, AmountB: amountB})
}

// Stake stakes amount THRONOS.
func (s *Service) Stake(ctx context.Context, amount string) domain.PaymentResult {
	return s.Execute(ctx, domain.ActionStake, domain.PaymentRequest{Amount: amount})
}

// ClaimRewards claims the pending rewards.
func (s *Service) ClaimRewards(ctx context.Context) domain.PaymentResult {
	return s.Execute(ctx, domain.ActionClaimRewards, domain.PaymentRequest{})
}

// CreateFiatSession starts a card checkout and returns its URL.
func (s *Service) CreateFiatSession(ctx context.Context, tier domain.Tier, email, currency string) (string, error) {
	pkg, ok := domain.PackageFor(tier)
	if !ok || !pkg.ID.IsPaid() {
		return "", apperror.New(apperror.CodeUnknownPackage, apperror.WithContext(string(tier)))
	}
	if email == "" {
		return "", apperror.Validation(apperror.CodeRequiredField, "email")
	}
	if currency == "" {
		currency = "usd"
	}

	url, err := s.fiat.CreateSession(ctx, domain.FiatSessionRequest{
		PackageID:  pkg.ID,
		Email:      email,
		Currency:   currency,
		SuccessURL: domain.FiatSuccessURL,
		CancelURL:  domain.FiatCancelURL,
	})
	if err != nil {
		return "", err
	}

	s.logger.Info(ctx, "fiat checkout created", "package", pkg.ID)
	return url, nil
}

// Rewards returns the connected wallet's rewards breakdown.
func (s *Service) Rewards(ctx context.Context) (*domain.RewardsInfo, error) {
	return cachedQuery(ctx, s, "rewards", s.queries.Rewards)
}

// SubscriptionStatus returns the connected wallet's subscription.
func (s *Service) SubscriptionStatus(ctx context.Context) (*domain.SubscriptionStatus, error) {
	return cachedQuery(ctx, s, "subscription", s.queries.SubscriptionStatus)
}

// LiquidityPositions returns the connected wallet's pool positions.
func (s *Service) LiquidityPositions(ctx context.Context) ([]domain.LiquidityPosition, error) {
	return cachedQuery(ctx, s, "liquidity", s.queries.LiquidityPositions)
}

// StakingInfo returns the connected wallet's staking position.
func (s *Service) StakingInfo(ctx context.Context) (*domain.StakingInfo, error) {
	return cachedQuery(ctx, s, "staking", s.queries.StakingInfo)
}

// ReferralLink returns the connected wallet's referral link.
func (s *Service) ReferralLink(ctx context.Context) (string, error) {
	return cachedQuery(ctx, s, "referral", s.queries.ReferralLink)
}

var queryKinds = []string{"rewards", "subscription", "liquidity", "staking", "referral"}

func (s *Service) invalidate(addr common.Address) {
	for _, kind := range queryKinds {
		s.cache.Delete(context.Background(), cacheKey(kind, addr))
	}
}

func cacheKey(kind string, addr common.Address) string {
	return kind + ":" + addr.Hex()
}

func cachedQuery[T any](ctx context.Context, s *Service, kind string, fetch func(context.Context, common.Address) (T, error)) (T, error) {
	var zero T

	addr, ok := s.store.WalletAddress()
	if !ok {
		return zero, apperror.New(apperror.CodeWalletNotConnected)
	}

	key := cacheKey(kind, addr)
	if v, ok := s.cache.Get(ctx, key); ok {
		if typed, ok := v.(T); ok {
			return typed, nil
		}
	}

	v, err := fetch(ctx, addr)
	if err != nil {
		return zero, err
	}

	if s.cacheTTL > 0 {
		s.cache.Set(ctx, key, v, s.cacheTTL)
	}
	return v, nil
}
