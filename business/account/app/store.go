// Package app contains the account application state store.
package app

import (
	"context"
	"encoding/json"
	"slices"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/fd1az/trader-sentinel/business/account/domain"
	marketdomain "github.com/fd1az/trader-sentinel/business/market/domain"
	paymentdomain "github.com/fd1az/trader-sentinel/business/payment/domain"
	"github.com/fd1az/trader-sentinel/internal/apperror"
	"github.com/fd1az/trader-sentinel/internal/logger"
)

// Persister stores the persisted part of the state as one blob.
type Persister interface {
	// Load returns the saved blob, or nil when nothing was saved yet.
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

// persisted is the saved subset of the state.
type persisted struct {
	User            *domain.User       `json:"user"`
	IsAuthenticated bool               `json:"isAuthenticated"`
	Subscription    paymentdomain.Tier `json:"subscription"`
	Settings        domain.Settings    `json:"settings"`
	Watchlist       []string           `json:"watchlist"`
	Rewards         domain.Rewards     `json:"rewards"`
}

// Store is the application state. Mutations are serialized; each one that
// touches a persisted field is followed by a save.
type Store struct {
	mu sync.RWMutex

	user          *domain.User
	authenticated bool
	wallet        domain.Wallet
	subscription  paymentdomain.Tier
	signals       marketdomain.SignalHistory
	market        map[string]marketdomain.ArbitrageView
	rewards       domain.Rewards
	settings      domain.Settings
	watchlist     []string

	persister Persister
	logger    logger.LoggerInterface
	now       func() time.Time
}

// NewStore creates a Store holding the defaults.
func NewStore(p Persister, log logger.LoggerInterface) *Store {
	return &Store{
		wallet:       domain.DisconnectedWallet(),
		subscription: paymentdomain.TierFree,
		market:       make(map[string]marketdomain.ArbitrageView),
		settings:     domain.DefaultSettings(),
		watchlist:    domain.DefaultWatchlist(),
		persister:    p,
		logger:       log,
		now:          time.Now,
	}
}

// Load restores the persisted fields. A missing blob keeps the defaults.
func (s *Store) Load(ctx context.Context) error {
	data, err := s.persister.Load(ctx)
	if err != nil {
		return apperror.New(apperror.CodeStoreLoadFailed, apperror.WithCause(err))
	}
	if len(data) == 0 {
		return nil
	}

	p := persisted{
		Subscription: paymentdomain.TierFree,
		Settings:     domain.DefaultSettings(),
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return apperror.New(apperror.CodeStoreLoadFailed, apperror.WithCause(err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.user = p.User
	s.authenticated = p.IsAuthenticated
	if _, ok := paymentdomain.PackageFor(p.Subscription); ok {
		s.subscription = p.Subscription
	}
	s.settings = p.Settings
	if p.Watchlist != nil {
		s.watchlist = p.Watchlist
	}
	s.rewards = p.Rewards

	return nil
}

// saveLocked writes the persisted fields. Failures are logged; the
// in-memory state stays authoritative.
func (s *Store) saveLocked(ctx context.Context) {
	data, err := json.Marshal(persisted{
		User:            s.user,
		IsAuthenticated: s.authenticated,
		Subscription:    s.subscription,
		Settings:        s.settings,
		Watchlist:       s.watchlist,
		Rewards:         s.rewards,
	})
	if err == nil {
		err = s.persister.Save(ctx, data)
	}
	if err != nil {
		s.logger.Warn(ctx, "state not persisted",
			"code", apperror.CodeStorePersistFailed, "error", err)
	}
}

// SetUser signs user in, or out when nil.
func (s *Store) SetUser(ctx context.Context, user *domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = user
	s.authenticated = user != nil
	s.saveLocked(ctx)
}

// User returns the signed-in user.
func (s *Store) User() (*domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil, false
	}
	u := *s.user
	return &u, s.authenticated
}

// Logout clears the user and disconnects the wallet.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	s.authenticated = false
	s.wallet = domain.DisconnectedWallet()
	s.saveLocked(ctx)
}

// ConnectWallet records a connected wallet session.
func (s *Store) ConnectWallet(addr common.Address, chainID uint64, balance decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wallet = domain.Wallet{Connected: true, Address: addr, ChainID: chainID, Balance: balance}
}

// DisconnectWallet drops the wallet session.
func (s *Store) DisconnectWallet() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wallet = domain.DisconnectedWallet()
}

// Wallet returns the wallet session.
func (s *Store) Wallet() domain.Wallet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.wallet
}

// WalletAddress returns the connected address.
func (s *Store) WalletAddress() (common.Address, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.wallet.Address, s.wallet.Connected
}

// SetSubscription records the active tier.
func (s *Store) SetSubscription(ctx context.Context, tier paymentdomain.Tier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscription = tier
	if s.user != nil {
		s.user.Subscription = tier
	}
	s.saveLocked(ctx)
}

// Subscription returns the active tier.
func (s *Store) Subscription() paymentdomain.Tier {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.subscription
}

// AddSignal prepends sig to the bounded signal history.
func (s *Store) AddSignal(sig marketdomain.Signal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signals.Add(sig)
}

// Signals returns the retained signals, most recent first.
func (s *Store) Signals() []marketdomain.Signal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.signals.List()
}

// ClearSignals drops the signal history.
func (s *Store) ClearSignals() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signals.Clear()
}

// SetMarketData stores the latest view for symbol.
func (s *Store) SetMarketData(symbol string, view marketdomain.ArbitrageView) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.market[symbol] = view
}

// MarketData returns the latest view for symbol.
func (s *Store) MarketData(symbol string) (marketdomain.ArbitrageView, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.market[symbol]
	return v, ok
}

// AddReward credits amount of typ.
func (s *Store) AddReward(ctx context.Context, amount decimal.Decimal, typ domain.RewardType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rewards = s.rewards.Add(amount, typ, s.now())
	s.saveLocked(ctx)
}

// ClaimRewards moves pending rewards to claimed.
func (s *Store) ClaimRewards(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rewards = s.rewards.Claim()
	s.saveLocked(ctx)
}

// PendingRewards returns the unclaimed amount.
func (s *Store) PendingRewards() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rewards.Pending
}

// Rewards returns the rewards ledger.
func (s *Store) Rewards() domain.Rewards {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r := s.rewards
	r.History = slices.Clone(r.History)
	return r
}

// UpdateSettings applies a partial settings update.
func (s *Store) UpdateSettings(ctx context.Context, patch domain.SettingsPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = patch.Apply(s.settings)
	s.saveLocked(ctx)
}

// Settings returns the user preferences.
func (s *Store) Settings() domain.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// AddToWatchlist appends symbol unless already present.
func (s *Store) AddToWatchlist(ctx context.Context, symbol string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if slices.Contains(s.watchlist, symbol) {
		return
	}
	s.watchlist = append(slices.Clone(s.watchlist), symbol)
	s.saveLocked(ctx)
}

// RemoveFromWatchlist drops symbol.
func (s *Store) RemoveFromWatchlist(ctx context.Context, symbol string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watchlist = slices.DeleteFunc(slices.Clone(s.watchlist), func(v string) bool { return v == symbol })
	s.saveLocked(ctx)
}

// Watchlist returns the tracked symbols in insertion order.
func (s *Store) Watchlist() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.watchlist)
}
