// Package simulated is an in-memory payment network. Balances start from a
// faucet grant and every transaction confirms immediately.
package simulated

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shopspring/decimal"

	"github.com/fd1az/trader-sentinel/business/payment/app"
	"github.com/fd1az/trader-sentinel/internal/asset"
	"github.com/fd1az/trader-sentinel/internal/logger"
)

var (
	_ app.Network     = (*Network)(nil)
	_ app.TokenLedger = (*ledger)(nil)
	_ app.Gateway     = (*gateway)(nil)
)

// Addresses used when none are configured.
var (
	DefaultGatewayAddress = common.HexToAddress("0x7A4e0000000000000000000000000000005E771E")
	DefaultWalletAddress  = common.HexToAddress("0x5E771E0000000000000000000000000000000001")
)

// Config configures a Network.
type Config struct {
	// Wallet is the single signer; approvals and spends come from it.
	Wallet  common.Address
	Gateway common.Address
	// FaucetUnits is the balance, in token units, every address starts with.
	FaucetUnits decimal.Decimal
	// Latency delays each confirmation.
	Latency time.Duration
}

// Network is an in-memory set of token ledgers plus one gateway per chain.
type Network struct {
	mu         sync.Mutex
	cfg        Config
	balances   map[asset.TokenKey]map[common.Address]*big.Int
	allowances map[asset.TokenKey]map[[2]common.Address]*big.Int
	staked     map[common.Address]*big.Int
	nonce      uint64
	registry   *asset.Registry
	logger     logger.LoggerInterface
}

// NewNetwork creates a Network.
func NewNetwork(cfg Config, registry *asset.Registry, log logger.LoggerInterface) *Network {
	if cfg.Gateway == (common.Address{}) {
		cfg.Gateway = DefaultGatewayAddress
	}
	if cfg.Wallet == (common.Address{}) {
		cfg.Wallet = DefaultWalletAddress
	}
	if cfg.FaucetUnits.IsZero() {
		cfg.FaucetUnits = decimal.NewFromInt(10_000)
	}
	return &Network{
		cfg:        cfg,
		balances:   make(map[asset.TokenKey]map[common.Address]*big.Int),
		allowances: make(map[asset.TokenKey]map[[2]common.Address]*big.Int),
		staked:     make(map[common.Address]*big.Int),
		registry:   registry,
		logger:     log,
	}
}

// Ledger implements app.Network.
func (n *Network) Ledger(_ context.Context, chainID uint64, token asset.Token) (app.TokenLedger, error) {
	if token.ChainID != chainID {
		return nil, fmt.Errorf("token %s is not on chain %d", token, chainID)
	}
	return &ledger{n: n, token: token}, nil
}

// Gateway implements app.Network.
func (n *Network) Gateway(_ context.Context, chainID uint64) (app.Gateway, error) {
	return &gateway{n: n, chainID: chainID}, nil
}

// Wallet returns the signer address.
func (n *Network) Wallet() common.Address {
	return n.cfg.Wallet
}

// Staked returns the amount staked by addr.
func (n *Network) Staked(addr common.Address) *big.Int {
	n.mu.Lock()
	defer n.mu.Unlock()
	if v, ok := n.staked[addr]; ok {
		return new(big.Int).Set(v)
	}
	return new(big.Int)
}

// balanceLocked returns the live balance entry, granting the faucet amount
// on first access.
func (n *Network) balanceLocked(token asset.Token, owner common.Address) *big.Int {
	key := token.Key()
	byOwner, ok := n.balances[key]
	if !ok {
		byOwner = make(map[common.Address]*big.Int)
		n.balances[key] = byOwner
	}
	bal, ok := byOwner[owner]
	if !ok {
		grant, err := asset.DecimalToBaseUnits(n.cfg.FaucetUnits, token.Decimals)
		if err != nil {
			grant = new(big.Int)
		}
		bal = grant
		byOwner[owner] = bal
	}
	return bal
}

func (n *Network) allowanceLocked(token asset.Token, owner, spender common.Address) *big.Int {
	key := token.Key()
	byPair, ok := n.allowances[key]
	if !ok {
		byPair = make(map[[2]common.Address]*big.Int)
		n.allowances[key] = byPair
	}
	a, ok := byPair[[2]common.Address{owner, spender}]
	if !ok {
		a = new(big.Int)
		byPair[[2]common.Address{owner, spender}] = a
	}
	return a
}

// checkSpendLocked reports whether the gateway may move amount of token
// from owner.
func (n *Network) checkSpendLocked(token asset.Token, owner common.Address, amount *big.Int) error {
	if n.allowanceLocked(token, owner, n.cfg.Gateway).Cmp(amount) < 0 {
		return fmt.Errorf("ERC20: insufficient allowance for %s", token.Symbol)
	}
	if n.balanceLocked(token, owner).Cmp(amount) < 0 {
		return fmt.Errorf("ERC20: transfer amount exceeds %s balance", token.Symbol)
	}
	return nil
}

// spendLocked moves amount from owner to the gateway. Callers check first.
func (n *Network) spendLocked(token asset.Token, owner common.Address, amount *big.Int) {
	allowance := n.allowanceLocked(token, owner, n.cfg.Gateway)
	allowance.Sub(allowance, amount)
	bal := n.balanceLocked(token, owner)
	bal.Sub(bal, amount)
	gw := n.balanceLocked(token, n.cfg.Gateway)
	gw.Add(gw, amount)
}

// txLocked mints a transaction handle.
func (n *Network) txLocked(action string) *tx {
	n.nonce++
	hash := crypto.Keccak256Hash([]byte(fmt.Sprintf("%s:%d:%d", action, n.nonce, time.Now().UnixNano())))
	return &tx{hash: hash, latency: n.cfg.Latency}
}

type tx struct {
	hash    common.Hash
	latency time.Duration
}

func (t *tx) Hash() string { return t.hash.Hex() }

func (t *tx) Wait(ctx context.Context) error {
	if t.latency <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(t.latency):
		return nil
	}
}

type ledger struct {
	n     *Network
	token asset.Token
}

func (l *ledger) BalanceOf(_ context.Context, owner common.Address) (*big.Int, error) {
	l.n.mu.Lock()
	defer l.n.mu.Unlock()
	return new(big.Int).Set(l.n.balanceLocked(l.token, owner)), nil
}

func (l *ledger) Decimals(_ context.Context) (uint8, error) {
	return l.token.Decimals, nil
}

func (l *ledger) Allowance(_ context.Context, owner, spender common.Address) (*big.Int, error) {
	l.n.mu.Lock()
	defer l.n.mu.Unlock()
	return new(big.Int).Set(l.n.allowanceLocked(l.token, owner, spender)), nil
}

// Approve grants spender an allowance from the configured wallet.
func (l *ledger) Approve(_ context.Context, spender common.Address, amount *big.Int) (app.PendingTx, error) {
	owner := l.n.cfg.Wallet

	l.n.mu.Lock()
	defer l.n.mu.Unlock()
	l.n.allowanceLocked(l.token, owner, spender).Set(amount)
	return l.n.txLocked("approve"), nil
}

type gateway struct {
	n       *Network
	chainID uint64
}

func (g *gateway) Address() common.Address { return g.n.cfg.Gateway }

func (g *gateway) PaySubscription(ctx context.Context, tokenAddr common.Address, amount *big.Int, packageID string) (app.PendingTx, error) {
	owner := g.n.cfg.Wallet
	token, err := g.tokenAt(tokenAddr)
	if err != nil {
		return nil, err
	}

	g.n.mu.Lock()
	defer g.n.mu.Unlock()
	if err := g.n.checkSpendLocked(token, owner, amount); err != nil {
		return nil, err
	}
	g.n.spendLocked(token, owner, amount)
	g.n.logger.Debug(ctx, "simulated subscription paid", "package", packageID, "token", token.Symbol, "amount", amount.String())
	return g.n.txLocked("paySubscription"), nil
}

func (g *gateway) AddLiquidity(ctx context.Context, tokenA, tokenB common.Address, amountA, amountB *big.Int) (app.PendingTx, error) {
	owner := g.n.cfg.Wallet
	a, err := g.tokenAt(tokenA)
	if err != nil {
		return nil, err
	}
	b, err := g.tokenAt(tokenB)
	if err != nil {
		return nil, err
	}

	g.n.mu.Lock()
	defer g.n.mu.Unlock()
	if err := g.n.checkSpendLocked(a, owner, amountA); err != nil {
		return nil, err
	}
	if err := g.n.checkSpendLocked(b, owner, amountB); err != nil {
		return nil, err
	}
	g.n.spendLocked(a, owner, amountA)
	g.n.spendLocked(b, owner, amountB)
	return g.n.txLocked("addLiquidity"), nil
}

func (g *gateway) Stake(_ context.Context, amount *big.Int) (app.PendingTx, error) {
	owner := g.n.cfg.Wallet
	if amount.Sign() <= 0 {
		return nil, fmt.Errorf("stake amount must be positive")
	}

	g.n.mu.Lock()
	defer g.n.mu.Unlock()
	cur, ok := g.n.staked[owner]
	if !ok {
		cur = new(big.Int)
		g.n.staked[owner] = cur
	}
	cur.Add(cur, amount)
	return g.n.txLocked("stake"), nil
}

func (g *gateway) ClaimRewards(_ context.Context) (app.PendingTx, error) {
	g.n.mu.Lock()
	defer g.n.mu.Unlock()
	return g.n.txLocked("claimRewards"), nil
}

// tokenAt finds the registered token behind addr on the gateway's chain.
// THRONOS has no contract, so the zero address resolves to it.
func (g *gateway) tokenAt(addr common.Address) (asset.Token, error) {
	for _, t := range g.n.registry.Tokens(g.chainID) {
		if t.Address == addr {
			return t, nil
		}
	}
	return asset.Token{}, fmt.Errorf("unknown token %s on chain %d", addr.Hex(), g.chainID)
}
