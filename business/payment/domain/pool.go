package domain

import (
	"github.com/shopspring/decimal"

	"github.com/fd1az/trader-sentinel/internal/asset"
)

// Pool is a gateway liquidity pool.
type Pool struct {
	ID      string
	ChainID uint64
	TokenA  string
	TokenB  string
	APR     decimal.Decimal // percent
}

var pools = []Pool{
	{ID: "thronos-usdt", ChainID: asset.ChainIDEthereum, TokenA: asset.SymbolTHRONOS, TokenB: "USDT", APR: decimal.RequireFromString("12.5")},
	{ID: "thronos-eth", ChainID: asset.ChainIDEthereum, TokenA: asset.SymbolTHRONOS, TokenB: "WETH", APR: decimal.RequireFromString("15.2")},
	{ID: "thronos-bnb", ChainID: asset.ChainIDBSC, TokenA: asset.SymbolTHRONOS, TokenB: "WBNB", APR: decimal.RequireFromString("18.7")},
}

// Pools returns the known liquidity pools.
func Pools() []Pool {
	out := make([]Pool, len(pools))
	copy(out, pools)
	return out
}

// PoolByID looks a pool up by id.
func PoolByID(id string) (Pool, bool) {
	for _, p := range pools {
		if p.ID == id {
			return p, true
		}
	}
	return Pool{}, false
}

// EstimatedRewards returns amountA * APR / 100, the first-year reward
// estimate shown before depositing.
func (p Pool) EstimatedRewards(amountA decimal.Decimal) decimal.Decimal {
	return amountA.Mul(p.APR).Div(decimal.NewFromInt(100))
}
