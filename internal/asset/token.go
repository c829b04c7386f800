package asset

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Token is an ERC20 payment token deployed on one chain.
type Token struct {
	ChainID  uint64
	Symbol   string
	Name     string
	Address  common.Address
	Decimals uint8
}

// IsDeployed reports whether the token has a known contract address.
// The THRONOS token has no published address yet and is zero.
func (t Token) IsDeployed() bool {
	return t.Address != (common.Address{})
}

// String returns SYMBOL@chainID.
func (t Token) String() string {
	return fmt.Sprintf("%s@%d", t.Symbol, t.ChainID)
}

// TokenKey is the registry lookup key of a token.
type TokenKey struct {
	ChainID uint64
	Symbol  string
}

// Key returns the lookup key of t.
func (t Token) Key() TokenKey {
	return TokenKey{ChainID: t.ChainID, Symbol: t.Symbol}
}
