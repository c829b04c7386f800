package asset

import (
	"fmt"
	"sort"
	"strings"
)

// Registry is an immutable lookup of chains and payment tokens. It is
// built once at start and safe for concurrent reads.
type Registry struct {
	chains      map[ChainKey]Chain
	chainsByID  map[uint64]Chain
	tokens      map[TokenKey]Token
	tokensChain map[uint64][]Token
}

// NewRegistry validates the tables and builds a Registry.
func NewRegistry(chains []Chain, tokens []Token) (*Registry, error) {
	r := &Registry{
		chains:      make(map[ChainKey]Chain, len(chains)),
		chainsByID:  make(map[uint64]Chain, len(chains)),
		tokens:      make(map[TokenKey]Token, len(tokens)),
		tokensChain: make(map[uint64][]Token),
	}

	for _, c := range chains {
		if _, exists := r.chains[c.Key]; exists {
			return nil, fmt.Errorf("asset: chain %s registered twice", c.Key)
		}
		r.chains[c.Key] = c
		if c.IsEVM() {
			if _, exists := r.chainsByID[c.ID]; exists {
				return nil, fmt.Errorf("asset: chain id %d registered twice", c.ID)
			}
			r.chainsByID[c.ID] = c
		}
	}

	for _, t := range tokens {
		if _, ok := r.chainsByID[t.ChainID]; !ok {
			return nil, fmt.Errorf("asset: token %s references unknown chain", t)
		}
		if t.Decimals > 30 {
			return nil, fmt.Errorf("asset: token %s has suspicious decimals %d", t, t.Decimals)
		}
		key := t.Key()
		if _, exists := r.tokens[key]; exists {
			return nil, fmt.Errorf("asset: token %s registered twice", t)
		}
		r.tokens[key] = t
		r.tokensChain[t.ChainID] = append(r.tokensChain[t.ChainID], t)
	}

	return r, nil
}

// Chain retrieves a chain by key.
func (r *Registry) Chain(key ChainKey) (Chain, bool) {
	c, ok := r.chains[key]
	return c, ok
}

// ChainByID retrieves an EVM chain by chain ID.
func (r *Registry) ChainByID(id uint64) (Chain, bool) {
	c, ok := r.chainsByID[id]
	return c, ok
}

// Chains returns all chains ordered by key.
func (r *Registry) Chains() []Chain {
	out := make([]Chain, 0, len(r.chains))
	for _, c := range r.chains {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Token retrieves a payment token by chain ID and symbol (case-insensitive).
func (r *Registry) Token(chainID uint64, symbol string) (Token, bool) {
	t, ok := r.tokens[TokenKey{ChainID: chainID, Symbol: strings.ToUpper(symbol)}]
	return t, ok
}

// Tokens returns the payment tokens of a chain in table order.
func (r *Registry) Tokens(chainID uint64) []Token {
	src := r.tokensChain[chainID]
	out := make([]Token, len(src))
	copy(out, src)
	return out
}

// TokenCount returns the number of registered tokens.
func (r *Registry) TokenCount() int {
	return len(r.tokens)
}
