// Package asset holds the static chain and payment-token tables and the
// conversion between human amounts and on-chain base units.
package asset

// ChainKey identifies a supported network, EVM or not.
type ChainKey string

// Supported networks.
const (
	ChainEthereum  ChainKey = "ethereum"
	ChainBSC       ChainKey = "bsc"
	ChainPolygon   ChainKey = "polygon"
	ChainArbitrum  ChainKey = "arbitrum"
	ChainAvalanche ChainKey = "avalanche"
	ChainBase      ChainKey = "base"
	ChainSolana    ChainKey = "solana"
)

// EVM chain IDs.
const (
	ChainIDEthereum  uint64 = 1
	ChainIDBSC       uint64 = 56
	ChainIDPolygon   uint64 = 137
	ChainIDArbitrum  uint64 = 42161
	ChainIDAvalanche uint64 = 43114
	ChainIDBase      uint64 = 8453
)

// Chain describes a network payments can be made on.
type Chain struct {
	Key         ChainKey
	ID          uint64 // zero for non-EVM networks
	Name        string
	Symbol      string // native coin
	RPCURL      string
	ExplorerURL string
}

// IsEVM reports whether the chain is addressed by an EVM chain ID.
func (c Chain) IsEVM() bool {
	return c.ID != 0
}

// TxURL returns the explorer link for a transaction hash.
func (c Chain) TxURL(hash string) string {
	return c.ExplorerURL + "/tx/" + hash
}
