package asset

import "github.com/ethereum/go-ethereum/common"

// Symbols of tokens referenced by business rules.
const (
	SymbolTHRONOS = "THRONOS"
	SymbolUSDT    = "USDT"
	SymbolUSDC    = "USDC"
)

// THRONOSDecimals is the precision used for staking amounts.
const THRONOSDecimals uint8 = 18

// DefaultChains is the supported network table.
var DefaultChains = []Chain{
	{Key: ChainEthereum, ID: ChainIDEthereum, Name: "Ethereum", Symbol: "ETH", RPCURL: "https://eth.llamarpc.com", ExplorerURL: "https://etherscan.io"},
	{Key: ChainBSC, ID: ChainIDBSC, Name: "BNB Smart Chain", Symbol: "BNB", RPCURL: "https://bsc-dataseed.binance.org", ExplorerURL: "https://bscscan.com"},
	{Key: ChainPolygon, ID: ChainIDPolygon, Name: "Polygon", Symbol: "MATIC", RPCURL: "https://polygon-rpc.com", ExplorerURL: "https://polygonscan.com"},
	{Key: ChainArbitrum, ID: ChainIDArbitrum, Name: "Arbitrum", Symbol: "ETH", RPCURL: "https://arb1.arbitrum.io/rpc", ExplorerURL: "https://arbiscan.io"},
	{Key: ChainAvalanche, ID: ChainIDAvalanche, Name: "Avalanche", Symbol: "AVAX", RPCURL: "https://api.avax.network/ext/bc/C/rpc", ExplorerURL: "https://snowtrace.io"},
	{Key: ChainBase, ID: ChainIDBase, Name: "Base", Symbol: "ETH", RPCURL: "https://mainnet.base.org", ExplorerURL: "https://basescan.org"},
	{Key: ChainSolana, Name: "Solana", Symbol: "SOL", RPCURL: "https://api.mainnet-beta.solana.com", ExplorerURL: "https://solscan.io"},
}

// DefaultTokens is the payment and quote token table. THRONOS has no published
// contract and keeps the zero address.
var DefaultTokens = []Token{
	// Ethereum
	erc20(ChainIDEthereum, "USDT", "Tether USD", "0xdAC17F958D2ee523a2206206994597C13D831ec7", 6),
	erc20(ChainIDEthereum, "USDC", "USD Coin", "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", 6),
	erc20(ChainIDEthereum, "DAI", "Dai Stablecoin", "0x6B175474E89094C44Da98b954EedeAC495271d0F", 18),
	erc20(ChainIDEthereum, "WETH", "Wrapped Ether", "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2", 18),
	erc20(ChainIDEthereum, "WBTC", "Wrapped BTC", "0x2260FAC5E5542a773Aa44fBCfeDf7C193bc2C599", 8),
	thronos(ChainIDEthereum),

	// BSC
	erc20(ChainIDBSC, "USDT", "Tether USD", "0x55d398326f99059fF775485246999027B3197955", 18),
	erc20(ChainIDBSC, "USDC", "USD Coin", "0x8AC76a51cc950d9822D68b83fE1Ad97B32Cd580d", 18),
	erc20(ChainIDBSC, "BUSD", "Binance USD", "0xe9e7CEA3DedcA5984780Bafc599bD69ADd087D56", 18),
	erc20(ChainIDBSC, "WBNB", "Wrapped BNB", "0xbb4CdB9CBd36B01bD1cBaEBF2De08d9173bc095c", 18),
	thronos(ChainIDBSC),

	// Polygon
	erc20(ChainIDPolygon, "USDT", "Tether USD", "0xc2132D05D31c914a87C6611C10748AEb04B58e8F", 6),
	erc20(ChainIDPolygon, "USDC", "USD Coin", "0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174", 6),
	thronos(ChainIDPolygon),

	// Arbitrum
	erc20(ChainIDArbitrum, "USDT", "Tether USD", "0xFd086bC7CD5C481DCC9C85ebE478A1C0b69FCbb9", 6),
	erc20(ChainIDArbitrum, "USDC", "USD Coin", "0xFF970A61A04b1cA14834A43f5dE4533eBDDB5CC8", 6),
	thronos(ChainIDArbitrum),
}

// DefaultRegistry returns a registry built from the default tables.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(DefaultChains, DefaultTokens)
	if err != nil {
		panic(err)
	}
	return r
}

func erc20(chainID uint64, symbol, name, addr string, decimals uint8) Token {
	return Token{
		ChainID:  chainID,
		Symbol:   symbol,
		Name:     name,
		Address:  common.HexToAddress(addr),
		Decimals: decimals,
	}
}

func thronos(chainID uint64) Token {
	return Token{ChainID: chainID, Symbol: SymbolTHRONOS, Name: "Thronos", Decimals: THRONOSDecimals}
}
