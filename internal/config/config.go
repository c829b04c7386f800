// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Wallet modes.
const (
	WalletSimulated = "simulated"
	WalletEthereum  = "ethereum"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

// Config holds all application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Market    MarketConfig    `mapstructure:"market"`
	Feed      FeedConfig      `mapstructure:"feed"`
	Payment   PaymentConfig   `mapstructure:"payment"`
	Store     StoreConfig     `mapstructure:"store"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Health    HealthConfig    `mapstructure:"health"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
}

// MarketConfig configures the signal watcher and its market data source.
type MarketConfig struct {
	APIURL           string        `mapstructure:"api_url"`
	Watchlist        []string      `mapstructure:"watchlist"`
	PollInterval     time.Duration `mapstructure:"poll_interval"`
	RequestTimeout   time.Duration `mapstructure:"request_timeout"`
	MinSpreadPercent float64       `mapstructure:"min_spread_percent"`
	UseStream        bool          `mapstructure:"use_stream"`
	StreamInterval   time.Duration `mapstructure:"stream_interval"`
	TUIMode          bool          `mapstructure:"-"` // Set at runtime, not from config file
}

// MinSpreadPercentDecimal returns the signal threshold as decimal.Decimal.
func (c *MarketConfig) MinSpreadPercentDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.MinSpreadPercent)
}

// FeedConfig configures the market data backend.
type FeedConfig struct {
	Port                  int           `mapstructure:"port"`
	Venues                []string      `mapstructure:"venues"`
	BinanceWSURL          string        `mapstructure:"binance_ws_url"`
	BinanceRESTURL        string        `mapstructure:"binance_rest_url"`
	BybitURL              string        `mapstructure:"bybit_url"`
	OKXURL                string        `mapstructure:"okx_url"`
	MEXCURL               string        `mapstructure:"mexc_url"`
	DexScreenerURL        string        `mapstructure:"dexscreener_url"`
	EthRPCURL             string        `mapstructure:"eth_rpc_url"`
	UniswapQuoter         string        `mapstructure:"uniswap_quoter"`
	UniswapFeeTiers       []int         `mapstructure:"uniswap_fee_tiers"`
	VenueMinInterval      time.Duration `mapstructure:"venue_min_interval"`
	VenueTimeout          time.Duration `mapstructure:"venue_timeout"`
	StaleTimeout          time.Duration `mapstructure:"stale_timeout"`
	SnapshotTTL           time.Duration `mapstructure:"snapshot_ttl"`
	StreamDefaultInterval time.Duration `mapstructure:"stream_default_interval"`
	StreamMinInterval     time.Duration `mapstructure:"stream_min_interval"`
	StreamMaxInterval     time.Duration `mapstructure:"stream_max_interval"`
	AlertSpreadPercent    float64       `mapstructure:"alert_spread_percent"`
	TTS                   TTSConfig     `mapstructure:"tts"`
}

// TTSConfig configures the optional Google Cloud text-to-speech endpoint.
// Credentials come from GOOGLE_APPLICATION_CREDENTIALS.
type TTSConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Language string `mapstructure:"language"`
	Voice    string `mapstructure:"voice"`
}

// UniswapQuoterHex returns the QuoterV2 contract address as common.Address.
func (c *FeedConfig) UniswapQuoterHex() common.Address {
	return common.HexToAddress(c.UniswapQuoter)
}

// AlertSpreadPercentDecimal returns the alert threshold as decimal.Decimal.
func (c *FeedConfig) AlertSpreadPercentDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.AlertSpreadPercent)
}

// PaymentConfig configures the sequencer collaborators.
type PaymentConfig struct {
	GatewayURL          string        `mapstructure:"gateway_url"`
	ChainID             uint64        `mapstructure:"chain_id"`
	RPCURL              string        `mapstructure:"rpc_url"`
	GatewayAddress      string        `mapstructure:"gateway_address"`
	WalletMode          string        `mapstructure:"wallet_mode"`
	WalletAddress       string        `mapstructure:"wallet_address"`
	ReceiptPollInterval time.Duration `mapstructure:"receipt_poll_interval"`
	ReceiptTimeout      time.Duration `mapstructure:"receipt_timeout"`
	RequestTimeout      time.Duration `mapstructure:"request_timeout"`
	QueryCacheTTL       time.Duration `mapstructure:"query_cache_ttl"`
}

// GatewayAddressHex returns the gateway contract address as common.Address.
func (c *PaymentConfig) GatewayAddressHex() common.Address {
	return common.HexToAddress(c.GatewayAddress)
}

// WalletAddressHex returns the connected wallet address as common.Address.
func (c *PaymentConfig) WalletAddressHex() common.Address {
	return common.HexToAddress(c.WalletAddress)
}

// StoreConfig configures application state persistence.
type StoreConfig struct {
	Backend       string `mapstructure:"backend"`
	Path          string `mapstructure:"path"`
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
	RedisKey      string `mapstructure:"redis_key"`
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	TraceProvider  string `mapstructure:"trace_provider"`
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	OTLPHeaders    string `mapstructure:"otlp_headers"`
	PrometheusPort int    `mapstructure:"prometheus_port"`
}

// HealthConfig configures the health probe server.
type HealthConfig struct {
	Port int `mapstructure:"port"`
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables
	v.SetEnvPrefix("SENTINEL")
	v.AutomaticEnv()

	bindEnvVars(v)
	setDefaults(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	// App
	v.BindEnv("app.name", "SENTINEL_APP_NAME", "SERVICE_NAME")
	v.BindEnv("app.environment", "SENTINEL_ENVIRONMENT", "ENVIRONMENT")
	v.BindEnv("app.log_level", "SENTINEL_LOG_LEVEL", "LOG_LEVEL")

	// Market
	v.BindEnv("market.api_url", "SENTINEL_API_URL", "API_URL")
	v.BindEnv("market.watchlist", "SENTINEL_WATCHLIST")
	v.BindEnv("market.min_spread_percent", "SENTINEL_MIN_SPREAD_PERCENT")
	v.BindEnv("market.use_stream", "SENTINEL_USE_STREAM")

	// Feed
	v.BindEnv("feed.port", "SENTINEL_FEED_PORT", "PORT")
	v.BindEnv("feed.venues", "SENTINEL_FEED_VENUES", "CEX_VENUES")
	v.BindEnv("feed.binance_ws_url", "SENTINEL_BINANCE_WS_URL", "BINANCE_WS_URL")
	v.BindEnv("feed.eth_rpc_url", "SENTINEL_ETH_RPC_URL", "ETH_RPC_URL")
	v.BindEnv("feed.tts.enabled", "SENTINEL_TTS_ENABLED", "GOOGLE_TTS_ENABLED")
	v.BindEnv("feed.tts.language", "SENTINEL_TTS_LANGUAGE", "GOOGLE_TTS_LANGUAGE")
	v.BindEnv("feed.tts.voice", "SENTINEL_TTS_VOICE", "GOOGLE_TTS_VOICE")

	// Payment
	v.BindEnv("payment.gateway_url", "SENTINEL_GATEWAY_URL", "THRONOS_GATEWAY_URL")
	v.BindEnv("payment.chain_id", "SENTINEL_CHAIN_ID")
	v.BindEnv("payment.rpc_url", "SENTINEL_RPC_URL", "ETH_HTTP_URL")
	v.BindEnv("payment.gateway_address", "SENTINEL_GATEWAY_ADDRESS")
	v.BindEnv("payment.wallet_mode", "SENTINEL_WALLET_MODE")
	v.BindEnv("payment.wallet_address", "SENTINEL_WALLET_ADDRESS")

	// Store
	v.BindEnv("store.backend", "SENTINEL_STORE_BACKEND")
	v.BindEnv("store.path", "SENTINEL_STORE_PATH")
	v.BindEnv("store.redis_addr", "SENTINEL_REDIS_ADDR", "REDIS_ADDR")
	v.BindEnv("store.redis_password", "SENTINEL_REDIS_PASSWORD", "REDIS_PASSWORD")

	// Telemetry
	v.BindEnv("telemetry.enabled", "SENTINEL_OTEL_ENABLED", "OTEL_ENABLED")
	v.BindEnv("telemetry.service_name", "SENTINEL_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv("telemetry.otlp_endpoint", "SENTINEL_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "trader-sentinel")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	// Market defaults
	v.SetDefault("market.api_url", "https://trader-sentinel.onrender.com")
	v.SetDefault("market.watchlist", []string{"BTC/USDT", "ETH/USDT", "SOL/USDT"})
	v.SetDefault("market.poll_interval", "5s")
	v.SetDefault("market.request_timeout", "10s")
	v.SetDefault("market.min_spread_percent", 0.1)
	v.SetDefault("market.use_stream", false)
	v.SetDefault("market.stream_interval", "1s")

	// Feed defaults
	v.SetDefault("feed.port", 8000)
	v.SetDefault("feed.venues", []string{"binance", "bybit", "okx", "mexc", "dexscreener"})
	v.SetDefault("feed.binance_ws_url", "wss://stream.binance.com:9443")
	v.SetDefault("feed.binance_rest_url", "https://api.binance.com")
	v.SetDefault("feed.bybit_url", "https://api.bybit.com")
	v.SetDefault("feed.okx_url", "https://www.okx.com")
	v.SetDefault("feed.mexc_url", "https://api.mexc.com")
	v.SetDefault("feed.dexscreener_url", "https://api.dexscreener.com")
	v.SetDefault("feed.eth_rpc_url", "https://eth.llamarpc.com")
	v.SetDefault("feed.uniswap_quoter", "0x61fFE014bA17989E743c5F6cB21bF9697530B21e")
	v.SetDefault("feed.uniswap_fee_tiers", []int{500, 3000, 10000, 100})
	v.SetDefault("feed.venue_min_interval", "600ms")
	v.SetDefault("feed.venue_timeout", "5s")
	v.SetDefault("feed.stale_timeout", "5s")
	v.SetDefault("feed.snapshot_ttl", "250ms")
	v.SetDefault("feed.stream_default_interval", "1s")
	v.SetDefault("feed.stream_min_interval", "250ms")
	v.SetDefault("feed.stream_max_interval", "60s")
	v.SetDefault("feed.alert_spread_percent", 0.5)
	v.SetDefault("feed.tts.enabled", false)
	v.SetDefault("feed.tts.language", "en-US")
	v.SetDefault("feed.tts.voice", "en-US-Neural2-D")

	// Payment defaults
	v.SetDefault("payment.gateway_url", "https://gateway.thronos.io")
	v.SetDefault("payment.chain_id", 1)
	v.SetDefault("payment.rpc_url", "https://eth.llamarpc.com")
	v.SetDefault("payment.gateway_address", "0x0000000000000000000000000000000000000000")
	v.SetDefault("payment.wallet_mode", WalletSimulated)
	v.SetDefault("payment.receipt_poll_interval", "2s")
	v.SetDefault("payment.receipt_timeout", "3m")
	v.SetDefault("payment.request_timeout", "15s")
	v.SetDefault("payment.query_cache_ttl", "30s")

	// Store defaults
	v.SetDefault("store.backend", StoreFile)
	v.SetDefault("store.path", "trader-sentinel-state.json")
	v.SetDefault("store.redis_addr", "localhost:6379")
	v.SetDefault("store.redis_db", 0)
	v.SetDefault("store.redis_key", "trader-sentinel:state")

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "trader-sentinel")
	v.SetDefault("telemetry.trace_provider", "zipkin")
	v.SetDefault("telemetry.prometheus_port", 9090)

	// Health defaults
	v.SetDefault("health.port", 8081)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Market.APIURL == "" {
		return fmt.Errorf("market.api_url is required")
	}
	if c.Market.PollInterval <= 0 {
		return fmt.Errorf("market.poll_interval must be positive")
	}
	if c.Market.MinSpreadPercent < 0 {
		return fmt.Errorf("market.min_spread_percent cannot be negative")
	}
	if c.Feed.StreamMinInterval <= 0 || c.Feed.StreamMinInterval > c.Feed.StreamMaxInterval {
		return fmt.Errorf("feed stream interval bounds are invalid: %s..%s",
			c.Feed.StreamMinInterval, c.Feed.StreamMaxInterval)
	}
	if c.Feed.UniswapQuoter != "" && !common.IsHexAddress(c.Feed.UniswapQuoter) {
		return fmt.Errorf("invalid feed.uniswap_quoter: %s", c.Feed.UniswapQuoter)
	}
	if c.Feed.TTS.Enabled && (c.Feed.TTS.Language == "" || c.Feed.TTS.Voice == "") {
		return fmt.Errorf("feed.tts.language and feed.tts.voice are required when tts is enabled")
	}
	if !common.IsHexAddress(c.Payment.GatewayAddress) {
		return fmt.Errorf("invalid payment.gateway_address: %s", c.Payment.GatewayAddress)
	}
	switch c.Payment.WalletMode {
	case WalletSimulated:
	case WalletEthereum:
		if c.Payment.RPCURL == "" {
			return fmt.Errorf("payment.rpc_url is required in ethereum wallet mode")
		}
	default:
		return fmt.Errorf("invalid payment.wallet_mode: %s", c.Payment.WalletMode)
	}
	if c.Payment.WalletAddress != "" && !common.IsHexAddress(c.Payment.WalletAddress) {
		return fmt.Errorf("invalid payment.wallet_address: %s", c.Payment.WalletAddress)
	}
	switch c.Store.Backend {
	case StoreMemory, StoreFile, StoreRedis:
	default:
		return fmt.Errorf("invalid store.backend: %s", c.Store.Backend)
	}
	return nil
}
