// Package httpapi serves the market data backend over HTTP.
package httpapi

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	marketDomain "github.com/fd1az/trader-sentinel/business/market/domain"
	"github.com/fd1az/trader-sentinel/internal/logger"
)

const (
	DefaultRequestTimeout = 30 * time.Second

	DefaultStreamInterval = time.Second
	MinStreamInterval     = 250 * time.Millisecond
	MaxStreamInterval     = 60 * time.Second

	RequestIDContextKey = "request_id"
	RequestIDHeaderKey  = "X-Request-ID"

	DefaultTTSLanguage = "en-US"
	DefaultTTSVoice    = "en-US-Neural2-D"
)

// MarketService is the aggregation surface served by the API.
type MarketService interface {
	Snapshot(ctx context.Context, symbol string) (marketDomain.MarketSnapshot, error)
	Arbitrage(ctx context.Context, symbol string) (marketDomain.ArbitrageView, error)
	// Alerts returns the retained spread alerts, most recent first.
	Alerts() []marketDomain.Signal
}

// SpeechSynthesizer renders text as MP3 audio.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text, language, voice string) ([]byte, error)
}

// Config holds API settings.
type Config struct {
	RequestTimeout        time.Duration
	StreamDefaultInterval time.Duration
	StreamMinInterval     time.Duration
	StreamMaxInterval     time.Duration
	// TTSLanguage and TTSVoice apply when /api/tts omits lang or voice.
	TTSLanguage string
	TTSVoice    string
}

func (c *Config) applyDefaults() {
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
	if c.StreamMinInterval <= 0 {
		c.StreamMinInterval = MinStreamInterval
	}
	if c.StreamMaxInterval <= 0 {
		c.StreamMaxInterval = MaxStreamInterval
	}
	if c.StreamDefaultInterval <= 0 {
		c.StreamDefaultInterval = DefaultStreamInterval
	}
	if c.TTSLanguage == "" {
		c.TTSLanguage = DefaultTTSLanguage
	}
	if c.TTSVoice == "" {
		c.TTSVoice = DefaultTTSVoice
	}
}

// Handler handles the market data endpoints.
type Handler struct {
	service MarketService
	speech  SpeechSynthesizer
	config  Config
	logger  logger.LoggerInterface
	now     func() time.Time
}

// Option configures a Handler.
type Option func(*Handler)

// WithSpeech enables /api/tts. Without it the endpoint reports that
// text-to-speech is disabled.
func WithSpeech(s SpeechSynthesizer) Option {
	return func(h *Handler) {
		h.speech = s
	}
}

// NewHandler creates a Handler.
func NewHandler(service MarketService, cfg Config, log logger.LoggerInterface, opts ...Option) *Handler {
	cfg.applyDefaults()
	h := &Handler{
		service: service,
		config:  cfg,
		logger:  log,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Router builds the gin engine with every route and middleware.
func (h *Handler) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(requestIDMiddleware())
	router.Use(h.loggerMiddleware())
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	router.GET("/health", h.Health)

	market := router.Group("/api/market")
	market.GET("/snapshot", h.Snapshot)
	market.GET("/arb", h.Arbitrage)
	market.GET("/stream", h.Stream)
	market.GET("/alerts", h.Alerts)

	router.GET("/api/tts", h.Speech)

	return router
}
