package httpapi

import (
	"context"
	"io"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	marketDomain "github.com/fd1az/trader-sentinel/business/market/domain"
	"github.com/fd1az/trader-sentinel/internal/apperror"
)

type healthResponse struct {
	OK bool  `json:"ok"`
	TS int64 `json:"ts"`
}

type snapshotResponse struct {
	OK bool `json:"ok"`
	marketDomain.MarketSnapshot
}

type arbResponse struct {
	OK bool `json:"ok"`
	marketDomain.ArbitrageView
}

// Health handles GET /health.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, healthResponse{OK: true, TS: h.now().Unix()})
}

// Snapshot handles GET /api/market/snapshot.
func (h *Handler) Snapshot(c *gin.Context) {
	symbol, ok := h.requireSymbol(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.config.RequestTimeout)
	defer cancel()

	snap, err := h.service.Snapshot(ctx, symbol)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, snapshotResponse{OK: true, MarketSnapshot: snap})
}

// Arbitrage handles GET /api/market/arb.
func (h *Handler) Arbitrage(c *gin.Context) {
	symbol, ok := h.requireSymbol(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.config.RequestTimeout)
	defer cancel()

	view, err := h.service.Arbitrage(ctx, symbol)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, arbResponse{OK: true, ArbitrageView: view})
}

type alertsResponse struct {
	OK     bool                  `json:"ok"`
	Alerts []marketDomain.Signal `json:"alerts"`
}

// Alerts handles GET /api/market/alerts. An optional symbol narrows the list.
func (h *Handler) Alerts(c *gin.Context) {
	alerts := h.service.Alerts()
	if symbol := strings.TrimSpace(c.Query("symbol")); symbol != "" {
		alerts = slices.DeleteFunc(alerts, func(s marketDomain.Signal) bool {
			return !strings.EqualFold(s.Symbol, symbol)
		})
	}
	if alerts == nil {
		alerts = []marketDomain.Signal{}
	}
	c.JSON(http.StatusOK, alertsResponse{OK: true, Alerts: alerts})
}

// TTSDisabledError is reported by /api/tts when no synthesizer is configured.
const TTSDisabledError = "GOOGLE_TTS_ENABLED=false"

type ttsDisabledResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// Speech handles GET /api/tts, answering with audio/mpeg.
func (h *Handler) Speech(c *gin.Context) {
	text := strings.TrimSpace(c.Query("text"))
	if text == "" {
		h.respondError(c, http.StatusBadRequest, "text is required", nil)
		return
	}

	if h.speech == nil {
		c.JSON(http.StatusOK, ttsDisabledResponse{OK: false, Error: TTSDisabledError})
		return
	}

	language := c.DefaultQuery("lang", h.config.TTSLanguage)
	voice := c.DefaultQuery("voice", h.config.TTSVoice)

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.config.RequestTimeout)
	defer cancel()

	audio, err := h.speech.Synthesize(ctx, text, language, voice)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Data(http.StatusOK, "audio/mpeg", audio)
}

// Stream handles GET /api/market/stream, pushing a "snapshot" event every
// interval_ms until the client goes away.
func (h *Handler) Stream(c *gin.Context) {
	symbol, ok := h.requireSymbol(c)
	if !ok {
		return
	}

	interval, err := h.streamInterval(c.Query("interval_ms"))
	if err != nil {
		h.respondError(c, http.StatusBadRequest, apperror.Message(err), err)
		return
	}

	ctx := c.Request.Context()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	first := true
	c.Stream(func(_ io.Writer) bool {
		if !first {
			select {
			case <-ctx.Done():
				return false
			case <-ticker.C:
			}
		}
		first = false

		snap, err := h.snapshotWithTimeout(ctx, symbol)
		if err != nil {
			if ctx.Err() != nil {
				return false
			}
			h.logger.Warn(ctx, "stream snapshot failed",
				"request_id", c.GetString(RequestIDContextKey),
				"symbol", symbol,
				"error", err)
			return true
		}

		c.SSEvent("snapshot", snapshotResponse{OK: true, MarketSnapshot: snap})
		return true
	})
}

func (h *Handler) snapshotWithTimeout(ctx context.Context, symbol string) (marketDomain.MarketSnapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, h.config.RequestTimeout)
	defer cancel()
	return h.service.Snapshot(ctx, symbol)
}

// streamInterval parses interval_ms, clamping it to the configured bounds.
func (h *Handler) streamInterval(raw string) (time.Duration, error) {
	if raw == "" {
		return h.config.StreamDefaultInterval, nil
	}

	ms, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperror.New(apperror.CodeInvalidFormat,
			apperror.WithMessage("interval_ms must be an integer"))
	}

	d := time.Duration(ms) * time.Millisecond
	return min(max(d, h.config.StreamMinInterval), h.config.StreamMaxInterval), nil
}

func (h *Handler) requireSymbol(c *gin.Context) (string, bool) {
	symbol := strings.TrimSpace(c.Query("symbol"))
	if symbol == "" {
		h.respondError(c, http.StatusBadRequest, "symbol is required", nil)
		return "", false
	}
	return symbol, true
}

func (h *Handler) handleError(c *gin.Context, err error) {
	// Client mistakes keep their 4xx; everything else is an upstream failure.
	status := apperror.HTTPStatus(err)
	if status < 400 || status >= 500 {
		status = http.StatusBadGateway
	}
	h.respondError(c, status, apperror.Message(err), err)
}

func (h *Handler) respondError(c *gin.Context, status int, message string, err error) {
	args := []any{
		"request_id", c.GetString(RequestIDContextKey),
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status_code", status,
	}
	if err != nil {
		args = append(args, "error", err)
	}
	h.logger.Warn(c.Request.Context(), "API error", args...)

	c.JSON(status, gin.H{
		"error":      message,
		"request_id": c.GetString(RequestIDContextKey),
	})
}
