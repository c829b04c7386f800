package sentinelapi

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"strconv"
	"strings"
	"time"

	"github.com/fd1az/trader-sentinel/business/market/domain"
	"github.com/fd1az/trader-sentinel/internal/apperror"
)

const snapshotEvent = "snapshot"

// Stream implements app.SnapshotStreamer over server-sent events. Payloads
// that fail to decode are logged and dropped. The channel closes when the
// server ends the stream or ctx is done.
func (c *Client) Stream(ctx context.Context, symbol string, interval time.Duration) (<-chan domain.MarketSnapshot, error) {
	params := neturl.Values{}
	params.Set("symbol", symbol)
	params.Set("interval_ms", strconv.FormatInt(interval.Milliseconds(), 10))
	url := strings.TrimSuffix(c.baseURL, "/") + streamPath + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperror.New(apperror.CodeStreamConnectionError, apperror.WithCause(err))
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.stream.Do(ctx, req)
	if err != nil {
		return nil, apperror.New(apperror.CodeStreamConnectionError,
			apperror.WithCause(err),
			apperror.WithContext(symbol))
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, apperror.New(apperror.CodeStreamConnectionError,
			apperror.WithCause(fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))),
			apperror.WithContext(symbol))
	}

	out := make(chan domain.MarketSnapshot, 1)
	go func() {
		defer close(out)
		defer resp.Body.Close()
		c.readEvents(ctx, resp.Body, symbol, out)
	}()

	return out, nil
}

func (c *Client) readEvents(ctx context.Context, r io.Reader, symbol string, out chan<- domain.MarketSnapshot) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var (
		event string
		data  strings.Builder
	)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			if data.Len() > 0 && (event == "" || event == snapshotEvent) {
				c.dispatch(ctx, symbol, data.String(), out)
			}
			event = ""
			data.Reset()
		case strings.HasPrefix(line, ":"):
			// comment / keep-alive
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		c.logger.Warn(ctx, "market stream ended", "symbol", symbol, "error", err)
	}
}

func (c *Client) dispatch(ctx context.Context, symbol, payload string, out chan<- domain.MarketSnapshot) {
	var snapshot domain.MarketSnapshot
	if err := json.Unmarshal([]byte(payload), &snapshot); err != nil {
		c.logger.Warn(ctx, "dropping malformed stream payload",
			"symbol", symbol,
			"code", apperror.CodeMalformedResponse,
			"error", err)
		return
	}
	if snapshot.Symbol == "" {
		snapshot.Symbol = symbol
	}

	select {
	case out <- snapshot:
	case <-ctx.Done():
	}
}
