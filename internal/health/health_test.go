package health

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fd1az/trader-sentinel/internal/logger"
)

func newTestServer() *Server {
	return NewServer(0, "v1.2.3", logger.New(io.Discard, logger.LevelError, "test", nil))
}

func serve(s *Server, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealth_AllHealthy(t *testing.T) {
	s := newTestServer()
	s.RegisterCheck("store", func(context.Context) error { return nil })

	rec := serve(s, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var report Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, StatusOK, report.Status)
	assert.Equal(t, "v1.2.3", report.Version)
	assert.True(t, report.Checks["store"].Healthy)
	assert.Equal(t, "up", report.Checks["store"].Message)

	rec = serve(s, "/ready")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ready", rec.Body.String())
}

func TestHealth_Degraded(t *testing.T) {
	s := newTestServer()
	s.RegisterCheck("store", func(context.Context) error { return nil })
	s.RegisterCheck("market_api", func(context.Context) error { return errors.New("timeout") })

	rec := serve(s, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var report Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, StatusDegraded, report.Status)
	assert.Equal(t, Check{Healthy: false, Message: "timeout", Latency: report.Checks["market_api"].Latency}, report.Checks["market_api"])

	rec = serve(s, "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "not ready", rec.Body.String())

	rec = serve(s, "/live")
	assert.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, []string{"market_api", "store"}, s.Names())
}

func TestRun_ChecksRunConcurrently(t *testing.T) {
	s := newTestServer()
	slow := func(context.Context) error {
		time.Sleep(200 * time.Millisecond)
		return nil
	}
	for _, name := range []string{"a", "b", "c", "d"} {
		s.RegisterCheck(name, slow)
	}

	start := time.Now()
	report := s.Run(context.Background())
	assert.Less(t, time.Since(start), 700*time.Millisecond)
	assert.Len(t, report.Checks, 4)
}

func TestServer_StartStop(t *testing.T) {
	s := newTestServer()
	s.RegisterCheck("store", func(context.Context) error { return nil })

	assert.Empty(t, s.Addr())
	require.NoError(t, s.Start())
	defer s.Stop(context.Background())

	resp, err := http.Get("http://127.0.0.1:" + port(t, s) + "/live")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "alive", string(body))

	require.NoError(t, s.Stop(context.Background()))
}

func TestServer_StartBindError(t *testing.T) {
	first := newTestServer()
	require.NoError(t, first.Start())
	defer first.Stop(context.Background())

	n, err := strconv.Atoi(port(t, first))
	require.NoError(t, err)

	second := NewServer(n, "", logger.New(io.Discard, logger.LevelError, "test", nil))
	assert.Error(t, second.Start())
}

func port(t *testing.T, s *Server) string {
	t.Helper()
	_, p, err := net.SplitHostPort(s.Addr())
	require.NoError(t, err)
	return p
}
