// Package bootstrap holds the process setup shared by the binaries.
package bootstrap

import (
	"context"
	"io"
	"strconv"

	"github.com/fd1az/trader-sentinel/internal/apm"
	"github.com/fd1az/trader-sentinel/internal/config"
	"github.com/fd1az/trader-sentinel/internal/logger"
	"github.com/fd1az/trader-sentinel/internal/metrics"
)

const defaultPrometheusPort = 9090

// LogLevel maps the configured log level name to a logger.Level.
func LogLevel(name string) logger.Level {
	switch name {
	case "debug":
		return logger.LevelDebug
	case "warn":
		return logger.LevelWarn
	case "error":
		return logger.LevelError
	default:
		return logger.LevelInfo
	}
}

// NewLogger builds the application logger writing to w.
func NewLogger(w io.Writer, cfg *config.Config) *logger.Logger {
	return logger.New(w, LogLevel(cfg.App.LogLevel), cfg.App.Name, apm.TraceID)
}

// StartTelemetry installs the trace and metric providers when telemetry is
// enabled and serves Prometheus metrics in the background. The returned
// func flushes the tracer.
func StartTelemetry(ctx context.Context, cfg config.TelemetryConfig, log logger.LoggerInterface) func() {
	if !cfg.Enabled {
		return func() {}
	}

	provider := apm.ParseProvider(cfg.TraceProvider)
	traceProvider, err := apm.NewTraceProvider(apm.Config{
		Provider:    provider,
		ServiceName: cfg.ServiceName,
		Endpoint:    cfg.OTLPEndpoint,
		Headers:     cfg.OTLPHeaders,
	}, log)
	if err != nil {
		log.Warn(ctx, "tracing disabled", "provider", provider, "error", err)
		traceProvider, _ = apm.NewTraceProvider(apm.Config{Provider: apm.EmptyProvider}, log)
	} else {
		log.Info(ctx, "tracing initialized", "provider", provider, "endpoint", cfg.OTLPEndpoint)
	}

	metricOpts := []metrics.OptionFn{
		metrics.WithServiceName(cfg.ServiceName),
		metrics.WithProviderConfig(metrics.ProviderCfg{Provider: metrics.PrometheusProvider}),
	}
	if provider == apm.HoneycombProvider {
		if headers, err := apm.ParseHeaders(cfg.OTLPHeaders); err == nil {
			metricOpts = append(metricOpts, metrics.WithProviderConfig(
				metrics.NewHoneycombConfig(cfg.OTLPEndpoint, headers, cfg.ServiceName)))
		}
	}

	meterProvider, err := metrics.NewMetricProvider(metricOpts...)
	if err != nil {
		log.Warn(ctx, "metrics disabled", "error", err)
	} else {
		port := cfg.PrometheusPort
		if port == 0 {
			port = defaultPrometheusPort
		}
		go func() {
			if err := metrics.ServePrometheusMetrics(ctx, metrics.WithPort(strconv.Itoa(port))); err != nil {
				log.Warn(ctx, "prometheus metrics server stopped", "error", err)
			}
		}()
		log.Info(ctx, "prometheus metrics server started", "port", port)
	}

	return func() {
		if err := traceProvider.Stop(); err != nil {
			log.Warn(ctx, "failed to stop trace provider", "error", err)
		}
		if meterProvider != nil {
			if err := meterProvider.Shutdown(context.WithoutCancel(ctx)); err != nil {
				log.Warn(ctx, "failed to stop meter provider", "error", err)
			}
		}
	}
}
