// Package httpclient is the venue and gateway HTTP client: one tracer span
// and one latency sample per request, JSON in and out.
package httpclient

import (
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Record selects request or response bodies to attach to spans as events.
type Record uint8

const (
	RecordRequestBody Record = 1 << iota
	RecordResponseBody
)

type clientConfig struct {
	name    string
	timeout time.Duration
	headers map[string]string
	baseURL string
	tracer  trace.Tracer
	record  Record
}

// ClientOption configures a Client.
type ClientOption func(*clientConfig)

// WithProviderName names the upstream in metrics and spans.
func WithProviderName(name string) ClientOption {
	return func(c *clientConfig) { c.name = name }
}

// WithRequestTimeout bounds each request. Zero disables the bound, for
// long-lived streams.
func WithRequestTimeout(timeout time.Duration) ClientOption {
	return func(c *clientConfig) { c.timeout = timeout }
}

// WithHeaders sets headers sent on every request.
func WithHeaders(headers map[string]string) ClientOption {
	return func(c *clientConfig) { c.headers = headers }
}

// WithBaseURL resolves relative request paths against url.
func WithBaseURL(url string) ClientOption {
	return func(c *clientConfig) { c.baseURL = url }
}

// WithTracer sets the tracer. record flags are OR'd together.
func WithTracer(tracer trace.Tracer, record ...Record) ClientOption {
	return func(c *clientConfig) {
		c.tracer = tracer
		for _, r := range record {
			c.record |= r
		}
	}
}

// ErrorHandler turns a response into an error, or nil when it succeeded.
// Without one, any status >= 400 yields a *StatusError.
type ErrorHandler func(statusCode int, body []byte) error

type requestConfig struct {
	onError ErrorHandler
	attrs   []attribute.KeyValue
}

// RequestOption configures a single request.
type RequestOption func(*requestConfig)

// WithErrorHandler classifies responses for this request.
func WithErrorHandler(h ErrorHandler) RequestOption {
	return func(c *requestConfig) { c.onError = h }
}

// WithAttributes adds metric attributes, such as the endpoint name, to
// this request.
func WithAttributes(attrs ...attribute.KeyValue) RequestOption {
	return func(c *requestConfig) { c.attrs = append(c.attrs, attrs...) }
}
