package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	neturl "net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Request builds and executes one HTTP request.
type Request interface {
	Get(ctx context.Context, url string) (*Response, error)
	Post(ctx context.Context, url string) (*Response, error)

	SetBody(body any) Request
	SetHeader(key, value string) Request
	SetQueryParam(key, value string) Request
	SetQueryParams(params map[string]string) Request
	SetResult(result any) Request
}

// StatusError is returned for status >= 400 when the request has no
// ErrorHandler.
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(string(e.Body))
	if body == "" {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, body)
}

// Response wraps http.Response with the buffered body.
type Response struct {
	*http.Response
	body      []byte
	result    any
	decodeErr error
}

// Body returns the response body as bytes.
func (r *Response) Body() []byte {
	return r.body
}

// IsError returns true if the status code indicates an error (>= 400).
func (r *Response) IsError() bool {
	return r.StatusCode >= 400
}

// Result returns the decoded result, or nil when nothing was set or the body
// did not decode.
func (r *Response) Result() any {
	return r.result
}

// DecodeError returns why the body did not decode into the result.
func (r *Response) DecodeError() error {
	return r.decodeErr
}

type requestBuilder struct {
	c            *InstrumentedClient
	headers      map[string]string
	query        neturl.Values
	body         any
	result       any
	errorHandler ErrorHandler
	attrs        []attribute.KeyValue
}

// Get executes a GET request.
func (r *requestBuilder) Get(ctx context.Context, url string) (*Response, error) {
	return r.execute(ctx, http.MethodGet, url)
}

// Post executes a POST request.
func (r *requestBuilder) Post(ctx context.Context, url string) (*Response, error) {
	return r.execute(ctx, http.MethodPost, url)
}

// SetBody sets the request body. Values other than []byte, string and
// io.Reader are JSON encoded.
func (r *requestBuilder) SetBody(body any) Request {
	r.body = body
	return r
}

func (r *requestBuilder) SetHeader(key, value string) Request {
	r.headers[key] = value
	return r
}

func (r *requestBuilder) SetQueryParam(key, value string) Request {
	if r.query == nil {
		r.query = neturl.Values{}
	}
	r.query.Set(key, value)
	return r
}

func (r *requestBuilder) SetQueryParams(params map[string]string) Request {
	for k, v := range params {
		r.SetQueryParam(k, v)
	}
	return r
}

// SetResult sets the value the JSON body decodes into.
func (r *requestBuilder) SetResult(result any) Request {
	r.result = result
	return r
}

// resolve joins url onto the base URL and merges the query parameters.
func (r *requestBuilder) resolve(url string) (string, error) {
	full := url
	if base := r.c.baseURL; base != "" && !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		full = strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(url, "/")
	}
	if len(r.query) == 0 {
		return full, nil
	}

	u, err := neturl.Parse(full)
	if err != nil {
		return "", err
	}
	q := u.Query()
	for k, vs := range r.query {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (r *requestBuilder) encodeBody(span trace.Span) (io.Reader, error) {
	switch b := r.body.(type) {
	case nil:
		return nil, nil
	case []byte:
		r.recordRequestBody(span, string(b))
		return bytes.NewReader(b), nil
	case string:
		r.recordRequestBody(span, b)
		return strings.NewReader(b), nil
	case io.Reader:
		return b, nil
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		if _, ok := r.headers["Content-Type"]; !ok {
			r.headers["Content-Type"] = "application/json"
		}
		r.recordRequestBody(span, string(raw))
		return bytes.NewReader(raw), nil
	}
}

func (r *requestBuilder) recordRequestBody(span trace.Span, body string) {
	if r.c.record&RecordRequestBody != 0 {
		span.AddEvent("request.body", trace.WithAttributes(
			attribute.String("http.request_body", body),
		))
	}
}

// execute performs the HTTP request with instrumentation.
func (r *requestBuilder) execute(ctx context.Context, method, url string) (*Response, error) {
	ctx, span := r.c.tracer.Start(ctx, "http.request",
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.url", url),
			attribute.String("provider", r.c.providerName),
		),
	)
	defer span.End()

	start := time.Now()

	fullURL, err := r.resolve(url)
	if err != nil {
		return nil, r.fail(span, "invalid url", fmt.Errorf("build url: %w", err))
	}

	body, err := r.encodeBody(span)
	if err != nil {
		return nil, r.fail(span, "invalid body", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return nil, r.fail(span, "failed to create request", fmt.Errorf("create request: %w", err))
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}

	resp, err := r.c.client.Do(req)
	if err != nil {
		r.recordTransportError(span, err)
		r.record(ctx, start, 0, false)
		return nil, err
	}

	raw, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		r.record(ctx, start, resp.StatusCode, false)
		return nil, r.fail(span, "failed to read body", fmt.Errorf("read response body: %w", err))
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if r.c.record&RecordResponseBody != 0 {
		span.AddEvent("response.body", trace.WithAttributes(
			attribute.String("http.response_body", string(raw)),
		))
	}

	response := &Response{Response: resp, body: raw}

	// Decode failures surface through Result() == nil, not as errors
	if r.result != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, r.result); err != nil {
			span.RecordError(err)
			response.decodeErr = err
		} else {
			response.result = r.result
		}
	}

	handlerErr := r.checkStatus(resp.StatusCode, raw)
	r.record(ctx, start, resp.StatusCode, handlerErr == nil)
	if handlerErr != nil {
		span.SetStatus(codes.Error, handlerErr.Error())
		return response, handlerErr
	}

	return response, nil
}

func (r *requestBuilder) checkStatus(status int, body []byte) error {
	if r.errorHandler != nil {
		return r.errorHandler(status, body)
	}
	if status >= 400 {
		return &StatusError{StatusCode: status, Body: body}
	}
	return nil
}

func (r *requestBuilder) fail(span trace.Span, status string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, status)
	return err
}

func (r *requestBuilder) recordTransportError(span trace.Span, err error) {
	span.RecordError(err)

	var netErr net.Error
	if errors.Is(err, context.Canceled) {
		span.SetAttributes(attribute.Bool("context.cancelled", true))
	}
	if errors.As(err, &netErr) && netErr.Timeout() {
		span.SetAttributes(attribute.Bool("request.timeout", true))
	}

	span.SetStatus(codes.Error, err.Error())
}

// record adds the request to the counter and latency histogram.
func (r *requestBuilder) record(ctx context.Context, start time.Time, status int, success bool) {
	attrs := append([]attribute.KeyValue{
		attribute.String("provider", r.c.providerName),
		attribute.Bool("success", success),
		attribute.Int("status_code", status),
	}, r.attrs...)

	opt := metric.WithAttributes(attrs...)
	r.c.metrics.requests.Add(ctx, 1, opt)
	r.c.metrics.duration.Record(ctx, float64(time.Since(start).Milliseconds()), opt)
}
