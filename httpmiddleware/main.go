package httpmiddleware

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// Responses larger than this are rejected rather than buffered.
const maxResponseBytes = 16 << 20

var ErrUnexpectedStatus = errors.New("unexpected status code")

var defaultClient = &http.Client{
	Transport: otelhttp.NewTransport(http.DefaultTransport),
}

type HttpRequestStruct struct {
	Method  string
	Url     string
	Body    io.Reader
	Headers map[string]string
	// Zero means no timeout beyond the caller's context.
	Timeout time.Duration
	Client  *http.Client
}

// StatusError carries a non-2xx upstream response.
type StatusError struct {
	StatusCode int
	Status     string
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream responded %s", e.Status)
}

func (e *StatusError) Unwrap() error {
	return ErrUnexpectedStatus
}

// HttpRequest performs a single request and returns the response body when
// the upstream answers 2xx.
func HttpRequest(ctx context.Context, args HttpRequestStruct) ([]byte, error) {
	tracer := otel.Tracer("httpmiddleware/HttpRequest")
	ctx, span := tracer.Start(ctx, "HttpRequest")
	defer span.End()

	span.SetAttributes(
		attribute.String("http.method", args.Method),
		attribute.String("http.url", args.Url),
		attribute.Int64("http.timeout_ms", args.Timeout.Milliseconds()),
	)

	if args.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, args.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, args.Method, args.Url, args.Body)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("could not build request: %w", err)
	}
	for key, value := range args.Headers {
		req.Header.Set(key, value)
	}

	client := args.Client
	if client == nil {
		client = defaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("request to %s failed: %w", args.Url, err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("could not read response body: %w", err)
	}
	if len(body) > maxResponseBytes {
		return nil, fmt.Errorf("response from %s exceeds %d bytes", args.Url, maxResponseBytes)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := &StatusError{StatusCode: resp.StatusCode, Status: resp.Status, Body: body}
		span.RecordError(statusErr)
		return nil, statusErr
	}

	return body, nil
}
