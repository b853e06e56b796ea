package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/alghazaly/partsync/internal/core/domain"
	"github.com/alghazaly/partsync/internal/core/ports/driven"
	"github.com/alghazaly/partsync/internal/logger"
)

// Ensure Client implements the remote ports.
var (
	_ driven.CartAPI           = (*Client)(nil)
	_ driven.OrderAPI          = (*Client)(nil)
	_ driven.FavoriteAPI       = (*Client)(nil)
	_ driven.RequestDoer       = (*Client)(nil)
	_ driven.CollectionFetcher = (*Client)(nil)
	_ driven.ConnectivityProbe = (*Client)(nil)
)

// Default configuration values.
const (
	DefaultBaseURL = "http://localhost:8001/api"
	DefaultTimeout = 30 * time.Second
)

// maxErrorBody bounds how much of an error response ends up in messages.
const maxErrorBody = 512

// Config holds configuration for the REST client.
type Config struct {
	// BaseURL is the API root (default: http://localhost:8001/api).
	BaseURL string

	// Timeout bounds a whole request including the body (default: 30s).
	Timeout time.Duration

	// RateLimit paces outgoing requests.
	RateLimit RateLimitConfig
}

// Client talks to the storefront REST API.
type Client struct {
	http    *http.Client
	baseURL string
	limiter *RateLimiter
	log     *logger.Logger
}

// NewClient creates a client. The actor store supplies the bearer token per request.
func NewClient(cfg Config, actors driven.ActorStore) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Client{
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: &actorTransport{actors: actors, base: http.DefaultTransport},
		},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		limiter: NewRateLimiter(cfg.RateLimit),
		log:     logger.With("remote"),
	}
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// envelope is the optional {"data": ...} wrapper around responses.
type envelope struct {
	Data json.RawMessage `json:"data"`
}

// errorBody collects the message fields the server uses for errors.
type errorBody struct {
	Detail  json.RawMessage `json:"detail"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

// do sends one request and returns the unwrapped response body.
func (c *Client) do(
	ctx context.Context,
	method, path string,
	query url.Values,
	payload json.RawMessage,
	opts driven.CallOptions,
) (json.RawMessage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	endpoint := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader = http.NoBody
	if len(payload) > 0 && method != http.MethodGet {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != http.NoBody {
		req.Header.Set("Content-Type", "application/json")
	}
	if opts.IdempotencyKey != "" {
		req.Header.Set("Idempotency-Key", opts.IdempotencyKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: read response: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.statusError(method, path, resp, raw)
	}

	c.log.Debug("%s %s -> %d", method, path, resp.StatusCode)
	return unwrap(raw), nil
}

// statusError maps a non-2xx response to a domain error.
func (c *Client) statusError(method, path string, resp *http.Response, raw []byte) error {
	msg := errorMessage(raw)

	var kind error
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		kind = domain.ErrUnauthorized
	case http.StatusTooManyRequests:
		kind = domain.ErrRateLimited
		c.limiter.RecordRateLimitError(retryAfter(resp.Header.Get("Retry-After")))
	default:
		kind = domain.ErrRemote
	}

	if msg == "" {
		return fmt.Errorf("%s %s: status %d: %w", method, path, resp.StatusCode, kind)
	}
	return fmt.Errorf("%s %s: status %d: %s: %w", method, path, resp.StatusCode, msg, kind)
}

// unwrap strips a {"data": ...} envelope when present.
func unwrap(raw []byte) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil
	}
	if trimmed[0] == '{' {
		var env envelope
		if err := json.Unmarshal(trimmed, &env); err == nil && len(env.Data) > 0 {
			return env.Data
		}
	}
	return json.RawMessage(trimmed)
}

// errorMessage extracts a readable message from an error body.
func errorMessage(raw []byte) string {
	var body errorBody
	if err := json.Unmarshal(raw, &body); err == nil {
		if len(body.Detail) > 0 {
			var s string
			if json.Unmarshal(body.Detail, &s) == nil {
				return s
			}
			return string(body.Detail)
		}
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}

	text := strings.TrimSpace(string(raw))
	if len(text) > maxErrorBody {
		text = text[:maxErrorBody]
	}
	return text
}

// retryAfter parses a Retry-After header given in seconds or as an HTTP date.
func retryAfter(value string) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(value); err == nil {
		return time.Until(t)
	}
	return 0
}
