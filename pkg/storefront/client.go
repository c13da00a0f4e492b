package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/jewelry-miniapp/pkg/errors"
	"github.com/angelmondragon/jewelry-miniapp/pkg/logger"
	"github.com/angelmondragon/jewelry-miniapp/pkg/types"
	"github.com/google/uuid"
)

const (
	DefaultBaseURL = "http://localhost:8000/api"

	// InitDataHeader carries the Telegram WebApp launch payload.
	InitDataHeader  = "X-Telegram-Init-Data"
	requestIDHeader = "X-Request-Id"

	errorBodyReadLimit int64 = 2048
	defaultTimeout           = 10 * time.Second
)

// Client talks to the jewelry storefront REST backend.
type Client struct {
	httpClient *http.Client
	baseURL    string
	initData   func() string
	logg       *logger.Logger
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the configured backend base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithInitData attaches a fixed Telegram init-data payload to every request.
func WithInitData(initData string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(initData)
		c.initData = func() string { return trimmed }
	}
}

// WithInitDataSource resolves the init-data payload per request, for hosts that
// receive it after the client is built.
func WithInitDataSource(fn func() string) Option {
	return func(c *Client) {
		if fn != nil {
			c.initData = fn
		}
	}
}

// WithLogger enables request logging.
func WithLogger(logg *logger.Logger) Option {
	return func(c *Client) {
		if logg != nil {
			c.logg = logg
		}
	}
}

// NewClient builds a storefront client. An empty base URL falls back to DefaultBaseURL.
func NewClient(opts ...Option) (*Client, error) {
	client := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		initData:   func() string { return "" },
		logg:       logger.Nop(),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	parsed, err := url.Parse(client.baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("storefront base url must be absolute, got %q", client.baseURL)
	}

	return client, nil
}

// do executes one JSON request. out may be nil for endpoints whose body is ignored.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "storefront client not configured")
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal storefront request")
		}
		reader = bytes.NewReader(payload)
	}

	endpoint := c.buildURL(path)
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build storefront request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if initData := c.initData(); initData != "" {
		req.Header.Set(InitDataHeader, initData)
	}
	requestID := uuid.NewString()
	req.Header.Set(requestIDHeader, requestID)

	ctx = c.logg.WithFields(ctx, map[string]any{
		"upstream_request_id": requestID,
		"method":              method,
		"path":                path,
	})

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		code := pkgerrors.CodeDependency
		if errors.Is(err, context.DeadlineExceeded) {
			code = pkgerrors.CodeTimeout
		}
		c.logg.WarnErr(ctx, "storefront request failed", err)
		return pkgerrors.Wrap(code, err, "execute storefront request")
	}
	defer func() { _ = resp.Body.Close() }()

	ctx = c.logg.WithFields(ctx, map[string]any{
		"status":      resp.StatusCode,
		"duration_ms": time.Since(started).Milliseconds(),
	})

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
		if resp.StatusCode == http.StatusUnauthorized {
			c.logg.Warn(ctx, "storefront authentication error")
		} else {
			c.logg.Warn(ctx, "storefront request rejected")
		}
		return pkgerrors.Wrap(
			pkgerrors.CodeForStatus(resp.StatusCode),
			fmt.Errorf("status %d: %s", resp.StatusCode, upstreamMessage(msg)),
			"storefront request failed",
		).WithDetails(map[string]any{"status": resp.StatusCode, "path": path})
	}

	c.logg.Debug(ctx, "storefront request completed")

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode storefront response")
	}
	return nil
}

// upstreamMessage pulls the human message out of the backend's error bodies:
// {"error": "..."}, {"detail": "..."} or a raw body.
func upstreamMessage(body []byte) string {
	var parsed types.BackendError
	if err := json.Unmarshal(body, &parsed); err == nil {
		if msg := parsed.Text(); msg != "" {
			return msg
		}
	}
	return strings.TrimSpace(string(body))
}

// decodeList accepts either a bare JSON array or a paginated envelope.
func decodeList[T any](raw json.RawMessage) ([]T, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []T{}, nil
	}
	if trimmed[0] == '[' {
		var list []T
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, err
		}
		return list, nil
	}
	var page struct {
		Results []T `json:"results"`
	}
	if err := json.Unmarshal(trimmed, &page); err != nil {
		return nil, err
	}
	if page.Results == nil {
		return []T{}, nil
	}
	return page.Results, nil
}

func (c *Client) buildURL(path string) string {
	trimmed := strings.TrimRight(c.baseURL, "/")
	path = strings.TrimLeft(path, "/")
	return fmt.Sprintf("%s/%s", trimmed, path)
}
