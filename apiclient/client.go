// Package apiclient is the dashboard's view of the REST API: cached reads
// keyed by resource and filter, and mutations that invalidate those keys.
package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sittawut/coverage-admin/validation"
	"go.uber.org/zap"
)

// APIError is a non-2xx response from the API.
type APIError struct {
	Status  int
	Message string
	Details json.RawMessage
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Issues decodes Details as validation issues. It returns nil when the error
// did not come from payload validation.
func (e *APIError) Issues() []validation.Issue {
	if len(e.Details) == 0 {
		return nil
	}
	var issues []validation.Issue
	if err := json.Unmarshal(e.Details, &issues); err != nil {
		return nil
	}
	return issues
}

type errorBody struct {
	Error   string          `json:"error"`
	Details json.RawMessage `json:"details"`
}

type Client struct {
	httpClient *resty.Client
	cache      *QueryCache
	logger     *zap.Logger
}

type Option func(*Client)

func WithToken(token string) Option {
	return func(c *Client) { c.SetToken(token) }
}

func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) { c.cache = NewQueryCache(ttl) }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.SetTimeout(d) }
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

func New(baseURL string, opts ...Option) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(15*time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	c := &Client{
		httpClient: httpClient,
		cache:      NewQueryCache(30 * time.Second),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Cache() *QueryCache { return c.cache }

// SetToken sets the bearer token sent with every request. An empty token
// sends none.
func (c *Client) SetToken(token string) {
	c.httpClient.SetAuthToken(token)
}

func (c *Client) do(ctx context.Context, method, path string, params map[string]string, body, out any) error {
	req := c.httpClient.R().SetContext(ctx)
	if len(params) > 0 {
		req.SetQueryParams(params)
	}
	if body != nil {
		req.SetBody(body)
	}
	if out != nil {
		req.SetResult(out)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		c.logger.Error("API call failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.IsError() {
		apiErr := &APIError{Status: resp.StatusCode(), Message: http.StatusText(resp.StatusCode())}
		var eb errorBody
		if json.Unmarshal(resp.Body(), &eb) == nil && eb.Error != "" {
			apiErr.Message = eb.Error
			apiErr.Details = eb.Details
		}
		c.logger.Warn("API returned error",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", apiErr.Status),
			zap.String("msg", apiErr.Message),
		)
		return apiErr
	}
	return nil
}

// query reads path through the cache under key.
func query[T any](ctx context.Context, c *Client, key, path string, params map[string]string) (T, error) {
	v, err := c.cache.Fetch(ctx, key, func(ctx context.Context) (any, error) {
		var out T
		if err := c.do(ctx, http.MethodGet, path, params, nil, &out); err != nil {
			return nil, err
		}
		return out, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// mutate sends a write and invalidates keys on success.
func mutate[T any](ctx context.Context, c *Client, method, path string, params map[string]string, body any, invalidate ...string) (T, error) {
	var out T
	if err := c.do(ctx, method, path, params, body, &out); err != nil {
		return out, err
	}
	for _, key := range invalidate {
		c.cache.Invalidate(key)
	}
	return out, nil
}
