// Package shopify talks to the Shopify Admin API on behalf of one shop.
package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"section-hub/internal/model"
)

const (
	// DefaultAPIVersion is the Admin API version requests are pinned to.
	DefaultAPIVersion = "2024-10"

	headerAccessToken = "X-Shopify-Access-Token"
	maxResponseBytes  = 1 << 20
)

// Config holds the shop connection settings.
type Config struct {
	Shop        string        // myshop.myshopify.com
	AccessToken string        // offline Admin API token
	APIVersion  string        // defaults to DefaultAPIVersion
	BaseURL     string        // overrides https://<Shop>, used by tests and proxies
	Timeout     time.Duration // per request, when no http.Client is supplied
}

// Client is a minimal Admin API client: one GraphQL endpoint plus the REST asset endpoint.
type Client struct {
	baseURL    string
	token      string
	apiVersion string
	http       *http.Client
	logger     *slog.Logger
}

// NewClient creates a new Client. httpClient may be nil.
func NewClient(cfg Config, httpClient *http.Client, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		if cfg.Shop == "" {
			return nil, errors.New("shopify: shop domain is not configured")
		}
		baseURL = "https://" + cfg.Shop
	}
	apiVersion := cfg.APIVersion
	if apiVersion == "" {
		apiVersion = DefaultAPIVersion
	}
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:    baseURL,
		token:      cfg.AccessToken,
		apiVersion: apiVersion,
		http:       httpClient,
		logger:     logger,
	}, nil
}

func (c *Client) adminURL(path string) string {
	return c.baseURL + "/admin/api/" + c.apiVersion + path
}

// StatusError is a non-2xx answer from the Admin API.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("shopify: unexpected status %d", e.StatusCode)
}

// do sends a JSON request and returns the raw response body.
// Non-2xx responses return a *StatusError carrying the body.
func (c *Client) do(ctx context.Context, method, url string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(headerAccessToken, c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, url, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return respBody, &StatusError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}
	return respBody, nil
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLError struct {
	Message string `json:"message"`
}

// GraphQL posts a query and decodes the whole response into out.
func (c *Client) GraphQL(ctx context.Context, query string, variables map[string]any, out any) error {
	respBody, err := c.do(ctx, http.MethodPost, c.adminURL("/graphql.json"), graphQLRequest{
		Query:     query,
		Variables: variables,
	})
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) {
			c.logger.Error("GraphQL request failed", "status", se.StatusCode, "body", se.Body)
		}
		return err
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to decode GraphQL response: %w", err)
	}
	return nil
}

const themesQuery = `query {
  themes(first: 10) {
    nodes {
      id
      name
      role
    }
  }
}`

type themesResponse struct {
	Data struct {
		Themes struct {
			Nodes []model.Theme `json:"nodes"`
		} `json:"themes"`
	} `json:"data"`
	Errors []graphQLError `json:"errors"`
}

// ListThemes returns the shop's first ten themes with their roles.
func (c *Client) ListThemes(ctx context.Context) ([]model.Theme, error) {
	var resp themesResponse
	if err := c.GraphQL(ctx, themesQuery, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to query themes: %w", err)
	}
	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("themes query: %s", resp.Errors[0].Message)
	}
	c.logger.Debug("Fetched themes", "count", len(resp.Data.Themes.Nodes))
	return resp.Data.Themes.Nodes, nil
}

// ErrNotConfigured is returned by Disabled for every remote call.
var ErrNotConfigured = errors.New("shopify: no shop configured (set shopify.shop or SHOPIFY_SHOP)")

// Disabled stands in for the Admin API when no shop is configured, so the
// catalog stays browsable while installs fail with a clear log line.
type Disabled struct{}

// ListThemes always fails with ErrNotConfigured.
func (Disabled) ListThemes(context.Context) ([]model.Theme, error) { return nil, ErrNotConfigured }

// Name returns the transport name.
func (Disabled) Name() string { return "disabled" }

// Publish always fails with ErrNotConfigured.
func (Disabled) Publish(context.Context, model.Theme, string, string) error { return ErrNotConfigured }
