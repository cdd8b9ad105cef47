// Package api provides a client for the runner and environment listing
// endpoints of the remote-development platform API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/perfgo/runnerstat/model"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

const (
	// DefaultBaseURL is the public API endpoint.
	DefaultBaseURL = "https://app.gitpod.io/api"
	// DefaultPageSize is the number of entities requested per list call.
	DefaultPageSize = 100

	listRunnersPath      = "/gitpod.v1.RunnerService/ListRunners"
	listEnvironmentsPath = "/gitpod.v1.EnvironmentService/ListEnvironments"
)

// Config holds the settings needed to construct a Client.
type Config struct {
	// BaseURL of the API, DefaultBaseURL when empty
	BaseURL string
	// Token is the personal access token sent as a bearer token
	Token string
	// RequestID is sent as X-Request-Id with every call
	RequestID string
	// HTTPClient is an optional base client; its transport is wrapped
	// with bearer authentication
	HTTPClient *http.Client
}

// Client lists runners and environments. Every call is made exactly once;
// failures are returned to the caller without retrying.
type Client struct {
	logger    zerolog.Logger
	baseURL   string
	requestID string
	client    *http.Client
}

// New creates a Client. It returns an error if no token is configured.
func New(logger zerolog.Logger, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, fmt.Errorf("api token is required")
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := &http.Client{}
	if cfg.HTTPClient != nil {
		*httpClient = *cfg.HTTPClient
	}
	httpClient.Transport = &oauth2.Transport{
		Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token}),
		Base:   httpClient.Transport,
	}

	return &Client{
		logger:    logger.With().Str("component", "api").Logger(),
		baseURL:   baseURL,
		requestID: cfg.RequestID,
		client:    httpClient,
	}, nil
}

// ListRunners returns the first page of runners of an organization.
func (c *Client) ListRunners(ctx context.Context, organizationID string, pageSize int) ([]model.Runner, error) {
	var resp listRunnersResponse
	if err := c.list(ctx, "ListRunners", listRunnersPath, organizationID, pageSize, &resp); err != nil {
		return nil, err
	}
	c.logTruncated("ListRunners", resp.Pagination)

	runners := make([]model.Runner, 0, len(resp.Runners))
	for _, r := range resp.Runners {
		runners = append(runners, r.toModel())
	}
	return runners, nil
}

// ListEnvironments returns the first page of environments of an organization.
func (c *Client) ListEnvironments(ctx context.Context, organizationID string, pageSize int) ([]model.Environment, error) {
	var resp listEnvironmentsResponse
	if err := c.list(ctx, "ListEnvironments", listEnvironmentsPath, organizationID, pageSize, &resp); err != nil {
		return nil, err
	}
	c.logTruncated("ListEnvironments", resp.Pagination)

	environments := make([]model.Environment, 0, len(resp.Environments))
	for _, e := range resp.Environments {
		environments = append(environments, e.toModel())
	}
	return environments, nil
}

func (c *Client) logTruncated(operation string, p responsePagination) {
	if p.NextToken != "" {
		c.logger.Debug().Str("operation", operation).Msg("More results available; only the first page is used")
	}
}

func (c *Client) list(ctx context.Context, operation, path, organizationID string, pageSize int, dest any) error {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	body := listRequest{
		OrganizationID: organizationID,
		Pagination:     pagination{PageSize: pageSize},
	}
	return c.post(ctx, operation, path, body, dest)
}

func (c *Client) post(ctx context.Context, operation, path string, body, dest any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%s: failed to marshal request: %w", operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("%s: failed to create request: %w", operation, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Connect-Protocol-Version", "1")
	if c.requestID != "" {
		req.Header.Set("X-Request-Id", c.requestID)
	}

	c.logger.Debug().Str("operation", operation).Str("url", req.URL.String()).Msg("Sending request")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", operation, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: failed to read response: %w", operation, err)
	}

	c.logger.Debug().
		Str("operation", operation).
		Int("status", resp.StatusCode).
		Int("bytes", len(data)).
		Msg("Received response")

	if resp.StatusCode >= 400 {
		return parseError(operation, resp.StatusCode, data)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("%s: failed to decode response: %w", operation, err)
	}
	return nil
}

func parseError(operation string, status int, data []byte) error {
	apiErr := &Error{
		Operation:  operation,
		StatusCode: status,
	}
	var body errorResponse
	if err := json.Unmarshal(data, &body); err == nil && (body.Code != "" || body.Message != "") {
		apiErr.Code = body.Code
		apiErr.Message = body.Message
	} else {
		apiErr.Message = strings.TrimSpace(string(data))
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}
