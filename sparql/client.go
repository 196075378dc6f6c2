package sparql

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tucfis/shexpose/errors"
	"github.com/tucfis/shexpose/internal/httpclient"
)

// StoreError is a non-success response from the query/update endpoint. It
// carries the store's reported status code for the caller's status mapping.
type StoreError struct {
	StatusCode int
	Body       string
	Operation  string // "query" or "update"
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s failed with status %d: %s", e.Operation, e.StatusCode, truncate(e.Body, 200))
}

// IsStoreError extracts a StoreError from an error chain.
func IsStoreError(err error) (*StoreError, bool) {
	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		return storeErr, true
	}
	return nil, false
}

// Config holds the store endpoint settings. Basic auth and bearer token are
// mutually exclusive; bearer wins when both are set.
type Config struct {
	QueryEndpoint  string
	UpdateEndpoint string
	Username       string
	Password       string
	BearerToken    string
	// TimeoutSeconds of 0 disables the client timeout (the default: store
	// calls block until the store answers or the connection drops).
	TimeoutSeconds int
}

// Client performs the store round trips: graph-construction queries for
// reads and combined delete/insert updates for writes.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *zap.SugaredLogger
}

// NewClient validates the endpoint URLs and builds a client.
func NewClient(cfg Config, logger *zap.SugaredLogger) (*Client, error) {
	for _, endpoint := range []string{cfg.QueryEndpoint, cfg.UpdateEndpoint} {
		u, err := url.Parse(endpoint)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid store endpoint %q", endpoint)
		}
		if err := httpclient.ValidateURL(u); err != nil {
			return nil, errors.Wrapf(err, "invalid store endpoint %q", endpoint)
		}
	}
	return &Client{
		cfg:    cfg,
		http:   httpclient.New(time.Duration(cfg.TimeoutSeconds) * time.Second),
		logger: logger,
	}, nil
}

// Construct sends a graph-construction query and returns the store's text
// serialization (prefix declarations, blank line, statements).
func (c *Client) Construct(ctx context.Context, query string) (string, error) {
	started := time.Now()
	body, err := c.roundTrip(ctx, c.cfg.QueryEndpoint, "application/sparql-query", "text/turtle", query, "query")
	if err != nil {
		return "", err
	}
	c.logger.Debugw("construct query completed",
		"duration_ms", time.Since(started).Milliseconds(),
		"response_bytes", len(body))
	return body, nil
}

// Ask runs a boolean query. Used by the health check for store
// reachability.
func (c *Client) Ask(ctx context.Context, query string) (bool, error) {
	body, err := c.roundTrip(ctx, c.cfg.QueryEndpoint, "application/sparql-query", "application/sparql-results+json", query, "query")
	if err != nil {
		return false, err
	}
	var result struct {
		Boolean bool `json:"boolean"`
	}
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		return false, errors.Wrap(err, "failed to decode ask result")
	}
	return result.Boolean, nil
}

// Update dispatches one combined delete/insert update body. Empty bodies
// are rejected; callers skip the commit for empty diffs.
func (c *Client) Update(ctx context.Context, updateBody string) error {
	if strings.TrimSpace(updateBody) == "" {
		return errors.New("refusing to dispatch empty update")
	}
	started := time.Now()
	_, err := c.roundTrip(ctx, c.cfg.UpdateEndpoint, "application/sparql-update", "", updateBody, "update")
	if err != nil {
		return err
	}
	c.logger.Debugw("update completed",
		"duration_ms", time.Since(started).Milliseconds(),
		"body_bytes", len(updateBody))
	return nil
}

func (c *Client) roundTrip(ctx context.Context, endpoint, contentType, accept, body, operation string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "failed to build store request")
	}
	req.Header.Set("Content-Type", contentType)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", errors.Wrapf(err, "store %s request failed", operation)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "failed to read store response")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &StoreError{
			StatusCode: resp.StatusCode,
			Body:       string(responseBody),
			Operation:  operation,
		}
	}
	return string(responseBody), nil
}

func (c *Client) authorize(req *http.Request) {
	switch {
	case c.cfg.BearerToken != "":
		req.Header.Set("Authorization", "Bearer "+c.cfg.BearerToken)
	case c.cfg.Username != "":
		req.SetBasicAuth(c.cfg.Username, c.cfg.Password)
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
