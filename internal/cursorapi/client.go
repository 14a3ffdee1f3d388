package cursorapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ncecere/cursor_port_sync/internal/config"
)

// Client talks to the Cursor Admin API. Requests authenticate with HTTP basic
// auth using the API key as username and an empty password.
type Client struct {
	baseURL    string
	apiKey     string
	pageSize   int
	maxRetries int
	retryDelay time.Duration
	client     *http.Client
	logger     *slog.Logger
}

func NewClient(cfg config.CursorConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 200
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 5
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		pageSize:   pageSize,
		maxRetries: maxRetries,
		retryDelay: time.Second,
		client:     &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type pagination struct {
	NumPages    int  `json:"numPages"`
	CurrentPage int  `json:"currentPage"`
	HasNextPage bool `json:"hasNextPage"`
}

// TeamMembers fetches the org member roster.
func (c *Client) TeamMembers(ctx context.Context) ([]TeamMember, error) {
	var out struct {
		TeamMembers []TeamMember `json:"teamMembers"`
	}
	if err := c.getWithRetries(ctx, "/teams/members", &out); err != nil {
		return nil, fmt.Errorf("fetch team members: %w", err)
	}
	return out.TeamMembers, nil
}

// DailyUsage fetches per-user daily counters for the [startMS, endMS] window.
func (c *Client) DailyUsage(ctx context.Context, startMS, endMS int64) ([]DailyUsageRow, error) {
	payload := map[string]any{"startDate": startMS, "endDate": endMS}
	var out struct {
		Data []DailyUsageRow `json:"data"`
	}
	if err := c.postWithRetries(ctx, "/teams/daily-usage-data", payload, &out); err != nil {
		return nil, fmt.Errorf("fetch daily usage: %w", err)
	}
	return out.Data, nil
}

// UsageEvents pages through token-billing events for the window, preserving
// the API's event order across pages.
func (c *Client) UsageEvents(ctx context.Context, startMS, endMS int64) ([]UsageEventRow, error) {
	var events []UsageEventRow
	for page := 1; ; page++ {
		payload := map[string]any{
			"startDate": startMS,
			"endDate":   endMS,
			"page":      page,
			"pageSize":  c.pageSize,
		}
		var out struct {
			UsageEvents []UsageEventRow `json:"usageEvents"`
			Pagination  pagination      `json:"pagination"`
		}
		if err := c.postWithRetries(ctx, "/teams/filtered-usage-events", payload, &out); err != nil {
			return nil, fmt.Errorf("fetch usage events page %d: %w", page, err)
		}
		if len(out.UsageEvents) == 0 {
			break
		}
		events = append(events, out.UsageEvents...)
		if !out.Pagination.HasNextPage {
			break
		}
	}
	return events, nil
}

// AiCommits pages through AI-attributed commit records for the window.
func (c *Client) AiCommits(ctx context.Context, startMS, endMS int64) ([]AiCommitRow, error) {
	var commits []AiCommitRow
	for page := 1; ; page++ {
		payload := map[string]any{
			"startDate": startMS,
			"endDate":   endMS,
			"page":      page,
			"pageSize":  c.pageSize,
		}
		var out struct {
			Commits    []AiCommitRow `json:"commits"`
			Pagination pagination    `json:"pagination"`
		}
		if err := c.postWithRetries(ctx, "/analytics/ai-code/commits", payload, &out); err != nil {
			return nil, fmt.Errorf("fetch ai commits page %d: %w", page, err)
		}
		if len(out.Commits) == 0 {
			break
		}
		commits = append(commits, out.Commits...)
		if !out.Pagination.HasNextPage {
			break
		}
	}
	return commits, nil
}

// AiCodeChanges pages through AI-assisted edit events for the window.
func (c *Client) AiCodeChanges(ctx context.Context, startMS, endMS int64) ([]AiCodeChangeRow, error) {
	var changes []AiCodeChangeRow
	for page := 1; ; page++ {
		payload := map[string]any{
			"startDate": startMS,
			"endDate":   endMS,
			"page":      page,
			"pageSize":  c.pageSize,
		}
		var out struct {
			Changes    []AiCodeChangeRow `json:"changes"`
			Pagination pagination        `json:"pagination"`
		}
		if err := c.postWithRetries(ctx, "/analytics/ai-code/changes", payload, &out); err != nil {
			return nil, fmt.Errorf("fetch ai code changes page %d: %w", page, err)
		}
		if len(out.Changes) == 0 {
			break
		}
		changes = append(changes, out.Changes...)
		if !out.Pagination.HasNextPage {
			break
		}
	}
	return changes, nil
}

func (c *Client) postWithRetries(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return c.doWithRetries(ctx, http.MethodPost, path, body, out)
}

func (c *Client) getWithRetries(ctx context.Context, path string, out any) error {
	return c.doWithRetries(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) doWithRetries(ctx context.Context, method, path string, body []byte, out any) error {
	var lastErr error
	delay := c.retryDelay
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		err := c.do(ctx, method, path, body, out)
		if err == nil {
			return nil
		}
		if !retryable(err) {
			return err
		}
		lastErr = err
		if attempt == c.maxRetries {
			break
		}
		c.logger.Warn("cursor api request failed, retrying",
			"path", path, "attempt", attempt, "delay", delay.String(), "error", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
		if delay > 30*time.Second {
			delay = 30 * time.Second
		}
	}
	return lastErr
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.apiKey, "")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return &requestError{err: err, transient: true}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &requestError{
			err:       fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet))),
			transient: resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests,
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

type requestError struct {
	err       error
	transient bool
}

func (e *requestError) Error() string { return e.err.Error() }
func (e *requestError) Unwrap() error { return e.err }

func retryable(err error) bool {
	re, ok := err.(*requestError)
	return ok && re.transient
}
