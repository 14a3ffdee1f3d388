package export

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

	"golang.org/x/oauth2"

	"github.com/ncecere/cursor_port_sync/internal/config"
)

// Exporter pushes rollup records into the Port catalog via the bulk
// entity upsert endpoint. Entities are sent in chunks so a large org
// stays under Port's per-request entity limit.
type Exporter struct {
	upsertURL  string
	chunkSize  int
	maxRetries int
	retryDelay time.Duration
	dryRun     bool
	tokens     oauth2.TokenSource
	client     *http.Client
	logger     *slog.Logger
}

func NewExporter(cfg config.PortConfig, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	chunkSize := cfg.ChunkSize
	if chunkSize <= 0 {
		chunkSize = 300
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 5
	}
	client := &http.Client{Timeout: timeout}
	return &Exporter{
		upsertURL:  cfg.BulkUpsertURL,
		chunkSize:  chunkSize,
		maxRetries: maxRetries,
		retryDelay: time.Second,
		dryRun:     cfg.DryRun,
		tokens:     newTokenSource(context.Background(), cfg.AuthURL, cfg.ClientID, cfg.ClientSecret, client),
		client:     client,
		logger:     logger,
	}
}

// DryRun reports whether the exporter skips writes.
func (e *Exporter) DryRun() bool { return e.dryRun }

// Export upserts every entity in the batch and returns the number of
// entities sent. In dry-run mode nothing is sent and the would-be count
// is returned.
func (e *Exporter) Export(ctx context.Context, batch Batch) (int, error) {
	entities := batch.Entities()
	if len(entities) == 0 {
		return 0, nil
	}
	if e.dryRun {
		e.logger.Info("dry run: skipping port export", "entities", len(entities))
		return len(entities), nil
	}

	sent := 0
	for start := 0; start < len(entities); start += e.chunkSize {
		end := start + e.chunkSize
		if end > len(entities) {
			end = len(entities)
		}
		chunk := entities[start:end]
		if err := e.upsertChunk(ctx, chunk); err != nil {
			return sent, fmt.Errorf("upsert entities [%d:%d]: %w", start, end, err)
		}
		sent += len(chunk)
		e.logger.Debug("upserted entity chunk", "from", start, "to", end, "total", len(entities))
	}
	return sent, nil
}

func (e *Exporter) upsertChunk(ctx context.Context, chunk []Entity) error {
	wrapped := make([]map[string]Entity, len(chunk))
	for i, ent := range chunk {
		wrapped[i] = map[string]Entity{"entity": ent}
	}
	body, err := json.Marshal(map[string]any{"entities": wrapped})
	if err != nil {
		return err
	}

	var lastErr error
	delay := e.retryDelay
	for attempt := 1; attempt <= e.maxRetries; attempt++ {
		err := e.post(ctx, body)
		if err == nil {
			return nil
		}
		if !retryable(err) {
			return err
		}
		lastErr = err
		if attempt == e.maxRetries {
			break
		}
		e.logger.Warn("port upsert failed, retrying",
			"attempt", attempt, "delay", delay.String(), "error", err)
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

func (e *Exporter) post(ctx context.Context, body []byte) error {
	token, err := e.tokens.Token()
	if err != nil {
		return fmt.Errorf("fetch port token: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.upsertURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	token.SetAuthHeader(req)

	resp, err := e.client.Do(req)
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
