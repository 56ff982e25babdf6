// Package syncagent uploads unsynced scans to the ingest server. Uploads
// are opportunistic and idempotent: the server deduplicates by scan UUID,
// so a batch can be replayed after any failure without double-counting.
package syncagent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/DreamingVaishu/AgriShield-AI/internal/conf"
	"github.com/DreamingVaishu/AgriShield-AI/internal/datastore"
	"github.com/DreamingVaishu/AgriShield-AI/internal/errors"
	"github.com/DreamingVaishu/AgriShield-AI/internal/logging"
)

var logger *slog.Logger

func getLogger() *slog.Logger {
	if logger == nil {
		logger = logging.ForService("syncagent")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return logger
}

// SyncRequest is the upload payload: a batch of scan records.
type SyncRequest struct {
	Scans []datastore.ScanRecord `json:"scans"`
}

// SyncResponse is the server acknowledgement. Received counts payload
// rows, Synced counts rows the server actually inserted (duplicates from
// replayed batches are not re-inserted).
type SyncResponse struct {
	Success  bool   `json:"success"`
	Received int    `json:"received"`
	Synced   int64  `json:"synced"`
	SyncedAt int64  `json:"synced_at"`
	Message  string `json:"message,omitempty"`
}

// Client posts scan batches to the ingest server.
type Client struct {
	Settings   *conf.Settings
	endpoint   string
	httpClient *http.Client
}

// NewClient builds a sync client from the configured server URL. The
// /api/sync path is appended when the URL does not already carry a path.
func NewClient(settings *conf.Settings) (*Client, error) {
	parsed, err := url.Parse(settings.Sync.URL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, errors.Newf("invalid sync URL: %q", settings.Sync.URL).
			Component("syncagent").
			Category(errors.CategoryConfiguration).
			Build()
	}
	endpoint := settings.Sync.URL
	if parsed.Path == "" || parsed.Path == "/" {
		endpoint = strings.TrimRight(settings.Sync.URL, "/") + "/api/sync"
	}

	timeout := settings.Sync.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Client{
		Settings:   settings,
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// PushBatch uploads one batch and returns the server acknowledgement.
// Any transport or server failure is an error; the caller must not mark
// the batch synced.
func (c *Client) PushBatch(ctx context.Context, scans []datastore.ScanRecord) (*SyncResponse, error) {
	body, err := json.Marshal(SyncRequest{Scans: scans})
	if err != nil {
		return nil, errors.New(err).
			Component("syncagent").
			Category(errors.CategoryValidation).
			Build()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, errors.New(err).
			Component("syncagent").
			Category(errors.CategoryNetwork).
			Build()
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "agrishield-sync")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, handleNetworkError(err, c.endpoint)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Newf("sync rejected with status %d", resp.StatusCode).
			Component("syncagent").
			Category(errors.CategoryHTTP).
			Context("endpoint", c.endpoint).
			Timing("sync-upload", time.Since(start)).
			Build()
	}

	var ack SyncResponse
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		return nil, errors.New(err).
			Component("syncagent").
			Category(errors.CategoryHTTP).
			Context("endpoint", c.endpoint).
			Build()
	}
	if !ack.Success {
		return nil, errors.Newf("server refused batch: %s", ack.Message).
			Component("syncagent").
			Category(errors.CategorySync).
			Build()
	}

	if c.Settings.Sync.Debug {
		getLogger().Debug("Batch acknowledged",
			"sent", len(scans), "received", ack.Received, "inserted", ack.Synced,
			"took_ms", time.Since(start).Milliseconds())
	}
	return &ack, nil
}

// handleNetworkError classifies transport failures for friendlier logs.
func handleNetworkError(err error, endpoint string) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "connection refused"):
		err = fmt.Errorf("sync server unreachable at %s: %w", endpoint, err)
	case strings.Contains(msg, "Client.Timeout"), strings.Contains(msg, "deadline exceeded"):
		err = fmt.Errorf("sync request timed out: %w", err)
	}
	return errors.New(err).
		Component("syncagent").
		Category(errors.CategoryNetwork).
		Context("endpoint", endpoint).
		Build()
}
