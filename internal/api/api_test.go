package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DreamingVaishu/AgriShield-AI/internal/conf"
	"github.com/DreamingVaishu/AgriShield-AI/internal/datastore"
	"github.com/DreamingVaishu/AgriShield-AI/internal/observability"
)

func newTestController(t *testing.T) *Controller {
	t.Helper()
	settings := &conf.Settings{}
	settings.Server.Host = "127.0.0.1"
	settings.Server.Port = "8080"
	settings.Output.SQLite.Enabled = true
	settings.Output.SQLite.Path = filepath.Join(t.TempDir(), "server.db")

	store := &datastore.SQLiteStore{Settings: settings}
	require.NoError(t, store.Open())
	t.Cleanup(func() { _ = store.Close() })

	metrics, err := observability.NewMetrics()
	require.NoError(t, err)

	return New(settings, store, metrics)
}

func doJSON(c *Controller, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echoContentType, "application/json")
	}
	rec := httptest.NewRecorder()
	c.Echo.ServeHTTP(rec, req)
	return rec
}

const echoContentType = "Content-Type"

func scanPayload(ids ...string) string {
	rows := make([]string, len(ids))
	for i, id := range ids {
		rows[i] = fmt.Sprintf(`{"id":%q,"disease_name":"Early Blight","severity":"medium","confidence":88.5,"timestamp":%d,"device_id":"d1"}`, id, 1000+i)
	}
	return `{"scans":[` + strings.Join(rows, ",") + `]}`
}

func TestPostSyncStoresBatch(t *testing.T) {
	c := newTestController(t)

	rec := doJSON(c, http.MethodPost, "/api/sync", scanPayload("a", "b"))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp syncResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 2, resp.Received)
	assert.Equal(t, int64(2), resp.Synced)
	assert.Positive(t, resp.SyncedAt)
}

func TestPostSyncReplayIsIdempotent(t *testing.T) {
	c := newTestController(t)

	rec := doJSON(c, http.MethodPost, "/api/sync", scanPayload("a", "b"))
	require.Equal(t, http.StatusOK, rec.Code)

	// Replaying the same batch must not double-count.
	rec = doJSON(c, http.MethodPost, "/api/sync", scanPayload("a", "b", "c"))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp syncResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Received)
	assert.Equal(t, int64(1), resp.Synced)
}

func TestPostSyncMalformedJSON(t *testing.T) {
	c := newTestController(t)

	rec := doJSON(c, http.MethodPost, "/api/sync", `{"scans": [nonsense`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Message)
}

func TestPostSyncRejectsInvalidScan(t *testing.T) {
	c := newTestController(t)

	body := `{"scans":[{"id":"","disease_name":"Early Blight","timestamp":1000}]}`
	rec := doJSON(c, http.MethodPost, "/api/sync", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body = `{"scans":[{"id":"x","disease_name":"Early Blight","timestamp":0}]}`
	rec = doJSON(c, http.MethodPost, "/api/sync", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPostSyncEmptyBatchRejected(t *testing.T) {
	c := newTestController(t)

	rec := doJSON(c, http.MethodPost, "/api/sync", `{"scans":[]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "no scans")
}

func TestGetScansReturnsNewestFirst(t *testing.T) {
	c := newTestController(t)

	require.Equal(t, http.StatusOK, doJSON(c, http.MethodPost, "/api/sync", scanPayload("a", "b", "c")).Code)

	rec := doJSON(c, http.MethodGet, "/api/scans", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var scans []datastore.RemoteScan
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &scans))
	require.Len(t, scans, 3)
	assert.Equal(t, "c", scans[0].ID)
}

func TestGetScansEmpty(t *testing.T) {
	c := newTestController(t)

	rec := doJSON(c, http.MethodGet, "/api/scans", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestGetStatsAggregatesAndCaches(t *testing.T) {
	c := newTestController(t)

	require.Equal(t, http.StatusOK, doJSON(c, http.MethodPost, "/api/sync", scanPayload("a", "b")).Code)

	rec := doJSON(c, http.MethodGet, "/api/scans/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var stats []datastore.DiseaseStat
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	require.Len(t, stats, 1)
	assert.Equal(t, "Early Blight", stats[0].DiseaseName)
	assert.Equal(t, int64(2), stats[0].Count)
	assert.InDelta(t, 88.5, stats[0].AvgConfidence, 0.001)

	// A new batch flushes the cache, so the next read sees fresh counts.
	require.Equal(t, http.StatusOK, doJSON(c, http.MethodPost, "/api/sync", scanPayload("d")).Code)
	rec = doJSON(c, http.MethodGet, "/api/scans/stats", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, int64(3), stats[0].Count)
}

func TestGetStatsEmpty(t *testing.T) {
	c := newTestController(t)

	rec := doJSON(c, http.MethodGet, "/api/scans/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestHealth(t *testing.T) {
	c := newTestController(t)

	rec := doJSON(c, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestMetricsEndpoint(t *testing.T) {
	c := newTestController(t)

	require.Equal(t, http.StatusOK, doJSON(c, http.MethodPost, "/api/sync", scanPayload("a")).Code)

	rec := doJSON(c, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "agrishield_scans_ingested_total")
}
