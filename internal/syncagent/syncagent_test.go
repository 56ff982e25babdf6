package syncagent

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DreamingVaishu/AgriShield-AI/internal/conf"
	"github.com/DreamingVaishu/AgriShield-AI/internal/datastore"
)

func syncSettings(url string) *conf.Settings {
	settings := &conf.Settings{}
	settings.Sync.Enabled = true
	settings.Sync.URL = url
	settings.Sync.Timeout = 5 * time.Second
	settings.Sync.Interval = time.Minute
	return settings
}

// fakeStore implements just the store methods the agent touches. The
// embedded interface panics on anything else, which is what we want in a
// test.
type fakeStore struct {
	datastore.Interface
	mu       sync.Mutex
	unsynced []datastore.ScanRecord
	marked   [][]string
}

func (f *fakeStore) GetUnsyncedScans(limit int) ([]datastore.ScanRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]datastore.ScanRecord, len(f.unsynced))
	copy(out, f.unsynced)
	return out, nil
}

func (f *fakeStore) MarkScansSynced(ids []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.marked = append(f.marked, ids)
	f.unsynced = nil
	return nil
}

func (f *fakeStore) markedBatches() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.marked
}

// fakePusher returns a canned acknowledgement or error, optionally
// blocking until released.
type fakePusher struct {
	mu      sync.Mutex
	ack     *SyncResponse
	err     error
	block   chan struct{}
	pushes  int
	lastLen int
}

func (f *fakePusher) PushBatch(ctx context.Context, scans []datastore.ScanRecord) (*SyncResponse, error) {
	f.mu.Lock()
	f.pushes++
	f.lastLen = len(scans)
	block := f.block
	f.mu.Unlock()
	if block != nil {
		<-block
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.ack, nil
}

func (f *fakePusher) pushCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pushes
}

func unsyncedScans(n int) []datastore.ScanRecord {
	scans := make([]datastore.ScanRecord, n)
	for i := range scans {
		scans[i] = datastore.ScanRecord{
			ID:          string(rune('a' + i)),
			DiseaseName: "Early Blight",
			Timestamp:   int64(i + 1),
		}
	}
	return scans
}

func TestSyncNowMarksOnAcknowledgement(t *testing.T) {
	store := &fakeStore{unsynced: unsyncedScans(3)}
	pusher := &fakePusher{ack: &SyncResponse{Success: true, Received: 3, Synced: 3}}
	agent := &Agent{Settings: syncSettings("http://server:8080"), Store: store, Pusher: pusher}

	n, err := agent.SyncNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	require.Len(t, store.markedBatches(), 1)
	assert.Equal(t, []string{"a", "b", "c"}, store.markedBatches()[0])
}

func TestSyncNowFailureLeavesScansQueued(t *testing.T) {
	store := &fakeStore{unsynced: unsyncedScans(2)}
	pusher := &fakePusher{err: assert.AnError}
	agent := &Agent{Settings: syncSettings("http://server:8080"), Store: store, Pusher: pusher}

	n, err := agent.SyncNow(context.Background())
	assert.Error(t, err)
	assert.Zero(t, n)
	assert.Empty(t, store.markedBatches())

	// Scans remain queued for the next trigger.
	queued, err := store.GetUnsyncedScans(0)
	require.NoError(t, err)
	assert.Len(t, queued, 2)
}

func TestSyncNowEmptyQueue(t *testing.T) {
	store := &fakeStore{}
	pusher := &fakePusher{ack: &SyncResponse{Success: true}}
	agent := &Agent{Settings: syncSettings("http://server:8080"), Store: store, Pusher: pusher}

	n, err := agent.SyncNow(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, pusher.pushCount())
}

func TestSyncNowSingleFlight(t *testing.T) {
	store := &fakeStore{unsynced: unsyncedScans(1)}
	release := make(chan struct{})
	pusher := &fakePusher{ack: &SyncResponse{Success: true, Synced: 1}, block: release}
	agent := &Agent{Settings: syncSettings("http://server:8080"), Store: store, Pusher: pusher}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = agent.SyncNow(context.Background())
	}()

	// Wait until the first sync is inside PushBatch.
	require.Eventually(t, func() bool { return pusher.pushCount() == 1 },
		time.Second, 5*time.Millisecond)

	// A second trigger while one is in flight is dropped, not queued.
	n, err := agent.SyncNow(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 1, pusher.pushCount())

	close(release)
	<-done
	assert.Len(t, store.markedBatches(), 1)
}

type fakeChecker struct{ online bool }

func (f *fakeChecker) Online(ctx context.Context) bool { return f.online }

func TestSyncNowSkipsWhenOffline(t *testing.T) {
	store := &fakeStore{unsynced: unsyncedScans(2)}
	pusher := &fakePusher{ack: &SyncResponse{Success: true}}
	agent := &Agent{
		Settings: syncSettings("http://server:8080"),
		Store:    store,
		Pusher:   pusher,
		checker:  &fakeChecker{online: false},
	}

	n, err := agent.SyncNow(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, pusher.pushCount())
	assert.Empty(t, store.markedBatches())
}

func TestNewClientRejectsBadURL(t *testing.T) {
	for _, badURL := range []string{"", "not-a-url", "://nope"} {
		_, err := NewClient(syncSettings(badURL))
		assert.Error(t, err, "url %q", badURL)
	}
}

func TestClientPushBatch(t *testing.T) {
	settings := syncSettings("http://server:8080")
	client, err := NewClient(settings)
	require.NoError(t, err)

	httpmock.ActivateNonDefault(client.httpClient)
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("POST", "http://server:8080/api/sync",
		httpmock.NewJsonResponderOrPanic(200, SyncResponse{
			Success: true, Received: 2, Synced: 2, SyncedAt: time.Now().UnixMilli(),
		}))

	ack, err := client.PushBatch(context.Background(), unsyncedScans(2))
	require.NoError(t, err)
	assert.True(t, ack.Success)
	assert.Equal(t, 2, ack.Received)
}

func TestClientPushBatchServerError(t *testing.T) {
	settings := syncSettings("http://server:8080")
	client, err := NewClient(settings)
	require.NoError(t, err)

	httpmock.ActivateNonDefault(client.httpClient)
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("POST", "http://server:8080/api/sync",
		httpmock.NewStringResponder(500, "internal error"))

	_, err = client.PushBatch(context.Background(), unsyncedScans(1))
	assert.Error(t, err)
}

func TestClientPushBatchRefusedAck(t *testing.T) {
	settings := syncSettings("http://server:8080")
	client, err := NewClient(settings)
	require.NoError(t, err)

	httpmock.ActivateNonDefault(client.httpClient)
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("POST", "http://server:8080/api/sync",
		httpmock.NewJsonResponderOrPanic(200, SyncResponse{Success: false, Message: "bad payload"}))

	_, err = client.PushBatch(context.Background(), unsyncedScans(1))
	assert.Error(t, err)
}
