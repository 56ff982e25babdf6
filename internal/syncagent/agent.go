package syncagent

import (
	"context"
	"net"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/DreamingVaishu/AgriShield-AI/internal/conf"
	"github.com/DreamingVaishu/AgriShield-AI/internal/datastore"
	"github.com/DreamingVaishu/AgriShield-AI/internal/errors"
)

// connectivityPollInterval is how often the agent probes the server to
// detect an offline-to-online transition.
const connectivityPollInterval = 30 * time.Second

// Pusher uploads one batch. Satisfied by *Client; tests substitute fakes.
type Pusher interface {
	PushBatch(ctx context.Context, scans []datastore.ScanRecord) (*SyncResponse, error)
}

// ConnectivityChecker reports whether the sync server looks reachable.
type ConnectivityChecker interface {
	Online(ctx context.Context) bool
}

// dialChecker probes the server with a plain TCP dial.
type dialChecker struct {
	address string
	timeout time.Duration
}

func (d *dialChecker) Online(ctx context.Context) bool {
	dialer := net.Dialer{Timeout: d.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", d.address)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

// newDialChecker derives the probe address from the sync URL.
func newDialChecker(rawURL string) ConnectivityChecker {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return nil
	}
	address := parsed.Host
	if parsed.Port() == "" {
		if parsed.Scheme == "https" {
			address = net.JoinHostPort(parsed.Hostname(), "443")
		} else {
			address = net.JoinHostPort(parsed.Hostname(), "80")
		}
	}
	return &dialChecker{address: address, timeout: 5 * time.Second}
}

// Agent pushes unsynced scans to the server. At most one sync runs at a
// time; overlapping triggers are dropped, not queued. There is no retry
// backoff: a failed batch simply stays unsynced until the next trigger.
type Agent struct {
	Settings *conf.Settings
	Store    datastore.Interface
	Pusher   Pusher

	checker  ConnectivityChecker
	inFlight atomic.Bool
	online   atomic.Bool
}

// NewAgent wires an agent from settings. The pusher and checker can be
// replaced for tests via the struct fields before Run.
func NewAgent(settings *conf.Settings, store datastore.Interface) (*Agent, error) {
	client, err := NewClient(settings)
	if err != nil {
		return nil, err
	}
	return &Agent{
		Settings: settings,
		Store:    store,
		Pusher:   client,
		checker:  newDialChecker(settings.Sync.URL),
	}, nil
}

// SyncNow pushes all unsynced scans in one batch. Returns how many scans
// the server acknowledged. A sync already in flight makes this a no-op
// returning (0, nil). Scans are marked synced only after the server
// acknowledged the batch, so the synced flag flips at most once per scan.
func (a *Agent) SyncNow(ctx context.Context) (int, error) {
	if !a.inFlight.CompareAndSwap(false, true) {
		if a.Settings.Sync.Debug {
			getLogger().Debug("Sync already in flight, skipping trigger")
		}
		return 0, nil
	}
	defer a.inFlight.Store(false)

	if a.checker != nil && !a.checker.Online(ctx) {
		a.online.Store(false)
		if a.Settings.Sync.Debug {
			getLogger().Debug("Offline, skipping sync")
		}
		return 0, nil
	}
	a.online.Store(true)

	scans, err := a.Store.GetUnsyncedScans(0)
	if err != nil {
		return 0, err
	}
	if len(scans) == 0 {
		return 0, nil
	}

	ack, err := a.Pusher.PushBatch(ctx, scans)
	if err != nil {
		getLogger().Warn("Sync failed, scans stay queued", "queued", len(scans), "error", err)
		return 0, errors.Wrap(err).
			Component("syncagent").
			Category(errors.CategorySync).
			Context("batch_size", len(scans)).
			Build()
	}

	ids := make([]string, len(scans))
	for i := range scans {
		ids[i] = scans[i].ID
	}
	if err := a.Store.MarkScansSynced(ids); err != nil {
		return 0, err
	}

	getLogger().Info("Scans synced", "uploaded", len(scans), "inserted", ack.Synced)
	return len(scans), nil
}

// Run drives the agent until the context is cancelled: one sync at start,
// one per configured interval, and one whenever the server becomes
// reachable again after an outage.
func (a *Agent) Run(ctx context.Context) {
	interval := a.Settings.Sync.Interval
	if interval <= 0 {
		interval = 15 * time.Minute
	}

	if _, err := a.SyncNow(ctx); err != nil && a.Settings.Sync.Debug {
		getLogger().Debug("Startup sync failed", "error", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	probe := time.NewTicker(connectivityPollInterval)
	defer probe.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = a.SyncNow(ctx)
		case <-probe.C:
			a.probeConnectivity(ctx)
		}
	}
}

// probeConnectivity triggers a sync on the offline-to-online edge.
func (a *Agent) probeConnectivity(ctx context.Context) {
	if a.checker == nil {
		return
	}
	nowOnline := a.checker.Online(ctx)
	wasOnline := a.online.Swap(nowOnline)
	if nowOnline && !wasOnline {
		getLogger().Info("Sync server reachable again, syncing")
		_, _ = a.SyncNow(ctx)
	}
}
