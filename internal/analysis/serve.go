package analysis

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DreamingVaishu/AgriShield-AI/internal/api"
	"github.com/DreamingVaishu/AgriShield-AI/internal/conf"
	"github.com/DreamingVaishu/AgriShield-AI/internal/datastore"
	"github.com/DreamingVaishu/AgriShield-AI/internal/observability"
)

// Serve runs the ingest server until SIGINT or SIGTERM, then drains
// in-flight requests.
func Serve(ctx context.Context, settings *conf.Settings) error {
	store := datastore.New(settings)
	if err := store.Open(); err != nil {
		return err
	}
	defer closeStore(store)

	metrics, err := observability.NewMetrics()
	if err != nil {
		return err
	}

	controller := api.New(settings, store, metrics)

	errCh := make(chan error, 1)
	go func() {
		if err := controller.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	getLogger().Info("Shutting down ingest server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return controller.Shutdown(shutdownCtx)
}
