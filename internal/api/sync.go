package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/DreamingVaishu/AgriShield-AI/internal/datastore"
)

// syncRequest is the device upload payload. The records decode straight
// into the ingest model since both sides share field names.
type syncRequest struct {
	Scans []datastore.RemoteScan `json:"scans"`
}

// syncResponse acknowledges a batch. Received counts payload rows, Synced
// counts rows newly inserted; replayed duplicates make the two differ.
type syncResponse struct {
	Success  bool   `json:"success"`
	Received int    `json:"received"`
	Synced   int64  `json:"synced"`
	SyncedAt int64  `json:"synced_at"`
	Message  string `json:"message,omitempty"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// PostSync ingests a scan batch idempotently: rows whose UUID is already
// stored are skipped, so devices can replay batches after failed uploads.
func (c *Controller) PostSync(ctx echo.Context) error {
	var req syncRequest
	if err := ctx.Bind(&req); err != nil {
		c.recordBatch("malformed", 0, 0)
		return ctx.JSON(http.StatusBadRequest, errorResponse{
			Message: fmt.Sprintf("malformed sync payload: %v", err),
		})
	}
	if msg := validateScans(req.Scans); msg != "" {
		c.recordBatch("invalid", 0, 0)
		return ctx.JSON(http.StatusBadRequest, errorResponse{Message: msg})
	}

	inserted, err := c.DS.InsertRemoteScans(req.Scans)
	if err != nil {
		c.recordBatch("error", 0, 0)
		c.apiLogger.Error("Batch ingest failed", "batch_size", len(req.Scans), "error", err)
		return ctx.JSON(http.StatusInternalServerError, errorResponse{
			Message: "failed to store scans",
		})
	}

	duplicates := int64(len(req.Scans)) - inserted
	c.recordBatch("ok", inserted, duplicates)
	// Fresh stats on the next read.
	c.statsCache.Flush()

	return ctx.JSON(http.StatusOK, syncResponse{
		Success:  true,
		Received: len(req.Scans),
		Synced:   inserted,
		SyncedAt: time.Now().UnixMilli(),
		Message:  fmt.Sprintf("stored %d of %d scans", inserted, len(req.Scans)),
	})
}

// validateScans rejects empty batches and rows the store could not key
// or attribute.
func validateScans(scans []datastore.RemoteScan) string {
	if len(scans) == 0 {
		return "sync payload contains no scans"
	}
	for i := range scans {
		switch {
		case scans[i].ID == "":
			return fmt.Sprintf("scan %d is missing an id", i)
		case scans[i].DiseaseName == "":
			return fmt.Sprintf("scan %q is missing a disease name", scans[i].ID)
		case scans[i].Timestamp <= 0:
			return fmt.Sprintf("scan %q has an invalid timestamp", scans[i].ID)
		}
	}
	return ""
}

func (c *Controller) recordBatch(status string, inserted, duplicates int64) {
	if c.metrics != nil {
		c.metrics.RecordBatch(status, inserted, duplicates)
	}
}
