package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/DreamingVaishu/AgriShield-AI/internal/datastore"
)

const statsCacheKey = "disease-stats"

// GetScans returns the 50 most recently captured scans, newest first.
func (c *Controller) GetScans(ctx echo.Context) error {
	scans, err := c.DS.GetLatestRemoteScans(recentScansLimit)
	if err != nil {
		c.apiLogger.Error("Scan listing failed", "error", err)
		return ctx.JSON(http.StatusInternalServerError, errorResponse{
			Message: err.Error(),
		})
	}
	if scans == nil {
		scans = []datastore.RemoteScan{}
	}
	return ctx.JSON(http.StatusOK, scans)
}

// GetStats returns per-disease scan counts, cached for up to a minute.
// An empty database yields an empty list, not an error.
func (c *Controller) GetStats(ctx echo.Context) error {
	if cached, found := c.statsCache.Get(statsCacheKey); found {
		return ctx.JSON(http.StatusOK, cached)
	}

	stats, err := c.DS.GetDiseaseStats()
	if err != nil {
		c.apiLogger.Error("Stats aggregation failed", "error", err)
		return ctx.JSON(http.StatusInternalServerError, errorResponse{
			Message: err.Error(),
		})
	}
	if stats == nil {
		stats = []datastore.DiseaseStat{}
	}

	c.statsCache.SetDefault(statsCacheKey, stats)
	return ctx.JSON(http.StatusOK, stats)
}
