// Package api implements the ingest server: sync uploads from devices and
// read endpoints for the dashboard.
package api

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/DreamingVaishu/AgriShield-AI/internal/conf"
	"github.com/DreamingVaishu/AgriShield-AI/internal/datastore"
	"github.com/DreamingVaishu/AgriShield-AI/internal/errors"
	"github.com/DreamingVaishu/AgriShield-AI/internal/logging"
	"github.com/DreamingVaishu/AgriShield-AI/internal/observability"
)

const (
	// recentScansLimit is how many scans the list endpoint returns.
	recentScansLimit = 50
	// statsCacheTTL bounds how stale the stats endpoint may serve.
	statsCacheTTL = 60 * time.Second
)

// Controller wires the echo server, the datastore and the metrics.
type Controller struct {
	Echo     *echo.Echo
	DS       datastore.Interface
	Settings *conf.Settings

	metrics    *observability.Metrics
	statsCache *cache.Cache
	apiLogger  *slog.Logger
	logClose   func() error
}

// New creates the controller and registers all routes.
func New(settings *conf.Settings, ds datastore.Interface, metrics *observability.Metrics) *Controller {
	c := &Controller{
		Echo:       echo.New(),
		DS:         ds,
		Settings:   settings,
		metrics:    metrics,
		statsCache: cache.New(statsCacheTTL, 2*statsCacheTTL),
		apiLogger:  logging.ForService("api"),
	}
	if c.apiLogger == nil {
		c.apiLogger = slog.Default()
	}
	if settings.Main.Log.Enabled && settings.Main.Log.Path != "" {
		logPath := filepath.Join(settings.Main.Log.Path, "api.log")
		if fileLogger, closer, err := logging.NewFileLogger(logPath, "api", slog.LevelInfo); err == nil {
			c.apiLogger = fileLogger
			c.logClose = closer
		} else {
			c.apiLogger.Warn("File logging unavailable", "path", logPath, "error", err)
		}
	}

	c.Echo.HideBanner = true
	c.initMiddleware()
	c.initRoutes()
	return c
}

func (c *Controller) initMiddleware() {
	c.Echo.Use(middleware.Recover())
	c.Echo.Use(middleware.CORS())
	c.Echo.Use(middleware.BodyLimit("4M"))
	c.Echo.Use(c.loggingMiddleware)
}

// loggingMiddleware logs each request and feeds the latency histogram.
func (c *Controller) loggingMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		start := time.Now()
		err := next(ctx)
		elapsed := time.Since(start)

		route := ctx.Path()
		if c.metrics != nil {
			c.metrics.RequestLatency.WithLabelValues(route).Observe(elapsed.Seconds())
		}
		c.apiLogger.Info("request",
			"method", ctx.Request().Method,
			"path", route,
			"status", ctx.Response().Status,
			"took_ms", elapsed.Milliseconds(),
			"remote", ctx.RealIP())
		return err
	}
}

func (c *Controller) initRoutes() {
	c.Echo.GET("/health", c.Health)
	if c.metrics != nil {
		c.Echo.GET("/metrics", echo.WrapHandler(
			promhttp.HandlerFor(c.metrics.Registry(), promhttp.HandlerOpts{})))
	}

	api := c.Echo.Group("/api")
	api.POST("/sync", c.PostSync)
	api.GET("/scans", c.GetScans)
	api.GET("/scans/stats", c.GetStats)
}

// Health reports liveness.
func (c *Controller) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{"status": "healthy"})
}

// Start serves until the listener fails or Shutdown is called.
func (c *Controller) Start() error {
	addr := net.JoinHostPort(c.Settings.Server.Host, c.Settings.Server.Port)
	c.apiLogger.Info("Ingest server listening", "addr", addr)
	return c.Echo.Start(addr)
}

// Shutdown drains in-flight requests and stops the server.
func (c *Controller) Shutdown(ctx context.Context) error {
	err := c.Echo.Shutdown(ctx)
	if c.logClose != nil {
		err = errors.Join(err, c.logClose())
	}
	return err
}
