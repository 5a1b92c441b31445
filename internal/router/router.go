package router

import (
	"github.com/gofiber/fiber/v3"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/bericyb/dislinkedIn/internal/handler"
	"github.com/bericyb/dislinkedIn/internal/metrics"
	"github.com/bericyb/dislinkedIn/internal/middleware"
)

// Handlers holds all handler instances needed by the router.
type Handlers struct {
	Dislike *handler.DislikeHandler
	Health  *handler.HealthHandler
}

// Options carries the route-level configuration.
type Options struct {
	CORSOrigins string
	APIKey      string
}

// Setup configures the middleware stack and all counterd routes on the given
// Fiber app.
func Setup(app *fiber.App, h *Handlers, opts Options) {
	// Middleware stack (order matters)
	app.Use(recoverer.New())
	app.Use(middleware.NewRequestLogger())
	app.Use(middleware.NewCORS(opts.CORSOrigins))
	app.Use(metrics.Middleware())

	// Probes and metrics, no auth needed
	app.Get("/health/live", h.Health.Live)
	app.Get("/health/ready", h.Health.Ready)
	app.Get("/metrics", metrics.Handler())

	// Counter table routes, PostgREST-shaped
	auth := middleware.NewAPIKeyAuth(opts.APIKey)
	readLimit := middleware.NewReadRateLimiter().Handler()
	writeLimit := middleware.NewWriteRateLimiter().Handler()
	bulkLimit := middleware.NewBulkRateLimiter().Handler()

	// Unfiltered GETs are full-table reads for initial sync and get the
	// tighter bulk limiter.
	getLimit := func(c fiber.Ctx) error {
		if fiber.Query[string](c, "post_urn") == "" {
			return bulkLimit(c)
		}
		return readLimit(c)
	}

	table := app.Group("/post_dislikes", auth)
	table.Get("", h.Dislike.Get, getLimit)
	table.Post("", h.Dislike.Insert, writeLimit)
	table.Patch("", h.Dislike.Update, writeLimit)
	table.Delete("", h.Dislike.Delete, writeLimit)
}
