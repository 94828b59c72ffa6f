package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/gradeflow/assess-api/internal/config"
	"github.com/gradeflow/assess-api/internal/handler"
	"github.com/gradeflow/assess-api/internal/middleware"
	"github.com/gradeflow/assess-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	ComplaintHandler         *handler.ComplaintHandler
	ComplaintResponseHandler *handler.ComplaintResponseHandler
	AssessmentHandler        *handler.AssessmentHandler
	JWTMiddleware            fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	complaints := api.Group("/complaints", jwtMiddleware, middleware.RateLimit("complaints", cfg.ComplaintRateLimit, time.Minute))

	if deps.ComplaintHandler != nil {
		deps.ComplaintHandler.Register(complaints)
	}

	// Lock and resolution endpoints are grader-only; complaint filing is
	// open to any authenticated user.
	if deps.ComplaintResponseHandler != nil {
		deps.ComplaintResponseHandler.Register(complaints.Group("", middleware.RequireGrader()))
	}

	if deps.AssessmentHandler != nil {
		results := api.Group("/results", jwtMiddleware, middleware.RequireGrader())
		deps.AssessmentHandler.Register(results)
	}
}
