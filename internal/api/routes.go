package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Use(handler.metrics.Observe)
	app.Get("/healthz", handler.Health)

	registerAPIRoutes(app, handler)
	app.Use(handler.NotFound)
}

// RegisterMetricsRoutes mounts /metrics on app, which should listen on an
// operator-only address rather than the public one.
func RegisterMetricsRoutes(app *fiber.App, handler *Handler) {
	app.Get("/metrics", handler.metrics.Handler())
	app.Use(handler.NotFound)
}

func registerAPIRoutes(app *fiber.App, handler *Handler) {
	api := app.Group("/api",
		handler.LanguageMiddleware,
		handler.rateLimiter("global:", handler.config.GlobalRateLimit),
		handler.StoreTimeout,
	)

	auth := api.Group("/auth")
	authLimit := handler.rateLimiter("auth:", handler.config.AuthRateLimit)
	auth.Post("/register", authLimit, handler.Register)
	auth.Post("/login", authLimit, handler.Login)
	auth.Post("/reset-password", authLimit, handler.ResetPassword)
	auth.Post("/change-password", authLimit, handler.ChangePassword)
	auth.Get("/me", handler.AuthRequired, handler.Me)
	auth.Delete("/account", handler.AuthRequired, handler.DeleteAccount)
	auth.Get("/teachers", handler.AuthRequired, handler.GetRoster)
	auth.Post("/teachers/verify", handler.AuthRequired, handler.VerifyRoster)
	auth.Put("/teachers", handler.AuthRequired, handler.SaveRoster)

	schedules := api.Group("/schedules", handler.AuthRequired)
	schedules.Get("", handler.ListSchedules)
	schedules.Post("", handler.CreateSchedule)
	schedules.Get("/:sheetName", handler.GetSchedule)
	schedules.Put("/:sheetName", handler.UpdateSchedule)
	schedules.Delete("/:sheetName", handler.DeleteSchedule)

	board := api.Group("/board", handler.AuthRequired)
	board.Get("", handler.ListPosts)
	board.Post("", handler.CreatePost)
	// Registered before /:postId so "comments" is never read as a post id.
	board.Delete("/comments/:commentId", handler.DeleteComment)
	board.Get("/:postId", handler.GetPost)
	board.Put("/:postId", handler.UpdatePost)
	board.Delete("/:postId", handler.DeletePost)
	board.Get("/:postId/comments", handler.ListComments)
	board.Post("/:postId/comments", handler.CreateComment)
}

// rateLimiter counts requests per client IP in one-minute windows. The prefix
// keeps the global and auth counters apart in a shared storage.
func (handler *Handler) rateLimiter(prefix string, max int) fiber.Handler {
	if max <= 0 {
		return func(c *fiber.Ctx) error {
			return c.Next()
		}
	}
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return prefix + requestLimiterKey(c)
		},
		LimitReached: func(c *fiber.Ctx) error {
			return handler.respondError(c, errTooManyRequests)
		},
		Storage: handler.config.LimiterStorage,
	})
}
