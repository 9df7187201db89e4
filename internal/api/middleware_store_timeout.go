package api

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

// StoreTimeout bounds every store call made while serving the request.
func (handler *Handler) StoreTimeout(c *fiber.Ctx) error {
	if handler.config.StoreTimeout <= 0 {
		return c.Next()
	}
	ctx, cancel := context.WithTimeout(c.UserContext(), handler.config.StoreTimeout)
	defer cancel()

	c.SetUserContext(ctx)
	return c.Next()
}
