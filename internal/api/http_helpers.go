package api

import (
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
)

func respondOK(c *fiber.Ctx, status int, payload fiber.Map) error {
	body := fiber.Map{"success": true}
	for key, value := range payload {
		body[key] = value
	}
	return c.Status(status).JSON(body)
}

func (handler *Handler) respondMessage(c *fiber.Ctx, status int, key string) error {
	return respondOK(c, status, fiber.Map{"message": handler.translate(c, key)})
}

// pathParam returns the decoded route parameter. Sheet names may contain
// spaces and non-ASCII characters.
func pathParam(c *fiber.Ctx, name string) string {
	raw := c.Params(name)
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return strings.TrimSpace(raw)
	}
	return strings.TrimSpace(decoded)
}

func (handler *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (handler *Handler) NotFound(c *fiber.Ctx) error {
	return handler.respondError(c, errRouteNotFound)
}
