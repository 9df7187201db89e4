package api

import "github.com/gofiber/fiber/v2"

// AuthRequired resolves the bearer token to a stored account on every
// request. Nothing about the caller is cached between requests.
func (handler *Handler) AuthRequired(c *fiber.Ctx) error {
	user, err := handler.authenticateRequest(c)
	if err != nil {
		return handler.respondError(c, err)
	}
	c.Locals(contextUserKey, user)
	return c.Next()
}
