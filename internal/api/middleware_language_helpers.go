package api

import "github.com/gofiber/fiber/v2"

func (handler *Handler) LanguageMiddleware(c *fiber.Ctx) error {
	c.Locals(contextLanguageKey, handler.i18n.DetectFromAcceptLanguage(c.Get(fiber.HeaderAcceptLanguage)))
	return c.Next()
}

func (handler *Handler) currentLanguage(c *fiber.Ctx) string {
	if language, ok := c.Locals(contextLanguageKey).(string); ok && language != "" {
		return language
	}
	return handler.i18n.DetectFromAcceptLanguage(c.Get(fiber.HeaderAcceptLanguage))
}

func (handler *Handler) translate(c *fiber.Ctx, key string, args ...any) string {
	if len(args) == 0 {
		return handler.i18n.Translate(handler.currentLanguage(c), key)
	}
	return handler.i18n.Translatef(handler.currentLanguage(c), key, args...)
}
