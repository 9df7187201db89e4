package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/classboard/internal/services"
)

func (handler *Handler) Register(c *fiber.Ctx) error {
	input := registerInput{}
	if err := parseInput(c, &input); err != nil {
		return handler.respondError(c, err)
	}

	user, err := handler.authService.Register(c.UserContext(), services.RegisterInput{
		UserID:   input.UserID,
		Password: input.Password,
		Email:    input.Email,
		Role:     input.Role,
	})
	if err != nil {
		return handler.respondError(c, err)
	}

	handler.logger.Info("account registered", "user_id", user.UserID, "role", user.Role)
	return respondOK(c, fiber.StatusCreated, fiber.Map{
		"message": handler.translate(c, "messages.registered"),
		"user":    user,
	})
}

func (handler *Handler) Login(c *fiber.Ctx) error {
	input := loginInput{}
	if err := parseInput(c, &input); err != nil {
		return handler.respondError(c, err)
	}

	result, err := handler.authService.Login(c.UserContext(), input.UserID, input.Password)
	if err != nil {
		return handler.respondError(c, err)
	}

	return respondOK(c, fiber.StatusOK, fiber.Map{
		"token":  result.Token,
		"userId": result.User.UserID,
		"email":  result.User.Email,
		"role":   result.User.Role,
	})
}

// ResetPassword counts every request against the userId, successful or not,
// so the endpoint cannot be used to probe accounts quickly.
func (handler *Handler) ResetPassword(c *fiber.Ctx) error {
	input := resetPasswordInput{}
	if err := parseInput(c, &input); err != nil {
		return handler.respondError(c, err)
	}

	limiterKey := strings.TrimSpace(input.UserID)
	if allowed, retryAfter := handler.resetLimiter.allow(limiterKey, handler.now()); !allowed {
		return handler.respondError(c, &services.RateLimitedError{
			Class:      rateClassPasswordReset,
			RetryAfter: retryAfter,
		})
	}

	if err := handler.authService.ResetPassword(c.UserContext(), input.UserID, input.Email); err != nil {
		return handler.respondError(c, err)
	}

	handler.logger.Info("temporary password issued", "user_id", limiterKey)
	return handler.respondMessage(c, fiber.StatusOK, "messages.password_reset_sent")
}

func (handler *Handler) ChangePassword(c *fiber.Ctx) error {
	input := changePasswordInput{}
	if err := parseInput(c, &input); err != nil {
		return handler.respondError(c, err)
	}

	err := handler.authService.ChangePassword(c.UserContext(), input.UserID, input.CurrentPassword, input.NewPassword)
	if err != nil {
		return handler.respondError(c, err)
	}
	return handler.respondMessage(c, fiber.StatusOK, "messages.password_changed")
}
