package api

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/classboard/internal/models"
	"github.com/terraincognita07/classboard/internal/services"
)

var errMissingToken = fmt.Errorf("%w: missing bearer token", services.ErrUnauthenticated)

func bearerToken(c *fiber.Ctx) (string, error) {
	header := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", errMissingToken
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", errMissingToken
	}
	return token, nil
}

func (handler *Handler) authenticateRequest(c *fiber.Ctx) (*models.User, error) {
	token, err := bearerToken(c)
	if err != nil {
		return nil, err
	}
	user, err := handler.authService.Authenticate(c.UserContext(), token)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
