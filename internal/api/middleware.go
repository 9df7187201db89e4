package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/classboard/internal/models"
	"github.com/terraincognita07/classboard/internal/security"
	"github.com/terraincognita07/classboard/internal/services"
)

const (
	contextUserKey     = "current_user"
	contextLanguageKey = "current_language"
)

func currentUser(c *fiber.Ctx) (*models.User, bool) {
	user, ok := c.Locals(contextUserKey).(*models.User)
	return user, ok && user != nil
}

// currentActor is only meaningful behind AuthRequired.
func currentActor(c *fiber.Ctx) security.Identity {
	user, ok := currentUser(c)
	if !ok {
		return security.Identity{}
	}
	return services.ActorOf(*user)
}
