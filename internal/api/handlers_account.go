package api

import (
	"github.com/gofiber/fiber/v2"
)

func (handler *Handler) Me(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	return respondOK(c, fiber.StatusOK, fiber.Map{"user": user})
}

func (handler *Handler) DeleteAccount(c *fiber.Ctx) error {
	input := deleteAccountInput{}
	if err := parseInput(c, &input); err != nil {
		return handler.respondError(c, err)
	}

	actor := currentActor(c)
	if err := handler.authService.DeleteAccount(c.UserContext(), actor, input.Password); err != nil {
		return handler.respondError(c, err)
	}

	handler.logger.Info("account deleted", "user_id", actor.ActorID, "role", actor.Role)
	return handler.respondMessage(c, fiber.StatusOK, "messages.account_deleted")
}

func (handler *Handler) GetRoster(c *fiber.Ctx) error {
	teachers, err := handler.rosterService.Roster(c.UserContext(), currentActor(c))
	if err != nil {
		return handler.respondError(c, err)
	}
	return respondOK(c, fiber.StatusOK, fiber.Map{"teachers": teachers})
}

func (handler *Handler) VerifyRoster(c *fiber.Ctx) error {
	input := rosterInput{}
	if err := parseInput(c, &input); err != nil {
		return handler.respondError(c, err)
	}

	verification, err := handler.rosterService.Verify(c.UserContext(), currentActor(c), input.TeacherIDs)
	if err != nil {
		return handler.respondError(c, err)
	}
	return respondOK(c, fiber.StatusOK, fiber.Map{
		"valid":   verification.Valid,
		"missing": verification.Missing,
	})
}

func (handler *Handler) SaveRoster(c *fiber.Ctx) error {
	input := rosterInput{}
	if err := parseInput(c, &input); err != nil {
		return handler.respondError(c, err)
	}

	saved, err := handler.rosterService.Save(c.UserContext(), currentActor(c), input.TeacherIDs)
	if err != nil {
		return handler.respondError(c, err)
	}
	return respondOK(c, fiber.StatusOK, fiber.Map{
		"message":    handler.translate(c, "messages.roster_saved"),
		"teacherIds": saved,
	})
}
