package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/classboard/internal/services"
)

func (handler *Handler) ListSchedules(c *fiber.Ctx) error {
	sheets, err := handler.scheduleService.List(c.UserContext(), currentActor(c), c.Query("owner"))
	if err != nil {
		return handler.respondError(c, err)
	}
	return respondOK(c, fiber.StatusOK, fiber.Map{"schedules": sheets})
}

func (handler *Handler) GetSchedule(c *fiber.Ctx) error {
	sheet, err := handler.scheduleService.Get(c.UserContext(), currentActor(c), c.Query("owner"), pathParam(c, "sheetName"))
	if err != nil {
		return handler.respondError(c, err)
	}
	return respondOK(c, fiber.StatusOK, fiber.Map{"schedule": sheet})
}

func (handler *Handler) CreateSchedule(c *fiber.Ctx) error {
	input := scheduleCreateInput{}
	if err := parseInput(c, &input); err != nil {
		return handler.respondError(c, err)
	}

	sheet, err := handler.scheduleService.Create(c.UserContext(), currentActor(c), services.ScheduleInput{
		SheetName:       input.SheetName,
		Title:           input.Title,
		Days:            input.Days,
		StartTime:       input.StartTime,
		EndTime:         input.EndTime,
		IntervalMinutes: input.IntervalMinutes,
		TeacherCount:    input.TeacherCount,
		TeacherNames:    input.TeacherNames,
		DayDates:        input.DayDates,
		Cells:           input.Cells,
		Merges:          input.Merges,
		ViewMode:        input.ViewMode,
	})
	if err != nil {
		return handler.respondError(c, err)
	}
	return respondOK(c, fiber.StatusCreated, fiber.Map{"schedule": sheet})
}

func (handler *Handler) UpdateSchedule(c *fiber.Ctx) error {
	input := scheduleUpdateInput{}
	if err := parseInput(c, &input); err != nil {
		return handler.respondError(c, err)
	}

	sheet, err := handler.scheduleService.Update(c.UserContext(), currentActor(c), c.Query("owner"), pathParam(c, "sheetName"), services.ScheduleUpdate{
		Title:           input.Title,
		Days:            input.Days,
		StartTime:       input.StartTime,
		EndTime:         input.EndTime,
		IntervalMinutes: input.IntervalMinutes,
		TeacherCount:    input.TeacherCount,
		TeacherNames:    input.TeacherNames,
		TeacherUserIDs:  input.TeacherUserIDs,
		DayDates:        input.DayDates,
		Cells:           input.Cells,
		Merges:          input.Merges,
		ViewMode:        input.ViewMode,
	})
	if err != nil {
		return handler.respondError(c, err)
	}
	return respondOK(c, fiber.StatusOK, fiber.Map{"schedule": sheet})
}

func (handler *Handler) DeleteSchedule(c *fiber.Ctx) error {
	if err := handler.scheduleService.Delete(c.UserContext(), currentActor(c), pathParam(c, "sheetName")); err != nil {
		return handler.respondError(c, err)
	}
	return handler.respondMessage(c, fiber.StatusOK, "messages.schedule_deleted")
}
