package api

import (
	"github.com/terraincognita07/classboard/internal/db"
	"github.com/terraincognita07/classboard/internal/security"
	"github.com/terraincognita07/classboard/internal/services"
	"gorm.io/gorm"
)

func (handler *Handler) withDependencies(database *gorm.DB) *Handler {
	config := handler.config

	handler.repositories = db.NewRepositories(database)
	handler.policy = services.NewAccessPolicy(config.Moderation, config.SuperadminCommentsNotices)

	credentials := security.NewCredentials(config.SecretKey, config.TokenTTL, handler.now)
	handler.authService = services.NewAuthService(
		handler.repositories.Users,
		handler.mailer,
		credentials,
		handler.policy,
		config.Superadmin,
	)
	if config.HashCost != 0 {
		handler.authService.WithHashCost(config.HashCost)
	}

	handler.rosterService = services.NewRosterService(handler.repositories.Users, handler.policy)
	handler.scheduleService = services.NewScheduleService(
		handler.repositories.Schedules,
		handler.repositories.Users,
		handler.policy,
		handler.now,
	)
	handler.boardService = services.NewBoardService(
		handler.repositories.Posts,
		handler.repositories.Comments,
		handler.policy,
		config.Cooldowns,
		handler.now,
	)
	return handler
}
