package api

import (
	"errors"
	"log/slog"
	"time"

	"github.com/terraincognita07/classboard/internal/i18n"
	"github.com/terraincognita07/classboard/internal/services"
	"gorm.io/gorm"
)

func NewHandler(database *gorm.DB, config Config, mailer services.PasswordMailer, i18nManager *i18n.Manager, logger *slog.Logger) (*Handler, error) {
	if database == nil {
		return nil, errors.New("database is required")
	}
	if i18nManager == nil {
		return nil, errors.New("i18n manager is required")
	}
	if len(config.SecretKey) == 0 {
		return nil, errors.New("secret key is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	if config.StoreTimeout == 0 {
		config.StoreTimeout = DefaultStoreTimeout
	}

	handler := &Handler{
		db:           database,
		config:       config,
		logger:       logger,
		i18n:         i18nManager,
		metrics:      NewMetrics(),
		mailer:       mailer,
		now:          config.Now,
		resetLimiter: newAttemptLimiter(resetAttemptLimit, resetAttemptWindow),
	}
	return handler.withDependencies(database), nil
}
