package api

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/classboard/internal/db"
	"github.com/terraincognita07/classboard/internal/i18n"
	"github.com/terraincognita07/classboard/internal/services"
	"gorm.io/gorm"
)

const DefaultStoreTimeout = 5 * time.Second

// Config is everything the handler needs that is not a live resource.
type Config struct {
	SecretKey                 []byte
	TokenTTL                  time.Duration
	StoreTimeout              time.Duration
	Moderation                services.ModerationMode
	SuperadminCommentsNotices bool
	Superadmin                services.SuperadminAccount
	Cooldowns                 services.BoardCooldowns

	// Requests per minute and client IP; zero disables the limiter.
	GlobalRateLimit int
	AuthRateLimit   int
	LimiterStorage  fiber.Storage

	// HashCost overrides the bcrypt cost when non-zero.
	HashCost int
	Now      func() time.Time
}

type Handler struct {
	db           *gorm.DB
	config       Config
	logger       *slog.Logger
	i18n         *i18n.Manager
	metrics      *Metrics
	mailer       services.PasswordMailer
	now          func() time.Time
	resetLimiter *attemptLimiter

	repositories    *db.Repositories
	policy          *services.AccessPolicy
	authService     *services.AuthService
	rosterService   *services.RosterService
	scheduleService *services.ScheduleService
	boardService    *services.BoardService
}
