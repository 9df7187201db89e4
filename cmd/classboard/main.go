package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/terraincognita07/classboard/internal/api"
	"github.com/terraincognita07/classboard/internal/cli"
	"github.com/terraincognita07/classboard/internal/db"
	"github.com/terraincognita07/classboard/internal/i18n"
	"github.com/terraincognita07/classboard/internal/mail"
	"github.com/terraincognita07/classboard/internal/security"
	"github.com/terraincognita07/classboard/internal/services"
)

const usage = `usage:
  classboard                                   start the HTTP server
  classboard provision-admin <userId> <email>  create an admin account
  classboard reset-password <userId>           print a new temporary password`

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(os.Args[1:], logger); err != nil {
		logger.Error("classboard exited", "error", err)
		os.Exit(1)
	}
}

func run(args []string, logger *slog.Logger) error {
	location := mustLoadLocation(getEnv("TZ", "UTC"), logger)
	time.Local = location
	dbPath := getEnv("DB_PATH", filepath.Join("data", "classboard.db"))

	if len(args) > 0 {
		return runCommand(args, dbPath)
	}
	return serve(dbPath, location, logger)
}

func runCommand(args []string, dbPath string) error {
	ctx := context.Background()
	switch args[0] {
	case "provision-admin":
		if len(args) != 3 {
			return errors.New(usage)
		}
		prompt := cli.TerminalPasswordPrompt(os.Stdin, os.Stdout)
		return cli.RunProvisionAdminCommand(ctx, dbPath, args[1], args[2], prompt, os.Stdout)
	case "reset-password":
		if len(args) != 2 {
			return errors.New(usage)
		}
		return cli.RunResetPasswordCommand(ctx, dbPath, args[1], os.Stdout)
	default:
		return errors.New(usage)
	}
}

func serve(dbPath string, location *time.Location, logger *slog.Logger) error {
	config, port, err := loadHandlerConfig()
	if err != nil {
		return err
	}

	database, err := db.OpenSQLite(dbPath)
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}

	i18nManager, err := i18n.NewEmbeddedManager(getEnv("DEFAULT_LANGUAGE", i18n.LangEN))
	if err != nil {
		return fmt.Errorf("i18n init failed: %w", err)
	}

	if redisAddr := getEnv("REDIS_ADDR", ""); redisAddr != "" {
		config.LimiterStorage = connectLimiterStorage(redisAddr, logger)
	}

	handler, err := api.NewHandler(database, config, newMailer(logger), i18nManager, logger)
	if err != nil {
		return fmt.Errorf("handler init failed: %w", err)
	}

	app := fiber.New(fiber.Config{
		AppName:               "classboard",
		DisableStartupMessage: true,
		ErrorHandler:          handler.ErrorHandler,
	})
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(compress.New())
	api.RegisterRoutes(app, handler)

	apps := []*fiber.App{app}
	if metricsAddr, enabled := resolveMetricsAddr(); enabled {
		metricsApp := fiber.New(fiber.Config{
			DisableStartupMessage: true,
			ErrorHandler:          handler.ErrorHandler,
		})
		metricsApp.Use(recover.New())
		api.RegisterMetricsRoutes(metricsApp, handler)
		apps = append(apps, metricsApp)

		go func() {
			logger.Info("metrics listening", "addr", metricsAddr)
			if err := metricsApp.Listen(metricsAddr); err != nil {
				logger.Error("metrics listener exited", "error", err)
			}
		}()
	}

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	go func() {
		<-sigCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		for _, running := range apps {
			if err := running.ShutdownWithContext(shutdownCtx); err != nil {
				logger.Error("server shutdown failed", "error", err)
			}
		}
	}()

	logger.Info("classboard listening",
		"port", port,
		"db", dbPath,
		"tz", location.String(),
		"moderation", config.Moderation,
	)
	if err := app.Listen(":" + port); err != nil {
		return fmt.Errorf("server exited: %w", err)
	}
	return nil
}

func loadHandlerConfig() (api.Config, string, error) {
	var config api.Config

	secretKey, err := resolveSecretKey()
	if err != nil {
		return config, "", err
	}
	port, err := resolvePort()
	if err != nil {
		return config, "", err
	}
	moderation, err := resolveModerationMode()
	if err != nil {
		return config, "", err
	}
	superadmin, err := resolveSuperadmin()
	if err != nil {
		return config, "", err
	}
	noticeComments, err := resolveBool("NOTICE_COMMENTS_SUPERADMIN", false)
	if err != nil {
		return config, "", err
	}

	config = api.Config{
		SecretKey:                 []byte(secretKey),
		Moderation:                moderation,
		SuperadminCommentsNotices: noticeComments,
		Superadmin:                superadmin,
	}

	durations := []struct {
		key      string
		fallback time.Duration
		target   *time.Duration
	}{
		{"TOKEN_TTL", security.DefaultTokenTTL, &config.TokenTTL},
		{"POST_COOLDOWN", services.DefaultWriteCooldown, &config.Cooldowns.Post},
		{"COMMENT_COOLDOWN", services.DefaultWriteCooldown, &config.Cooldowns.Comment},
		{"STORE_TIMEOUT", api.DefaultStoreTimeout, &config.StoreTimeout},
	}
	for _, duration := range durations {
		if *duration.target, err = resolveDuration(duration.key, duration.fallback); err != nil {
			return config, "", err
		}
	}
	if config.TokenTTL == 0 {
		return config, "", errors.New("TOKEN_TTL must be greater than zero")
	}

	if config.GlobalRateLimit, err = resolvePositiveInt("GLOBAL_RATE_LIMIT", 100); err != nil {
		return config, "", err
	}
	if config.AuthRateLimit, err = resolvePositiveInt("AUTH_RATE_LIMIT", 10); err != nil {
		return config, "", err
	}
	return config, port, nil
}

// connectLimiterStorage falls back to in-process limiter state when redis
// cannot be reached at startup.
func connectLimiterStorage(addr string, logger *slog.Logger) fiber.Storage {
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unavailable, using in-memory rate limits", "addr", addr, "error", err)
		_ = client.Close()
		return nil
	}

	logger.Info("rate limits shared through redis", "addr", addr)
	return api.NewRedisLimiterStorage(client, "classboard:limiter:")
}

// newMailer returns nil without a SendGrid key, which disables email resets.
func newMailer(logger *slog.Logger) services.PasswordMailer {
	apiKey := getEnv("SENDGRID_API_KEY", "")
	if apiKey == "" {
		logger.Warn("SENDGRID_API_KEY not set, password reset by email is disabled; use the reset-password command")
		return nil
	}
	return mail.NewSendgridMailer(apiKey, getEnv("MAIL_FROM", "no-reply@classboard.local"))
}

func mustLoadLocation(name string, logger *slog.Logger) *time.Location {
	location, err := time.LoadLocation(name)
	if err != nil {
		logger.Warn("invalid TZ, falling back to UTC", "tz", name)
		return time.UTC
	}
	return location
}
