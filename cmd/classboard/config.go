package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/terraincognita07/classboard/internal/services"
)

const minSecretKeyLength = 32

var insecureSecretKeys = map[string]bool{
	"change_me_in_production":                    true,
	"replace_with_at_least_32_random_characters": true,
}

func getEnv(key string, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func resolveSecretKey() (string, error) {
	secretKey := strings.TrimSpace(os.Getenv("SECRET_KEY"))
	if secretKey == "" {
		return "", errors.New("SECRET_KEY is required")
	}
	if insecureSecretKeys[strings.ToLower(secretKey)] {
		return "", errors.New("SECRET_KEY uses a placeholder value")
	}
	if len(secretKey) < minSecretKeyLength {
		return "", fmt.Errorf("SECRET_KEY must be at least %d characters", minSecretKeyLength)
	}
	return secretKey, nil
}

func resolvePort() (string, error) {
	raw := getEnv("PORT", "8080")
	port, err := strconv.Atoi(raw)
	if err != nil || port < 1 || port > 65535 {
		return "", fmt.Errorf("PORT must be between 1 and 65535, got %q", raw)
	}
	return strconv.Itoa(port), nil
}

// resolveDuration accepts Go duration strings such as "30s" or "24h".
// Zero is allowed and negative values are rejected.
func resolveDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration like 30s: %w", key, err)
	}
	if value < 0 {
		return 0, fmt.Errorf("%s must not be negative", key)
	}
	return value, nil
}

func resolvePositiveInt(key string, fallback int) (int, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, raw)
	}
	return value, nil
}

func resolveBool(key string, fallback bool) (bool, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s must be true or false, got %q", key, raw)
	}
	return value, nil
}

func resolveModerationMode() (services.ModerationMode, error) {
	raw := getEnv("MODERATION_MODE", "")
	mode, ok := services.ParseModerationMode(raw)
	if !ok {
		return "", fmt.Errorf("MODERATION_MODE must be strict or permissive, got %q", raw)
	}
	return mode, nil
}

// resolveMetricsAddr defaults to loopback. "off" disables the listener.
func resolveMetricsAddr() (string, bool) {
	addr := getEnv("METRICS_ADDR", "127.0.0.1:9091")
	if strings.EqualFold(addr, "off") {
		return "", false
	}
	return addr, true
}

// resolveSuperadmin returns a disabled account when SUPERADMIN_ID is unset.
func resolveSuperadmin() (services.SuperadminAccount, error) {
	account := services.SuperadminAccount{
		UserID:   getEnv("SUPERADMIN_ID", ""),
		Password: os.Getenv("SUPERADMIN_PASSWORD"),
		Email:    getEnv("SUPERADMIN_EMAIL", ""),
	}
	if account.UserID == "" {
		return services.SuperadminAccount{}, nil
	}
	if len(account.Password) < services.MinPasswordLength {
		return services.SuperadminAccount{}, fmt.Errorf("SUPERADMIN_PASSWORD must be at least %d characters", services.MinPasswordLength)
	}
	return account, nil
}
