package main

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/terraincognita07/classboard/internal/mail"
	"github.com/terraincognita07/classboard/internal/services"
)

func TestResolveSecretKey(t *testing.T) {
	t.Setenv("SECRET_KEY", "")
	if _, err := resolveSecretKey(); err == nil {
		t.Fatal("expected error when SECRET_KEY is empty")
	}

	t.Setenv("SECRET_KEY", "change_me_in_production")
	if _, err := resolveSecretKey(); err == nil {
		t.Fatal("expected error when SECRET_KEY uses insecure placeholder")
	}

	t.Setenv("SECRET_KEY", "replace_with_at_least_32_random_characters")
	if _, err := resolveSecretKey(); err == nil {
		t.Fatal("expected error when SECRET_KEY uses example placeholder")
	}

	t.Setenv("SECRET_KEY", "too-short-secret")
	if _, err := resolveSecretKey(); err == nil {
		t.Fatal("expected error when SECRET_KEY is too short")
	}

	valid := "0123456789abcdef0123456789abcdef"
	t.Setenv("SECRET_KEY", valid)
	secret, err := resolveSecretKey()
	if err != nil {
		t.Fatalf("expected valid secret, got error: %v", err)
	}
	if secret != valid {
		t.Fatalf("expected %q, got %q", valid, secret)
	}
}

func TestResolvePort(t *testing.T) {
	t.Setenv("PORT", "")
	port, err := resolvePort()
	if err != nil {
		t.Fatalf("expected default port, got error: %v", err)
	}
	if port != "8080" {
		t.Fatalf("expected default port 8080, got %q", port)
	}

	t.Setenv("PORT", "9090")
	if port, err = resolvePort(); err != nil || port != "9090" {
		t.Fatalf("expected port 9090, got %q (%v)", port, err)
	}

	for _, invalid := range []string{"0", "70000", "not-a-number"} {
		t.Setenv("PORT", invalid)
		if _, err := resolvePort(); err == nil {
			t.Fatalf("expected PORT=%q to fail", invalid)
		}
	}
}

func TestResolveDuration(t *testing.T) {
	cases := []struct {
		raw     string
		want    time.Duration
		wantErr bool
	}{
		{raw: "", want: 30 * time.Second},
		{raw: "45s", want: 45 * time.Second},
		{raw: "0s", want: 0},
		{raw: "-5s", wantErr: true},
		{raw: "soon", wantErr: true},
	}
	for _, tc := range cases {
		t.Setenv("POST_COOLDOWN", tc.raw)
		got, err := resolveDuration("POST_COOLDOWN", 30*time.Second)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("expected error for %q", tc.raw)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("resolveDuration(%q) = %s, %v; want %s", tc.raw, got, err, tc.want)
		}
	}
}

func TestResolvePositiveInt(t *testing.T) {
	t.Setenv("GLOBAL_RATE_LIMIT", "")
	if value, err := resolvePositiveInt("GLOBAL_RATE_LIMIT", 100); err != nil || value != 100 {
		t.Fatalf("expected default 100, got %d (%v)", value, err)
	}
	t.Setenv("GLOBAL_RATE_LIMIT", "250")
	if value, err := resolvePositiveInt("GLOBAL_RATE_LIMIT", 100); err != nil || value != 250 {
		t.Fatalf("expected 250, got %d (%v)", value, err)
	}
	for _, invalid := range []string{"0", "-1", "many"} {
		t.Setenv("GLOBAL_RATE_LIMIT", invalid)
		if _, err := resolvePositiveInt("GLOBAL_RATE_LIMIT", 100); err == nil {
			t.Fatalf("expected %q to fail", invalid)
		}
	}
}

func TestResolveModerationMode(t *testing.T) {
	t.Setenv("MODERATION_MODE", "")
	if mode, err := resolveModerationMode(); err != nil || mode != services.ModerationStrict {
		t.Fatalf("expected strict default, got %q (%v)", mode, err)
	}
	t.Setenv("MODERATION_MODE", "permissive")
	if mode, err := resolveModerationMode(); err != nil || mode != services.ModerationPermissive {
		t.Fatalf("expected permissive, got %q (%v)", mode, err)
	}
	t.Setenv("MODERATION_MODE", "anarchy")
	if _, err := resolveModerationMode(); err == nil {
		t.Fatal("expected unknown moderation mode to fail")
	}
}

func TestResolveSuperadmin(t *testing.T) {
	t.Setenv("SUPERADMIN_ID", "")
	t.Setenv("SUPERADMIN_PASSWORD", "")
	account, err := resolveSuperadmin()
	if err != nil || account.Enabled() {
		t.Fatalf("expected disabled superadmin, got %+v (%v)", account, err)
	}

	t.Setenv("SUPERADMIN_ID", "root")
	t.Setenv("SUPERADMIN_PASSWORD", "short")
	if _, err := resolveSuperadmin(); err == nil {
		t.Fatal("expected short superadmin password to fail")
	}

	t.Setenv("SUPERADMIN_PASSWORD", "long-enough-password")
	t.Setenv("SUPERADMIN_EMAIL", "root@example.com")
	account, err = resolveSuperadmin()
	if err != nil || !account.Enabled() || account.Email != "root@example.com" {
		t.Fatalf("unexpected superadmin %+v (%v)", account, err)
	}
}

func TestResolveMetricsAddr(t *testing.T) {
	t.Setenv("METRICS_ADDR", "")
	if addr, enabled := resolveMetricsAddr(); !enabled || addr != "127.0.0.1:9091" {
		t.Fatalf("expected loopback default, got %q enabled=%v", addr, enabled)
	}
	t.Setenv("METRICS_ADDR", "10.0.0.5:9100")
	if addr, enabled := resolveMetricsAddr(); !enabled || addr != "10.0.0.5:9100" {
		t.Fatalf("expected configured address, got %q enabled=%v", addr, enabled)
	}
	t.Setenv("METRICS_ADDR", "OFF")
	if _, enabled := resolveMetricsAddr(); enabled {
		t.Fatal("expected metrics listener to be disabled")
	}
}

func TestLoadHandlerConfigDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "TOKEN_TTL", "POST_COOLDOWN", "COMMENT_COOLDOWN", "STORE_TIMEOUT",
		"MODERATION_MODE", "NOTICE_COMMENTS_SUPERADMIN", "SUPERADMIN_ID",
		"GLOBAL_RATE_LIMIT", "AUTH_RATE_LIMIT",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("SECRET_KEY", "0123456789abcdef0123456789abcdef")

	config, port, err := loadHandlerConfig()
	if err != nil {
		t.Fatalf("loadHandlerConfig() error: %v", err)
	}
	if port != "8080" || config.TokenTTL != 24*time.Hour || config.StoreTimeout != 5*time.Second {
		t.Fatalf("unexpected defaults: port=%s ttl=%s timeout=%s", port, config.TokenTTL, config.StoreTimeout)
	}
	if config.Cooldowns.Post != 30*time.Second || config.Cooldowns.Comment != 30*time.Second {
		t.Fatalf("unexpected cooldowns %+v", config.Cooldowns)
	}
	if config.GlobalRateLimit != 100 || config.AuthRateLimit != 10 {
		t.Fatalf("unexpected limits %d/%d", config.GlobalRateLimit, config.AuthRateLimit)
	}
	if config.Moderation != services.ModerationStrict || config.SuperadminCommentsNotices {
		t.Fatalf("unexpected moderation config %+v", config)
	}

	t.Setenv("TOKEN_TTL", "0s")
	if _, _, err := loadHandlerConfig(); err == nil {
		t.Fatal("expected zero TOKEN_TTL to fail")
	}
}

func TestNewMailerDisabledWithoutSendgridKey(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	t.Setenv("SENDGRID_API_KEY", "")
	if mailer := newMailer(logger); mailer != nil {
		t.Fatalf("expected no mailer without SENDGRID_API_KEY, got %T", mailer)
	}
	if !strings.Contains(logs.String(), "password reset by email is disabled") {
		t.Fatalf("expected a warning, got %q", logs.String())
	}

	t.Setenv("SENDGRID_API_KEY", "SG.test")
	if _, ok := newMailer(slog.New(slog.NewTextHandler(io.Discard, nil))).(*mail.SendgridMailer); !ok {
		t.Fatal("expected sendgrid mailer with SENDGRID_API_KEY")
	}
}

func TestRunCommandRejectsUnknownCommands(t *testing.T) {
	if err := runCommand([]string{"launch-rockets"}, "unused.db"); err == nil || !strings.Contains(err.Error(), "usage") {
		t.Fatalf("expected usage error, got %v", err)
	}
	if err := runCommand([]string{"reset-password"}, "unused.db"); err == nil {
		t.Fatal("expected missing argument to fail")
	}
}
