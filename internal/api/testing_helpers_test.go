package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/classboard/internal/db"
	"github.com/terraincognita07/classboard/internal/i18n"
	"github.com/terraincognita07/classboard/internal/services"
	"golang.org/x/crypto/bcrypt"
)

const (
	testSecret             = "0123456789abcdef0123456789abcdef"
	testSuperadminID       = "root"
	testSuperadminPassword = "root-password-123"
)

type testClock struct {
	mu      sync.Mutex
	current time.Time
}

func (clock *testClock) Now() time.Time {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	return clock.current
}

func (clock *testClock) Advance(step time.Duration) {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	clock.current = clock.current.Add(step)
}

type capturedMail struct {
	to       string
	userID   string
	password string
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []capturedMail
	err  error
}

func (mailer *recordingMailer) SendTemporaryPassword(_ context.Context, toEmail string, userID string, temporaryPassword string) error {
	mailer.mu.Lock()
	defer mailer.mu.Unlock()
	if mailer.err != nil {
		return mailer.err
	}
	mailer.sent = append(mailer.sent, capturedMail{to: toEmail, userID: userID, password: temporaryPassword})
	return nil
}

type testApp struct {
	app     *fiber.App
	handler *Handler
	clock   *testClock
	mailer  *recordingMailer
}

func newTestApp(t *testing.T, configure ...func(*Config)) *testApp {
	t.Helper()

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "classboard.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := database.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	i18nManager, err := i18n.NewEmbeddedManager(i18n.LangEN)
	if err != nil {
		t.Fatalf("load locales: %v", err)
	}

	clock := &testClock{current: time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)}
	mailer := &recordingMailer{}
	config := Config{
		SecretKey:  []byte(testSecret),
		TokenTTL:   time.Hour,
		Moderation: services.ModerationStrict,
		Superadmin: services.SuperadminAccount{
			UserID:   testSuperadminID,
			Password: testSuperadminPassword,
			Email:    "root@example.com",
		},
		Cooldowns: services.BoardCooldowns{Post: 30 * time.Second, Comment: 30 * time.Second},
		HashCost:  bcrypt.MinCost,
		Now:       clock.Now,
	}
	for _, apply := range configure {
		apply(&config)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler, err := NewHandler(database, config, mailer, i18nManager, logger)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}

	app := fiber.New(fiber.Config{ErrorHandler: handler.ErrorHandler})
	RegisterRoutes(app, handler)
	return &testApp{app: app, handler: handler, clock: clock, mailer: mailer}
}

type testResponse struct {
	status int
	header http.Header
	body   map[string]any
}

func (response testResponse) message() string {
	message, _ := response.body["message"].(string)
	return message
}

func (env *testApp) request(t *testing.T, method string, path string, token string, payload any, headers ...string) testResponse {
	t.Helper()

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("encode payload: %v", err)
		}
		body = bytes.NewReader(encoded)
	}

	request := httptest.NewRequest(method, path, body)
	if payload != nil {
		request.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		request.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	for index := 0; index+1 < len(headers); index += 2 {
		request.Header.Set(headers[index], headers[index+1])
	}

	response, err := env.app.Test(request, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer response.Body.Close()

	raw, err := io.ReadAll(response.Body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}
	decoded := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		if err := json.Unmarshal(raw, &decoded); err != nil {
			t.Fatalf("decode response %q: %v", raw, err)
		}
	}
	return testResponse{status: response.StatusCode, header: response.Header, body: decoded}
}

func (env *testApp) mustStatus(t *testing.T, response testResponse, want int) {
	t.Helper()
	if response.status != want {
		t.Fatalf("expected status %d, got %d (body %v)", want, response.status, response.body)
	}
}

func (env *testApp) register(t *testing.T, userID string, role string) {
	t.Helper()
	response := env.request(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"userId":   userID,
		"password": userID + "-password",
		"email":    userID + "@example.com",
		"role":     role,
	})
	env.mustStatus(t, response, http.StatusCreated)
}

func (env *testApp) login(t *testing.T, userID string, password string) string {
	t.Helper()
	response := env.request(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"userId":   userID,
		"password": password,
	})
	env.mustStatus(t, response, http.StatusOK)
	token, _ := response.body["token"].(string)
	if token == "" {
		t.Fatalf("login for %q returned no token", userID)
	}
	return token
}

func (env *testApp) registerAndLogin(t *testing.T, userID string, role string) string {
	t.Helper()
	env.register(t, userID, role)
	return env.login(t, userID, userID+"-password")
}

func (env *testApp) superadminToken(t *testing.T) string {
	t.Helper()
	return env.login(t, testSuperadminID, testSuperadminPassword)
}

func nestedObject(t *testing.T, body map[string]any, key string) map[string]any {
	t.Helper()
	value, ok := body[key].(map[string]any)
	if !ok {
		t.Fatalf("expected object at %q, got %T (%v)", key, body[key], body)
	}
	return value
}

func nestedList(t *testing.T, body map[string]any, key string) []any {
	t.Helper()
	value, ok := body[key].([]any)
	if !ok {
		t.Fatalf("expected list at %q, got %T (%v)", key, body[key], body)
	}
	return value
}
