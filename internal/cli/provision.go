package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/terraincognita07/classboard/internal/db"
	"github.com/terraincognita07/classboard/internal/services"
)

// RunProvisionAdminCommand creates an admin account with a password read
// through prompt. The password is asked twice.
func RunProvisionAdminCommand(ctx context.Context, dbPath string, userID string, email string, prompt PasswordPrompt, out io.Writer) error {
	userID = strings.TrimSpace(userID)
	email = strings.ToLower(strings.TrimSpace(email))
	if userID == "" || email == "" {
		return errors.New("user id and email are required")
	}
	if err := services.ValidateEmail(email); err != nil {
		return fmt.Errorf("invalid email address %q", email)
	}

	password, err := prompt("Password: ")
	if err != nil {
		return err
	}
	if err := services.ValidatePasswordLength(password); err != nil {
		return fmt.Errorf("password must be at least %d characters", services.MinPasswordLength)
	}
	confirmation, err := prompt("Repeat password: ")
	if err != nil {
		return err
	}
	if confirmation != password {
		return errors.New("passwords do not match")
	}

	database, err := db.OpenSQLite(dbPath)
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}
	defer closeDatabase(database)

	_, err = newAccountService(database).Register(ctx, services.RegisterInput{
		UserID:   userID,
		Password: password,
		Email:    email,
		Role:     "admin",
	})
	if errors.Is(err, services.ErrUserIDTaken) {
		return fmt.Errorf("user %s already exists", userID)
	}
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}

	fmt.Fprintf(out, "Admin %s created\n", userID)
	return nil
}
