package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/terraincognita07/classboard/internal/db"
	"github.com/terraincognita07/classboard/internal/services"
	"gorm.io/gorm"
)

// RunResetPasswordCommand replaces the password of userID and prints the
// temporary password. No email is sent.
func RunResetPasswordCommand(ctx context.Context, dbPath string, userID string, out io.Writer) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return errors.New("user id is required")
	}

	database, err := db.OpenSQLite(dbPath)
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}
	defer closeDatabase(database)

	temporaryPassword, err := newAccountService(database).IssueTemporaryPassword(ctx, userID)
	if errors.Is(err, services.ErrUserNotFound) {
		return fmt.Errorf("user %s not found", userID)
	}
	if err != nil {
		return fmt.Errorf("reset password: %w", err)
	}

	fmt.Fprintln(out, "Password reset successful")
	fmt.Fprintf(out, "Temporary password: %s\n", temporaryPassword)
	return nil
}

// newAccountService needs no mailer, credentials or superadmin: the commands
// only create accounts and replace passwords.
func newAccountService(database *gorm.DB) *services.AuthService {
	return services.NewAuthService(db.NewUserRepository(database), nil, nil, nil, services.SuperadminAccount{})
}

func closeDatabase(database *gorm.DB) {
	if sqlDB, err := database.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
