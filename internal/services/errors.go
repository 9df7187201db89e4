package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Error kinds. Every error a service returns on purpose matches exactly one of
// these through errors.Is; anything else is an internal failure.
var (
	ErrValidation      = errors.New("validation failed")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrRateLimited     = errors.New("rate limited")
)

type kindError struct {
	kind    error
	message string
}

func newKindError(kind error, message string) error {
	return &kindError{kind: kind, message: message}
}

func (err *kindError) Error() string {
	return err.message
}

func (err *kindError) Unwrap() error {
	return err.kind
}

var (
	ErrRequiredFieldsMissing = newKindError(ErrValidation, "required fields missing")
	ErrPasswordTooShort      = newKindError(ErrValidation, "password too short")
	ErrRoleNotAllowed        = newKindError(ErrValidation, "role not allowed")
	ErrPasswordUnchanged     = newKindError(ErrValidation, "new password must differ from current password")
	ErrScheduleLayoutInvalid = newKindError(ErrValidation, "schedule layout invalid")
	ErrTeacherSlotsMismatch  = newKindError(ErrValidation, "teacher slots do not match teacher count")
	ErrTeacherNotOnRoster    = newKindError(ErrValidation, "teacher not on roster")
	ErrRosterUnknownTeachers = newKindError(ErrValidation, "roster contains unknown teachers")
	ErrContentTooLong        = newKindError(ErrValidation, "content too long")
	ErrOwnerRequired         = newKindError(ErrValidation, "owner required")
	ErrEmailInvalid          = newKindError(ErrValidation, "email address invalid")
)

var (
	ErrInvalidPassword  = newKindError(ErrUnauthenticated, "invalid password")
	ErrSessionRejected  = newKindError(ErrUnauthenticated, "session rejected")
	ErrAccountNotActive = newKindError(ErrUnauthenticated, "account no longer exists")
)

var (
	ErrUserNotFound     = newKindError(ErrNotFound, "user not found")
	ErrScheduleNotFound = newKindError(ErrNotFound, "schedule not found")
	ErrPostNotFound     = newKindError(ErrNotFound, "post not found")
	ErrCommentNotFound  = newKindError(ErrNotFound, "comment not found")
)

var (
	ErrUserIDTaken    = newKindError(ErrConflict, "user id already registered")
	ErrSheetNameTaken = newKindError(ErrConflict, "sheet name already exists")
	ErrTitleTaken     = newKindError(ErrConflict, "schedule title already exists")
)

// ErrResetMailFailed is returned after the temporary password has already been
// stored; the account keeps the new password.
var ErrResetMailFailed = errors.New("temporary password stored but email delivery failed")

// ErrResetUnavailable is returned before any change when no mailer is
// configured.
var ErrResetUnavailable = errors.New("password reset email is not configured")

// RateLimitedError reports a write refused by a cooldown.
type RateLimitedError struct {
	Class      string
	RetryAfter time.Duration
}

func (err *RateLimitedError) Error() string {
	return fmt.Sprintf("%s rate limited, retry after %s", err.Class, err.RetryAfter)
}

func (err *RateLimitedError) Unwrap() error {
	return ErrRateLimited
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

func isRecordNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
