package services

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"

	"github.com/terraincognita07/classboard/internal/models"
	"github.com/terraincognita07/classboard/internal/security"
	"golang.org/x/crypto/bcrypt"
)

type AuthUserRepository interface {
	FindByUserID(ctx context.Context, userID string) (models.User, error)
	ExistsByUserID(ctx context.Context, userID string) (bool, error)
	Create(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, userID string, passwordHash string) error
	DeleteAccountAndReferences(ctx context.Context, user models.User) error
}

// PasswordMailer delivers temporary passwords issued by a reset.
type PasswordMailer interface {
	SendTemporaryPassword(ctx context.Context, toEmail string, userID string, temporaryPassword string) error
}

// SuperadminAccount is the configured operator identity. It never exists in
// the users table.
type SuperadminAccount struct {
	UserID   string
	Password string
	Email    string
}

func (account SuperadminAccount) Enabled() bool {
	return strings.TrimSpace(account.UserID) != "" && account.Password != ""
}

func (account SuperadminAccount) matches(userID string) bool {
	return account.Enabled() && userID == account.UserID
}

func (account SuperadminAccount) user() models.User {
	return models.User{UserID: account.UserID, Email: account.Email, Role: models.RoleSuperadmin}
}

type RegisterInput struct {
	UserID   string
	Password string
	Email    string
	Role     string
}

type LoginResult struct {
	Token string
	User  models.User
}

type AuthService struct {
	users       AuthUserRepository
	mailer      PasswordMailer
	credentials *security.Credentials
	policy      *AccessPolicy
	superadmin  SuperadminAccount
	hashCost    int
}

func NewAuthService(users AuthUserRepository, mailer PasswordMailer, credentials *security.Credentials, policy *AccessPolicy, superadmin SuperadminAccount) *AuthService {
	return &AuthService{
		users:       users,
		mailer:      mailer,
		credentials: credentials,
		policy:      policy,
		superadmin:  superadmin,
		hashCost:    bcrypt.DefaultCost,
	}
}

// WithHashCost overrides the bcrypt cost used for new hashes.
func (service *AuthService) WithHashCost(cost int) *AuthService {
	service.hashCost = cost
	return service
}

func (service *AuthService) Register(ctx context.Context, input RegisterInput) (models.User, error) {
	userID := strings.TrimSpace(input.UserID)
	email := normalizeEmail(input.Email)
	if userID == "" || email == "" || input.Password == "" {
		return models.User{}, ErrRequiredFieldsMissing
	}
	if err := ValidateEmail(email); err != nil {
		return models.User{}, err
	}
	if err := ValidatePasswordLength(input.Password); err != nil {
		return models.User{}, err
	}

	role := models.RoleUser
	if strings.TrimSpace(input.Role) != "" {
		parsed, ok := models.ParseRole(input.Role)
		if !ok || parsed == models.RoleSuperadmin {
			return models.User{}, ErrRoleNotAllowed
		}
		role = parsed
	}

	if service.superadmin.matches(userID) {
		return models.User{}, ErrUserIDTaken
	}
	exists, err := service.users.ExistsByUserID(ctx, userID)
	if err != nil {
		return models.User{}, err
	}
	if exists {
		return models.User{}, ErrUserIDTaken
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(input.Password), service.hashCost)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		UserID:       userID,
		PasswordHash: string(passwordHash),
		Email:        email,
		Role:         role,
	}
	if role == models.RoleAdmin {
		user.RegisteredTeacherIDs = []string{}
	}
	if err := service.users.Create(ctx, &user); err != nil {
		if isUniqueViolation(err) {
			return models.User{}, ErrUserIDTaken
		}
		return models.User{}, err
	}
	return user, nil
}

func (service *AuthService) Login(ctx context.Context, rawUserID string, password string) (LoginResult, error) {
	userID := strings.TrimSpace(rawUserID)
	if userID == "" || password == "" {
		return LoginResult{}, ErrRequiredFieldsMissing
	}

	var user models.User
	if service.superadmin.matches(userID) {
		if subtle.ConstantTimeCompare([]byte(password), []byte(service.superadmin.Password)) != 1 {
			return LoginResult{}, ErrInvalidPassword
		}
		user = service.superadmin.user()
	} else {
		stored, err := service.findUser(ctx, userID)
		if err != nil {
			return LoginResult{}, err
		}
		if bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte(password)) != nil {
			return LoginResult{}, ErrInvalidPassword
		}
		user = stored
	}

	token, err := service.credentials.Issue(user.UserID, user.Role)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{Token: token, User: user}, nil
}

// Authenticate validates a bearer token and returns the account it belongs to.
// Persisted accounts are reloaded so deleted accounts are rejected and the
// stored role wins over the one in the token.
func (service *AuthService) Authenticate(ctx context.Context, rawToken string) (models.User, error) {
	identity, err := service.credentials.Validate(rawToken)
	if err != nil {
		return models.User{}, fmt.Errorf("%w: %w", ErrSessionRejected, err)
	}

	if identity.Role == models.RoleSuperadmin {
		if !service.superadmin.matches(identity.ActorID) {
			return models.User{}, ErrSessionRejected
		}
		return service.superadmin.user(), nil
	}

	user, err := service.users.FindByUserID(ctx, identity.ActorID)
	if err != nil {
		if isRecordNotFound(err) {
			return models.User{}, ErrAccountNotActive
		}
		return models.User{}, err
	}
	return user, nil
}

// ResetPassword stores a fresh temporary password and emails it. When the
// email fails the new password stays in place and ErrResetMailFailed is
// returned.
func (service *AuthService) ResetPassword(ctx context.Context, rawUserID string, rawEmail string) error {
	if service.mailer == nil {
		return ErrResetUnavailable
	}
	userID := strings.TrimSpace(rawUserID)
	email := normalizeEmail(rawEmail)
	if userID == "" || email == "" {
		return ErrRequiredFieldsMissing
	}
	if service.superadmin.matches(userID) {
		return ErrUserNotFound
	}

	user, err := service.findUser(ctx, userID)
	if err != nil {
		return err
	}
	if normalizeEmail(user.Email) != email {
		return ErrUserNotFound
	}

	temporaryPassword, err := service.replacePassword(ctx, user.UserID)
	if err != nil {
		return err
	}
	if err := service.mailer.SendTemporaryPassword(ctx, user.Email, user.UserID, temporaryPassword); err != nil {
		return fmt.Errorf("%w: %w", ErrResetMailFailed, err)
	}
	return nil
}

// IssueTemporaryPassword replaces the password of userID without any email
// check and returns the new plaintext. Operator tooling only.
func (service *AuthService) IssueTemporaryPassword(ctx context.Context, rawUserID string) (string, error) {
	userID := strings.TrimSpace(rawUserID)
	if userID == "" {
		return "", ErrRequiredFieldsMissing
	}
	if _, err := service.findUser(ctx, userID); err != nil {
		return "", err
	}
	return service.replacePassword(ctx, userID)
}

func (service *AuthService) ChangePassword(ctx context.Context, rawUserID string, currentPassword string, newPassword string) error {
	userID := strings.TrimSpace(rawUserID)
	if userID == "" || currentPassword == "" || newPassword == "" {
		return ErrRequiredFieldsMissing
	}
	if err := ValidatePasswordLength(newPassword); err != nil {
		return err
	}
	if newPassword == currentPassword {
		return ErrPasswordUnchanged
	}
	if service.superadmin.matches(userID) {
		return deny(ReasonSuperadminNotPersisted).Err()
	}

	user, err := service.findUser(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)) != nil {
		return ErrInvalidPassword
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), service.hashCost)
	if err != nil {
		return err
	}
	return service.users.UpdatePassword(ctx, user.UserID, string(passwordHash))
}

// DeleteAccount removes the actor's own account after re-checking the
// password, together with every reference other records hold to it.
func (service *AuthService) DeleteAccount(ctx context.Context, actor security.Identity, password string) error {
	if err := service.policy.CanDeleteAccount(actor, actor.ActorID).Err(); err != nil {
		return err
	}
	if password == "" {
		return ErrRequiredFieldsMissing
	}

	user, err := service.findUser(ctx, actor.ActorID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return ErrInvalidPassword
	}
	return service.users.DeleteAccountAndReferences(ctx, user)
}

func (service *AuthService) findUser(ctx context.Context, userID string) (models.User, error) {
	user, err := service.users.FindByUserID(ctx, userID)
	if err != nil {
		if isRecordNotFound(err) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

func (service *AuthService) replacePassword(ctx context.Context, userID string) (string, error) {
	temporaryPassword, err := security.TemporaryPassword()
	if err != nil {
		return "", err
	}
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(temporaryPassword), service.hashCost)
	if err != nil {
		return "", err
	}
	if err := service.users.UpdatePassword(ctx, userID, string(passwordHash)); err != nil {
		return "", err
	}
	return temporaryPassword, nil
}

// ActorOf is the identity the access policy sees for an authenticated account.
func ActorOf(user models.User) security.Identity {
	return security.Identity{ActorID: user.UserID, Role: user.Role}
}

func normalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
