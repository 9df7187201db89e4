package services

import (
	"context"
	"strings"

	"github.com/terraincognita07/classboard/internal/models"
	"github.com/terraincognita07/classboard/internal/security"
)

type RosterUserRepository interface {
	FindByUserID(ctx context.Context, userID string) (models.User, error)
	ListByUserIDs(ctx context.Context, userIDs []string) ([]models.User, error)
	UpdateRoster(ctx context.Context, userID string, teacherIDs []string) error
}

// RosterVerification splits candidate teacher ids into those that belong to
// a teacher account and those that do not.
type RosterVerification struct {
	Valid   []string `json:"valid"`
	Missing []string `json:"missing"`
}

// RosterEntry is the public view of a teacher on an admin's roster.
type RosterEntry struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
}

type RosterService struct {
	users  RosterUserRepository
	policy *AccessPolicy
}

func NewRosterService(users RosterUserRepository, policy *AccessPolicy) *RosterService {
	return &RosterService{users: users, policy: policy}
}

func (service *RosterService) Roster(ctx context.Context, actor security.Identity) ([]RosterEntry, error) {
	if err := service.policy.CanManageRoster(actor).Err(); err != nil {
		return nil, err
	}
	admin, err := service.users.FindByUserID(ctx, actor.ActorID)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	accounts, err := service.users.ListByUserIDs(ctx, admin.RegisteredTeacherIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.User, len(accounts))
	for _, account := range accounts {
		byID[account.UserID] = account
	}

	entries := make([]RosterEntry, 0, len(admin.RegisteredTeacherIDs))
	for _, teacherID := range admin.RegisteredTeacherIDs {
		account, ok := byID[teacherID]
		if !ok {
			continue
		}
		entries = append(entries, RosterEntry{UserID: account.UserID, Email: account.Email})
	}
	return entries, nil
}

func (service *RosterService) Verify(ctx context.Context, actor security.Identity, teacherIDs []string) (RosterVerification, error) {
	if err := service.policy.CanManageRoster(actor).Err(); err != nil {
		return RosterVerification{}, err
	}
	return service.verify(ctx, normalizeTeacherIDs(teacherIDs))
}

// Save replaces the actor's roster. Every id must belong to an existing
// teacher account; order is kept and duplicates are dropped.
func (service *RosterService) Save(ctx context.Context, actor security.Identity, teacherIDs []string) ([]string, error) {
	if err := service.policy.CanManageRoster(actor).Err(); err != nil {
		return nil, err
	}
	normalized := normalizeTeacherIDs(teacherIDs)
	verification, err := service.verify(ctx, normalized)
	if err != nil {
		return nil, err
	}
	if len(verification.Missing) > 0 {
		return nil, ErrRosterUnknownTeachers
	}
	if err := service.users.UpdateRoster(ctx, actor.ActorID, normalized); err != nil {
		return nil, err
	}
	return normalized, nil
}

func (service *RosterService) verify(ctx context.Context, teacherIDs []string) (RosterVerification, error) {
	accounts, err := service.users.ListByUserIDs(ctx, teacherIDs)
	if err != nil {
		return RosterVerification{}, err
	}
	teachers := make(map[string]bool, len(accounts))
	for _, account := range accounts {
		if account.Role == models.RoleUser {
			teachers[account.UserID] = true
		}
	}

	result := RosterVerification{Valid: []string{}, Missing: []string{}}
	for _, teacherID := range teacherIDs {
		if teachers[teacherID] {
			result.Valid = append(result.Valid, teacherID)
		} else {
			result.Missing = append(result.Missing, teacherID)
		}
	}
	return result, nil
}

func normalizeTeacherIDs(raw []string) []string {
	seen := make(map[string]bool, len(raw))
	normalized := make([]string, 0, len(raw))
	for _, value := range raw {
		teacherID := strings.TrimSpace(value)
		if teacherID == "" || seen[teacherID] {
			continue
		}
		seen[teacherID] = true
		normalized = append(normalized, teacherID)
	}
	return normalized
}
