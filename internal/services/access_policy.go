package services

import (
	"strings"

	"github.com/terraincognita07/classboard/internal/models"
	"github.com/terraincognita07/classboard/internal/security"
)

type ModerationMode string

const (
	// ModerationStrict limits post edits to the author and deletions to the
	// author or superadmin.
	ModerationStrict ModerationMode = "strict"
	// ModerationPermissive additionally lets admins edit and delete any post
	// and delete any comment.
	ModerationPermissive ModerationMode = "permissive"
)

func ParseModerationMode(raw string) (ModerationMode, bool) {
	switch ModerationMode(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ModerationStrict:
		return ModerationStrict, true
	case ModerationPermissive:
		return ModerationPermissive, true
	default:
		return "", false
	}
}

// Denial reasons. The API uses them as message keys.
const (
	ReasonAdminOnly              = "admin_only"
	ReasonNotOwner               = "not_owner"
	ReasonNotListedTeacher       = "not_listed_teacher"
	ReasonNotAuthor              = "not_author"
	ReasonNoticeCommentsDisabled = "notice_comments_disabled"
	ReasonOwnAccountOnly         = "own_account_only"
	ReasonSuperadminNotPersisted = "superadmin_not_persisted"
	ReasonUnknownRole            = "unknown_role"
)

type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason string) Decision {
	return Decision{Reason: reason}
}

// Err is nil for an allowed decision and an *AccessDeniedError otherwise.
func (decision Decision) Err() error {
	if decision.Allowed {
		return nil
	}
	return &AccessDeniedError{Reason: decision.Reason}
}

type AccessDeniedError struct {
	Reason string
}

func (err *AccessDeniedError) Error() string {
	return "access denied: " + err.Reason
}

func (err *AccessDeniedError) Unwrap() error {
	return ErrForbidden
}

// AccessPolicy holds every authorization rule. Each method only looks at the
// actor and the resource it is given, so callers must load current state first.
type AccessPolicy struct {
	moderation                ModerationMode
	superadminCommentsNotices bool
}

func NewAccessPolicy(moderation ModerationMode, superadminCommentsNotices bool) *AccessPolicy {
	if moderation == "" {
		moderation = ModerationStrict
	}
	return &AccessPolicy{
		moderation:                moderation,
		superadminCommentsNotices: superadminCommentsNotices,
	}
}

func (policy *AccessPolicy) Moderation() ModerationMode {
	return policy.moderation
}

func (policy *AccessPolicy) CanCreateSchedule(actor security.Identity) Decision {
	if actor.Role != models.RoleAdmin {
		return deny(ReasonAdminOnly)
	}
	return allow()
}

func (policy *AccessPolicy) CanDeleteSchedule(actor security.Identity, ownerID string) Decision {
	if actor.Role != models.RoleAdmin {
		return deny(ReasonAdminOnly)
	}
	if actor.ActorID != ownerID {
		return deny(ReasonNotOwner)
	}
	return allow()
}

func (policy *AccessPolicy) CanUpdateSchedule(actor security.Identity, ownerID string) Decision {
	switch actor.Role {
	case models.RoleSuperadmin:
		return allow()
	case models.RoleAdmin:
		if actor.ActorID != ownerID {
			return deny(ReasonNotOwner)
		}
		return allow()
	default:
		return deny(ReasonAdminOnly)
	}
}

func (policy *AccessPolicy) CanReadSchedule(actor security.Identity, sheet *models.Schedule) Decision {
	switch actor.Role {
	case models.RoleSuperadmin:
		return allow()
	case models.RoleAdmin:
		if sheet.OwnerID != actor.ActorID {
			return deny(ReasonNotOwner)
		}
		return allow()
	case models.RoleUser:
		if !sheet.ListsTeacher(actor.ActorID) {
			return deny(ReasonNotListedTeacher)
		}
		return allow()
	default:
		return deny(ReasonUnknownRole)
	}
}

func (policy *AccessPolicy) CanCreatePost(actor security.Identity) Decision {
	if _, ok := models.ParseRole(string(actor.Role)); !ok {
		return deny(ReasonUnknownRole)
	}
	return allow()
}

func (policy *AccessPolicy) CanUpdatePost(actor security.Identity, post *models.Post) Decision {
	if post.AuthorID == actor.ActorID {
		return allow()
	}
	if policy.moderation == ModerationPermissive && policy.isModerator(actor) {
		return allow()
	}
	return deny(ReasonNotAuthor)
}

func (policy *AccessPolicy) CanDeletePost(actor security.Identity, post *models.Post) Decision {
	return policy.authorOrModerator(actor, post.AuthorID)
}

func (policy *AccessPolicy) CanDeleteComment(actor security.Identity, comment *models.Comment) Decision {
	return policy.authorOrModerator(actor, comment.AuthorID)
}

func (policy *AccessPolicy) CanCommentOn(actor security.Identity, post *models.Post) Decision {
	if !post.IsNotice {
		return allow()
	}
	if actor.Role == models.RoleSuperadmin && policy.superadminCommentsNotices {
		return allow()
	}
	return deny(ReasonNoticeCommentsDisabled)
}

func (policy *AccessPolicy) CanManageRoster(actor security.Identity) Decision {
	if actor.Role != models.RoleAdmin {
		return deny(ReasonAdminOnly)
	}
	return allow()
}

func (policy *AccessPolicy) CanDeleteAccount(actor security.Identity, targetUserID string) Decision {
	if actor.Role == models.RoleSuperadmin {
		return deny(ReasonSuperadminNotPersisted)
	}
	if actor.ActorID != targetUserID {
		return deny(ReasonOwnAccountOnly)
	}
	return allow()
}

func (policy *AccessPolicy) authorOrModerator(actor security.Identity, authorID string) Decision {
	if authorID == actor.ActorID || actor.Role == models.RoleSuperadmin {
		return allow()
	}
	if policy.moderation == ModerationPermissive && actor.Role == models.RoleAdmin {
		return allow()
	}
	return deny(ReasonNotAuthor)
}

func (policy *AccessPolicy) isModerator(actor security.Identity) bool {
	return actor.Role == models.RoleAdmin || actor.Role == models.RoleSuperadmin
}
