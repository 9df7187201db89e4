package db

import (
	"context"
	"time"

	"github.com/terraincognita07/classboard/internal/models"
	"gorm.io/gorm"
)

type UserRepository struct {
	database *gorm.DB
}

func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{database: database}
}

func (repo *UserRepository) FindByUserID(ctx context.Context, userID string) (models.User, error) {
	var user models.User
	if err := repo.database.WithContext(ctx).Where("user_id = ?", userID).First(&user).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (repo *UserRepository) ExistsByUserID(ctx context.Context, userID string) (bool, error) {
	var matched int64
	if err := repo.database.WithContext(ctx).Model(&models.User{}).
		Where("user_id = ?", userID).
		Count(&matched).Error; err != nil {
		return false, err
	}
	return matched > 0, nil
}

func (repo *UserRepository) ListByUserIDs(ctx context.Context, userIDs []string) ([]models.User, error) {
	users := make([]models.User, 0, len(userIDs))
	if len(userIDs) == 0 {
		return users, nil
	}
	if err := repo.database.WithContext(ctx).Where("user_id IN ?", userIDs).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (repo *UserRepository) Create(ctx context.Context, user *models.User) error {
	return repo.database.WithContext(ctx).Create(user).Error
}

func (repo *UserRepository) UpdatePassword(ctx context.Context, userID string, passwordHash string) error {
	return repo.database.WithContext(ctx).Model(&models.User{}).
		Where("user_id = ?", userID).
		Update("password_hash", passwordHash).Error
}

func (repo *UserRepository) UpdateRoster(ctx context.Context, userID string, teacherIDs []string) error {
	if teacherIDs == nil {
		teacherIDs = []string{}
	}
	return repo.database.WithContext(ctx).Model(&models.User{}).
		Where("user_id = ?", userID).
		Select("registered_teacher_ids", "updated_at").
		Updates(&models.User{RegisteredTeacherIDs: teacherIDs, UpdatedAt: time.Now().UTC()}).Error
}

// DeleteAccountAndReferences removes the account and cleans every reference
// to it: admins lose their sheets, teachers are blanked out of the sheets
// they were assigned to and dropped from every admin roster.
func (repo *UserRepository) DeleteAccountAndReferences(ctx context.Context, user models.User) error {
	return repo.database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if user.Role == models.RoleAdmin {
			if err := tx.Where("owner_id = ?", user.UserID).Delete(&models.Schedule{}).Error; err != nil {
				return err
			}
		}

		var sheets []models.Schedule
		if err := tx.Where(jsonArrayContains("schedules.teacher_user_ids"), user.UserID).Find(&sheets).Error; err != nil {
			return err
		}
		for index := range sheets {
			for slot, assigned := range sheets[index].TeacherUserIDs {
				if assigned == user.UserID {
					sheets[index].TeacherUserIDs[slot] = ""
				}
			}
			sheets[index].UpdatedAt = time.Now().UTC()
			if err := tx.Model(&sheets[index]).Select("teacher_user_ids", "updated_at").Updates(&sheets[index]).Error; err != nil {
				return err
			}
		}

		var admins []models.User
		if err := tx.Where(jsonArrayContains("users.registered_teacher_ids"), user.UserID).Find(&admins).Error; err != nil {
			return err
		}
		for index := range admins {
			roster := make([]string, 0, len(admins[index].RegisteredTeacherIDs))
			for _, teacherID := range admins[index].RegisteredTeacherIDs {
				if teacherID != user.UserID {
					roster = append(roster, teacherID)
				}
			}
			admins[index].RegisteredTeacherIDs = roster
			if err := tx.Model(&admins[index]).Select("registered_teacher_ids").Updates(&admins[index]).Error; err != nil {
				return err
			}
		}

		return tx.Delete(&models.User{}, user.ID).Error
	})
}
