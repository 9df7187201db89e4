package db

import (
	"context"

	"github.com/terraincognita07/classboard/internal/models"
	"gorm.io/gorm"
)

type ScheduleRepository struct {
	database *gorm.DB
}

func NewScheduleRepository(database *gorm.DB) *ScheduleRepository {
	return &ScheduleRepository{database: database}
}

func (repo *ScheduleRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Schedule, error) {
	sheets := make([]models.Schedule, 0)
	if err := repo.database.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at ASC, id ASC").
		Find(&sheets).Error; err != nil {
		return nil, err
	}
	return sheets, nil
}

func (repo *ScheduleRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.Schedule, error) {
	sheets := make([]models.Schedule, 0)
	if err := repo.database.WithContext(ctx).
		Where(jsonArrayContains("schedules.teacher_user_ids"), teacherID).
		Order("created_at ASC, id ASC").
		Find(&sheets).Error; err != nil {
		return nil, err
	}
	return sheets, nil
}

func (repo *ScheduleRepository) ListAll(ctx context.Context) ([]models.Schedule, error) {
	sheets := make([]models.Schedule, 0)
	if err := repo.database.WithContext(ctx).Order("created_at ASC, id ASC").Find(&sheets).Error; err != nil {
		return nil, err
	}
	return sheets, nil
}

func (repo *ScheduleRepository) FindByOwnerAndSheet(ctx context.Context, ownerID string, sheetName string) (models.Schedule, error) {
	var sheet models.Schedule
	if err := repo.database.WithContext(ctx).
		Where("owner_id = ? AND sheet_name = ?", ownerID, sheetName).
		First(&sheet).Error; err != nil {
		return models.Schedule{}, err
	}
	return sheet, nil
}

func (repo *ScheduleRepository) ExistsByOwnerAndSheet(ctx context.Context, ownerID string, sheetName string) (bool, error) {
	var matched int64
	if err := repo.database.WithContext(ctx).Model(&models.Schedule{}).
		Where("owner_id = ? AND sheet_name = ?", ownerID, sheetName).
		Count(&matched).Error; err != nil {
		return false, err
	}
	return matched > 0, nil
}

// ExistsByOwnerAndTitleKey ignores the sheet with excludeID so a sheet never
// conflicts with itself on update. Pass 0 to check every sheet.
func (repo *ScheduleRepository) ExistsByOwnerAndTitleKey(ctx context.Context, ownerID string, titleKey string, excludeID uint) (bool, error) {
	var matched int64
	if err := repo.database.WithContext(ctx).Model(&models.Schedule{}).
		Where("owner_id = ? AND title_key = ? AND id <> ?", ownerID, titleKey, excludeID).
		Count(&matched).Error; err != nil {
		return false, err
	}
	return matched > 0, nil
}

func (repo *ScheduleRepository) Create(ctx context.Context, sheet *models.Schedule) error {
	return repo.database.WithContext(ctx).Create(sheet).Error
}

func (repo *ScheduleRepository) Save(ctx context.Context, sheet *models.Schedule) error {
	return repo.database.WithContext(ctx).Save(sheet).Error
}

func (repo *ScheduleRepository) DeleteByOwnerAndSheet(ctx context.Context, ownerID string, sheetName string) (int64, error) {
	result := repo.database.WithContext(ctx).
		Where("owner_id = ? AND sheet_name = ?", ownerID, sheetName).
		Delete(&models.Schedule{})
	return result.RowsAffected, result.Error
}
