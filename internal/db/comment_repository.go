package db

import (
	"context"
	"time"

	"github.com/terraincognita07/classboard/internal/models"
	"gorm.io/gorm"
)

type CommentRepository struct {
	database *gorm.DB
}

func NewCommentRepository(database *gorm.DB) *CommentRepository {
	return &CommentRepository{database: database}
}

func (repo *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return repo.database.WithContext(ctx).Create(comment).Error
}

func (repo *CommentRepository) FindByID(ctx context.Context, commentID string) (models.Comment, error) {
	var comment models.Comment
	if err := repo.database.WithContext(ctx).Where("id = ?", commentID).First(&comment).Error; err != nil {
		return models.Comment{}, err
	}
	return comment, nil
}

func (repo *CommentRepository) ListByPost(ctx context.Context, postID string) ([]models.Comment, error) {
	comments := make([]models.Comment, 0)
	if err := repo.database.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

func (repo *CommentRepository) Delete(ctx context.Context, commentID string) error {
	return repo.database.WithContext(ctx).Where("id = ?", commentID).Delete(&models.Comment{}).Error
}

func (repo *CommentRepository) LatestCreatedAtByAuthor(ctx context.Context, authorID string) (time.Time, bool, error) {
	return latestCreatedAt(repo.database.WithContext(ctx).Model(&models.Comment{}), authorID)
}
