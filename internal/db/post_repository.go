package db

import (
	"context"
	"strings"
	"time"

	"github.com/terraincognita07/classboard/internal/models"
	"gorm.io/gorm"
)

type PostRepository struct {
	database *gorm.DB
}

func NewPostRepository(database *gorm.DB) *PostRepository {
	return &PostRepository{database: database}
}

func (repo *PostRepository) Create(ctx context.Context, post *models.Post) error {
	post.TitleSearch = foldSearchText(post.Title)
	post.ContentSearch = foldSearchText(post.Content)
	return repo.database.WithContext(ctx).Create(post).Error
}

func (repo *PostRepository) FindByID(ctx context.Context, postID string) (models.Post, error) {
	var post models.Post
	if err := repo.database.WithContext(ctx).Where("id = ?", postID).First(&post).Error; err != nil {
		return models.Post{}, err
	}
	return post, nil
}

// IncrementViewCount bumps the counter in a single statement and reports
// whether a row matched.
func (repo *PostRepository) IncrementViewCount(ctx context.Context, postID string) (bool, error) {
	result := repo.database.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", postID).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1))
	return result.RowsAffected > 0, result.Error
}

func (repo *PostRepository) UpdateContent(ctx context.Context, postID string, title string, content string, updatedAt time.Time) error {
	return repo.database.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", postID).
		UpdateColumns(map[string]any{
			"title":          title,
			"content":        content,
			"title_search":   foldSearchText(title),
			"content_search": foldSearchText(content),
			"updated_at":     updatedAt,
		}).Error
}

func (repo *PostRepository) DeleteWithComments(ctx context.Context, postID string) error {
	return repo.database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", postID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", postID).Delete(&models.Post{}).Error
	})
}

func (repo *PostRepository) ListNotices(ctx context.Context) ([]models.Post, error) {
	posts := make([]models.Post, 0)
	if err := repo.database.WithContext(ctx).
		Where("is_notice = ?", true).
		Order("created_at DESC, id DESC").
		Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

func (repo *PostRepository) ListNormalPage(ctx context.Context, search string, offset int, limit int) ([]models.Post, error) {
	posts := make([]models.Post, 0, limit)
	if err := repo.normalPosts(ctx, search).
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

func (repo *PostRepository) CountNormal(ctx context.Context, search string) (int64, error) {
	var count int64
	if err := repo.normalPosts(ctx, search).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (repo *PostRepository) LatestCreatedAtByAuthor(ctx context.Context, authorID string) (time.Time, bool, error) {
	return latestCreatedAt(repo.database.WithContext(ctx).Model(&models.Post{}), authorID)
}

func (repo *PostRepository) normalPosts(ctx context.Context, search string) *gorm.DB {
	query := repo.database.WithContext(ctx).Model(&models.Post{}).Where("is_notice = ?", false)
	if term := strings.TrimSpace(search); term != "" {
		pattern := "%" + escapeLike(foldSearchText(term)) + "%"
		query = query.Where(`(title_search LIKE ? ESCAPE '\' OR content_search LIKE ? ESCAPE '\')`, pattern, pattern)
	}
	return query
}

func escapeLike(term string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(term)
}

func latestCreatedAt(query *gorm.DB, authorID string) (time.Time, bool, error) {
	var rows []struct {
		CreatedAt time.Time `gorm:"column:created_at"`
	}
	if err := query.
		Select("created_at").
		Where("author_id = ?", authorID).
		Order("created_at DESC").
		Limit(1).
		Scan(&rows).Error; err != nil {
		return time.Time{}, false, err
	}
	if len(rows) == 0 {
		return time.Time{}, false, nil
	}
	return rows[0].CreatedAt, true, nil
}
