package db

import (
	"fmt"

	"github.com/terraincognita07/classboard/internal/models"
	"golang.org/x/text/cases"
	"gorm.io/gorm"
)

const searchBackfillBatch = 200

// foldSearchText is applied to both stored text and search terms, so LIKE
// matches case-insensitively beyond ASCII.
func foldSearchText(text string) string {
	return cases.Fold().String(text)
}

// backfillPostSearchColumns fills the folded columns of posts written before
// they existed.
func backfillPostSearchColumns(database *gorm.DB) error {
	for {
		var posts []models.Post
		if err := database.
			Select("id", "title", "content").
			Where("title_search = '' AND title <> ''").
			Limit(searchBackfillBatch).
			Find(&posts).Error; err != nil {
			return fmt.Errorf("load posts without search columns: %w", err)
		}
		if len(posts) == 0 {
			return nil
		}

		err := database.Transaction(func(tx *gorm.DB) error {
			for _, post := range posts {
				if err := tx.Model(&models.Post{}).
					Where("id = ?", post.ID).
					UpdateColumns(map[string]any{
						"title_search":   foldSearchText(post.Title),
						"content_search": foldSearchText(post.Content),
					}).Error; err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("backfill post search columns: %w", err)
		}
	}
}
