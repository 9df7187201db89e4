package models

import "time"

type Post struct {
	ID         string    `gorm:"primaryKey" json:"id"`
	Title      string    `gorm:"not null" json:"title"`
	Content    string    `gorm:"not null" json:"content"`
	AuthorID   string    `gorm:"not null;index:idx_posts_author_created" json:"authorId"`
	AuthorRole Role      `gorm:"not null" json:"authorRole"`
	IsNotice   bool      `gorm:"not null;default:false" json:"isNotice"`
	ViewCount  int64     `gorm:"not null;default:0" json:"viewCount"`
	CreatedAt  time.Time `gorm:"index:idx_posts_author_created" json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`

	// Case-folded copies of Title and Content, maintained by the repository.
	TitleSearch   string `gorm:"column:title_search;not null;default:''" json:"-"`
	ContentSearch string `gorm:"column:content_search;not null;default:''" json:"-"`
}

type Comment struct {
	ID         string    `gorm:"primaryKey" json:"id"`
	PostID     string    `gorm:"not null;index" json:"postId"`
	Content    string    `gorm:"not null" json:"content"`
	AuthorID   string    `gorm:"not null;index:idx_comments_author_created" json:"authorId"`
	AuthorRole Role      `gorm:"not null" json:"authorRole"`
	CreatedAt  time.Time `gorm:"index:idx_comments_author_created" json:"createdAt"`
}
