package services

import (
	"time"

	"gorm.io/gorm"

	"github.com/cppla/blogicum/models"
)

// IsPubliclyVisible reports whether post may be shown to anonymous or non-owning viewers.
// A post dated exactly now is not visible yet.
func IsPubliclyVisible(post *models.Post, now time.Time) bool {
	if post == nil || !post.IsPublished || !post.PubDate.Before(now) {
		return false
	}
	return post.Category == nil || post.Category.IsPublished
}

// PublishedScope restricts a posts query to the rows IsPubliclyVisible accepts.
// It joins categories, so callers must qualify column names and select posts.* explicitly.
func PublishedScope(now time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.
			Joins("LEFT JOIN categories ON categories.id = posts.category_id").
			Where("posts.is_published = ? AND posts.pub_date < ?", true, now).
			Where("(posts.category_id IS NULL OR categories.is_published = ?)", true)
	}
}
