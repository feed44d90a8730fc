package models

import "time"

// Post is a blog entry written by a single author.
// Migrations create no foreign keys; MutationService.DeletePost removes the comments.
type Post struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:256;not null" json:"title"`
	Text        string    `gorm:"type:text;not null" json:"text"`
	PubDate     time.Time `gorm:"index;not null" json:"pub_date"`
	AuthorID    uint      `gorm:"index;not null" json:"author_id"`
	Author      User      `gorm:"foreignKey:AuthorID" json:"author"`
	CategoryID  *uint     `gorm:"index" json:"category_id"`
	Category    *Category `json:"category,omitempty"`
	LocationID  *uint     `gorm:"index" json:"location_id"`
	Location    *Location `json:"location,omitempty"`
	IsPublished bool      `gorm:"not null" json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Comments    []Comment `json:"comments,omitempty"`

	// Filled by listing queries, never stored.
	CommentCount int64 `gorm:"->;-:migration" json:"comment_count"`
}
