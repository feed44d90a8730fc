package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cppla/blogicum/models"
)

var baseTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err)

	// A second connection would see a different in-memory database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()
	u := models.User{Username: username, Email: username + "@example.com"}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func createCategory(t *testing.T, db *gorm.DB, slug string, published bool) models.Category {
	t.Helper()
	c := models.Category{Title: slug, Slug: slug, IsPublished: published}
	require.NoError(t, db.Create(&c).Error)
	return c
}

type postOpt func(*models.Post)

func withCategory(c models.Category) postOpt {
	return func(p *models.Post) { p.CategoryID = &c.ID }
}

func unpublished() postOpt {
	return func(p *models.Post) { p.IsPublished = false }
}

func createPost(t *testing.T, db *gorm.DB, author models.User, pubDate time.Time, opts ...postOpt) models.Post {
	t.Helper()
	p := models.Post{
		Title:       "post",
		Text:        "body",
		PubDate:     pubDate,
		AuthorID:    author.ID,
		IsPublished: true,
	}
	for _, opt := range opts {
		opt(&p)
	}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func createComment(t *testing.T, db *gorm.DB, post models.Post, author models.User) models.Comment {
	t.Helper()
	c := models.Comment{Text: "comment", PostID: post.ID, AuthorID: author.ID}
	require.NoError(t, db.Create(&c).Error)
	return c
}

func viewerOf(u models.User) Viewer {
	return Viewer{UserID: u.ID, Username: u.Username}
}

func ids(posts []models.Post) []uint {
	out := make([]uint, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.ID)
	}
	return out
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func uintPtr(u uint) *uint { return &u }
