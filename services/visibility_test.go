package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/blogicum/models"
)

func TestIsPubliclyVisible(t *testing.T) {
	now := baseTime
	published := &models.Category{IsPublished: true}
	hidden := &models.Category{IsPublished: false}

	tests := []struct {
		name string
		post *models.Post
		want bool
	}{
		{"published past post", &models.Post{IsPublished: true, PubDate: now.Add(-time.Minute)}, true},
		{"published past post in published category", &models.Post{IsPublished: true, PubDate: now.Add(-time.Minute), Category: published}, true},
		{"unpublished post", &models.Post{IsPublished: false, PubDate: now.Add(-time.Hour)}, false},
		{"unpublished post in published category", &models.Post{IsPublished: false, PubDate: now.Add(-time.Hour), Category: published}, false},
		{"future post", &models.Post{IsPublished: true, PubDate: now.Add(time.Second)}, false},
		{"post dated exactly now", &models.Post{IsPublished: true, PubDate: now}, false},
		{"category unpublished", &models.Post{IsPublished: true, PubDate: now.Add(-time.Hour), Category: hidden}, false},
		{"nil post", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsPubliclyVisible(tt.post, now))
		})
	}
}

func TestIsPubliclyVisible_BecomesVisibleOncePubDatePasses(t *testing.T) {
	post := &models.Post{IsPublished: true, PubDate: baseTime}

	assert.False(t, IsPubliclyVisible(post, baseTime.Add(-time.Nanosecond)))
	assert.False(t, IsPubliclyVisible(post, baseTime))
	assert.True(t, IsPubliclyVisible(post, baseTime.Add(time.Nanosecond)))
}

func TestPublishedScope_MatchesPredicate(t *testing.T) {
	db := setupTestDB(t)
	author := createUser(t, db, "author")
	open := createCategory(t, db, "open", true)
	closed := createCategory(t, db, "closed", false)
	now := baseTime

	createPost(t, db, author, now.Add(-time.Hour))
	createPost(t, db, author, now.Add(-time.Hour), withCategory(open))
	createPost(t, db, author, now.Add(-time.Hour), withCategory(closed))
	createPost(t, db, author, now.Add(-time.Hour), unpublished())
	createPost(t, db, author, now)
	createPost(t, db, author, now.Add(time.Hour), withCategory(open))

	var all []models.Post
	require.NoError(t, db.Preload("Category").Order("id").Find(&all).Error)
	var want []uint
	for i := range all {
		if IsPubliclyVisible(&all[i], now) {
			want = append(want, all[i].ID)
		}
	}

	var got []models.Post
	require.NoError(t, db.WithContext(context.Background()).
		Select("posts.*").
		Scopes(PublishedScope(now)).
		Order("posts.id").
		Find(&got).Error)

	assert.Equal(t, want, ids(got))
	assert.Len(t, got, 2)
}
