package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/cppla/blogicum/models"
)

const maxTitleLength = 256

// PostInput carries the user-editable fields of a post. Nil fields are left
// unchanged on update and take their defaults on create. A CategoryID or
// LocationID pointing at 0 clears the relation.
type PostInput struct {
	Title       *string
	Text        *string
	PubDate     *time.Time
	CategoryID  *uint
	LocationID  *uint
	IsPublished *bool
}

// MutationService creates, edits and removes posts and comments on behalf of their authors.
type MutationService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewMutationService creates a MutationService. now supplies creation timestamps.
func NewMutationService(db *gorm.DB, now func() time.Time) *MutationService {
	if now == nil {
		now = time.Now
	}
	return &MutationService{db: db, now: now}
}

// CreatePost stores a new post authored by actor.
func (m *MutationService) CreatePost(ctx context.Context, in PostInput, actor Viewer) (*models.Post, error) {
	if actor.IsAnonymous() {
		return nil, ErrUnauthenticated
	}
	post := models.Post{
		AuthorID:    actor.UserID,
		PubDate:     m.now(),
		IsPublished: true,
	}
	if in.Title == nil {
		in.Title = new(string)
	}
	if in.Text == nil {
		in.Text = new(string)
	}

	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := applyPostInput(tx, &post, in); err != nil {
			return err
		}
		if err := tx.Create(&post).Error; err != nil {
			return fmt.Errorf("create post: %w", err)
		}
		return reloadPost(tx, &post)
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// EditablePost returns the post only to its author, for prefilling an edit form.
func (m *MutationService) EditablePost(ctx context.Context, id uint, actor Viewer) (*models.Post, error) {
	if actor.IsAnonymous() {
		return nil, ErrUnauthenticated
	}
	var post models.Post
	if err := m.db.WithContext(ctx).First(&post, id).Error; err != nil {
		return nil, notFoundOr(err, "load post")
	}
	if err := AssertOwner(post.AuthorID, actor); err != nil {
		return nil, hideForbidden(err)
	}
	return &post, nil
}

// UpdatePost applies in to the post when actor is its author. The author never changes.
func (m *MutationService) UpdatePost(ctx context.Context, id uint, in PostInput, actor Viewer) (*models.Post, error) {
	if actor.IsAnonymous() {
		return nil, ErrUnauthenticated
	}
	var post models.Post
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&post, id).Error; err != nil {
			return notFoundOr(err, "load post")
		}
		if err := AssertOwner(post.AuthorID, actor); err != nil {
			return hideForbidden(err)
		}
		author := post.AuthorID
		if err := applyPostInput(tx, &post, in); err != nil {
			return err
		}
		post.AuthorID = author
		// Drop stale associations so Save writes the foreign keys as set.
		post.Category, post.Location = nil, nil
		if err := tx.Save(&post).Error; err != nil {
			return fmt.Errorf("update post: %w", err)
		}
		return reloadPost(tx, &post)
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// DeletePost removes the post and every comment attached to it.
func (m *MutationService) DeletePost(ctx context.Context, id uint, actor Viewer) error {
	if actor.IsAnonymous() {
		return ErrUnauthenticated
	}
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.First(&post, id).Error; err != nil {
			return notFoundOr(err, "load post")
		}
		if err := AssertOwner(post.AuthorID, actor); err != nil {
			return hideForbidden(err)
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Comment{}).Error; err != nil {
			return fmt.Errorf("delete comments: %w", err)
		}
		if err := tx.Delete(&post).Error; err != nil {
			return fmt.Errorf("delete post: %w", err)
		}
		return nil
	})
}

// CreateComment attaches a comment by actor to an existing post.
func (m *MutationService) CreateComment(ctx context.Context, postID uint, text string, actor Viewer) (*models.Comment, error) {
	if actor.IsAnonymous() {
		return nil, ErrUnauthenticated
	}
	if err := validateCommentText(text); err != nil {
		return nil, err
	}
	comment := models.Comment{
		Text:      text,
		PostID:    postID,
		AuthorID:  actor.UserID,
		CreatedAt: m.now(),
	}
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Select("id").First(&post, postID).Error; err != nil {
			return notFoundOr(err, "load post")
		}
		if err := tx.Create(&comment).Error; err != nil {
			return fmt.Errorf("create comment: %w", err)
		}
		return tx.Preload("Author").First(&comment, comment.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// UpdateComment changes the text of a comment that belongs to postID and actor.
func (m *MutationService) UpdateComment(ctx context.Context, postID, commentID uint, text string, actor Viewer) (*models.Comment, error) {
	if actor.IsAnonymous() {
		return nil, ErrUnauthenticated
	}
	if err := validateCommentText(text); err != nil {
		return nil, err
	}
	var comment models.Comment
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := m.ownedComment(tx, postID, commentID, actor, &comment); err != nil {
			return err
		}
		comment.Text = text
		if err := tx.Model(&comment).Update("text", text).Error; err != nil {
			return fmt.Errorf("update comment: %w", err)
		}
		return tx.Preload("Author").First(&comment, comment.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// DeleteComment removes a comment that belongs to postID and actor.
func (m *MutationService) DeleteComment(ctx context.Context, postID, commentID uint, actor Viewer) error {
	if actor.IsAnonymous() {
		return ErrUnauthenticated
	}
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var comment models.Comment
		if err := m.ownedComment(tx, postID, commentID, actor, &comment); err != nil {
			return err
		}
		if err := tx.Delete(&comment).Error; err != nil {
			return fmt.Errorf("delete comment: %w", err)
		}
		return nil
	})
}

func (m *MutationService) ownedComment(tx *gorm.DB, postID, commentID uint, actor Viewer, out *models.Comment) error {
	if err := tx.Where("id = ? AND post_id = ?", commentID, postID).First(out).Error; err != nil {
		return notFoundOr(err, "load comment")
	}
	return hideForbidden(AssertOwner(out.AuthorID, actor))
}

// reloadPost replaces post with the stored row and its author, category and location.
func reloadPost(tx *gorm.DB, post *models.Post) error {
	var fresh models.Post
	err := tx.Preload("Author").Preload("Category").Preload("Location").
		First(&fresh, post.ID).Error
	if err != nil {
		return fmt.Errorf("reload post: %w", err)
	}
	*post = fresh
	return nil
}

// applyPostInput validates in and copies it onto post.
func applyPostInput(tx *gorm.DB, post *models.Post, in PostInput) error {
	verr := &ValidationError{}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		switch {
		case title == "":
			verr.add("title", "this field is required")
		case utf8.RuneCountInString(title) > maxTitleLength:
			verr.add("title", fmt.Sprintf("ensure this value has at most %d characters", maxTitleLength))
		default:
			post.Title = title
		}
	}
	if in.Text != nil {
		if strings.TrimSpace(*in.Text) == "" {
			verr.add("text", "this field is required")
		} else {
			post.Text = *in.Text
		}
	}
	if in.PubDate != nil {
		if in.PubDate.IsZero() {
			verr.add("pub_date", "enter a valid date/time")
		} else {
			post.PubDate = *in.PubDate
		}
	}
	if in.IsPublished != nil {
		post.IsPublished = *in.IsPublished
	}
	if in.CategoryID != nil {
		id, err := resolveRef(tx, &models.Category{}, *in.CategoryID)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				return err
			}
			verr.add("category", "select a valid choice")
		} else {
			post.CategoryID = id
		}
	}
	if in.LocationID != nil {
		id, err := resolveRef(tx, &models.Location{}, *in.LocationID)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				return err
			}
			verr.add("location", "select a valid choice")
		} else {
			post.LocationID = id
		}
	}
	return verr.orNil()
}

// resolveRef checks that a referenced row exists. An id of 0 clears the reference.
func resolveRef(tx *gorm.DB, model interface{}, id uint) (*uint, error) {
	if id == 0 {
		return nil, nil
	}
	var n int64
	if err := tx.Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
		return nil, fmt.Errorf("resolve reference: %w", err)
	}
	if n == 0 {
		return nil, ErrNotFound
	}
	return &id, nil
}

func validateCommentText(text string) error {
	if strings.TrimSpace(text) == "" {
		return &ValidationError{Fields: map[string]string{"text": "this field is required"}}
	}
	return nil
}
