package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/cppla/blogicum/models"
)

// PageSize is the fixed number of posts per listing page.
const PageSize = 10

// Page is one slice of an ordered post listing.
type Page struct {
	Items      []models.Post `json:"items"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	Total      int64         `json:"total"`
	TotalPages int           `json:"total_pages"`
}

// QueryService resolves post listings and single posts for a viewer.
type QueryService struct {
	db *gorm.DB
}

// NewQueryService creates a QueryService backed by db.
func NewQueryService(db *gorm.DB) *QueryService {
	return &QueryService{db: db}
}

// ListAll returns publicly visible posts, newest first.
func (q *QueryService) ListAll(ctx context.Context, now time.Time, page int) (Page, error) {
	return q.paginate(ctx, PublishedScope(now), page)
}

// ListByCategory returns the visible posts of a published category.
func (q *QueryService) ListByCategory(ctx context.Context, slug string, now time.Time, page int) (Page, *models.Category, error) {
	var category models.Category
	err := q.db.WithContext(ctx).
		Where("slug = ? AND is_published = ?", slug, true).
		First(&category).Error
	if err != nil {
		return Page{}, nil, notFoundOr(err, "load category")
	}

	res, err := q.paginate(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Scopes(PublishedScope(now)).Where("posts.category_id = ?", category.ID)
	}, page)
	if err != nil {
		return Page{}, nil, err
	}
	return res, &category, nil
}

// ListByAuthor returns the posts of the user named username. The author sees all
// of their own posts; everybody else only the visible ones.
func (q *QueryService) ListByAuthor(ctx context.Context, username string, viewer Viewer, now time.Time, page int) (Page, *models.User, error) {
	var user models.User
	if err := q.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return Page{}, nil, notFoundOr(err, "load user")
	}

	ownPosts := viewer.Is(user.ID)
	res, err := q.paginate(ctx, func(db *gorm.DB) *gorm.DB {
		if !ownPosts {
			db = db.Scopes(PublishedScope(now))
		}
		return db.Where("posts.author_id = ?", user.ID)
	}, page)
	if err != nil {
		return Page{}, nil, err
	}
	return res, &user, nil
}

// GetPost returns a post with its comments when it is visible or owned by viewer.
func (q *QueryService) GetPost(ctx context.Context, id uint, viewer Viewer, now time.Time) (*models.Post, error) {
	var post models.Post
	err := q.annotated(ctx).
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("comments.created_at ASC").Order("comments.id ASC")
		}).
		Preload("Comments.Author").
		Where("posts.id = ?", id).
		Take(&post).Error
	if err != nil {
		return nil, notFoundOr(err, "load post")
	}
	if !IsPubliclyVisible(&post, now) && !viewer.Is(post.AuthorID) {
		return nil, ErrNotFound
	}
	return &post, nil
}

// annotated selects posts with their comment_count, computed by one grouped join.
func (q *QueryService) annotated(ctx context.Context) *gorm.DB {
	return q.db.WithContext(ctx).
		Model(&models.Post{}).
		Select("posts.*, COALESCE(cc.comment_count, 0) AS comment_count").
		Joins("LEFT JOIN (SELECT post_id, COUNT(*) AS comment_count FROM comments GROUP BY post_id) cc ON cc.post_id = posts.id").
		Preload("Author").
		Preload("Category").
		Preload("Location")
}

func (q *QueryService) paginate(ctx context.Context, scope func(*gorm.DB) *gorm.DB, page int) (Page, error) {
	if page < 1 {
		page = 1
	}
	res := Page{Items: []models.Post{}, Page: page, PageSize: PageSize}

	if err := q.db.WithContext(ctx).Model(&models.Post{}).Scopes(scope).Count(&res.Total).Error; err != nil {
		return Page{}, fmt.Errorf("count posts: %w", err)
	}
	res.TotalPages = int((res.Total + PageSize - 1) / PageSize)
	// Compare page numbers before any offset math so huge pages cannot wrap.
	if page > res.TotalPages {
		return res, nil
	}

	err := q.annotated(ctx).
		Scopes(scope).
		Order("posts.pub_date DESC").
		Order("posts.id DESC").
		Offset((page - 1) * PageSize).
		Limit(PageSize).
		Find(&res.Items).Error
	if err != nil {
		return Page{}, fmt.Errorf("list posts: %w", err)
	}
	return res, nil
}

func notFoundOr(err error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
