package controllers

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cppla/blogicum/models"
	"github.com/cppla/blogicum/services"
	"github.com/cppla/blogicum/utils"
)

// StatsController provides blog statistics such as counts and post views.
type StatsController struct {
	db    *gorm.DB
	query *services.QueryService
	now   func() time.Time
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(db *gorm.DB, now func() time.Time) *StatsController {
	if now == nil {
		now = time.Now
	}
	return &StatsController{db: db, query: services.NewQueryService(db), now: now}
}

// GetStats returns aggregate statistics. Only publicly visible posts are counted.
func (s *StatsController) GetStats(ctx *gin.Context) {
	var userCount, postCount, commentCount, categoryCount int64
	db := s.db.WithContext(ctx.Request.Context())

	// Fall back to 0 instead of failing the whole endpoint
	if err := db.Model(&models.User{}).Count(&userCount).Error; err != nil {
		userCount = 0
	}
	if err := db.Model(&models.Post{}).Scopes(services.PublishedScope(s.now())).Count(&postCount).Error; err != nil {
		postCount = 0
	}
	if err := db.Model(&models.Comment{}).Count(&commentCount).Error; err != nil {
		commentCount = 0
	}
	if err := db.Model(&models.Category{}).Where("is_published = ?", true).Count(&categoryCount).Error; err != nil {
		categoryCount = 0
	}

	utils.Success(ctx, gin.H{
		"user_count":     userCount,
		"post_count":     postCount,
		"comment_count":  commentCount,
		"category_count": categoryCount,
	})
}

// GetPostStats returns views and comment count for a post the viewer may see.
func (s *StatsController) GetPostStats(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	post, err := s.query.GetPost(ctx.Request.Context(), id, viewerFrom(ctx), s.now())
	if err != nil {
		respondError(ctx, err, 50060, "load post stats")
		return
	}

	var views int64
	if err := s.db.WithContext(ctx.Request.Context()).
		Model(&models.PageView{}).
		Where("post_id = ?", post.ID).
		Select("COALESCE(SUM(count),0)").
		Scan(&views).Error; err != nil {
		views = 0
	}

	utils.Success(ctx, gin.H{
		"views":          views,
		"comments_count": post.CommentCount,
	})
}
