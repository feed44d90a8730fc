package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cppla/blogicum/models"
	"github.com/cppla/blogicum/utils"
)

// PostDetailRoute is the route whose successful hits are counted as post views.
const PostDetailRoute = "/posts/:id"

// PageViewRecorder counts successful post detail views per day and post.
func PageViewRecorder(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Request.Method != http.MethodGet || c.FullPath() != PostDetailRoute {
			return
		}
		if status := c.Writer.Status(); status < 200 || status >= 300 {
			return
		}
		postID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			return
		}

		now := time.Now()
		midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

		// Atomic upsert to avoid duplicate key errors under concurrency
		err = db.WithContext(c.Request.Context()).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "date"}, {Name: "post_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"count": gorm.Expr("count + 1"), "updated_at": now}),
		}).Create(&models.PageView{Date: midnight, PostID: uint(postID), Count: 1}).Error
		if err != nil {
			utils.Sugar.Warnf("record page view failed post=%d err=%v", postID, err)
		}
	}
}
