package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cppla/blogicum/services"
	"github.com/cppla/blogicum/utils"
)

// PostController exposes post listings and post/comment CRUD.
type PostController struct {
	query    *services.QueryService
	mutation *services.MutationService
	now      func() time.Time
}

// NewPostController creates a new PostController instance. now is the clock used for visibility checks.
func NewPostController(db *gorm.DB, now func() time.Time) *PostController {
	if now == nil {
		now = time.Now
	}
	return &PostController{
		query:    services.NewQueryService(db),
		mutation: services.NewMutationService(db, now),
		now:      now,
	}
}

type postRequest struct {
	Title       *string    `json:"title"`
	Text        *string    `json:"text"`
	PubDate     *time.Time `json:"pub_date"`
	CategoryID  *uint      `json:"category_id"`
	LocationID  *uint      `json:"location_id"`
	IsPublished *bool      `json:"is_published"`
}

func (r postRequest) input() services.PostInput {
	in := services.PostInput{
		PubDate:     r.PubDate,
		CategoryID:  r.CategoryID,
		LocationID:  r.LocationID,
		IsPublished: r.IsPublished,
	}
	if r.Title != nil {
		title := utils.SanitizePlain(*r.Title)
		in.Title = &title
	}
	if r.Text != nil {
		text := utils.Sanitize(*r.Text)
		in.Text = &text
	}
	return in
}

type commentRequest struct {
	Text string `json:"text" binding:"required"`
}

// ListPosts returns the public feed.
func (p *PostController) ListPosts(ctx *gin.Context) {
	page, err := p.query.ListAll(ctx.Request.Context(), p.now(), pageParam(ctx))
	if err != nil {
		respondError(ctx, err, 50020, "list posts")
		return
	}
	utils.Success(ctx, page)
}

// CategoryPosts returns the visible posts of a published category.
func (p *PostController) CategoryPosts(ctx *gin.Context) {
	page, category, err := p.query.ListByCategory(ctx.Request.Context(), ctx.Param("slug"), p.now(), pageParam(ctx))
	if err != nil {
		respondError(ctx, err, 50021, "list category posts")
		return
	}
	utils.Success(ctx, gin.H{"category": category, "page_obj": page})
}

// Profile returns a user's public profile with their posts. Owners also see hidden posts.
func (p *PostController) Profile(ctx *gin.Context) {
	page, user, err := p.query.ListByAuthor(ctx.Request.Context(), ctx.Param("username"), viewerFrom(ctx), p.now(), pageParam(ctx))
	if err != nil {
		respondError(ctx, err, 50022, "list profile posts")
		return
	}
	utils.Success(ctx, gin.H{"profile": publicUser(*user), "page_obj": page})
}

// GetPost returns a single post with its comments.
func (p *PostController) GetPost(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	post, err := p.query.GetPost(ctx.Request.Context(), id, viewerFrom(ctx), p.now())
	if err != nil {
		respondError(ctx, err, 50023, "load post")
		return
	}
	utils.Success(ctx, gin.H{"post": post})
}

// CreatePost publishes a post authored by the current user.
func (p *PostController) CreatePost(ctx *gin.Context) {
	var req postRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40021, "invalid request payload")
		return
	}
	viewer := viewerFrom(ctx)
	post, err := p.mutation.CreatePost(ctx.Request.Context(), req.input(), viewer)
	if err != nil {
		respondError(ctx, err, 50024, "create post")
		return
	}
	utils.Success(ctx, gin.H{"post": post, "redirect": "/profile/" + viewer.Username})
}

// EditPost returns the editable fields of a post to its author.
func (p *PostController) EditPost(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	post, err := p.mutation.EditablePost(ctx.Request.Context(), id, viewerFrom(ctx))
	if err != nil {
		respondError(ctx, err, 50025, "load post")
		return
	}
	utils.Success(ctx, gin.H{"post": post})
}

// UpdatePost lets the author change their post. PUT replaces title and text, PATCH may omit them.
func (p *PostController) UpdatePost(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req postRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40022, "invalid request payload")
		return
	}
	if ctx.Request.Method == http.MethodPut {
		if req.Title == nil {
			req.Title = new(string)
		}
		if req.Text == nil {
			req.Text = new(string)
		}
	}
	post, err := p.mutation.UpdatePost(ctx.Request.Context(), id, req.input(), viewerFrom(ctx))
	if err != nil {
		respondError(ctx, err, 50026, "update post")
		return
	}
	utils.Success(ctx, gin.H{"post": post, "redirect": "/posts/" + ctx.Param("id")})
}

// DeletePost lets the author remove their post together with its comments.
func (p *PostController) DeletePost(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	viewer := viewerFrom(ctx)
	if err := p.mutation.DeletePost(ctx.Request.Context(), id, viewer); err != nil {
		respondError(ctx, err, 50027, "delete post")
		return
	}
	utils.Success(ctx, gin.H{"message": "post deleted", "redirect": "/profile/" + viewer.Username})
}

// CreateComment adds a comment by the current user.
func (p *PostController) CreateComment(ctx *gin.Context) {
	postID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req commentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40023, "invalid request payload")
		return
	}
	comment, err := p.mutation.CreateComment(ctx.Request.Context(), postID, utils.Sanitize(req.Text), viewerFrom(ctx))
	if err != nil {
		respondError(ctx, err, 50028, "create comment")
		return
	}
	utils.Success(ctx, gin.H{"comment": comment})
}

// UpdateComment lets the author edit their comment.
func (p *PostController) UpdateComment(ctx *gin.Context) {
	postID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	commentID, ok := pathID(ctx, "comment_id")
	if !ok {
		return
	}
	var req commentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40024, "invalid request payload")
		return
	}
	comment, err := p.mutation.UpdateComment(ctx.Request.Context(), postID, commentID, utils.Sanitize(req.Text), viewerFrom(ctx))
	if err != nil {
		respondError(ctx, err, 50029, "update comment")
		return
	}
	utils.Success(ctx, gin.H{"comment": comment})
}

// DeleteComment lets the author remove their comment.
func (p *PostController) DeleteComment(ctx *gin.Context) {
	postID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	commentID, ok := pathID(ctx, "comment_id")
	if !ok {
		return
	}
	if err := p.mutation.DeleteComment(ctx.Request.Context(), postID, commentID, viewerFrom(ctx)); err != nil {
		respondError(ctx, err, 50030, "delete comment")
		return
	}
	utils.Success(ctx, gin.H{"message": "comment deleted"})
}
