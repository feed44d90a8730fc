package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cppla/blogicum/models"
	"github.com/cppla/blogicum/utils"
)

// CatalogController lists the published categories and locations a post can reference.
type CatalogController struct {
	db *gorm.DB
}

// NewCatalogController creates a new CatalogController instance.
func NewCatalogController(db *gorm.DB) *CatalogController {
	return &CatalogController{db: db}
}

// ListCategories returns published categories ordered by title.
func (c *CatalogController) ListCategories(ctx *gin.Context) {
	var categories []models.Category
	if err := c.db.WithContext(ctx.Request.Context()).
		Where("is_published = ?", true).
		Order("title ASC").
		Find(&categories).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to list categories")
		return
	}
	utils.Success(ctx, gin.H{"items": categories})
}

// ListLocations returns published locations ordered by name.
func (c *CatalogController) ListLocations(ctx *gin.Context) {
	var locations []models.Location
	if err := c.db.WithContext(ctx.Request.Context()).
		Where("is_published = ?", true).
		Order("name ASC").
		Find(&locations).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to list locations")
		return
	}
	utils.Success(ctx, gin.H{"items": locations})
}
