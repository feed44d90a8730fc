package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/cppla/blogicum/config"
	"github.com/cppla/blogicum/utils"
)

// PagesController serves the configured static pages.
type PagesController struct{}

func NewPagesController() *PagesController { return &PagesController{} }

// About returns the about page content.
func (p *PagesController) About(ctx *gin.Context) {
	cfg := config.Get()
	utils.Success(ctx, gin.H{"title": cfg.AboutTitle, "html": cfg.AboutHTML})
}

// Rules returns the community rules page content.
func (p *PagesController) Rules(ctx *gin.Context) {
	cfg := config.Get()
	utils.Success(ctx, gin.H{"title": cfg.RulesTitle, "html": cfg.RulesHTML})
}
