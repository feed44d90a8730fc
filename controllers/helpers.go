package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cppla/blogicum/config"
	"github.com/cppla/blogicum/middleware"
	"github.com/cppla/blogicum/services"
	"github.com/cppla/blogicum/utils"
)

// respondError maps a service error onto the response envelope. Unauthorized
// mutations arrive as services.ErrNotFound and are answered like missing records.
func respondError(ctx *gin.Context, err error, internalCode int, op string) {
	var verr *services.ValidationError
	switch {
	case errors.Is(err, services.ErrNotFound), errors.Is(err, services.ErrForbidden):
		utils.Error(ctx, http.StatusNotFound, 40400, "not found")
	case errors.Is(err, services.ErrUnauthenticated):
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
	case errors.As(err, &verr):
		utils.ErrorWithData(ctx, http.StatusBadRequest, 40020, "invalid request payload", gin.H{"fields": verr.Fields})
	default:
		utils.Logger.Error(op+" failed",
			zap.Error(err),
			zap.String("path", ctx.Request.URL.Path),
		)
		utils.Error(ctx, http.StatusInternalServerError, internalCode, op+" failed")
	}
}

// viewerFrom returns the identity set by the auth middlewares, or an anonymous viewer.
func viewerFrom(ctx *gin.Context) services.Viewer {
	value, exists := ctx.Get(middleware.ContextUserIDKey)
	if !exists {
		return services.Anonymous()
	}
	id, ok := value.(uint)
	if !ok {
		return services.Anonymous()
	}
	username, _ := ctx.Get(middleware.ContextUsernameKey)
	name, _ := username.(string)
	return services.Viewer{UserID: id, Username: name}
}

// pathID parses a numeric path parameter; malformed ids are answered as 404.
func pathID(ctx *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 64)
	if err != nil || id == 0 {
		utils.Error(ctx, http.StatusNotFound, 40400, "not found")
		return 0, false
	}
	return uint(id), true
}

func pageParam(ctx *gin.Context) int {
	if p, err := strconv.Atoi(ctx.Query("page")); err == nil && p > 0 {
		return p
	}
	return 1
}

func isAdminUsername(username string) bool {
	uname := strings.TrimSpace(username)
	if uname == "" {
		return false
	}
	for _, u := range config.Get().AdminUsernames {
		if strings.EqualFold(strings.TrimSpace(u), uname) {
			return true
		}
	}
	return false
}
