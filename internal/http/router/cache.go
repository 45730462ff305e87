package router

import (
	"github.com/gin-gonic/gin"

	"github.com/beverage/language-quiz-service/internal/http/handler"
	"github.com/beverage/language-quiz-service/internal/middleware"
	"github.com/beverage/language-quiz-service/internal/model"
)

func CacheRouter(rg *gin.RouterGroup, h *handler.CacheHandler) {
	rg.GET("/stats", middleware.RequirePermission(model.PermissionAdmin), h.Stats)
	rg.POST("/reload", middleware.RequirePermission(model.PermissionAdmin), h.Reload)
}
