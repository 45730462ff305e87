package router

import (
	"github.com/gin-gonic/gin"

	"github.com/beverage/language-quiz-service/internal/http/handler"
	"github.com/beverage/language-quiz-service/internal/middleware"
	"github.com/beverage/language-quiz-service/internal/model"
)

func GenerationRequestRouter(rg *gin.RouterGroup, h *handler.GenerationRequestHandler) {
	rg.GET("", middleware.RequirePermission(model.PermissionAdmin), h.List)
	rg.GET("/:id", middleware.RequirePermission(model.PermissionRead), h.GetByID)
}
