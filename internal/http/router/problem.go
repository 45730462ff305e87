package router

import (
	"github.com/gin-gonic/gin"

	"github.com/beverage/language-quiz-service/internal/http/handler"
	"github.com/beverage/language-quiz-service/internal/middleware"
	"github.com/beverage/language-quiz-service/internal/model"
)

func ProblemRouter(rg *gin.RouterGroup, h *handler.ProblemHandler) {
	rg.GET("/random", middleware.RequirePermission(model.PermissionRead), h.Random)
	rg.GET("/:id", middleware.RequirePermission(model.PermissionRead), h.GetByID)
	rg.POST("/generate", middleware.RequirePermission(model.PermissionWrite), h.Generate)
}
