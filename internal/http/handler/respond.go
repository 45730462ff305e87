package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/beverage/language-quiz-service/internal/apperr"
	"github.com/beverage/language-quiz-service/internal/http/dto"
	"github.com/beverage/language-quiz-service/internal/store"
)

// writeError translates err into the shared error envelope and the status
// code its apperr.Kind maps to. A bare store.ErrNotFound (the selector and
// store layers return it directly, not wrapped) is treated as not_found.
func writeError(c *gin.Context, err error) {
	if errors.Is(err, store.ErrNotFound) {
		err = apperr.NotFound("resource")
	}
	appErr := apperr.As(err)
	resp := dto.ErrorResponse{
		Error:   true,
		Code:    string(appErr.Kind),
		Message: appErr.Message,
		Details: appErr.Details,
	}
	c.AbortWithStatusJSON(appErr.Kind.StatusCode(), resp)
}
