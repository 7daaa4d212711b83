package handlers

import (
	"net/http"

	"fundi/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondOK writes the uniform success envelope.
func respondOK(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, gin.H{
		"success": true,
		"message": message,
		"data":    data,
	})
}

// respondError translates a service error into the failure envelope.
// Non-taxonomy errors are logged and reported as internal.
func respondError(c *gin.Context, err error) {
	status := utils.HTTPStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		getLogger(c).Error("request failed", zap.Error(err))
		message = "internal server error"
	}
	c.JSON(status, gin.H{
		"success": false,
		"message": message,
	})
}
