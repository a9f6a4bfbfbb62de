package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// successResponse wraps data in the standard success envelope.
func successResponse(c *gin.Context, data any, message string) {
	body := gin.H{
		"success": true,
		"data":    data,
	}
	if message != "" {
		body["message"] = message
	}
	c.JSON(http.StatusOK, body)
}

// errorResponse writes the standard error envelope with a machine-readable
// code and a human-readable message.
func errorResponse(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

func badRequest(c *gin.Context, message string) {
	errorResponse(c, http.StatusBadRequest, "BAD_REQUEST", message)
}
