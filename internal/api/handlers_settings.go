package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/moonheart/banana-slides/internal/services"
)

func getSettingsHandler(svc services.SettingsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		settings, err := svc.Get(c.Request.Context())
		if err != nil {
			errorResponse(c, http.StatusInternalServerError, "GET_SETTINGS_ERROR",
				"Failed to get settings: "+err.Error())
			return
		}
		successResponse(c, settings, "")
	}
}

func updateSettingsHandler(svc services.SettingsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var fields map[string]any
		if err := c.ShouldBindJSON(&fields); err != nil || len(fields) == 0 {
			badRequest(c, "Request body is required")
			return
		}

		settings, err := svc.Update(c.Request.Context(), fields)
		if err != nil {
			var verr *services.ValidationError
			if errors.As(err, &verr) {
				badRequest(c, verr.Message)
				return
			}
			errorResponse(c, http.StatusInternalServerError, "UPDATE_SETTINGS_ERROR",
				"Failed to update settings: "+err.Error())
			return
		}
		successResponse(c, settings, "Settings updated successfully")
	}
}

func resetSettingsHandler(svc services.SettingsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		settings, err := svc.Reset(c.Request.Context())
		if err != nil {
			errorResponse(c, http.StatusInternalServerError, "RESET_SETTINGS_ERROR",
				"Failed to reset settings: "+err.Error())
			return
		}
		successResponse(c, settings, "Settings reset to defaults")
	}
}
