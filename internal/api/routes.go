package api

import (
	"github.com/gin-gonic/gin"

	"github.com/moonheart/banana-slides/internal/services"
)

func SetupRoutes(router *gin.Engine, settings services.SettingsService) {
	router.GET("/health", healthHandler)

	api := router.Group("/api")
	{
		group := api.Group("/settings")
		group.GET("/", getSettingsHandler(settings))
		group.PUT("/", updateSettingsHandler(settings))
		group.POST("/reset", resetSettingsHandler(settings))
	}
}

func healthHandler(c *gin.Context) {
	c.JSON(200, gin.H{
		"status":  "ok",
		"service": "banana-api",
	})
}
