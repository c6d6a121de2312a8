package controllers

import (
	"blog-admin/internal/api"
	"github.com/gin-gonic/gin"
	"net/http"
	"time"
)

var startedAt = time.Now()

func GetHeartBeat(c *gin.Context) {
	c.AbortWithStatus(http.StatusOK)
}

// GetStatus reports that the API is up and for how long.
//
// @ID getStatus
// @Tags utility
// @Router /status [get]
// @Success 200 {object} api.RestJsonResponse
func GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, api.NewGenericResponse(api.Success, "running", gin.H{
		"startedAt": startedAt.UTC().Format(time.RFC3339),
		"uptime":    time.Since(startedAt).Round(time.Second).String(),
	}))
}
