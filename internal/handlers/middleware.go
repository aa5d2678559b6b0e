package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const deviceCtxKey = "device"

func (h *Handler) deviceMiddleware(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if header == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "missing Authorization header",
		})
		return
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "invalid Authorization header format",
		})
		return
	}

	device, err := h.services.ParseToken(parts[1])
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "invalid or expired token",
		})
		return
	}

	c.Set(deviceCtxKey, device)
	c.Next()
}

// deviceName returns the authenticated device, or "api" outside the middleware.
func deviceName(c *gin.Context) string {
	if d := c.GetString(deviceCtxKey); d != "" {
		return d
	}
	return "api"
}
