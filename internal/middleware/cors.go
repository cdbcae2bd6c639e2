package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// corsMethods lists the methods the API serves across its route groups.
const corsMethods = "GET, POST, PUT, PATCH, DELETE"

// CORSMiddleware returns a Gin middleware that permits cross-origin requests
// from the configured frontend origin only. Requests from other origins get no
// CORS headers and are left to the browser to block.
func CORSMiddleware(allowedOrigin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if origin := c.GetHeader("Origin"); origin != "" && origin == allowedOrigin {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Vary", "Origin")
		}

		if c.Request.Method == http.MethodOptions {
			c.Header("Access-Control-Allow-Methods", corsMethods)
			c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
			c.Header("Access-Control-Max-Age", "3600")
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
