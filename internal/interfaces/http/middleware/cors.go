package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tastyaana/tiffin/internal/shared/constants"
)

// Headers the delivery and subscription dashboards actually send.
var corsAllowedHeaders = strings.Join([]string{
	constants.HeaderContentType,
	"Accept",
	"Origin",
	"X-Requested-With",
	constants.HeaderXRequestID,
}, ", ")

// CORS restricts cross-origin access to the configured dashboard origins.
// Unknown origins get no CORS headers at all, so the browser blocks them.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if _, ok := allowed[origin]; ok {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Headers", corsAllowedHeaders)
			c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, OPTIONS")
			c.Header("Access-Control-Expose-Headers", constants.HeaderXRequestID)
			c.Header("Access-Control-Max-Age", "43200")
			c.Header("Vary", "Origin")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// SecurityHeaders sets the baseline response hardening headers. The API only
// serves JSON, so framing and MIME sniffing are both denied outright.
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Cache-Control", "no-store")

		c.Next()
	}
}
