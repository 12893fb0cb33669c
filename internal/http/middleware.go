package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// SecurityHeadersMiddleware adds security headers to all responses.
// The API serves JSON only, so the content policy forbids everything.
func SecurityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Referrer-Policy", "no-referrer")
		c.Header("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")

		// HSTS only when the request came over HTTPS
		if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}

// readOnlyAllowed lists the non-GET routes that never write.
var readOnlyAllowed = []string{
	"/api/mappings/apply",
	"/api/categories/reconcile",
}

// ReadOnlyMiddleware rejects write requests with 403 when enabled.
// GET, HEAD and OPTIONS always pass, as do the preview endpoints.
func ReadOnlyMiddleware(enabled bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !enabled {
			c.Next()
			return
		}

		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		for _, allowed := range readOnlyAllowed {
			if strings.HasPrefix(c.Request.URL.Path, allowed) {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
			Error:   "server is running in read-only mode",
			Details: gin.H{"read_only": true},
		})
	}
}
