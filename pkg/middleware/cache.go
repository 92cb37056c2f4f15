package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// NoStore marks API responses as uncacheable. Progress data is per learner and changes often.
func NoStore(prefix string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, prefix) {
			h := c.Writer.Header()
			h.Set("Cache-Control", "no-cache, no-store, must-revalidate")
			h.Set("Pragma", "no-cache")
			h.Set("Expires", "0")
		}
		c.Next()
	}
}
