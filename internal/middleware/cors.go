package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// CORS answers cross-origin requests from the POS front-ends.
// An empty list or "*" allows any origin; otherwise the request Origin is
// echoed back only when listed.
func CORS(origins []string) gin.HandlerFunc {
	permitidos := make(map[string]struct{}, len(origins))
	todos := false
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o == "*" {
			todos = true
		}
		if o != "" {
			permitidos[o] = struct{}{}
		}
	}
	todos = todos || len(permitidos) == 0

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		switch {
		case todos:
			c.Header("Access-Control-Allow-Origin", "*")
		case origin != "":
			c.Header("Vary", "Origin")
			if _, ok := permitidos[origin]; ok {
				c.Header("Access-Control-Allow-Origin", origin)
			}
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Request-ID")
		c.Header("Access-Control-Expose-Headers", "X-Request-ID")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
