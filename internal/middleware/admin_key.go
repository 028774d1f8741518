package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/recruit-backend/internal/response"
)

// AdminKeyHeader carries the shared admin key.
const AdminKeyHeader = "X-Admin-Key"

// AdminKey guards admin routes with a static shared key.
// An empty key disables the check.
func AdminKey(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" {
			c.Next()
			return
		}

		got := c.GetHeader(AdminKeyHeader)
		if got == "" {
			got = c.Query("admin_key") // EventSource cannot set headers
		}
		if got == "" {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrAdminKeyRequired)
			return
		}
		if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
			response.AbortFail(c, http.StatusForbidden, response.ErrForbidden)
			return
		}
		c.Next()
	}
}
