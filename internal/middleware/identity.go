package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// CtxUserIDKey is the gin context key carrying the caller's user id.
const CtxUserIDKey = "user_id"

// UserIDHeader names the trusted header carrying the caller identity.
// Authentication happens upstream; this service only consumes the result.
const UserIDHeader = "X-User-ID"

// Identity extracts the caller's user id from the request headers and stores
// it on the gin context. Handlers reject requests without one.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID := strings.TrimSpace(c.GetHeader(UserIDHeader)); userID != "" {
			c.Set(CtxUserIDKey, userID)
		}
		c.Next()
	}
}
