package middleware

import "github.com/gin-gonic/gin"

// userIDKey is the key used to store the authenticated user's ID in the
// request context. Using a custom type prevents collisions.
const userIDKey = contextKey("userID")

// systemAdminKey stores the token's system-admin flag. It is advisory for
// handlers; the tenancy resolver re-checks the user row before authorizing.
const systemAdminKey = contextKey("systemAdmin")

// GetUserIDFromContext retrieves the authenticated user ID from the Gin
// context. It returns the user ID and a boolean indicating if it was found.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userIDVal, exists := c.Get(string(userIDKey))
	if !exists {
		// check in the request context as well
		userIDCtxVal := c.Request.Context().Value(userIDKey)
		if userIDCtxVal != nil {
			return userIDCtxVal.(string), true
		}
		return "", false
	}

	userID, ok := userIDVal.(string)
	if !ok {
		return "", false
	}

	return userID, true
}

// IsSystemAdminFromContext reports whether the authenticated token carried
// the system-admin flag.
func IsSystemAdminFromContext(c *gin.Context) bool {
	if v, exists := c.Get(string(systemAdminKey)); exists {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	if v, ok := c.Request.Context().Value(systemAdminKey).(bool); ok {
		return v
	}
	return false
}
