package middleware

import "github.com/gin-gonic/gin"

// userIDKey is the key used to store the authenticated user's ID.
const userIDKey = contextKey("userID")

// firmIDKey is the key used to store the authenticated user's firm. Every
// data access below the handler layer is scoped by it.
const firmIDKey = contextKey("firmID")

// GetUserIDFromContext retrieves the authenticated user ID from the Gin
// context. It returns the user ID and whether it was found.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userIDVal := c.Request.Context().Value(userIDKey)
	if userIDVal == nil {
		return "", false
	}
	userID, ok := userIDVal.(string)
	if !ok {
		return "", false
	}
	return userID, true
}

// GetFirmIDFromContext retrieves the authenticated user's firm ID from the
// Gin context. It returns the firm ID and whether it was found.
func GetFirmIDFromContext(c *gin.Context) (string, bool) {
	firmIDVal := c.Request.Context().Value(firmIDKey)
	if firmIDVal == nil {
		return "", false
	}
	firmID, ok := firmIDVal.(string)
	if !ok {
		return "", false
	}
	return firmID, true
}
