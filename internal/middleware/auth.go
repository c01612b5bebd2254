package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// AdminKeyAuth returns middleware that requires a valid admin key for access.
// If adminKey is empty, all requests are allowed (backwards compatible for local dev).
// The key should be provided in the Authorization header as "Bearer <key>".
func AdminKeyAuth(adminKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// If no admin key is configured, allow all requests
		if adminKey == "" {
			c.Next()
			return
		}

		providedKey, errCode := extractBearerKey(c)
		if errCode != "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": errMessage(errCode),
				"code":  errCode,
			})
			return
		}

		// Constant-time comparison to prevent timing attacks
		if subtle.ConstantTimeCompare([]byte(providedKey), []byte(adminKey)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid admin key",
				"code":  "AUTH_INVALID_KEY",
			})
			return
		}

		c.Next()
	}
}

// VerifyAdminKey returns a handler that verifies if the provided admin key is
// valid. Used by clients to check if their stored key is still valid.
func VerifyAdminKey(adminKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// If no admin key is configured, auth is disabled
		if adminKey == "" {
			c.JSON(http.StatusOK, gin.H{
				"valid":        true,
				"auth_enabled": false,
				"message":      "Authentication is not configured",
			})
			return
		}

		providedKey, errCode := extractBearerKey(c)
		if errCode != "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"valid": false,
				"error": errMessage(errCode),
				"code":  errCode,
			})
			return
		}

		if subtle.ConstantTimeCompare([]byte(providedKey), []byte(adminKey)) != 1 {
			c.JSON(http.StatusUnauthorized, gin.H{
				"valid": false,
				"error": "Invalid admin key",
				"code":  "AUTH_INVALID_KEY",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"valid":        true,
			"auth_enabled": true,
		})
	}
}

// GetAuthStatus returns a public handler reporting whether admin
// authentication is enabled.
func GetAuthStatus(adminKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"auth_enabled": adminKey != "",
		})
	}
}

// extractBearerKey pulls the key out of "Authorization: Bearer <key>".
// The second return value is an error code, or empty on success.
func extractBearerKey(c *gin.Context) (string, string) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", "AUTH_REQUIRED"
	}

	// Expect "Bearer <token>" format
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", "AUTH_INVALID_FORMAT"
	}
	return parts[1], ""
}

func errMessage(code string) string {
	switch code {
	case "AUTH_REQUIRED":
		return "Authorization header required"
	case "AUTH_INVALID_FORMAT":
		return "Invalid authorization format. Use: Bearer <admin_key>"
	default:
		return "Unauthorized"
	}
}
