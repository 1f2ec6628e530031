package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/boostbench/ecommerce-api/apperr"
)

const (
	UserIDKey = "user_id"
	UserKey   = "user"
)

// RequireUserID returns the authenticated user id, writing a 401 when the
// request never went through ValidateToken.
func RequireUserID(c *gin.Context) (string, bool) {
	userID := c.GetString(UserIDKey)
	if userID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return "", false
	}
	return userID, true
}

// ParamID parses a positive numeric path parameter.
func ParamID(c *gin.Context, name string) (uint, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.New(apperr.InvalidArgument, "invalid %s: %q", name, raw)
	}
	return uint(id), nil
}
