package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/boostbench/ecommerce-api/models"
)

// POST /auth/admin
//
// Issues a token for the bootstrap admin. Mounted behind
// middleware.ValidateAPIKey.
func AdminToken(db *gorm.DB, issuer Issuer, adminUserID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var user models.User
		if err := db.WithContext(c.Request.Context()).First(&user, "id = ?", adminUserID).Error; err != nil {
			zap.L().Warn("admin token requested for unknown admin", zap.Error(err))
			c.JSON(http.StatusNotFound, gin.H{"error": "Admin not found"})
			return
		}

		token, expires, err := issuer.Issue(user.ID, models.RoleAdmin)
		if err != nil {
			zap.L().Error("sign admin token", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Token generation failed"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"user_id":    user.ID,
			"token":      token,
			"expires_at": expires,
		})
	}
}
