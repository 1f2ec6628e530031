package auth

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/boostbench/ecommerce-api/models"
	"github.com/boostbench/ecommerce-api/seed"
)

type GuestRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// CreateGuest stores a shopper with the USER role and no external identity.
func CreateGuest(db *gorm.DB, req GuestRequest) (*models.User, error) {
	role, err := seed.UserRole(db)
	if err != nil {
		return nil, err
	}
	user := models.User{
		ID:       "guest_" + generateRandomString(16),
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Provider: "guest",
		Roles:    []models.Role{*role},
	}
	if err := db.Omit("Roles.*").Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// POST /auth/guest
func CreateGuestUser(db *gorm.DB, issuer Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req GuestRequest
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
				return
			}
		}

		user, err := CreateGuest(db.WithContext(c.Request.Context()), req)
		if err != nil {
			zap.L().Error("create guest", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create guest"})
			return
		}

		token, expires, err := issuer.Issue(user.ID, models.RoleUser)
		if err != nil {
			zap.L().Error("sign guest token", zap.Error(err))
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

func generateRandomString(n int) string {
	bytes := make([]byte, n)
	if _, err := rand.Read(bytes); err != nil {
		panic(err)
	}
	return hex.EncodeToString(bytes)
}
