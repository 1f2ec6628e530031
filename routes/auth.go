package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/boostbench/ecommerce-api/auth"
	"github.com/boostbench/ecommerce-api/middleware"
)

// SetupAuthRoutes registers the unauthenticated /auth endpoints.
func SetupAuthRoutes(r *gin.Engine, db *gorm.DB, d Deps) {
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/guest", auth.CreateGuestUser(db, d.Issuer))
		authGroup.POST("/admin", middleware.ValidateAPIKey(d.AdminAPIKey), auth.AdminToken(db, d.Issuer, d.AdminUserID))
	}
}
