package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	userControllers "github.com/boostbench/ecommerce-api/controllers/user"
)

// SetupUserRoutes registers the caller's own profile. Any valid token will do.
func SetupUserRoutes(rg *gin.RouterGroup, db *gorm.DB) {
	me := rg.Group("/users/me")
	{
		me.GET("", userControllers.GetMe(db))
		me.PUT("", userControllers.UpdateMe(db))
	}
}
