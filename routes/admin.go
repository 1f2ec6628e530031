package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	cartControllers "github.com/boostbench/ecommerce-api/controllers/cart"
	userControllers "github.com/boostbench/ecommerce-api/controllers/user"
	"github.com/boostbench/ecommerce-api/models"
)

// SetupAdminRoutes registers the support views over other users' data.
func SetupAdminRoutes(rg *gin.RouterGroup, db *gorm.DB) {
	rg.GET("/users", can(db, models.PermUserRead), userControllers.GetAllUsers(db))

	admin := rg.Group("/admin", can(db, models.PermUserRead))
	{
		admin.GET("/carts/:userId", cartControllers.GetAdminUserCart(db))
	}
}
