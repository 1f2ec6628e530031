package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	cartControllers "github.com/boostbench/ecommerce-api/controllers/cart"
	"github.com/boostbench/ecommerce-api/models"
)

func SetupCartRoutes(rg *gin.RouterGroup, db *gorm.DB) {
	cart := rg.Group("/cart")
	{
		cart.GET("", can(db, models.PermCartRead), cartControllers.GetUserCart(db))
		cart.POST("/items", can(db, models.PermCartModify), cartControllers.AddCartItem(db))
		cart.PUT("/items/:itemId", can(db, models.PermCartModify), cartControllers.UpdateCartItem(db))
		cart.DELETE("/items/:itemId", can(db, models.PermCartModify), cartControllers.DeleteCartItem(db))
		cart.DELETE("", can(db, models.PermCartModify), cartControllers.ClearUserCart(db))
	}
}
