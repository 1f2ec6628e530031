package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	productcontroller "github.com/boostbench/ecommerce-api/controllers/product"
	"github.com/boostbench/ecommerce-api/models"
)

// SetupProductRoutes registers the catalogue: products, categories and tags.
func SetupProductRoutes(rg *gin.RouterGroup, db *gorm.DB) {
	products := rg.Group("/products")
	{
		products.GET("", can(db, models.PermProductRead), productcontroller.GetProducts(db))
		products.GET("/export", can(db, models.PermProductUpdate), productcontroller.ExportProductsToExcel(db))
		products.POST("/import", can(db, models.PermProductCreate), productcontroller.ImportProductsFromExcel(db))
		products.GET("/:id", can(db, models.PermProductRead), productcontroller.GetProductByID(db))
		products.POST("", can(db, models.PermProductCreate), productcontroller.CreateProductHandler(db))
		products.PUT("/:id", can(db, models.PermProductUpdate), productcontroller.UpdateProductHandler(db))
		products.DELETE("/:id", can(db, models.PermProductDelete), productcontroller.DeleteProductHandler(db))
	}

	categories := rg.Group("/categories")
	{
		categories.GET("", can(db, models.PermCategoryRead), productcontroller.GetAllCategories(db))
		categories.GET("/:id", can(db, models.PermCategoryRead), productcontroller.GetCategoryByID(db))
		categories.POST("", can(db, models.PermCategoryCreate), productcontroller.CreateCategoryHandler(db))
		categories.PUT("/:id", can(db, models.PermCategoryCreate), productcontroller.UpdateCategoryHandler(db))
		categories.DELETE("/:id", can(db, models.PermCategoryCreate), productcontroller.DeleteCategoryHandler(db))
	}

	tags := rg.Group("/tags")
	{
		tags.GET("", can(db, models.PermTagRead), productcontroller.GetAllTags(db))
		tags.POST("", can(db, models.PermTagCreate), productcontroller.CreateTagHandler(db))
		tags.DELETE("/:id", can(db, models.PermTagCreate), productcontroller.DeleteTagHandler(db))
	}
}
