package productcontroller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/boostbench/ecommerce-api/apperr"
	"github.com/boostbench/ecommerce-api/middleware"
	"github.com/boostbench/ecommerce-api/models"
)

// DeleteProduct soft-deletes the product. Order lines keep pointing at it
// and settlement still finds it; it only disappears from the catalogue and
// can no longer be added to a cart.
func DeleteProduct(db *gorm.DB, id uint) error {
	result := db.Delete(&models.Product{}, id)
	if result.Error != nil {
		return apperr.Wrap(apperr.Internal, result.Error, "failed to delete product")
	}
	if result.RowsAffected == 0 {
		return apperr.New(apperr.NotFound, "product not found with id %d", id)
	}
	return nil
}

// DELETE /api/products/:id
func DeleteProductHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := middleware.ParamID(c, "id")
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		if err := DeleteProduct(db.WithContext(c.Request.Context()), id); err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
	}
}
