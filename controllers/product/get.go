package productcontroller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/boostbench/ecommerce-api/apperr"
	"github.com/boostbench/ecommerce-api/middleware"
	"github.com/boostbench/ecommerce-api/models"
)

func GetProduct(db *gorm.DB, id uint) (*models.Product, error) {
	var product models.Product
	err := db.Preload("Categories").Preload("Tags").First(&product, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.New(apperr.NotFound, "product not found with id %d", id)
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "failed to retrieve product")
	}
	return &product, nil
}

// GET /api/products/:id
func GetProductByID(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := middleware.ParamID(c, "id")
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		product, err := GetProduct(db.WithContext(c.Request.Context()), id)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, product)
	}
}
