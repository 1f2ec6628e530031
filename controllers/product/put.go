package productcontroller

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/boostbench/ecommerce-api/apperr"
	"github.com/boostbench/ecommerce-api/middleware"
	"github.com/boostbench/ecommerce-api/models"
)

// UpdateProduct overwrites the catalogue fields and stock counters. The
// row is locked and its version bumped so an in-flight settlement that read
// the old counters fails instead of overwriting the restock.
func UpdateProduct(db *gorm.DB, id uint, in ProductInput) (*models.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		var product models.Product
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&product, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.NotFound, "product not found with id %d", id)
		}
		if err != nil {
			return apperr.Wrap(apperr.Internal, err, "failed to retrieve product")
		}

		available := product.AvailableQuantity
		if in.AvailableQuantity != nil {
			available = *in.AvailableQuantity
		}
		if err := tx.Model(&product).Updates(map[string]interface{}{
			"name":               strings.TrimSpace(in.Name),
			"description":        in.Description,
			"price":              in.Price,
			"discount":           in.discount(),
			"quantity":           in.Quantity,
			"available_quantity": available,
			"color":              in.Color,
			"sku":                in.SKU,
			"image":              in.Image,
			"version":            gorm.Expr("version + 1"),
		}).Error; err != nil {
			return apperr.Wrap(apperr.Internal, err, "failed to update product")
		}

		categories, tags, err := loadLabels(tx, in)
		if err != nil {
			return err
		}
		if err := tx.Model(&product).Association("Categories").Replace(categories); err != nil {
			return apperr.Wrap(apperr.Internal, err, "failed to update categories")
		}
		if err := tx.Model(&product).Association("Tags").Replace(tags); err != nil {
			return apperr.Wrap(apperr.Internal, err, "failed to update tags")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return GetProduct(db, id)
}

// PUT /api/products/:id
func UpdateProductHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := middleware.ParamID(c, "id")
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		var in ProductInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		product, err := UpdateProduct(db.WithContext(c.Request.Context()), id, in)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, product)
	}
}
