package productcontroller

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/boostbench/ecommerce-api/apperr"
	"github.com/boostbench/ecommerce-api/models"
)

// ProductInput is the admin create/update payload. AvailableQuantity
// defaults to Quantity on create when omitted.
type ProductInput struct {
	Name              string           `json:"name"`
	Description       string           `json:"description"`
	Price             decimal.Decimal  `json:"price"`
	Discount          *decimal.Decimal `json:"discount"`
	Quantity          int              `json:"quantity"`
	AvailableQuantity *int             `json:"available_quantity"`
	Color             string           `json:"color"`
	SKU               string           `json:"sku"`
	Image             string           `json:"image"`
	CategoryIDs       []uint           `json:"category_ids"`
	TagIDs            []uint           `json:"tag_ids"`
}

func (in ProductInput) discount() decimal.Decimal {
	if in.Discount == nil {
		return decimal.Zero
	}
	return *in.Discount
}

func (in ProductInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return apperr.New(apperr.InvalidArgument, "name is required")
	}
	if !in.Price.IsPositive() {
		return apperr.New(apperr.InvalidArgument, "price must be greater than 0")
	}
	// the unit price charged at checkout must stay above zero
	if d := in.discount(); d.IsNegative() || !d.LessThan(in.Price) {
		return apperr.New(apperr.InvalidArgument, "discount must be at least 0 and less than price")
	}
	if in.Quantity < 0 || (in.AvailableQuantity != nil && *in.AvailableQuantity < 0) {
		return apperr.New(apperr.InvalidArgument, "quantities must not be negative")
	}
	return nil
}

func loadLabels(tx *gorm.DB, in ProductInput) ([]models.Category, []models.Tag, error) {
	var categories []models.Category
	var tags []models.Tag
	if len(in.CategoryIDs) > 0 {
		if err := tx.Where("id IN ?", in.CategoryIDs).Find(&categories).Error; err != nil {
			return nil, nil, apperr.Wrap(apperr.Internal, err, "failed to fetch categories")
		}
	}
	if len(in.TagIDs) > 0 {
		if err := tx.Where("id IN ?", in.TagIDs).Find(&tags).Error; err != nil {
			return nil, nil, apperr.Wrap(apperr.Internal, err, "failed to fetch tags")
		}
	}
	return categories, tags, nil
}

// CreateProduct stores a new product. Unknown category or tag ids are ignored.
func CreateProduct(db *gorm.DB, in ProductInput) (*models.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var product models.Product
	err := db.Transaction(func(tx *gorm.DB) error {
		categories, tags, err := loadLabels(tx, in)
		if err != nil {
			return err
		}

		available := in.Quantity
		if in.AvailableQuantity != nil {
			available = *in.AvailableQuantity
		}
		product = models.Product{
			Name:              strings.TrimSpace(in.Name),
			Description:       in.Description,
			Price:             in.Price,
			Discount:          in.discount(),
			Quantity:          in.Quantity,
			AvailableQuantity: available,
			Color:             in.Color,
			SKU:               in.SKU,
			Image:             in.Image,
			Categories:        categories,
			Tags:              tags,
		}
		if err := tx.Omit("Categories.*", "Tags.*").Create(&product).Error; err != nil {
			return apperr.Wrap(apperr.Internal, err, "failed to create product")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// POST /api/products
func CreateProductHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in ProductInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		product, err := CreateProduct(db.WithContext(c.Request.Context()), in)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusCreated, product)
	}
}
