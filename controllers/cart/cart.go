package cartControllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/boostbench/ecommerce-api/apperr"
	"github.com/boostbench/ecommerce-api/inventory"
	"github.com/boostbench/ecommerce-api/middleware"
	"github.com/boostbench/ecommerce-api/models"
)

type AddCartItemInput struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity"`
}

type UpdateCartItemInput struct {
	Quantity int `json:"quantity"`
}

// -------- Core Logic --------

// GetCart returns the user's cart with items and their products. A user
// who never added anything has no cart: NotFound, not an empty cart.
func GetCart(db *gorm.DB, userID string) (*models.Cart, error) {
	var cart models.Cart
	err := db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Items.Product", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Where("user_id = ?", userID).
		First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.New(apperr.NotFound, "cart not found for user ID: %s", userID)
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "failed to fetch cart")
	}
	return &cart, nil
}

// AddItem adds qty of a product, merging with an existing line. The stock
// check runs against the merged quantity. The cart is created on first add.
func AddItem(db *gorm.DB, userID string, productID uint, qty int) (*models.Cart, error) {
	if qty <= 0 {
		return nil, apperr.New(apperr.InvalidArgument, "quantity must be greater than 0")
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		product, err := findProduct(tx, productID)
		if err != nil {
			return err
		}
		if err := inventory.ReserveCheck(product, qty); err != nil {
			return err
		}

		cart, err := findOrCreateCart(tx, userID)
		if err != nil {
			return err
		}

		var item models.CartItem
		err = tx.Where("cart_id = ? AND product_id = ?", cart.CartID, productID).First(&item).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			item = models.CartItem{
				CartID:    cart.CartID,
				ProductID: product.ID,
				Quantity:  qty,
				AddedAt:   time.Now(),
			}
			if err := tx.Omit("Product").Create(&item).Error; err != nil {
				return apperr.Wrap(apperr.Internal, err, "failed to add item to cart")
			}
			return nil
		}
		if err != nil {
			return apperr.Wrap(apperr.Internal, err, "failed to fetch cart item")
		}

		merged := item.Quantity + qty
		if err := inventory.ReserveCheck(product, merged); err != nil {
			return err
		}
		if err := tx.Model(&item).Updates(map[string]interface{}{
			"quantity": merged,
			"added_at": time.Now(),
		}).Error; err != nil {
			return apperr.Wrap(apperr.Internal, err, "failed to update cart item")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return GetCart(db, userID)
}

// UpdateItem sets the quantity of one line after re-checking stock.
func UpdateItem(db *gorm.DB, userID string, itemID uint, qty int) (*models.Cart, error) {
	if qty <= 0 {
		return nil, apperr.New(apperr.InvalidArgument, "quantity must be greater than 0")
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		cart, err := findCart(tx, userID)
		if err != nil {
			return err
		}
		item, err := findItem(tx, cart.CartID, itemID)
		if err != nil {
			return err
		}
		product, err := findProduct(tx, item.ProductID)
		if err != nil {
			return err
		}
		if err := inventory.ReserveCheck(product, qty); err != nil {
			return err
		}
		if err := tx.Model(item).Update("quantity", qty).Error; err != nil {
			return apperr.Wrap(apperr.Internal, err, "failed to update cart item")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return GetCart(db, userID)
}

// RemoveItem deletes one line from the user's cart.
func RemoveItem(db *gorm.DB, userID string, itemID uint) (*models.Cart, error) {
	err := db.Transaction(func(tx *gorm.DB) error {
		cart, err := findCart(tx, userID)
		if err != nil {
			return err
		}
		result := tx.Where("id = ? AND cart_id = ?", itemID, cart.CartID).Delete(&models.CartItem{})
		if result.Error != nil {
			return apperr.Wrap(apperr.Internal, result.Error, "failed to delete item")
		}
		if result.RowsAffected == 0 {
			return apperr.New(apperr.NotFound, "cart item not found with ID: %d", itemID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return GetCart(db, userID)
}

// ClearCart empties the user's cart. The cart row itself is kept.
func ClearCart(db *gorm.DB, userID string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		cart, err := findCart(tx, userID)
		if err != nil {
			return err
		}
		return ClearItems(tx, cart.CartID)
	})
}

// ClearItems deletes every line of a cart. Used by checkout inside its own
// transaction.
func ClearItems(tx *gorm.DB, cartID uint) error {
	if err := tx.Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error; err != nil {
		return apperr.Wrap(apperr.Internal, err, "failed to clear cart")
	}
	return nil
}

func findCart(tx *gorm.DB, userID string) (*models.Cart, error) {
	var cart models.Cart
	err := tx.Where("user_id = ?", userID).First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.New(apperr.NotFound, "cart not found for user ID: %s", userID)
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "failed to fetch cart")
	}
	return &cart, nil
}

func findOrCreateCart(tx *gorm.DB, userID string) (*models.Cart, error) {
	cart := models.Cart{UserID: userID}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&cart).Error; err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "failed to create cart")
	}
	return findCart(tx, userID)
}

func findItem(tx *gorm.DB, cartID, itemID uint) (*models.CartItem, error) {
	var item models.CartItem
	err := tx.Where("id = ? AND cart_id = ?", itemID, cartID).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.New(apperr.NotFound, "cart item not found with ID: %d", itemID)
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "failed to fetch cart item")
	}
	return &item, nil
}

func findProduct(tx *gorm.DB, productID uint) (*models.Product, error) {
	var product models.Product
	err := tx.First(&product, productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.New(apperr.NotFound, "product not found with ID: %d", productID)
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "failed to validate product")
	}
	return &product, nil
}

// -------- Handlers --------

// GET /api/cart
func GetUserCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.RequireUserID(c)
		if !ok {
			return
		}
		cart, err := GetCart(db.WithContext(c.Request.Context()), userID)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

// POST /api/cart/items
func AddCartItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.RequireUserID(c)
		if !ok {
			return
		}
		var input AddCartItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		cart, err := AddItem(db.WithContext(c.Request.Context()), userID, input.ProductID, input.Quantity)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusCreated, cart)
	}
}

// PUT /api/cart/items/:itemId
func UpdateCartItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.RequireUserID(c)
		if !ok {
			return
		}
		itemID, err := middleware.ParamID(c, "itemId")
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		var input UpdateCartItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		cart, err := UpdateItem(db.WithContext(c.Request.Context()), userID, itemID, input.Quantity)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

// DELETE /api/cart/items/:itemId
func DeleteCartItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.RequireUserID(c)
		if !ok {
			return
		}
		itemID, err := middleware.ParamID(c, "itemId")
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		cart, err := RemoveItem(db.WithContext(c.Request.Context()), userID, itemID)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

// DELETE /api/cart
func ClearUserCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.RequireUserID(c)
		if !ok {
			return
		}
		if err := ClearCart(db.WithContext(c.Request.Context()), userID); err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
	}
}

// GET /api/admin/carts/:userId
func GetAdminUserCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Param("userId")
		if userID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "userId is required"})
			return
		}
		cart, err := GetCart(db.WithContext(c.Request.Context()), userID)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}
