// Package inventory owns the product stock counters. ReserveCheck is
// advisory only: nothing is held, so two checkouts can both pass it for the
// last unit. Settle re-checks at payment time.
package inventory

import (
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/boostbench/ecommerce-api/apperr"
	"github.com/boostbench/ecommerce-api/models"
)

// ReserveCheck fails with InsufficientStock when qty exceeds what is
// currently sellable.
func ReserveCheck(p *models.Product, qty int) error {
	if qty > p.AvailableQuantity {
		return apperr.New(apperr.InsufficientStock, "insufficient stock for product: %s", p.Name)
	}
	return nil
}

// ApplySettle moves qty units from available to sold on p.
func ApplySettle(p *models.Product, qty int) error {
	if qty <= 0 {
		return apperr.New(apperr.InvalidArgument, "quantity must be greater than 0")
	}
	if p.AvailableQuantity-qty < 0 {
		return apperr.New(apperr.InsufficientStock, "insufficient stock for product: %s", p.Name)
	}
	p.AvailableQuantity -= qty
	p.SoldQuantity += qty
	return nil
}

// ApplyRestore returns qty units to available. Sold is floored at zero.
func ApplyRestore(p *models.Product, qty int) {
	if qty <= 0 {
		return
	}
	p.AvailableQuantity += qty
	p.SoldQuantity = max(0, p.SoldQuantity-qty)
}

// Settle decrements the stored product inside tx.
func Settle(tx *gorm.DB, productID uint, qty int) (*models.Product, error) {
	p, err := lockProduct(tx, productID)
	if err != nil {
		return nil, err
	}
	if err := ApplySettle(p, qty); err != nil {
		return nil, err
	}
	if err := save(tx, p); err != nil {
		return nil, err
	}
	zap.L().Debug("stock settled",
		zap.Uint("product_id", p.ID),
		zap.Int("qty", qty),
		zap.Int("available", p.AvailableQuantity),
	)
	return p, nil
}

// Restore increments the stored product inside tx.
func Restore(tx *gorm.DB, productID uint, qty int) (*models.Product, error) {
	p, err := lockProduct(tx, productID)
	if err != nil {
		return nil, err
	}
	ApplyRestore(p, qty)
	if err := save(tx, p); err != nil {
		return nil, err
	}
	zap.L().Debug("stock restored",
		zap.Uint("product_id", p.ID),
		zap.Int("qty", qty),
		zap.Int("available", p.AvailableQuantity),
	)
	return p, nil
}

// lockProduct reads the row FOR UPDATE. Soft-deleted products still carry
// stock owed to open orders, so the lookup is unscoped.
func lockProduct(tx *gorm.DB, productID uint) (*models.Product, error) {
	var p models.Product
	err := tx.Unscoped().
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&p, "id = ?", productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.New(apperr.NotFound, "product not found with ID: %d", productID)
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "failed to load product")
	}
	return &p, nil
}

// save writes the counters back with a version check-and-set.
func save(tx *gorm.DB, p *models.Product) error {
	res := tx.Unscoped().Model(&models.Product{}).
		Where("id = ? AND version = ?", p.ID, p.Version).
		Updates(map[string]interface{}{
			"available_quantity": p.AvailableQuantity,
			"sold_quantity":      p.SoldQuantity,
			"version":            gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return apperr.Wrap(apperr.Internal, res.Error, "failed to update product stock")
	}
	if res.RowsAffected == 0 {
		return apperr.New(apperr.Conflict, "product %d was modified concurrently", p.ID)
	}
	p.Version++
	return nil
}
