// Package testutil opens throwaway databases and fixtures for package tests.
package testutil

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/boostbench/ecommerce-api/models"
)

// NewDB returns a migrated in-memory SQLite database private to t. A single
// connection keeps every statement, transactional or not, on the same
// in-memory database.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// CreateProduct stores a product with quantity == available.
func CreateProduct(t testing.TB, db *gorm.DB, name, price, discount string, available int) models.Product {
	t.Helper()

	p := models.Product{
		Name:              name,
		Price:             decimal.RequireFromString(price),
		Discount:          decimal.RequireFromString(discount),
		Quantity:          available,
		AvailableQuantity: available,
	}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return p
}

// ReloadProduct reads the product back from the database.
func ReloadProduct(t testing.TB, db *gorm.DB, id uint) models.Product {
	t.Helper()

	var p models.Product
	if err := db.Unscoped().First(&p, id).Error; err != nil {
		t.Fatalf("reload product %d: %v", id, err)
	}
	return p
}
