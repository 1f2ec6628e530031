package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/boostbench/ecommerce-api/apperr"
	"github.com/boostbench/ecommerce-api/models"
	"github.com/boostbench/ecommerce-api/testutil"
)

func TestReserveCheck(t *testing.T) {
	p := &models.Product{Name: "Lamp", AvailableQuantity: 3}

	assert.NoError(t, ReserveCheck(p, 3))
	err := ReserveCheck(p, 4)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.InsufficientStock))
	assert.Equal(t, 3, p.AvailableQuantity, "check must not hold stock")
}

func TestApplySettle(t *testing.T) {
	p := &models.Product{Name: "Lamp", Quantity: 5, AvailableQuantity: 5}

	require.NoError(t, ApplySettle(p, 2))
	assert.Equal(t, 3, p.AvailableQuantity)
	assert.Equal(t, 2, p.SoldQuantity)

	err := ApplySettle(p, 4)
	assert.True(t, apperr.Is(err, apperr.InsufficientStock))
	assert.Equal(t, 3, p.AvailableQuantity, "failed settle leaves counters alone")

	assert.True(t, apperr.Is(ApplySettle(p, 0), apperr.InvalidArgument))
}

func TestSettleThenRestoreRoundTrips(t *testing.T) {
	p := &models.Product{Quantity: 10, AvailableQuantity: 7, SoldQuantity: 3}

	require.NoError(t, ApplySettle(p, 4))
	ApplyRestore(p, 4)

	assert.Equal(t, 7, p.AvailableQuantity)
	assert.Equal(t, 3, p.SoldQuantity)
}

func TestApplyRestoreFloorsSold(t *testing.T) {
	p := &models.Product{AvailableQuantity: 1, SoldQuantity: 1}

	ApplyRestore(p, 3)

	assert.Equal(t, 4, p.AvailableQuantity)
	assert.Equal(t, 0, p.SoldQuantity)
}

func TestSettlePersists(t *testing.T) {
	db := testutil.NewDB(t)
	p := testutil.CreateProduct(t, db, "Lamp", "100", "10", 5)

	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := Settle(tx, p.ID, 2)
		return err
	})
	require.NoError(t, err)

	got := testutil.ReloadProduct(t, db, p.ID)
	assert.Equal(t, 3, got.AvailableQuantity)
	assert.Equal(t, 2, got.SoldQuantity)
	assert.Equal(t, 1, got.Version)

	err = db.Transaction(func(tx *gorm.DB) error {
		_, err := Restore(tx, p.ID, 2)
		return err
	})
	require.NoError(t, err)

	got = testutil.ReloadProduct(t, db, p.ID)
	assert.Equal(t, 5, got.AvailableQuantity)
	assert.Equal(t, 0, got.SoldQuantity)
	assert.Equal(t, 2, got.Version)
}

func TestSettleInsufficientRollsBack(t *testing.T) {
	db := testutil.NewDB(t)
	p := testutil.CreateProduct(t, db, "Lamp", "100", "0", 1)

	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := Settle(tx, p.ID, 2)
		return err
	})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.InsufficientStock))

	got := testutil.ReloadProduct(t, db, p.ID)
	assert.Equal(t, 1, got.AvailableQuantity)
	assert.Equal(t, 0, got.SoldQuantity)
}

func TestSettleMissingProduct(t *testing.T) {
	db := testutil.NewDB(t)

	_, err := Settle(db, 999, 1)
	assert.True(t, apperr.Is(err, apperr.NotFound))
}

func TestSaveRejectsStaleVersion(t *testing.T) {
	db := testutil.NewDB(t)
	p := testutil.CreateProduct(t, db, "Lamp", "100", "0", 5)

	stale := testutil.ReloadProduct(t, db, p.ID)
	_, err := Settle(db, p.ID, 1)
	require.NoError(t, err)

	stale.AvailableQuantity = 0
	err = save(db, &stale)
	assert.True(t, apperr.Is(err, apperr.Conflict))

	got := testutil.ReloadProduct(t, db, p.ID)
	assert.Equal(t, 4, got.AvailableQuantity)
}
