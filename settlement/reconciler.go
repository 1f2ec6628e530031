// Package settlement is the single place that moves an order's payment
// status and applies the matching inventory effect. Both the admin payment
// update and the gateway notification go through Apply.
package settlement

import (
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/boostbench/ecommerce-api/apperr"
	"github.com/boostbench/ecommerce-api/inventory"
	"github.com/boostbench/ecommerce-api/models"
)

// Transition is a requested payment outcome for one order.
type Transition struct {
	PaymentStatus models.PaymentStatus
	PaymentID     string
	PaymentMethod string
}

// Result describes what Apply did.
type Result struct {
	Changed  bool
	Settled  bool
	Restored bool
}

var now = time.Now

// Apply must run inside a transaction with order loaded (items included)
// from that transaction. On error the caller's transaction must roll back:
// order fields may already be modified in memory.
//
// Stock moves forward at most once (on PAID) and back at most once (on
// CANCELLED/FAILED after a settle). A repeated outcome is a no-op, and so is
// a PENDING outcome for an order that already left PENDING.
func Apply(tx *gorm.DB, order *models.Order, t Transition) (Result, error) {
	var res Result
	from := order.PaymentStatus
	to := t.PaymentStatus

	if from == to {
		return res, nil
	}
	if to == models.PaymentStatusPending {
		zap.L().Info("ignoring stale pending outcome",
			zap.Uint("order_id", order.ID),
			zap.String("payment_status", string(from)),
		)
		return res, nil
	}
	if err := checkMove(from, to); err != nil {
		return res, err
	}

	switch to {
	case models.PaymentStatusPaid:
		if err := settle(tx, order); err != nil {
			return res, err
		}
		completed := now()
		order.PaymentID = t.PaymentID
		order.PaymentMethod = t.PaymentMethod
		order.PaymentCompletedAt = &completed
		order.Status = models.OrderStatusConfirmed
		res.Settled = true

	case models.PaymentStatusCancelled, models.PaymentStatusFailed:
		if order.StockState == models.StockSettled {
			if err := restore(tx, order); err != nil {
				return res, err
			}
			res.Restored = true
		}
		order.Status = models.OrderStatusCancelled
		if t.PaymentID != "" {
			order.PaymentID = t.PaymentID
		}
		if t.PaymentMethod != "" {
			order.PaymentMethod = t.PaymentMethod
		}

	case models.PaymentStatusRefunded:
		// no inventory effect; goods return is handled outside the shop core
	}

	order.PaymentStatus = to
	if err := tx.Model(order).Select(
		"status", "payment_status", "payment_id", "payment_method",
		"payment_completed_at", "stock_state",
	).Updates(order).Error; err != nil {
		return res, apperr.Wrap(apperr.Internal, err, "failed to update order payment")
	}

	res.Changed = true
	zap.L().Info("payment status changed",
		zap.Uint("order_id", order.ID),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
		zap.Bool("settled", res.Settled),
		zap.Bool("restored", res.Restored),
	)
	return res, nil
}

// checkMove allows PENDING -> PAID/CANCELLED/FAILED and
// PAID -> CANCELLED/FAILED/REFUNDED. Everything else out of a final status
// is rejected.
func checkMove(from, to models.PaymentStatus) error {
	if from.Final() {
		return apperr.New(apperr.InvalidState, "order payment is already %s", from)
	}
	if from != models.PaymentStatusPaid && to == models.PaymentStatusRefunded {
		return apperr.New(apperr.InvalidState, "cannot refund an unpaid order")
	}
	return nil
}

func settle(tx *gorm.DB, order *models.Order) error {
	if order.StockState != models.StockUntouched && order.StockState != "" {
		return apperr.New(apperr.InvalidState, "order %d stock already %s", order.ID, order.StockState)
	}
	for _, item := range order.Items {
		if _, err := inventory.Settle(tx, item.ProductID, item.Quantity); err != nil {
			return err
		}
	}
	order.StockState = models.StockSettled
	return nil
}

func restore(tx *gorm.DB, order *models.Order) error {
	for _, item := range order.Items {
		if _, err := inventory.Restore(tx, item.ProductID, item.Quantity); err != nil {
			return err
		}
	}
	order.StockState = models.StockRestored
	return nil
}
