package orderControllers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/boostbench/ecommerce-api/apperr"
	cartControllers "github.com/boostbench/ecommerce-api/controllers/cart"
	"github.com/boostbench/ecommerce-api/inventory"
	"github.com/boostbench/ecommerce-api/mailer"
	"github.com/boostbench/ecommerce-api/middleware"
	"github.com/boostbench/ecommerce-api/models"
	"github.com/boostbench/ecommerce-api/settlement"
)

// -------- Request Structs --------

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type UpdatePaymentStatusRequest struct {
	PaymentStatus string `json:"payment_status" binding:"required"`
	PaymentID     string `json:"payment_id"`
	PaymentMethod string `json:"payment_method"`
}

// -------- Helpers --------

func parseOrderStatus(status string) (models.OrderStatus, error) {
	s := models.OrderStatus(strings.ToUpper(strings.TrimSpace(status)))
	for _, known := range models.OrderStatuses {
		if s == known {
			return s, nil
		}
	}
	return "", apperr.New(apperr.InvalidArgument, "invalid order status: %s", status)
}

func parsePaymentStatus(status string) (models.PaymentStatus, error) {
	s := models.PaymentStatus(strings.ToUpper(strings.TrimSpace(status)))
	for _, known := range models.PaymentStatuses {
		if s == known {
			return s, nil
		}
	}
	return "", apperr.New(apperr.InvalidArgument, "invalid payment status: %s", status)
}

// Example: 20250908130500-<uuid4>
func generateOrderRef() string {
	return time.Now().UTC().Format("20060102150405") + "-" + uuid.NewString()
}

func withItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") })
}

// -------- Core Logic --------

// PlaceOrder turns the user's cart into a PENDING order. Every line is
// re-checked against stock and frozen at price minus discount. The order
// insert and the cart clear commit together; a failing line leaves the cart
// untouched. Stock is not decremented until payment.
func PlaceOrder(db *gorm.DB, userID string) (*models.Order, error) {
	var order models.Order

	err := db.Transaction(func(tx *gorm.DB) error {
		cart, err := cartControllers.GetCart(tx, userID)
		if err != nil {
			return err
		}
		if len(cart.Items) == 0 {
			return apperr.New(apperr.InvalidState, "cart is empty")
		}

		total := decimal.Zero
		items := make([]models.OrderItem, 0, len(cart.Items))
		for _, item := range cart.Items {
			var product models.Product
			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&product, "id = ?", item.ProductID).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.New(apperr.NotFound, "product not found with ID: %d", item.ProductID)
			}
			if err != nil {
				return apperr.Wrap(apperr.Internal, err, "failed to load product")
			}
			if err := inventory.ReserveCheck(&product, item.Quantity); err != nil {
				return err
			}

			price := product.UnitPrice()
			line := models.OrderItem{
				ProductID:   product.ID,
				ProductName: product.Name,
				Quantity:    item.Quantity,
				Price:       price,
			}
			total = total.Add(line.LineTotal())
			items = append(items, line)
		}

		order = models.Order{
			OrderRef:      generateOrderRef(),
			UserID:        userID,
			Items:         items,
			TotalAmount:   total,
			Status:        models.OrderStatusPending,
			PaymentStatus: models.PaymentStatusPending,
			StockState:    models.StockUntouched,
		}
		if err := tx.Create(&order).Error; err != nil {
			return apperr.Wrap(apperr.Internal, err, "failed to create order")
		}

		return cartControllers.ClearItems(tx, cart.CartID)
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("order placed",
		zap.Uint("order_id", order.ID),
		zap.String("order_ref", order.OrderRef),
		zap.String("user_id", userID),
		zap.String("total", order.TotalAmount.StringFixed(2)),
	)
	return &order, nil
}

func GetUserOrders(db *gorm.DB, userID string) ([]models.Order, error) {
	var orders []models.Order
	if err := withItems(db).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "failed to fetch orders")
	}
	return orders, nil
}

// GetAllOrders is the administrative read; no ownership check.
func GetAllOrders(db *gorm.DB) ([]models.Order, error) {
	var orders []models.Order
	if err := withItems(db).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "failed to fetch orders")
	}
	return orders, nil
}

// GetOrderByID fails with Forbidden when the order belongs to someone else.
func GetOrderByID(db *gorm.DB, orderID uint, userID string) (*models.Order, error) {
	order, err := findOrder(withItems(db), orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, apperr.New(apperr.Forbidden, "order does not belong to user")
	}
	return order, nil
}

func findOrder(db *gorm.DB, orderID uint) (*models.Order, error) {
	var order models.Order
	err := db.First(&order, orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.New(apperr.NotFound, "order not found with ID: %d", orderID)
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "failed to fetch order")
	}
	return &order, nil
}

// LockOrder reads the order FOR UPDATE inside tx and then its items.
func LockOrder(tx *gorm.DB, orderID uint) (*models.Order, error) {
	order, err := findOrder(tx.Clauses(clause.Locking{Strength: "UPDATE"}), orderID)
	if err != nil {
		return nil, err
	}
	if err := tx.Where("order_id = ?", order.ID).Order("id").Find(&order.Items).Error; err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "failed to fetch order items")
	}
	return order, nil
}

// UpdateOrderStatus is an administrative override of the fulfilment status.
// Any known status is accepted; marking an unpaid order CONFIRMED is logged.
func UpdateOrderStatus(db *gorm.DB, orderID uint, status string) (*models.Order, error) {
	newStatus, err := parseOrderStatus(status)
	if err != nil {
		return nil, err
	}

	var order *models.Order
	err = db.Transaction(func(tx *gorm.DB) error {
		order, err = LockOrder(tx, orderID)
		if err != nil {
			return err
		}
		if newStatus == models.OrderStatusConfirmed && order.PaymentStatus != models.PaymentStatusPaid {
			zap.L().Warn("order confirmed without payment",
				zap.Uint("order_id", order.ID),
				zap.String("payment_status", string(order.PaymentStatus)),
			)
		}
		order.Status = newStatus
		if err := tx.Model(order).Update("status", newStatus).Error; err != nil {
			return apperr.Wrap(apperr.Internal, err, "failed to update order status")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// UpdateOrderPaymentStatus applies a payment outcome through the settlement
// rules in one transaction: on PAID every line is settled or nothing changes.
func UpdateOrderPaymentStatus(db *gorm.DB, orderID uint, paymentStatus, paymentID, paymentMethod string) (*models.Order, settlement.Result, error) {
	var res settlement.Result
	newStatus, err := parsePaymentStatus(paymentStatus)
	if err != nil {
		return nil, res, err
	}

	var order *models.Order
	err = db.Transaction(func(tx *gorm.DB) error {
		order, err = LockOrder(tx, orderID)
		if err != nil {
			return err
		}
		res, err = settlement.Apply(tx, order, settlement.Transition{
			PaymentStatus: newStatus,
			PaymentID:     paymentID,
			PaymentMethod: paymentMethod,
		})
		return err
	})
	if err != nil {
		return nil, settlement.Result{}, err
	}
	return order, res, nil
}

// AnnouncePayment runs after a payment update commits: dashboards get the
// event and a newly settled order gets its receipt. The receipt is sent in
// the background so the caller can answer the gateway immediately.
func AnnouncePayment(ctx context.Context, hub *Hub, m mailer.Mailer, order *models.Order, res settlement.Result) {
	if !res.Changed {
		return
	}
	hub.Broadcast(EventOrderPaymentUpdated, *order)
	if res.Settled && m != nil {
		snapshot := *order
		go func(ctx context.Context) {
			if err := m.SendPaymentReceipt(ctx, snapshot); err != nil {
				zap.L().Warn("payment receipt not sent", zap.Uint("order_id", snapshot.ID), zap.Error(err))
			}
		}(context.WithoutCancel(ctx))
	}
}

// -------- Handlers --------

// POST /api/orders/place
func PlaceOrderHandler(db *gorm.DB, hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.RequireUserID(c)
		if !ok {
			return
		}
		order, err := PlaceOrder(db.WithContext(c.Request.Context()), userID)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		hub.Broadcast(EventOrderPlaced, *order)
		c.JSON(http.StatusCreated, order)
	}
}

// GET /api/orders/mine
func GetMyOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.RequireUserID(c)
		if !ok {
			return
		}
		orders, err := GetUserOrders(db.WithContext(c.Request.Context()), userID)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

// GET /api/orders/all
func GetAllOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		orders, err := GetAllOrders(db.WithContext(c.Request.Context()))
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

// GET /api/orders/:orderId
func GetOrderByIDHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.RequireUserID(c)
		if !ok {
			return
		}
		orderID, err := middleware.ParamID(c, "orderId")
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		order, err := GetOrderByID(db.WithContext(c.Request.Context()), orderID, userID)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

// PUT /api/orders/:orderId/status
func UpdateOrderStatusHandler(db *gorm.DB, hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := middleware.ParamID(c, "orderId")
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		var req UpdateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		order, err := UpdateOrderStatus(db.WithContext(c.Request.Context()), orderID, req.Status)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		hub.Broadcast(EventOrderStatusUpdated, *order)
		c.JSON(http.StatusOK, order)
	}
}

// PUT /api/orders/:orderId/payment-status
func UpdatePaymentStatusHandler(db *gorm.DB, hub *Hub, m mailer.Mailer) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := middleware.ParamID(c, "orderId")
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		var req UpdatePaymentStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		ctx := c.Request.Context()
		order, res, err := UpdateOrderPaymentStatus(db.WithContext(ctx), orderID, req.PaymentStatus, req.PaymentID, req.PaymentMethod)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		AnnouncePayment(ctx, hub, m, order, res)
		c.JSON(http.StatusOK, order)
	}
}
