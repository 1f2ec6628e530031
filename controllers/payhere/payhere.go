package payhereControllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/boostbench/ecommerce-api/apperr"
	orderControllers "github.com/boostbench/ecommerce-api/controllers/order"
	"github.com/boostbench/ecommerce-api/mailer"
	"github.com/boostbench/ecommerce-api/middleware"
	"github.com/boostbench/ecommerce-api/models"
	"github.com/boostbench/ecommerce-api/settlement"
)

type InitiateRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Phone     string `json:"phone" binding:"required"`
	Address   string `json:"address" binding:"required"`
	City      string `json:"city" binding:"required"`
	Country   string `json:"country"`
}

// InitiateResponse carries every field the client posts to the PayHere
// checkout form.
type InitiateResponse struct {
	MerchantID  string `json:"merchant_id"`
	OrderID     string `json:"order_id"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	Hash        string `json:"hash"`
	ReturnURL   string `json:"return_url"`
	CancelURL   string `json:"cancel_url"`
	NotifyURL   string `json:"notify_url"`
	Sandbox     bool   `json:"sandbox"`
	Items       string `json:"items"`
	CheckoutURL string `json:"checkout_url"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	City        string `json:"city"`
	Country     string `json:"country"`
}

type StatusResponse struct {
	OrderID       uint                 `json:"order_id"`
	PaymentStatus models.PaymentStatus `json:"payment_status"`
	PaymentID     string               `json:"payment_id"`
	PaymentMethod string               `json:"payment_method"`
	Message       string               `json:"message"`
}

// -------- Core Logic --------

// InitiatePayment records the customer details on a PENDING, unpaid order
// owned by userID and returns the signed checkout payload.
func (g *Gateway) InitiatePayment(db *gorm.DB, orderID uint, userID string, req InitiateRequest) (*InitiateResponse, error) {
	if req.Country == "" {
		req.Country = "Sri Lanka"
	}

	var order *models.Order
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		order, err = orderControllers.LockOrder(tx, orderID)
		if err != nil {
			return err
		}
		if order.UserID != userID {
			return apperr.New(apperr.Forbidden, "you do not have permission to pay for this order")
		}
		if order.Status != models.OrderStatusPending {
			return apperr.New(apperr.InvalidState, "order is not in PENDING status")
		}
		if order.PaymentStatus == models.PaymentStatusPaid {
			return apperr.New(apperr.InvalidState, "order has already been paid")
		}

		order.Customer = models.CustomerDetails{
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Email:     req.Email,
			Phone:     req.Phone,
			Address:   req.Address,
			City:      req.City,
			Country:   req.Country,
		}
		if err := tx.Model(order).Select(
			"customer_first_name", "customer_last_name", "customer_email", "customer_phone",
			"customer_address", "customer_city", "customer_country",
		).Updates(order).Error; err != nil {
			return apperr.Wrap(apperr.Internal, err, "failed to save customer details")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	id := strconv.FormatUint(uint64(order.ID), 10)
	resp := &InitiateResponse{
		MerchantID:  g.cfg.MerchantID,
		OrderID:     id,
		Amount:      FormatAmount(order.TotalAmount),
		Currency:    Currency,
		Hash:        g.CheckoutHash(id, order.TotalAmount),
		ReturnURL:   g.cfg.FrontendURL + "/payment/success",
		CancelURL:   g.cfg.FrontendURL + "/payment/cancel",
		NotifyURL:   g.cfg.BackendURL + "/api/payments/notify",
		Sandbox:     g.cfg.Sandbox,
		Items:       ItemsDescription(order.Items),
		CheckoutURL: g.cfg.CheckoutURL(),
		FirstName:   order.Customer.FirstName,
		LastName:    order.Customer.LastName,
		Email:       order.Customer.Email,
		Phone:       order.Customer.Phone,
		Address:     order.Customer.Address,
		City:        order.Customer.City,
		Country:     order.Customer.Country,
	}

	zap.L().Info("payment initiated",
		zap.Uint("order_id", order.ID),
		zap.String("amount", resp.Amount),
		zap.Bool("sandbox", resp.Sandbox),
	)
	return resp, nil
}

// HandleNotification verifies the signature before touching anything, then
// applies the outcome through the settlement rules. Redelivery of an
// outcome already applied is a no-op.
func (g *Gateway) HandleNotification(db *gorm.DB, n Notification) (*models.Order, settlement.Result, error) {
	var res settlement.Result
	if err := g.Verify(n); err != nil {
		return nil, res, err
	}

	orderID, err := strconv.ParseUint(n.OrderID, 10, 64)
	if err != nil {
		return nil, res, apperr.New(apperr.InvalidArgument, "invalid order_id: %q", n.OrderID)
	}
	transition, err := TransitionFor(n)
	if err != nil {
		return nil, res, err
	}

	var order *models.Order
	err = db.Transaction(func(tx *gorm.DB) error {
		order, err = orderControllers.LockOrder(tx, uint(orderID))
		if err != nil {
			return err
		}
		res, err = settlement.Apply(tx, order, transition)
		return err
	})
	if err != nil {
		return nil, settlement.Result{}, err
	}
	return order, res, nil
}

// GetPaymentStatus is the ownership-checked polling read.
func GetPaymentStatus(db *gorm.DB, orderID uint, userID string) (*StatusResponse, error) {
	order, err := orderControllers.GetOrderByID(db, orderID, userID)
	if err != nil {
		return nil, err
	}
	return &StatusResponse{
		OrderID:       order.ID,
		PaymentStatus: order.PaymentStatus,
		PaymentID:     order.PaymentID,
		PaymentMethod: order.PaymentMethod,
		Message:       StatusMessage(order.PaymentStatus),
	}, nil
}

// -------- Handlers --------

// POST /api/payments/initiate/:orderId
func InitiatePaymentHandler(db *gorm.DB, g *Gateway) gin.HandlerFunc {
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
		var req InitiateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
			return
		}
		resp, err := g.InitiatePayment(db.WithContext(c.Request.Context()), orderID, userID, req)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// POST /api/payments/notify
//
// PayHere expects a bare text body: OK, FORBIDDEN on a bad signature,
// ERROR for anything else.
func PaymentNotifyHandler(db *gorm.DB, g *Gateway, hub *orderControllers.Hub, m mailer.Mailer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var n Notification
		if err := c.ShouldBind(&n); err != nil {
			zap.L().Warn("unreadable payment notification", zap.Error(err))
			c.String(http.StatusBadRequest, "ERROR")
			return
		}

		fields := []zap.Field{
			zap.String("order_id", n.OrderID),
			zap.String("status_code", n.StatusCode),
			zap.String("payment_id", n.PaymentID),
			zap.String("method", n.Method),
		}
		zap.L().Info("payment notification received", fields...)

		ctx := c.Request.Context()
		order, res, err := g.HandleNotification(db.WithContext(ctx), n)
		if err != nil {
			if apperr.Is(err, apperr.SecurityViolation) {
				zap.L().Warn("payment notification rejected", append(fields, zap.Error(err))...)
				c.String(http.StatusForbidden, "FORBIDDEN")
				return
			}
			zap.L().Error("payment notification failed", append(fields, zap.Error(err))...)
			c.String(http.StatusBadRequest, "ERROR")
			return
		}

		orderControllers.AnnouncePayment(ctx, hub, m, order, res)
		c.String(http.StatusOK, "OK")
	}
}

// GET /api/payments/status/:orderId
func PaymentStatusHandler(db *gorm.DB) gin.HandlerFunc {
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
		resp, err := GetPaymentStatus(db.WithContext(c.Request.Context()), orderID, userID)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}
