package orderControllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"

	"github.com/boostbench/ecommerce-api/apperr"
	cartControllers "github.com/boostbench/ecommerce-api/controllers/cart"
	"github.com/boostbench/ecommerce-api/middleware"
	"github.com/boostbench/ecommerce-api/models"
	"github.com/boostbench/ecommerce-api/settlement"
	"github.com/boostbench/ecommerce-api/testutil"
)

func fillCart(t *testing.T, db *gorm.DB, userID string, p models.Product, qty int) {
	t.Helper()
	_, err := cartControllers.AddItem(db, userID, p.ID, qty)
	require.NoError(t, err)
}

func TestPlaceOrderFreezesPricesAndClearsCart(t *testing.T) {
	db := testutil.NewDB(t)
	a := testutil.CreateProduct(t, db, "ProductA", "100", "10", 5)
	fillCart(t, db, "u1", a, 2)

	order, err := PlaceOrder(db, "u1")
	require.NoError(t, err)

	assert.Equal(t, "180.00", order.TotalAmount.StringFixed(2))
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, models.PaymentStatusPending, order.PaymentStatus)
	assert.Equal(t, models.StockUntouched, order.StockState)
	assert.NotEmpty(t, order.OrderRef)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "90", order.Items[0].Price.String())

	cart, err := cartControllers.GetCart(db, "u1")
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	stock := testutil.ReloadProduct(t, db, a.ID)
	assert.Equal(t, 5, stock.AvailableQuantity, "checkout does not take stock")

	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", a.ID).
		Update("price", decimal.NewFromInt(500)).Error)

	got, err := GetOrderByID(db, order.ID, "u1")
	require.NoError(t, err)
	sum := decimal.Zero
	for _, item := range got.Items {
		sum = sum.Add(item.LineTotal())
	}
	assert.True(t, sum.Equal(got.TotalAmount))
	assert.Equal(t, "180.00", got.TotalAmount.StringFixed(2))
}

func TestPlaceOrderEmptyOrMissingCart(t *testing.T) {
	db := testutil.NewDB(t)
	p := testutil.CreateProduct(t, db, "A", "10", "0", 5)

	_, err := PlaceOrder(db, "u1")
	assert.True(t, apperr.Is(err, apperr.NotFound))

	fillCart(t, db, "u1", p, 1)
	require.NoError(t, cartControllers.ClearCart(db, "u1"))

	_, err = PlaceOrder(db, "u1")
	assert.True(t, apperr.Is(err, apperr.InvalidState))

	var orders int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orders).Error)
	assert.Zero(t, orders)
}

func TestPlaceOrderShortStockLeavesCart(t *testing.T) {
	db := testutil.NewDB(t)
	a := testutil.CreateProduct(t, db, "A", "10", "0", 5)
	b := testutil.CreateProduct(t, db, "B", "10", "0", 5)
	fillCart(t, db, "u1", a, 1)
	fillCart(t, db, "u1", b, 3)

	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", b.ID).
		Update("available_quantity", 2).Error)

	_, err := PlaceOrder(db, "u1")
	assert.True(t, apperr.Is(err, apperr.InsufficientStock))

	cart, err := cartControllers.GetCart(db, "u1")
	require.NoError(t, err)
	assert.Len(t, cart.Items, 2)

	var orders int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orders).Error)
	assert.Zero(t, orders)
}

func TestGetOrderByIDOwnership(t *testing.T) {
	db := testutil.NewDB(t)
	p := testutil.CreateProduct(t, db, "A", "10", "0", 5)
	fillCart(t, db, "u1", p, 1)
	order, err := PlaceOrder(db, "u1")
	require.NoError(t, err)

	_, err = GetOrderByID(db, order.ID, "u2")
	assert.True(t, apperr.Is(err, apperr.Forbidden))

	_, err = GetOrderByID(db, 999, "u1")
	assert.True(t, apperr.Is(err, apperr.NotFound))

	mine, err := GetUserOrders(db, "u1")
	require.NoError(t, err)
	assert.Len(t, mine, 1)
	theirs, err := GetUserOrders(db, "u2")
	require.NoError(t, err)
	assert.Empty(t, theirs)

	all, err := GetAllOrders(db)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestUpdateOrderStatus(t *testing.T) {
	db := testutil.NewDB(t)
	p := testutil.CreateProduct(t, db, "A", "10", "0", 5)
	fillCart(t, db, "u1", p, 1)
	order, err := PlaceOrder(db, "u1")
	require.NoError(t, err)

	_, err = UpdateOrderStatus(db, order.ID, "teleported")
	assert.True(t, apperr.Is(err, apperr.InvalidArgument))

	updated, err := UpdateOrderStatus(db, order.ID, "shipped")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusShipped, updated.Status)
	assert.Equal(t, models.PaymentStatusPending, updated.PaymentStatus, "fulfilment override leaves payment alone")

	_, err = UpdateOrderStatus(db, 999, "SHIPPED")
	assert.True(t, apperr.Is(err, apperr.NotFound))
}

func TestUpdateOrderPaymentStatusSettlesOnce(t *testing.T) {
	db := testutil.NewDB(t)
	p := testutil.CreateProduct(t, db, "A", "100", "10", 5)
	fillCart(t, db, "u1", p, 2)
	order, err := PlaceOrder(db, "u1")
	require.NoError(t, err)

	got, res, err := UpdateOrderPaymentStatus(db, order.ID, "paid", "pay-1", "VISA")
	require.NoError(t, err)
	assert.True(t, res.Settled)
	assert.Equal(t, models.OrderStatusConfirmed, got.Status)
	assert.NotNil(t, got.PaymentCompletedAt)

	_, res, err = UpdateOrderPaymentStatus(db, order.ID, "PAID", "pay-1", "VISA")
	require.NoError(t, err)
	assert.False(t, res.Changed)

	stock := testutil.ReloadProduct(t, db, p.ID)
	assert.Equal(t, 3, stock.AvailableQuantity)
	assert.Equal(t, 2, stock.SoldQuantity)

	_, _, err = UpdateOrderPaymentStatus(db, order.ID, "bogus", "", "")
	assert.True(t, apperr.Is(err, apperr.InvalidArgument))
}

func TestBuildOrdersWorkbook(t *testing.T) {
	paid := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	orders := []models.Order{{
		ID:                 1,
		OrderRef:           "ref-1",
		UserID:             "u1",
		Status:             models.OrderStatusConfirmed,
		PaymentStatus:      models.PaymentStatusPaid,
		TotalAmount:        decimal.RequireFromString("180"),
		PaymentCompletedAt: &paid,
		Items: []models.OrderItem{
			{ProductName: "Lamp", Quantity: 2},
			{ProductName: "Rug", Quantity: 1},
		},
	}}

	file, err := BuildOrdersWorkbook(orders)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, file.Write(&buf))
	back, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)

	sheet := back.Sheets[0]
	require.Len(t, sheet.Rows, 2)
	assert.Equal(t, "OrderRef", sheet.Rows[0].Cells[1].String())
	assert.Equal(t, "ref-1", sheet.Rows[1].Cells[1].String())
	assert.Equal(t, "2 x Lamp, 1 x Rug", sheet.Rows[1].Cells[8].String())
	assert.Equal(t, "2025-01-02 03:04:05", sheet.Rows[1].Cells[11].String())
}

func TestPlaceOrderHandlerBroadcasts(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := testutil.NewDB(t)
	p := testutil.CreateProduct(t, db, "A", "10", "0", 5)
	fillCart(t, db, "u1", p, 1)

	hub := NewHub()
	r := gin.New()
	r.GET("/ws", hub.OrderWebSocketHandler)
	api := r.Group("/api/orders", func(c *gin.Context) { c.Set(middleware.UserIDKey, "u1") })
	api.POST("/place", PlaceOrderHandler(db, hub))
	api.GET("/:orderId", GetOrderByIDHandler(db))

	srv := httptest.NewServer(r)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 10*time.Millisecond)

	resp, err := http.Post(srv.URL+"/api/orders/place", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var ev Event
	require.NoError(t, json.Unmarshal(data, &ev))
	assert.Equal(t, EventOrderPlaced, ev.Type)
	assert.Equal(t, "u1", ev.Order.UserID)

	resp, err = http.Get(srv.URL + "/api/orders/abc")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestExportOrdersWriteFailureKeepsResponse(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := testutil.NewDB(t)
	p := testutil.CreateProduct(t, db, "A", "10", "0", 5)
	fillCart(t, db, "u1", p, 1)
	_, err := PlaceOrder(db, "u1")
	require.NoError(t, err)

	r := gin.New()
	r.GET("/api/orders/export", ExportOrdersToExcel(db))

	w := &testutil.BrokenWriter{}
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/orders/export", nil))

	assert.Equal(t, http.StatusOK, w.Status)
	require.NotEmpty(t, w.Attempts)
	for _, body := range w.Attempts {
		assert.NotContains(t, string(body), `"error"`)
	}
}

func TestBroadcastDropsSlowClient(t *testing.T) {
	hub := NewHub()
	// No writer drains this client, so its queue fills after one event.
	slow := &client{send: make(chan []byte, 1)}
	hub.add(slow)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 3; i++ {
			hub.Broadcast(EventOrderPlaced, models.Order{OrderRef: "ref-1"})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast blocked on a client that is not reading")
	}

	assert.Equal(t, 0, hub.Clients())
	_, ok := <-slow.send
	assert.True(t, ok, "first event stays queued")
	_, ok = <-slow.send
	assert.False(t, ok, "queue is closed once the client is dropped")

	hub.remove(slow)
}

type gatedMailer struct {
	release chan struct{}
	sent    chan error
}

func (m gatedMailer) SendPaymentReceipt(ctx context.Context, _ models.Order) error {
	<-m.release
	m.sent <- ctx.Err()
	return nil
}

func TestAnnouncePaymentSendsReceiptInBackground(t *testing.T) {
	m := gatedMailer{release: make(chan struct{}), sent: make(chan error, 1)}
	ctx, cancel := context.WithCancel(context.Background())
	order := models.Order{ID: 7, OrderRef: "ref-7"}

	returned := make(chan struct{})
	go func() {
		AnnouncePayment(ctx, nil, m, &order, settlement.Result{Changed: true, Settled: true})
		close(returned)
	}()
	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("AnnouncePayment waited for the mailer")
	}

	// The request context ending must not cancel the receipt.
	cancel()
	close(m.release)
	select {
	case err := <-m.sent:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("receipt was never sent")
	}
}
