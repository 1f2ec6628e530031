package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	orderControllers "github.com/boostbench/ecommerce-api/controllers/order"
	"github.com/boostbench/ecommerce-api/models"
)

func SetupOrderRoutes(rg *gin.RouterGroup, db *gorm.DB, d Deps) {
	orders := rg.Group("/orders")
	{
		orders.POST("/place", can(db, models.PermOrderCreate), orderControllers.PlaceOrderHandler(db, d.Hub))
		orders.GET("/mine", can(db, models.PermOrderReadOwn), orderControllers.GetMyOrdersHandler(db))

		// admin
		orders.GET("/all", can(db, models.PermOrderReadAll), orderControllers.GetAllOrdersHandler(db))
		orders.GET("/export", can(db, models.PermOrderReadAll), orderControllers.ExportOrdersToExcel(db))
		orders.GET("/ws", can(db, models.PermOrderReadAll), d.Hub.OrderWebSocketHandler)
		orders.PUT("/:orderId/status", can(db, models.PermOrderStatusUpdate), orderControllers.UpdateOrderStatusHandler(db, d.Hub))
		orders.PUT("/:orderId/payment-status", can(db, models.PermOrderStatusUpdate), orderControllers.UpdatePaymentStatusHandler(db, d.Hub, d.Mailer))

		orders.GET("/:orderId", can(db, models.PermOrderRead), orderControllers.GetOrderByIDHandler(db))
	}
}
