package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	payhereControllers "github.com/boostbench/ecommerce-api/controllers/payhere"
	"github.com/boostbench/ecommerce-api/models"
)

func SetupPaymentNotifyRoute(rg *gin.RouterGroup, db *gorm.DB, d Deps) {
	rg.POST("/payments/notify", payhereControllers.PaymentNotifyHandler(db, d.Gateway, d.Hub, d.Mailer))
}

func SetupPaymentRoutes(rg *gin.RouterGroup, db *gorm.DB, d Deps) {
	payments := rg.Group("/payments")
	{
		payments.POST("/initiate/:orderId", can(db, models.PermOrderPay), payhereControllers.InitiatePaymentHandler(db, d.Gateway))
		payments.GET("/status/:orderId", can(db, models.PermOrderRead), payhereControllers.PaymentStatusHandler(db))
	}
}
