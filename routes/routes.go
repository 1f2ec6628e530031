package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/boostbench/ecommerce-api/auth"
	orderControllers "github.com/boostbench/ecommerce-api/controllers/order"
	payhereControllers "github.com/boostbench/ecommerce-api/controllers/payhere"
	"github.com/boostbench/ecommerce-api/mailer"
	"github.com/boostbench/ecommerce-api/middleware"
)

// Deps are the long-lived collaborators handlers need besides the database.
type Deps struct {
	Issuer      auth.Issuer
	JWTSecret   string
	AdminUserID string
	AdminAPIKey string
	Gateway     *payhereControllers.Gateway
	Hub         *orderControllers.Hub
	Mailer      mailer.Mailer
}

// SetupRoutes is the single entry point for every route group.
func SetupRoutes(r *gin.Engine, db *gorm.DB, d Deps) {
	SetupAuthRoutes(r, db, d)

	api := r.Group("/api")

	// PayHere posts here server-to-server; the request signature is the auth.
	SetupPaymentNotifyRoute(api, db, d)

	protected := api.Group("")
	protected.Use(middleware.ValidateToken(d.JWTSecret))

	SetupUserRoutes(protected, db)
	SetupProductRoutes(protected, db)
	SetupCartRoutes(protected, db)
	SetupOrderRoutes(protected, db, d)
	SetupPaymentRoutes(protected, db, d)
	SetupAdminRoutes(protected, db)
}

func can(db *gorm.DB, perms ...string) gin.HandlerFunc {
	return middleware.RequirePermission(db, perms...)
}
