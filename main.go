package main

import (
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/boostbench/ecommerce-api/auth"
	"github.com/boostbench/ecommerce-api/config"
	orderControllers "github.com/boostbench/ecommerce-api/controllers/order"
	payhereControllers "github.com/boostbench/ecommerce-api/controllers/payhere"
	"github.com/boostbench/ecommerce-api/logger"
	"github.com/boostbench/ecommerce-api/mailer"
	"github.com/boostbench/ecommerce-api/models"
	"github.com/boostbench/ecommerce-api/routes"
	"github.com/boostbench/ecommerce-api/seed"
)

func main() {
	cfg := config.Load()

	l, err := logger.Init(cfg.GinMode)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = l.Sync() }()

	if err := cfg.Validate(); err != nil {
		zap.L().Fatal("invalid configuration", zap.Error(err))
	}

	db := initDatabase(cfg)

	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		zap.L().Fatal("auto migrate failed", zap.Error(err))
	}
	if err := seed.Run(db, seed.Admin{ID: cfg.AdminUserID, Email: cfg.AdminEmail}); err != nil {
		zap.L().Fatal("seed failed", zap.Error(err))
	}

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	r.Use(gin.Recovery(), logger.Requests())

	// Allow product workbook uploads
	r.MaxMultipartMemory = 32 << 20

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-API-KEY"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: !allowsAnyOrigin(cfg.AllowedOrigins),
		MaxAge:           12 * time.Hour,
	}))

	routes.SetupRoutes(r, db, routes.Deps{
		Issuer:      auth.Issuer{Secret: []byte(cfg.JWTSecret), TTL: cfg.TokenTTL},
		JWTSecret:   cfg.JWTSecret,
		AdminUserID: cfg.AdminUserID,
		AdminAPIKey: cfg.AdminAPIKey,
		Gateway:     payhereControllers.NewGateway(cfg.PayHere),
		Hub:         orderControllers.NewHub(),
		Mailer:      mailer.New(cfg.Mail),
	})

	zap.L().Info("server starting",
		zap.String("port", cfg.Port),
		zap.Bool("payhere_sandbox", cfg.PayHere.Sandbox),
	)
	if err := r.Run(":" + cfg.Port); err != nil {
		zap.L().Fatal("server stopped", zap.Error(err))
	}
}

// initDatabase opens the postgres connection pool.
func initDatabase(cfg config.Config) *gorm.DB {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		zap.L().Fatal("database connection failed", zap.Error(err))
	}
	return db
}

// Browsers refuse credentialed responses for a wildcard origin.
func allowsAnyOrigin(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
