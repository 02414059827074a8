package main

import (
	"log"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/partspoint/autoparts-backend/catalog"
	"github.com/partspoint/autoparts-backend/common/logger"
	"github.com/partspoint/autoparts-backend/config"
	"github.com/partspoint/autoparts-backend/controllers"
	"github.com/partspoint/autoparts-backend/database"
	"github.com/partspoint/autoparts-backend/kafka"
	"github.com/partspoint/autoparts-backend/models"
	"github.com/partspoint/autoparts-backend/repository"
	"github.com/partspoint/autoparts-backend/routes"
	"github.com/partspoint/autoparts-backend/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	logger.Initialize(cfg.Env)
	defer logger.Log.Sync()

	db, err := database.ConnectPostgres(cfg.DSN(), logger.Log,
		&models.Order{}, &models.OrderItem{}, &models.StockLevel{}, &models.PaymentRequest{})
	if err != nil {
		logger.Log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer database.Close(db)

	redisClient, err := database.NewRedisClient(cfg.RedisURL)
	if err != nil {
		logger.Log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()

	producer := kafka.NewProducer(
		strings.Split(cfg.KafkaBrokers, ","),
		cfg.OrderEventsTopic,
		cfg.PaymentEventsTopic,
	)
	defer producer.Close()

	catalogGw := catalog.NewHTTPClient(cfg.ProductServiceURL)

	cartRepo := repository.NewRedisCartRepository(redisClient, cfg.CartTTL)
	orderRepo := repository.NewGormOrderRepository(db)
	stockRepo := repository.NewGormStockRepository(db)
	paymentRepo := repository.NewGormPaymentRepository(db)

	cartSvc := services.NewCartService(cartRepo, catalogGw)
	inventorySvc := services.NewInventoryService(stockRepo, logger.Log)
	orderSvc := services.NewOrderService(orderRepo, cartSvc, inventorySvc, catalogGw, producer, logger.Log)

	gateway := services.NewDarajaService(services.DarajaConfig{
		BaseURL:        cfg.DarajaBaseURL,
		ShortCode:      cfg.DarajaShortCode,
		Passkey:        cfg.DarajaPasskey,
		ConsumerKey:    cfg.DarajaConsumerKey,
		ConsumerSecret: cfg.DarajaConsumerSecret,
		CallbackURL:    cfg.DarajaCallbackURL,
		Timeout:        cfg.DarajaTimeout,
	})
	paymentSvc := services.NewPaymentService(paymentRepo, orderRepo, gateway, producer, logger.Log)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.RequestLogger())

	routes.RegisterRoutes(r,
		controllers.NewCartController(cartSvc),
		controllers.NewOrderController(orderSvc, cfg.DeliveryFee),
		controllers.NewPaymentController(paymentSvc, logger.Log),
		controllers.NewInventoryController(inventorySvc),
	)

	logger.Log.Info("Server starting", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Log.Fatal("Server failed", zap.Error(err))
	}
}
