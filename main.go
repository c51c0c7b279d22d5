package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MazenAbdallaAbdelhadi/multi-vendor-ecommerce/controllers"
	"github.com/MazenAbdallaAbdelhadi/multi-vendor-ecommerce/database"
	apperrors "github.com/MazenAbdallaAbdelhadi/multi-vendor-ecommerce/errors"
	"github.com/MazenAbdallaAbdelhadi/multi-vendor-ecommerce/kafka"
	"github.com/MazenAbdallaAbdelhadi/multi-vendor-ecommerce/logger"
	"github.com/MazenAbdallaAbdelhadi/multi-vendor-ecommerce/middleware"
	"github.com/MazenAbdallaAbdelhadi/multi-vendor-ecommerce/repository"
	"github.com/MazenAbdallaAbdelhadi/multi-vendor-ecommerce/routes"
	"github.com/MazenAbdallaAbdelhadi/multi-vendor-ecommerce/services"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		panic(err)
	}

	logger.Initialize(cfg.Env)
	defer logger.Sync()
	log := logger.Log

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := database.ConnectWithConfig(cfg.MongoURI, cfg.MongoDB); err != nil {
		log.Fatal("Database connection failed", zap.Error(err))
	}
	defer func() {
		if err := database.Close(); err != nil {
			log.Warn("MongoDB disconnect failed", zap.Error(err))
		}
	}()

	if err := database.EnsureIndexes(context.Background(), database.DB); err != nil {
		log.Fatal("Index creation failed", zap.Error(err))
	}

	// Optional collaborators: the service runs without Kafka or Redis, it
	// just loses event publication and list caching.
	var producer services.EventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		p := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic, log)
		defer p.Close()
		producer = p
	}

	var cache *controllers.CacheManager
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		cache = controllers.NewCacheManager(rdb)
	}

	carts := repository.NewMongoCartRepository(database.DB)
	orders := repository.NewMongoOrderRepository(database.DB)
	products := repository.NewMongoProductRepository(database.DB)
	stores := repository.NewMongoStoreRepository(database.DB)
	users := repository.NewMongoUserRepository(database.DB)

	stripeSvc := services.NewStripeService(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
	inventory := services.NewInventoryService(products, log)
	payouts := services.NewPayoutService(stores, log)
	orderSvc := services.NewOrderService(carts, orders, products, inventory, stripeSvc, producer, cfg.StripePublishableKey, cfg.Currency, log)
	statusSvc := services.NewOrderStatusService(orders, payouts, producer, log)
	webhookSvc := services.NewWebhookProcessor(stripeSvc, carts, users, orders, products, inventory, producer, log)

	orderController := &controllers.OrderController{
		Orders: orderSvc,
		Status: statusSvc,
		Cache:  cache,
		Logger: log,
	}
	webhookController := &controllers.WebhookController{
		Processor: webhookSvc,
		Logger:    log,
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.RequestLogger())
	r.Use(middleware.RateLimitMiddleware())
	r.Use(apperrors.ErrorMiddleware())

	// Request-scoped timeout; bounds gateway and database calls.
	r.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	// Public, signature-verified; registered outside the auth group and
	// handled over the raw body.
	r.POST("/order/payment-webhook", webhookController.HandleWebhook)

	orderRoutes := r.Group("/order")
	orderRoutes.Use(middleware.Protect([]byte(cfg.JWTSecret)))
	routes.RegisterOrderRoutes(orderRoutes, orderController)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Info("Order service started", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}
	log.Info("Server exited cleanly")
}
