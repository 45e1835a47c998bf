package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"land-steward-backend/config"
	"land-steward-backend/internal/database"
	"land-steward-backend/internal/handler"
	"land-steward-backend/internal/middleware"
	"land-steward-backend/internal/notification"
	"land-steward-backend/internal/payment"
	"land-steward-backend/internal/queue"
	"land-steward-backend/internal/repository"
	"land-steward-backend/internal/service"
	"land-steward-backend/internal/worker"
	"land-steward-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	defer logger.L.Sync()

	ctx := context.Background()

	pool, err := database.InitDatabase(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer pool.Close()

	if err := database.RunMigrations(ctx, pool); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to initialize redis: %v", err)
	}
	defer rdb.Close()

	hostname, _ := os.Hostname()
	consumerID := fmt.Sprintf("worker-%s-%d", hostname, os.Getpid())
	notificationQueue, err := queue.NewRedisStreamNotificationQueue(rdb, consumerID, nil)
	if err != nil {
		log.Fatalf("Failed to initialize notification queue: %v", err)
	}

	orderRepo := repository.NewOrderRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	planRepo := repository.NewPlanRepository(pool)

	paymentClient := payment.NewClient(
		cfg.Payment.BaseURL,
		cfg.Payment.SecretKey,
		cfg.Payment.WebhookSecret,
		cfg.Payment.Timeout,
	)
	mailer := notification.NewSMTPMailer(cfg.Mail)

	issuer := service.NewTicketIssuer(ticketRepo)
	checkoutService := service.NewCheckoutService(orderRepo, userRepo, paymentClient)
	webhookService := service.NewWebhookService(pool, orderRepo, ticketRepo, issuer, notificationQueue)
	orderService := service.NewOrderService(orderRepo, ticketRepo)
	planService := service.NewPlanService(planRepo)
	userService := service.NewUserService(userRepo)

	notificationWorker := worker.NewNotificationWorker(orderRepo, ticketRepo, mailer, notificationQueue)
	if err := notificationWorker.Start(ctx); err != nil {
		log.Fatalf("Failed to start notification worker: %v", err)
	}

	reconciler := service.NewReconciler(pool, orderRepo, ticketRepo, issuer, notificationQueue, cfg.Reconcile.Interval)
	reconciler.Start(ctx)

	auth := middleware.NewAuthMiddleware(cfg.Auth.Secret)

	router := gin.Default()
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})
	router.Static("/uploads", cfg.Uploads.Dir)

	handler.NewAuthHandler(userService, auth, cfg.Uploads.Dir).RegisterRoutes(router)
	handler.NewCheckoutHandler(checkoutService, auth).RegisterRoutes(router)
	handler.NewWebhookHandler(paymentClient, webhookService).RegisterRoutes(router)
	handler.NewOrderHandler(orderService, auth).RegisterRoutes(router)
	handler.NewPlanHandler(planService, auth, cfg.Uploads.Dir).RegisterRoutes(router)

	logger.WithComponent("server").Info("server starting", zap.String("addr", cfg.Server.Addr))
	if err := router.Run(cfg.Server.Addr); err != nil {
		log.Fatalf("Server exited: %v", err)
	}
}
