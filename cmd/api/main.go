package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/redis/go-redis/v9"

	"github.com/example/storefront/internal/api"
	"github.com/example/storefront/internal/auth"
	"github.com/example/storefront/internal/checkout"
	"github.com/example/storefront/internal/config"
	"github.com/example/storefront/internal/infrastructure/kafka"
	"github.com/example/storefront/internal/infrastructure/session"
	"github.com/example/storefront/internal/infrastructure/store"
	"github.com/example/storefront/internal/order"
	"github.com/example/storefront/internal/payment"
	"github.com/example/storefront/internal/webhook"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[API] %v", err)
	}
	if cfg.JWTSecret == "" {
		log.Fatal("[API] JWT_SECRET environment variable is required")
	}

	log.Println("[API] ========================================")
	log.Println("[API] Storefront API")
	log.Println("[API] ========================================")
	log.Printf("[API] Store backend: %s", cfg.StoreBackend)
	log.Printf("[API] Kafka: %v", cfg.KafkaBrokers)
	log.Printf("[API] Topic: %s", cfg.KafkaTopic)
	log.Printf("[API] Gateway: %s", cfg.GatewayAPIURL)

	// Document store backends
	var cartRepo store.CartRepository
	var orderRepo store.OrderRepository
	switch cfg.StoreBackend {
	case "postgres":
		db, err := store.ConnectPostgres(cfg.PostgresURL)
		if err != nil {
			log.Fatalf("[API] Failed to connect to PostgreSQL: %v", err)
		}
		defer db.Close()
		log.Println("[API] Connected to PostgreSQL")
		cartRepo = store.NewPostgresCartStore(db)
		orderRepo = store.NewPostgresOrderStore(db)
	default:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			log.Fatalf("[API] Failed to load AWS config: %v", err)
		}
		client := dynamodb.NewFromConfig(awsCfg)
		log.Println("[API] Using DynamoDB document store")
		cartRepo = store.NewDynamoCartStore(client, cfg.DynamoCartTable)
		orderRepo = store.NewDynamoOrderStore(client, cfg.DynamoOrderTbl, cfg.DynamoUserIndex)
	}

	// Session snapshots in Redis
	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()
	snapshots := session.NewRedisStore(redisClient, 30*24*time.Hour)

	// Order event stream
	producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
	defer producer.Close()

	// Services
	webhooks := webhook.NewClient(cfg.WebhookURL)
	orderSvc := order.NewService(orderRepo, webhooks, producer)
	paymentClient := payment.NewClient(cfg.GatewayAPIURL, cfg.IPLookupURL, cfg.GatewayStoreID, cfg.GatewaySecretKey)
	flow := checkout.NewFlow(orderSvc, paymentClient, cfg.BaseURL)
	jwtService := auth.NewJWTService(cfg.JWTSecret)

	sessions := api.NewSessionManager(cartRepo, snapshots)
	defer sessions.Close()

	handlers := api.NewHandlers(sessions, flow, orderSvc, paymentClient, webhooks)
	router := api.NewRouter(handlers, jwtService)

	// Start HTTP server
	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: router,
	}

	go func() {
		log.Printf("[API] Server started on %s", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("[API] Server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[API] Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	server.Shutdown(shutdownCtx)
}
