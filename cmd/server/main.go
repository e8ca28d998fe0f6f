package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	c "github.com/Parthsawant1298/webhackathon-sub001/internal/cache"
	"github.com/Parthsawant1298/webhackathon-sub001/internal/email"
	"github.com/Parthsawant1298/webhackathon-sub001/internal/gateway"
	h "github.com/Parthsawant1298/webhackathon-sub001/internal/http"
	"github.com/Parthsawant1298/webhackathon-sub001/internal/repository"
	"github.com/Parthsawant1298/webhackathon-sub001/internal/service"
)

type Config struct {
	HTTPPort        string
	MongoURI        string
	MongoDBName     string
	RedisAddr       string
	RedisPassword   string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	TxnCommitTime   time.Duration
}

func loadConfig() *Config {
	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:     getEnv("MONGO_DB_NAME", "marketplace"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		TxnCommitTime:   5 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	_ = godotenv.Load()
	cfg := loadConfig()

	ctx := context.Background()
	client, db, err := repository.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		if err := client.Disconnect(ctx); err != nil {
			log.Printf("mongo disconnect failed: %v", err)
		}
	}()
	log.Printf("Connected to MongoDB at %s", cfg.MongoURI)

	orders := repository.NewMongoOrderRepository(db)
	stocks := repository.NewMongoStockStore(db)
	carts := repository.NewMongoCartRepository(db)
	runner := repository.NewMongoTxnRunner(client, cfg.TxnCommitTime)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("Redis connection failed:", err)
	}
	log.Printf("Redis ping succeeded")
	cartCache := c.NewRedisCache(redisClient)

	gw := gateway.NewClient(gateway.Config{
		BaseURL:   getEnv("GATEWAY_BASE_URL", "https://api.razorpay.com"),
		KeyID:     os.Getenv("GATEWAY_KEY_ID"),
		KeySecret: os.Getenv("GATEWAY_KEY_SECRET"),
	})

	mail := email.NewClient(email.Config{
		BaseURL:  getEnv("EMAIL_BASE_URL", "https://api.sendgrid.com"),
		APIKey:   os.Getenv("EMAIL_API_KEY"),
		From:     getEnv("EMAIL_FROM", "orders@marketplace.local"),
		MockMode: getEnv("EMAIL_MOCK_MODE", "false") == "true",
	})

	verifier := service.NewSignatureVerifier(os.Getenv("GATEWAY_WEBHOOK_SECRET"))
	checkout := service.NewCheckoutService(orders, carts, cartCache, stocks, runner, gw, verifier, mail)
	checkoutHandler := h.NewCheckoutHandler(checkout, cfg.RequestTimeout)

	// Setup router
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/checkout", func(r chi.Router) {
			r.With(h.MockAuthMiddleware).Post("/intent", checkoutHandler.CreateIntent)
			// The confirm endpoint is authenticated by its HMAC signature,
			// not by a user session.
			r.Post("/confirm", checkoutHandler.Confirm)
		})
		r.With(h.MockAuthMiddleware).Get("/orders/{order_id}", checkoutHandler.GetOrder)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("checkout server starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("server exited")
}
