// Command payment runs the payment service: the pull-model charge/refund
// API the booking saga drives, plus the provider webhook callback.
package main

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"eventix/internal/auth"
	"eventix/internal/bus"
	"eventix/internal/payment"
	"eventix/pkg/config"
	"eventix/pkg/httpserver"
	"eventix/pkg/logger"
)

func main() {
	cfg := config.Load(config.DefaultConfigFile)

	log := logger.New("payment", cfg.App.Env, cfg.Logging.Dir)
	accessLog := logger.NewAccessLogger(cfg.Logging.Dir)
	defer log.Sync()

	db, err := gorm.Open(postgres.Open(cfg.Postgres.DSN), &gorm.Config{})
	if err != nil {
		log.Fatal("connect postgres", zap.Error(err))
	}
	if err := db.AutoMigrate(&payment.Payment{}); err != nil {
		log.Fatal("migrate payment schema", zap.Error(err))
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})

	ctx := context.Background()
	idempotency := bus.NewIdempotencyStore(redisClient, "payment", 0)
	b, err := bus.Connect(ctx, cfg.RabbitMQ.URL, "payment", idempotency, log)
	if err != nil {
		log.Fatal("connect bus", zap.Error(err))
	}
	defer b.Close()

	repo := payment.NewRepository(db)
	svc := payment.NewService(repo, &payment.SimulatedProvider{}, b, log)
	handler := payment.NewHandler(svc, log)
	authMw := auth.NewMiddleware(log, accessLog, &cfg.Security)

	r := gin.New()
	r.Use(gin.Recovery(), authMw.RequestID(), authMw.AccessLog())
	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })

	api := r.Group("/api/v1")
	payment.RegisterPublicRoutes(api, handler)

	protected := api.Group("")
	protected.Use(authMw.Authn())
	payment.RegisterRoutes(protected, handler)

	httpserver.ServeGraceful(cfg.Server.HTTPAddr, r)
}
