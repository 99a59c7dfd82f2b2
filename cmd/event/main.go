// Command event runs the event catalog service: public browsing and
// admin-only catalog management, with Redis-backed seat counters.
package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"eventix/internal/auth"
	"eventix/internal/bus"
	"eventix/internal/event"
	"eventix/internal/events"
	"eventix/internal/reservation"
	"eventix/pkg/cache"
	"eventix/pkg/config"
	"eventix/pkg/httpserver"
	"eventix/pkg/logger"

	_ "eventix/internal/docs"
)

func main() {
	cfg := config.Load(config.DefaultConfigFile)

	log := logger.New("event", cfg.App.Env, cfg.Logging.Dir)
	accessLog := logger.NewAccessLogger(cfg.Logging.Dir)
	defer log.Sync()

	db, err := gorm.Open(postgres.Open(cfg.Postgres.DSN), &gorm.Config{})
	if err != nil {
		log.Fatal("connect postgres", zap.Error(err))
	}
	if err := db.AutoMigrate(&event.Event{}, &reservation.Seat{}, &reservation.Reservation{}); err != nil {
		log.Fatal("migrate event schema", zap.Error(err))
	}

	redisClient := cache.MustOpen(cfg.Redis.Addr, cfg.Redis.DB)

	repo := event.NewEventRepository(db)
	svc := event.NewService(db, repo, redisClient, log)
	handler := event.NewHandler(svc, log)
	authMw := auth.NewMiddleware(log, accessLog, &cfg.Security)

	// Per-seat reservation store for venues that sell named seats rather
	// than the counter-based general-admission path event.Service drives;
	// its only consumer here is the expiry sweep below.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rawRedis := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	idempotency := bus.NewIdempotencyStore(rawRedis, "event", 0)
	messageBus, err := bus.Connect(ctx, cfg.RabbitMQ.URL, "event", idempotency, log)
	if err != nil {
		log.Fatal("connect bus", zap.Error(err))
	}
	defer messageBus.Close()
	reservationRepo := reservation.NewRepository(db)
	reservationSvc := reservation.NewService(db, reservationRepo, messageBus, log)
	go runExpirySweep(ctx, reservationSvc, log)

	// General-admission items (no SeatID) never touch reservation.Service;
	// their capacity lives in event.Service's Redis counter, decremented
	// here as soon as a booking is initiated. Seat-level items go through
	// the booking_confirmation saga's ReserveSeats step instead.
	if err := messageBus.Subscribe(ctx, bus.ExchangeBooking, "booking", func(ctx context.Context, env events.Envelope) error {
		if env.EventType != events.BookingInitiated {
			return nil
		}
		return handleBookingInitiatedGA(ctx, svc, env, log)
	}); err != nil {
		log.Fatal("subscribe booking.initiated", zap.Error(err))
	}

	r := gin.New()
	r.Use(gin.Recovery(), authMw.RequestID(), authMw.AccessLog())
	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api/v1")
	event.RegisterPublicRoutes(api, handler)

	admin := api.Group("/admin")
	admin.Use(authMw.Authn(), authMw.Authorize(auth.RoleAdmin))
	event.RegisterAdminRoutes(admin, handler)

	httpserver.ServeGraceful(cfg.Server.HTTPAddr, r)
}

// handleBookingInitiatedGA decrements event.Service's general-admission
// capacity counter for a booking.initiated message's quantity-only items
// (SeatID empty). Seat-level items are ignored here; they're reserved by
// the booking_confirmation saga's ReserveSeats step instead.
func handleBookingInitiatedGA(ctx context.Context, svc *event.Service, env events.Envelope, log *zap.Logger) error {
	var payload events.BookingInitiatedPayload
	if err := env.Unmarshal(&payload); err != nil {
		return err
	}
	var gaQuantity int
	for _, it := range payload.Items {
		if it.SeatID == "" {
			gaQuantity += it.Quantity
		}
	}
	if gaQuantity == 0 {
		return nil
	}
	ok, err := svc.Reserve(ctx, payload.EventID, gaQuantity)
	if err != nil {
		return err
	}
	if !ok {
		log.Warn("general-admission capacity exhausted at booking.initiated",
			zap.String("booking_id", payload.BookingID), zap.String("event_id", payload.EventID), zap.Int("quantity", gaQuantity))
	}
	return nil
}

// runExpirySweep expires PENDING seat reservations past their TTL every
// 30s until ctx is cancelled, per reservation.Service.SweepExpired's doc.
func runExpirySweep(ctx context.Context, svc *reservation.Service, log *zap.Logger) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := svc.SweepExpired(ctx); err != nil {
				log.Error("sweep expired reservations failed", zap.Error(err))
			}
		}
	}
}
