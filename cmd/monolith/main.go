// Command monolith runs every domain service in a single process behind
// one router, for local development and small deployments where running
// four separate service binaries and a gateway in front of them is overkill.
package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"eventix/internal/auth"
	"eventix/internal/booking"
	"eventix/internal/bus"
	"eventix/internal/database"
	"eventix/internal/event"
	"eventix/internal/events"
	"eventix/internal/notification"
	"eventix/internal/payment"
	"eventix/internal/reservation"
	"eventix/internal/router"
	"eventix/internal/saga"
	"eventix/internal/user"
	"eventix/pkg/cache"
	"eventix/pkg/config"
	"eventix/pkg/httpserver"
	"eventix/pkg/logger"

	"github.com/redis/go-redis/v9"
)

func main() {
	cfg := config.Load(config.DefaultConfigFile)

	log := logger.New("monolith", cfg.App.Env, cfg.Logging.Dir)
	accessLog := logger.NewAccessLogger(cfg.Logging.Dir)
	defer log.Sync()

	gormDB, err := gorm.Open(postgres.Open(cfg.Postgres.DSN), &gorm.Config{})
	if err != nil {
		log.Fatal("connect postgres", zap.Error(err))
	}
	if err := gormDB.AutoMigrate(
		&user.User{}, &event.Event{}, &booking.Booking{}, &booking.Item{}, &payment.Payment{},
		&saga.Instance{}, &notification.Notification{},
		&reservation.Seat{}, &reservation.Reservation{},
	); err != nil {
		log.Fatal("migrate schema", zap.Error(err))
	}

	redisCache := cache.MustOpen(cfg.Redis.Addr, cfg.Redis.DB)
	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})

	ctx := context.Background()
	idempotency := bus.NewIdempotencyStore(redisClient, "monolith", 0)
	messageBus, err := bus.Connect(ctx, cfg.RabbitMQ.URL, "monolith", idempotency, log)
	if err != nil {
		log.Fatal("connect bus", zap.Error(err))
	}
	defer messageBus.Close()

	userRepo := user.NewRepository(gormDB)
	userSvc := user.NewService(userRepo, log)
	userHandler := user.NewHandler(userSvc, &cfg.Security, log)

	eventRepo := event.NewEventRepository(gormDB)
	eventSvc := event.NewService(gormDB, eventRepo, redisCache, log)
	eventHandler := event.NewHandler(eventSvc, log)

	paymentRepo := payment.NewRepository(gormDB)
	paymentSvc := payment.NewService(paymentRepo, &payment.SimulatedProvider{}, messageBus, log)
	paymentHandler := payment.NewHandler(paymentSvc, log)

	reservationRepo := reservation.NewRepository(gormDB)
	reservationSvc := reservation.NewService(gormDB, reservationRepo, messageBus, log)

	bookingRepo := booking.NewBookingRepository(gormDB)
	dbAdapter := database.NewDatabaseAdapter(gormDB)
	bookingSvc := booking.NewService(dbAdapter, bookingRepo, eventSvc, reservationSvc, busPublisherAdapter{messageBus}, redisCache, log)

	sagaStore := saga.NewStore(gormDB)
	orchestrator := saga.NewOrchestrator(sagaStore, log)
	orchestrator.Register(saga.NewBookingConfirmationDefinition(saga.BookingConfirmationDeps{
		ReserveSeats: func(ctx context.Context, data saga.Data) (saga.Data, error) {
			return reserveSeatsStep(ctx, reservationSvc, data)
		},
		ReleaseSeats: func(ctx context.Context, data saga.Data) error {
			ids := stringSliceArg(data, "reservation_ids")
			if len(ids) == 0 {
				return nil
			}
			return reservationSvc.Release(ctx, ids, "saga_compensated")
		},
		CreatePaymentIntent: func(ctx context.Context, data saga.Data) (saga.Data, error) {
			return paymentSvc.CreatePaymentIntentStep(ctx, data)
		},
		CancelPaymentIntent: func(ctx context.Context, data saga.Data) error {
			paymentID, err := saga.StringArg(data, "payment_id")
			if err != nil {
				return nil
			}
			return paymentSvc.Cancel(ctx, paymentID)
		},
		ProcessPayment: paymentSvc.ProcessPaymentStep,
		RefundPayment:  paymentSvc.RefundPaymentCompensation,
	}))
	orchestrator.SetPublisher(messageBus)
	bookingSvc.SetOrchestrator(orchestrator)
	bookingHandler := booking.NewHandler(bookingSvc, log)

	notificationRepo := notification.NewRepository(gormDB)
	notificationSvc := notification.NewService(notificationRepo, notification.NewLoggingSender(log), log)
	if err := notification.RegisterHandlers(ctx, messageBus, notificationSvc); err != nil {
		log.Fatal("register notification handlers", zap.Error(err))
	}

	if err := messageBus.Subscribe(ctx, bus.ExchangeBooking, "booking", func(ctx context.Context, env events.Envelope) error {
		if env.EventType != events.BookingInitiated {
			return nil
		}
		return bookingSvc.HandleBookingCreated(ctx, env.Data)
	}); err != nil {
		log.Fatal("subscribe booking.initiated", zap.Error(err))
	}

	if err := messageBus.Subscribe(ctx, bus.ExchangePayment, "payment", func(ctx context.Context, env events.Envelope) error {
		if env.EventType != events.PaymentRefunded {
			return nil
		}
		var payload events.PaymentPayload
		if err := env.Unmarshal(&payload); err != nil {
			return err
		}
		return bookingSvc.HandlePaymentRefunded(ctx, payload.BookingID)
	}); err != nil {
		log.Fatal("subscribe payment.refunded", zap.Error(err))
	}

	authMw := auth.NewMiddleware(log, accessLog, &cfg.Security)
	r := router.New(router.Deps{
		UserH:    userHandler,
		EventH:   eventHandler,
		BookingH: bookingHandler,
		PaymentH: paymentHandler,
		Cfg:      &cfg.Security,
		AuthM:    authMw,
	})
	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })

	httpserver.ServeGraceful(cfg.Server.HTTPAddr, r)
}

// busPublisherAdapter adapts *bus.Bus's typed Publish to booking.Publisher's
// untyped (topic, payload) shape, mapping the booking service's legacy
// topic strings onto the bus's dotted event type taxonomy.
type busPublisherAdapter struct {
	bus *bus.Bus
}

func (a busPublisherAdapter) Publish(topic string, v interface{}) error {
	eventType := events.BookingInitiated
	switch topic {
	case "booking.initiated":
		eventType = events.BookingInitiated
	case "booking.confirmed":
		eventType = events.BookingConfirmed
	case "booking.cancelled":
		eventType = events.BookingCancelled
	case "booking.expired":
		eventType = events.BookingExpired
	}
	_, err := a.bus.Publish(eventType, "", "", v)
	return err
}

// reserveSeatsStep is the booking_confirmation saga's "ReserveSeats"
// Execute function; see cmd/booking's copy for the full rationale.
func reserveSeatsStep(ctx context.Context, seats *reservation.Service, data saga.Data) (saga.Data, error) {
	eventID, err := saga.StringArg(data, "event_id")
	if err != nil {
		return nil, err
	}
	seatIDs := stringSliceArg(data, "seat_ids")
	if len(seatIDs) == 0 {
		return saga.Data{"reservation_ids": []string{}}, nil
	}
	userID, _ := data["user_id"].(string)
	pricePerSeat, _ := data["price_per_seat"].(int64)
	currency, _ := data["currency"].(string)

	reservations, err := seats.Reserve(ctx, eventID, seatIDs, userID, 15*time.Minute, pricePerSeat, currency)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(reservations))
	for i, r := range reservations {
		ids[i] = r.ID
	}
	return saga.Data{"reservation_ids": ids}, nil
}

// stringSliceArg reads a []string saga Data value that may have
// round-tripped through JSON (and so decoded as []interface{}).
func stringSliceArg(data saga.Data, key string) []string {
	switch v := data[key].(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
