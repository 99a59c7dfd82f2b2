// Command booking runs the booking service: seat-count reservation,
// booking lifecycle, the booking_confirmation payment saga and the
// notification consumer that reacts to booking/payment events.
package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"eventix/internal/auth"
	"eventix/internal/booking"
	"eventix/internal/bus"
	"eventix/internal/database"
	"eventix/internal/event"
	"eventix/internal/events"
	"eventix/internal/metrics"
	"eventix/internal/notification"
	"eventix/internal/payment"
	"eventix/internal/reservation"
	"eventix/internal/saga"
	"eventix/pkg/cache"
	"eventix/pkg/config"
	"eventix/pkg/httpserver"
	"eventix/pkg/logger"
)

func main() {
	cfg := config.Load(config.DefaultConfigFile)

	log := logger.New("booking", cfg.App.Env, cfg.Logging.Dir)
	accessLog := logger.NewAccessLogger(cfg.Logging.Dir)
	defer log.Sync()

	gormDB, err := gorm.Open(postgres.Open(cfg.Postgres.DSN), &gorm.Config{})
	if err != nil {
		log.Fatal("connect postgres", zap.Error(err))
	}
	if err := gormDB.AutoMigrate(
		&booking.Booking{}, &booking.Item{}, &event.Event{}, &payment.Payment{},
		&saga.Instance{}, &notification.Notification{},
		&reservation.Seat{}, &reservation.Reservation{},
	); err != nil {
		log.Fatal("migrate schema", zap.Error(err))
	}

	redisCache := cache.MustOpen(cfg.Redis.Addr, cfg.Redis.DB)
	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})

	ctx := context.Background()
	idempotency := bus.NewIdempotencyStore(redisClient, "booking", 0)
	messageBus, err := bus.Connect(ctx, cfg.RabbitMQ.URL, "booking", idempotency, log)
	if err != nil {
		log.Fatal("connect bus", zap.Error(err))
	}
	defer messageBus.Close()

	eventRepo := event.NewEventRepository(gormDB)
	eventSvc := event.NewService(gormDB, eventRepo, redisCache, log)

	paymentRepo := payment.NewRepository(gormDB)
	paymentSvc := payment.NewService(paymentRepo, &payment.SimulatedProvider{}, messageBus, log)

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
				return nil // nothing was reserved
			}
			return reservationSvc.Release(ctx, ids, "saga_compensated")
		},
		CreatePaymentIntent: func(ctx context.Context, data saga.Data) (saga.Data, error) {
			return paymentSvc.CreatePaymentIntentStep(ctx, data)
		},
		CancelPaymentIntent: func(ctx context.Context, data saga.Data) error {
			paymentID, err := saga.StringArg(data, "payment_id")
			if err != nil {
				return nil // never created, nothing to cancel
			}
			return paymentSvc.Cancel(ctx, paymentID)
		},
		ProcessPayment: paymentSvc.ProcessPaymentStep,
		RefundPayment:  paymentSvc.RefundPaymentCompensation,
	}))
	orchestrator.SetPublisher(messageBus)
	bookingSvc.SetOrchestrator(orchestrator)

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

	bookingHandler := booking.NewHandler(bookingSvc, log)
	authMw := auth.NewMiddleware(log, accessLog, &cfg.Security)

	ticketMetrics := metrics.NewMetrics(bookingRepo, redisCache, log)
	metricsServer := metrics.StartHTTPServer(cfg.Server.MetricsAddr)
	defer metricsServer.Shutdown(ctx)
	go runMetricsLoop(ctx, ticketMetrics)

	r := gin.New()
	r.Use(gin.Recovery(), authMw.RequestID(), authMw.AccessLog())
	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })

	api := r.Group("/api/v1")
	protected := api.Group("")
	protected.Use(authMw.Authn())
	booking.RegisterRoutes(protected, bookingHandler)

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
// Execute function: it reserves every seat-level item synchronously.
// Quantity-only items are not touched here (capacity for those was
// already reserved by cmd/event's booking.initiated handler). It returns the granted
// reservation ids so CancelBooking/ExpireStale can release them later.
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

	reservations, err := seats.Reserve(ctx, eventID, seatIDs, userID, bookingReservationTTL, pricePerSeat, currency)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(reservations))
	for i, r := range reservations {
		ids[i] = r.ID
	}
	return saga.Data{"reservation_ids": ids}, nil
}

// bookingReservationTTL is how long the booking_confirmation saga's seat
// hold lasts, matched to booking's own PENDING -> EXPIRED window.
const bookingReservationTTL = 15 * time.Minute

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

// runMetricsLoop refreshes the tickets-sold/revenue gauges every 15s until
// ctx is cancelled.
func runMetricsLoop(ctx context.Context, m *metrics.Metrics) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.UpdateMetrics(ctx)
		}
	}
}
