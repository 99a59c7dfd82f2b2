package booking_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"eventix/internal/booking"
	"eventix/internal/events"
	"eventix/internal/mocks"
	"eventix/internal/saga"
)

// sagaTestDB opens an in-memory sqlite DB with just the columns the
// saga-wiring code path reads or writes. Plain CREATE TABLE rather than
// AutoMigrate, since the production `default:uuid_generate_v4()` column
// tags on Booking/Item/saga.Instance are Postgres-only and sqlite's
// DEFAULT clause grammar rejects a bare function call.
func sagaTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Exec(`CREATE TABLE bookings (
		id TEXT PRIMARY KEY,
		booking_reference TEXT,
		user_id TEXT,
		event_id TEXT,
		total_amount_cents INTEGER,
		currency TEXT,
		status TEXT,
		expiry_date DATETIME,
		confirmed_at DATETIME,
		cancelled_at DATETIME,
		reservation_ids TEXT,
		created_at DATETIME,
		updated_at DATETIME
	)`).Error)
	require.NoError(t, db.Exec(`CREATE TABLE items (
		id TEXT PRIMARY KEY,
		booking_id TEXT,
		seat_id TEXT,
		section_id TEXT,
		section_name TEXT,
		seat_row TEXT,
		seat_number INTEGER,
		unit_price_cents INTEGER,
		quantity INTEGER
	)`).Error)
	require.NoError(t, db.Exec(`CREATE TABLE instances (
		id TEXT PRIMARY KEY,
		definition_name TEXT,
		correlation_id TEXT,
		status TEXT,
		data TEXT,
		results TEXT,
		current_step INTEGER,
		error TEXT,
		created_at DATETIME,
		updated_at DATETIME,
		completed_at DATETIME
	)`).Error)
	return db
}

func TestHandleBookingCreated_OrchestratorCompletes_Confirms(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockBookingRepository(ctrl)
	reserver := mocks.NewMockEventReserver(ctrl)
	publisher := mocks.NewMockPublisher(ctrl)
	cache := mocks.NewMockCache(ctrl)
	mockDB := mocks.NewMockDatabase(ctrl)
	logger := zap.NewNop()

	svc := booking.NewService(mockDB, repo, reserver, nil, publisher, cache, logger)

	db := sagaTestDB(t)
	mockDB.EXPECT().WithContext(gomock.Any()).Return(db).AnyTimes()

	store := saga.NewStore(db)
	orchestrator := saga.NewOrchestrator(store, logger)
	orchestrator.Register(saga.NewDefinition(saga.WorkflowBookingConfirmation,
		&saga.Step{
			Name: "CreatePaymentIntent",
			Execute: func(ctx context.Context, data saga.Data) (saga.Data, error) {
				return saga.Data{"payment_id": "pay-1"}, nil
			},
		},
		&saga.Step{
			Name: "ProcessPayment",
			Execute: func(ctx context.Context, data saga.Data) (saga.Data, error) {
				return data, nil
			},
		},
	))
	svc.SetOrchestrator(orchestrator)

	b := &booking.Booking{
		ID:               "booking-1",
		UserID:           "user-1",
		EventID:          "event-1",
		TotalAmountCents: 3000,
		Currency:         "USD",
		Status:           booking.StatusPending,
		ExpiryDate:       time.Now().UTC().Add(15 * time.Minute),
		Items:            []booking.Item{{Quantity: 2, UnitPriceCents: 1500}},
	}
	repo.EXPECT().Get("booking-1").Return(b, nil).AnyTimes()
	repo.EXPECT().UpdateStatus(gomock.Any(), "booking-1", booking.StatusConfirmed).Return(nil)
	cache.EXPECT().Del(gomock.Any(), "booking:pending:booking-1").Return(nil).AnyTimes()
	cache.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	publisher.EXPECT().Publish("booking.confirmed", gomock.Any()).Return(nil)

	payload := events.BookingInitiatedPayload{
		BookingID:        "booking-1",
		UserID:           "user-1",
		EventID:          "event-1",
		TotalAmountCents: 3000,
		Currency:         "USD",
		Items:            []events.BookingItemPayload{{Quantity: 2, UnitPriceCents: 1500}},
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	err = svc.HandleBookingCreated(context.Background(), body)
	require.NoError(t, err)
}

func TestHandleBookingCreated_OrchestratorFails_Cancels(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockBookingRepository(ctrl)
	reserver := mocks.NewMockEventReserver(ctrl)
	publisher := mocks.NewMockPublisher(ctrl)
	cache := mocks.NewMockCache(ctrl)
	mockDB := mocks.NewMockDatabase(ctrl)
	logger := zap.NewNop()

	svc := booking.NewService(mockDB, repo, reserver, nil, publisher, cache, logger)

	db := sagaTestDB(t)
	mockDB.EXPECT().WithContext(gomock.Any()).Return(db).AnyTimes()

	store := saga.NewStore(db)
	orchestrator := saga.NewOrchestrator(store, logger)
	orchestrator.Register(saga.NewDefinition(saga.WorkflowBookingConfirmation,
		&saga.Step{
			Name: "CreatePaymentIntent",
			Execute: func(ctx context.Context, data saga.Data) (saga.Data, error) {
				return nil, assertSagaErr
			},
			Retries: 0,
		},
	))
	svc.SetOrchestrator(orchestrator)

	b := &booking.Booking{
		ID:               "booking-2",
		UserID:           "user-2",
		EventID:          "event-2",
		TotalAmountCents: 2000,
		Currency:         "USD",
		Status:           booking.StatusPending,
		ExpiryDate:       time.Now().UTC().Add(15 * time.Minute),
		Items:            []booking.Item{{Quantity: 1, UnitPriceCents: 2000}},
	}
	repo.EXPECT().Get("booking-2").Return(b, nil).AnyTimes()
	repo.EXPECT().UpdateStatus(gomock.Any(), "booking-2", booking.StatusCancelled).Return(nil)
	reserver.EXPECT().Release(gomock.Any(), "event-2", 1).Return(nil)
	cache.EXPECT().Del(gomock.Any(), "booking:pending:booking-2").Return(nil).AnyTimes()
	cache.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	publisher.EXPECT().Publish("booking.cancelled", gomock.Any()).Return(nil)

	payload := events.BookingInitiatedPayload{
		BookingID:        "booking-2",
		UserID:           "user-2",
		EventID:          "event-2",
		TotalAmountCents: 2000,
		Currency:         "USD",
		Items:            []events.BookingItemPayload{{Quantity: 1, UnitPriceCents: 2000}},
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	err = svc.HandleBookingCreated(context.Background(), body)
	require.NoError(t, err)
}

var assertSagaErr = errors.New("step failed")
