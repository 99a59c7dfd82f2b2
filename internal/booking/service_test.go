package booking_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"eventix/internal/booking"
	"eventix/internal/database"
	"eventix/internal/mocks"
	"eventix/internal/reservation"
)

// bookingTestDB opens an in-memory sqlite DB with just the bookings/items
// columns the service reads or writes. Plain CREATE TABLE rather than
// AutoMigrate, since the production `default:uuid_generate_v4()` column
// tags are Postgres-only and sqlite's DEFAULT clause grammar rejects a
// bare function call.
func bookingTestDB(t *testing.T) *gorm.DB {
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
	return db
}

// createTestService builds a service with mocked dependencies and no
// wired seat store, sufficient for tests that don't exercise seat
// reservation.
func createTestService(t *testing.T) (*booking.Service, *mocks.MockBookingRepository, *mocks.MockEventReserver, *mocks.MockPublisher, *mocks.MockCache, *mocks.MockDatabase) {
	ctrl := gomock.NewController(t)

	repo := mocks.NewMockBookingRepository(ctrl)
	reserver := mocks.NewMockEventReserver(ctrl)
	publisher := mocks.NewMockPublisher(ctrl)
	cache := mocks.NewMockCache(ctrl)
	mockDB := mocks.NewMockDatabase(ctrl)
	logger := zap.NewNop()

	svc := booking.NewService(mockDB, repo, reserver, nil, publisher, cache, logger)

	return svc, repo, reserver, publisher, cache, mockDB
}

func TestHandleBookingCreated_InvalidJSON(t *testing.T) {
	svc, _, _, _, _, _ := createTestService(t)

	body := []byte(`invalid json`)
	err := svc.HandleBookingCreated(context.Background(), body)

	require.Error(t, err)
}

func TestGet_Success(t *testing.T) {
	svc, repo, _, _, _, _ := createTestService(t)

	expectedBooking := &booking.Booking{
		ID:      "b1",
		UserID:  "u1",
		EventID: "e1",
		Items:   []booking.Item{{Quantity: 2}},
		Status:  booking.StatusConfirmed,
	}

	repo.EXPECT().Get("b1").Return(expectedBooking, nil)

	b, err := svc.Get(context.Background(), "b1")

	require.NoError(t, err)
	require.Equal(t, expectedBooking, b)
	require.Equal(t, 2, b.Quantity())
}

func TestGet_NotFound(t *testing.T) {
	svc, repo, _, _, _, _ := createTestService(t)

	repo.EXPECT().Get("b1").Return(nil, assert.AnError)

	b, err := svc.Get(context.Background(), "b1")

	require.Error(t, err)
	require.Equal(t, assert.AnError, err)
	require.Nil(t, b)
}

func TestListByUser(t *testing.T) {
	svc, repo, _, _, _, _ := createTestService(t)

	want := []*booking.Booking{{ID: "b1", UserID: "u1"}, {ID: "b2", UserID: "u1"}}
	repo.EXPECT().ListByUser(gomock.Any(), "u1").Return(want, nil)

	got, err := svc.ListByUser(context.Background(), "u1")

	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestErrorConstants(t *testing.T) {
	require.Equal(t, "not enough tickets", booking.ErrNotEnoughTickets.Error())
	require.Equal(t, "total_amount_cents does not match items", booking.ErrTotalMismatch.Error())
	require.Equal(t, "booking cannot be cancelled from its current status", booking.ErrNotCancellable.Error())
}

func TestStatusConstants(t *testing.T) {
	require.Equal(t, "PENDING", string(booking.StatusPending))
	require.Equal(t, "CONFIRMED", string(booking.StatusConfirmed))
	require.Equal(t, "CANCELLED", string(booking.StatusCancelled))
	require.Equal(t, "EXPIRED", string(booking.StatusExpired))
	require.Equal(t, "REFUNDED", string(booking.StatusRefunded))
}

func TestBooking_Model(t *testing.T) {
	b := &booking.Booking{
		ID:               "b1",
		UserID:           "u1",
		EventID:          "e1",
		TotalAmountCents: 10000,
		Status:           booking.StatusPending,
		Items: []booking.Item{
			{Quantity: 2, UnitPriceCents: 5000},
		},
	}

	require.Equal(t, "b1", b.ID)
	require.Equal(t, 2, b.Quantity())
	require.Equal(t, int64(10000), b.TotalAmountCents)
	require.True(t, b.Cancellable())
}

func TestBooking_Cancellable(t *testing.T) {
	cases := []struct {
		status booking.Status
		want   bool
	}{
		{booking.StatusPending, true},
		{booking.StatusConfirmed, true},
		{booking.StatusCancelled, false},
		{booking.StatusExpired, false},
		{booking.StatusRefunded, false},
	}
	for _, tc := range cases {
		b := booking.Booking{Status: tc.status}
		require.Equal(t, tc.want, b.Cancellable(), "status %s", tc.status)
	}
}

func TestService_ImplementsInterface(t *testing.T) {
	svc, _, _, _, _, _ := createTestService(t)
	var _ booking.BookingService = svc
}

func TestBookingRepository_Interface(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockBookingRepository(ctrl)
	var _ booking.BookingRepository = repo
}

func TestCache_Interface(t *testing.T) {
	ctrl := gomock.NewController(t)
	cache := mocks.NewMockCache(ctrl)
	var _ booking.Cache = cache
}

func TestPublisher_Interface(t *testing.T) {
	ctrl := gomock.NewController(t)
	publisher := mocks.NewMockPublisher(ctrl)
	var _ booking.Publisher = publisher
}

func TestEventReserver_Interface(t *testing.T) {
	ctrl := gomock.NewController(t)
	reserver := mocks.NewMockEventReserver(ctrl)
	var _ booking.EventReserver = reserver
}

func TestSeatStore_Interface(t *testing.T) {
	ctrl := gomock.NewController(t)
	seats := mocks.NewMockSeatStore(ctrl)
	var _ booking.SeatStore = seats
}

func TestDatabase_Interface(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockDB := mocks.NewMockDatabase(ctrl)
	var _ database.Database = mockDB
}

func TestCreateBooking_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	reserver := mocks.NewMockEventReserver(ctrl)
	publisher := mocks.NewMockPublisher(ctrl)
	cache := mocks.NewMockCache(ctrl)
	mockDB := mocks.NewMockDatabase(ctrl)
	logger := zap.NewNop()

	db := bookingTestDB(t)
	mockDB.EXPECT().WithContext(gomock.Any()).Return(db).AnyTimes()

	realRepo := booking.NewBookingRepository(db)
	svc := booking.NewService(mockDB, realRepo, reserver, nil, publisher, cache, logger)

	publisher.EXPECT().Publish("booking.initiated", gomock.Any()).Return(nil)
	cache.EXPECT().Set(gomock.Any(), gomock.Any(), "1", gomock.Any()).Return(nil)

	req := booking.CreateBookingRequest{
		EventID:          "event-1",
		Currency:         "USD",
		TotalAmountCents: 4000,
		Items: []booking.ItemRequest{
			{UnitPriceCents: 2000, Quantity: 2},
		},
	}

	b, err := svc.CreateBooking(context.Background(), "user-1", req)

	require.NoError(t, err)
	require.Equal(t, booking.StatusPending, b.Status)
	require.Contains(t, b.BookingReference, "BK-")
	require.Equal(t, 2, b.Quantity())
	require.False(t, b.ExpiryDate.Before(time.Now().UTC()))
}

func TestCreateBooking_TotalMismatch(t *testing.T) {
	svc, _, _, _, _, _ := createTestService(t)

	req := booking.CreateBookingRequest{
		EventID:          "event-1",
		Currency:         "USD",
		TotalAmountCents: 9999,
		Items: []booking.ItemRequest{
			{UnitPriceCents: 2000, Quantity: 2},
		},
	}

	b, err := svc.CreateBooking(context.Background(), "user-1", req)

	require.ErrorIs(t, err, booking.ErrTotalMismatch)
	require.Nil(t, b)
}

func TestCreateBooking_SeatUnavailable(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockBookingRepository(ctrl)
	reserver := mocks.NewMockEventReserver(ctrl)
	seats := mocks.NewMockSeatStore(ctrl)
	publisher := mocks.NewMockPublisher(ctrl)
	cache := mocks.NewMockCache(ctrl)
	mockDB := mocks.NewMockDatabase(ctrl)
	logger := zap.NewNop()

	svc := booking.NewService(mockDB, repo, reserver, seats, publisher, cache, logger)

	seats.EXPECT().CheckAvailability(gomock.Any(), "event-1", []string{"seat-1"}).
		Return([]reservation.Availability{{SeatID: "seat-1", Available: false}}, nil)

	req := booking.CreateBookingRequest{
		EventID:          "event-1",
		Currency:         "USD",
		TotalAmountCents: 5000,
		Items: []booking.ItemRequest{
			{SeatID: "seat-1", UnitPriceCents: 5000, Quantity: 1},
		},
	}

	b, err := svc.CreateBooking(context.Background(), "user-1", req)

	require.ErrorIs(t, err, booking.ErrNotEnoughTickets)
	require.Nil(t, b)
}

func TestConfirmBooking_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockBookingRepository(ctrl)
	reserver := mocks.NewMockEventReserver(ctrl)
	publisher := mocks.NewMockPublisher(ctrl)
	cache := mocks.NewMockCache(ctrl)
	mockDB := mocks.NewMockDatabase(ctrl)
	logger := zap.NewNop()

	db := bookingTestDB(t)
	mockDB.EXPECT().WithContext(gomock.Any()).Return(db).AnyTimes()

	svc := booking.NewService(mockDB, repo, reserver, nil, publisher, cache, logger)

	b := &booking.Booking{
		ID:      "booking-1",
		EventID: "event-1",
		Status:  booking.StatusPending,
		Items:   []booking.Item{{Quantity: 2, UnitPriceCents: 1500}},
	}
	repo.EXPECT().Get("booking-1").Return(b, nil)
	repo.EXPECT().UpdateStatus(gomock.Any(), "booking-1", booking.StatusConfirmed).Return(nil)
	cache.EXPECT().Del(gomock.Any(), "booking:pending:booking-1").Return(nil)
	cache.EXPECT().Set(gomock.Any(), "event:event-1:stats", gomock.Any(), gomock.Any()).Return(nil)
	publisher.EXPECT().Publish("booking.confirmed", gomock.Any()).Return(nil)

	err := svc.ConfirmBooking(context.Background(), "booking-1")

	require.NoError(t, err)
}

func TestConfirmBooking_AlreadyConfirmed_NoOp(t *testing.T) {
	svc, repo, _, _, _, _ := createTestService(t)

	b := &booking.Booking{ID: "booking-1", Status: booking.StatusConfirmed}
	repo.EXPECT().Get("booking-1").Return(b, nil)

	err := svc.ConfirmBooking(context.Background(), "booking-1")

	require.NoError(t, err)
}

func TestCancelBooking_Pending(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockBookingRepository(ctrl)
	reserver := mocks.NewMockEventReserver(ctrl)
	seats := mocks.NewMockSeatStore(ctrl)
	publisher := mocks.NewMockPublisher(ctrl)
	cache := mocks.NewMockCache(ctrl)
	mockDB := mocks.NewMockDatabase(ctrl)
	logger := zap.NewNop()

	db := bookingTestDB(t)
	mockDB.EXPECT().WithContext(gomock.Any()).Return(db).AnyTimes()

	svc := booking.NewService(mockDB, repo, reserver, seats, publisher, cache, logger)

	b := &booking.Booking{
		ID:      "booking-1",
		EventID: "event-1",
		Status:  booking.StatusPending,
		Items:   []booking.Item{{Quantity: 1, UnitPriceCents: 2000}},
	}
	repo.EXPECT().Get("booking-1").Return(b, nil)
	repo.EXPECT().UpdateStatus(gomock.Any(), "booking-1", booking.StatusCancelled).Return(nil)
	reserver.EXPECT().Release(gomock.Any(), "event-1", 1).Return(nil)
	cache.EXPECT().Del(gomock.Any(), "booking:pending:booking-1").Return(nil)
	cache.EXPECT().Set(gomock.Any(), "event:event-1:stats", gomock.Any(), gomock.Any()).Return(nil)
	publisher.EXPECT().Publish("booking.cancelled", gomock.Any()).Return(nil)

	err := svc.CancelBooking(context.Background(), "booking-1", "user_requested")

	require.NoError(t, err)
}

func TestCancelBooking_NotCancellable(t *testing.T) {
	svc, repo, _, _, _, _ := createTestService(t)

	b := &booking.Booking{ID: "booking-1", Status: booking.StatusExpired}
	repo.EXPECT().Get("booking-1").Return(b, nil)

	err := svc.CancelBooking(context.Background(), "booking-1", "user_requested")

	require.ErrorIs(t, err, booking.ErrNotCancellable)
}

func TestCancelBooking_AlreadyCancelled_NoOp(t *testing.T) {
	svc, repo, _, _, _, _ := createTestService(t)

	b := &booking.Booking{ID: "booking-1", Status: booking.StatusCancelled}
	repo.EXPECT().Get("booking-1").Return(b, nil)

	err := svc.CancelBooking(context.Background(), "booking-1", "user_requested")

	require.NoError(t, err)
}

func TestHandlePaymentRefunded_FromCancelled(t *testing.T) {
	svc, repo, _, _, _, _ := createTestService(t)

	b := &booking.Booking{ID: "booking-1", Status: booking.StatusCancelled}
	repo.EXPECT().Get("booking-1").Return(b, nil)
	repo.EXPECT().UpdateStatus(gomock.Any(), "booking-1", booking.StatusRefunded).Return(nil)

	err := svc.HandlePaymentRefunded(context.Background(), "booking-1")

	require.NoError(t, err)
}

func TestHandlePaymentRefunded_WrongStatus_NoOp(t *testing.T) {
	svc, repo, _, _, _, _ := createTestService(t)

	b := &booking.Booking{ID: "booking-1", Status: booking.StatusConfirmed}
	repo.EXPECT().Get("booking-1").Return(b, nil)

	err := svc.HandlePaymentRefunded(context.Background(), "booking-1")

	require.NoError(t, err)
}

func TestExpireStale(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockBookingRepository(ctrl)
	reserver := mocks.NewMockEventReserver(ctrl)
	publisher := mocks.NewMockPublisher(ctrl)
	cache := mocks.NewMockCache(ctrl)
	mockDB := mocks.NewMockDatabase(ctrl)
	logger := zap.NewNop()

	svc := booking.NewService(mockDB, repo, reserver, nil, publisher, cache, logger)

	expired := []*booking.Booking{
		{ID: "booking-1", EventID: "event-1", Status: booking.StatusPending, Items: []booking.Item{{Quantity: 1}}},
	}
	repo.EXPECT().ListExpiredPending(gomock.Any(), gomock.Any(), 200).Return(expired, nil)
	repo.EXPECT().UpdateStatus(gomock.Any(), "booking-1", booking.StatusExpired).Return(nil)
	reserver.EXPECT().Release(gomock.Any(), "event-1", 1).Return(nil)
	cache.EXPECT().Del(gomock.Any(), "booking:pending:booking-1").Return(nil)
	publisher.EXPECT().Publish("booking.expired", gomock.Any()).Return(nil)

	count, err := svc.ExpireStale(context.Background())

	require.NoError(t, err)
	require.Equal(t, 1, count)
}
