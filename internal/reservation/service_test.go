package reservation_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"eventix/internal/reservation"
)

// testDB opens an in-memory sqlite DB with just the seats table
// CheckAvailability queries directly; every other operation goes
// through the fake Repository below and never touches this DB. Plain
// CREATE TABLE rather than AutoMigrate, since Seat's production
// `default:uuid_generate_v4()` column tag is Postgres-only and sqlite's
// DEFAULT clause grammar rejects a bare function call.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Exec(`CREATE TABLE seats (
		id TEXT PRIMARY KEY,
		event_id TEXT,
		section_id TEXT,
		row TEXT,
		number INTEGER,
		type TEXT,
		status TEXT
	)`).Error)
	return db
}

func seat(id, eventID string) reservation.Seat {
	return reservation.Seat{ID: id, EventID: eventID, SectionID: "sec-1", Row: "A", Number: 1, Type: reservation.SeatRegular, Status: reservation.SeatAvailable}
}

// newTestService seeds both the fake Repository (used for locking and
// reservation bookkeeping) and the real sqlite seats table (used by
// CheckAvailability's direct existence check) with the same seats.
func newTestService(t *testing.T, seats ...reservation.Seat) (*reservation.Service, *fakeRepository) {
	t.Helper()
	repo := newFakeRepository(seats...)
	db := testDB(t)
	for _, sSeat := range seats {
		require.NoError(t, db.Table("seats").Create(&sSeat).Error)
	}
	return reservation.NewService(db, repo, nil, zap.NewNop()), repo
}

func TestCheckAvailability(t *testing.T) {
	svc, _ := newTestService(t, seat("s1", "e1"), seat("s2", "e1"))

	out, err := svc.CheckAvailability(context.Background(), "e1", []string{"s1", "s2", "s3"})
	require.NoError(t, err)
	require.Len(t, out, 3)
	require.True(t, out[0].Available)
	require.True(t, out[1].Available)
	require.False(t, out[2].Available) // s3 doesn't exist
}

func TestReserve_Success(t *testing.T) {
	svc, _ := newTestService(t, seat("s1", "e1"), seat("s2", "e1"))

	created, err := svc.Reserve(context.Background(), "e1", []string{"s1", "s2"}, "u1", 10*time.Minute, 500, "USD")
	require.NoError(t, err)
	require.Len(t, created, 2)
	for _, r := range created {
		require.Equal(t, reservation.ReservationPending, r.Status)
		require.Equal(t, "u1", r.UserID)
	}

	avail, err := svc.CheckAvailability(context.Background(), "e1", []string{"s1", "s2"})
	require.NoError(t, err)
	require.False(t, avail[0].Available)
	require.False(t, avail[1].Available)
}

func TestReserve_SeatConflict_AlreadyReserved(t *testing.T) {
	svc, _ := newTestService(t, seat("s1", "e1"))

	_, err := svc.Reserve(context.Background(), "e1", []string{"s1"}, "u1", 10*time.Minute, 500, "USD")
	require.NoError(t, err)

	_, err = svc.Reserve(context.Background(), "e1", []string{"s1"}, "u2", 10*time.Minute, 500, "USD")
	require.ErrorIs(t, err, reservation.ErrSeatConflict)
}

func TestReserve_SeatConflict_UnknownSeat(t *testing.T) {
	svc, _ := newTestService(t, seat("s1", "e1"))

	_, err := svc.Reserve(context.Background(), "e1", []string{"s1", "does-not-exist"}, "u1", 10*time.Minute, 500, "USD")
	require.ErrorIs(t, err, reservation.ErrSeatConflict)
}

func TestConfirm_Success(t *testing.T) {
	svc, repo := newTestService(t, seat("s1", "e1"))

	created, err := svc.Reserve(context.Background(), "e1", []string{"s1"}, "u1", 10*time.Minute, 500, "USD")
	require.NoError(t, err)

	ids := []string{created[0].ID}
	err = svc.Confirm(context.Background(), ids, "booking-1")
	require.NoError(t, err)

	got, err := repo.GetReservations(nil, ids)
	require.NoError(t, err)
	require.Equal(t, reservation.ReservationConfirmed, got[0].Status)
	require.Equal(t, reservation.SeatOccupied, repo.seats["s1"].Status)
}

func TestConfirm_Idempotent(t *testing.T) {
	svc, _ := newTestService(t, seat("s1", "e1"))

	created, err := svc.Reserve(context.Background(), "e1", []string{"s1"}, "u1", 10*time.Minute, 500, "USD")
	require.NoError(t, err)
	ids := []string{created[0].ID}

	require.NoError(t, svc.Confirm(context.Background(), ids, "booking-1"))
	require.NoError(t, svc.Confirm(context.Background(), ids, "booking-1"))
}

func TestConfirm_ExpiredLosesRace(t *testing.T) {
	svc, _ := newTestService(t, seat("s1", "e1"))

	created, err := svc.Reserve(context.Background(), "e1", []string{"s1"}, "u1", -time.Minute, 500, "USD")
	require.NoError(t, err)
	ids := []string{created[0].ID}

	n, err := svc.SweepExpired(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, n)

	err = svc.Confirm(context.Background(), ids, "booking-1")
	require.ErrorIs(t, err, reservation.ErrReservationExpired)
}

func TestRelease_FreesSeat(t *testing.T) {
	svc, repo := newTestService(t, seat("s1", "e1"))

	created, err := svc.Reserve(context.Background(), "e1", []string{"s1"}, "u1", 10*time.Minute, 500, "USD")
	require.NoError(t, err)
	ids := []string{created[0].ID}

	require.NoError(t, svc.Release(context.Background(), ids, "user_cancelled"))
	require.Equal(t, reservation.SeatAvailable, repo.seats["s1"].Status)

	avail, err := svc.CheckAvailability(context.Background(), "e1", []string{"s1"})
	require.NoError(t, err)
	require.True(t, avail[0].Available)
}

func TestSweepExpired_SkipsNonExpired(t *testing.T) {
	svc, _ := newTestService(t, seat("s1", "e1"))

	_, err := svc.Reserve(context.Background(), "e1", []string{"s1"}, "u1", 10*time.Minute, 500, "USD")
	require.NoError(t, err)

	n, err := svc.SweepExpired(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, n)
}
