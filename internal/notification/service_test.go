package notification_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"eventix/internal/events"
	"eventix/internal/notification"
)

type fakeRepo struct {
	mu    sync.Mutex
	byKey map[string]*notification.Notification
	byID  map[string]*notification.Notification
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byKey: make(map[string]*notification.Notification), byID: make(map[string]*notification.Notification)}
}

func (r *fakeRepo) Create(n *notification.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := n.UserID + ":" + n.SourceEventID
	if _, ok := r.byKey[key]; ok {
		return notification.ErrDuplicate
	}
	if n.ID == "" {
		n.ID = "notif-" + n.SourceEventID
	}
	cp := *n
	r.byKey[key] = &cp
	r.byID[n.ID] = &cp
	return nil
}

func (r *fakeRepo) MarkSent(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.byID[id]
	if !ok {
		return nil
	}
	n.Status = notification.StatusSent
	return nil
}

func (r *fakeRepo) MarkFailed(id, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.byID[id]
	if !ok {
		return nil
	}
	n.Status = notification.StatusFailed
	n.FailureReason = reason
	return nil
}

func (r *fakeRepo) ListPendingForUser(userID string) ([]notification.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []notification.Notification
	for _, n := range r.byID {
		if n.UserID == userID && n.Status == notification.StatusPending {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (r *fakeRepo) get(id string) *notification.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byID[id]
}

type recordingSender struct {
	mu   sync.Mutex
	sent []string
	fail bool
}

func (s *recordingSender) Send(ctx context.Context, n *notification.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errSendFailed
	}
	s.sent = append(s.sent, n.ID)
	return nil
}

var errSendFailed = errors.New("send failed")

func bookingEnvelope(t *testing.T, eventType events.Type, bookingID, userID, reason string) events.Envelope {
	t.Helper()
	env, err := events.New("booking-service", eventType, "", userID, events.BookingPayload{
		BookingID: bookingID, UserID: userID, EventID: "event-1", Reason: reason,
	})
	require.NoError(t, err)
	return env
}

func TestHandleBookingConfirmed_QueuesAndSends(t *testing.T) {
	repo := newFakeRepo()
	sender := &recordingSender{}
	svc := notification.NewService(repo, sender, zap.NewNop())

	env := bookingEnvelope(t, events.BookingConfirmed, "booking-1", "user-1", "")
	require.NoError(t, svc.HandleBookingConfirmed(context.Background(), env))

	n := repo.get("notif-" + env.EventID)
	require.NotNil(t, n)
	require.Equal(t, notification.StatusSent, n.Status)
	require.Contains(t, n.Body, "booking-1")
}

func TestHandleBookingConfirmed_DuplicateEventIsNoop(t *testing.T) {
	repo := newFakeRepo()
	sender := &recordingSender{}
	svc := notification.NewService(repo, sender, zap.NewNop())

	env := bookingEnvelope(t, events.BookingConfirmed, "booking-1", "user-1", "")
	require.NoError(t, svc.HandleBookingConfirmed(context.Background(), env))
	require.NoError(t, svc.HandleBookingConfirmed(context.Background(), env))

	require.Len(t, sender.sent, 1)
}

func TestHandleBookingCancelled_RecordsReason(t *testing.T) {
	repo := newFakeRepo()
	sender := &recordingSender{}
	svc := notification.NewService(repo, sender, zap.NewNop())

	env := bookingEnvelope(t, events.BookingCancelled, "booking-2", "user-1", "seat conflict")
	require.NoError(t, svc.HandleBookingCancelled(context.Background(), env))

	n := repo.get("notif-" + env.EventID)
	require.Contains(t, n.Body, "seat conflict")
}

func TestHandlePaymentFailed_MarksFailedOnSendError(t *testing.T) {
	repo := newFakeRepo()
	sender := &recordingSender{fail: true}
	svc := notification.NewService(repo, sender, zap.NewNop())

	env, err := events.New("payment-service", events.PaymentFailed, "", "user-1", events.PaymentPayload{
		PaymentID: "pay-1", BookingID: "booking-3", UserID: "user-1", FailureReason: "card declined",
	})
	require.NoError(t, err)

	require.NoError(t, svc.HandlePaymentFailed(context.Background(), env))
	n := repo.get("notif-" + env.EventID)
	require.Equal(t, notification.StatusFailed, n.Status)
}

func TestHandleBookingConfirmed_MalformedPayload(t *testing.T) {
	repo := newFakeRepo()
	sender := &recordingSender{}
	svc := notification.NewService(repo, sender, zap.NewNop())

	env := events.Envelope{EventID: "bad-1", EventType: events.BookingConfirmed, Data: json.RawMessage(`not json`)}
	err := svc.HandleBookingConfirmed(context.Background(), env)
	require.Error(t, err)
}
