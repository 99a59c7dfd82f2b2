package payment_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"eventix/internal/payment"
)

type fakeRepo struct {
	mu   sync.Mutex
	byID map[string]*payment.Payment
}

func newFakeRepo() *fakeRepo { return &fakeRepo{byID: make(map[string]*payment.Payment)} }

func (r *fakeRepo) Create(p *payment.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == "" {
		p.ID = "pay-" + p.BookingID
	}
	cp := *p
	r.byID[p.ID] = &cp
	return nil
}

func (r *fakeRepo) Get(id string) (*payment.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, errors.New("not found")
	}
	cp := *p
	return &cp, nil
}

func (r *fakeRepo) GetByExternalReference(ref string) (*payment.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.byID {
		if p.ExternalReference == ref {
			cp := *p
			return &cp, nil
		}
	}
	return nil, errors.New("not found")
}

func (r *fakeRepo) UpdateStatus(id string, status payment.Status, failureReason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return errors.New("not found")
	}
	p.Status = status
	if failureReason != "" {
		p.FailureReason = failureReason
	}
	return nil
}

func (r *fakeRepo) SetExternalReference(id, ref string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return errors.New("not found")
	}
	p.ExternalReference = ref
	return nil
}

type fakeProvider struct {
	fail bool
}

func (f *fakeProvider) Charge(ctx context.Context, p *payment.Payment) (string, error) {
	if f.fail {
		return "", errors.New("card declined")
	}
	return p.ID, nil
}

func (f *fakeProvider) Refund(ctx context.Context, p *payment.Payment) error {
	return nil
}

func TestInitiate_CreatesPending(t *testing.T) {
	repo := newFakeRepo()
	svc := payment.NewService(repo, &fakeProvider{}, nil, zap.NewNop())

	p, err := svc.Initiate(context.Background(), "booking-1", "user-1", 5000, "USD")
	require.NoError(t, err)
	require.Equal(t, payment.StatusPending, p.Status)
	require.Equal(t, int64(5000), p.AmountCents)
}

func TestProcess_Success(t *testing.T) {
	repo := newFakeRepo()
	svc := payment.NewService(repo, &fakeProvider{}, nil, zap.NewNop())

	p, err := svc.Initiate(context.Background(), "booking-1", "user-1", 5000, "USD")
	require.NoError(t, err)

	got, err := svc.Process(context.Background(), p.ID)
	require.NoError(t, err)
	require.Equal(t, payment.StatusCompleted, got.Status)
}

func TestProcess_ProviderFails(t *testing.T) {
	repo := newFakeRepo()
	svc := payment.NewService(repo, &fakeProvider{fail: true}, nil, zap.NewNop())

	p, err := svc.Initiate(context.Background(), "booking-1", "user-1", 5000, "USD")
	require.NoError(t, err)

	got, err := svc.Process(context.Background(), p.ID)
	require.NoError(t, err)
	require.Equal(t, payment.StatusFailed, got.Status)
	require.Equal(t, "card declined", got.FailureReason)
}

func TestProcess_IdempotentOnCompleted(t *testing.T) {
	repo := newFakeRepo()
	svc := payment.NewService(repo, &fakeProvider{}, nil, zap.NewNop())

	p, err := svc.Initiate(context.Background(), "booking-1", "user-1", 5000, "USD")
	require.NoError(t, err)

	first, err := svc.Process(context.Background(), p.ID)
	require.NoError(t, err)
	second, err := svc.Process(context.Background(), p.ID)
	require.NoError(t, err)
	require.Equal(t, first.Status, second.Status)
}

func TestRefund_RequiresCompleted(t *testing.T) {
	repo := newFakeRepo()
	svc := payment.NewService(repo, &fakeProvider{}, nil, zap.NewNop())

	p, err := svc.Initiate(context.Background(), "booking-1", "user-1", 5000, "USD")
	require.NoError(t, err)

	err = svc.Refund(context.Background(), p.ID)
	require.ErrorIs(t, err, payment.ErrInvalidTransition)
}

func TestRefund_Success(t *testing.T) {
	repo := newFakeRepo()
	svc := payment.NewService(repo, &fakeProvider{}, nil, zap.NewNop())

	p, err := svc.Initiate(context.Background(), "booking-1", "user-1", 5000, "USD")
	require.NoError(t, err)
	_, err = svc.Process(context.Background(), p.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Refund(context.Background(), p.ID))
	require.NoError(t, svc.Refund(context.Background(), p.ID)) // idempotent
}

func TestCancel_OnlyFromPending(t *testing.T) {
	repo := newFakeRepo()
	svc := payment.NewService(repo, &fakeProvider{}, nil, zap.NewNop())

	p, err := svc.Initiate(context.Background(), "booking-1", "user-1", 5000, "USD")
	require.NoError(t, err)
	require.NoError(t, svc.Cancel(context.Background(), p.ID))

	_, err = svc.Process(context.Background(), p.ID)
	require.ErrorIs(t, err, payment.ErrInvalidTransition)
}
