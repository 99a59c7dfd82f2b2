package saga_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"eventix/internal/saga"
)

// memStore is an in-memory Store, mirroring the memory-store pattern
// used for saga tests in the wider booking-rush codebase.
type memStore struct {
	mu   sync.Mutex
	byID map[string]*saga.Instance
}

func newMemStore() *memStore { return &memStore{byID: make(map[string]*saga.Instance)} }

func (s *memStore) Save(ctx context.Context, i *saga.Instance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i.ID == "" {
		i.ID = "inst-" + i.DefinitionName
	}
	s.byID[i.ID] = i
	return nil
}

func (s *memStore) Get(ctx context.Context, id string) (*saga.Instance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.byID[id]
	if !ok {
		return nil, saga.ErrNotFound
	}
	return i, nil
}

func (s *memStore) Update(ctx context.Context, i *saga.Instance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[i.ID] = i
	return nil
}

func (s *memStore) ListByStatus(ctx context.Context, status saga.Status, limit int) ([]*saga.Instance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*saga.Instance
	for _, i := range s.byID {
		if i.Status == status {
			out = append(out, i)
		}
	}
	return out, nil
}

func TestOrchestrator_AllStepsSucceed(t *testing.T) {
	def := saga.NewDefinition("happy_path",
		&saga.Step{Name: "one", Execute: func(ctx context.Context, d saga.Data) (saga.Data, error) {
			return saga.Data{"one_ran": true}, nil
		}},
		&saga.Step{Name: "two", Execute: func(ctx context.Context, d saga.Data) (saga.Data, error) {
			require.Equal(t, true, d["one_ran"])
			return saga.Data{"two_ran": true}, nil
		}},
	)

	orch := saga.NewOrchestrator(newMemStore(), zap.NewNop())
	orch.Register(def)

	inst, err := orch.Start(context.Background(), "happy_path", "corr-1", saga.Data{"seed": 1})
	require.NoError(t, err)
	require.Equal(t, saga.StatusCompleted, inst.Status)
	require.Equal(t, true, inst.Data()["two_ran"])
}

func TestOrchestrator_CompensatesOnFailure(t *testing.T) {
	var compensated []string
	var mu sync.Mutex

	def := saga.NewDefinition("compensating",
		&saga.Step{
			Name: "reserve",
			Execute: func(ctx context.Context, d saga.Data) (saga.Data, error) {
				return saga.Data{"reserved": true}, nil
			},
			Compensate: func(ctx context.Context, d saga.Data) error {
				mu.Lock()
				defer mu.Unlock()
				compensated = append(compensated, "reserve")
				return nil
			},
		},
		&saga.Step{
			Name: "charge",
			Execute: func(ctx context.Context, d saga.Data) (saga.Data, error) {
				return nil, errors.New("card declined")
			},
		},
	)

	orch := saga.NewOrchestrator(newMemStore(), zap.NewNop())
	orch.Register(def)

	inst, err := orch.Start(context.Background(), "compensating", "corr-2", nil)
	require.Error(t, err)
	require.Equal(t, saga.StatusCompensated, inst.Status)
	require.Equal(t, []string{"reserve"}, compensated)
	require.Contains(t, inst.Error, "card declined")
}

func TestOrchestrator_RetriesBeforeFailing(t *testing.T) {
	attempts := 0
	def := saga.NewDefinition("retrying",
		&saga.Step{
			Name:    "flaky",
			Retries: 2,
			Execute: func(ctx context.Context, d saga.Data) (saga.Data, error) {
				attempts++
				if attempts < 3 {
					return nil, errors.New("transient")
				}
				return saga.Data{"ok": true}, nil
			},
		},
	)

	orch := saga.NewOrchestrator(newMemStore(), zap.NewNop())
	orch.Register(def)

	inst, err := orch.Start(context.Background(), "retrying", "corr-3", nil)
	require.NoError(t, err)
	require.Equal(t, saga.StatusCompleted, inst.Status)
	require.Equal(t, 3, attempts)
}

func TestOrchestrator_UnregisteredWorkflow(t *testing.T) {
	orch := saga.NewOrchestrator(newMemStore(), zap.NewNop())
	_, err := orch.Start(context.Background(), "does_not_exist", "corr-4", nil)
	require.Error(t, err)
}
