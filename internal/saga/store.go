package saga

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is returned when no saga instance matches the requested id.
var ErrNotFound = errors.New("saga instance not found")

// Store persists saga Instances so a restarted orchestrator can resume
// any instance left in a non-terminal status.
type Store interface {
	Save(ctx context.Context, instance *Instance) error
	Get(ctx context.Context, id string) (*Instance, error)
	Update(ctx context.Context, instance *Instance) error
	ListByStatus(ctx context.Context, status Status, limit int) ([]*Instance, error)
}

type gormStore struct {
	db *gorm.DB
}

// NewStore builds a gorm-backed Store. The caller is responsible for
// migrating Instance (see cmd/booking's migration list).
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Save(ctx context.Context, instance *Instance) error {
	instance.marshalData()
	return s.db.WithContext(ctx).Create(instance).Error
}

func (s *gormStore) Get(ctx context.Context, id string) (*Instance, error) {
	var inst Instance
	if err := s.db.WithContext(ctx).First(&inst, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &inst, nil
}

func (s *gormStore) Update(ctx context.Context, instance *Instance) error {
	instance.marshalData()
	return s.db.WithContext(ctx).Save(instance).Error
}

func (s *gormStore) ListByStatus(ctx context.Context, status Status, limit int) ([]*Instance, error) {
	var out []*Instance
	q := s.db.WithContext(ctx).Where("status = ?", status).Order("created_at asc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	return out, q.Find(&out).Error
}
