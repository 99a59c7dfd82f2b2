package notification

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrDuplicate indicates a (user_id, source_event_id) pair already has a
// notification row; callers should treat this as a successful no-op.
var ErrDuplicate = errors.New("NOTIFICATION_DUPLICATE")

// Repository persists notifications.
type Repository interface {
	Create(n *Notification) error
	MarkSent(id string) error
	MarkFailed(id, reason string) error
	ListPendingForUser(userID string) ([]Notification, error)
}

type repo struct {
	db *gorm.DB
}

// NewRepository builds a gorm-backed Repository.
func NewRepository(db *gorm.DB) Repository {
	return &repo{db: db}
}

func (r *repo) Create(n *Notification) error {
	err := r.db.Create(n).Error
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *repo) MarkSent(id string) error {
	return r.db.Model(&Notification{}).Where("id = ?", id).
		Updates(map[string]interface{}{"status": StatusSent}).Error
}

func (r *repo) MarkFailed(id, reason string) error {
	return r.db.Model(&Notification{}).Where("id = ?", id).
		Updates(map[string]interface{}{"status": StatusFailed, "failure_reason": reason}).Error
}

func (r *repo) ListPendingForUser(userID string) ([]Notification, error) {
	var out []Notification
	err := r.db.Where("user_id = ? AND status = ?", userID, StatusPending).Find(&out).Error
	return out, err
}

// isUniqueViolation reports whether err looks like a unique constraint
// violation from either Postgres or SQLite, the two drivers this module
// runs against.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "23505")
}
