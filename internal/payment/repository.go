package payment

import (
	"errors"

	"gorm.io/gorm"
)

// Repository is the persistence boundary for Payment rows.
type Repository interface {
	Create(p *Payment) error
	Get(id string) (*Payment, error)
	GetByExternalReference(ref string) (*Payment, error)
	UpdateStatus(id string, status Status, failureReason string) error
	SetExternalReference(id, ref string) error
}

type repo struct{ db *gorm.DB }

// NewRepository builds the default gorm-backed Repository.
func NewRepository(db *gorm.DB) Repository { return &repo{db: db} }

func (r *repo) Create(p *Payment) error { return r.db.Create(p).Error }

func (r *repo) Get(id string) (*Payment, error) {
	var p Payment
	if err := r.db.First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repo) GetByExternalReference(ref string) (*Payment, error) {
	var p Payment
	if err := r.db.First(&p, "external_reference = ?", ref).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, err
	}
	return &p, nil
}

func (r *repo) SetExternalReference(id, ref string) error {
	return r.db.Model(&Payment{}).Where("id = ?", id).Update("external_reference", ref).Error
}

func (r *repo) UpdateStatus(id string, status Status, failureReason string) error {
	updates := map[string]interface{}{"status": status}
	if failureReason != "" {
		updates["failure_reason"] = failureReason
	}
	return r.db.Model(&Payment{}).Where("id = ?", id).Updates(updates).Error
}
