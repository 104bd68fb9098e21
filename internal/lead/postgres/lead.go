package postgres

import (
	"errors"
	"time"

	"github.com/frahmantamala/agency-portal/internal/lead"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(l *lead.Lead) error {
	return r.db.Create(l).Error
}

func (r *Repository) GetByID(id int64) (*lead.Lead, error) {
	var l lead.Lead
	err := r.db.Where("id = ?", id).First(&l).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, lead.ErrLeadNotFound
		}
		return nil, err
	}
	return &l, nil
}

func (r *Repository) List(limit, offset int) ([]lead.Lead, error) {
	var leads []lead.Lead
	query := r.db.Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	if err := query.Find(&leads).Error; err != nil {
		return nil, err
	}
	return leads, nil
}

func (r *Repository) UpdateStatus(id int64, status lead.Status, at time.Time) error {
	result := r.db.Model(&lead.Lead{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     string(status),
			"updated_at": at,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return lead.ErrLeadNotFound
	}
	return nil
}
