package postgres

import (
	"time"

	"github.com/frahmantamala/agency-portal/internal/analytics"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateSession(s *analytics.Session) error {
	return r.db.Create(s).Error
}

func (r *Repository) GetSession(id string) (*analytics.Session, error) {
	var s analytics.Session
	err := r.db.Where("id = ?", id).First(&s).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, analytics.ErrSessionNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *Repository) TouchSession(id string, at time.Time) error {
	result := r.db.Model(&analytics.Session{}).
		Where("id = ?", id).
		Update("last_seen_at", at)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return analytics.ErrSessionNotFound
	}
	return nil
}

func (r *Repository) CreateEvent(e *analytics.Event) error {
	return r.db.Create(e).Error
}

func (r *Repository) CountByName(from, to time.Time) ([]analytics.NameCount, error) {
	var counts []analytics.NameCount
	err := r.db.Model(&analytics.Event{}).
		Select("name, COUNT(*) AS count").
		Where("created_at >= ? AND created_at < ?", from, to).
		Group("name").
		Order("count DESC").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	return counts, nil
}
