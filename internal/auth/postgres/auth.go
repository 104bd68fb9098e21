package postgres

import (
	"errors"
	"time"

	"github.com/frahmantamala/agency-portal/internal/auth"
	"gorm.io/gorm"
)

type credentialRow struct {
	ID           int64
	Email        string
	Name         string
	Role         string
	PasswordHash *string
	AccessCode   *string
	IsActive     bool
}

func (credentialRow) TableName() string {
	return "users"
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetByEmail(email string) (*auth.Credential, error) {
	var row credentialRow
	err := r.db.Where("email = ?", email).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrUserNotFound
		}
		return nil, err
	}
	return toCredential(&row)
}

func (r *Repository) GetByAccessCode(code string) (*auth.Credential, error) {
	var row credentialRow
	err := r.db.Where("access_code = ?", code).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrUserNotFound
		}
		return nil, err
	}
	return toCredential(&row)
}

func (r *Repository) GetByID(userID int64) (*auth.Credential, error) {
	var row credentialRow
	err := r.db.Where("id = ?", userID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrUserNotFound
		}
		return nil, err
	}
	return toCredential(&row)
}

func (r *Repository) UpdateLastLogin(userID int64, at time.Time) error {
	return r.db.Table("users").
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"last_login_at": at,
			"updated_at":    at,
		}).Error
}

func toCredential(row *credentialRow) (*auth.Credential, error) {
	role, err := auth.ParseRole(row.Role)
	if err != nil {
		return nil, err
	}
	return &auth.Credential{
		UserID:       row.ID,
		Email:        row.Email,
		Name:         row.Name,
		Role:         role,
		PasswordHash: row.PasswordHash,
		AccessCode:   row.AccessCode,
		IsActive:     row.IsActive,
	}, nil
}
