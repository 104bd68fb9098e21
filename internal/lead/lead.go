package lead

import (
	"errors"
	"time"
)

type Status string

const (
	StatusNew       Status = "new"
	StatusContacted Status = "contacted"
	StatusQualified Status = "qualified"
	StatusClosed    Status = "closed"
)

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusNew, StatusContacted, StatusQualified, StatusClosed:
		return Status(s), nil
	}
	return "", ErrInvalidStatus
}

// Lead is one submission of the public contact form.
type Lead struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Company   string    `json:"company"`
	Message   string    `json:"message"`
	Source    string    `json:"source"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Lead) TableName() string {
	return "leads"
}

var (
	ErrLeadNotFound  = errors.New("lead not found")
	ErrInvalidStatus = errors.New("invalid lead status")
	ErrRateLimited   = errors.New("too many submissions")
)

type RepositoryAPI interface {
	Create(l *Lead) error
	GetByID(id int64) (*Lead, error)
	List(limit, offset int) ([]Lead, error)
	UpdateStatus(id int64, status Status, at time.Time) error
}
