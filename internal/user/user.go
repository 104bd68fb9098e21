package user

import (
	"errors"
	"time"

	"github.com/frahmantamala/agency-portal/internal/auth"
)

// User is a portal account. Staff accounts carry a password hash, client
// accounts carry an access code; the two credential columns are mutually
// exclusive.
type User struct {
	ID           int64      `json:"id" gorm:"primaryKey"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	Role         auth.Role  `json:"role"`
	PasswordHash *string    `json:"-" gorm:"column:password_hash"`
	AccessCode   *string    `json:"access_code,omitempty" gorm:"column:access_code"`
	CompanyName  *string    `json:"company_name,omitempty"`
	IsActive     bool       `json:"is_active"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrEmailTaken     = errors.New("email already registered")
	ErrNotClient      = errors.New("user is not a client account")
	ErrSelfDeactivate = errors.New("cannot deactivate own account")
)

type ServiceAPI interface {
	CreateStaff(actor *auth.Session, dto CreateStaffDTO) (*User, error)
	CreateClient(actor *auth.Session, dto CreateClientDTO) (*User, error)
	GetByID(id int64) (*User, error)
	List(filter ListFilter) ([]User, error)
	Update(actor *auth.Session, id int64, dto UpdateUserDTO) (*User, error)
	RegenerateAccessCode(actor *auth.Session, id int64) (*User, error)
	Deactivate(actor *auth.Session, id int64) error
	Delete(actor *auth.Session, id int64) error
}

type RepositoryAPI interface {
	Create(u *User) error
	GetByID(id int64) (*User, error)
	GetByEmail(email string) (*User, error)
	List(filter ListFilter) ([]User, error)
	Update(u *User) error
	SetActive(id int64, active bool) error
	Delete(id int64) error
}

// ListFilter narrows the user listing. Zero values mean no filtering.
type ListFilter struct {
	Role          auth.Role
	IncludeInactive bool
	Limit         int
	Offset        int
}
