package project

import (
	"errors"
	"time"
)

type Status string

const (
	StatusPlanning  Status = "planning"
	StatusActive    Status = "active"
	StatusOnHold    Status = "on_hold"
	StatusCompleted Status = "completed"
)

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPlanning, StatusActive, StatusOnHold, StatusCompleted:
		return Status(s), nil
	}
	return "", ErrInvalidStatus
}

// GeneralSupportName is the name given to auto-provisioned projects so every
// client always has somewhere to send a message.
const GeneralSupportName = "General Support"

type Project struct {
	ID          int64      `json:"id" gorm:"primaryKey"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Scope       string     `json:"scope"`
	Status      Status     `json:"status"`
	Progress    int        `json:"progress"`
	ClientID    int64      `json:"client_id"`
	ManagerID   int64      `json:"manager_id"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (Project) TableName() string {
	return "projects"
}

type Milestone struct {
	ID          int64      `json:"id" gorm:"primaryKey"`
	ProjectID   int64      `json:"project_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (Milestone) TableName() string {
	return "milestones"
}

type ChangeRequestStatus string

const (
	ChangeRequestPending  ChangeRequestStatus = "pending"
	ChangeRequestApproved ChangeRequestStatus = "approved"
	ChangeRequestRejected ChangeRequestStatus = "rejected"
)

// ChangeRequest is a client-submitted scope change awaiting a staff decision.
type ChangeRequest struct {
	ID          int64               `json:"id" gorm:"primaryKey"`
	ProjectID   int64               `json:"project_id"`
	RequesterID int64               `json:"requester_id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Status      ChangeRequestStatus `json:"status"`
	DecidedBy   *int64              `json:"decided_by,omitempty"`
	DecidedAt   *time.Time          `json:"decided_at,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

func (ChangeRequest) TableName() string {
	return "change_requests"
}

var (
	ErrProjectNotFound       = errors.New("project not found")
	ErrMilestoneNotFound     = errors.New("milestone not found")
	ErrChangeRequestNotFound = errors.New("change request not found")
	ErrChangeRequestDecided  = errors.New("change request already decided")
	ErrInvalidStatus         = errors.New("invalid project status")
	ErrForbidden             = errors.New("forbidden")
)

// ManagerRef identifies the staff member bound to an auto-provisioned project.
type ManagerRef struct {
	ID   int64
	Name string
}

type RepositoryAPI interface {
	Create(p *Project) error
	GetByID(id int64) (*Project, error)
	List(filter ListFilter) ([]Project, error)
	ListByClient(clientID int64) ([]Project, error)
	Update(p *Project) error
	Delete(id int64) error

	// FindActiveManager returns any active ADMIN, falling back to any active
	// EDITOR, or nil when neither exists.
	FindActiveManager() (*ManagerRef, error)

	CreateMilestone(m *Milestone) error
	GetMilestone(id int64) (*Milestone, error)
	ListMilestones(projectID int64) ([]Milestone, error)
	UpdateMilestone(m *Milestone) error
	DeleteMilestone(id int64) error

	CreateChangeRequest(cr *ChangeRequest) error
	GetChangeRequest(id int64) (*ChangeRequest, error)
	ListChangeRequests(projectID int64) ([]ChangeRequest, error)
	UpdateChangeRequest(cr *ChangeRequest) error
}

type ListFilter struct {
	Status   Status
	ClientID int64
	Limit    int
	Offset   int
}
