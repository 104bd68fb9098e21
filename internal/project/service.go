package project

import (
	"log/slog"
	"time"

	"github.com/frahmantamala/agency-portal/internal/auth"
)

type ServiceAPI interface {
	Create(actor *auth.Session, dto CreateProjectDTO) (*Project, error)
	Get(actor *auth.Session, id int64) (*Project, error)
	List(actor *auth.Session, filter ListFilter) ([]Project, error)
	Update(actor *auth.Session, id int64, dto UpdateProjectDTO) (*Project, error)
	Delete(actor *auth.Session, id int64) error

	EnsureClientHasProject(clientID int64) ([]Project, error)

	CreateMilestone(actor *auth.Session, projectID int64, dto CreateMilestoneDTO) (*Milestone, error)
	ListMilestones(actor *auth.Session, projectID int64) ([]Milestone, error)
	UpdateMilestone(actor *auth.Session, projectID, milestoneID int64, dto UpdateMilestoneDTO) (*Milestone, error)
	DeleteMilestone(actor *auth.Session, projectID, milestoneID int64) error

	CreateChangeRequest(actor *auth.Session, projectID int64, dto CreateChangeRequestDTO) (*ChangeRequest, error)
	ListChangeRequests(actor *auth.Session, projectID int64) ([]ChangeRequest, error)
	DecideChangeRequest(actor *auth.Session, projectID, requestID int64, dto DecideChangeRequestDTO) (*ChangeRequest, error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// canView reports whether the actor may read this project. Staff see every
// project; clients only their own.
func canView(actor *auth.Session, p *Project) bool {
	if actor == nil {
		return false
	}
	if actor.Role.IsStaff() {
		return true
	}
	return p.ClientID == actor.UserID
}

func requireManager(actor *auth.Session) error {
	if !auth.Authorize(actor, auth.ManagerRoles).Authorized {
		return ErrForbidden
	}
	return nil
}

func (s *Service) Create(actor *auth.Session, dto CreateProjectDTO) (*Project, error) {
	if err := requireManager(actor); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	status, _ := ParseStatus(dto.Status)
	p := &Project{
		Name:        dto.Name,
		Description: dto.Description,
		Scope:       dto.Scope,
		Status:      status,
		ClientID:    dto.ClientID,
		ManagerID:   dto.ManagerID,
		StartDate:   dto.StartDate,
		DueDate:     dto.DueDate,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := s.repo.Create(p); err != nil {
		s.logger.Error("failed to create project", "name", dto.Name, "error", err)
		return nil, err
	}

	s.logger.Info("project created", "project_id", p.ID, "client_id", p.ClientID)
	return p, nil
}

// Get returns the project when the actor may see it. Denials read as not
// found so clients cannot probe other clients' project ids.
func (s *Service) Get(actor *auth.Session, id int64) (*Project, error) {
	p, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !canView(actor, p) {
		return nil, ErrProjectNotFound
	}
	return p, nil
}

func (s *Service) List(actor *auth.Session, filter ListFilter) ([]Project, error) {
	if actor == nil {
		return nil, ErrForbidden
	}
	if !actor.Role.IsStaff() {
		// Clients only ever see their own projects regardless of filter.
		filter.ClientID = actor.UserID
	}
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 50
	}
	return s.repo.List(filter)
}

func (s *Service) Update(actor *auth.Session, id int64, dto UpdateProjectDTO) (*Project, error) {
	if err := requireManager(actor); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	p, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if dto.Name != nil {
		p.Name = *dto.Name
	}
	if dto.Description != nil {
		p.Description = *dto.Description
	}
	if dto.Scope != nil {
		p.Scope = *dto.Scope
	}
	if dto.Status != nil {
		status, _ := ParseStatus(*dto.Status)
		p.Status = status
	}
	if dto.Progress != nil {
		p.Progress = *dto.Progress
	}
	if dto.ManagerID != nil {
		p.ManagerID = *dto.ManagerID
	}
	if dto.StartDate != nil {
		p.StartDate = dto.StartDate
	}
	if dto.DueDate != nil {
		p.DueDate = dto.DueDate
	}
	p.UpdatedAt = time.Now()

	if err := s.repo.Update(p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Delete(actor *auth.Session, id int64) error {
	if !auth.Authorize(actor, []auth.Role{auth.RoleAdmin}).Authorized {
		return ErrForbidden
	}
	if _, err := s.repo.GetByID(id); err != nil {
		return err
	}
	return s.repo.Delete(id)
}

// EnsureClientHasProject provisions a generic support project for a client
// with no projects. Any active ADMIN is preferred as manager, then any active
// EDITOR. When no manager exists provisioning is skipped and the empty list
// is returned; that state is degraded, not an error.
func (s *Service) EnsureClientHasProject(clientID int64) ([]Project, error) {
	projects, err := s.repo.ListByClient(clientID)
	if err != nil {
		return nil, err
	}
	if len(projects) > 0 {
		return projects, nil
	}

	manager, err := s.repo.FindActiveManager()
	if err != nil {
		return nil, err
	}
	if manager == nil {
		s.logger.Warn("no active manager available, skipping project provisioning", "client_id", clientID)
		return []Project{}, nil
	}

	p := &Project{
		Name:        GeneralSupportName,
		Description: "Default support channel",
		Status:      StatusActive,
		ClientID:    clientID,
		ManagerID:   manager.ID,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if err := s.repo.Create(p); err != nil {
		return nil, err
	}

	s.logger.Info("provisioned support project", "client_id", clientID, "project_id", p.ID, "manager_id", manager.ID)
	return []Project{*p}, nil
}

func (s *Service) CreateMilestone(actor *auth.Session, projectID int64, dto CreateMilestoneDTO) (*Milestone, error) {
	if err := requireManager(actor); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetByID(projectID); err != nil {
		return nil, err
	}

	m := &Milestone{
		ProjectID:   projectID,
		Title:       dto.Title,
		Description: dto.Description,
		DueDate:     dto.DueDate,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if err := s.repo.CreateMilestone(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) ListMilestones(actor *auth.Session, projectID int64) ([]Milestone, error) {
	if _, err := s.Get(actor, projectID); err != nil {
		return nil, err
	}
	return s.repo.ListMilestones(projectID)
}

func (s *Service) UpdateMilestone(actor *auth.Session, projectID, milestoneID int64, dto UpdateMilestoneDTO) (*Milestone, error) {
	if err := requireManager(actor); err != nil {
		return nil, err
	}

	m, err := s.repo.GetMilestone(milestoneID)
	if err != nil {
		return nil, err
	}
	if m.ProjectID != projectID {
		return nil, ErrMilestoneNotFound
	}

	if dto.Title != nil {
		m.Title = *dto.Title
	}
	if dto.Description != nil {
		m.Description = *dto.Description
	}
	if dto.DueDate != nil {
		m.DueDate = dto.DueDate
	}
	if dto.Completed != nil && *dto.Completed != m.Completed {
		m.Completed = *dto.Completed
		if m.Completed {
			now := time.Now()
			m.CompletedAt = &now
		} else {
			m.CompletedAt = nil
		}
	}
	m.UpdatedAt = time.Now()

	if err := s.repo.UpdateMilestone(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) DeleteMilestone(actor *auth.Session, projectID, milestoneID int64) error {
	if err := requireManager(actor); err != nil {
		return err
	}
	m, err := s.repo.GetMilestone(milestoneID)
	if err != nil {
		return err
	}
	if m.ProjectID != projectID {
		return ErrMilestoneNotFound
	}
	return s.repo.DeleteMilestone(milestoneID)
}

// CreateChangeRequest accepts a scope change from the owning client or any
// staff member filing on their behalf.
func (s *Service) CreateChangeRequest(actor *auth.Session, projectID int64, dto CreateChangeRequestDTO) (*ChangeRequest, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.Get(actor, projectID); err != nil {
		return nil, err
	}

	cr := &ChangeRequest{
		ProjectID:   projectID,
		RequesterID: actor.UserID,
		Title:       dto.Title,
		Description: dto.Description,
		Status:      ChangeRequestPending,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if err := s.repo.CreateChangeRequest(cr); err != nil {
		return nil, err
	}

	s.logger.Info("change request created", "project_id", projectID, "request_id", cr.ID)
	return cr, nil
}

func (s *Service) ListChangeRequests(actor *auth.Session, projectID int64) ([]ChangeRequest, error) {
	if _, err := s.Get(actor, projectID); err != nil {
		return nil, err
	}
	return s.repo.ListChangeRequests(projectID)
}

// DecideChangeRequest approves or rejects a pending request. Decisions are
// final; deciding twice returns a conflict.
func (s *Service) DecideChangeRequest(actor *auth.Session, projectID, requestID int64, dto DecideChangeRequestDTO) (*ChangeRequest, error) {
	if err := requireManager(actor); err != nil {
		return nil, err
	}

	cr, err := s.repo.GetChangeRequest(requestID)
	if err != nil {
		return nil, err
	}
	if cr.ProjectID != projectID {
		return nil, ErrChangeRequestNotFound
	}
	if cr.Status != ChangeRequestPending {
		return nil, ErrChangeRequestDecided
	}

	if dto.Approve {
		cr.Status = ChangeRequestApproved
	} else {
		cr.Status = ChangeRequestRejected
	}
	now := time.Now()
	cr.DecidedBy = &actor.UserID
	cr.DecidedAt = &now
	cr.UpdatedAt = now

	if err := s.repo.UpdateChangeRequest(cr); err != nil {
		return nil, err
	}

	s.logger.Info("change request decided", "request_id", cr.ID, "status", cr.Status)
	return cr, nil
}
