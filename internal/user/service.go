package user

import (
	"errors"
	"log/slog"
	"time"

	"github.com/frahmantamala/agency-portal/internal/auth"
)

// ErrForbidden is returned when the acting session lacks the ADMIN role.
// Account management is admin-only regardless of route-level gating.
var ErrForbidden = errors.New("forbidden")

type Service struct {
	repo       RepositoryAPI
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo RepositoryAPI, bcryptCost int, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

func (s *Service) requireAdmin(actor *auth.Session) error {
	decision := auth.Authorize(actor, []auth.Role{auth.RoleAdmin})
	if !decision.Authorized {
		return ErrForbidden
	}
	return nil
}

// CreateStaff registers a password-authenticated agency account.
func (s *Service) CreateStaff(actor *auth.Session, dto CreateStaffDTO) (*User, error) {
	if err := s.requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if existing, err := s.repo.GetByEmail(dto.Email); err == nil && existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := auth.HashPassword(dto.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	u := &User{
		Email:        dto.Email,
		Name:         dto.Name,
		Role:         dto.ParsedRole(),
		PasswordHash: &hash,
		IsActive:     true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := s.repo.Create(u); err != nil {
		s.logger.Error("failed to create staff user", "email", dto.Email, "error", err)
		return nil, err
	}

	s.logger.Info("staff user created", "user_id", u.ID, "role", u.Role)
	return u, nil
}

// CreateClient registers a client account and issues its first access code.
func (s *Service) CreateClient(actor *auth.Session, dto CreateClientDTO) (*User, error) {
	if err := s.requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if existing, err := s.repo.GetByEmail(dto.Email); err == nil && existing != nil {
		return nil, ErrEmailTaken
	}

	code, err := auth.GenerateAccessCode()
	if err != nil {
		return nil, err
	}

	u := &User{
		Email:       dto.Email,
		Name:        dto.Name,
		Role:        auth.RoleClient,
		AccessCode:  &code,
		CompanyName: dto.CompanyName,
		IsActive:    true,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := s.repo.Create(u); err != nil {
		s.logger.Error("failed to create client user", "email", dto.Email, "error", err)
		return nil, err
	}

	s.logger.Info("client user created", "user_id", u.ID)
	return u, nil
}

func (s *Service) GetByID(id int64) (*User, error) {
	return s.repo.GetByID(id)
}

func (s *Service) List(filter ListFilter) ([]User, error) {
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 50
	}
	return s.repo.List(filter)
}

func (s *Service) Update(actor *auth.Session, id int64, dto UpdateUserDTO) (*User, error) {
	if err := s.requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	u, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if dto.Email != nil && *dto.Email != u.Email {
		if existing, err := s.repo.GetByEmail(*dto.Email); err == nil && existing != nil && existing.ID != id {
			return nil, ErrEmailTaken
		}
		u.Email = *dto.Email
	}
	if dto.Name != nil {
		u.Name = *dto.Name
	}
	if dto.CompanyName != nil {
		u.CompanyName = dto.CompanyName
	}
	if dto.IsActive != nil {
		if !*dto.IsActive && actor != nil && actor.UserID == id {
			return nil, ErrSelfDeactivate
		}
		u.IsActive = *dto.IsActive
	}
	u.UpdatedAt = time.Now()

	if err := s.repo.Update(u); err != nil {
		return nil, err
	}
	return u, nil
}

// RegenerateAccessCode replaces a client's access code. The previous code
// stops working the moment the row is updated.
func (s *Service) RegenerateAccessCode(actor *auth.Session, id int64) (*User, error) {
	if err := s.requireAdmin(actor); err != nil {
		return nil, err
	}

	u, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if u.Role != auth.RoleClient {
		return nil, ErrNotClient
	}

	code, err := auth.GenerateAccessCode()
	if err != nil {
		return nil, err
	}
	u.AccessCode = &code
	u.UpdatedAt = time.Now()

	if err := s.repo.Update(u); err != nil {
		return nil, err
	}

	s.logger.Info("access code regenerated", "user_id", u.ID)
	return u, nil
}

// Deactivate disables an account without removing its history. Deactivated
// users fail token refresh and session lookup on their next request.
func (s *Service) Deactivate(actor *auth.Session, id int64) error {
	if err := s.requireAdmin(actor); err != nil {
		return err
	}
	if actor != nil && actor.UserID == id {
		return ErrSelfDeactivate
	}

	if _, err := s.repo.GetByID(id); err != nil {
		return err
	}

	if err := s.repo.SetActive(id, false); err != nil {
		return err
	}
	s.logger.Info("user deactivated", "user_id", id)
	return nil
}

// Delete removes an account permanently. Owned projects, conversations and
// messages go with it via foreign key cascade.
func (s *Service) Delete(actor *auth.Session, id int64) error {
	if err := s.requireAdmin(actor); err != nil {
		return err
	}
	if actor != nil && actor.UserID == id {
		return ErrSelfDeactivate
	}

	if _, err := s.repo.GetByID(id); err != nil {
		return err
	}

	if err := s.repo.Delete(id); err != nil {
		return err
	}
	s.logger.Info("user deleted", "user_id", id)
	return nil
}
