package lead

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/agency-portal/internal/core/events"
)

type ServiceAPI interface {
	Submit(ctx context.Context, remoteIP string, dto CreateLeadDTO) (*Lead, error)
	List(limit, offset int) ([]Lead, error)
	UpdateStatus(id int64, dto UpdateLeadStatusDTO) (*Lead, error)
}

type PublisherAPI interface {
	Publish(ctx context.Context, name string, payload interface{})
}

// LeadCreatedPayload is published after a lead row commits.
type LeadCreatedPayload struct {
	LeadID  int64
	Name    string
	Email   string
	Company string
	Message string
}

type Service struct {
	repo      RepositoryAPI
	limiter   *submissionLimiter
	publisher PublisherAPI
	logger    *slog.Logger
}

func NewService(repo RepositoryAPI, limit int, window time.Duration, publisher PublisherAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		limiter:   newSubmissionLimiter(limit, window),
		publisher: publisher,
		logger:    logger,
	}
}

// Submit stores a contact form submission. Honeypot hits are swallowed with
// a fake success so bots get no signal; rate limit hits are real errors so
// the frontend can tell the visitor to slow down.
func (s *Service) Submit(ctx context.Context, remoteIP string, dto CreateLeadDTO) (*Lead, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if dto.Website != "" {
		s.logger.Warn("honeypot triggered on lead form", "ip", remoteIP)
		return &Lead{Name: dto.Name, Email: dto.Email, Status: StatusNew, CreatedAt: time.Now()}, nil
	}

	if !s.limiter.allow(remoteIP, time.Now()) {
		s.logger.Warn("lead form rate limited", "ip", remoteIP)
		return nil, ErrRateLimited
	}

	l := &Lead{
		Name:      dto.Name,
		Email:     dto.Email,
		Company:   dto.Company,
		Message:   dto.Message,
		Source:    dto.Source,
		Status:    StatusNew,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := s.repo.Create(l); err != nil {
		s.logger.Error("failed to store lead", "email", dto.Email, "error", err)
		return nil, err
	}

	if s.publisher != nil {
		s.publisher.Publish(ctx, events.EventLeadCreated, LeadCreatedPayload{
			LeadID:  l.ID,
			Name:    l.Name,
			Email:   l.Email,
			Company: l.Company,
			Message: l.Message,
		})
	}

	s.logger.Info("lead captured", "lead_id", l.ID, "source", l.Source)
	return l, nil
}

func (s *Service) List(limit, offset int) ([]Lead, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.repo.List(limit, offset)
}

func (s *Service) UpdateStatus(id int64, dto UpdateLeadStatusDTO) (*Lead, error) {
	status, err := ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByID(id); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateStatus(id, status, time.Now()); err != nil {
		return nil, err
	}
	return s.repo.GetByID(id)
}
