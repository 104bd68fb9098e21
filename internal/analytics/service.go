package analytics

import (
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

type ServiceAPI interface {
	Ingest(dto IngestEventDTO, userAgent string) (*Event, error)
	Summary(from, to time.Time) ([]NameCount, error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Ingest appends one event, creating or touching its session. Unknown
// session ids from stale clients get a fresh session rather than an error;
// ingest is public and must stay forgiving.
func (s *Service) Ingest(dto IngestEventDTO, userAgent string) (*Event, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	sessionID := dto.SessionID

	if sessionID != "" {
		if _, err := uuid.Parse(sessionID); err != nil {
			sessionID = ""
		}
	}

	if sessionID != "" {
		if err := s.repo.TouchSession(sessionID, now); err != nil {
			if !errors.Is(err, ErrSessionNotFound) {
				return nil, err
			}
			sessionID = ""
		}
	}

	if sessionID == "" {
		session := &Session{
			ID:          uuid.NewString(),
			LandingPath: dto.Path,
			UserAgent:   userAgent,
			FirstSeenAt: now,
			LastSeenAt:  now,
		}
		if err := s.repo.CreateSession(session); err != nil {
			return nil, err
		}
		sessionID = session.ID
	}

	event := &Event{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Name:      dto.Name,
		Path:      dto.Path,
		Referrer:  dto.Referrer,
		CreatedAt: now,
	}
	if err := s.repo.CreateEvent(event); err != nil {
		s.logger.Error("failed to store analytics event", "name", dto.Name, "error", err)
		return nil, err
	}

	return event, nil
}

// Summary counts events per name in the window. Defaults to the last 30
// days when the caller passes zero bounds.
func (s *Service) Summary(from, to time.Time) ([]NameCount, error) {
	if to.IsZero() {
		to = time.Now()
	}
	if from.IsZero() {
		from = to.AddDate(0, 0, -30)
	}
	return s.repo.CountByName(from, to)
}
