package analytics

import (
	"errors"
	"time"
)

// Event is one first-party tracking event. IDs are UUIDs generated
// server-side so the public ingest endpoint never trusts client ids.
type Event struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	SessionID string    `json:"session_id"`
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	Referrer  string    `json:"referrer"`
	CreatedAt time.Time `json:"created_at"`
}

func (Event) TableName() string {
	return "analytics_events"
}

type Session struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	LandingPath string    `json:"landing_path"`
	UserAgent   string    `json:"user_agent"`
	FirstSeenAt time.Time `json:"first_seen_at"`
	LastSeenAt  time.Time `json:"last_seen_at"`
}

func (Session) TableName() string {
	return "analytics_sessions"
}

// NameCount is one row of the event summary report.
type NameCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

var ErrSessionNotFound = errors.New("analytics session not found")

type RepositoryAPI interface {
	CreateSession(s *Session) error
	GetSession(id string) (*Session, error)
	TouchSession(id string, at time.Time) error
	CreateEvent(e *Event) error
	CountByName(from, to time.Time) ([]NameCount, error)
}
