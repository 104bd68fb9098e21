package messaging

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/frahmantamala/agency-portal/internal/auth"
	"github.com/frahmantamala/agency-portal/internal/core/events"
	"github.com/frahmantamala/agency-portal/internal/project"
)

type ServiceAPI interface {
	EnsureClientConversations(clientID int64) error
	ListConversations(actor *auth.Session) ([]ConversationSummary, error)
	CheckConversationAccess(conversationID int64, actor *auth.Session) (*AccessView, error)
	SendMessage(ctx context.Context, actor *auth.Session, conversationID int64, dto SendMessageDTO) (*Message, error)
	GetMessages(actor *auth.Session, conversationID int64, limit int, before *time.Time) ([]Message, error)
	UnreadCountForUser(actor *auth.Session) (int64, error)
}

// ProjectProvisionerAPI is the slice of the project service messaging needs:
// making sure a client has at least one project to converse in.
type ProjectProvisionerAPI interface {
	EnsureClientHasProject(clientID int64) ([]project.Project, error)
}

// PublisherAPI decouples the service from the event bus in tests.
type PublisherAPI interface {
	Publish(ctx context.Context, name string, payload interface{})
}

// MessageSentPayload is the event payload published after a message commits.
type MessageSentPayload struct {
	MessageID      int64
	ConversationID int64
	ProjectID      int64
	SenderID       int64
	SenderName     string
	Preview        string
}

type Service struct {
	repo      RepositoryAPI
	projects  ProjectProvisionerAPI
	publisher PublisherAPI
	logger    *slog.Logger
}

func NewService(repo RepositoryAPI, projects ProjectProvisionerAPI, publisher PublisherAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		projects:  projects,
		publisher: publisher,
		logger:    logger,
	}
}

// EnsureClientConversations provisions the client's default project when
// missing and upserts a conversation for every project the client owns.
// Called by the route layer before the conversation list read so the read
// itself stays side-effect free.
func (s *Service) EnsureClientConversations(clientID int64) error {
	projects, err := s.projects.EnsureClientHasProject(clientID)
	if err != nil {
		return err
	}

	for _, p := range projects {
		if err := s.repo.UpsertConversation(p.ID); err != nil {
			return err
		}
	}
	return nil
}

// ListConversations returns the conversation list for the actor: every
// conversation for staff, only the client's own otherwise. Each summary is
// annotated with the latest message and the actor's unread count.
func (s *Service) ListConversations(actor *auth.Session) ([]ConversationSummary, error) {
	if actor == nil {
		return nil, ErrConversationAccess
	}

	clientScope := int64(0)
	if !actor.Role.IsStaff() {
		clientScope = actor.UserID
	}

	summaries, err := s.repo.ListConversations(clientScope)
	if err != nil {
		s.logger.Error("failed to list conversations", "user_id", actor.UserID, "error", err)
		return nil, errors.New("failed to list conversations")
	}

	for i := range summaries {
		latest, err := s.repo.LatestMessage(summaries[i].ID)
		if err != nil {
			return nil, errors.New("failed to list conversations")
		}
		summaries[i].LastMessage = latest

		unread, err := s.repo.UnreadCountInConversation(summaries[i].ID, actor.UserID)
		if err != nil {
			return nil, errors.New("failed to list conversations")
		}
		summaries[i].UnreadCount = unread
	}

	return summaries, nil
}

// CheckConversationAccess is the single choke point for conversation access.
// A missing conversation and a denied one produce the same error.
func (s *Service) CheckConversationAccess(conversationID int64, actor *auth.Session) (*AccessView, error) {
	if actor == nil {
		return nil, ErrConversationAccess
	}

	view, err := s.repo.GetAccessView(conversationID)
	if err != nil {
		return nil, ErrConversationAccess
	}

	if actor.Role.IsStaff() {
		return view, nil
	}
	if actor.Role == auth.RoleClient && view.ClientID == actor.UserID {
		return view, nil
	}
	return nil, ErrConversationAccess
}

// SendMessage validates, checks access, then atomically appends the message
// and advances the conversation's last-activity timestamp.
func (s *Service) SendMessage(ctx context.Context, actor *auth.Session, conversationID int64, dto SendMessageDTO) (*Message, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	view, err := s.CheckConversationAccess(conversationID, actor)
	if err != nil {
		return nil, err
	}

	msg := &Message{
		ConversationID: conversationID,
		SenderID:       actor.UserID,
		Content:        dto.Content,
		IsRead:         false,
		CreatedAt:      time.Now(),
	}

	if err := s.repo.CreateMessage(msg); err != nil {
		s.logger.Error("failed to send message", "conversation_id", conversationID, "error", err)
		return nil, err
	}
	msg.SenderName = actor.Name

	if s.publisher != nil {
		s.publisher.Publish(ctx, events.EventMessageSent, MessageSentPayload{
			MessageID:      msg.ID,
			ConversationID: msg.ConversationID,
			ProjectID:      view.ProjectID,
			SenderID:       msg.SenderID,
			SenderName:     actor.Name,
			Preview:        previewOf(msg.Content),
		})
	}

	return msg, nil
}

// previewLimit caps how much message content rides along on the event.
const previewLimit = 140

// previewOf truncates on a rune boundary so multi-byte content stays valid.
func previewOf(content string) string {
	runes := []rune(content)
	if len(runes) <= previewLimit {
		return content
	}
	return string(runes[:previewLimit])
}

// GetMessages lists messages ascending with exclusive before-timestamp
// pagination, then marks the other party's messages as read. Reading a
// conversation is the only way messages become read.
func (s *Service) GetMessages(actor *auth.Session, conversationID int64, limit int, before *time.Time) ([]Message, error) {
	if _, err := s.CheckConversationAccess(conversationID, actor); err != nil {
		return nil, err
	}

	if limit <= 0 || limit > 200 {
		limit = DefaultPageSize
	}

	messages, err := s.repo.ListMessages(conversationID, limit, before)
	if err != nil {
		s.logger.Error("failed to list messages", "conversation_id", conversationID, "error", err)
		return nil, err
	}

	if _, err := s.repo.MarkConversationRead(conversationID, actor.UserID, time.Now()); err != nil {
		// The fetch already succeeded; a failed read-state update only delays
		// the unread counter catching up.
		s.logger.Warn("failed to mark conversation read", "conversation_id", conversationID, "error", err)
	}

	return messages, nil
}

// UnreadCountForUser aggregates unread messages from other senders over the
// conversations the actor can see. Computed on demand, never cached.
func (s *Service) UnreadCountForUser(actor *auth.Session) (int64, error) {
	if actor == nil {
		return 0, ErrConversationAccess
	}

	clientScope := int64(0)
	if !actor.Role.IsStaff() {
		clientScope = actor.UserID
	}
	return s.repo.CountUnread(actor.UserID, clientScope)
}
