package messaging

import (
	"errors"
	"time"
)

// Conversation is the single message channel for one project. The unique
// constraint on ProjectID is what guarantees the 1:1 relationship; the
// upsert in the repository is only the fast path.
type Conversation struct {
	ID            int64      `json:"id" gorm:"primaryKey"`
	ProjectID     int64      `json:"project_id" gorm:"uniqueIndex"`
	LastMessageAt *time.Time `json:"last_message_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (Conversation) TableName() string {
	return "conversations"
}

// Message is immutable after creation except for the read flag, which moves
// one way from unread to read when the other party views the conversation.
type Message struct {
	ID             int64      `json:"id" gorm:"primaryKey"`
	ConversationID int64      `json:"conversation_id"`
	SenderID       int64      `json:"sender_id"`
	SenderName     string     `json:"sender_name" gorm:"-"`
	Content        string     `json:"content"`
	IsRead         bool       `json:"is_read"`
	ReadAt         *time.Time `json:"read_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

func (Message) TableName() string {
	return "messages"
}

// AccessView is the slice of a conversation needed for the access decision:
// who the project belongs to and who manages it.
type AccessView struct {
	ConversationID int64
	ProjectID      int64
	ClientID       int64
	ManagerID      int64
}

// ConversationSummary is one row of the conversation list: the conversation
// joined with its project, both party identities, the latest message and the
// unread count for the requesting user.
type ConversationSummary struct {
	ID            int64      `json:"id"`
	ProjectID     int64      `json:"project_id"`
	ProjectName   string     `json:"project_name"`
	ClientID      int64      `json:"client_id"`
	ClientName    string     `json:"client_name"`
	ManagerID     int64      `json:"manager_id"`
	ManagerName   string     `json:"manager_name"`
	LastMessageAt *time.Time `json:"last_message_at,omitempty"`
	LastMessage   *Message   `json:"last_message,omitempty" gorm:"-"`
	UnreadCount   int64      `json:"unread_count"`
}

// MaxMessageLength bounds message content after trimming.
const MaxMessageLength = 5000

// DefaultPageSize is the message page size when the caller does not ask for one.
const DefaultPageSize = 50

// ErrConversationAccess is the single denial for conversation access checks.
// A missing conversation and a forbidden one are indistinguishable to the
// caller so conversation ids cannot be probed.
var ErrConversationAccess = errors.New("conversation not found")

type RepositoryAPI interface {
	// UpsertConversation creates the conversation for a project if absent.
	// Concurrent calls for the same project must not create duplicates.
	UpsertConversation(projectID int64) error

	// GetAccessView loads the conversation with its project's party ids.
	GetAccessView(conversationID int64) (*AccessView, error)

	// ListConversations returns summaries without unread counts or latest
	// messages, ordered by last_message_at descending. clientID 0 means all.
	ListConversations(clientID int64) ([]ConversationSummary, error)

	LatestMessage(conversationID int64) (*Message, error)

	// CreateMessage inserts the message and advances the conversation's
	// last_message_at in one transaction.
	CreateMessage(m *Message) error

	ListMessages(conversationID int64, limit int, before *time.Time) ([]Message, error)

	// MarkConversationRead flips unread messages from other senders to read.
	// Idempotent; returns the number of rows changed.
	MarkConversationRead(conversationID, readerID int64, at time.Time) (int64, error)

	UnreadCountInConversation(conversationID, userID int64) (int64, error)

	// CountUnread counts unread messages from other senders across all
	// conversations (clientID 0) or those of one client's projects.
	CountUnread(userID, clientID int64) (int64, error)
}
