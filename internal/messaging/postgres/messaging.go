package postgres

import (
	"errors"
	"time"

	"github.com/frahmantamala/agency-portal/internal/messaging"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// UpsertConversation inserts a conversation for the project unless one
// already exists. ON CONFLICT DO NOTHING on the project_id unique index
// keeps concurrent first-message races down to a single row.
func (r *Repository) UpsertConversation(projectID int64) error {
	now := time.Now()
	conv := messaging.Conversation{
		ProjectID: projectID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "project_id"}},
		DoNothing: true,
	}).Create(&conv).Error
}

func (r *Repository) GetAccessView(conversationID int64) (*messaging.AccessView, error) {
	var view messaging.AccessView
	err := r.db.Table("conversations").
		Select("conversations.id AS conversation_id, projects.id AS project_id, projects.client_id, projects.manager_id").
		Joins("JOIN projects ON projects.id = conversations.project_id").
		Where("conversations.id = ?", conversationID).
		Take(&view).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, messaging.ErrConversationAccess
		}
		return nil, err
	}
	return &view, nil
}

func (r *Repository) ListConversations(clientID int64) ([]messaging.ConversationSummary, error) {
	query := r.db.Table("conversations").
		Select(`conversations.id,
			projects.id AS project_id,
			projects.name AS project_name,
			projects.client_id,
			clients.name AS client_name,
			projects.manager_id,
			managers.name AS manager_name,
			conversations.last_message_at`).
		Joins("JOIN projects ON projects.id = conversations.project_id").
		Joins("JOIN users AS clients ON clients.id = projects.client_id").
		Joins("JOIN users AS managers ON managers.id = projects.manager_id").
		Order("conversations.last_message_at DESC NULLS LAST, conversations.id ASC")

	if clientID > 0 {
		query = query.Where("projects.client_id = ?", clientID)
	}

	var summaries []messaging.ConversationSummary
	if err := query.Scan(&summaries).Error; err != nil {
		return nil, err
	}
	return summaries, nil
}

func (r *Repository) LatestMessage(conversationID int64) (*messaging.Message, error) {
	var msg messaging.Message
	err := r.db.Where("conversation_id = ?", conversationID).
		Order("created_at DESC, id DESC").
		First(&msg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &msg, nil
}

// CreateMessage appends the message and advances the parent conversation's
// last_message_at in the same transaction. A message must never be visible
// without the conversation ordering timestamp reflecting it.
func (r *Repository) CreateMessage(m *messaging.Message) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(m).Error; err != nil {
			return err
		}
		return tx.Model(&messaging.Conversation{}).
			Where("id = ?", m.ConversationID).
			Updates(map[string]interface{}{
				"last_message_at": m.CreatedAt,
				"updated_at":      m.CreatedAt,
			}).Error
	})
}

func (r *Repository) ListMessages(conversationID int64, limit int, before *time.Time) ([]messaging.Message, error) {
	query := r.db.Where("conversation_id = ?", conversationID)
	if before != nil {
		query = query.Where("created_at < ?", *before)
	}

	var messages []messaging.Message
	err := query.Order("created_at ASC, id ASC").Limit(limit).Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// MarkConversationRead is a bulk conditional update, so repeated calls from
// the same reader are harmless.
func (r *Repository) MarkConversationRead(conversationID, readerID int64, at time.Time) (int64, error) {
	result := r.db.Model(&messaging.Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND is_read = ?", conversationID, readerID, false).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": at,
		})
	return result.RowsAffected, result.Error
}

func (r *Repository) UnreadCountInConversation(conversationID, userID int64) (int64, error) {
	var count int64
	err := r.db.Model(&messaging.Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND is_read = ?", conversationID, userID, false).
		Count(&count).Error
	return count, err
}

func (r *Repository) CountUnread(userID, clientID int64) (int64, error) {
	query := r.db.Table("messages").
		Joins("JOIN conversations ON conversations.id = messages.conversation_id").
		Joins("JOIN projects ON projects.id = conversations.project_id").
		Where("messages.sender_id <> ? AND messages.is_read = ?", userID, false)

	if clientID > 0 {
		query = query.Where("projects.client_id = ?", clientID)
	}

	var count int64
	err := query.Count(&count).Error
	return count, err
}
