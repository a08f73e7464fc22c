package message

import (
	"context"
	"time"

	"helpmarket/internal/domain/conversation"

	"gorm.io/gorm"
)

// Filter narrows List results. Zero values mean "no filter".
type Filter struct {
	Kind       Kind
	UnreadOnly bool
	Before     *time.Time
	After      *time.Time
	Limit      int
	Offset     int
}

// Repository handles all DB operations for messages
type Repository interface {
	Create(ctx context.Context, m *Message) error
	GetByID(ctx context.Context, id string) (*Message, error)
	List(ctx context.Context, conversationID string, f Filter) ([]*Message, error)
	Delete(ctx context.Context, id string) error

	// MarkAsRead flips is_read for messages in the conversation not sent by
	// readerID. An empty ids slice means all currently-unread messages.
	MarkAsRead(ctx context.Context, conversationID string, readerID int64, ids []string) (int64, error)

	CountUnread(ctx context.Context, conversationID string, userID int64) (int64, error)
	CountTotalUnread(ctx context.Context, userID int64) (int64, error)
	LastMessagePreview(ctx context.Context, conversationID string) (*conversation.MessagePreview, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, m *Message) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *repository) GetByID(ctx context.Context, id string) (*Message, error) {
	var m Message
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if err == gorm.ErrRecordNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *repository) List(ctx context.Context, conversationID string, f Filter) ([]*Message, error) {
	q := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID)

	if f.Kind != "" {
		q = q.Where("message_type = ?", f.Kind)
	}
	if f.UnreadOnly {
		q = q.Where("is_read = ?", false)
	}
	if f.Before != nil {
		q = q.Where("created_at < ?", *f.Before)
	}
	if f.After != nil {
		q = q.Where("created_at > ?", *f.After)
	}

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	var msgs []*Message
	err := q.Order("created_at ASC").
		Limit(limit).Offset(f.Offset).
		Find(&msgs).Error
	return msgs, err
}

func (r *repository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&Message{}).Error
}

func (r *repository) MarkAsRead(ctx context.Context, conversationID string, readerID int64, ids []string) (int64, error) {
	q := r.db.WithContext(ctx).
		Model(&Message{}).
		Where("conversation_id = ? AND sender_id != ? AND is_read = ?", conversationID, readerID, false)
	if len(ids) > 0 {
		q = q.Where("id IN ?", ids)
	}
	res := q.Updates(map[string]any{
		"is_read":    true,
		"updated_at": time.Now(),
	})
	return res.RowsAffected, res.Error
}

func (r *repository) CountUnread(ctx context.Context, conversationID string, userID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Message{}).
		Where("conversation_id = ? AND sender_id != ? AND is_read = ?", conversationID, userID, false).
		Count(&count).Error
	return count, err
}

func (r *repository) CountTotalUnread(ctx context.Context, userID int64) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Table("messages m").
		Joins("JOIN conversations c ON c.id = m.conversation_id AND (c.poster_id = ? OR c.interested_user_id = ?)", userID, userID).
		Where("m.sender_id != ? AND m.is_read = ?", userID, false).
		Count(&total).Error
	return total, err
}

func (r *repository) LastMessagePreview(ctx context.Context, conversationID string) (*conversation.MessagePreview, error) {
	var m Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at DESC").
		First(&m).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &conversation.MessagePreview{
		ID:          m.ID,
		Content:     m.Content.String,
		MessageType: string(m.MessageType),
		SenderID:    m.SenderID,
		CreatedAt:   m.CreatedAt,
	}, nil
}
