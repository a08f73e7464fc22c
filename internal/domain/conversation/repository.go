package conversation

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Repository handles all DB operations for conversations
type Repository interface {
	Create(ctx context.Context, c *Conversation) error
	GetByID(ctx context.Context, id string) (*Conversation, error)
	// GetByParticipants returns nil, nil when no row exists.
	GetByParticipants(ctx context.Context, offerID string, interestedUserID int64) (*Conversation, error)
	ListByUser(ctx context.Context, userID int64, activeOnly bool, limit, offset int) ([]*Conversation, error)
	ListByOffer(ctx context.Context, offerID string) ([]*Conversation, error)
	CountForOffer(ctx context.Context, offerID string) (int64, error)
	Deactivate(ctx context.Context, id string) error
	TouchLastMessage(ctx context.Context, id string, at time.Time) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, c *Conversation) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *repository) GetByID(ctx context.Context, id string) (*Conversation, error) {
	var c Conversation
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if err == gorm.ErrRecordNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repository) GetByParticipants(ctx context.Context, offerID string, interestedUserID int64) (*Conversation, error) {
	var c Conversation
	err := r.db.WithContext(ctx).
		Where("offer_id = ? AND interested_user_id = ?", offerID, interestedUserID).
		First(&c).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repository) ListByUser(ctx context.Context, userID int64, activeOnly bool, limit, offset int) ([]*Conversation, error) {
	q := r.db.WithContext(ctx).
		Where("poster_id = ? OR interested_user_id = ?", userID, userID)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var convs []*Conversation
	err := q.Order("last_message_at DESC").
		Limit(limit).Offset(offset).
		Find(&convs).Error
	return convs, err
}

func (r *repository) ListByOffer(ctx context.Context, offerID string) ([]*Conversation, error) {
	var convs []*Conversation
	err := r.db.WithContext(ctx).
		Where("offer_id = ?", offerID).
		Order("last_message_at DESC").
		Find(&convs).Error
	return convs, err
}

func (r *repository) CountForOffer(ctx context.Context, offerID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Conversation{}).
		Where("offer_id = ?", offerID).
		Count(&count).Error
	return count, err
}

func (r *repository) Deactivate(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&Conversation{}).
		Where("id = ?", id).
		Update("is_active", false).Error
}

func (r *repository) TouchLastMessage(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&Conversation{}).
		Where("id = ?", id).
		Update("last_message_at", at).Error
}
