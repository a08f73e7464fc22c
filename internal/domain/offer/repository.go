package offer

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"
)

// SearchFilter narrows List results. Zero values mean "no filter".
type SearchFilter struct {
	Status     Status
	Type       Type
	CategoryID string
	MinPrice   *float64
	MaxPrice   *float64
	Query      string
	Limit      int
	Offset     int
}

// Repository handles all DB operations for offers
type Repository interface {
	Create(ctx context.Context, o *Offer) error
	GetByID(ctx context.Context, id string) (*Offer, error)
	Save(ctx context.Context, o *Offer) error
	Delete(ctx context.Context, id string) error

	List(ctx context.Context, f SearchFilter) ([]*Offer, error)
	FindByParticipant(ctx context.Context, userID int64) ([]*Offer, error)

	// UpdateStatus applies a status change unconditionally; legality is the
	// caller's responsibility. takerID is written as given (null clears it).
	// Leaving in_progress clears any pending cancellation request, since the
	// cancellation columns are only meaningful on an in-progress offer.
	UpdateStatus(ctx context.Context, id string, status Status, takerID sql.NullInt64, completedAt sql.NullTime) (int64, error)

	// SetCancellationRequest conditionally opens a cancellation request.
	// Returns rows affected; zero means a precondition did not hold.
	SetCancellationRequest(ctx context.Context, id string, requesterID int64, reason string, at time.Time) (int64, error)

	// ResolveCancellation conditionally closes a pending request. On approve
	// the offer returns to open and the taker is cleared; on deny only the
	// cancellation columns are cleared.
	ResolveCancellation(ctx context.Context, id string, posterID int64, approved bool) (int64, error)

	// WithdrawCancellation conditionally clears a pending request made by
	// requesterID.
	WithdrawCancellation(ctx context.Context, id string, requesterID int64) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, o *Offer) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *repository) GetByID(ctx context.Context, id string) (*Offer, error) {
	var o Offer
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&o).Error
	if err == gorm.ErrRecordNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *repository) Save(ctx context.Context, o *Offer) error {
	return r.db.WithContext(ctx).Save(o).Error
}

func (r *repository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&Offer{}).Error
}

func (r *repository) List(ctx context.Context, f SearchFilter) ([]*Offer, error) {
	q := r.db.WithContext(ctx).Model(&Offer{})

	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.CategoryID != "" {
		q = q.Where("category_id = ?", f.CategoryID)
	}
	if f.MinPrice != nil {
		q = q.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("price <= ?", *f.MaxPrice)
	}
	if f.Query != "" {
		like := "%" + f.Query + "%"
		q = q.Where("title LIKE ? OR description LIKE ?", like, like)
	}

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var offers []*Offer
	err := q.Order("created_at DESC").
		Limit(limit).Offset(f.Offset).
		Find(&offers).Error
	return offers, err
}

func (r *repository) FindByParticipant(ctx context.Context, userID int64) ([]*Offer, error) {
	var offers []*Offer
	err := r.db.WithContext(ctx).
		Where("poster_id = ? OR taker_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&offers).Error
	return offers, err
}

func (r *repository) UpdateStatus(ctx context.Context, id string, status Status, takerID sql.NullInt64, completedAt sql.NullTime) (int64, error) {
	updates := map[string]any{
		"status":     status,
		"taker_id":   takerID,
		"updated_at": time.Now(),
	}
	if completedAt.Valid {
		updates["completed_at"] = completedAt.Time
	}
	if status != StatusInProgress {
		// a pending cancellation request dies with the in_progress state
		updates["cancellation_requested_by"] = nil
		updates["cancellation_reason"] = nil
		updates["cancellation_requested_at"] = nil
	}
	res := r.db.WithContext(ctx).
		Model(&Offer{}).
		Where("id = ?", id).
		Updates(updates)
	return res.RowsAffected, res.Error
}

func (r *repository) SetCancellationRequest(ctx context.Context, id string, requesterID int64, reason string, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&Offer{}).
		Where("id = ? AND status = ? AND taker_id = ? AND cancellation_requested_by IS NULL",
			id, StatusInProgress, requesterID).
		Updates(map[string]any{
			"cancellation_requested_by": requesterID,
			"cancellation_reason":       reason,
			"cancellation_requested_at": at,
			"updated_at":                time.Now(),
		})
	return res.RowsAffected, res.Error
}

func (r *repository) ResolveCancellation(ctx context.Context, id string, posterID int64, approved bool) (int64, error) {
	updates := map[string]any{
		"cancellation_requested_by": nil,
		"cancellation_reason":       nil,
		"cancellation_requested_at": nil,
		"updated_at":                time.Now(),
	}
	if approved {
		updates["status"] = StatusOpen
		updates["taker_id"] = nil
	}
	res := r.db.WithContext(ctx).
		Model(&Offer{}).
		Where("id = ? AND poster_id = ? AND status = ? AND cancellation_requested_by IS NOT NULL",
			id, posterID, StatusInProgress).
		Updates(updates)
	return res.RowsAffected, res.Error
}

func (r *repository) WithdrawCancellation(ctx context.Context, id string, requesterID int64) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&Offer{}).
		Where("id = ? AND cancellation_requested_by = ?", id, requesterID).
		Updates(map[string]any{
			"cancellation_requested_by": nil,
			"cancellation_reason":       nil,
			"cancellation_requested_at": nil,
			"updated_at":                time.Now(),
		})
	return res.RowsAffected, res.Error
}
