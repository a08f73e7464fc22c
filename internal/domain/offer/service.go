package offer

import (
	"context"
	"database/sql"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const maxPrice = 99999.99

// ConversationCounter is implemented by the conversation repository; it backs
// the delete-blocked rule.
type ConversationCounter interface {
	CountForOffer(ctx context.Context, offerID string) (int64, error)
}

// Service handles offer business logic
type Service struct {
	repo          Repository
	conversations ConversationCounter
}

func NewService(repo Repository, conversations ConversationCounter) *Service {
	return &Service{repo: repo, conversations: conversations}
}

// CreateInput carries the fields a poster supplies on submission.
type CreateInput struct {
	CategoryID   string
	Type         Type
	Title        string
	Description  string
	Price        float64
	Deadline     *time.Time
	Requirements string
	Tags         []string
	Attachments  []Attachment
}

// UpdateInput carries editable fields; nil pointers leave a field untouched.
type UpdateInput struct {
	Title        *string
	Description  *string
	Price        *float64
	Deadline     *time.Time
	Requirements *string
	Tags         []string
	Attachments  []Attachment
}

func (s *Service) Create(ctx context.Context, posterID int64, in CreateInput) (*Offer, error) {
	if err := validateCreate(in); err != nil {
		return nil, err
	}

	o := &Offer{
		ID:          uuid.New().String(),
		PosterID:    posterID,
		CategoryID:  in.CategoryID,
		Type:        in.Type,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Price:       in.Price,
		Status:      StatusOpen,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if in.Deadline != nil {
		o.Deadline = sql.NullTime{Time: *in.Deadline, Valid: true}
	}
	if in.Requirements != "" {
		o.Requirements = sql.NullString{String: in.Requirements, Valid: true}
	}
	if err := o.SetTags(in.Tags); err != nil {
		return nil, err
	}
	if err := o.SetAttachments(in.Attachments); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Offer, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Search(ctx context.Context, f SearchFilter) ([]*Offer, error) {
	return s.repo.List(ctx, f)
}

// FindByParticipant returns offers where the user is poster or taker.
func (s *Service) FindByParticipant(ctx context.Context, userID int64) ([]*Offer, error) {
	return s.repo.FindByParticipant(ctx, userID)
}

func (s *Service) Update(ctx context.Context, userID int64, id string, in UpdateInput) (*Offer, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.PosterID != userID {
		return nil, ErrNotPoster
	}
	if !o.EditableBy(userID) {
		return nil, ErrNotEditable
	}

	if in.Title != nil {
		if l := utf8.RuneCountInString(strings.TrimSpace(*in.Title)); l < 1 || l > 200 {
			return nil, &FieldError{Field: "title", Reason: "must be 1-200 characters"}
		}
		o.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		if l := utf8.RuneCountInString(*in.Description); l < 1 || l > 2000 {
			return nil, &FieldError{Field: "description", Reason: "must be 1-2000 characters"}
		}
		o.Description = *in.Description
	}
	if in.Price != nil {
		if *in.Price < 0 || *in.Price > maxPrice {
			return nil, &FieldError{Field: "price", Reason: "must be between 0 and 99999.99"}
		}
		o.Price = *in.Price
	}
	if in.Deadline != nil {
		o.Deadline = sql.NullTime{Time: *in.Deadline, Valid: true}
	}
	if in.Requirements != nil {
		if utf8.RuneCountInString(*in.Requirements) > 1000 {
			return nil, &FieldError{Field: "requirements", Reason: "cannot exceed 1000 characters"}
		}
		o.Requirements = sql.NullString{String: *in.Requirements, Valid: *in.Requirements != ""}
	}
	if in.Tags != nil {
		if err := validateTags(in.Tags); err != nil {
			return nil, err
		}
		if err := o.SetTags(in.Tags); err != nil {
			return nil, err
		}
	}
	if in.Attachments != nil {
		if err := validateAttachments(in.Attachments, 5); err != nil {
			return nil, err
		}
		if err := o.SetAttachments(in.Attachments); err != nil {
			return nil, err
		}
	}

	o.UpdatedAt = time.Now()
	if err := s.repo.Save(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// SetStatus applies a status change without transition validation; callers
// (the negotiation protocol, the gate-checked wrappers below) enforce
// legality. Moving to in_progress requires a taker, which becomes permanent
// for the lifecycle; moving to completed stamps completed_at.
func (s *Service) SetStatus(ctx context.Context, id string, status Status, takerID *int64) (*Offer, error) {
	var taker sql.NullInt64
	if status == StatusInProgress {
		if takerID == nil {
			return nil, ErrTakerRequired
		}
		taker = sql.NullInt64{Int64: *takerID, Valid: true}
	} else if takerID != nil {
		taker = sql.NullInt64{Int64: *takerID, Valid: true}
	} else if status == StatusCompleted {
		// keep the taker bound to a completed offer
		o, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		taker = o.TakerID
	}

	var completedAt sql.NullTime
	if status == StatusCompleted {
		completedAt = sql.NullTime{Time: time.Now(), Valid: true}
	}

	rows, err := s.repo.UpdateStatus(ctx, id, status, taker, completedAt)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

// Cancel is the poster's direct cancellation through a status update.
func (s *Service) Cancel(ctx context.Context, userID int64, id string) (*Offer, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.PosterID != userID {
		return nil, ErrNotPoster
	}
	if !o.CancellableBy(userID) {
		return nil, ErrNotInProgress
	}
	return s.SetStatus(ctx, id, StatusCancelled, nil)
}

// Reopen moves a cancelled offer back to open. Poster only.
func (s *Service) Reopen(ctx context.Context, userID int64, id string) (*Offer, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.PosterID != userID {
		return nil, ErrNotPoster
	}
	if !o.ReopenableBy(userID) {
		return nil, ErrNotReopenable
	}
	return s.SetStatus(ctx, id, StatusOpen, nil)
}

// Complete marks an in-progress offer completed. Poster only.
func (s *Service) Complete(ctx context.Context, userID int64, id string) (*Offer, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.PosterID != userID {
		return nil, ErrNotPoster
	}
	if !o.CompletableBy(userID) {
		return nil, ErrNotInProgress
	}
	return s.SetStatus(ctx, id, StatusCompleted, nil)
}

// RequestCancellation opens a cancellation request on behalf of the taker.
// The conditional update guarantees the three cancellation columns are set
// atomically and that a concurrent duplicate request loses.
func (s *Service) RequestCancellation(ctx context.Context, requesterID int64, id, reason string) error {
	reason = strings.TrimSpace(reason)
	if l := utf8.RuneCountInString(reason); l < 10 || l > 500 {
		return &FieldError{Field: "reason", Reason: "must be 10-500 characters"}
	}

	rows, err := s.repo.SetCancellationRequest(ctx, id, requesterID, reason, time.Now())
	if err != nil {
		return err
	}
	if rows == 0 {
		return s.classifyRequestFailure(ctx, id, requesterID)
	}
	return nil
}

// RespondToCancellation approves or denies the pending request. Approval
// returns the offer to open and unbinds the taker; denial clears only the
// cancellation columns.
func (s *Service) RespondToCancellation(ctx context.Context, responderID int64, id string, approved bool) error {
	rows, err := s.repo.ResolveCancellation(ctx, id, responderID, approved)
	if err != nil {
		return err
	}
	if rows == 0 {
		return s.classifyRespondFailure(ctx, id, responderID)
	}
	return nil
}

// WithdrawCancellation lets the original requester retract the request.
func (s *Service) WithdrawCancellation(ctx context.Context, requesterID int64, id string) error {
	rows, err := s.repo.WithdrawCancellation(ctx, id, requesterID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return s.classifyWithdrawFailure(ctx, id, requesterID)
	}
	return nil
}

// Delete removes an offer. Hard-blocked while any conversation references it.
func (s *Service) Delete(ctx context.Context, userID int64, id string) error {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if o.PosterID != userID {
		return ErrNotPoster
	}
	count, err := s.conversations.CountForOffer(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrDeleteBlocked
	}
	if !o.DeletableBy(userID, count) {
		return ErrNotEditable
	}
	return s.repo.Delete(ctx, id)
}

// The conditional updates report only "zero rows"; these helpers re-read the
// offer to surface the precise precondition that failed.

func (s *Service) classifyRequestFailure(ctx context.Context, id string, requesterID int64) error {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if o.Status != StatusInProgress {
		return ErrNotInProgress
	}
	if !o.IsTaker(requesterID) {
		return ErrNotTaker
	}
	if o.HasPendingCancellation() {
		return ErrCancellationPending
	}
	return ErrConflict
}

func (s *Service) classifyRespondFailure(ctx context.Context, id string, responderID int64) error {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if o.PosterID != responderID {
		return ErrNotPoster
	}
	if !o.HasPendingCancellation() {
		return ErrNoPendingCancellation
	}
	return ErrConflict
}

func (s *Service) classifyWithdrawFailure(ctx context.Context, id string, requesterID int64) error {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !o.HasPendingCancellation() {
		return ErrNoPendingCancellation
	}
	if o.CancellationRequestedBy.Int64 != requesterID {
		return ErrNotRequester
	}
	return ErrConflict
}

func validateCreate(in CreateInput) error {
	if in.CategoryID == "" {
		return &FieldError{Field: "category_id", Reason: "is required"}
	}
	if in.Type != TypeHelpWanted && in.Type != TypeOfferingHelp {
		return &FieldError{Field: "type", Reason: "must be help_wanted or offering_help"}
	}
	if l := utf8.RuneCountInString(strings.TrimSpace(in.Title)); l < 1 || l > 200 {
		return &FieldError{Field: "title", Reason: "must be 1-200 characters"}
	}
	if l := utf8.RuneCountInString(in.Description); l < 1 || l > 2000 {
		return &FieldError{Field: "description", Reason: "must be 1-2000 characters"}
	}
	if in.Price < 0 || in.Price > maxPrice {
		return &FieldError{Field: "price", Reason: "must be between 0 and 99999.99"}
	}
	if utf8.RuneCountInString(in.Requirements) > 1000 {
		return &FieldError{Field: "requirements", Reason: "cannot exceed 1000 characters"}
	}
	if err := validateTags(in.Tags); err != nil {
		return err
	}
	return validateAttachments(in.Attachments, 5)
}

func validateTags(tags []string) error {
	if len(tags) > 10 {
		return &FieldError{Field: "tags", Reason: "maximum 10 tags allowed"}
	}
	for _, t := range tags {
		if l := utf8.RuneCountInString(t); l < 1 || l > 50 {
			return &FieldError{Field: "tags", Reason: "each tag must be 1-50 characters"}
		}
	}
	return nil
}

func validateAttachments(atts []Attachment, max int) error {
	if len(atts) > max {
		return &FieldError{Field: "attachments", Reason: "too many attachments"}
	}
	for _, a := range atts {
		if a.Filename == "" {
			return &FieldError{Field: "attachments", Reason: "filename is required"}
		}
		if a.URL == "" {
			return &FieldError{Field: "attachments", Reason: "url is required"}
		}
		if a.MimeType == "" {
			return &FieldError{Field: "attachments", Reason: "mime_type is required"}
		}
		if a.Size <= 0 {
			return &FieldError{Field: "attachments", Reason: "size must be positive"}
		}
	}
	return nil
}
