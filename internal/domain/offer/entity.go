package offer

import (
	"database/sql"
	"encoding/json"
	"time"
)

// Type distinguishes requests for help from offers of help
type Type string

const (
	TypeHelpWanted   Type = "help_wanted"
	TypeOfferingHelp Type = "offering_help"
)

// Status is the offer lifecycle state
type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Attachment is file metadata attached to an offer. Files themselves live in
// external storage; only the descriptor is kept here.
type Attachment struct {
	ID         string `json:"id"`
	Filename   string `json:"filename"`
	URL        string `json:"url"`
	Type       string `json:"type"` // image, code, document, other
	MimeType   string `json:"mime_type"`
	Size       int64  `json:"size"`
	UploadedAt string `json:"uploaded_at"`
}

// Offer is a unit of work for exchange between a poster and a taker.
//
// taker_id is set exactly once per active lifecycle (when the poster accepts
// an interested user) and cleared again only by an approved cancellation.
// The three cancellation_* columns are always all-null or all-set, and may
// only be set while the offer is in_progress.
type Offer struct {
	ID          string         `gorm:"column:id;primaryKey" json:"id"`
	PosterID    int64          `gorm:"column:poster_id;index" json:"poster_id"`
	TakerID     sql.NullInt64  `gorm:"column:taker_id;index" json:"taker_id,omitempty"`
	CategoryID  string         `gorm:"column:category_id" json:"category_id"`
	Type        Type           `gorm:"column:type" json:"type"`
	Title       string         `gorm:"column:title" json:"title"`
	Description string         `gorm:"column:description" json:"description"`
	Price       float64        `gorm:"column:price" json:"price"`
	Deadline    sql.NullTime   `gorm:"column:deadline" json:"deadline,omitempty"`
	Requirements sql.NullString `gorm:"column:requirements" json:"requirements,omitempty"`

	Tags        json.RawMessage `gorm:"column:tags;type:jsonb" json:"tags,omitempty"`
	Attachments json.RawMessage `gorm:"column:attachments;type:jsonb" json:"attachments,omitempty"`

	Status      Status       `gorm:"column:status;index" json:"status"`
	CompletedAt sql.NullTime `gorm:"column:completed_at" json:"completed_at,omitempty"`

	CancellationRequestedBy sql.NullInt64  `gorm:"column:cancellation_requested_by" json:"cancellation_requested_by,omitempty"`
	CancellationReason      sql.NullString `gorm:"column:cancellation_reason" json:"cancellation_reason,omitempty"`
	CancellationRequestedAt sql.NullTime   `gorm:"column:cancellation_requested_at" json:"cancellation_requested_at,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Offer) TableName() string { return "offers" }

// HasPendingCancellation reports whether a cancellation request is open.
func (o *Offer) HasPendingCancellation() bool {
	return o.CancellationRequestedBy.Valid
}

// IsTaker reports whether userID is the offer's current taker.
func (o *Offer) IsTaker(userID int64) bool {
	return o.TakerID.Valid && o.TakerID.Int64 == userID
}

// SetTags encodes tags into the JSON column.
func (o *Offer) SetTags(tags []string) error {
	if len(tags) == 0 {
		o.Tags = nil
		return nil
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return err
	}
	o.Tags = b
	return nil
}

// GetTags decodes the tags column.
func (o *Offer) GetTags() []string {
	if len(o.Tags) == 0 {
		return nil
	}
	var tags []string
	_ = json.Unmarshal(o.Tags, &tags)
	return tags
}

// SetAttachments encodes attachment metadata into the JSON column.
func (o *Offer) SetAttachments(atts []Attachment) error {
	if len(atts) == 0 {
		o.Attachments = nil
		return nil
	}
	b, err := json.Marshal(atts)
	if err != nil {
		return err
	}
	o.Attachments = b
	return nil
}

// GetAttachments decodes the attachments column.
func (o *Offer) GetAttachments() []Attachment {
	if len(o.Attachments) == 0 {
		return nil
	}
	var atts []Attachment
	_ = json.Unmarshal(o.Attachments, &atts)
	return atts
}
