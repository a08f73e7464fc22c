package conversation

import "errors"

var (
	ErrNotFound          = errors.New("conversation not found")
	ErrNotParticipant    = errors.New("you are not a participant of this conversation")
	ErrCannotContactSelf = errors.New("cannot start a conversation on your own offer")
	ErrInactive          = errors.New("conversation is closed")
	ErrOfferCancelled    = errors.New("conversation is unavailable, offer was cancelled")
)
