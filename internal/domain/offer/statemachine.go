package offer

// The lifecycle legality checks live here, in one place, so handlers and the
// negotiation protocol share the exact same rules.
//
//	open → in_progress → {completed, cancelled}
//	cancelled → open            (poster reopen)
//	in_progress → open          (approved cancellation, clears taker)

// EditableBy reports whether userID may edit the offer's descriptive fields.
// Editing is allowed only before any commitment exists.
func (o *Offer) EditableBy(userID int64) bool {
	return o.PosterID == userID && o.Status == StatusOpen && !o.TakerID.Valid
}

// DeletableBy reports whether userID may delete the offer. Deletion of an
// offer with any conversation is blocked outright; conversations are never
// cleaned up automatically.
func (o *Offer) DeletableBy(userID int64, conversationCount int64) bool {
	return o.PosterID == userID && o.Status == StatusOpen && conversationCount == 0
}

// CancellableBy reports whether userID may cancel the offer directly through
// a status update (as opposed to the negotiation protocol).
func (o *Offer) CancellableBy(userID int64) bool {
	return o.PosterID == userID && (o.Status == StatusOpen || o.Status == StatusInProgress)
}

// ReopenableBy reports whether userID may move the offer back to open.
func (o *Offer) ReopenableBy(userID int64) bool {
	return o.PosterID == userID && o.Status == StatusCancelled
}

// CompletableBy reports whether userID may mark the offer completed.
func (o *Offer) CompletableBy(userID int64) bool {
	return o.PosterID == userID && o.Status == StatusInProgress
}

// CanRequestCancellation reports whether userID may open a cancellation
// request: only the current taker, only while in_progress, and only when no
// request is already pending.
func (o *Offer) CanRequestCancellation(userID int64) bool {
	return o.IsTaker(userID) && o.Status == StatusInProgress && !o.HasPendingCancellation()
}

// CanWithdrawCancellation reports whether userID may withdraw the pending
// cancellation request.
func (o *Offer) CanWithdrawCancellation(userID int64) bool {
	return o.HasPendingCancellation() && o.CancellationRequestedBy.Int64 == userID
}

// CanRespondToCancellation reports whether userID may approve or deny the
// pending cancellation request.
func (o *Offer) CanRespondToCancellation(userID int64) bool {
	return o.PosterID == userID && o.HasPendingCancellation() &&
		o.CancellationRequestedBy.Int64 != userID
}
