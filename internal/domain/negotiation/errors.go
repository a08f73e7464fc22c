package negotiation

import "errors"

var (
	ErrOfferNotOpen = errors.New("offer is not open")
	ErrNotPoster    = errors.New("only the poster can respond to an offer")
)
