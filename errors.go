package onyx

import "errors"

var (
	// ErrLastStrategy is returned when deleting the only remaining strategy.
	ErrLastStrategy = errors.New("cannot delete the last strategy")
	// ErrUnknownStrategy is returned when a strategy id does not resolve.
	ErrUnknownStrategy = errors.New("unknown strategy")
	// ErrInvalidPosition is returned when a position has a non positive entry
	// price or quantity.
	ErrInvalidPosition = errors.New("invalid position")
	// ErrInvalidPrice is returned for a non positive price.
	ErrInvalidPrice = errors.New("invalid price")
	// ErrNotFound is returned by a Store for a slot that was never saved.
	ErrNotFound = errors.New("slot not found")
	// ErrInvariant is returned when the ledger state is inconsistent.
	ErrInvariant = errors.New("ledger invariant violated")
)
