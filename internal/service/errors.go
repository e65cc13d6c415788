package service

import "errors"

var (
	// ErrInvalidTransition is returned when a booking status or payment
	// status change is not legal from the current state. The stored record
	// is left untouched.
	ErrInvalidTransition = errors.New("invalid booking transition")

	// ErrInvalidDiscount is returned when discount parameters are out of
	// bounds. Rejected before any write.
	ErrInvalidDiscount = errors.New("invalid discount")

	// ErrInvalidRoomState is returned when a turnover action is attempted
	// from a room state that does not permit it.
	ErrInvalidRoomState = errors.New("invalid room state")

	// ErrInvalidEntry is returned when a manual ledger entry fails
	// validation.
	ErrInvalidEntry = errors.New("invalid ledger entry")

	// ErrInvalidPeriod is returned for an unknown revenue period name.
	ErrInvalidPeriod = errors.New("invalid period")
)
