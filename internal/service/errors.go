package service

import "errors"

var (
	// ErrInvalidTransitID is returned when transit ID is empty.
	ErrInvalidTransitID = errors.New("invalid transit id")

	// ErrInvalidClientID is returned when client ID is empty.
	ErrInvalidClientID = errors.New("invalid client id")

	// ErrInvalidDriverID is returned when driver ID is empty.
	ErrInvalidDriverID = errors.New("invalid driver id")

	// ErrInvalidAddress is returned when a pickup or destination address is missing.
	ErrInvalidAddress = errors.New("invalid address")

	// ErrInvalidLookback is returned when a report window is outside the allowed range.
	ErrInvalidLookback = errors.New("invalid report lookback")

	// ErrTransitLocked is returned when another request is changing the same transit.
	ErrTransitLocked = errors.New("transit is being modified by another request")

	// ErrTransitConcluded is returned when completing or cancelling a transit that is
	// already completed or cancelled.
	ErrTransitConcluded = errors.New("transit already concluded")
)
