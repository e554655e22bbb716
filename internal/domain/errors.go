package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidState is returned when a transit's status forbids the requested operation.
	ErrInvalidState = errors.New("invalid state")

	// ErrInvalidInput is returned when a value object is built from malformed data.
	ErrInvalidInput = errors.New("invalid input")
)

var (
	// ErrEstimateConcludedTransit is returned when estimating a completed transit.
	ErrEstimateConcludedTransit = fmt.Errorf("%w: cannot estimate a price for a concluded ride", ErrInvalidState)

	// ErrEstimateCancelledTransit is returned when estimating a cancelled transit
	// and the calculator is configured to forbid it.
	ErrEstimateCancelledTransit = fmt.Errorf("%w: cannot estimate a price for a cancelled ride", ErrInvalidState)

	// ErrFinalCostCancelledTransit is returned when finalizing a cancelled transit.
	ErrFinalCostCancelledTransit = fmt.Errorf("%w: cannot calculate final cost for a cancelled ride", ErrInvalidState)
)

var (
	ErrNegativeDistance = fmt.Errorf("%w: distance must not be negative", ErrInvalidInput)
	ErrInvalidDistance  = fmt.Errorf("%w: distance must be a finite number", ErrInvalidInput)
	ErrDistanceTooLarge = fmt.Errorf("%w: distance exceeds %d km", ErrInvalidInput, MaxDistanceKm)
	ErrUnknownUnit      = fmt.Errorf("%w: unknown distance unit", ErrInvalidInput)
	ErrMissingDateTime  = fmt.Errorf("%w: transit date time is required", ErrInvalidInput)
	ErrUnknownStatus    = fmt.Errorf("%w: unknown transit status", ErrInvalidInput)
	ErrUnknownCarClass  = fmt.Errorf("%w: unknown car class", ErrInvalidInput)
)
