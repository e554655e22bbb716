package domain

import (
	"fmt"
	"time"
)

// TransitStatus represents the lifecycle state of a transit.
type TransitStatus string

const (
	TransitStatusDraft                      TransitStatus = "DRAFT"
	TransitStatusCancelled                  TransitStatus = "CANCELLED"
	TransitStatusWaitingForDriverAssignment TransitStatus = "WAITING_FOR_DRIVER_ASSIGNMENT"
	TransitStatusDriverAssignmentFailed     TransitStatus = "DRIVER_ASSIGNMENT_FAILED"
	TransitStatusTransitToPassenger         TransitStatus = "TRANSIT_TO_PASSENGER"
	TransitStatusInTransit                  TransitStatus = "IN_TRANSIT"
	TransitStatusCompleted                  TransitStatus = "COMPLETED"
)

// ParseTransitStatus converts a stored or user-supplied status.
func ParseTransitStatus(s string) (TransitStatus, error) {
	switch status := TransitStatus(s); status {
	case TransitStatusDraft, TransitStatusCancelled, TransitStatusWaitingForDriverAssignment,
		TransitStatusDriverAssignmentFailed, TransitStatusTransitToPassenger,
		TransitStatusInTransit, TransitStatusCompleted:
		return status, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
	}
}

// IsConcluded reports whether no further lifecycle change is possible.
func (s TransitStatus) IsConcluded() bool {
	return s == TransitStatusCompleted || s == TransitStatusCancelled
}

// CarClass is the vehicle class ordered for a transit.
type CarClass string

const (
	CarClassEco     CarClass = "ECO"
	CarClassRegular CarClass = "REGULAR"
	CarClassVan     CarClass = "VAN"
	CarClassPremium CarClass = "PREMIUM"
)

// ParseCarClass converts a car class, defaulting an empty value to REGULAR.
func ParseCarClass(s string) (CarClass, error) {
	switch class := CarClass(s); class {
	case "":
		return CarClassRegular, nil
	case CarClassEco, CarClassRegular, CarClassVan, CarClassPremium:
		return class, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownCarClass, s)
	}
}

// Transit is a single taxi ride record.
type Transit struct {
	ID            string
	ClientID      string
	DriverID      string // empty until a driver is known
	FromAddressID string
	ToAddressID   string
	CarClass      CarClass
	Status        TransitStatus
	DateTime      time.Time // when the ride occurred; drives calendar pricing
	Distance      Distance
	// EstimatedPrice is set by the last estimate, Price once the transit is completed.
	EstimatedPrice *Money
	Price          *Money
	CreatedAt      time.Time
	CompletedAt    time.Time
	CancelledAt    time.Time
	CancelReason   string
}

// Receipt summarises the final charge for a completed transit.
type Receipt struct {
	ID          string
	TransitID   string
	ClientID    string
	DriverID    string
	CarClass    CarClass
	Category    string
	Distance    Distance
	BaseFee     Money
	DistanceFee Money
	Total       Money
	DateTime    time.Time
	CompletedAt time.Time
	CreatedAt   time.Time
}
