package repository

import (
	"context"
	"time"

	"cabs/internal/domain"
)

// TransitRepository defines the persistence operations for transits.
type TransitRepository interface {
	// Create persists a new transit.
	Create(ctx context.Context, transit *domain.Transit) error

	// GetByID retrieves a transit by ID.
	GetByID(ctx context.Context, id string) (*domain.Transit, error)

	// Update updates an existing transit.
	Update(ctx context.Context, transit *domain.Transit) error

	// ListByDriverBetween retrieves a driver's transits with from <= date_time <= to,
	// newest first.
	ListByDriverBetween(ctx context.Context, driverID string, from, to time.Time) ([]*domain.Transit, error)
}
