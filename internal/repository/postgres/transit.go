package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"cabs/internal/domain"
	"cabs/internal/repository"
)

// TransitRepository is a PostgreSQL implementation of repository.TransitRepository.
type TransitRepository struct {
	q Querier
}

// NewTransitRepository creates a new PostgreSQL transit repository.
func NewTransitRepository(db *sql.DB) *TransitRepository {
	return &TransitRepository{q: db}
}

var _ repository.TransitRepository = (*TransitRepository)(nil)

// date_time_offset keeps the UTC offset the ride was booked in. TIMESTAMPTZ only
// stores the instant, and pricing depends on the local calendar day and hour.
const transitColumns = `id, client_id, driver_id, from_address_id, to_address_id, car_class, status, date_time,
	distance_km, estimated_price_cents, price_cents, created_at, completed_at, cancelled_at, cancel_reason,
	date_time_offset`

// Create persists a new transit.
func (r *TransitRepository) Create(ctx context.Context, transit *domain.Transit) error {
	query := `
		INSERT INTO transits (` + transitColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err := r.q.ExecContext(ctx, query,
		transit.ID,
		transit.ClientID,
		nullString(transit.DriverID),
		transit.FromAddressID,
		transit.ToAddressID,
		transit.CarClass,
		transit.Status,
		transit.DateTime,
		transit.Distance.Km(),
		nullCents(transit.EstimatedPrice),
		nullCents(transit.Price),
		transit.CreatedAt,
		nullTime(transit.CompletedAt),
		nullTime(transit.CancelledAt),
		nullString(transit.CancelReason),
		zoneOffset(transit.DateTime),
	)

	return err
}

// GetByID retrieves a transit by ID.
func (r *TransitRepository) GetByID(ctx context.Context, id string) (*domain.Transit, error) {
	query := `SELECT ` + transitColumns + ` FROM transits WHERE id = $1`

	transit, err := scanTransit(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return transit, nil
}

// Update updates an existing transit.
func (r *TransitRepository) Update(ctx context.Context, transit *domain.Transit) error {
	query := `
		UPDATE transits
		SET client_id = $1, driver_id = $2, from_address_id = $3, to_address_id = $4, car_class = $5, status = $6,
			date_time = $7, distance_km = $8, estimated_price_cents = $9, price_cents = $10,
			completed_at = $11, cancelled_at = $12, cancel_reason = $13, date_time_offset = $14
		WHERE id = $15
	`

	result, err := r.q.ExecContext(ctx, query,
		transit.ClientID,
		nullString(transit.DriverID),
		transit.FromAddressID,
		transit.ToAddressID,
		transit.CarClass,
		transit.Status,
		transit.DateTime,
		transit.Distance.Km(),
		nullCents(transit.EstimatedPrice),
		nullCents(transit.Price),
		nullTime(transit.CompletedAt),
		nullTime(transit.CancelledAt),
		nullString(transit.CancelReason),
		zoneOffset(transit.DateTime),
		transit.ID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// ListByDriverBetween retrieves a driver's transits with from <= date_time <= to, newest first.
func (r *TransitRepository) ListByDriverBetween(ctx context.Context, driverID string, from, to time.Time) ([]*domain.Transit, error) {
	query := `
		SELECT ` + transitColumns + `
		FROM transits
		WHERE driver_id = $1 AND date_time >= $2 AND date_time <= $3
		ORDER BY date_time DESC
	`

	rows, err := r.q.QueryContext(ctx, query, driverID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transits []*domain.Transit
	for rows.Next() {
		transit, err := scanTransit(rows)
		if err != nil {
			return nil, err
		}
		transits = append(transits, transit)
	}
	return transits, rows.Err()
}

func scanTransit(row rowScanner) (*domain.Transit, error) {
	var transit domain.Transit
	var driverID, cancelReason sql.NullString
	var carClass, status string
	var distanceKm float64
	var estimatedPrice, price sql.NullInt64
	var completedAt, cancelledAt sql.NullTime
	var offset int

	if err := row.Scan(
		&transit.ID,
		&transit.ClientID,
		&driverID,
		&transit.FromAddressID,
		&transit.ToAddressID,
		&carClass,
		&status,
		&transit.DateTime,
		&distanceKm,
		&estimatedPrice,
		&price,
		&transit.CreatedAt,
		&completedAt,
		&cancelledAt,
		&cancelReason,
		&offset,
	); err != nil {
		return nil, err
	}

	var err error
	if transit.Status, err = domain.ParseTransitStatus(status); err != nil {
		return nil, fmt.Errorf("transit %s: %w", transit.ID, err)
	}
	if transit.CarClass, err = domain.ParseCarClass(carClass); err != nil {
		return nil, fmt.Errorf("transit %s: %w", transit.ID, err)
	}
	if transit.Distance, err = domain.DistanceOfKm(distanceKm); err != nil {
		return nil, fmt.Errorf("transit %s: %w", transit.ID, err)
	}

	transit.DateTime = transit.DateTime.In(offsetZone(offset))
	transit.DriverID = driverID.String
	transit.CancelReason = cancelReason.String
	if estimatedPrice.Valid {
		m := domain.MoneyFrom(estimatedPrice.Int64)
		transit.EstimatedPrice = &m
	}
	if price.Valid {
		m := domain.MoneyFrom(price.Int64)
		transit.Price = &m
	}
	if completedAt.Valid {
		transit.CompletedAt = completedAt.Time
	}
	if cancelledAt.Valid {
		transit.CancelledAt = cancelledAt.Time
	}

	return &transit, nil
}

func zoneOffset(t time.Time) int {
	_, offset := t.Zone()
	return offset
}

func offsetZone(offset int) *time.Location {
	if offset == 0 {
		return time.UTC
	}
	return time.FixedZone("", offset)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

func nullCents(m *domain.Money) sql.NullInt64 {
	if m == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: m.Cents(), Valid: true}
}
