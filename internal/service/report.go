package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"cabs/internal/domain"
	"cabs/internal/pricing"
	"cabs/internal/redis"
	"cabs/internal/repository"
)

const (
	// DefaultReportDays is the lookback used when a report request names none.
	DefaultReportDays = 1
	// MaxReportDays bounds the lookback of a single report.
	MaxReportDays = 365
)

// DriverReportEntry is one transit line of a driver report.
type DriverReportEntry struct {
	TransitID string
	Status    domain.TransitStatus
	Category  pricing.Category
	DateTime  time.Time
	Distance  domain.Distance
	// Price is the final price of a completed transit, otherwise the last estimate.
	Price *domain.Money
}

// DriverReport lists a driver's recent transits and their earnings.
type DriverReport struct {
	DriverID       string
	LastDays       int
	From           time.Time
	To             time.Time
	Transits       []DriverReportEntry
	CompletedCount int
	TotalEarnings  domain.Money
}

// DriverReportService builds driver reports.
type DriverReportService struct {
	transitRepo repository.TransitRepository
	calculator  *pricing.Calculator
	reportCache redis.ReportCacheInterface
	cacheTTL    time.Duration
	logger      *zap.Logger
	now         func() time.Time
}

// NewDriverReportService creates a new DriverReportService.
// A nil reportCache or a zero cacheTTL disables caching.
func NewDriverReportService(
	transitRepo repository.TransitRepository,
	calculator *pricing.Calculator,
	reportCache redis.ReportCacheInterface,
	cacheTTL time.Duration,
	logger *zap.Logger,
) *DriverReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DriverReportService{
		transitRepo: transitRepo,
		calculator:  calculator,
		reportCache: reportCache,
		cacheTTL:    cacheTTL,
		logger:      logger,
		now:         time.Now,
	}
}

// CreateReport returns the transits the driver made in the last lastDays days.
// Transits dated in the future are not part of the window.
// A lastDays of zero uses DefaultReportDays.
func (s *DriverReportService) CreateReport(ctx context.Context, driverID string, lastDays int) (*DriverReport, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}
	if lastDays == 0 {
		lastDays = DefaultReportDays
	}
	if lastDays < 0 || lastDays > MaxReportDays {
		return nil, ErrInvalidLookback
	}

	if s.cachingEnabled() {
		cached, err := s.reportCache.GetDriverReport(ctx, driverID, lastDays)
		if err != nil {
			s.logger.Warn("driver report cache read failed", zap.String("driver_id", driverID), zap.Error(err))
		} else if cached != nil && s.now().Sub(cached.To) < s.cacheTTL {
			report, err := fromCachedReport(cached)
			if err == nil {
				return report, nil
			}
			s.logger.Warn("discarding malformed cached report", zap.String("driver_id", driverID), zap.Error(err))
		}
	}

	to := s.now()
	from := to.AddDate(0, 0, -lastDays)

	transits, err := s.transitRepo.ListByDriverBetween(ctx, driverID, from, to)
	if err != nil {
		return nil, err
	}

	report := &DriverReport{
		DriverID: driverID,
		LastDays: lastDays,
		From:     from,
		To:       to,
		Transits: make([]DriverReportEntry, 0, len(transits)),
	}

	for _, t := range transits {
		entry := DriverReportEntry{
			TransitID: t.ID,
			Status:    t.Status,
			Category:  s.calculator.Category(t.DateTime),
			DateTime:  t.DateTime,
			Distance:  t.Distance,
			Price:     t.EstimatedPrice,
		}
		if t.Status == domain.TransitStatusCompleted && t.Price != nil {
			entry.Price = t.Price
			report.CompletedCount++
			report.TotalEarnings = report.TotalEarnings.Add(*t.Price)
		}
		report.Transits = append(report.Transits, entry)
	}

	s.logger.Info("driver report created",
		zap.String("driver_id", driverID),
		zap.Int("last_days", lastDays),
		zap.Int("transits", len(report.Transits)),
		zap.String("earnings", report.TotalEarnings.String()),
	)

	if s.cachingEnabled() {
		if err := s.reportCache.SetDriverReport(ctx, toCachedReport(report), s.cacheTTL); err != nil {
			s.logger.Warn("driver report cache write failed", zap.String("driver_id", driverID), zap.Error(err))
		}
	}

	return report, nil
}

func (s *DriverReportService) cachingEnabled() bool {
	return s.reportCache != nil && s.cacheTTL > 0
}

func toCachedReport(r *DriverReport) *redis.CachedDriverReport {
	cached := &redis.CachedDriverReport{
		DriverID:       r.DriverID,
		LastDays:       r.LastDays,
		From:           r.From,
		To:             r.To,
		Entries:        make([]redis.CachedReportEntry, 0, len(r.Transits)),
		CompletedCount: r.CompletedCount,
		TotalCents:     r.TotalEarnings.Cents(),
	}
	for _, e := range r.Transits {
		ce := redis.CachedReportEntry{
			TransitID:  e.TransitID,
			Status:     string(e.Status),
			Category:   string(e.Category),
			DateTime:   e.DateTime,
			DistanceKm: e.Distance.Km(),
		}
		if e.Price != nil {
			cents := e.Price.Cents()
			ce.PriceCents = &cents
		}
		cached.Entries = append(cached.Entries, ce)
	}
	return cached
}

func fromCachedReport(c *redis.CachedDriverReport) (*DriverReport, error) {
	report := &DriverReport{
		DriverID:       c.DriverID,
		LastDays:       c.LastDays,
		From:           c.From,
		To:             c.To,
		Transits:       make([]DriverReportEntry, 0, len(c.Entries)),
		CompletedCount: c.CompletedCount,
		TotalEarnings:  domain.MoneyFrom(c.TotalCents),
	}
	for _, ce := range c.Entries {
		status, err := domain.ParseTransitStatus(ce.Status)
		if err != nil {
			return nil, err
		}
		distance, err := domain.DistanceOfKm(ce.DistanceKm)
		if err != nil {
			return nil, err
		}
		entry := DriverReportEntry{
			TransitID: ce.TransitID,
			Status:    status,
			Category:  pricing.Category(ce.Category),
			DateTime:  ce.DateTime,
			Distance:  distance,
		}
		if ce.PriceCents != nil {
			m := domain.MoneyFrom(*ce.PriceCents)
			entry.Price = &m
		}
		report.Transits = append(report.Transits, entry)
	}
	return report, nil
}
