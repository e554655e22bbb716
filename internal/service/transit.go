package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cabs/internal/domain"
	"cabs/internal/pricing"
	"cabs/internal/redis"
	"cabs/internal/repository"
)

// transitLockTTL caps how long a crashed request can block a transit.
const transitLockTTL = 10 * time.Second

// TransitService handles transit pricing and the lifecycle changes pricing depends on.
type TransitService struct {
	transitRepo         repository.TransitRepository
	calculator          *pricing.Calculator
	transitCache        redis.TransitCacheInterface
	lockStore           redis.LockStoreInterface
	notificationService *NotificationService
	receiptService      *ReceiptService
	logger              *zap.Logger
}

// NewTransitService creates a new TransitService.
// transitCache, lockStore, notificationService and receiptService may be nil.
func NewTransitService(
	transitRepo repository.TransitRepository,
	calculator *pricing.Calculator,
	transitCache redis.TransitCacheInterface,
	lockStore redis.LockStoreInterface,
	notificationService *NotificationService,
	receiptService *ReceiptService,
	logger *zap.Logger,
) *TransitService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TransitService{
		transitRepo:         transitRepo,
		calculator:          calculator,
		transitCache:        transitCache,
		lockStore:           lockStore,
		notificationService: notificationService,
		receiptService:      receiptService,
		logger:              logger,
	}
}

// CreateTransitRequest contains the parameters for registering a transit.
type CreateTransitRequest struct {
	ClientID      string
	DriverID      string // optional
	FromAddressID string
	ToAddressID   string
	CarClass      string // optional, defaults to REGULAR
	DateTime      time.Time
	DistanceKm    float64
}

// CreateTransit registers a new transit in DRAFT.
func (s *TransitService) CreateTransit(ctx context.Context, req CreateTransitRequest) (*domain.Transit, error) {
	if req.ClientID == "" {
		return nil, ErrInvalidClientID
	}

	if req.FromAddressID == "" || req.ToAddressID == "" {
		return nil, ErrInvalidAddress
	}

	if req.DateTime.IsZero() {
		return nil, domain.ErrMissingDateTime
	}

	distance, err := domain.DistanceOfKm(req.DistanceKm)
	if err != nil {
		return nil, err
	}

	carClass, err := domain.ParseCarClass(req.CarClass)
	if err != nil {
		return nil, err
	}

	transit := &domain.Transit{
		ID:            uuid.New().String(),
		ClientID:      req.ClientID,
		DriverID:      req.DriverID,
		FromAddressID: req.FromAddressID,
		ToAddressID:   req.ToAddressID,
		CarClass:      carClass,
		Status:        domain.TransitStatusDraft,
		DateTime:      req.DateTime,
		Distance:      distance,
		CreatedAt:     time.Now(),
	}

	if err := s.transitRepo.Create(ctx, transit); err != nil {
		return nil, err
	}

	s.invalidateReports(ctx, transit.DriverID)

	s.logger.Info("transit created",
		zap.String("transit_id", transit.ID),
		zap.String("client_id", transit.ClientID),
		zap.Float64("distance_km", distance.Km()),
	)

	if s.notificationService != nil {
		_ = s.notificationService.NotifyTransitCreated(ctx, transit)
	}

	return transit, nil
}

// GetTransit retrieves a transit, serving from cache when possible.
func (s *TransitService) GetTransit(ctx context.Context, transitID string) (*domain.Transit, error) {
	if transitID == "" {
		return nil, ErrInvalidTransitID
	}

	if s.transitCache != nil {
		cached, err := s.transitCache.GetTransit(ctx, transitID)
		if err != nil {
			s.logger.Warn("transit cache read failed", zap.String("transit_id", transitID), zap.Error(err))
		} else if cached != nil {
			transit, err := fromCachedTransit(cached)
			if err == nil {
				return transit, nil
			}
			s.logger.Warn("discarding malformed cached transit", zap.String("transit_id", transitID), zap.Error(err))
		}
	}

	transit, err := s.transitRepo.GetByID(ctx, transitID)
	if err != nil {
		return nil, err
	}

	if s.transitCache != nil {
		if err := s.transitCache.SetTransit(ctx, toCachedTransit(transit)); err != nil {
			s.logger.Warn("transit cache write failed", zap.String("transit_id", transitID), zap.Error(err))
		}
	}

	return transit, nil
}

// EstimateResponse contains the result of estimating a transit.
type EstimateResponse struct {
	Transit *domain.Transit
	Quote   pricing.Quote
}

// EstimateCost computes a preliminary price and records it on the transit.
// Concluded transits that the pricing policy still estimates get a quote only,
// their stored record is left untouched.
func (s *TransitService) EstimateCost(ctx context.Context, transitID string) (*EstimateResponse, error) {
	if transitID == "" {
		return nil, ErrInvalidTransitID
	}

	var resp *EstimateResponse
	var persisted bool
	err := s.withTransitLock(ctx, transitID, func() error {
		transit, err := s.transitRepo.GetByID(ctx, transitID)
		if err != nil {
			return err
		}

		quote, err := s.calculator.Estimate(*transit)
		if err != nil {
			return err
		}

		resp = &EstimateResponse{Transit: transit, Quote: quote}
		if transit.Status.IsConcluded() {
			return nil
		}

		estimate := quote.Total
		transit.EstimatedPrice = &estimate

		if err := s.transitRepo.Update(ctx, transit); err != nil {
			return err
		}
		persisted = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if persisted {
		s.invalidate(ctx, resp.Transit)
	}

	s.logger.Info("transit estimated",
		zap.String("transit_id", transitID),
		zap.String("category", string(resp.Quote.Category)),
		zap.String("estimate", resp.Quote.Total.String()),
		zap.Bool("persisted", persisted),
	)

	if s.notificationService != nil {
		_ = s.notificationService.NotifyTransitEstimated(ctx, resp.Transit, resp.Quote.Total)
	}

	return resp, nil
}

// CalculateFinalCost returns the definitive price of a transit without changing it.
func (s *TransitService) CalculateFinalCost(ctx context.Context, transitID string) (*pricing.Quote, error) {
	transit, err := s.GetTransit(ctx, transitID)
	if err != nil {
		return nil, err
	}

	quote, err := s.calculator.Finalize(*transit)
	if err != nil {
		return nil, err
	}

	return &quote, nil
}

// CompleteTransitResponse contains the result of completing a transit.
type CompleteTransitResponse struct {
	Transit *domain.Transit
	Quote   pricing.Quote
	Receipt *domain.Receipt
}

// CompleteTransit marks a transit COMPLETED and fixes its final price.
func (s *TransitService) CompleteTransit(ctx context.Context, transitID string) (*CompleteTransitResponse, error) {
	if transitID == "" {
		return nil, ErrInvalidTransitID
	}

	var transit *domain.Transit
	var quote pricing.Quote
	err := s.withTransitLock(ctx, transitID, func() error {
		var err error
		transit, err = s.transitRepo.GetByID(ctx, transitID)
		if err != nil {
			return err
		}

		if transit.Status.IsConcluded() {
			return ErrTransitConcluded
		}

		transit.Status = domain.TransitStatusCompleted
		transit.CompletedAt = time.Now()

		quote, err = s.calculator.Finalize(*transit)
		if err != nil {
			return err
		}

		price := quote.Total
		transit.Price = &price

		return s.transitRepo.Update(ctx, transit)
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, transit)

	s.logger.Info("transit completed",
		zap.String("transit_id", transitID),
		zap.String("category", string(quote.Category)),
		zap.String("price", quote.Total.String()),
	)

	if s.notificationService != nil {
		_ = s.notificationService.NotifyTransitCompleted(ctx, transit, quote.Total)
	}

	var receipt *domain.Receipt
	if s.receiptService != nil {
		receipt, err = s.receiptService.GenerateReceipt(ctx, transit, quote)
		if err != nil {
			s.logger.Warn("receipt generation failed", zap.String("transit_id", transitID), zap.Error(err))
		}
	}

	return &CompleteTransitResponse{
		Transit: transit,
		Quote:   quote,
		Receipt: receipt,
	}, nil
}

// CancelTransitRequest contains the parameters for cancelling a transit.
type CancelTransitRequest struct {
	TransitID string
	Reason    string
}

// CancelTransit marks a transit CANCELLED. A cancelled transit has no final price.
func (s *TransitService) CancelTransit(ctx context.Context, req CancelTransitRequest) (*domain.Transit, error) {
	if req.TransitID == "" {
		return nil, ErrInvalidTransitID
	}

	var transit *domain.Transit
	err := s.withTransitLock(ctx, req.TransitID, func() error {
		var err error
		transit, err = s.transitRepo.GetByID(ctx, req.TransitID)
		if err != nil {
			return err
		}

		if transit.Status.IsConcluded() {
			return ErrTransitConcluded
		}

		transit.Status = domain.TransitStatusCancelled
		transit.CancelledAt = time.Now()
		transit.CancelReason = req.Reason
		transit.Price = nil

		return s.transitRepo.Update(ctx, transit)
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, transit)

	s.logger.Info("transit cancelled", zap.String("transit_id", req.TransitID), zap.String("reason", req.Reason))

	if s.notificationService != nil {
		_ = s.notificationService.NotifyTransitCancelled(ctx, transit)
	}

	return transit, nil
}

// withTransitLock runs fn while holding the transit's lock so pricing always
// sees a snapshot no other request is changing.
func (s *TransitService) withTransitLock(ctx context.Context, transitID string, fn func() error) error {
	if s.lockStore == nil {
		return fn()
	}

	token, acquired, err := s.lockStore.AcquireTransitLock(ctx, transitID, transitLockTTL)
	if err != nil {
		return err
	}
	if !acquired {
		return ErrTransitLocked
	}

	defer func() {
		if err := s.lockStore.ReleaseTransitLock(ctx, transitID, token); err != nil {
			s.logger.Warn("failed to release transit lock", zap.String("transit_id", transitID), zap.Error(err))
		}
	}()

	return fn()
}

// invalidate drops the cached transit and every cached report of its driver.
func (s *TransitService) invalidate(ctx context.Context, transit *domain.Transit) {
	if s.transitCache == nil {
		return
	}
	if err := s.transitCache.InvalidateTransit(ctx, transit.ID); err != nil {
		s.logger.Warn("transit cache invalidation failed", zap.String("transit_id", transit.ID), zap.Error(err))
	}
	s.invalidateReports(ctx, transit.DriverID)
}

func (s *TransitService) invalidateReports(ctx context.Context, driverID string) {
	if s.transitCache == nil || driverID == "" {
		return
	}
	if err := s.transitCache.InvalidateDriverReports(ctx, driverID); err != nil {
		s.logger.Warn("driver report cache invalidation failed", zap.String("driver_id", driverID), zap.Error(err))
	}
}

func toCachedTransit(t *domain.Transit) *redis.CachedTransit {
	cached := &redis.CachedTransit{
		ID:            t.ID,
		ClientID:      t.ClientID,
		DriverID:      t.DriverID,
		FromAddressID: t.FromAddressID,
		ToAddressID:   t.ToAddressID,
		CarClass:      string(t.CarClass),
		Status:        string(t.Status),
		DateTime:      t.DateTime,
		DistanceKm:    t.Distance.Km(),
		CreatedAt:     t.CreatedAt,
		CompletedAt:   t.CompletedAt,
		CancelledAt:   t.CancelledAt,
		CancelReason:  t.CancelReason,
	}
	if t.EstimatedPrice != nil {
		cents := t.EstimatedPrice.Cents()
		cached.EstimatedPriceCents = &cents
	}
	if t.Price != nil {
		cents := t.Price.Cents()
		cached.PriceCents = &cents
	}
	return cached
}

func fromCachedTransit(c *redis.CachedTransit) (*domain.Transit, error) {
	status, err := domain.ParseTransitStatus(c.Status)
	if err != nil {
		return nil, err
	}
	carClass, err := domain.ParseCarClass(c.CarClass)
	if err != nil {
		return nil, err
	}
	distance, err := domain.DistanceOfKm(c.DistanceKm)
	if err != nil {
		return nil, err
	}

	transit := &domain.Transit{
		ID:            c.ID,
		ClientID:      c.ClientID,
		DriverID:      c.DriverID,
		FromAddressID: c.FromAddressID,
		ToAddressID:   c.ToAddressID,
		CarClass:      carClass,
		Status:        status,
		DateTime:      c.DateTime,
		Distance:      distance,
		CreatedAt:     c.CreatedAt,
		CompletedAt:   c.CompletedAt,
		CancelledAt:   c.CancelledAt,
		CancelReason:  c.CancelReason,
	}
	if c.EstimatedPriceCents != nil {
		m := domain.MoneyFrom(*c.EstimatedPriceCents)
		transit.EstimatedPrice = &m
	}
	if c.PriceCents != nil {
		m := domain.MoneyFrom(*c.PriceCents)
		transit.Price = &m
	}
	return transit, nil
}
