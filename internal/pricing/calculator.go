// Package pricing computes transit fares from the transit's own distance,
// occurrence time and lifecycle status.
package pricing

import (
	"time"

	"cabs/internal/domain"
)

// Quote is a priced transit together with how the price was reached.
type Quote struct {
	Category Category
	Charge   Charge
	Total    domain.Money
}

// Calculator prices transits. It holds no mutable state and performs no I/O,
// so a single instance can be shared by all goroutines.
type Calculator struct {
	rates                  RateFunc
	location               *time.Location
	night                  NightWindow
	allowCancelledEstimate bool
}

// Option configures a Calculator.
type Option func(*Calculator)

// WithRates replaces the default tariff table.
func WithRates(rates RateFunc) Option {
	return func(c *Calculator) {
		c.rates = rates
	}
}

// WithLocation classifies transit times in loc instead of the location
// carried by each timestamp.
func WithLocation(loc *time.Location) Option {
	return func(c *Calculator) {
		c.location = loc
	}
}

// WithNightWindow overrides the Saturday night window.
func WithNightWindow(w NightWindow) Option {
	return func(c *Calculator) {
		c.night = w
	}
}

// WithCancelledEstimates controls whether a cancelled transit may be estimated.
func WithCancelledEstimates(allowed bool) Option {
	return func(c *Calculator) {
		c.allowCancelledEstimate = allowed
	}
}

// NewCalculator creates a Calculator using the default tariff table.
func NewCalculator(opts ...Option) *Calculator {
	c := &Calculator{
		rates:                  DefaultTariffTable(),
		night:                  DefaultNightWindow,
		allowCancelledEstimate: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// EstimateCost returns a preliminary price for a transit that has not concluded.
func (c *Calculator) EstimateCost(t domain.Transit) (domain.Money, error) {
	q, err := c.Estimate(t)
	if err != nil {
		return domain.Money{}, err
	}
	return q.Total, nil
}

// CalculateFinalCost returns the definitive price of a transit.
func (c *Calculator) CalculateFinalCost(t domain.Transit) (domain.Money, error) {
	q, err := c.Finalize(t)
	if err != nil {
		return domain.Money{}, err
	}
	return q.Total, nil
}

// Estimate is EstimateCost with the full quote.
func (c *Calculator) Estimate(t domain.Transit) (Quote, error) {
	switch {
	case t.Status == domain.TransitStatusCompleted:
		return Quote{}, domain.ErrEstimateConcludedTransit
	case t.Status == domain.TransitStatusCancelled && !c.allowCancelledEstimate:
		return Quote{}, domain.ErrEstimateCancelledTransit
	}
	return c.Quote(t)
}

// Finalize is CalculateFinalCost with the full quote.
func (c *Calculator) Finalize(t domain.Transit) (Quote, error) {
	if t.Status == domain.TransitStatusCancelled {
		return Quote{}, domain.ErrFinalCostCancelledTransit
	}
	return c.Quote(t)
}

// Quote prices a transit without checking its status.
func (c *Calculator) Quote(t domain.Transit) (Quote, error) {
	if t.DateTime.IsZero() {
		return Quote{}, domain.ErrMissingDateTime
	}

	category := c.Category(t.DateTime)
	charge, err := c.rates.Rate(category, t.Distance)
	if err != nil {
		return Quote{}, err
	}

	return Quote{
		Category: category,
		Charge:   charge,
		Total:    charge.Total(),
	}, nil
}

// Category classifies a moment using the calculator's location and night window.
func (c *Calculator) Category(at time.Time) Category {
	if c.location != nil {
		at = at.In(c.location)
	}
	return Classify(at, c.night)
}
