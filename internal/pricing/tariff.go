package pricing

import (
	"fmt"

	"cabs/internal/domain"
)

// Charge is the result of applying a rate function to one transit.
type Charge struct {
	BaseFee     domain.Money
	DistanceFee domain.Money
}

// Total returns the full amount of the charge.
func (c Charge) Total() domain.Money {
	return c.BaseFee.Add(c.DistanceFee)
}

// RateFunc turns a category and a distance into a charge.
// Implementations must be pure and safe for concurrent use.
type RateFunc interface {
	Rate(category Category, distance domain.Distance) (Charge, error)
}

// Tariff is a flat base fee plus a per-kilometer rate.
type Tariff struct {
	KmRate  domain.Money
	BaseFee domain.Money
}

// Charge applies the tariff. The distance part is computed on whole meters
// and rounded half away from zero to cents.
func (t Tariff) Charge(distance domain.Distance) Charge {
	return Charge{
		BaseFee:     t.BaseFee,
		DistanceFee: t.KmRate.Scale(distance.Meters(), 1000),
	}
}

// TariffTable is a RateFunc with one linear tariff per category.
type TariffTable map[Category]Tariff

// DefaultTariffTable returns the tariffs currently charged.
func DefaultTariffTable() TariffTable {
	return TariffTable{
		CategoryRegular:       {KmRate: domain.MoneyFrom(100), BaseFee: domain.MoneyFrom(900)},
		CategoryWeekendDay:    {KmRate: domain.MoneyFrom(150), BaseFee: domain.MoneyFrom(800)},
		CategorySaturdayNight: {KmRate: domain.MoneyFrom(250), BaseFee: domain.MoneyFrom(1000)},
		CategoryNewYearsEve:   {KmRate: domain.MoneyFrom(350), BaseFee: domain.MoneyFrom(1100)},
	}
}

// Rate implements RateFunc.
func (tt TariffTable) Rate(category Category, distance domain.Distance) (Charge, error) {
	tariff, ok := tt[category]
	if !ok {
		return Charge{}, fmt.Errorf("pricing: no tariff for category %s", category)
	}
	return tariff.Charge(distance), nil
}
