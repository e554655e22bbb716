package domain

import (
	"fmt"
	"math"
)

const kmPerMile = 1.609344

// MaxDistanceKm bounds a single transit. Whole meters times any per-km rate
// in cents must stay within int64.
const MaxDistanceKm = 100_000

// Distance is a non-negative length in kilometers.
type Distance struct {
	km float64
}

// DistanceOfKm creates a Distance, rejecting negative, non-finite and
// implausibly long values.
func DistanceOfKm(km float64) (Distance, error) {
	if math.IsNaN(km) || math.IsInf(km, 0) {
		return Distance{}, ErrInvalidDistance
	}
	if km < 0 {
		return Distance{}, ErrNegativeDistance
	}
	if km > MaxDistanceKm {
		return Distance{}, ErrDistanceTooLarge
	}
	return Distance{km: km}, nil
}

// Km returns the distance in kilometers.
func (d Distance) Km() float64 {
	return d.km
}

// Meters returns the distance rounded to whole meters.
func (d Distance) Meters() int64 {
	return int64(math.Round(d.km * 1000))
}

// PrintIn renders the distance in "km", "m" or "miles".
// Whole values print without decimals, others with three.
func (d Distance) PrintIn(unit string) (string, error) {
	switch unit {
	case "km":
		return formatLength(d.km, "km"), nil
	case "m":
		return fmt.Sprintf("%dm", d.Meters()), nil
	case "miles":
		return formatLength(d.km/kmPerMile, "miles"), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownUnit, unit)
	}
}

func formatLength(v float64, unit string) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f%s", v, unit)
	}
	return fmt.Sprintf("%.3f%s", v, unit)
}
