package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistanceOfKm_RejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		km   float64
		want error
	}{
		{"negative", -0.5, ErrNegativeDistance},
		{"nan", math.NaN(), ErrInvalidDistance},
		{"infinite", math.Inf(1), ErrInvalidDistance},
		{"beyond any ride", MaxDistanceKm + 0.001, ErrDistanceTooLarge},
		{"int64 overflow", 1e16, ErrDistanceTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DistanceOfKm(tt.km)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestDistanceOfKm_UpperBoundPricesExactly(t *testing.T) {
	d, err := DistanceOfKm(MaxDistanceKm)
	require.NoError(t, err)
	assert.Equal(t, int64(MaxDistanceKm*1000), d.Meters())
	assert.Equal(t, "350000.00", MoneyFrom(350).Scale(d.Meters(), 1000).String())
}

func TestDistanceOfKm_AcceptsZero(t *testing.T) {
	d, err := DistanceOfKm(0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), d.Meters())
}

func TestDistance_Meters(t *testing.T) {
	d, err := DistanceOfKm(12.3456)
	require.NoError(t, err)

	assert.Equal(t, 12.3456, d.Km())
	assert.Equal(t, int64(12346), d.Meters())
}

func TestDistance_PrintIn(t *testing.T) {
	tests := []struct {
		name string
		km   float64
		unit string
		want string
	}{
		{"whole km", 20, "km", "20km"},
		{"fractional km", 2.5, "km", "2.500km"},
		{"meters", 2.5, "m", "2500m"},
		{"miles", 1.609344, "miles", "1miles"},
		{"fractional miles", 10, "miles", "6.214miles"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := DistanceOfKm(tt.km)
			require.NoError(t, err)

			got, err := d.PrintIn(tt.unit)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDistance_PrintInUnknownUnit(t *testing.T) {
	d, err := DistanceOfKm(1)
	require.NoError(t, err)

	_, err = d.PrintIn("parsecs")
	assert.ErrorIs(t, err, ErrUnknownUnit)
}
