package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTransitStatus(t *testing.T) {
	status, err := ParseTransitStatus("COMPLETED")
	require.NoError(t, err)
	assert.Equal(t, TransitStatusCompleted, status)

	_, err = ParseTransitStatus("completed")
	assert.ErrorIs(t, err, ErrUnknownStatus)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestTransitStatus_IsConcluded(t *testing.T) {
	assert.True(t, TransitStatusCompleted.IsConcluded())
	assert.True(t, TransitStatusCancelled.IsConcluded())
	assert.False(t, TransitStatusDraft.IsConcluded())
	assert.False(t, TransitStatusInTransit.IsConcluded())
}

func TestParseCarClass(t *testing.T) {
	class, err := ParseCarClass("")
	require.NoError(t, err)
	assert.Equal(t, CarClassRegular, class)

	class, err = ParseCarClass("VAN")
	require.NoError(t, err)
	assert.Equal(t, CarClassVan, class)

	_, err = ParseCarClass("TANK")
	assert.ErrorIs(t, err, ErrUnknownCarClass)
}

func TestGuardErrorsAreInvalidState(t *testing.T) {
	assert.ErrorIs(t, ErrEstimateConcludedTransit, ErrInvalidState)
	assert.ErrorIs(t, ErrEstimateCancelledTransit, ErrInvalidState)
	assert.ErrorIs(t, ErrFinalCostCancelledTransit, ErrInvalidState)
	assert.NotErrorIs(t, ErrFinalCostCancelledTransit, ErrInvalidInput)
}
