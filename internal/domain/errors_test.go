package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorClassifiers(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"not found", NotFound("show", id), IsNotFoundError},
		{"wrapped not found", fmt.Errorf("get show: %w", NotFound("show", id)), IsNotFoundError},
		{"seat unavailable", NewSeatUnavailableError([]uuid.UUID{id}), IsSeatUnavailableError},
		{"hold expired", fmt.Errorf("confirm: %w", ErrHoldExpired), IsHoldExpiredError},
		{"invalid state", InvalidState("booking is %s", "expired"), IsInvalidStateError},
		{"validation", Invalid("seat_ids", "must not be empty"), IsValidationError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.check(tt.err))
		})
	}
}

func TestSeatUnavailableError_ListsSeats(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	err := fmt.Errorf("hold: %w", NewSeatUnavailableError([]uuid.UUID{a, b}))

	var unavailable *SeatUnavailableError
	require.True(t, errors.As(err, &unavailable))
	assert.ElementsMatch(t, []uuid.UUID{a, b}, unavailable.SeatIDs)
	assert.Contains(t, err.Error(), a.String())
	assert.False(t, IsNotFoundError(err))
}

func TestValidationError_Message(t *testing.T) {
	err := NewValidationError(map[string]string{"ttl": "must be positive", "seat_ids": "required"})
	assert.Equal(t, "validation failed: seat_ids: required; ttl: must be positive", err.Error())
}
