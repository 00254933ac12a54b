package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Domain errors
var (
	ErrNotFound        = errors.New("not found")
	ErrSeatUnavailable = errors.New("seat unavailable")
	ErrHoldExpired     = errors.New("hold expired")
	ErrInvalidState    = errors.New("invalid state")
	ErrValidation      = errors.New("validation failed")
)

// NotFound wraps ErrNotFound with the kind and id of the missing row.
func NotFound(kind string, id uuid.UUID) error {
	return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
}

// InvalidState wraps ErrInvalidState with a reason.
func InvalidState(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInvalidState)
}

// SeatUnavailableError lists the show seats that could not be held.
type SeatUnavailableError struct {
	SeatIDs []uuid.UUID
}

func NewSeatUnavailableError(ids []uuid.UUID) *SeatUnavailableError {
	sorted := append([]uuid.UUID(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].String() < sorted[j].String() })
	return &SeatUnavailableError{SeatIDs: sorted}
}

func (e *SeatUnavailableError) Error() string {
	ids := make([]string, len(e.SeatIDs))
	for i, id := range e.SeatIDs {
		ids[i] = id.String()
	}
	return fmt.Sprintf("seat unavailable: %s", strings.Join(ids, ", "))
}

func (e *SeatUnavailableError) Is(target error) bool {
	return target == ErrSeatUnavailable
}

// ValidationError carries per-field messages, same shape as utils.ValidateStruct.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(fields map[string]string) *ValidationError {
	return &ValidationError{Fields: fields}
}

// Invalid builds a ValidationError for a single field.
func Invalid(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msgs := make([]string, len(keys))
	for i, k := range keys {
		msgs[i] = fmt.Sprintf("%s: %s", k, e.Fields[k])
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsSeatUnavailableError(err error) bool {
	return errors.Is(err, ErrSeatUnavailable)
}

func IsHoldExpiredError(err error) bool {
	return errors.Is(err, ErrHoldExpired)
}

func IsInvalidStateError(err error) bool {
	return errors.Is(err, ErrInvalidState)
}

func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}
