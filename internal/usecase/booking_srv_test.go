package usecase

import (
	"context"
	"errors"
	"testing"

	"cinema-reservation/internal/data/entity"
	"cinema-reservation/internal/domain"
	"cinema-reservation/internal/dto/request"
	"cinema-reservation/internal/reservation"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBooking_HoldConfirmAndConflict(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	showID := env.schedule(t, showStart, 10)
	ids := env.seatIDs(t, showID)
	user := uuid.NewString()

	booking, err := env.svc.Booking.CreateBooking(ctx, user, &request.CreateBookingRequest{
		ShowID:  showID,
		SeatIDs: []string{ids["A1"], ids["A2"]},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.BookingStatusPending, booking.Status)
	assert.Equal(t, 2, booking.NumberOfSeats)
	assert.Equal(t, 25.0, booking.TotalAmount)
	require.Len(t, booking.Seats, 2)
	assert.Equal(t, 10.0, booking.Seats[0].Price)
	assert.Equal(t, 15.0, booking.Seats[1].Price)

	confirmed, err := env.svc.Booking.ConfirmBooking(ctx, user, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.BookingStatusConfirmed, confirmed.Status)

	_, err = env.svc.Booking.CreateBooking(ctx, uuid.NewString(), &request.CreateBookingRequest{
		ShowID:  showID,
		SeatIDs: []string{ids["A1"]},
	})
	require.Error(t, err)
	var unavailable *domain.SeatUnavailableError
	require.True(t, errors.As(err, &unavailable))
	assert.Equal(t, []uuid.UUID{uuid.MustParse(ids["A1"])}, unavailable.SeatIDs)
}

func TestBooking_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	showID := env.schedule(t, showStart, 10)
	ids := env.seatIDs(t, showID)

	tests := []struct {
		name   string
		userID string
		req    request.CreateBookingRequest
	}{
		{"no seats", uuid.NewString(), request.CreateBookingRequest{ShowID: showID}},
		{"duplicate seats", uuid.NewString(), request.CreateBookingRequest{ShowID: showID, SeatIDs: []string{ids["A1"], ids["A1"]}}},
		{"malformed seat id", uuid.NewString(), request.CreateBookingRequest{ShowID: showID, SeatIDs: []string{"A1"}}},
		{"negative ttl", uuid.NewString(), request.CreateBookingRequest{ShowID: showID, SeatIDs: []string{ids["A1"]}, TTLSeconds: -5}},
		{"ttl above max", uuid.NewString(), request.CreateBookingRequest{ShowID: showID, SeatIDs: []string{ids["A1"]}, TTLSeconds: 3600}},
		{"bad user", "someone", request.CreateBookingRequest{ShowID: showID, SeatIDs: []string{ids["A1"]}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.Booking.CreateBooking(ctx, tt.userID, &tt.req)
			require.Error(t, err)
			assert.True(t, domain.IsValidationError(err), "unexpected error: %v", err)
		})
	}

	available, err := env.svc.Ledger.AvailableSeats(ctx, showID)
	require.NoError(t, err)
	assert.Len(t, available, 3)
}

func TestBooking_OtherUsersBookingsAreHidden(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	showID := env.schedule(t, showStart, 10)
	ids := env.seatIDs(t, showID)
	owner := uuid.NewString()

	booking, err := env.svc.Booking.CreateBooking(ctx, owner, &request.CreateBookingRequest{
		ShowID:  showID,
		SeatIDs: []string{ids["A3"]},
	})
	require.NoError(t, err)

	stranger := uuid.NewString()
	_, err = env.svc.Booking.GetBooking(ctx, stranger, booking.ID)
	assert.True(t, domain.IsNotFoundError(err))
	_, err = env.svc.Booking.CancelBooking(ctx, stranger, booking.ID)
	assert.True(t, domain.IsNotFoundError(err))
	_, err = env.svc.Booking.ConfirmBooking(ctx, stranger, booking.ID)
	assert.True(t, domain.IsNotFoundError(err))

	detail, err := env.svc.Booking.GetBooking(ctx, owner, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, "Perfect Days", detail.ShowDetails.MovieTitle)
	assert.Equal(t, "Studio 1", detail.ShowDetails.HallName)
	assert.Equal(t, entity.BookingStatusPending, detail.Status)
}

func TestBooking_ListBookingsForUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	showID := env.schedule(t, showStart, 10)
	ids := env.seatIDs(t, showID)
	user := uuid.NewString()

	for _, num := range []string{"A1", "A2", "A3"} {
		_, err := env.svc.Booking.CreateBooking(ctx, user, &request.CreateBookingRequest{
			ShowID:  showID,
			SeatIDs: []string{ids[num]},
		})
		require.NoError(t, err)
	}

	page, err := env.svc.Booking.ListBookingsForUser(ctx, user, &request.PaginatedRequest{Page: 1, PerPage: 2})
	require.NoError(t, err)
	assert.Len(t, page.Data, 2)
	assert.Equal(t, int64(3), page.Pagination.Total)
	assert.Equal(t, 2, page.Pagination.TotalPages)

	page, err = env.svc.Booking.ListBookingsForUser(ctx, user, &request.PaginatedRequest{Page: 2, PerPage: 2})
	require.NoError(t, err)
	assert.Len(t, page.Data, 1)

	empty, err := env.svc.Booking.ListBookingsForUser(ctx, uuid.NewString(), &request.PaginatedRequest{Page: 1, PerPage: 10})
	require.NoError(t, err)
	assert.Empty(t, empty.Data)
}

type fakeReserver struct {
	HoldFunc    func(ctx context.Context, req reservation.HoldRequest) (*reservation.Reservation, error)
	ConfirmFunc func(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error)
	CancelFunc  func(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error)
}

func (f *fakeReserver) Hold(ctx context.Context, req reservation.HoldRequest) (*reservation.Reservation, error) {
	return f.HoldFunc(ctx, req)
}

func (f *fakeReserver) Confirm(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	return f.ConfirmFunc(ctx, id)
}

func (f *fakeReserver) Cancel(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	return f.CancelFunc(ctx, id)
}

func TestBooking_CreateBookingPassesTTL(t *testing.T) {
	env := newTestEnv(t)
	var got reservation.HoldRequest
	fake := &fakeReserver{
		HoldFunc: func(_ context.Context, req reservation.HoldRequest) (*reservation.Reservation, error) {
			got = req
			return nil, domain.ErrHoldExpired
		},
	}
	svc := NewBookingService(env.store.Repos(), fake, zap.NewNop())

	showID, seatID, user := uuid.New(), uuid.New(), uuid.New()
	_, err := svc.CreateBooking(context.Background(), user.String(), &request.CreateBookingRequest{
		ShowID:     showID.String(),
		SeatIDs:    []string{seatID.String()},
		TTLSeconds: 90,
	})
	assert.ErrorIs(t, err, domain.ErrHoldExpired)

	assert.Equal(t, showID, got.ShowID)
	assert.Equal(t, user, got.UserID)
	assert.Equal(t, []uuid.UUID{seatID}, got.SeatIDs)
	assert.Equal(t, float64(90), got.TTL.Seconds())
}
