package usecase

import (
	"context"
	"testing"
	"time"

	"cinema-reservation/internal/data/entity"
	"cinema-reservation/internal/domain"
	"cinema-reservation/internal/dto/request"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_ScheduleShowFansOutPricedSeats(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	showID := env.schedule(t, showStart, 10)

	show, err := env.svc.Catalog.GetShow(ctx, showID)
	require.NoError(t, err)
	assert.True(t, showStart.Add(120*time.Minute).Equal(show.EndTime))
	assert.Equal(t, "2026-05-01", show.ShowDate)
	require.NotNil(t, show.AvailableSeats)
	assert.Equal(t, 3, *show.AvailableSeats)

	seats, err := env.svc.Ledger.SeatsForShow(ctx, showID, "")
	require.NoError(t, err)
	require.Len(t, seats, 3)

	assert.Equal(t, "A1", seats[0].SeatNumber)
	assert.Equal(t, 10.0, seats[0].Price)
	assert.Equal(t, "A2", seats[1].SeatNumber)
	assert.Equal(t, 15.0, seats[1].Price)
	assert.Equal(t, "A3", seats[2].SeatNumber)
	assert.Equal(t, 10.0, seats[2].Price)
	for _, s := range seats {
		assert.Equal(t, entity.ShowSeatStatusAvailable, s.Status)
	}
}

func TestCatalog_ScheduleShowRejectsOverlap(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.schedule(t, showStart, 10)

	_, err := env.svc.Catalog.ScheduleShow(ctx, &request.ShowRequest{
		MovieID:   env.movieID,
		HallID:    env.hallID,
		StartTime: showStart.Add(time.Hour).Format(time.RFC3339),
		BasePrice: 10,
	})
	require.Error(t, err)
	assert.True(t, domain.IsInvalidStateError(err))

	// windows are half-open, so back to back is fine
	env.schedule(t, showStart.Add(2*time.Hour), 10)
}

func TestCatalog_ScheduleShowValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		req   request.ShowRequest
		check func(error) bool
	}{
		{"missing price", request.ShowRequest{MovieID: env.movieID, HallID: env.hallID, StartTime: showStart.Format(time.RFC3339)}, domain.IsValidationError},
		{"bad start", request.ShowRequest{MovieID: env.movieID, HallID: env.hallID, StartTime: "tomorrow", BasePrice: 10}, domain.IsValidationError},
		{"unknown movie", request.ShowRequest{MovieID: uuid.NewString(), HallID: env.hallID, StartTime: showStart.Format(time.RFC3339), BasePrice: 10}, domain.IsNotFoundError},
		{"unknown hall", request.ShowRequest{MovieID: env.movieID, HallID: uuid.NewString(), StartTime: showStart.Format(time.RFC3339), BasePrice: 10}, domain.IsNotFoundError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.Catalog.ScheduleShow(ctx, &tt.req)
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error: %v", err)
		})
	}
}

func TestCatalog_RepriceKeepsMaterializedSeatPrices(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	showID := env.schedule(t, showStart, 10)

	show, err := env.svc.Catalog.RepriceShow(ctx, showID, &request.RepriceRequest{BasePrice: 20})
	require.NoError(t, err)
	assert.Equal(t, 20.0, show.BasePrice)

	ids := env.seatIDs(t, showID)
	booking, err := env.svc.Booking.CreateBooking(ctx, uuid.NewString(), &request.CreateBookingRequest{
		ShowID:  showID,
		SeatIDs: []string{ids["A2"]},
	})
	require.NoError(t, err)
	assert.Equal(t, 15.0, booking.TotalAmount)
}

func TestCatalog_DeleteShowRestrictedWhileSeatsTaken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	showID := env.schedule(t, showStart, 10)
	user := uuid.NewString()

	ids := env.seatIDs(t, showID)
	booking, err := env.svc.Booking.CreateBooking(ctx, user, &request.CreateBookingRequest{
		ShowID:  showID,
		SeatIDs: []string{ids["A1"]},
	})
	require.NoError(t, err)

	err = env.svc.Catalog.DeleteShow(ctx, showID)
	assert.True(t, domain.IsInvalidStateError(err))

	err = env.svc.Catalog.DeleteMovie(ctx, env.movieID)
	assert.True(t, domain.IsInvalidStateError(err))

	_, err = env.svc.Booking.CancelBooking(ctx, user, booking.ID)
	require.NoError(t, err)

	require.NoError(t, env.svc.Catalog.DeleteShow(ctx, showID))
	_, err = env.svc.Catalog.GetShow(ctx, showID)
	assert.True(t, domain.IsNotFoundError(err))

	require.NoError(t, env.svc.Catalog.DeleteMovie(ctx, env.movieID))
	_, err = env.svc.Catalog.GetMovie(ctx, env.movieID)
	assert.True(t, domain.IsNotFoundError(err))

	// the booking history outlives the show
	detail, err := env.svc.Booking.GetBooking(ctx, user, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.BookingStatusCancelled, detail.Status)
	assert.Equal(t, 1, detail.NumberOfSeats)
}

func TestCatalog_ListShowsOnlyBookable(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	hall, err := env.svc.Catalog.CreateHall(ctx, env.cinemaID, &request.HallRequest{
		Name:  "Studio 2",
		Seats: []request.SeatRequest{{SeatNumber: "A1", SeatType: "vip"}},
	})
	require.NoError(t, err)

	open := env.schedule(t, showStart, 10)
	small, err := env.svc.Catalog.ScheduleShow(ctx, &request.ShowRequest{
		MovieID:   env.movieID,
		HallID:    hall.ID,
		StartTime: showStart.Format(time.RFC3339),
		BasePrice: 10,
	})
	require.NoError(t, err)

	user := uuid.NewString()
	booking, err := env.svc.Booking.CreateBooking(ctx, user, &request.CreateBookingRequest{
		ShowID:  small.ID,
		SeatIDs: []string{env.seatIDs(t, small.ID)["A1"]},
	})
	require.NoError(t, err)
	_, err = env.svc.Booking.ConfirmBooking(ctx, user, booking.ID)
	require.NoError(t, err)

	all, err := env.svc.Catalog.ListShows(ctx, request.ShowFilter{MovieID: env.movieID})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	bookable, err := env.svc.Catalog.ListShows(ctx, request.ShowFilter{MovieID: env.movieID, Bookable: true})
	require.NoError(t, err)
	require.Len(t, bookable, 1)
	assert.Equal(t, open, bookable[0].ID)

	byHall, err := env.svc.Catalog.ListShows(ctx, request.ShowFilter{HallID: hall.ID})
	require.NoError(t, err)
	require.Len(t, byHall, 1)
	assert.Equal(t, 0, *byHall[0].AvailableSeats)

	_, err = env.svc.Catalog.ListShows(ctx, request.ShowFilter{MovieID: "nope"})
	assert.True(t, domain.IsValidationError(err))
}

func TestCatalog_CreateHall(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.Catalog.CreateHall(ctx, env.cinemaID, &request.HallRequest{
		Name: "Studio 3",
		Seats: []request.SeatRequest{
			{SeatNumber: "B1", SeatType: "silver"},
			{SeatNumber: "B1", SeatType: "vip"},
		},
	})
	assert.True(t, domain.IsValidationError(err))

	_, err = env.svc.Catalog.CreateHall(ctx, env.cinemaID, &request.HallRequest{
		Name:  "Studio 3",
		Seats: []request.SeatRequest{{SeatNumber: "B1", SeatType: "platinum"}},
	})
	assert.True(t, domain.IsValidationError(err))

	_, err = env.svc.Catalog.CreateHall(ctx, uuid.NewString(), &request.HallRequest{
		Name:  "Studio 3",
		Seats: []request.SeatRequest{{SeatNumber: "B1", SeatType: "silver"}},
	})
	assert.True(t, domain.IsNotFoundError(err))

	layout, err := env.svc.Catalog.GetSeatLayout(ctx, env.hallID)
	require.NoError(t, err)
	assert.Equal(t, 3, layout.TotalSeats)
	assert.Len(t, layout.Seats, 3)
}

func TestLedger_SeatsForShowFiltersByStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	showID := env.schedule(t, showStart, 10)
	ids := env.seatIDs(t, showID)

	_, err := env.svc.Booking.CreateBooking(ctx, uuid.NewString(), &request.CreateBookingRequest{
		ShowID:  showID,
		SeatIDs: []string{ids["A1"], ids["A3"]},
	})
	require.NoError(t, err)

	held, err := env.svc.Ledger.SeatsForShow(ctx, showID, "held")
	require.NoError(t, err)
	require.Len(t, held, 2)
	assert.NotNil(t, held[0].HeldUntil)

	available, err := env.svc.Ledger.AvailableSeats(ctx, showID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{uuid.MustParse(ids["A2"])}, available)

	_, err = env.svc.Ledger.SeatsForShow(ctx, showID, "reserved")
	assert.True(t, domain.IsValidationError(err))

	_, err = env.svc.Ledger.SeatsForShow(ctx, uuid.NewString(), "")
	assert.True(t, domain.IsNotFoundError(err))
}
