package usecase

import (
	"context"
	"testing"
	"time"

	"cinema-reservation/internal/data/memory"
	"cinema-reservation/internal/dto/request"
	"cinema-reservation/internal/pricing"
	"cinema-reservation/internal/reservation"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testEnv struct {
	store  *memory.Store
	engine *reservation.Engine
	svc    *Service

	movieID  string
	cinemaID string
	hallID   string
}

var showStart = time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC)

// newTestEnv seeds a 120 minute movie and a hall with A1 golden, A2 vip and A3 silver.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	store := memory.NewStore()
	engine := reservation.NewEngine(store, zap.NewNop())
	env := &testEnv{
		store:  store,
		engine: engine,
		svc:    NewService(store, engine, pricing.NewResolver(pricing.DefaultPremiums()), zap.NewNop()),
	}

	movie, err := env.svc.Catalog.CreateMovie(ctx, &request.MovieRequest{
		Title:             "Perfect Days",
		DurationInMinutes: 120,
		Language:          "ja",
		ReleaseDate:       "2023-12-21",
	})
	require.NoError(t, err)
	env.movieID = movie.ID

	cinema, err := env.svc.Catalog.CreateCinema(ctx, &request.CinemaRequest{Name: "Braga XXI", City: "Bandung"})
	require.NoError(t, err)
	env.cinemaID = cinema.ID

	hall, err := env.svc.Catalog.CreateHall(ctx, cinema.ID, &request.HallRequest{
		Name: "Studio 1",
		Seats: []request.SeatRequest{
			{SeatNumber: "A1", SeatType: "golden"},
			{SeatNumber: "A2", SeatType: "vip"},
			{SeatNumber: "A3", SeatType: "silver"},
		},
	})
	require.NoError(t, err)
	env.hallID = hall.ID

	return env
}

func (e *testEnv) schedule(t *testing.T, start time.Time, basePrice float64) string {
	t.Helper()
	show, err := e.svc.Catalog.ScheduleShow(context.Background(), &request.ShowRequest{
		MovieID:   e.movieID,
		HallID:    e.hallID,
		StartTime: start.Format(time.RFC3339),
		BasePrice: basePrice,
	})
	require.NoError(t, err)
	return show.ID
}

// seatIDs maps seat numbers to show seat ids for a show.
func (e *testEnv) seatIDs(t *testing.T, showID string) map[string]string {
	t.Helper()
	seats, err := e.svc.Ledger.SeatsForShow(context.Background(), showID, "")
	require.NoError(t, err)
	ids := make(map[string]string, len(seats))
	for _, s := range seats {
		ids[s.SeatNumber] = s.ID
	}
	return ids
}
