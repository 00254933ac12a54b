package reservation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"cinema-reservation/internal/data/entity"
	"cinema-reservation/internal/data/memory"
	"cinema-reservation/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []BookingEvent
}

func (p *recordingPublisher) Publish(_ context.Context, _ string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, payload.(BookingEvent))
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type fixture struct {
	store  *memory.Store
	clock  *fakeClock
	events *recordingPublisher
	engine *Engine

	movieID uuid.UUID
	hallID  uuid.UUID
	seats   []*entity.Seat
	show    *entity.Show
	byNum   map[string]*entity.ShowSeat
}

// newFixture seeds one hall with A1 (silver, 10), A2 (vip, 15) and A3 (silver, 10).
func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	ctx := context.Background()
	f := &fixture{
		store:  memory.NewStore(),
		clock:  &fakeClock{t: time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)},
		events: &recordingPublisher{},
	}
	repos := f.store.Repos()
	now := f.clock.Now()
	base := func() entity.Base { return entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now} }

	movie := &entity.Movie{Base: base(), Title: "Arrival", DurationInMinutes: 116}
	require.NoError(t, repos.Movie.Create(ctx, movie))
	cinema := &entity.Cinema{Base: base(), Name: "Metro", City: "Bandung", TotalHalls: 1}
	require.NoError(t, repos.Cinema.Create(ctx, cinema))
	hall := &entity.Hall{Base: base(), CinemaID: cinema.ID, Name: "Hall 1", TotalSeats: 3}
	require.NoError(t, repos.Hall.Create(ctx, hall))

	f.movieID, f.hallID = movie.ID, hall.ID
	f.seats = []*entity.Seat{
		{Base: base(), HallID: hall.ID, SeatNumber: "A1", SeatType: entity.SeatTypeSilver},
		{Base: base(), HallID: hall.ID, SeatNumber: "A2", SeatType: entity.SeatTypeVIP},
		{Base: base(), HallID: hall.ID, SeatNumber: "A3", SeatType: entity.SeatTypeSilver},
	}
	require.NoError(t, repos.Seat.CreateBatch(ctx, f.seats))

	f.show, f.byNum = f.addShow(t, now.Add(2*time.Hour))

	all := append([]Option{WithClock(f.clock.Now), WithPublisher(f.events)}, opts...)
	f.engine = NewEngine(f.store, zap.NewNop(), all...)
	return f
}

func (f *fixture) addShow(t *testing.T, start time.Time) (*entity.Show, map[string]*entity.ShowSeat) {
	t.Helper()
	return f.addPricedShow(t, start, 10, 15)
}

func (f *fixture) addPricedShow(t *testing.T, start time.Time, silver, vip float64) (*entity.Show, map[string]*entity.ShowSeat) {
	t.Helper()
	ctx := context.Background()
	repos := f.store.Repos()
	now := f.clock.Now()

	show := &entity.Show{
		Base:      entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		MovieID:   f.movieID,
		HallID:    f.hallID,
		ShowDate:  start.Truncate(24 * time.Hour),
		StartTime: start,
		EndTime:   start.Add(2 * time.Hour),
		BasePrice: 10,
	}
	require.NoError(t, repos.Show.Create(ctx, show))

	byNum := map[string]*entity.ShowSeat{}
	var showSeats []*entity.ShowSeat
	for _, s := range f.seats {
		price := silver
		if s.SeatType == entity.SeatTypeVIP {
			price = vip
		}
		ss := &entity.ShowSeat{
			Base:   entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
			ShowID: show.ID,
			SeatID: s.ID,
			Price:  price,
			Status: entity.ShowSeatStatusAvailable,
		}
		showSeats = append(showSeats, ss)
		byNum[s.SeatNumber] = ss
	}
	require.NoError(t, repos.ShowSeat.CreateBatch(ctx, showSeats))
	return show, byNum
}

func (f *fixture) ids(nums ...string) []uuid.UUID {
	ids := make([]uuid.UUID, len(nums))
	for i, n := range nums {
		ids[i] = f.byNum[n].ID
	}
	return ids
}

func (f *fixture) status(t *testing.T, num string) entity.ShowSeatStatus {
	t.Helper()
	seats, err := f.store.Repos().ShowSeat.FindByIDsForUpdate(context.Background(), f.ids(num))
	require.NoError(t, err)
	require.Len(t, seats, 1)
	return seats[0].Status
}

func (f *fixture) booking(t *testing.T, id uuid.UUID) *entity.Booking {
	t.Helper()
	b, err := f.store.Repos().Booking.FindByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, b)
	return b
}

func (f *fixture) hold(t *testing.T, ttl time.Duration, nums ...string) *Reservation {
	t.Helper()
	res, err := f.engine.Hold(context.Background(), HoldRequest{
		ShowID:  f.show.ID,
		SeatIDs: f.ids(nums...),
		UserID:  uuid.New(),
		TTL:     ttl,
	})
	require.NoError(t, err)
	return res
}

func TestEngine_HoldPricesSeatsAndConfirm(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res := f.hold(t, 0, "A1", "A2")

	b := res.Booking
	assert.Equal(t, entity.BookingStatusPending, b.Status)
	assert.Equal(t, 2, b.NumberOfSeats)
	assert.Equal(t, 25.0, b.TotalAmount)
	assert.Equal(t, f.clock.Now().Add(DefaultHoldTTL), b.ExpiresAt)

	require.Len(t, res.Seats, 2)
	assert.Equal(t, "A1", res.Seats[0].SeatNumber)
	assert.Equal(t, 10.0, res.Seats[0].Price)
	assert.Equal(t, "A2", res.Seats[1].SeatNumber)
	assert.Equal(t, entity.SeatTypeVIP, res.Seats[1].SeatType)
	assert.Equal(t, 15.0, res.Seats[1].Price)

	assert.Equal(t, entity.ShowSeatStatusHeld, f.status(t, "A1"))
	assert.Equal(t, entity.ShowSeatStatusHeld, f.status(t, "A2"))
	assert.Equal(t, entity.ShowSeatStatusAvailable, f.status(t, "A3"))

	confirmed, err := f.engine.Confirm(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.BookingStatusConfirmed, confirmed.Booking.Status)
	require.NotNil(t, confirmed.Booking.ConfirmedAt)
	assert.Equal(t, entity.ShowSeatStatusBooked, f.status(t, "A1"))
	assert.Equal(t, entity.ShowSeatStatusBooked, f.status(t, "A2"))

	_, err = f.engine.Hold(ctx, HoldRequest{ShowID: f.show.ID, SeatIDs: f.ids("A1"), UserID: uuid.New()})
	require.Error(t, err)
	var unavailable *domain.SeatUnavailableError
	require.True(t, errors.As(err, &unavailable))
	assert.Equal(t, f.ids("A1"), unavailable.SeatIDs)

	assert.Equal(t, []string{EventBookingHeld, EventBookingConfirmed}, f.events.types())
}

func TestEngine_HoldTotalsCentsExactly(t *testing.T) {
	f := newFixture(t)
	f.show, f.byNum = f.addPricedShow(t, f.clock.Now().Add(6*time.Hour), 10.1, 0.2)

	res := f.hold(t, 0, "A1", "A2", "A3")

	assert.Equal(t, 20.4, res.Booking.TotalAmount)
	assert.Equal(t, 3, res.Booking.NumberOfSeats)
}

func TestEngine_ConfirmIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res := f.hold(t, 0, "A1")

	first, err := f.engine.Confirm(ctx, res.Booking.ID)
	require.NoError(t, err)
	second, err := f.engine.Confirm(ctx, res.Booking.ID)
	require.NoError(t, err)

	assert.Equal(t, first.Booking.ConfirmedAt, second.Booking.ConfirmedAt)
	assert.Equal(t, []string{EventBookingHeld, EventBookingConfirmed}, f.events.types())
}

func TestEngine_HoldIsAllOrNothing(t *testing.T) {
	f := newFixture(t)
	f.hold(t, 0, "A1")

	_, err := f.engine.Hold(context.Background(), HoldRequest{
		ShowID:  f.show.ID,
		SeatIDs: f.ids("A3", "A1"),
		UserID:  uuid.New(),
	})
	require.Error(t, err)
	assert.True(t, domain.IsSeatUnavailableError(err))

	var unavailable *domain.SeatUnavailableError
	require.True(t, errors.As(err, &unavailable))
	assert.Equal(t, f.ids("A1"), unavailable.SeatIDs)
	assert.Equal(t, entity.ShowSeatStatusAvailable, f.status(t, "A3"))
}

func TestEngine_ExpireHoldsAfterTTL(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res := f.hold(t, 60*time.Second, "A1", "A2")

	f.clock.Advance(59 * time.Second)
	n, err := f.engine.ExpireHolds(ctx, f.clock.Now())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, entity.ShowSeatStatusHeld, f.status(t, "A1"))

	f.clock.Advance(2 * time.Second)
	n, err = f.engine.ExpireHolds(ctx, f.clock.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.Equal(t, entity.BookingStatusExpired, f.booking(t, res.Booking.ID).Status)
	assert.Equal(t, entity.ShowSeatStatusAvailable, f.status(t, "A1"))
	assert.Equal(t, entity.ShowSeatStatusAvailable, f.status(t, "A2"))

	n, err = f.engine.ExpireHolds(ctx, f.clock.Now())
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	// line items survive expiry
	items, err := f.store.Repos().BookingSeat.FindByBookingID(ctx, res.Booking.ID)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestEngine_ExpireHoldsPagesThroughBatches(t *testing.T) {
	f := newFixture(t, WithSweepSize(1))
	f.hold(t, time.Minute, "A1")
	f.hold(t, time.Minute, "A2")
	f.hold(t, time.Minute, "A3")

	f.clock.Advance(time.Minute)
	n, err := f.engine.ExpireHolds(context.Background(), f.clock.Now())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestEngine_ExpireHoldsSkipsLockedSeats(t *testing.T) {
	locker := NewMemoryLocker()
	f := newFixture(t, WithLocker(locker))
	ctx := context.Background()
	res := f.hold(t, time.Minute, "A1")
	f.clock.Advance(2 * time.Minute)

	release, err := locker.TryAcquire(ctx, seatLockKeys(f.ids("A1")))
	require.NoError(t, err)

	n, err := f.engine.ExpireHolds(ctx, f.clock.Now())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, entity.BookingStatusPending, f.booking(t, res.Booking.ID).Status)

	release()
	n, err = f.engine.ExpireHolds(ctx, f.clock.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestEngine_ConfirmAfterDeadline(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res := f.hold(t, time.Minute, "A1")

	f.clock.Advance(time.Minute)
	_, err := f.engine.Confirm(ctx, res.Booking.ID)
	require.Error(t, err)
	assert.True(t, domain.IsHoldExpiredError(err))

	assert.Equal(t, entity.BookingStatusExpired, f.booking(t, res.Booking.ID).Status)
	assert.Equal(t, entity.ShowSeatStatusAvailable, f.status(t, "A1"))

	_, err = f.engine.Confirm(ctx, res.Booking.ID)
	assert.True(t, domain.IsHoldExpiredError(err))

	_, err = f.engine.Cancel(ctx, res.Booking.ID)
	assert.True(t, domain.IsInvalidStateError(err))

	assert.Equal(t, []string{EventBookingHeld, EventBookingExpired}, f.events.types())
}

func TestEngine_Cancel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("pending hold", func(t *testing.T) {
		res := f.hold(t, 0, "A1", "A2")

		cancelled, err := f.engine.Cancel(ctx, res.Booking.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.BookingStatusCancelled, cancelled.Booking.Status)
		require.NotNil(t, cancelled.Booking.CancelledAt)
		assert.Equal(t, entity.ShowSeatStatusAvailable, f.status(t, "A1"))
		assert.Equal(t, entity.ShowSeatStatusAvailable, f.status(t, "A2"))

		again, err := f.engine.Cancel(ctx, res.Booking.ID)
		require.NoError(t, err)
		assert.Equal(t, cancelled.Booking.CancelledAt, again.Booking.CancelledAt)

		_, err = f.engine.Confirm(ctx, res.Booking.ID)
		assert.True(t, domain.IsInvalidStateError(err))
	})

	t.Run("confirmed booking", func(t *testing.T) {
		res := f.hold(t, 0, "A3")
		_, err := f.engine.Confirm(ctx, res.Booking.ID)
		require.NoError(t, err)

		_, err = f.engine.Cancel(ctx, res.Booking.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.ShowSeatStatusAvailable, f.status(t, "A3"))

		f.hold(t, 0, "A3")
	})

	t.Run("unknown booking", func(t *testing.T) {
		_, err := f.engine.Cancel(ctx, uuid.New())
		assert.True(t, domain.IsNotFoundError(err))
	})
}

func TestEngine_HoldValidation(t *testing.T) {
	f := newFixture(t)
	other, otherSeats := f.addShow(t, f.clock.Now().Add(6*time.Hour))
	ctx := context.Background()
	user := uuid.New()

	tests := []struct {
		name  string
		req   HoldRequest
		check func(error) bool
	}{
		{"empty seat list", HoldRequest{ShowID: f.show.ID, UserID: user}, domain.IsValidationError},
		{"duplicate seats", HoldRequest{ShowID: f.show.ID, SeatIDs: f.ids("A1", "A1"), UserID: user}, domain.IsValidationError},
		{"missing user", HoldRequest{ShowID: f.show.ID, SeatIDs: f.ids("A1")}, domain.IsValidationError},
		{"negative ttl", HoldRequest{ShowID: f.show.ID, SeatIDs: f.ids("A1"), UserID: user, TTL: -time.Second}, domain.IsValidationError},
		{"ttl above max", HoldRequest{ShowID: f.show.ID, SeatIDs: f.ids("A1"), UserID: user, TTL: MaxHoldTTL + time.Second}, domain.IsValidationError},
		{"unknown show", HoldRequest{ShowID: uuid.New(), SeatIDs: f.ids("A1"), UserID: user}, domain.IsNotFoundError},
		{"unknown seat", HoldRequest{ShowID: f.show.ID, SeatIDs: []uuid.UUID{uuid.New()}, UserID: user}, domain.IsNotFoundError},
		{"seat of another show", HoldRequest{ShowID: other.ID, SeatIDs: f.ids("A1"), UserID: user}, domain.IsValidationError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.engine.Hold(ctx, tt.req)
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error: %v", err)
		})
	}

	assert.Equal(t, entity.ShowSeatStatusAvailable, f.status(t, "A1"))
	assert.Equal(t, entity.ShowSeatStatusAvailable, otherSeats["A1"].Status)
	assert.Empty(t, f.events.types())
}

func TestEngine_ConcurrentHoldsNeverDoubleHold(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const workers = 20
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.engine.Hold(ctx, HoldRequest{
				ShowID:  f.show.ID,
				SeatIDs: f.ids("A1", "A2"),
				UserID:  uuid.New(),
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case domain.IsSeatUnavailableError(err):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, workers-1, conflicts)

	seats, err := f.store.Repos().ShowSeat.FindByShowID(ctx, f.show.ID, nil)
	require.NoError(t, err)
	holders := map[uuid.UUID]struct{}{}
	for _, s := range seats {
		if s.BookingID != nil {
			holders[*s.BookingID] = struct{}{}
		}
	}
	assert.Len(t, holders, 1)
}

func TestEngine_ConcurrentConfirmAndSweep(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res := f.hold(t, time.Minute, "A1")
	f.clock.Advance(time.Minute)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, _ = f.engine.Confirm(ctx, res.Booking.ID)
	}()
	go func() {
		defer wg.Done()
		_, _ = f.engine.ExpireHolds(ctx, f.clock.Now())
	}()
	wg.Wait()

	// deadline passed, so whichever ran first the booking ends expired
	assert.Equal(t, entity.BookingStatusExpired, f.booking(t, res.Booking.ID).Status)
	assert.Equal(t, entity.ShowSeatStatusAvailable, f.status(t, "A1"))
}
