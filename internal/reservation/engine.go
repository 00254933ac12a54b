package reservation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"cinema-reservation/internal/data/entity"
	"cinema-reservation/internal/data/repository"
	"cinema-reservation/internal/domain"
	"cinema-reservation/internal/pricing"
	"cinema-reservation/pkg/telemetry"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const (
	DefaultHoldTTL   = 10 * time.Minute
	MaxHoldTTL       = 30 * time.Minute
	DefaultSweepSize = 100
)

type HoldRequest struct {
	ShowID  uuid.UUID
	SeatIDs []uuid.UUID // show seat ids
	UserID  uuid.UUID
	TTL     time.Duration // zero means the default
}

// Reservation is a booking together with its line items.
type Reservation struct {
	Booking *entity.Booking
	Seats   []*entity.BookingSeat
}

// Engine owns every seat state transition: hold, confirm, cancel and expiry.
type Engine struct {
	store      repository.Store
	locker     Locker
	publisher  Publisher
	log        *zap.Logger
	now        func() time.Time
	defaultTTL time.Duration
	maxTTL     time.Duration
	sweepSize  int
}

type Option func(*Engine)

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithLocker(l Locker) Option {
	return func(e *Engine) { e.locker = l }
}

func WithPublisher(p Publisher) Option {
	return func(e *Engine) { e.publisher = p }
}

func WithHoldTTL(def, maxTTL time.Duration) Option {
	return func(e *Engine) {
		if def > 0 {
			e.defaultTTL = def
		}
		if maxTTL > 0 {
			e.maxTTL = maxTTL
		}
	}
}

func WithSweepSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.sweepSize = n
		}
	}
}

func NewEngine(store repository.Store, log *zap.Logger, opts ...Option) *Engine {
	e := &Engine{
		store:      store,
		log:        log.With(zap.String("service", "reservation")),
		now:        time.Now,
		defaultTTL: DefaultHoldTTL,
		maxTTL:     MaxHoldTTL,
		sweepSize:  DefaultSweepSize,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.locker == nil {
		e.locker = NewMemoryLocker()
	}
	if e.publisher == nil {
		e.publisher = NewLogPublisher(e.log)
	}
	if e.defaultTTL > e.maxTTL {
		e.defaultTTL = e.maxTTL
	}
	return e
}

// Hold places a temporary hold on every requested seat or on none of them.
func (e *Engine) Hold(ctx context.Context, req HoldRequest) (res *Reservation, err error) {
	ctx, span := telemetry.StartSpan(ctx, "reservation.Hold",
		attribute.String("show_id", req.ShowID.String()),
		attribute.Int("seat_count", len(req.SeatIDs)),
	)
	defer func() { telemetry.EndSpan(span, err) }()

	ttl, err := e.validateHold(req)
	if err != nil {
		return nil, err
	}

	show, err := e.store.Repos().Show.FindByID(ctx, req.ShowID)
	if err != nil {
		return nil, fmt.Errorf("find show: %w", err)
	}
	if show == nil {
		return nil, domain.NotFound("show", req.ShowID)
	}

	release, err := e.locker.TryAcquire(ctx, seatLockKeys(req.SeatIDs))
	if err != nil {
		var busy *BusyError
		if errors.As(err, &busy) {
			e.log.Info("Hold rejected, seats locked by another request",
				zap.String("show_id", req.ShowID.String()),
				zap.Strings("keys", busy.Keys),
			)
			return nil, domain.NewSeatUnavailableError(seatIDsFromKeys(busy.Keys))
		}
		return nil, fmt.Errorf("lock seats: %w", err)
	}
	defer release()

	now := e.now()
	booking := &entity.Booking{
		Base:      entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		UserID:    req.UserID,
		ShowID:    req.ShowID,
		Status:    entity.BookingStatusPending,
		ExpiresAt: now.Add(ttl),
	}
	var items []*entity.BookingSeat

	err = e.store.WithTx(ctx, func(ctx context.Context, tx *repository.Repository) error {
		seats, err := tx.ShowSeat.FindByIDsForUpdate(ctx, req.SeatIDs)
		if err != nil {
			return err
		}
		if len(seats) != len(req.SeatIDs) {
			return fmt.Errorf("show seats %v: %w", missingIDs(req.SeatIDs, seats), domain.ErrNotFound)
		}

		var unavailable []uuid.UUID
		physicalIDs := make([]uuid.UUID, 0, len(seats))
		for _, s := range seats {
			if s.ShowID != req.ShowID {
				return domain.Invalid("seat_ids", fmt.Sprintf("seat %s does not belong to show %s", s.ID, req.ShowID))
			}
			if s.Status != entity.ShowSeatStatusAvailable {
				unavailable = append(unavailable, s.ID)
			}
			physicalIDs = append(physicalIDs, s.SeatID)
		}
		if len(unavailable) > 0 {
			return domain.NewSeatUnavailableError(unavailable)
		}

		physical, err := tx.Seat.FindByIDs(ctx, physicalIDs)
		if err != nil {
			return err
		}
		byID := make(map[uuid.UUID]*entity.Seat, len(physical))
		for _, p := range physical {
			byID[p.ID] = p
		}

		total := decimal.Zero
		items = make([]*entity.BookingSeat, 0, len(seats))
		for _, s := range seats {
			p, ok := byID[s.SeatID]
			if !ok {
				return domain.NotFound("seat", s.SeatID)
			}
			items = append(items, &entity.BookingSeat{
				BaseSimple: entity.BaseSimple{ID: uuid.New(), CreatedAt: now},
				BookingID:  booking.ID,
				ShowSeatID: s.ID,
				SeatNumber: p.SeatNumber,
				SeatType:   p.SeatType,
				Price:      s.Price,
			})
			total = total.Add(pricing.Amount(s.Price))
		}
		sort.Slice(items, func(i, j int) bool { return items[i].SeatNumber < items[j].SeatNumber })

		booking.NumberOfSeats = len(items)
		booking.TotalAmount = pricing.Float(total)

		if err := tx.Booking.Create(ctx, booking); err != nil {
			return err
		}
		if err := tx.BookingSeat.CreateBatch(ctx, items); err != nil {
			return err
		}

		moved, err := tx.ShowSeat.Hold(ctx, req.SeatIDs, booking.ID, booking.ExpiresAt)
		if err != nil {
			return err
		}
		if moved != int64(len(req.SeatIDs)) {
			return domain.NewSeatUnavailableError(req.SeatIDs)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.log.Info("Seats held",
		zap.String("booking_id", booking.ID.String()),
		zap.String("show_id", booking.ShowID.String()),
		zap.Int("seats", booking.NumberOfSeats),
		zap.Time("expires_at", booking.ExpiresAt),
	)
	e.publish(ctx, EventBookingHeld, booking, items)

	return &Reservation{Booking: booking, Seats: items}, nil
}

// Confirm turns a live hold into a booking. Confirming a confirmed booking
// returns it unchanged. A hold past its deadline is expired on the spot and
// ErrHoldExpired is returned.
func (e *Engine) Confirm(ctx context.Context, bookingID uuid.UUID) (res *Reservation, err error) {
	ctx, span := telemetry.StartSpan(ctx, "reservation.Confirm", attribute.String("booking_id", bookingID.String()))
	defer func() { telemetry.EndSpan(span, err) }()

	booking, items, err := e.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := confirmable(booking); err != nil {
		return nil, err
	}
	if booking.Status == entity.BookingStatusConfirmed {
		return &Reservation{Booking: booking, Seats: items}, nil
	}

	release, err := e.locker.Acquire(ctx, lineItemKeys(items))
	if err != nil {
		return nil, fmt.Errorf("lock seats: %w", err)
	}
	defer release()

	var event string
	err = e.store.WithTx(ctx, func(ctx context.Context, tx *repository.Repository) error {
		b, err := tx.Booking.FindByIDForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if b == nil {
			return domain.NotFound("booking", bookingID)
		}
		booking = b
		if err := confirmable(b); err != nil {
			return err
		}
		if b.Status == entity.BookingStatusConfirmed {
			return nil
		}

		now := e.now()
		if !now.Before(b.ExpiresAt) {
			if _, err := tx.ShowSeat.ReleaseByBookingID(ctx, b.ID); err != nil {
				return err
			}
			b.Status = entity.BookingStatusExpired
			b.UpdatedAt = now
			event = EventBookingExpired
			return tx.Booking.Update(ctx, b)
		}

		moved, err := tx.ShowSeat.MarkBooked(ctx, b.ID)
		if err != nil {
			return err
		}
		if moved != int64(b.NumberOfSeats) {
			return domain.InvalidState("booking %s has %d of %d seats held", b.ID, moved, b.NumberOfSeats)
		}
		b.Status = entity.BookingStatusConfirmed
		b.ConfirmedAt = &now
		b.UpdatedAt = now
		event = EventBookingConfirmed
		return tx.Booking.Update(ctx, b)
	})
	if err != nil {
		return nil, err
	}

	if event != "" {
		e.publish(ctx, event, booking, items)
	}
	if event == EventBookingExpired {
		e.log.Info("Confirm after hold deadline, booking expired", zap.String("booking_id", bookingID.String()))
		return nil, fmt.Errorf("booking %s: %w", bookingID, domain.ErrHoldExpired)
	}

	e.log.Info("Booking confirmed", zap.String("booking_id", bookingID.String()))
	return &Reservation{Booking: booking, Seats: items}, nil
}

// Cancel releases the seats of a pending or confirmed booking. Cancelling a
// cancelled booking is a no-op.
func (e *Engine) Cancel(ctx context.Context, bookingID uuid.UUID) (res *Reservation, err error) {
	ctx, span := telemetry.StartSpan(ctx, "reservation.Cancel", attribute.String("booking_id", bookingID.String()))
	defer func() { telemetry.EndSpan(span, err) }()

	booking, items, err := e.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := cancellable(booking); err != nil {
		return nil, err
	}
	if booking.Status == entity.BookingStatusCancelled {
		return &Reservation{Booking: booking, Seats: items}, nil
	}

	release, err := e.locker.Acquire(ctx, lineItemKeys(items))
	if err != nil {
		return nil, fmt.Errorf("lock seats: %w", err)
	}
	defer release()

	changed := false
	err = e.store.WithTx(ctx, func(ctx context.Context, tx *repository.Repository) error {
		b, err := tx.Booking.FindByIDForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if b == nil {
			return domain.NotFound("booking", bookingID)
		}
		booking = b
		if err := cancellable(b); err != nil {
			return err
		}
		if b.Status == entity.BookingStatusCancelled {
			return nil
		}

		if _, err := tx.ShowSeat.ReleaseByBookingID(ctx, b.ID); err != nil {
			return err
		}
		now := e.now()
		b.Status = entity.BookingStatusCancelled
		b.CancelledAt = &now
		b.UpdatedAt = now
		changed = true
		return tx.Booking.Update(ctx, b)
	})
	if err != nil {
		return nil, err
	}

	if changed {
		e.log.Info("Booking cancelled", zap.String("booking_id", bookingID.String()))
		e.publish(ctx, EventBookingCancelled, booking, items)
	}
	return &Reservation{Booking: booking, Seats: items}, nil
}

// ExpireHolds releases every pending hold whose deadline is at or before now
// and returns how many bookings it expired. Holds whose seats are locked by an
// in-flight request are left for the next sweep.
func (e *Engine) ExpireHolds(ctx context.Context, now time.Time) (expired int, err error) {
	ctx, span := telemetry.StartSpan(ctx, "reservation.ExpireHolds")
	defer func() {
		span.SetAttributes(attribute.Int("expired", expired))
		telemetry.EndSpan(span, err)
	}()

	for {
		candidates, err := e.store.Repos().Booking.FindExpiredPending(ctx, now, e.sweepSize)
		if err != nil {
			return expired, fmt.Errorf("find expired holds: %w", err)
		}

		progressed := 0
		for _, b := range candidates {
			if err := ctx.Err(); err != nil {
				return expired, err
			}
			ok, err := e.expireOne(ctx, b.ID, now)
			if err != nil {
				e.log.Warn("Failed to expire hold", zap.String("booking_id", b.ID.String()), zap.Error(err))
				continue
			}
			if ok {
				progressed++
			}
		}
		expired += progressed

		if len(candidates) < e.sweepSize || progressed == 0 {
			break
		}
	}

	if expired > 0 {
		e.log.Info("Expired holds released", zap.Int("count", expired))
	}
	return expired, nil
}

func (e *Engine) expireOne(ctx context.Context, bookingID uuid.UUID, now time.Time) (bool, error) {
	items, err := e.store.Repos().BookingSeat.FindByBookingID(ctx, bookingID)
	if err != nil {
		return false, err
	}

	release, err := e.locker.TryAcquire(ctx, lineItemKeys(items))
	if err != nil {
		if errors.Is(err, ErrLockBusy) {
			e.log.Debug("Hold busy, skipping", zap.String("booking_id", bookingID.String()))
			return false, nil
		}
		return false, err
	}
	defer release()

	var booking *entity.Booking
	err = e.store.WithTx(ctx, func(ctx context.Context, tx *repository.Repository) error {
		b, err := tx.Booking.FindByIDForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		// confirmed, cancelled or extended since the scan
		if b == nil || b.Status != entity.BookingStatusPending || now.Before(b.ExpiresAt) {
			return nil
		}

		if _, err := tx.ShowSeat.ReleaseByBookingID(ctx, b.ID); err != nil {
			return err
		}
		b.Status = entity.BookingStatusExpired
		b.UpdatedAt = now
		if err := tx.Booking.Update(ctx, b); err != nil {
			return err
		}
		booking = b
		return nil
	})
	if err != nil || booking == nil {
		return false, err
	}

	e.publish(ctx, EventBookingExpired, booking, items)
	return true, nil
}

func (e *Engine) validateHold(req HoldRequest) (time.Duration, error) {
	fields := map[string]string{}
	if req.ShowID == uuid.Nil {
		fields["show_id"] = "is required"
	}
	if req.UserID == uuid.Nil {
		fields["user_id"] = "is required"
	}
	if len(req.SeatIDs) == 0 {
		fields["seat_ids"] = "must not be empty"
	} else {
		seen := make(map[uuid.UUID]struct{}, len(req.SeatIDs))
		for _, id := range req.SeatIDs {
			if _, dup := seen[id]; dup {
				fields["seat_ids"] = fmt.Sprintf("seat %s is listed more than once", id)
				break
			}
			seen[id] = struct{}{}
		}
	}

	ttl := req.TTL
	switch {
	case ttl == 0:
		ttl = e.defaultTTL
	case ttl < 0:
		fields["ttl"] = "must be positive"
	case ttl > e.maxTTL:
		fields["ttl"] = fmt.Sprintf("must not exceed %s", e.maxTTL)
	}

	if len(fields) > 0 {
		return 0, domain.NewValidationError(fields)
	}
	return ttl, nil
}

func (e *Engine) load(ctx context.Context, bookingID uuid.UUID) (*entity.Booking, []*entity.BookingSeat, error) {
	repos := e.store.Repos()
	booking, err := repos.Booking.FindByID(ctx, bookingID)
	if err != nil {
		return nil, nil, fmt.Errorf("find booking: %w", err)
	}
	if booking == nil {
		return nil, nil, domain.NotFound("booking", bookingID)
	}
	items, err := repos.BookingSeat.FindByBookingID(ctx, bookingID)
	if err != nil {
		return nil, nil, fmt.Errorf("find booking seats: %w", err)
	}
	return booking, items, nil
}

func (e *Engine) publish(ctx context.Context, eventType string, booking *entity.Booking, items []*entity.BookingSeat) {
	event := newBookingEvent(eventType, booking, items, e.now())
	if err := e.publisher.Publish(ctx, eventType, event); err != nil {
		e.log.Warn("Failed to publish booking event",
			zap.String("event", eventType),
			zap.String("booking_id", booking.ID.String()),
			zap.Error(err),
		)
	}
}

func confirmable(b *entity.Booking) error {
	switch b.Status {
	case entity.BookingStatusCancelled:
		return domain.InvalidState("booking %s is cancelled", b.ID)
	case entity.BookingStatusExpired:
		return fmt.Errorf("booking %s: %w", b.ID, domain.ErrHoldExpired)
	}
	return nil
}

func cancellable(b *entity.Booking) error {
	if b.Status == entity.BookingStatusExpired {
		return domain.InvalidState("booking %s has expired", b.ID)
	}
	return nil
}

func lineItemKeys(items []*entity.BookingSeat) []string {
	ids := make([]uuid.UUID, len(items))
	for i, it := range items {
		ids[i] = it.ShowSeatID
	}
	return seatLockKeys(ids)
}

func missingIDs(want []uuid.UUID, got []*entity.ShowSeat) []uuid.UUID {
	found := make(map[uuid.UUID]struct{}, len(got))
	for _, s := range got {
		found[s.ID] = struct{}{}
	}
	var missing []uuid.UUID
	for _, id := range want {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}
