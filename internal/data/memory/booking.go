package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"cinema-reservation/internal/data/entity"

	"github.com/google/uuid"
)

type bookingRepo struct{ h handle }

func (r *bookingRepo) Create(_ context.Context, booking *entity.Booking) error {
	return r.h.write(func(st *state) error {
		if _, ok := st.bookings[booking.ID]; ok {
			return fmt.Errorf("create booking %s: duplicate id", booking.ID)
		}
		if _, ok := st.shows[booking.ShowID]; !ok {
			return fmt.Errorf("create booking %s: show %s does not exist", booking.ID, booking.ShowID)
		}
		st.bookings[booking.ID] = *booking
		return nil
	})
}

func (r *bookingRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Booking, error) {
	var found *entity.Booking
	r.h.read(func(st *state) {
		if b, ok := st.bookings[id]; ok && !b.IsDeleted() {
			found = &b
		}
	})
	return found, nil
}

func (r *bookingRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	return r.FindByID(ctx, id)
}

func (r *bookingRepo) FindByUserID(_ context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Booking, error) {
	bookings := r.collect(func(b *entity.Booking) bool { return b.UserID == userID })
	sort.Slice(bookings, func(i, j int) bool { return bookings[i].CreatedAt.After(bookings[j].CreatedAt) })
	return page(bookings, limit, offset), nil
}

func (r *bookingRepo) CountByUserID(_ context.Context, userID uuid.UUID) (int64, error) {
	return int64(len(r.collect(func(b *entity.Booking) bool { return b.UserID == userID }))), nil
}

func (r *bookingRepo) FindExpiredPending(_ context.Context, now time.Time, limit int) ([]*entity.Booking, error) {
	bookings := r.collect(func(b *entity.Booking) bool {
		return b.Status == entity.BookingStatusPending && !b.ExpiresAt.After(now)
	})
	sort.Slice(bookings, func(i, j int) bool { return bookings[i].ExpiresAt.Before(bookings[j].ExpiresAt) })
	return page(bookings, limit, 0), nil
}

func (r *bookingRepo) collect(match func(b *entity.Booking) bool) []*entity.Booking {
	var bookings []*entity.Booking
	r.h.read(func(st *state) {
		for _, b := range st.bookings {
			if !b.IsDeleted() && match(&b) {
				bookings = append(bookings, &b)
			}
		}
	})
	return bookings
}

func (r *bookingRepo) Update(_ context.Context, booking *entity.Booking) error {
	return r.h.write(func(st *state) error {
		existing, ok := st.bookings[booking.ID]
		if !ok || existing.IsDeleted() {
			return fmt.Errorf("booking %s not found", booking.ID)
		}
		existing.NumberOfSeats = booking.NumberOfSeats
		existing.TotalAmount = booking.TotalAmount
		existing.Status = booking.Status
		existing.ExpiresAt = booking.ExpiresAt
		existing.ConfirmedAt = booking.ConfirmedAt
		existing.CancelledAt = booking.CancelledAt
		existing.UpdatedAt = booking.UpdatedAt
		st.bookings[booking.ID] = existing
		return nil
	})
}

type bookingSeatRepo struct{ h handle }

func (r *bookingSeatRepo) CreateBatch(_ context.Context, bookingSeats []*entity.BookingSeat) error {
	return r.h.write(func(st *state) error {
		for _, bs := range bookingSeats {
			if _, ok := st.bookings[bs.BookingID]; !ok {
				return fmt.Errorf("create batch booking seats: booking %s does not exist", bs.BookingID)
			}
			if _, ok := st.showSeats[bs.ShowSeatID]; !ok {
				return fmt.Errorf("create batch booking seats: show seat %s does not exist", bs.ShowSeatID)
			}
		}
		for _, bs := range bookingSeats {
			st.bookingSeats[bs.ID] = *bs
		}
		return nil
	})
}

func (r *bookingSeatRepo) FindByBookingID(_ context.Context, bookingID uuid.UUID) ([]*entity.BookingSeat, error) {
	var items []*entity.BookingSeat
	r.h.read(func(st *state) {
		for _, bs := range st.bookingSeats {
			if bs.BookingID == bookingID {
				items = append(items, &bs)
			}
		}
	})
	sort.Slice(items, func(i, j int) bool { return items[i].SeatNumber < items[j].SeatNumber })
	return items, nil
}
