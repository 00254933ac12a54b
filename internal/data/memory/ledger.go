package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"cinema-reservation/internal/data/entity"

	"github.com/google/uuid"
)

type showSeatRepo struct{ h handle }

func (r *showSeatRepo) CreateBatch(_ context.Context, seats []*entity.ShowSeat) error {
	return r.h.write(func(st *state) error {
		taken := map[[2]uuid.UUID]struct{}{}
		for _, ss := range st.showSeats {
			taken[[2]uuid.UUID{ss.ShowID, ss.SeatID}] = struct{}{}
		}
		for _, seat := range seats {
			if _, ok := st.shows[seat.ShowID]; !ok {
				return fmt.Errorf("create batch show seats: show %s does not exist", seat.ShowID)
			}
			if _, ok := st.seats[seat.SeatID]; !ok {
				return fmt.Errorf("create batch show seats: seat %s does not exist", seat.SeatID)
			}
			key := [2]uuid.UUID{seat.ShowID, seat.SeatID}
			if _, ok := taken[key]; ok {
				return fmt.Errorf("create batch show seats: seat %s already materialized for show", seat.SeatID)
			}
			taken[key] = struct{}{}
		}
		for _, seat := range seats {
			st.showSeats[seat.ID] = *seat
		}
		return nil
	})
}

func (r *showSeatRepo) FindByShowID(_ context.Context, showID uuid.UUID, status *entity.ShowSeatStatus) ([]*entity.ShowSeat, error) {
	return r.collect(func(ss *entity.ShowSeat) bool {
		return ss.ShowID == showID && (status == nil || ss.Status == *status)
	}), nil
}

func (r *showSeatRepo) FindByIDsForUpdate(_ context.Context, ids []uuid.UUID) ([]*entity.ShowSeat, error) {
	set := idSet(ids)
	seats := r.collect(func(ss *entity.ShowSeat) bool {
		_, ok := set[ss.ID]
		return ok
	})
	if seats == nil {
		seats = []*entity.ShowSeat{}
	}
	return seats, nil
}

func (r *showSeatRepo) FindByBookingID(_ context.Context, bookingID uuid.UUID) ([]*entity.ShowSeat, error) {
	return r.collect(func(ss *entity.ShowSeat) bool {
		return ss.BookingID != nil && *ss.BookingID == bookingID
	}), nil
}

func (r *showSeatRepo) collect(match func(ss *entity.ShowSeat) bool) []*entity.ShowSeat {
	var seats []*entity.ShowSeat
	r.h.read(func(st *state) {
		for _, ss := range st.showSeats {
			if !ss.IsDeleted() && match(&ss) {
				seats = append(seats, &ss)
			}
		}
	})
	sort.Slice(seats, func(i, j int) bool { return lessID(seats[i].ID, seats[j].ID) })
	return seats
}

func (r *showSeatRepo) CountByStatus(_ context.Context, showID uuid.UUID) (map[entity.ShowSeatStatus]int, error) {
	counts := make(map[entity.ShowSeatStatus]int)
	r.h.read(func(st *state) {
		for _, ss := range st.showSeats {
			if ss.ShowID == showID && !ss.IsDeleted() {
				counts[ss.Status]++
			}
		}
	})
	return counts, nil
}

func (r *showSeatRepo) Hold(_ context.Context, ids []uuid.UUID, bookingID uuid.UUID, heldUntil time.Time) (int64, error) {
	var moved int64
	err := r.h.write(func(st *state) error {
		if _, ok := st.bookings[bookingID]; !ok {
			return fmt.Errorf("hold seats: booking %s does not exist", bookingID)
		}
		now := time.Now()
		for _, id := range ids {
			ss, ok := st.showSeats[id]
			if !ok || ss.IsDeleted() || ss.Status != entity.ShowSeatStatusAvailable {
				continue
			}
			bid, until := bookingID, heldUntil
			ss.Status = entity.ShowSeatStatusHeld
			ss.BookingID = &bid
			ss.HeldUntil = &until
			ss.UpdatedAt = now
			st.showSeats[id] = ss
			moved++
		}
		return nil
	})
	return moved, err
}

func (r *showSeatRepo) MarkBooked(_ context.Context, bookingID uuid.UUID) (int64, error) {
	var moved int64
	err := r.h.write(func(st *state) error {
		now := time.Now()
		for id, ss := range st.showSeats {
			if ss.BookingID == nil || *ss.BookingID != bookingID || ss.Status != entity.ShowSeatStatusHeld {
				continue
			}
			ss.Status = entity.ShowSeatStatusBooked
			ss.HeldUntil = nil
			ss.UpdatedAt = now
			st.showSeats[id] = ss
			moved++
		}
		return nil
	})
	return moved, err
}

func (r *showSeatRepo) ReleaseByBookingID(_ context.Context, bookingID uuid.UUID) (int64, error) {
	var moved int64
	err := r.h.write(func(st *state) error {
		now := time.Now()
		for id, ss := range st.showSeats {
			if ss.BookingID == nil || *ss.BookingID != bookingID {
				continue
			}
			ss.Status = entity.ShowSeatStatusAvailable
			ss.BookingID = nil
			ss.HeldUntil = nil
			ss.UpdatedAt = now
			st.showSeats[id] = ss
			moved++
		}
		return nil
	})
	return moved, err
}
