// Package memory is an in-process implementation of repository.Store, used
// with STORAGE_DRIVER=memory and by tests.
package memory

import (
	"bytes"
	"context"
	"maps"
	"sync"

	"cinema-reservation/internal/data/entity"
	"cinema-reservation/internal/data/repository"

	"github.com/google/uuid"
)

type state struct {
	movies       map[uuid.UUID]entity.Movie
	cinemas      map[uuid.UUID]entity.Cinema
	halls        map[uuid.UUID]entity.Hall
	seats        map[uuid.UUID]entity.Seat
	shows        map[uuid.UUID]entity.Show
	showSeats    map[uuid.UUID]entity.ShowSeat
	bookings     map[uuid.UUID]entity.Booking
	bookingSeats map[uuid.UUID]entity.BookingSeat
}

func newState() *state {
	return &state{
		movies:       map[uuid.UUID]entity.Movie{},
		cinemas:      map[uuid.UUID]entity.Cinema{},
		halls:        map[uuid.UUID]entity.Hall{},
		seats:        map[uuid.UUID]entity.Seat{},
		shows:        map[uuid.UUID]entity.Show{},
		showSeats:    map[uuid.UUID]entity.ShowSeat{},
		bookings:     map[uuid.UUID]entity.Booking{},
		bookingSeats: map[uuid.UUID]entity.BookingSeat{},
	}
}

// clone copies every table. Entities are stored by value and pointer fields
// are replaced rather than mutated, so a shallow map copy is enough.
func (st *state) clone() *state {
	return &state{
		movies:       maps.Clone(st.movies),
		cinemas:      maps.Clone(st.cinemas),
		halls:        maps.Clone(st.halls),
		seats:        maps.Clone(st.seats),
		shows:        maps.Clone(st.shows),
		showSeats:    maps.Clone(st.showSeats),
		bookings:     maps.Clone(st.bookings),
		bookingSeats: maps.Clone(st.bookingSeats),
	}
}

// handle is how a repository reaches the state: directly inside a
// transaction, or through the store locks outside of one.
type handle interface {
	read(fn func(st *state))
	write(fn func(st *state) error) error
}

// Store keeps committed state behind an RWMutex. Writers, including whole
// transactions, are serialized by txMu; a transaction works on a private
// copy that replaces the committed state on success.
type Store struct {
	txMu  sync.Mutex
	mu    sync.RWMutex
	cur   *state
	repos *repository.Repository
}

func NewStore() *Store {
	s := &Store{cur: newState()}
	s.repos = newRepository(liveHandle{s: s})
	return s
}

var _ repository.Store = (*Store)(nil)

func (s *Store) Repos() *repository.Repository {
	return s.repos
}

// WithTx must not call s.Repos() write methods from fn; doing so deadlocks on txMu.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx *repository.Repository) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	work := s.cur.clone()
	s.mu.RUnlock()

	if err := fn(ctx, newRepository(txHandle{st: work})); err != nil {
		return err
	}

	s.mu.Lock()
	s.cur = work
	s.mu.Unlock()
	return nil
}

type liveHandle struct {
	s *Store
}

func (h liveHandle) read(fn func(st *state)) {
	h.s.mu.RLock()
	defer h.s.mu.RUnlock()
	fn(h.s.cur)
}

func (h liveHandle) write(fn func(st *state) error) error {
	h.s.txMu.Lock()
	defer h.s.txMu.Unlock()
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	return fn(h.s.cur)
}

type txHandle struct {
	st *state
}

func (h txHandle) read(fn func(st *state)) {
	fn(h.st)
}

func (h txHandle) write(fn func(st *state) error) error {
	return fn(h.st)
}

func newRepository(h handle) *repository.Repository {
	return &repository.Repository{
		Movie:       &movieRepo{h: h},
		Cinema:      &cinemaRepo{h: h},
		Hall:        &hallRepo{h: h},
		Seat:        &seatRepo{h: h},
		Show:        &showRepo{h: h},
		ShowSeat:    &showSeatRepo{h: h},
		Booking:     &bookingRepo{h: h},
		BookingSeat: &bookingSeatRepo{h: h},
	}
}

func lessID(a, b uuid.UUID) bool {
	return bytes.Compare(a[:], b[:]) < 0
}

func idSet(ids []uuid.UUID) map[uuid.UUID]struct{} {
	set := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
