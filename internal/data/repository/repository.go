package repository

import (
	"context"
	"fmt"

	"cinema-reservation/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type Repository struct {
	Movie       MovieRepository
	Cinema      CinemaRepository
	Hall        HallRepository
	Seat        SeatRepository
	Show        ShowRepository
	ShowSeat    ShowSeatRepository
	Booking     BookingRepository
	BookingSeat BookingSeatRepository
}

// Store hands out repositories bound either to the connection pool or to a
// single transaction.
type Store interface {
	Repos() *Repository
	// WithTx runs fn in one transaction. It commits when fn returns nil and
	// rolls back otherwise. fn must only use the repositories it receives.
	WithTx(ctx context.Context, fn func(ctx context.Context, tx *Repository) error) error
}

func NewRepository(db database.DBTX, log *zap.Logger) *Repository {
	return &Repository{
		Movie:       NewMovieRepository(db, log),
		Cinema:      NewCinemaRepository(db, log),
		Hall:        NewHallRepository(db, log),
		Seat:        NewSeatRepository(db, log),
		Show:        NewShowRepository(db, log),
		ShowSeat:    NewShowSeatRepository(db, log),
		Booking:     NewBookingRepository(db, log),
		BookingSeat: NewBookingSeatRepository(db, log),
	}
}

type pgStore struct {
	db    database.PgxIface
	repos *Repository
	log   *zap.Logger
}

// NewStore returns the Postgres backed Store.
func NewStore(db database.PgxIface, log *zap.Logger) Store {
	return &pgStore{
		db:    db,
		repos: NewRepository(db, log),
		log:   log.With(zap.String("repository", "store")),
	}
}

func (s *pgStore) Repos() *Repository {
	return s.repos
}

func (s *pgStore) WithTx(ctx context.Context, fn func(ctx context.Context, tx *Repository) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		s.log.Error("Failed to begin transaction", zap.Error(err))
		return fmt.Errorf("begin transaction: %w", err)
	}

	// Rollback setelah commit tidak berpengaruh
	defer func() {
		if err := tx.Rollback(ctx); err != nil && err != pgx.ErrTxClosed {
			s.log.Warn("Failed to rollback transaction", zap.Error(err))
		}
	}()

	if err := fn(ctx, NewRepository(tx, s.log)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		s.log.Error("Failed to commit transaction", zap.Error(err))
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}
