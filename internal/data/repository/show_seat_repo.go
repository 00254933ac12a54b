package repository

import (
	"context"
	"fmt"
	"time"

	"cinema-reservation/internal/data/entity"
	"cinema-reservation/pkg/database"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ShowSeatRepository interface {
	CreateBatch(ctx context.Context, seats []*entity.ShowSeat) error
	FindByShowID(ctx context.Context, showID uuid.UUID, status *entity.ShowSeatStatus) ([]*entity.ShowSeat, error)
	// FindByIDsForUpdate row-locks the seats, ordered by id.
	FindByIDsForUpdate(ctx context.Context, ids []uuid.UUID) ([]*entity.ShowSeat, error)
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*entity.ShowSeat, error)
	CountByStatus(ctx context.Context, showID uuid.UUID) (map[entity.ShowSeatStatus]int, error)

	// State transitions. Each returns the number of seats that moved.
	Hold(ctx context.Context, ids []uuid.UUID, bookingID uuid.UUID, heldUntil time.Time) (int64, error)
	MarkBooked(ctx context.Context, bookingID uuid.UUID) (int64, error)
	ReleaseByBookingID(ctx context.Context, bookingID uuid.UUID) (int64, error)
}

type showSeatRepository struct {
	db  database.DBTX
	log *zap.Logger
}

func NewShowSeatRepository(db database.DBTX, log *zap.Logger) ShowSeatRepository {
	return &showSeatRepository{
		db:  db,
		log: log.With(zap.String("repository", "show_seat")),
	}
}

const showSeatColumns = `id, show_id, seat_id, price, status, booking_id, held_until, created_at, updated_at, deleted_at`

func (r *showSeatRepository) CreateBatch(ctx context.Context, seats []*entity.ShowSeat) error {
	if len(seats) == 0 {
		return nil
	}

	query := `INSERT INTO show_seats (id, show_id, seat_id, price, status, created_at, updated_at) VALUES `
	args := []interface{}{}

	for i, seat := range seats {
		if i > 0 {
			query += ", "
		}
		query += fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			i*7+1, i*7+2, i*7+3, i*7+4, i*7+5, i*7+6, i*7+7)

		args = append(args,
			seat.ID,
			seat.ShowID,
			seat.SeatID,
			seat.Price,
			seat.Status,
			seat.CreatedAt,
			seat.UpdatedAt,
		)
	}

	_, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to create batch show seats",
			zap.Error(err),
			zap.Int("count", len(seats)),
		)
		return fmt.Errorf("create batch show seats: %w", err)
	}

	return nil
}

func (r *showSeatRepository) FindByShowID(ctx context.Context, showID uuid.UUID, status *entity.ShowSeatStatus) ([]*entity.ShowSeat, error) {
	if status != nil {
		query := `
			SELECT ` + showSeatColumns + `
			FROM show_seats
			WHERE show_id = $1 AND status = $2 AND deleted_at IS NULL
			ORDER BY id
		`
		return r.findShowSeats(ctx, query, showID, *status)
	}

	query := `
		SELECT ` + showSeatColumns + `
		FROM show_seats
		WHERE show_id = $1 AND deleted_at IS NULL
		ORDER BY id
	`
	return r.findShowSeats(ctx, query, showID)
}

func (r *showSeatRepository) FindByIDsForUpdate(ctx context.Context, ids []uuid.UUID) ([]*entity.ShowSeat, error) {
	if len(ids) == 0 {
		return []*entity.ShowSeat{}, nil
	}

	query := `
		SELECT ` + showSeatColumns + `
		FROM show_seats
		WHERE id = ANY($1) AND deleted_at IS NULL
		ORDER BY id
		FOR UPDATE
	`
	return r.findShowSeats(ctx, query, ids)
}

func (r *showSeatRepository) FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*entity.ShowSeat, error) {
	query := `
		SELECT ` + showSeatColumns + `
		FROM show_seats
		WHERE booking_id = $1 AND deleted_at IS NULL
		ORDER BY id
	`
	return r.findShowSeats(ctx, query, bookingID)
}

func (r *showSeatRepository) findShowSeats(ctx context.Context, query string, args ...any) ([]*entity.ShowSeat, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to find show seats", zap.Error(err))
		return nil, fmt.Errorf("find show seats: %w", err)
	}
	defer rows.Close()

	var seats []*entity.ShowSeat
	for rows.Next() {
		var seat entity.ShowSeat
		err := rows.Scan(
			&seat.ID,
			&seat.ShowID,
			&seat.SeatID,
			&seat.Price,
			&seat.Status,
			&seat.BookingID,
			&seat.HeldUntil,
			&seat.CreatedAt,
			&seat.UpdatedAt,
			&seat.DeletedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan show seat row", zap.Error(err))
			return nil, fmt.Errorf("scan show seat row: %w", err)
		}
		seats = append(seats, &seat)
	}

	return seats, rows.Err()
}

func (r *showSeatRepository) CountByStatus(ctx context.Context, showID uuid.UUID) (map[entity.ShowSeatStatus]int, error) {
	query := `
		SELECT status, COUNT(*)
		FROM show_seats
		WHERE show_id = $1 AND deleted_at IS NULL
		GROUP BY status
	`

	rows, err := r.db.Query(ctx, query, showID)
	if err != nil {
		r.log.Error("Failed to count show seats by status",
			zap.Error(err),
			zap.String("show_id", showID.String()),
		)
		return nil, fmt.Errorf("count show seats of show %s: %w", showID.String(), err)
	}
	defer rows.Close()

	counts := make(map[entity.ShowSeatStatus]int)
	for rows.Next() {
		var status entity.ShowSeatStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan show seat count: %w", err)
		}
		counts[status] = count
	}

	return counts, rows.Err()
}

func (r *showSeatRepository) Hold(ctx context.Context, ids []uuid.UUID, bookingID uuid.UUID, heldUntil time.Time) (int64, error) {
	query := `
		UPDATE show_seats
		SET status = 'held', booking_id = $2, held_until = $3, updated_at = NOW()
		WHERE id = ANY($1) AND status = 'available' AND deleted_at IS NULL
	`

	result, err := r.db.Exec(ctx, query, ids, bookingID, heldUntil)
	if err != nil {
		r.log.Error("Failed to hold show seats",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
			zap.Int("seat_count", len(ids)),
		)
		return 0, fmt.Errorf("hold seats for booking %s: %w", bookingID.String(), err)
	}

	return result.RowsAffected(), nil
}

func (r *showSeatRepository) MarkBooked(ctx context.Context, bookingID uuid.UUID) (int64, error) {
	query := `
		UPDATE show_seats
		SET status = 'booked', held_until = NULL, updated_at = NOW()
		WHERE booking_id = $1 AND status = 'held'
	`

	result, err := r.db.Exec(ctx, query, bookingID)
	if err != nil {
		r.log.Error("Failed to book show seats",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
		)
		return 0, fmt.Errorf("book seats of booking %s: %w", bookingID.String(), err)
	}

	return result.RowsAffected(), nil
}

func (r *showSeatRepository) ReleaseByBookingID(ctx context.Context, bookingID uuid.UUID) (int64, error) {
	query := `
		UPDATE show_seats
		SET status = 'available', booking_id = NULL, held_until = NULL, updated_at = NOW()
		WHERE booking_id = $1
	`

	result, err := r.db.Exec(ctx, query, bookingID)
	if err != nil {
		r.log.Error("Failed to release show seats",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
		)
		return 0, fmt.Errorf("release seats of booking %s: %w", bookingID.String(), err)
	}

	return result.RowsAffected(), nil
}
