package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cinema-reservation/internal/data/entity"
	"cinema-reservation/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// ShowFilter narrows ListShows. Nil fields are ignored; From/To bound start_time as [From, To).
type ShowFilter struct {
	MovieID *uuid.UUID
	HallID  *uuid.UUID
	From    *time.Time
	To      *time.Time
}

type ShowRepository interface {
	Create(ctx context.Context, show *entity.Show) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Show, error)
	Find(ctx context.Context, filter ShowFilter) ([]*entity.Show, error)
	// FindOverlapping returns live shows in the hall whose window intersects [start, end).
	FindOverlapping(ctx context.Context, hallID uuid.UUID, start, end time.Time) ([]*entity.Show, error)
	CountByMovieID(ctx context.Context, movieID uuid.UUID) (int64, error)
	UpdateBasePrice(ctx context.Context, id uuid.UUID, basePrice float64) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type showRepository struct {
	db  database.DBTX
	log *zap.Logger
}

func NewShowRepository(db database.DBTX, log *zap.Logger) ShowRepository {
	return &showRepository{
		db:  db,
		log: log.With(zap.String("repository", "show")),
	}
}

const showColumns = `id, movie_id, hall_id, show_date, start_time, end_time, base_price, created_at, updated_at, deleted_at`

func scanShow(row pgx.Row) (*entity.Show, error) {
	var show entity.Show
	err := row.Scan(
		&show.ID,
		&show.MovieID,
		&show.HallID,
		&show.ShowDate,
		&show.StartTime,
		&show.EndTime,
		&show.BasePrice,
		&show.CreatedAt,
		&show.UpdatedAt,
		&show.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &show, nil
}

func (r *showRepository) Create(ctx context.Context, show *entity.Show) error {
	query := `
		INSERT INTO shows (id, movie_id, hall_id, show_date, start_time, end_time, base_price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Exec(ctx, query,
		show.ID,
		show.MovieID,
		show.HallID,
		show.ShowDate,
		show.StartTime,
		show.EndTime,
		show.BasePrice,
		show.CreatedAt,
		show.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create show",
			zap.Error(err),
			zap.String("movie_id", show.MovieID.String()),
			zap.String("hall_id", show.HallID.String()),
		)
		return fmt.Errorf("create show: %w", err)
	}

	return nil
}

func (r *showRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Show, error) {
	query := `SELECT ` + showColumns + ` FROM shows WHERE id = $1 AND deleted_at IS NULL`

	show, err := scanShow(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find show by ID",
			zap.Error(err),
			zap.String("show_id", id.String()),
		)
		return nil, fmt.Errorf("find show by ID %s: %w", id.String(), err)
	}

	return show, nil
}

func (r *showRepository) Find(ctx context.Context, filter ShowFilter) ([]*entity.Show, error) {
	conditions := []string{"deleted_at IS NULL"}
	args := []any{}

	if filter.MovieID != nil {
		args = append(args, *filter.MovieID)
		conditions = append(conditions, fmt.Sprintf("movie_id = $%d", len(args)))
	}
	if filter.HallID != nil {
		args = append(args, *filter.HallID)
		conditions = append(conditions, fmt.Sprintf("hall_id = $%d", len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		conditions = append(conditions, fmt.Sprintf("start_time >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		conditions = append(conditions, fmt.Sprintf("start_time < $%d", len(args)))
	}

	query := `SELECT ` + showColumns + ` FROM shows WHERE ` + strings.Join(conditions, " AND ") + ` ORDER BY start_time`

	return r.findShows(ctx, query, args...)
}

func (r *showRepository) FindOverlapping(ctx context.Context, hallID uuid.UUID, start, end time.Time) ([]*entity.Show, error) {
	query := `
		SELECT ` + showColumns + `
		FROM shows
		WHERE hall_id = $1 AND deleted_at IS NULL AND start_time < $3 AND end_time > $2
		ORDER BY start_time
	`

	return r.findShows(ctx, query, hallID, start, end)
}

func (r *showRepository) findShows(ctx context.Context, query string, args ...any) ([]*entity.Show, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to find shows", zap.Error(err))
		return nil, fmt.Errorf("find shows: %w", err)
	}
	defer rows.Close()

	var shows []*entity.Show
	for rows.Next() {
		show, err := scanShow(rows)
		if err != nil {
			r.log.Error("Failed to scan show row", zap.Error(err))
			return nil, fmt.Errorf("scan show row: %w", err)
		}
		shows = append(shows, show)
	}

	return shows, rows.Err()
}

func (r *showRepository) CountByMovieID(ctx context.Context, movieID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM shows WHERE movie_id = $1 AND deleted_at IS NULL`

	var count int64
	if err := r.db.QueryRow(ctx, query, movieID).Scan(&count); err != nil {
		r.log.Error("Failed to count shows by movie ID",
			zap.Error(err),
			zap.String("movie_id", movieID.String()),
		)
		return 0, fmt.Errorf("count shows by movie ID %s: %w", movieID.String(), err)
	}

	return count, nil
}

func (r *showRepository) UpdateBasePrice(ctx context.Context, id uuid.UUID, basePrice float64) error {
	query := `UPDATE shows SET base_price = $2, updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.Exec(ctx, query, id, basePrice)
	if err != nil {
		r.log.Error("Failed to update show base price",
			zap.Error(err),
			zap.String("show_id", id.String()),
		)
		return fmt.Errorf("update base price of show %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("show %s not found", id.String())
	}

	return nil
}

func (r *showRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE shows SET deleted_at = NOW(), updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to delete show",
			zap.Error(err),
			zap.String("show_id", id.String()),
		)
		return fmt.Errorf("delete show %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("show %s not found or already deleted", id.String())
	}

	r.log.Info("Show soft deleted", zap.String("show_id", id.String()))
	return nil
}
