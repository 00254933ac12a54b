package repository

import (
	"context"
	"fmt"

	"cinema-reservation/internal/data/entity"
	"cinema-reservation/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type HallRepository interface {
	Create(ctx context.Context, hall *entity.Hall) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Hall, error)
	// FindByIDForUpdate locks the hall row so show scheduling in the hall is serialized.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Hall, error)
}

type hallRepository struct {
	db  database.DBTX
	log *zap.Logger
}

func NewHallRepository(db database.DBTX, log *zap.Logger) HallRepository {
	return &hallRepository{
		db:  db,
		log: log.With(zap.String("repository", "hall")),
	}
}

func (r *hallRepository) Create(ctx context.Context, hall *entity.Hall) error {
	query := `
		INSERT INTO halls (id, cinema_id, name, total_seats, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.Exec(ctx, query,
		hall.ID,
		hall.CinemaID,
		hall.Name,
		hall.TotalSeats,
		hall.CreatedAt,
		hall.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create hall",
			zap.Error(err),
			zap.String("cinema_id", hall.CinemaID.String()),
			zap.String("name", hall.Name),
		)
		return fmt.Errorf("create hall %s: %w", hall.Name, err)
	}

	return nil
}

func (r *hallRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Hall, error) {
	return r.findByID(ctx, id, "")
}

func (r *hallRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Hall, error) {
	return r.findByID(ctx, id, "FOR UPDATE")
}

func (r *hallRepository) findByID(ctx context.Context, id uuid.UUID, lock string) (*entity.Hall, error) {
	query := `
		SELECT id, cinema_id, name, total_seats, created_at, updated_at, deleted_at
		FROM halls
		WHERE id = $1 AND deleted_at IS NULL
	` + lock

	var hall entity.Hall
	err := r.db.QueryRow(ctx, query, id).Scan(
		&hall.ID,
		&hall.CinemaID,
		&hall.Name,
		&hall.TotalSeats,
		&hall.CreatedAt,
		&hall.UpdatedAt,
		&hall.DeletedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find hall by ID",
			zap.Error(err),
			zap.String("hall_id", id.String()),
		)
		return nil, fmt.Errorf("find hall by ID %s: %w", id.String(), err)
	}

	return &hall, nil
}
