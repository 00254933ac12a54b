package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"cinema-reservation/internal/data/entity"
	"cinema-reservation/internal/data/repository"
	"cinema-reservation/internal/domain"
	"cinema-reservation/internal/dto/response"
	"cinema-reservation/internal/pricing"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LedgerService reads the per-show seat map. Writes to it go through the
// reservation engine, or through materializeShowSeats when a show is scheduled.
type LedgerService interface {
	SeatsForShow(ctx context.Context, showID string, status string) ([]response.ShowSeatResponse, error)
	AvailableSeats(ctx context.Context, showID string) ([]uuid.UUID, error)
}

type ledgerService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewLedgerService(repo *repository.Repository, log *zap.Logger) LedgerService {
	return &ledgerService{
		repo: repo,
		log:  log.With(zap.String("service", "ledger")),
	}
}

func (s *ledgerService) SeatsForShow(ctx context.Context, showID string, status string) ([]response.ShowSeatResponse, error) {
	id, err := parseID("show_id", showID)
	if err != nil {
		return nil, err
	}

	var filter *entity.ShowSeatStatus
	if status != "" {
		st := entity.ShowSeatStatus(status)
		if !st.Valid() {
			return nil, domain.Invalid("status", "Must be one of: available, held, booked")
		}
		filter = &st
	}

	show, err := s.repo.Show.FindByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to get show", zap.Error(err), zap.String("show_id", showID))
		return nil, fmt.Errorf("get show %s: %w", showID, err)
	}
	if show == nil {
		return nil, domain.NotFound("show", id)
	}

	showSeats, err := s.repo.ShowSeat.FindByShowID(ctx, id, filter)
	if err != nil {
		s.log.Error("Failed to get show seats", zap.Error(err), zap.String("show_id", showID))
		return nil, fmt.Errorf("get show seats: %w", err)
	}

	seats, err := s.repo.Seat.FindByHallID(ctx, show.HallID)
	if err != nil {
		return nil, fmt.Errorf("get hall seats: %w", err)
	}
	byID := make(map[uuid.UUID]*entity.Seat, len(seats))
	for _, seat := range seats {
		byID[seat.ID] = seat
	}

	result := make([]response.ShowSeatResponse, len(showSeats))
	for i, ss := range showSeats {
		result[i] = response.ShowSeatToResponse(ss, byID[ss.SeatID])
	}
	sort.Slice(result, func(i, j int) bool { return result[i].SeatNumber < result[j].SeatNumber })

	return result, nil
}

func (s *ledgerService) AvailableSeats(ctx context.Context, showID string) ([]uuid.UUID, error) {
	id, err := parseID("show_id", showID)
	if err != nil {
		return nil, err
	}

	show, err := s.repo.Show.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get show %s: %w", showID, err)
	}
	if show == nil {
		return nil, domain.NotFound("show", id)
	}

	available := entity.ShowSeatStatusAvailable
	seats, err := s.repo.ShowSeat.FindByShowID(ctx, id, &available)
	if err != nil {
		return nil, fmt.Errorf("get available seats: %w", err)
	}

	ids := make([]uuid.UUID, len(seats))
	for i, ss := range seats {
		ids[i] = ss.ID
	}
	return ids, nil
}

// materializeShowSeats fans a hall layout out into one available, priced
// ShowSeat per physical seat.
func materializeShowSeats(show *entity.Show, seats []*entity.Seat, resolver *pricing.Resolver, now time.Time) []*entity.ShowSeat {
	showSeats := make([]*entity.ShowSeat, len(seats))
	for i, seat := range seats {
		showSeats[i] = &entity.ShowSeat{
			Base: entity.Base{
				ID:        uuid.New(),
				CreatedAt: now,
				UpdatedAt: now,
			},
			ShowID: show.ID,
			SeatID: seat.ID,
			Price:  resolver.PriceFor(show.BasePrice, seat.SeatType),
			Status: entity.ShowSeatStatusAvailable,
		}
	}
	return showSeats
}
