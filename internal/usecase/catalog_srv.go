package usecase

import (
	"context"
	"fmt"
	"time"

	"cinema-reservation/internal/data/entity"
	"cinema-reservation/internal/data/repository"
	"cinema-reservation/internal/domain"
	"cinema-reservation/internal/dto/request"
	"cinema-reservation/internal/dto/response"
	"cinema-reservation/internal/pricing"
	"cinema-reservation/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CatalogService interface {
	// Public endpoints
	ListMovies(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.MovieResponse], error)
	GetMovie(ctx context.Context, movieID string) (*response.MovieResponse, error)
	GetSeatLayout(ctx context.Context, hallID string) (*response.HallResponse, error)
	ListShows(ctx context.Context, filter request.ShowFilter) ([]response.ShowResponse, error)
	GetShow(ctx context.Context, showID string) (*response.ShowResponse, error)

	// Admin endpoints
	CreateMovie(ctx context.Context, req *request.MovieRequest) (*response.MovieResponse, error)
	DeleteMovie(ctx context.Context, movieID string) error
	CreateCinema(ctx context.Context, req *request.CinemaRequest) (*response.CinemaResponse, error)
	CreateHall(ctx context.Context, cinemaID string, req *request.HallRequest) (*response.HallResponse, error)
	ScheduleShow(ctx context.Context, req *request.ShowRequest) (*response.ShowResponse, error)
	RepriceShow(ctx context.Context, showID string, req *request.RepriceRequest) (*response.ShowResponse, error)
	DeleteShow(ctx context.Context, showID string) error
}

type catalogService struct {
	store    repository.Store
	repo     *repository.Repository
	resolver *pricing.Resolver
	log      *zap.Logger
}

func NewCatalogService(store repository.Store, resolver *pricing.Resolver, log *zap.Logger) CatalogService {
	return &catalogService{
		store:    store,
		repo:     store.Repos(),
		resolver: resolver,
		log:      log.With(zap.String("service", "catalog")),
	}
}

func (s *catalogService) ListMovies(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.MovieResponse], error) {
	limit := req.Limit()
	offset := req.Offset()

	movies, err := s.repo.Movie.FindAll(ctx, limit, offset)
	if err != nil {
		s.log.Error("Failed to get movies",
			zap.Error(err),
			zap.Int("page", req.Page),
			zap.Int("per_page", req.PerPage),
		)
		return nil, fmt.Errorf("get movies: %w", err)
	}

	total, err := s.repo.Movie.CountAll(ctx)
	if err != nil {
		s.log.Error("Failed to count movies", zap.Error(err))
		return nil, fmt.Errorf("count movies: %w", err)
	}

	movieResponses := make([]response.MovieResponse, len(movies))
	for i, movie := range movies {
		movieResponses[i] = response.MovieToResponse(movie)
	}

	return response.NewPaginatedResponse(movieResponses, req.Page, limit, total), nil
}

func (s *catalogService) GetMovie(ctx context.Context, movieID string) (*response.MovieResponse, error) {
	id, err := parseID("movie_id", movieID)
	if err != nil {
		return nil, err
	}

	movie, err := s.repo.Movie.FindByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to get movie by ID", zap.Error(err), zap.String("movie_id", movieID))
		return nil, fmt.Errorf("get movie %s: %w", movieID, err)
	}
	if movie == nil {
		return nil, domain.NotFound("movie", id)
	}

	resp := response.MovieToResponse(movie)
	return &resp, nil
}

func (s *catalogService) CreateMovie(ctx context.Context, req *request.MovieRequest) (*response.MovieResponse, error) {
	if err := validate(req); err != nil {
		s.log.Warn("Create movie validation failed", zap.Error(err))
		return nil, err
	}

	releaseDate, err := time.Parse("2006-01-02", req.ReleaseDate)
	if err != nil {
		return nil, domain.Invalid("release_date", "Must match format 2006-01-02")
	}

	now := time.Now()
	movie := &entity.Movie{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Title:             req.Title,
		Description:       req.Description,
		DurationInMinutes: req.DurationInMinutes,
		Language:          req.Language,
		Country:           req.Country,
		Genre:             req.Genre,
		ReleaseDate:       releaseDate,
	}

	if err := s.repo.Movie.Create(ctx, movie); err != nil {
		s.log.Error("Failed to create movie", zap.Error(err), zap.String("title", req.Title))
		return nil, fmt.Errorf("create movie: %w", err)
	}

	s.log.Info("Movie created",
		zap.String("movie_id", movie.ID.String()),
		zap.String("title", movie.Title),
	)

	resp := response.MovieToResponse(movie)
	return &resp, nil
}

// DeleteMovie tombstones a movie no live show refers to.
func (s *catalogService) DeleteMovie(ctx context.Context, movieID string) error {
	id, err := parseID("movie_id", movieID)
	if err != nil {
		return err
	}

	err = s.store.WithTx(ctx, func(ctx context.Context, tx *repository.Repository) error {
		movie, err := tx.Movie.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if movie == nil {
			return domain.NotFound("movie", id)
		}

		shows, err := tx.Show.CountByMovieID(ctx, id)
		if err != nil {
			return err
		}
		if shows > 0 {
			return domain.InvalidState("movie %s still has %d scheduled shows", id, shows)
		}

		return tx.Movie.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.log.Info("Movie deleted", zap.String("movie_id", movieID))
	return nil
}

func (s *catalogService) CreateCinema(ctx context.Context, req *request.CinemaRequest) (*response.CinemaResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	now := time.Now()
	cinema := &entity.Cinema{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name: req.Name,
		City: req.City,
	}

	if err := s.repo.Cinema.Create(ctx, cinema); err != nil {
		s.log.Error("Failed to create cinema", zap.Error(err), zap.String("name", req.Name))
		return nil, fmt.Errorf("create cinema: %w", err)
	}

	s.log.Info("Cinema created", zap.String("cinema_id", cinema.ID.String()), zap.String("name", cinema.Name))

	resp := response.CinemaToResponse(cinema)
	return &resp, nil
}

// CreateHall stores a hall with its full seat layout.
func (s *catalogService) CreateHall(ctx context.Context, cinemaID string, req *request.HallRequest) (*response.HallResponse, error) {
	id, err := parseID("cinema_id", cinemaID)
	if err != nil {
		return nil, err
	}
	if err := validate(req); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(req.Seats))
	for _, seat := range req.Seats {
		if _, dup := seen[seat.SeatNumber]; dup {
			return nil, domain.Invalid("seats", fmt.Sprintf("Seat number %s is listed more than once", seat.SeatNumber))
		}
		seen[seat.SeatNumber] = struct{}{}
	}

	now := time.Now()
	hall := &entity.Hall{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		CinemaID:   id,
		Name:       req.Name,
		TotalSeats: len(req.Seats),
	}

	seats := make([]*entity.Seat, len(req.Seats))
	for i, seat := range req.Seats {
		seats[i] = &entity.Seat{
			Base: entity.Base{
				ID:        uuid.New(),
				CreatedAt: now,
				UpdatedAt: now,
			},
			HallID:     hall.ID,
			SeatNumber: seat.SeatNumber,
			SeatType:   entity.SeatType(seat.SeatType),
		}
	}

	err = s.store.WithTx(ctx, func(ctx context.Context, tx *repository.Repository) error {
		cinema, err := tx.Cinema.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if cinema == nil {
			return domain.NotFound("cinema", id)
		}

		if err := tx.Hall.Create(ctx, hall); err != nil {
			return err
		}
		if err := tx.Seat.CreateBatch(ctx, seats); err != nil {
			return err
		}
		return tx.Cinema.IncrementHalls(ctx, id)
	})
	if err != nil {
		s.log.Warn("Failed to create hall", zap.Error(err), zap.String("cinema_id", cinemaID))
		return nil, err
	}

	s.log.Info("Hall created",
		zap.String("hall_id", hall.ID.String()),
		zap.String("cinema_id", cinemaID),
		zap.Int("seats", hall.TotalSeats),
	)

	resp := response.HallToResponse(hall, seats)
	return &resp, nil
}

func (s *catalogService) GetSeatLayout(ctx context.Context, hallID string) (*response.HallResponse, error) {
	id, err := parseID("hall_id", hallID)
	if err != nil {
		return nil, err
	}

	hall, err := s.repo.Hall.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get hall %s: %w", hallID, err)
	}
	if hall == nil {
		return nil, domain.NotFound("hall", id)
	}

	seats, err := s.repo.Seat.FindByHallID(ctx, id)
	if err != nil {
		s.log.Error("Failed to get seat layout", zap.Error(err), zap.String("hall_id", hallID))
		return nil, fmt.Errorf("get seats for hall %s: %w", hallID, err)
	}

	resp := response.HallToResponse(hall, seats)
	return &resp, nil
}

func (s *catalogService) ListShows(ctx context.Context, filter request.ShowFilter) ([]response.ShowResponse, error) {
	var (
		f   repository.ShowFilter
		err error
	)
	fields := map[string]string{}
	if f.MovieID, err = utils.ParseOptionalUUID(filter.MovieID); err != nil {
		fields["movie_id"] = "Must be a valid UUID"
	}
	if f.HallID, err = utils.ParseOptionalUUID(filter.HallID); err != nil {
		fields["hall_id"] = "Must be a valid UUID"
	}
	if f.From, err = utils.ParseOptionalTime(filter.From); err != nil {
		fields["from"] = "Must be RFC3339 or 2006-01-02"
	}
	if f.To, err = utils.ParseOptionalTime(filter.To); err != nil {
		fields["to"] = "Must be RFC3339 or 2006-01-02"
	}
	if len(fields) > 0 {
		return nil, domain.NewValidationError(fields)
	}

	shows, err := s.repo.Show.Find(ctx, f)
	if err != nil {
		s.log.Error("Failed to list shows", zap.Error(err))
		return nil, fmt.Errorf("list shows: %w", err)
	}

	result := make([]response.ShowResponse, 0, len(shows))
	for _, show := range shows {
		resp, err := s.showWithAvailability(ctx, show)
		if err != nil {
			return nil, err
		}
		if filter.Bookable && *resp.AvailableSeats == 0 {
			continue
		}
		result = append(result, resp)
	}

	return result, nil
}

func (s *catalogService) GetShow(ctx context.Context, showID string) (*response.ShowResponse, error) {
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

	resp, err := s.showWithAvailability(ctx, show)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// ScheduleShow creates a show and its priced seat map in one transaction.
// The hall row lock keeps two concurrent schedules from overlapping.
func (s *catalogService) ScheduleShow(ctx context.Context, req *request.ShowRequest) (*response.ShowResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	movieID, err := parseID("movie_id", req.MovieID)
	if err != nil {
		return nil, err
	}
	hallID, err := parseID("hall_id", req.HallID)
	if err != nil {
		return nil, err
	}
	start, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		return nil, domain.Invalid("start_time", "Must be RFC3339")
	}

	now := time.Now()
	show := &entity.Show{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		MovieID:   movieID,
		HallID:    hallID,
		ShowDate:  time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location()),
		StartTime: start,
		BasePrice: pricing.Round(req.BasePrice),
	}
	var seatCount int

	err = s.store.WithTx(ctx, func(ctx context.Context, tx *repository.Repository) error {
		movie, err := tx.Movie.FindByID(ctx, movieID)
		if err != nil {
			return err
		}
		if movie == nil {
			return domain.NotFound("movie", movieID)
		}

		hall, err := tx.Hall.FindByIDForUpdate(ctx, hallID)
		if err != nil {
			return err
		}
		if hall == nil {
			return domain.NotFound("hall", hallID)
		}

		show.EndTime = start.Add(movie.Duration())

		overlapping, err := tx.Show.FindOverlapping(ctx, hallID, show.StartTime, show.EndTime)
		if err != nil {
			return err
		}
		if len(overlapping) > 0 {
			return domain.InvalidState("hall %s already has show %s from %s to %s",
				hallID, overlapping[0].ID,
				overlapping[0].StartTime.Format(time.RFC3339), overlapping[0].EndTime.Format(time.RFC3339))
		}

		seats, err := tx.Seat.FindByHallID(ctx, hallID)
		if err != nil {
			return err
		}
		if len(seats) == 0 {
			return domain.InvalidState("hall %s has no seats", hallID)
		}

		if err := tx.Show.Create(ctx, show); err != nil {
			return err
		}
		seatCount = len(seats)
		return tx.ShowSeat.CreateBatch(ctx, materializeShowSeats(show, seats, s.resolver, now))
	})
	if err != nil {
		s.log.Warn("Failed to schedule show",
			zap.Error(err),
			zap.String("movie_id", req.MovieID),
			zap.String("hall_id", req.HallID),
		)
		return nil, err
	}

	s.log.Info("Show scheduled",
		zap.String("show_id", show.ID.String()),
		zap.String("hall_id", req.HallID),
		zap.Time("start_time", show.StartTime),
		zap.Int("seats", seatCount),
	)

	resp := response.ShowToResponse(show)
	resp.AvailableSeats = &seatCount
	return &resp, nil
}

// RepriceShow changes the base price only. Seat prices already on the
// ledger keep the value they were materialized with.
func (s *catalogService) RepriceShow(ctx context.Context, showID string, req *request.RepriceRequest) (*response.ShowResponse, error) {
	id, err := parseID("show_id", showID)
	if err != nil {
		return nil, err
	}
	if err := validate(req); err != nil {
		return nil, err
	}

	show, err := s.repo.Show.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get show %s: %w", showID, err)
	}
	if show == nil {
		return nil, domain.NotFound("show", id)
	}

	price := pricing.Round(req.BasePrice)
	if err := s.repo.Show.UpdateBasePrice(ctx, id, price); err != nil {
		s.log.Error("Failed to reprice show", zap.Error(err), zap.String("show_id", showID))
		return nil, fmt.Errorf("reprice show %s: %w", showID, err)
	}
	show.BasePrice = price

	s.log.Info("Show repriced", zap.String("show_id", showID), zap.Float64("base_price", price))

	resp := response.ShowToResponse(show)
	return &resp, nil
}

// DeleteShow tombstones a show that has no held or booked seats.
func (s *catalogService) DeleteShow(ctx context.Context, showID string) error {
	id, err := parseID("show_id", showID)
	if err != nil {
		return err
	}

	err = s.store.WithTx(ctx, func(ctx context.Context, tx *repository.Repository) error {
		show, err := tx.Show.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if show == nil {
			return domain.NotFound("show", id)
		}

		counts, err := tx.ShowSeat.CountByStatus(ctx, id)
		if err != nil {
			return err
		}
		if taken := counts[entity.ShowSeatStatusHeld] + counts[entity.ShowSeatStatusBooked]; taken > 0 {
			return domain.InvalidState("show %s has %d held or booked seats", id, taken)
		}

		return tx.Show.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.log.Info("Show deleted", zap.String("show_id", showID))
	return nil
}

func (s *catalogService) showWithAvailability(ctx context.Context, show *entity.Show) (response.ShowResponse, error) {
	counts, err := s.repo.ShowSeat.CountByStatus(ctx, show.ID)
	if err != nil {
		s.log.Error("Failed to count show seats", zap.Error(err), zap.String("show_id", show.ID.String()))
		return response.ShowResponse{}, fmt.Errorf("count seats for show %s: %w", show.ID, err)
	}

	available := counts[entity.ShowSeatStatusAvailable]
	resp := response.ShowToResponse(show)
	resp.AvailableSeats = &available
	return resp, nil
}
