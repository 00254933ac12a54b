package usecase

import (
	"context"
	"fmt"
	"time"

	"cinema-reservation/internal/data/repository"
	"cinema-reservation/internal/domain"
	"cinema-reservation/internal/dto/request"
	"cinema-reservation/internal/dto/response"
	"cinema-reservation/internal/reservation"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Reserver is the part of reservation.Engine the booking service drives.
type Reserver interface {
	Hold(ctx context.Context, req reservation.HoldRequest) (*reservation.Reservation, error)
	Confirm(ctx context.Context, bookingID uuid.UUID) (*reservation.Reservation, error)
	Cancel(ctx context.Context, bookingID uuid.UUID) (*reservation.Reservation, error)
}

type BookingService interface {
	CreateBooking(ctx context.Context, userID string, req *request.CreateBookingRequest) (*response.BookingResponse, error)
	ConfirmBooking(ctx context.Context, userID, bookingID string) (*response.BookingResponse, error)
	CancelBooking(ctx context.Context, userID, bookingID string) (*response.BookingResponse, error)
	GetBooking(ctx context.Context, userID, bookingID string) (*response.BookingDetailResponse, error)
	ListBookingsForUser(ctx context.Context, userID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error)
}

type bookingService struct {
	repo     *repository.Repository
	reserver Reserver
	log      *zap.Logger
}

func NewBookingService(repo *repository.Repository, reserver Reserver, log *zap.Logger) BookingService {
	return &bookingService{
		repo:     repo,
		reserver: reserver,
		log:      log.With(zap.String("service", "booking")),
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, userID string, req *request.CreateBookingRequest) (*response.BookingResponse, error) {
	if err := validate(req); err != nil {
		s.log.Warn("Create booking validation failed", zap.Error(err))
		return nil, err
	}

	userUUID, err := parseID("user_id", userID)
	if err != nil {
		return nil, err
	}
	showID, err := parseID("show_id", req.ShowID)
	if err != nil {
		return nil, err
	}

	seatIDs := make([]uuid.UUID, len(req.SeatIDs))
	for i, raw := range req.SeatIDs {
		if seatIDs[i], err = parseID("seat_ids", raw); err != nil {
			return nil, err
		}
	}

	res, err := s.reserver.Hold(ctx, reservation.HoldRequest{
		ShowID:  showID,
		SeatIDs: seatIDs,
		UserID:  userUUID,
		TTL:     time.Duration(req.TTLSeconds) * time.Second,
	})
	if err != nil {
		s.log.Info("Hold rejected",
			zap.Error(err),
			zap.String("user_id", userID),
			zap.String("show_id", req.ShowID),
		)
		return nil, err
	}

	s.log.Info("Booking created",
		zap.String("booking_id", res.Booking.ID.String()),
		zap.String("user_id", userID),
		zap.Int("seat_count", len(res.Seats)),
		zap.Float64("total_amount", res.Booking.TotalAmount),
	)

	resp := response.BookingToResponse(res.Booking, res.Seats)
	return &resp, nil
}

func (s *bookingService) ConfirmBooking(ctx context.Context, userID, bookingID string) (*response.BookingResponse, error) {
	id, err := s.ownedBooking(ctx, userID, bookingID)
	if err != nil {
		return nil, err
	}

	res, err := s.reserver.Confirm(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := response.BookingToResponse(res.Booking, res.Seats)
	return &resp, nil
}

func (s *bookingService) CancelBooking(ctx context.Context, userID, bookingID string) (*response.BookingResponse, error) {
	id, err := s.ownedBooking(ctx, userID, bookingID)
	if err != nil {
		return nil, err
	}

	res, err := s.reserver.Cancel(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := response.BookingToResponse(res.Booking, res.Seats)
	return &resp, nil
}

func (s *bookingService) GetBooking(ctx context.Context, userID, bookingID string) (*response.BookingDetailResponse, error) {
	id, err := s.ownedBooking(ctx, userID, bookingID)
	if err != nil {
		return nil, err
	}

	booking, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get booking %s: %w", bookingID, err)
	}
	if booking == nil {
		return nil, domain.NotFound("booking", id)
	}

	items, err := s.repo.BookingSeat.FindByBookingID(ctx, id)
	if err != nil {
		s.log.Error("Failed to get booking seats", zap.Error(err), zap.String("booking_id", bookingID))
		return nil, fmt.Errorf("get booking seats: %w", err)
	}

	return &response.BookingDetailResponse{
		BookingResponse: response.BookingToResponse(booking, items),
		ShowDetails:     s.showDetails(ctx, booking.ShowID),
	}, nil
}

func (s *bookingService) ListBookingsForUser(ctx context.Context, userID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	userUUID, err := parseID("user_id", userID)
	if err != nil {
		return nil, err
	}

	limit := req.Limit()
	offset := req.Offset()

	bookings, err := s.repo.Booking.FindByUserID(ctx, userUUID, limit, offset)
	if err != nil {
		s.log.Error("Failed to get user bookings",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		return nil, fmt.Errorf("get user bookings: %w", err)
	}

	total, err := s.repo.Booking.CountByUserID(ctx, userUUID)
	if err != nil {
		return nil, fmt.Errorf("count user bookings: %w", err)
	}

	bookingResponses := make([]response.BookingResponse, len(bookings))
	for i, booking := range bookings {
		items, err := s.repo.BookingSeat.FindByBookingID(ctx, booking.ID)
		if err != nil {
			return nil, fmt.Errorf("get seats for booking %s: %w", booking.ID, err)
		}
		bookingResponses[i] = response.BookingToResponse(booking, items)
	}

	return response.NewPaginatedResponse(bookingResponses, req.Page, limit, total), nil
}

// ownedBooking resolves bookingID and hides bookings of other users behind
// NotFound.
func (s *bookingService) ownedBooking(ctx context.Context, userID, bookingID string) (uuid.UUID, error) {
	userUUID, err := parseID("user_id", userID)
	if err != nil {
		return uuid.Nil, err
	}
	id, err := parseID("booking_id", bookingID)
	if err != nil {
		return uuid.Nil, err
	}

	booking, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to get booking", zap.Error(err), zap.String("booking_id", bookingID))
		return uuid.Nil, fmt.Errorf("get booking %s: %w", bookingID, err)
	}
	if booking == nil || booking.UserID != userUUID {
		return uuid.Nil, domain.NotFound("booking", id)
	}
	return id, nil
}

// showDetails is best effort; the booking stays readable after its show or
// movie is deleted.
func (s *bookingService) showDetails(ctx context.Context, showID uuid.UUID) response.ShowDetails {
	var details response.ShowDetails

	show, err := s.repo.Show.FindByID(ctx, showID)
	if err != nil || show == nil {
		s.log.Warn("Show for booking not available", zap.String("show_id", showID.String()), zap.Error(err))
		return details
	}
	details.StartTime = show.StartTime
	details.EndTime = show.EndTime

	if movie, err := s.repo.Movie.FindByID(ctx, show.MovieID); err == nil && movie != nil {
		details.MovieTitle = movie.Title
	}
	if hall, err := s.repo.Hall.FindByID(ctx, show.HallID); err == nil && hall != nil {
		details.HallName = hall.Name
	}
	return details
}

var _ Reserver = (*reservation.Engine)(nil)

