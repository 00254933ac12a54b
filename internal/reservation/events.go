package reservation

import (
	"context"
	"time"

	"cinema-reservation/internal/data/entity"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Routing keys of booking lifecycle events.
const (
	EventBookingHeld      = "booking.held"
	EventBookingConfirmed = "booking.confirmed"
	EventBookingCancelled = "booking.cancelled"
	EventBookingExpired   = "booking.expired"
)

// Publisher delivers booking events. pkg/queue.Publisher satisfies it.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

type BookingEvent struct {
	Type        string               `json:"type"`
	BookingID   uuid.UUID            `json:"booking_id"`
	UserID      uuid.UUID            `json:"user_id"`
	ShowID      uuid.UUID            `json:"show_id"`
	ShowSeatIDs []uuid.UUID          `json:"show_seat_ids"`
	TotalAmount float64              `json:"total_amount"`
	Status      entity.BookingStatus `json:"status"`
	OccurredAt  time.Time            `json:"occurred_at"`
}

func newBookingEvent(eventType string, booking *entity.Booking, items []*entity.BookingSeat, at time.Time) BookingEvent {
	ids := make([]uuid.UUID, len(items))
	for i, it := range items {
		ids[i] = it.ShowSeatID
	}
	return BookingEvent{
		Type:        eventType,
		BookingID:   booking.ID,
		UserID:      booking.UserID,
		ShowID:      booking.ShowID,
		ShowSeatIDs: ids,
		TotalAmount: booking.TotalAmount,
		Status:      booking.Status,
		OccurredAt:  at,
	}
}

// LogPublisher writes events to the log. Used when no broker is configured.
type LogPublisher struct {
	log *zap.Logger
}

func NewLogPublisher(log *zap.Logger) *LogPublisher {
	return &LogPublisher{log: log.With(zap.String("publisher", "log"))}
}

func (p *LogPublisher) Publish(_ context.Context, routingKey string, payload any) error {
	p.log.Info("Booking event", zap.String("routing_key", routingKey), zap.Any("event", payload))
	return nil
}
