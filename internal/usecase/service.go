package usecase

import (
	"cinema-reservation/internal/data/repository"
	"cinema-reservation/internal/domain"
	"cinema-reservation/internal/pricing"
	"cinema-reservation/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service struct {
	Catalog CatalogService
	Ledger  LedgerService
	Booking BookingService
}

func NewService(store repository.Store, reserver Reserver, resolver *pricing.Resolver, log *zap.Logger) *Service {
	return &Service{
		Catalog: NewCatalogService(store, resolver, log),
		Ledger:  NewLedgerService(store.Repos(), log),
		Booking: NewBookingService(store.Repos(), reserver, log),
	}
}

// parseID turns a malformed id into a validation error on field.
func parseID(field, value string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, domain.Invalid(field, "Must be a valid UUID")
	}
	return id, nil
}

func validate(req any) error {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return domain.NewValidationError(errs)
	}
	return nil
}
