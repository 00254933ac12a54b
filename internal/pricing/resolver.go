package pricing

import (
	"fmt"
	"strings"

	"cinema-reservation/internal/data/entity"

	"github.com/shopspring/decimal"
)

// Amounts are stored as NUMERIC(10,2).
const centPlaces = 2

// DefaultPremiums is used when no SEAT_PREMIUMS override is configured.
func DefaultPremiums() map[entity.SeatType]decimal.Decimal {
	return map[entity.SeatType]decimal.Decimal{
		entity.SeatTypeGolden: decimal.Zero,
		entity.SeatTypeSilver: decimal.Zero,
		entity.SeatTypeVIP:    decimal.RequireFromString("0.5"),
	}
}

// Resolver prices a seat from the show's base price and the seat type premium.
type Resolver struct {
	premiums map[entity.SeatType]decimal.Decimal
}

func NewResolver(premiums map[entity.SeatType]decimal.Decimal) *Resolver {
	p := make(map[entity.SeatType]decimal.Decimal, len(premiums))
	for k, v := range premiums {
		p[k] = v
	}
	return &Resolver{premiums: p}
}

// PriceFor returns basePrice * (1 + premium), rounded half away from zero to cents.
func (r *Resolver) PriceFor(basePrice float64, seatType entity.SeatType) float64 {
	premium, ok := r.premiums[seatType]
	if !ok {
		premium = decimal.Zero
	}
	price := Amount(basePrice).Mul(decimal.NewFromInt(1).Add(premium))
	return Float(price)
}

func (r *Resolver) Premium(seatType entity.SeatType) decimal.Decimal {
	return r.premiums[seatType]
}

// Amount converts a stored amount into a decimal. NewFromFloat keeps the
// shortest representation, so 0.1 stays 0.1.
func Amount(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

// Float rounds to cents and converts back to the stored representation.
func Float(d decimal.Decimal) float64 {
	return d.Round(centPlaces).InexactFloat64()
}

// Round rounds a stored amount to cents.
func Round(amount float64) float64 {
	return Float(Amount(amount))
}

// ParsePremiums parses "vip:0.5,golden:0.1" on top of DefaultPremiums.
func ParsePremiums(raw string) (map[entity.SeatType]decimal.Decimal, error) {
	premiums := DefaultPremiums()
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return premiums, nil
	}

	for _, pair := range strings.Split(raw, ",") {
		name, value, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if !ok {
			return nil, fmt.Errorf("premium %q: expected type:fraction", pair)
		}

		seatType := entity.SeatType(strings.ToLower(strings.TrimSpace(name)))
		if !seatType.Valid() {
			return nil, fmt.Errorf("premium %q: unknown seat type %s", pair, seatType)
		}

		premium, err := decimal.NewFromString(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("premium %q: %w", pair, err)
		}
		if premium.IsNegative() {
			return nil, fmt.Errorf("premium %q: must not be negative", pair)
		}
		premiums[seatType] = premium
	}

	return premiums, nil
}
