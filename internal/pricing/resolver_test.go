package pricing

import (
	"testing"

	"cinema-reservation/internal/data/entity"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolver_PriceFor(t *testing.T) {
	r := NewResolver(DefaultPremiums())

	tests := []struct {
		name     string
		base     float64
		seatType entity.SeatType
		want     float64
	}{
		{"golden has no premium", 10, entity.SeatTypeGolden, 10},
		{"silver has no premium", 10, entity.SeatTypeSilver, 10},
		{"vip fifty percent", 10, entity.SeatTypeVIP, 15},
		{"vip on fractional base", 12.5, entity.SeatTypeVIP, 18.75},
		{"rounded to cents", 10.333, entity.SeatTypeGolden, 10.33},
		{"unknown type priced at base", 12, entity.SeatType("balcony"), 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.PriceFor(tt.base, tt.seatType))
		})
	}
}

func TestResolver_PriceForHalfCent(t *testing.T) {
	r := NewResolver(map[entity.SeatType]decimal.Decimal{
		entity.SeatTypeVIP: decimal.RequireFromString("0.15"),
	})

	tests := []struct {
		base float64
		want float64
	}{
		{0.50, 0.58}, // 0.575
		{0.90, 1.04}, // 1.035
		{1.10, 1.27}, // 1.265
		{10.10, 11.62},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, r.PriceFor(tt.base, entity.SeatTypeVIP), "base %.2f", tt.base)
	}
}

func TestResolver_CopiesPremiums(t *testing.T) {
	premiums := DefaultPremiums()
	r := NewResolver(premiums)

	premiums[entity.SeatTypeVIP] = decimal.NewFromInt(2)
	assert.True(t, r.Premium(entity.SeatTypeVIP).Equal(decimal.RequireFromString("0.5")))
}

func TestParsePremiums(t *testing.T) {
	t.Run("empty keeps defaults", func(t *testing.T) {
		got, err := ParsePremiums("")
		require.NoError(t, err)
		for seatType, want := range DefaultPremiums() {
			assert.True(t, want.Equal(got[seatType]), seatType)
		}
	})

	t.Run("overrides", func(t *testing.T) {
		got, err := ParsePremiums("vip:0.75, golden:0.1")
		require.NoError(t, err)
		assert.Equal(t, "0.75", got[entity.SeatTypeVIP].String())
		assert.Equal(t, "0.1", got[entity.SeatTypeGolden].String())
		assert.True(t, got[entity.SeatTypeSilver].IsZero())
	})

	for _, raw := range []string{"vip", "balcony:0.2", "vip:abc", "vip:-0.1"} {
		t.Run("rejects "+raw, func(t *testing.T) {
			_, err := ParsePremiums(raw)
			assert.Error(t, err)
		})
	}
}
