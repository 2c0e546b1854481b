package shared

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Fixed precision of stored quantities.
const (
	MoneyPlaces int32 = 2
	RatePlaces  int32 = 4
)

// BalanceTolerance is the largest debit/credit difference accepted as balanced.
var BalanceTolerance = decimal.New(5, -3)

// Hundred is used for percentage rates.
var Hundred = decimal.NewFromInt(100)

// Round2 rounds a money amount half away from zero.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// Round4 rounds a rate.
func Round4(d decimal.Decimal) decimal.Decimal {
	return d.Round(RatePlaces)
}

// FitsScale reports whether d carries at most places fractional digits.
func FitsScale(d decimal.Decimal, places int32) bool {
	return d.Equal(d.Truncate(places))
}

// ParseMoney parses a decimal string with at most two fractional digits.
func ParseMoney(field, raw string) (decimal.Decimal, error) {
	return parseScaled(field, raw, MoneyPlaces)
}

// ParseRate parses a decimal string with at most four fractional digits.
func ParseRate(field, raw string) (decimal.Decimal, error) {
	return parseScaled(field, raw, RatePlaces)
}

// ParseOptionalMoney returns zero for an empty string.
func ParseOptionalMoney(field, raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	return ParseMoney(field, raw)
}

func parseScaled(field, raw string, places int32) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %s must be a decimal string", ErrValidation, field)
	}
	if !FitsScale(d, places) {
		return decimal.Decimal{}, fmt.Errorf("%w: %s allows at most %d decimal places", ErrValidation, field, places)
	}
	return d, nil
}
