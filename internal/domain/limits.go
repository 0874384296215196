package domain

import (
	"fmt"
	"regexp"

	"github.com/shopspring/decimal"
)

// Decimal places and magnitudes the bills and water_readings columns hold.
const (
	RatePlaces = 4
	UnitPlaces = 3
)

var (
	maxRate   = decimal.New(1, 6)  // NUMERIC(10, 4)
	maxUnits  = decimal.New(1, 11) // NUMERIC(14, 3)
	maxAmount = decimal.New(1, 12) // NUMERIC(14, 2)

	currencyCode = regexp.MustCompile(`^[A-Z]{3}$`)
)

// ValidateRate rejects rates that are negative or would not be stored exactly.
func ValidateRate(rate decimal.Decimal) error {
	switch {
	case rate.IsNegative():
		return fmt.Errorf("rate %s is negative: %w", rate, ErrValidation)
	case !fitsPlaces(rate, RatePlaces):
		return fmt.Errorf("rate %s has more than %d decimal places: %w", rate, RatePlaces, ErrValidation)
	case rate.GreaterThanOrEqual(maxRate):
		return fmt.Errorf("rate %s must be below %s: %w", rate, maxRate, ErrValidation)
	}
	return nil
}

// ValidateUnits rejects meter values that are negative or would not be
// stored exactly.
func ValidateUnits(units decimal.Decimal) error {
	switch {
	case units.IsNegative():
		return fmt.Errorf("units %s are negative: %w", units, ErrValidation)
	case !fitsPlaces(units, UnitPlaces):
		return fmt.Errorf("units %s have more than %d decimal places: %w", units, UnitPlaces, ErrValidation)
	case units.GreaterThanOrEqual(maxUnits):
		return fmt.Errorf("units %s must be below %s: %w", units, maxUnits, ErrValidation)
	}
	return nil
}

// ValidateAmount rejects bill totals too large for the amount column.
func ValidateAmount(total decimal.Decimal) error {
	if total.Abs().GreaterThanOrEqual(maxAmount) {
		return fmt.Errorf("amount %s must be below %s: %w", total, maxAmount, ErrValidation)
	}
	return nil
}

// ValidateCurrency accepts ISO 4217 style codes such as "USD".
func ValidateCurrency(code string) error {
	if !currencyCode.MatchString(code) {
		return fmt.Errorf("currency %q is not a 3-letter code: %w", code, ErrValidation)
	}
	return nil
}

// fitsPlaces reports whether d has no non-zero digits past places. Trailing
// zeros such as "2.50000" are fine.
func fitsPlaces(d decimal.Decimal, places int32) bool {
	return d.Equal(d.Truncate(places))
}
