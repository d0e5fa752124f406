package currency

import (
	"errors"
	"math"
	"strings"
)

var ErrInvalidAmount = errors.New("invalid_amount")

// Converter translates donor-facing amounts into the gateway's settlement
// currency and into the display currency campaign totals are kept in.
// It is pure and deterministic: the conversion table is fixed at
// construction, never fetched live.
type Converter struct {
	settlement string
	display    string
	rates      Rates
}

func NewConverter(settlement, display string, rates Rates) *Converter {
	if rates == nil {
		rates = DefaultRates()
	}
	return &Converter{
		settlement: strings.ToUpper(settlement),
		display:    strings.ToUpper(display),
		rates:      rates,
	}
}

// ToSettlement converts a donor-facing amount into the settlement currency.
// Amounts already in the settlement currency pass through unchanged; every
// other amount is multiplied by its static rate and rounded to whole
// settlement units. Unrecognized currencies are treated as the display
// (base foreign) currency.
func (c *Converter) ToSettlement(amount float64, code string) (float64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == c.settlement {
		return amount, nil
	}
	return math.Round(amount * c.rate(code)), nil
}

// ToDisplay converts an amount in the given currency into the display
// currency, rounded to minor-unit precision. Campaign aggregates sum
// only display-currency amounts.
func (c *Converter) ToDisplay(amount float64, code string) (float64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == c.display {
		return Round2(amount), nil
	}
	displayRate := c.rate(c.display)
	if displayRate == 0 {
		return 0, ErrInvalidAmount
	}
	return Round2(amount * c.rate(code) / displayRate), nil
}

func (c *Converter) Settlement() string { return c.settlement }
func (c *Converter) Display() string    { return c.display }

func (c *Converter) rate(code string) float64 {
	if r, ok := c.rates[code]; ok {
		return r
	}
	// Fall back to the base foreign currency multiplier.
	return c.rates[c.display]
}

// ToSmallestUnit converts a decimal amount into the minor-unit integer
// the gateway API expects (kobo, cents, pence).
func ToSmallestUnit(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// FromSmallestUnit is the exact inverse of ToSmallestUnit for amounts
// already in minor-unit form; the pair is round-trip safe.
func FromSmallestUnit(units int64) float64 {
	return float64(units) / 100
}

// Round2 rounds to minor-unit (2 decimal) precision.
func Round2(amount float64) float64 {
	return math.Round(amount*100) / 100
}
