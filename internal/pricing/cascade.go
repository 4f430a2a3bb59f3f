package pricing

import (
	"math"
	"strconv"
	"strings"
)

// MaxDiscountSlots is the number of discount fields a price table line offers.
const MaxDiscountSlots = 8

// BasePrice returns promo when it is set and positive, otherwise gross.
// Promo replaces gross; the two never combine.
func BasePrice(gross float64, promo *float64) float64 {
	if promo != nil && *promo > 0 {
		return *promo
	}
	return gross
}

// ParseDiscount reads a percentage typed by a user. A comma is accepted as
// the decimal separator. Blank, unparseable, non-finite and non-positive
// entries report false.
func ParseDiscount(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	if v <= 0 {
		return 0, false
	}
	return v, true
}

// NetPrice applies discounts to the base price one after another, in input
// order. Entries ParseDiscount rejects are skipped. Intermediate results are
// never rounded and the result is not clamped.
func NetPrice(gross float64, promo *float64, discounts []string) float64 {
	result := BasePrice(gross, promo)
	for _, raw := range discounts {
		d, ok := ParseDiscount(raw)
		if !ok {
			continue
		}
		result = result * (1 - d/100)
	}
	return result
}

// Calculator carries the pricing policy switches.
type Calculator struct {
	// ClampNegative floors the final price at zero. Discounts of 100% or
	// more otherwise yield zero or negative prices.
	ClampNegative bool
}

// NetPrice behaves like the package-level NetPrice, then applies the clamp policy.
func (c Calculator) NetPrice(gross float64, promo *float64, discounts []string) float64 {
	result := NetPrice(gross, promo, discounts)
	if c.ClampNegative && result < 0 {
		return 0
	}
	return result
}
