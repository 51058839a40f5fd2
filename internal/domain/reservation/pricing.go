package reservation

import "fmt"

// PricingStrategy defines the interface for computing a reservation total.
type PricingStrategy interface {
	// Calculate returns the total in cents for the given stay and nightly rate.
	Calculate(stay Stay, nightlyRateCents int64) (int64, error)
}

// NightlyRatePricing charges the room type's base rate for every night.
// There is no yield or seasonal logic.
type NightlyRatePricing struct{}

// NewNightlyRatePricing creates a new NightlyRatePricing.
func NewNightlyRatePricing() *NightlyRatePricing {
	return &NightlyRatePricing{}
}

// Calculate computes nights × nightly rate.
func (p *NightlyRatePricing) Calculate(stay Stay, nightlyRateCents int64) (int64, error) {
	if nightlyRateCents < 0 {
		return 0, fmt.Errorf("nightly rate cannot be negative")
	}
	nights := stay.Nights()
	if nights <= 0 {
		return 0, fmt.Errorf("stay must cover at least one night")
	}
	return int64(nights) * nightlyRateCents, nil
}
