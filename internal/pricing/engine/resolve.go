package engine

import (
	priceruledomain "github.com/spotlane/pricing/internal/pricerule/domain"
	pricingdomain "github.com/spotlane/pricing/internal/pricing/domain"
)

// Resolution is the engine's output before taxes: the subtotal and the
// per-rule deltas that produced it from the base amount.
type Resolution struct {
	SubtotalCents int64
	AppliedRules  []pricingdomain.AppliedRule
}

// Resolve folds the rules over the base amount in order. Callers pass
// rules sorted by ascending priority (ties broken by insertion order);
// the engine applies them as given.
//
// PERCENTAGE rules apply to the current running subtotal, FIXED rules add
// a flat minor-unit amount. Each recorded delta is floored so the running
// subtotal never drops below zero, keeping
// subtotal = base*hours + sum(deltas) exact.
func Resolve(basePriceCents int64, rules []priceruledomain.PriceRule, booking Booking) Resolution {
	running := basePriceCents * int64(booking.DurationHours)
	applied := make([]pricingdomain.AppliedRule, 0, len(rules))

	for i := range rules {
		rule := &rules[i]
		if !Matches(rule.Conditions, booking) {
			continue
		}

		var amount int64
		switch rule.AdjustmentType {
		case priceruledomain.AdjustmentPercentage:
			amount = RoundHalfAwayFromZero(float64(running) * rule.AdjustmentValue / 100)
		case priceruledomain.AdjustmentFixed:
			amount = int64(rule.AdjustmentValue)
		default:
			continue
		}

		if amount < -running {
			amount = -running
		}
		running += amount

		applied = append(applied, pricingdomain.AppliedRule{
			RuleID:          rule.ID.String(),
			Name:            rule.Name,
			Type:            rule.Type,
			AdjustmentType:  rule.AdjustmentType,
			AdjustmentValue: rule.AdjustmentValue,
			AmountCents:     amount,
		})
	}

	return Resolution{SubtotalCents: running, AppliedRules: applied}
}
