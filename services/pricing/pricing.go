package pricing

import (
	"math"

	"github.com/shopspring/decimal"

	"coachbook/models"
)

// defaultBaseDuration is assumed when a variable-duration service has no
// positive base duration of its own.
const defaultBaseDuration = 60

// RoundCents rounds a money amount to 2 decimal places, half-up at the cent
// boundary. All prices leave the engine through this to avoid float drift
// across repeated fee calculations.
func RoundCents(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(2)
}

// AmountFromFloat converts a raw numeric price into a money amount. Corrupted
// inputs (NaN, infinities, negatives) fall back to zero so a bad price can
// never surface as a NaN or negative charge.
func AmountFromFloat(v float64) decimal.Decimal {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v)
}

// AmountFromString parses a money amount, falling back to zero on any parse
// failure.
func AmountFromString(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// CalculateEffectivePrice computes the price of a service for the selected
// duration. Fixed-duration services (and requests without a chosen duration)
// price at the base price; variable-duration services scale linearly with the
// chosen duration relative to the base duration.
func CalculateEffectivePrice(svc models.Service, selectedDuration int) decimal.Decimal {
	base := AmountFromFloat(svc.Price)
	if !svc.IsVariableDuration || selectedDuration <= 0 {
		return base
	}
	baseDuration := svc.DurationMinutes
	if baseDuration <= 0 {
		baseDuration = defaultBaseDuration
	}
	scaled := decimal.NewFromInt(int64(selectedDuration)).
		Div(decimal.NewFromInt(int64(baseDuration))).
		Mul(base)
	return RoundCents(scaled)
}

// CalculatePlatformFee returns subtotal * feeRate, unrounded. Rounding happens
// once, at summary formatting time.
func CalculatePlatformFee(subtotal decimal.Decimal, feeRate float64) decimal.Decimal {
	if math.IsNaN(feeRate) || math.IsInf(feeRate, 0) || feeRate < 0 {
		return decimal.Zero
	}
	return subtotal.Mul(decimal.NewFromFloat(feeRate))
}

// BuildPaymentSummary assembles the full price breakdown for a booking
// request. Membership-covered bookings always yield a zero fee and zero total
// regardless of the configured fee rate.
func BuildPaymentSummary(svc models.Service, durationMinutes int, platformFeeRate float64, isMembershipBooking bool) models.PaymentSummary {
	feePercent := decimal.Zero
	if !math.IsNaN(platformFeeRate) && !math.IsInf(platformFeeRate, 0) && platformFeeRate > 0 {
		feePercent = decimal.NewFromFloat(platformFeeRate).Mul(decimal.NewFromInt(100)).Round(2)
	}

	if isMembershipBooking {
		subtotal := RoundCents(CalculateEffectivePrice(svc, durationMinutes))
		return models.PaymentSummary{
			Subtotal:             subtotal,
			PlatformFee:          decimal.Zero,
			Total:                decimal.Zero,
			PlatformFeePercent:   feePercent,
			IsMembershipBooking:  true,
			SubtotalFormatted:    FormatCurrency(subtotal),
			PlatformFeeFormatted: FormatCurrency(decimal.Zero),
			TotalFormatted:       FormatCurrency(decimal.Zero),
		}
	}

	subtotal := RoundCents(CalculateEffectivePrice(svc, durationMinutes))
	fee := RoundCents(CalculatePlatformFee(subtotal, platformFeeRate))
	total := subtotal.Add(fee)

	return models.PaymentSummary{
		Subtotal:             subtotal,
		PlatformFee:          fee,
		Total:                total,
		PlatformFeePercent:   feePercent,
		IsMembershipBooking:  false,
		SubtotalFormatted:    FormatCurrency(subtotal),
		PlatformFeeFormatted: FormatCurrency(fee),
		TotalFormatted:       FormatCurrency(total),
	}
}
