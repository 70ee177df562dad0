package models

import "github.com/shopspring/decimal"

// PaymentSummary is the price breakdown shown before a booking is confirmed.
// It is derived value data, recomputed on every request and never persisted.
type PaymentSummary struct {
	Subtotal            decimal.Decimal `json:"subtotal"`
	PlatformFee         decimal.Decimal `json:"platformFee"`
	Total               decimal.Decimal `json:"total"`
	PlatformFeePercent  decimal.Decimal `json:"platformFeePercent"`
	IsMembershipBooking bool            `json:"isMembershipBooking"`

	// Locale-formatted currency renditions of the numeric fields above.
	SubtotalFormatted    string `json:"subtotalFormatted"`
	PlatformFeeFormatted string `json:"platformFeeFormatted"`
	TotalFormatted       string `json:"totalFormatted"`
}

// EcommerceConfig is the tenant's payment-processor configuration,
// read once per saga invocation.
type EcommerceConfig struct {
	PlatformFeeRate  float64 `bson:"platform_fee_rate" json:"platformFeeRate"` // e.g. 0.035 for 3.5%
	FeeDescription   string  `bson:"fee_description" json:"feeDescription"`
	PaymentsEnabled  bool    `bson:"payments_enabled" json:"paymentsEnabled"`
	ConnectAccountID string  `bson:"connect_account_id" json:"connectAccountId"`
}

// BillingDetails carries the card and payer identity submitted at confirmation.
type BillingDetails struct {
	PaymentMethodID string `json:"paymentMethodId"`
	Name            string `json:"name,omitempty"`
	Email           string `json:"email,omitempty"`
}
