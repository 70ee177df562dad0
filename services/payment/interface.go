package payment

import (
	"context"

	"github.com/shopspring/decimal"

	"coachbook/models"
)

// IntentRequest asks the gateway to authorize a charge for a booking. The
// charge lands on the tenant's connect sub-account.
type IntentRequest struct {
	ClientID         string
	ServiceID        string
	BookingID        string
	Amount           decimal.Decimal // subtotal plus platform fee
	Currency         string
	Description      string
	ConnectAccountID string
}

// IntentResult carries the authorized intent back to the saga.
type IntentResult struct {
	PaymentIntentID string
	ClientSecret    string
}

// ConfirmRequest submits card details against a previously created intent.
type ConfirmRequest struct {
	ClientSecret     string
	Billing          models.BillingDetails
	ConnectAccountID string
}

// Gateway is the payment-processor client consumed by the booking saga.
type Gateway interface {
	// CreatePaymentIntent authorizes a charge and returns its client secret.
	CreatePaymentIntent(ctx context.Context, req IntentRequest) (*IntentResult, error)
	// ConfirmPayment confirms the intent with the submitted card and returns
	// the payment intent id.
	ConfirmPayment(ctx context.Context, req ConfirmRequest) (string, error)
	// NotifyPaymentSuccess records the successful payment against its booking.
	// Calling it twice with the same payment reference is a no-op the second
	// time, so callers may safely retry after an unobserved success.
	NotifyPaymentSuccess(ctx context.Context, paymentIntentID string) error
}

// BookingFinalizer is the slice of the booking store the gateway needs to
// flip a pending booking to confirmed once its payment lands.
type BookingFinalizer interface {
	MarkPaid(ctx context.Context, paymentIntentID string) error
}

// ConfigSource provides the tenant's payment-processor configuration.
type ConfigSource interface {
	GetEcommerceConfig(ctx context.Context) (models.EcommerceConfig, error)
}
