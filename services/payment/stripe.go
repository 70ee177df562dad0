package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"go.uber.org/zap"
)

// StripeGateway implements Gateway against Stripe payment intents, charging
// directly on the tenant's connect account. The package-level stripe.Key is
// set once at startup.
type StripeGateway struct {
	Registry  *SuccessRegistry
	Finalizer BookingFinalizer
	Logger    *zap.Logger
}

// NewStripeGateway creates a Stripe-backed payment gateway.
func NewStripeGateway(registry *SuccessRegistry, finalizer BookingFinalizer, logger *zap.Logger) *StripeGateway {
	return &StripeGateway{Registry: registry, Finalizer: finalizer, Logger: logger}
}

// CreatePaymentIntent authorizes a card charge for the booking total.
func (g *StripeGateway) CreatePaymentIntent(ctx context.Context, req IntentRequest) (*IntentResult, error) {
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, errors.New("payment amount must be positive")
	}
	currency := req.Currency
	if currency == "" {
		currency = string(stripe.CurrencyUSD)
	}

	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(toCents(req.Amount)),
		Currency:           stripe.String(currency),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Description:        stripe.String(req.Description),
		Metadata: map[string]string{
			"client_id":  req.ClientID,
			"service_id": req.ServiceID,
			"booking_id": req.BookingID,
		},
	}
	params.Context = ctx
	if req.ConnectAccountID != "" {
		params.SetStripeAccount(req.ConnectAccountID)
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	g.Logger.Info("payment intent created",
		zap.String("paymentIntentId", pi.ID),
		zap.String("bookingId", req.BookingID),
		zap.Int64("amountCents", pi.Amount),
	)
	return &IntentResult{PaymentIntentID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

// ConfirmPayment confirms the intent with the submitted payment method.
func (g *StripeGateway) ConfirmPayment(ctx context.Context, req ConfirmRequest) (string, error) {
	intentID, err := intentIDFromSecret(req.ClientSecret)
	if err != nil {
		return "", err
	}

	params := &stripe.PaymentIntentConfirmParams{
		PaymentMethod: stripe.String(req.Billing.PaymentMethodID),
	}
	params.Context = ctx
	if req.ConnectAccountID != "" {
		params.SetStripeAccount(req.ConnectAccountID)
	}

	pi, err := paymentintent.Confirm(intentID, params)
	if err != nil {
		return "", fmt.Errorf("failed to confirm payment: %w", err)
	}
	if pi.Status != stripe.PaymentIntentStatusSucceeded && pi.Status != stripe.PaymentIntentStatusProcessing {
		return "", fmt.Errorf("payment not completed, intent status is %s", pi.Status)
	}
	return pi.ID, nil
}

// NotifyPaymentSuccess marks the booking behind the payment reference as paid.
// The registry makes repeat notifications for the same reference a no-op.
func (g *StripeGateway) NotifyPaymentSuccess(ctx context.Context, paymentIntentID string) error {
	first, err := g.Registry.FirstNotification(ctx, paymentIntentID)
	if err != nil {
		return fmt.Errorf("failed to check payment notification state: %w", err)
	}
	if !first {
		g.Logger.Info("payment success already recorded, skipping",
			zap.String("paymentIntentId", paymentIntentID))
		return nil
	}

	if err := g.Finalizer.MarkPaid(ctx, paymentIntentID); err != nil {
		// Release the guard so a retry can land the finalization.
		g.Registry.Release(ctx, paymentIntentID)
		return fmt.Errorf("failed to record payment success: %w", err)
	}
	return nil
}

// toCents converts a money amount to the processor's integer cent unit.
func toCents(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// intentIDFromSecret extracts the payment intent id from its client secret
// ("pi_123_secret_456" -> "pi_123").
func intentIDFromSecret(clientSecret string) (string, error) {
	id, _, found := strings.Cut(clientSecret, "_secret")
	if !found || id == "" {
		return "", errors.New("malformed payment intent client secret")
	}
	return id, nil
}
