package payment

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/client"

	apperrors "conftix/internal/errors"
)

// StripeGateway implements Gateway against the Stripe API.
type StripeGateway struct {
	api      *client.API
	currency string
}

var _ Gateway = (*StripeGateway)(nil)

// NewStripeGateway creates a gateway with its own API client.
func NewStripeGateway(apiKey string) *StripeGateway {
	api := &client.API{}
	api.Init(apiKey, nil)
	return &StripeGateway{api: api, currency: string(stripe.CurrencyGBP)}
}

// CreateCharge captures amount against token and returns the charge id.
func (g *StripeGateway) CreateCharge(ctx context.Context, amount int64, description, token string) (string, error) {
	params := &stripe.ChargeParams{
		Amount:      stripe.Int64(amount),
		Currency:    stripe.String(g.currency),
		Description: stripe.String(description),
	}
	params.Context = ctx
	if err := params.SetSource(token); err != nil {
		return "", fmt.Errorf("set charge source: %w", err)
	}

	ch, err := g.api.Charges.New(params)
	if err != nil {
		return "", mapStripeError(err)
	}
	return ch.ID, nil
}

// RefundCharge refunds a charge in full.
func (g *StripeGateway) RefundCharge(ctx context.Context, chargeID string) error {
	params := &stripe.RefundParams{
		Charge: stripe.String(chargeID),
	}
	params.Context = ctx
	_, err := g.api.Refunds.New(params)
	if err != nil {
		return mapStripeError(err)
	}
	return nil
}

// RefundPartial refunds exactly amount against a charge.
func (g *StripeGateway) RefundPartial(ctx context.Context, chargeID string, amount int64) error {
	params := &stripe.RefundParams{
		Charge: stripe.String(chargeID),
		Amount: stripe.Int64(amount),
	}
	params.Context = ctx
	_, err := g.api.Refunds.New(params)
	if err != nil {
		return mapStripeError(err)
	}
	return nil
}

// mapStripeError translates card-level failures into the domain error. Card
// failures are final; everything else is surfaced as-is.
func mapStripeError(err error) error {
	if stripeErr, ok := err.(*stripe.Error); ok && stripeErr.Type == stripe.ErrorTypeCard {
		return fmt.Errorf("%w: %s", apperrors.ErrCardDeclined, stripeErr.Msg)
	}
	return err
}
