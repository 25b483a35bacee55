package payment

import "context"

// Gateway is the payment collaborator. Amounts are in integer minor units.
// Implementations must return errors.ErrCardDeclined (wrapped or not) for
// card-level failures so callers can distinguish them from transport errors.
type Gateway interface {
	// CreateCharge captures amount against a payment token and returns the
	// provider's opaque charge id ("ch_...").
	CreateCharge(ctx context.Context, amount int64, description, token string) (string, error)
	// RefundCharge refunds a charge in full.
	RefundCharge(ctx context.Context, chargeID string) error
	// RefundPartial refunds exactly amount against a charge.
	RefundPartial(ctx context.Context, chargeID string, amount int64) error
}
