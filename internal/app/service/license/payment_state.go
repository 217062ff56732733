package license

import (
	"context"

	"github.com/fatflowers/licensing/pkg/types"
)

// PaymentState answers whether the purchase behind a key still entitles the
// customer to it. Implementations may call remote billing providers.
type PaymentState interface {
	// TransactionCleared reports whether the transaction is cleared for delivery.
	TransactionCleared(ctx context.Context, transactionID string) (bool, error)
	// SubscriptionStatus returns the subscription status, ok is false when the
	// transaction has no subscription.
	SubscriptionStatus(ctx context.Context, transactionID string) (status types.SubscriptionStatus, ok bool, err error)
}
