package notification_handler

import (
	"context"
	"time"

	"github.com/fatflowers/licensing/pkg/types"
)

type EventType string

const (
	EventPurchase     EventType = "purchase"
	EventRenewal      EventType = "renewal"
	EventRefund       EventType = "refund"
	EventRevoke       EventType = "revoke"
	EventSubscription EventType = "subscription"
)

// Event is one billing event pushed by the billing provider. ExternalID names
// the transaction the event is about; for renewals it is the new payment and
// ParentExternalID the original purchase.
type Event struct {
	Type             EventType             `json:"type" validate:"required,oneof=purchase renewal refund revoke subscription"`
	Provider         types.PaymentProvider `json:"provider" validate:"required,max=64"`
	ExternalID       string                `json:"external_id" validate:"required,max=128"`
	ParentExternalID string                `json:"parent_external_id" validate:"required_if=Type renewal,max=128"`
	CustomerID       string                `json:"customer_id" validate:"required_if=Type purchase,max=64"`
	ProductID        string                `json:"product_id" validate:"required_if=Type purchase,max=64"`
	Currency         string                `json:"currency" validate:"max=16"`
	Price            int64                 `json:"price" validate:"gte=0"`
	// Amount is the refunded amount.
	Amount             int64                    `json:"amount" validate:"gte=0"`
	Reason             string                   `json:"reason" validate:"max=64"`
	SubscriptionStatus types.SubscriptionStatus `json:"subscription_status" validate:"required_if=Type subscription,omitempty,oneof=active suspended cancelled deactivated"`
	NextRenewAt        *time.Time               `json:"next_renew_at"`
	ExpireAt           *time.Time               `json:"expire_at"`
	OccurredAt         time.Time                `json:"occurred_at"`
}

// Result is what applying an event did.
type Result struct {
	TransactionID string `json:"transaction_id,omitempty"`
	Key           string `json:"key,omitempty"`
	RenewalID     string `json:"renewal_id,omitempty"`
	Created       bool   `json:"created"`
}

// NotificationParser turns one provider payload into a billing event.
type NotificationParser interface {
	GetProvider(ctx context.Context) types.PaymentProvider
	GetNotificationTime(ctx context.Context) time.Time
	GetCustomerID(ctx context.Context) string
	GetExternalID(ctx context.Context) string
	GetEvent(ctx context.Context) (*Event, error)
	GetData(ctx context.Context) any
}
