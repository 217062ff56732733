package models

import (
	"time"

	"gorm.io/datatypes"
)

// BillingLogStatus tracks a billing event through the webhook. Each accepted
// event writes a received row followed by exactly one handled or
// handle_failed row carrying the outcome.
type BillingLogStatus string

const (
	BillingLogStatusReceived     BillingLogStatus = "received"
	BillingLogStatusHandled      BillingLogStatus = "handled"
	BillingLogStatusHandleFailed BillingLogStatus = "handle_failed"
)

// Final reports whether the row records an outcome.
func (s BillingLogStatus) Final() bool {
	return s == BillingLogStatusHandled || s == BillingLogStatusHandleFailed
}

// PaymentNotificationLog is the raw audit trail of billing events. ExternalID
// is the provider's transaction id, not the local transaction id.
type PaymentNotificationLog struct {
	ID         string  `gorm:"column:id;type:uuid;primary_key" json:"id"`
	ProviderID string  `gorm:"column:provider_id;type:varchar(64);not null;index:idx_provider_external,priority:1" json:"provider_id"`
	ExternalID string  `gorm:"column:external_id;type:varchar(128);index:idx_provider_external,priority:2" json:"external_id"`
	EventType  string  `gorm:"column:event_type;type:varchar(32)" json:"event_type"`
	CustomerID *string `gorm:"column:customer_id;type:varchar(64);index" json:"customer_id"`
	TraceID    string  `gorm:"column:trace_id;type:varchar(128);index" json:"trace_id"`
	// OccurredAt is when the provider says the event happened.
	OccurredAt time.Time        `gorm:"column:occurred_at" json:"occurred_at"`
	Data       datatypes.JSON   `gorm:"column:data;type:jsonb" json:"data"`
	Result     *datatypes.JSON  `gorm:"column:result;type:jsonb" json:"result"`
	Status     BillingLogStatus `gorm:"column:status;type:varchar(32);not null;index" json:"status"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

func (PaymentNotificationLog) TableName() string {
	return "payment_notification_log"
}
