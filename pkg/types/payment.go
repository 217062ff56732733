package types

import (
	"fmt"
	"time"
)

type PaymentProvider string

const (
	PaymentProviderStripe PaymentProvider = "stripe"
	PaymentProviderPayPal PaymentProvider = "paypal"
	PaymentProviderInner  PaymentProvider = "inner"
)

type TransactionStatus string

const (
	TransactionStatusPending  TransactionStatus = "pending"
	TransactionStatusPaid     TransactionStatus = "paid"
	TransactionStatusRefunded TransactionStatus = "refunded"
	TransactionStatusVoided   TransactionStatus = "voided"
)

type SubscriptionStatus string

const (
	SubscriptionStatusActive      SubscriptionStatus = "active"
	SubscriptionStatusSuspended   SubscriptionStatus = "suspended"
	SubscriptionStatusCancelled   SubscriptionStatus = "cancelled"
	SubscriptionStatusDeactivated SubscriptionStatus = "deactivated"
)

type IntervalUnit string

const (
	IntervalUnitDay   IntervalUnit = "day"
	IntervalUnitWeek  IntervalUnit = "week"
	IntervalUnitMonth IntervalUnit = "month"
	IntervalUnitYear  IntervalUnit = "year"
)

// Interval is a recurring billing period such as "1 year" or "3 month".
type Interval struct {
	Unit  IntervalUnit `json:"unit" mapstructure:"unit"`
	Count int          `json:"count" mapstructure:"count"`
}

func (i Interval) IsZero() bool {
	return i.Unit == "" || i.Count <= 0
}

func (i Interval) Validate() error {
	switch i.Unit {
	case IntervalUnitDay, IntervalUnitWeek, IntervalUnitMonth, IntervalUnitYear:
	default:
		return fmt.Errorf("invalid interval unit %q", i.Unit)
	}
	if i.Count <= 0 {
		return fmt.Errorf("invalid interval count %d", i.Count)
	}
	return nil
}

// AddTo returns t moved forward by the interval using calendar arithmetic.
func (i Interval) AddTo(t time.Time) time.Time {
	switch i.Unit {
	case IntervalUnitDay:
		return t.AddDate(0, 0, i.Count)
	case IntervalUnitWeek:
		return t.AddDate(0, 0, 7*i.Count)
	case IntervalUnitMonth:
		return t.AddDate(0, i.Count, 0)
	case IntervalUnitYear:
		return t.AddDate(i.Count, 0, 0)
	}
	return t
}

func (i Interval) String() string {
	return fmt.Sprintf("%d %s", i.Count, i.Unit)
}
