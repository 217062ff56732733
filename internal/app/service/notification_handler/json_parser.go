package notification_handler

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/fatflowers/licensing/pkg/errs"
	"github.com/fatflowers/licensing/pkg/types"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// JSONNotificationParser reads the provider neutral JSON event format.
type JSONNotificationParser struct {
	NotificationTime time.Time
	Event            *Event
	raw              json.RawMessage
}

func (p *JSONNotificationParser) GetProvider(ctx context.Context) types.PaymentProvider {
	return p.Event.Provider
}

// GetNotificationTime is when the event happened at the provider, falling
// back to when it was received.
func (p *JSONNotificationParser) GetNotificationTime(ctx context.Context) time.Time {
	if !p.Event.OccurredAt.IsZero() {
		return p.Event.OccurredAt.UTC()
	}
	return p.NotificationTime
}

func (p *JSONNotificationParser) GetCustomerID(ctx context.Context) string {
	return p.Event.CustomerID
}

func (p *JSONNotificationParser) GetExternalID(ctx context.Context) string {
	return p.Event.ExternalID
}

func (p *JSONNotificationParser) GetEvent(ctx context.Context) (*Event, error) {
	e := *p.Event
	e.OccurredAt = p.GetNotificationTime(ctx)
	return &e, nil
}

// GetData returns the payload as received.
func (p *JSONNotificationParser) GetData(ctx context.Context) any {
	return p.raw
}

// ParseJSONNotification decodes and validates body. Malformed payloads wrap
// errs.ErrInvalidArgument.
func ParseJSONNotification(body []byte, notificationTime time.Time) (NotificationParser, error) {
	if notificationTime.IsZero() {
		notificationTime = time.Now()
	}
	var e Event
	if err := json.Unmarshal(body, &e); err != nil {
		return nil, fmt.Errorf("decode billing event: %v: %w", err, errs.ErrInvalidArgument)
	}
	if err := validate.Struct(&e); err != nil {
		return nil, fmt.Errorf("billing event: %v: %w", err, errs.ErrInvalidArgument)
	}
	return &JSONNotificationParser{
		NotificationTime: notificationTime.UTC(),
		Event:            &e,
		raw:              json.RawMessage(body),
	}, nil
}
