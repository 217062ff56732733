package notification_handler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fatflowers/licensing/pkg/errs"
	"github.com/fatflowers/licensing/pkg/types"
)

func TestParseJSONNotification(t *testing.T) {
	ctx := context.Background()
	received := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

	p, err := ParseJSONNotification([]byte(`{
		"type": "purchase", "provider": "stripe", "external_id": "ch_1",
		"customer_id": "cus-1", "product_id": "plugin", "price": 1000
	}`), received)
	require.NoError(t, err)
	assert.Equal(t, types.PaymentProviderStripe, p.GetProvider(ctx))
	assert.Equal(t, "ch_1", p.GetExternalID(ctx))
	assert.Equal(t, "cus-1", p.GetCustomerID(ctx))
	assert.Equal(t, received, p.GetNotificationTime(ctx))

	e, err := p.GetEvent(ctx)
	require.NoError(t, err)
	assert.Equal(t, EventPurchase, e.Type)
	assert.Equal(t, received, e.OccurredAt)
}

func TestParseJSONNotification_OccurredAtWins(t *testing.T) {
	ctx := context.Background()
	p, err := ParseJSONNotification([]byte(`{
		"type": "refund", "provider": "paypal", "external_id": "I-1",
		"amount": 500, "occurred_at": "2025-03-02T10:00:00+02:00"
	}`), time.Now())
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 2, 8, 0, 0, 0, time.UTC), p.GetNotificationTime(ctx))
}

func TestParseJSONNotification_Rejects(t *testing.T) {
	cases := map[string]string{
		"malformed":            `{"type":`,
		"unknown type":         `{"type":"chargeback","provider":"stripe","external_id":"x"}`,
		"missing provider":     `{"type":"refund","external_id":"x"}`,
		"purchase without sku": `{"type":"purchase","provider":"stripe","external_id":"x","customer_id":"c"}`,
		"orphan renewal":       `{"type":"renewal","provider":"stripe","external_id":"x"}`,
		"negative price":       `{"type":"refund","provider":"stripe","external_id":"x","price":-1}`,
		"bad subscription":     `{"type":"subscription","provider":"stripe","external_id":"x","subscription_status":"paused"}`,
		"missing subscription": `{"type":"subscription","provider":"stripe","external_id":"x"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseJSONNotification([]byte(body), time.Now())
			require.Error(t, err)
			assert.ErrorIs(t, err, errs.ErrInvalidArgument)
		})
	}
}
