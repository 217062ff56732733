package notification_log

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/fatflowers/licensing/internal/models"
	"github.com/fatflowers/licensing/internal/platform/db/dbtest"
	"github.com/fatflowers/licensing/pkg/errs"
	"github.com/fatflowers/licensing/pkg/types"
)

func TestSave_PersistsAsync(t *testing.T) {
	gdb := dbtest.New(t)
	s := New(gdb, zap.NewNop().Sugar())

	customer := "cus_1"
	entry := &models.PaymentNotificationLog{
		ProviderID: "stripe",
		ExternalID: "txn_1",
		EventType:  "purchase",
		CustomerID: &customer,
		OccurredAt: time.Now().UTC(),
		Data:       datatypes.JSON(`{"type":"purchase"}`),
		Status:     models.BillingLogStatusReceived,
	}
	s.Save(context.Background(), entry)
	s.Save(context.Background(), nil)
	s.Wait()

	require.NotEmpty(t, entry.ID)
	var got models.PaymentNotificationLog
	require.NoError(t, gdb.Where("id = ?", entry.ID).First(&got).Error)
	require.Equal(t, "txn_1", got.ExternalID)
	require.Equal(t, customer, *got.CustomerID)
}

func TestScan_FiltersByStatus(t *testing.T) {
	gdb := dbtest.New(t)
	s := New(gdb, zap.NewNop().Sugar())
	ctx := context.Background()
	for _, st := range []models.BillingLogStatus{
		models.BillingLogStatusReceived,
		models.BillingLogStatusHandled,
		models.BillingLogStatusReceived,
		models.BillingLogStatusHandleFailed,
	} {
		s.Save(ctx, &models.PaymentNotificationLog{ProviderID: "paypal", ExternalID: "I-1", Status: st})
	}
	s.Wait()

	items, total, err := s.Scan(ctx, &types.ScanRequest{Filters: []*types.CommonFilter{
		{Field: "status", Operator: types.CommonFilterOperatorIn, Values: []any{"handled", "handle_failed"}},
	}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	for _, it := range items {
		assert.True(t, it.Status.Final())
	}

	_, _, err = s.Scan(ctx, &types.ScanRequest{SortBy: "data"})
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)
}
