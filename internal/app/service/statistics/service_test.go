package statistics

import (
	"context"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/fatflowers/licensing/internal/models"
	"github.com/fatflowers/licensing/internal/platform/db/dbtest"
	"github.com/fatflowers/licensing/pkg/errs"
	"github.com/fatflowers/licensing/pkg/types"
)

func day(d int) time.Time { return time.Date(2025, 1, d, 10, 0, 0, 0, time.UTC) }

func seed(t *testing.T, db *gorm.DB) {
	t.Helper()
	keys := []*models.Key{
		{Key: "k1", TransactionID: "t1", ProductID: "plugin", CustomerID: "c1", Status: types.KeyStatusActive, CreatedAt: day(1)},
		{Key: "k2", TransactionID: "t2", ProductID: "theme", CustomerID: "c2", Status: types.KeyStatusActive, ExpiresAt: lo.ToPtr(day(20)), CreatedAt: day(1)},
		{Key: "k3", TransactionID: "t4", ProductID: "plugin", CustomerID: "c1", Status: types.KeyStatusDisabled, CreatedAt: day(2)},
	}
	require.NoError(t, db.Create(keys).Error)

	txns := []*models.Transaction{
		{ID: "t1", CustomerID: "c1", ProductID: "plugin", ProviderID: types.PaymentProviderStripe, ExternalID: "ch_1", Status: types.TransactionStatusPaid, Currency: "USD", Price: 1000, RefundTotal: 200, PurchaseAt: day(1)},
		{ID: "t2", CustomerID: "c2", ProductID: "theme", ProviderID: types.PaymentProviderPayPal, ExternalID: "P-1", Status: types.TransactionStatusPaid, Currency: "EUR", Price: 500, PurchaseAt: day(1)},
		{ID: "t3", CustomerID: "c3", ProductID: "plugin", ProviderID: types.PaymentProviderInner, ExternalID: "gift", Status: types.TransactionStatusPaid, Currency: "USD", PurchaseAt: day(1)},
		{ID: "t4", CustomerID: "c1", ProductID: "plugin", ProviderID: types.PaymentProviderStripe, ExternalID: "ch_2", Status: types.TransactionStatusPaid, Currency: "USD", Price: 300, PurchaseAt: day(2)},
	}
	require.NoError(t, db.Create(txns).Error)

	acts := []*models.Activation{
		{ID: "018f0000-0000-7000-8000-000000000001", Key: "k1", Location: "a.example.com", Status: types.ActivationStatusActive, ActivatedAt: day(1), Track: types.TrackStable},
		{ID: "018f0000-0000-7000-8000-000000000002", Key: "k1", Location: "b.example.com", Status: types.ActivationStatusDeactivated, ActivatedAt: day(3), Track: types.TrackStable},
	}
	require.NoError(t, db.Create(acts).Error)
}

func newService(t *testing.T) *Service {
	db := dbtest.New(t)
	seed(t, db)
	s := New(db)
	s.now = func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }
	return s
}

func items(ids ...StatisticType) []*StatisticDataItem {
	return lo.Map(ids, func(id StatisticType, _ int) *StatisticDataItem { return &StatisticDataItem{ID: id} })
}

func TestGetStatistics_Unfiltered(t *testing.T) {
	s := newService(t)
	res, err := s.GetStatistics(context.Background(), &StatisticRequest{DataItems: items(
		StatisticTypeDailyKeysIssued,
		StatisticTypeDailyActivations,
		StatisticTypeDailyTransactionCount,
		StatisticTypeDailyRevenue,
		StatisticTypeTotalActiveKeys,
		StatisticTypeTotalActiveActivations,
	)})
	require.NoError(t, err)

	assert.Equal(t, []StatisticDataPoint{{Date: "2025-01-01", Value: 2}, {Date: "2025-01-02", Value: 1}}, res.DataItems[StatisticTypeDailyKeysIssued])
	assert.Equal(t, []StatisticDataPoint{{Date: "2025-01-01", Value: 1}, {Date: "2025-01-03", Value: 1}}, res.DataItems[StatisticTypeDailyActivations])
	assert.Equal(t, []StatisticDataPoint{{Date: "2025-01-01", Value: 2}, {Date: "2025-01-02", Value: 1}}, res.DataItems[StatisticTypeDailyTransactionCount])
	assert.Equal(t, []StatisticDataPoint{
		{Date: "2025-01-01", Label: "EUR", Value: 500},
		{Date: "2025-01-01", Label: "USD", Value: 800},
		{Date: "2025-01-02", Label: "USD", Value: 300},
	}, res.DataItems[StatisticTypeDailyRevenue])
	// k2 expired, k3 disabled
	assert.Equal(t, []StatisticDataPoint{{Value: 1}}, res.DataItems[StatisticTypeTotalActiveKeys])
	assert.Equal(t, []StatisticDataPoint{{Value: 1}}, res.DataItems[StatisticTypeTotalActiveActivations])
}

func TestGetStatistics_Filters(t *testing.T) {
	s := newService(t)
	res, err := s.GetStatistics(context.Background(), &StatisticRequest{
		Filters: []*types.CommonFilter{
			{Field: "product_id", Operator: types.CommonFilterOperatorEq, Values: []any{"plugin"}},
			{Field: "date", Operator: types.CommonFilterOperatorRange, Values: []any{"2025-01-02", "2025-01-31"}},
		},
		DataItems: items(StatisticTypeDailyKeysIssued, StatisticTypeDailyRevenue, StatisticTypeDailyActivations),
	})
	require.NoError(t, err)
	assert.Equal(t, []StatisticDataPoint{{Date: "2025-01-02", Value: 1}}, res.DataItems[StatisticTypeDailyKeysIssued])
	assert.Equal(t, []StatisticDataPoint{{Date: "2025-01-02", Label: "USD", Value: 300}}, res.DataItems[StatisticTypeDailyRevenue])

	// activations cannot be filtered by product
	v, ok := res.DataItems[StatisticTypeDailyActivations]
	assert.True(t, ok)
	assert.Nil(t, v)
}

func TestGetStatistics_RejectsBadRequests(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	for name, req := range map[string]*StatisticRequest{
		"unknown filter": {
			Filters:   []*types.CommonFilter{{Field: "status", Operator: types.CommonFilterOperatorEq, Values: []any{"active"}}},
			DataItems: items(StatisticTypeDailyKeysIssued),
		},
		"bad date": {
			Filters:   []*types.CommonFilter{{Field: "date", Operator: types.CommonFilterOperatorGte, Values: []any{"01/02/2025"}}},
			DataItems: items(StatisticTypeDailyKeysIssued),
		},
		"unknown item": {DataItems: items("daily_gmv")},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := s.GetStatistics(ctx, req)
			assert.ErrorIs(t, err, errs.ErrInvalidArgument)
		})
	}
}
