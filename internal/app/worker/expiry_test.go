package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fatflowers/licensing/internal/app/service/license"
	"github.com/fatflowers/licensing/internal/app/service/product"
	"github.com/fatflowers/licensing/internal/models"
	"github.com/fatflowers/licensing/internal/platform/db/dbtest"
	"github.com/fatflowers/licensing/pkg/config"
	"github.com/fatflowers/licensing/pkg/types"
)

type countingExpirer struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (c *countingExpirer) ExpireDue(context.Context, time.Time) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return 1, c.err
}

func (c *countingExpirer) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

type clearedPayments struct{}

func (clearedPayments) TransactionCleared(context.Context, string) (bool, error) { return true, nil }

func (clearedPayments) SubscriptionStatus(context.Context, string) (types.SubscriptionStatus, bool, error) {
	return "", false, nil
}

func TestExpirySweeper_ExpiresOverdueKeys(t *testing.T) {
	ctx := context.Background()
	gdb := dbtest.New(t)
	log := zap.NewNop().Sugar()
	cfg := &config.Config{Products: []config.ProductConfig{
		{ID: "monthly", Name: "Monthly", Recurring: types.Interval{Unit: types.IntervalUnitMonth, Count: 1}},
	}}
	products := product.NewService(gdb, log, cfg)
	require.NoError(t, products.Seed(ctx))
	keys := license.NewService(gdb, log, products, clearedPayments{})

	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	past, future := now.Add(-time.Hour), now.Add(time.Hour)
	overdue := &models.Key{TransactionID: "t1", ProductID: "monthly", CustomerID: "c", ExpiresAt: &past}
	current := &models.Key{TransactionID: "t2", ProductID: "monthly", CustomerID: "c", ExpiresAt: &future}
	require.NoError(t, keys.Create(ctx, overdue))
	require.NoError(t, keys.Create(ctx, current))

	s := NewExpirySweeper(keys, log, time.Hour)
	s.now = func() time.Time { return now }
	require.Equal(t, 1, s.RunOnce(ctx))
	assert.Equal(t, now, s.LastRun())

	k, err := keys.Get(ctx, overdue.Key)
	require.NoError(t, err)
	assert.Equal(t, types.KeyStatusExpired, k.Status)
	k, err = keys.Get(ctx, current.Key)
	require.NoError(t, err)
	assert.Equal(t, types.KeyStatusActive, k.Status)

	require.Equal(t, 0, s.RunOnce(ctx))
}

func TestExpirySweeper_StartRunsImmediatelyAndStops(t *testing.T) {
	exp := &countingExpirer{}
	s := NewExpirySweeper(exp, zap.NewNop().Sugar(), time.Hour)
	s.Start()
	s.Start()
	require.Eventually(t, func() bool { return exp.Calls() == 1 }, time.Second, 5*time.Millisecond)
	s.Stop()
	s.Stop()
	assert.Equal(t, 1, exp.Calls())
}

func TestExpirySweeper_FailureKeepsLastRun(t *testing.T) {
	exp := &countingExpirer{err: errors.New("db down")}
	s := NewExpirySweeper(exp, zap.NewNop().Sugar(), time.Hour)
	s.RunOnce(context.Background())
	assert.True(t, s.LastRun().IsZero())
}
