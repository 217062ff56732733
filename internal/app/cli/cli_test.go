package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fatflowers/licensing/internal/app/service/activation"
	"github.com/fatflowers/licensing/internal/app/service/license"
	"github.com/fatflowers/licensing/internal/app/service/payment"
	"github.com/fatflowers/licensing/internal/app/service/product"
	"github.com/fatflowers/licensing/internal/app/service/release"
	"github.com/fatflowers/licensing/internal/platform/db/dbtest"
	"github.com/fatflowers/licensing/pkg/cache"
	"github.com/fatflowers/licensing/pkg/config"
	"github.com/fatflowers/licensing/pkg/types"
)

func newDeps(t *testing.T) *Deps {
	gdb := dbtest.New(t)
	log := zap.NewNop().Sugar()
	cfg := &config.Config{Products: []config.ProductConfig{
		{ID: "monthly", Name: "Monthly", Recurring: types.Interval{Unit: types.IntervalUnitMonth, Count: 1}, ActivationLimit: 3},
	}}
	products := product.NewService(gdb, log, cfg)
	require.NoError(t, products.Seed(context.Background()))
	payments := payment.NewService(gdb, log, products)
	keys := license.NewService(gdb, log, products, payments)
	return &Deps{
		Keys:        keys,
		Activations: activation.NewService(gdb, log, keys, products),
		Releases: release.NewService(release.Params{
			DB: gdb, Log: log, Cfg: cfg, Products: products,
			Counts: cache.NewMemory[int64](0), Changelogs: cache.NewMemory[string](0),
		}),
		Payments: payments,
		Products: products,
	}
}

func run(t *testing.T, d *Deps, args ...string) (string, error) {
	t.Helper()
	closed := false
	root := NewRootCommand(func(context.Context) (*Deps, func(), error) {
		return d, func() { closed = true }, nil
	})
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	if err == nil {
		assert.True(t, closed, "services not released")
	}
	return out.String(), err
}

func TestKeyGenerateGetList(t *testing.T) {
	d := newDeps(t)
	out, err := run(t, d, "key", "generate", "--product", "monthly", "--customer", "c1", "--count", "2")
	require.NoError(t, err)
	keys := strings.Fields(out)
	require.Len(t, keys, 2)

	k, err := d.Keys.Get(context.Background(), keys[0])
	require.NoError(t, err)
	assert.Equal(t, 3, k.Max)
	assert.NotNil(t, k.ExpiresAt)
	valid, err := d.Keys.IsValid(context.Background(), k.Key)
	require.NoError(t, err)
	assert.True(t, valid)

	out, err = run(t, d, "key", "get", keys[0][:8]+"...")
	require.NoError(t, err)
	assert.Contains(t, out, keys[0])
	assert.Contains(t, out, `"active_count": 0`)

	out, err = run(t, d, "key", "list", "--customer", "c1")
	require.NoError(t, err)
	assert.Contains(t, out, "2 of 2 keys")

	_, err = run(t, d, "key", "get", "AB...")
	require.Error(t, err)
}

func TestKeyLifecycle(t *testing.T) {
	d := newDeps(t)
	ctx := context.Background()
	out, err := run(t, d, "key", "generate", "--product", "monthly", "--customer", "c1", "--max", "1", "--expires", "2025-01-01")
	require.NoError(t, err)
	key := strings.TrimSpace(out)
	k, err := d.Keys.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 1, k.Max)
	assert.Equal(t, "2025-01-01", k.ExpiresAt.Format(dateLayout))

	out, err = run(t, d, "key", "renew", key)
	require.NoError(t, err)
	assert.Contains(t, out, "renewed until 2025-02-01")

	out, err = run(t, d, "key", "extend", key)
	require.NoError(t, err)
	assert.Contains(t, out, "now expires 2025-03-01")

	_, err = run(t, d, "key", "expire", key, "--when", "2025-02-15")
	require.NoError(t, err)
	k, err = d.Keys.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, types.KeyStatusExpired, k.Status)

	_, err = run(t, d, "key", "disable", key)
	require.NoError(t, err)
	k, err = d.Keys.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, types.KeyStatusDisabled, k.Status)

	_, err = run(t, d, "key", "delete", key)
	require.ErrorContains(t, err, "--yes")
	_, err = run(t, d, "key", "delete", key, "--yes")
	require.NoError(t, err)
	_, err = d.Keys.Get(ctx, key)
	require.Error(t, err)
}

func TestKeyCreate_UsesProductLimit(t *testing.T) {
	d := newDeps(t)
	out, err := run(t, d, "key", "generate", "--product", "monthly", "--customer", "c1")
	require.NoError(t, err)
	k, err := d.Keys.Get(context.Background(), strings.TrimSpace(out))
	require.NoError(t, err)

	out, err = run(t, d, "key", "create", "--product", "monthly", "--customer", "c1", "--transaction", k.TransactionID, "--key", "MANUAL-KEY")
	require.NoError(t, err)
	assert.Equal(t, "MANUAL-KEY", strings.TrimSpace(out))
	manual, err := d.Keys.Get(context.Background(), "MANUAL-KEY")
	require.NoError(t, err)
	assert.Equal(t, 3, manual.Max)

	_, err = run(t, d, "key", "create", "--product", "monthly", "--customer", "c1", "--transaction", "missing")
	require.Error(t, err)
}

func TestReleaseCommands(t *testing.T) {
	d := newDeps(t)
	r, err := d.Releases.Create(context.Background(), release.CreateRequest{
		ProductID: "monthly", Download: "https://cdn.example.com/2.0.zip", Version: "2.0", Type: types.ReleaseTypeMajor,
	})
	require.NoError(t, err)

	out, err := run(t, d, "release", "activate", r.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "monthly 2.0 is active")

	out, err = run(t, d, "release", "list", "--product", "monthly", "--progress")
	require.NoError(t, err)
	assert.Contains(t, out, "0/0")
	assert.Contains(t, out, "1 of 1 releases")

	out, err = run(t, d, "release", "pause", r.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "is paused")

	out, err = run(t, d, "release", "archive", r.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "is archived")

	_, err = run(t, d, "release", "archive", r.ID)
	require.Error(t, err)
}

func TestGroupCommandDoesNotLoad(t *testing.T) {
	root := NewRootCommand(func(context.Context) (*Deps, func(), error) {
		t.Fatal("loader called")
		return nil, nil, nil
	})
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"key"})
	require.NoError(t, root.ExecuteContext(context.Background()))
	assert.Contains(t, out.String(), "generate")
}
