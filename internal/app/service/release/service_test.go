package release

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fatflowers/licensing/internal/app/service/activation"
	"github.com/fatflowers/licensing/internal/app/service/license"
	"github.com/fatflowers/licensing/internal/app/service/product"
	"github.com/fatflowers/licensing/internal/models"
	"github.com/fatflowers/licensing/internal/platform/db/dbtest"
	"github.com/fatflowers/licensing/pkg/cache"
	"github.com/fatflowers/licensing/pkg/config"
	"github.com/fatflowers/licensing/pkg/errs"
	"github.com/fatflowers/licensing/pkg/tool"
	"github.com/fatflowers/licensing/pkg/types"
)

type paidPayments struct{}

func (paidPayments) TransactionCleared(context.Context, string) (bool, error) { return true, nil }

func (paidPayments) SubscriptionStatus(context.Context, string) (types.SubscriptionStatus, bool, error) {
	return "", false, nil
}

type fixture struct {
	svc         *Service
	products    *product.Service
	keys        *license.Service
	activations *activation.Service
	counts      *cache.Memory[int64]
	db          *gorm.DB
}

func newFixture(t *testing.T) *fixture {
	gdb := dbtest.New(t)
	cfg := &config.Config{
		Cache:    config.CacheConfig{UpgradeCountTTL: time.Hour, ChangelogTTL: time.Minute},
		Products: []config.ProductConfig{{ID: "app", Name: "App"}, {ID: "other", Name: "Other"}},
	}
	log := zap.NewNop().Sugar()
	products := product.NewService(gdb, log, cfg)
	require.NoError(t, products.Seed(context.Background()))
	keys := license.NewService(gdb, log, products, paidPayments{})
	counts := cache.NewMemory[int64](16)
	svc := NewService(Params{
		DB: gdb, Log: log, Cfg: cfg, Products: products,
		Counts: counts, Changelogs: cache.NewMemory[string](16),
	})
	return &fixture{
		svc:         svc,
		products:    products,
		keys:        keys,
		activations: activation.NewService(gdb, log, keys, products),
		counts:      counts,
		db:          gdb,
	}
}

func (f *fixture) release(t *testing.T, version string, typ types.ReleaseType) *models.Release {
	r, err := f.svc.Create(context.Background(), CreateRequest{
		ProductID: "app", Download: "https://dl/app-" + version + ".zip", Version: version, Type: typ,
	})
	require.NoError(t, err)
	return r
}

func (f *fixture) current(t *testing.T) (string, string) {
	p, err := f.products.Get(context.Background(), "app")
	require.NoError(t, err)
	return p.CurrentVersion, p.CurrentDownload
}

func (f *fixture) activate(t *testing.T, productID, location string, track types.Track) (*models.Key, *models.Activation) {
	ctx := context.Background()
	k := &models.Key{TransactionID: tool.GenerateUUIDV7(), ProductID: productID, CustomerID: "cus"}
	require.NoError(t, f.keys.Create(ctx, k))
	a, err := f.activations.Create(ctx, activation.CreateRequest{Key: k.Key, Location: location, Track: track})
	require.NoError(t, err)
	return k, a
}

func TestCreate_Validation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.Create(ctx, CreateRequest{ProductID: "app", Download: "d", Version: "1.0", Type: "hotfix"})
	require.ErrorIs(t, err, errs.ErrInvalidArgument)
	_, err = f.svc.Create(ctx, CreateRequest{ProductID: "app", Download: "d", Version: "1.0", Type: types.ReleaseTypeMajor, Status: "live"})
	require.ErrorIs(t, err, errs.ErrInvalidArgument)
	_, err = f.svc.Create(ctx, CreateRequest{ProductID: "app", Download: "", Version: "1.0", Type: types.ReleaseTypeMajor})
	require.ErrorIs(t, err, errs.ErrInvalidArgument)
	_, err = f.svc.Create(ctx, CreateRequest{ProductID: "ghost", Download: "d", Version: "1.0", Type: types.ReleaseTypeMajor})
	require.ErrorIs(t, err, errs.ErrNotFound)

	r := f.release(t, "1.0", types.ReleaseTypeMajor)
	assert.Equal(t, types.ReleaseStatusDraft, r.Status)
	assert.Nil(t, r.StartDate)
	v, _ := f.current(t)
	assert.Empty(t, v)
}

func TestCreate_ActivePublishesImmediately(t *testing.T) {
	f := newFixture(t)
	r, err := f.svc.Create(context.Background(), CreateRequest{
		ProductID: "app", Download: "https://dl/app-1.0.zip", Version: "1.0", Type: types.ReleaseTypeMajor, Status: types.ReleaseStatusActive,
	})
	require.NoError(t, err)
	assert.NotNil(t, r.StartDate)
	v, d := f.current(t)
	assert.Equal(t, "1.0", v)
	assert.Equal(t, "https://dl/app-1.0.zip", d)
}

func TestActivatePause_RestoresPreviousVersion(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	p0 := f.release(t, "1.0", types.ReleaseTypeMajor)
	_, err := f.svc.Activate(ctx, p0.ID)
	require.NoError(t, err)

	r := f.release(t, "1.1", types.ReleaseTypeMinor)
	r, err = f.svc.Activate(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, types.ReleaseStatusActive, r.Status)
	require.NotNil(t, r.StartDate)
	v, _ := f.current(t)
	assert.Equal(t, "1.1", v)

	_, err = f.svc.Pause(ctx, r.ID)
	require.NoError(t, err)
	v, d := f.current(t)
	assert.Equal(t, "1.0", v)
	assert.Equal(t, "https://dl/app-1.0.zip", d)

	// a second pause cannot roll back past 1.0
	_, err = f.svc.Pause(ctx, r.ID)
	require.ErrorIs(t, err, errs.ErrInvalidTransition)
	v, _ = f.current(t)
	assert.Equal(t, "1.0", v)

	// reactivating stashes 1.0 again
	_, err = f.svc.Activate(ctx, r.ID)
	require.NoError(t, err)
	_, err = f.svc.Pause(ctx, r.ID)
	require.NoError(t, err)
	v, _ = f.current(t)
	assert.Equal(t, "1.0", v)
}

func TestPause_KeepsNewerReleaseLive(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.release(t, "1.0", types.ReleaseTypeMajor)
	b := f.release(t, "1.1", types.ReleaseTypeMinor)
	_, err := f.svc.Activate(ctx, a.ID)
	require.NoError(t, err)
	_, err = f.svc.Activate(ctx, b.ID)
	require.NoError(t, err)

	_, err = f.svc.Pause(ctx, a.ID)
	require.NoError(t, err)
	v, _ := f.current(t)
	assert.Equal(t, "1.1", v)
}

func TestArchive_IsTerminal(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	r := f.release(t, "1.0", types.ReleaseTypeMajor)
	_, err := f.svc.Activate(ctx, r.ID)
	require.NoError(t, err)

	_, err = f.svc.Archive(ctx, r.ID)
	require.NoError(t, err)
	v, _ := f.current(t)
	assert.Equal(t, "1.0", v, "archiving leaves the product alone")

	_, err = f.svc.Archive(ctx, r.ID)
	require.ErrorIs(t, err, errs.ErrInvalidTransition)
	_, err = f.svc.Activate(ctx, r.ID)
	require.ErrorIs(t, err, errs.ErrInvalidTransition)
	_, err = f.svc.Pause(ctx, r.ID)
	require.ErrorIs(t, err, errs.ErrInvalidTransition)
	_, err = f.svc.SetVersion(ctx, r.ID, "9.9")
	require.ErrorIs(t, err, errs.ErrInvalidTransition)
}

func TestSetters(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	r := f.release(t, "1.0", types.ReleaseTypeMajor)

	r, err := f.svc.SetChangelog(ctx, r.ID, "Fixed A.", "")
	require.NoError(t, err)
	r, err = f.svc.SetChangelog(ctx, r.ID, " Fixed B.", ChangelogAppend)
	require.NoError(t, err)
	assert.Equal(t, "Fixed A. Fixed B.", r.Changelog)
	_, err = f.svc.SetChangelog(ctx, r.ID, "x", "prepend")
	require.ErrorIs(t, err, errs.ErrInvalidArgument)

	_, err = f.svc.SetType(ctx, r.ID, "bogus")
	require.ErrorIs(t, err, errs.ErrInvalidArgument)
	r, err = f.svc.SetType(ctx, r.ID, types.ReleaseTypeSecurity)
	require.NoError(t, err)
	assert.Equal(t, types.ReleaseTypeSecurity, r.Type)

	_, err = f.svc.Activate(ctx, r.ID)
	require.NoError(t, err)
	_, err = f.svc.SetVersion(ctx, r.ID, "1.0.1")
	require.NoError(t, err)
	_, err = f.svc.SetDownload(ctx, r.ID, "https://dl/app-1.0.1.zip")
	require.NoError(t, err)
	v, d := f.current(t)
	assert.Equal(t, "1.0.1", v)
	assert.Equal(t, "https://dl/app-1.0.1.zip", d)

	_, err = f.svc.Pause(ctx, r.ID)
	require.NoError(t, err)
	_, err = f.svc.SetChangelog(ctx, r.ID, "nope", ChangelogReplace)
	require.ErrorIs(t, err, errs.ErrInvalidTransition)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	r := f.release(t, "1.0", types.ReleaseTypeMajor)
	_, err := f.svc.Activate(ctx, r.ID)
	require.NoError(t, err)
	require.ErrorIs(t, f.svc.Delete(ctx, r.ID), errs.ErrInvalidTransition)

	_, err = f.svc.Archive(ctx, r.ID)
	require.NoError(t, err)
	require.NoError(t, f.svc.Delete(ctx, r.ID))
	_, err = f.svc.Get(ctx, r.ID)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestLatestForActivation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	stableKey, stable := f.activate(t, "app", "stable-site", types.TrackStable)
	preKey, pre := f.activate(t, "app", "beta-site", types.TrackPreRelease)

	got, err := f.svc.LatestForActivation(ctx, stable, stableKey)
	require.NoError(t, err)
	assert.Nil(t, got)

	restricted := f.release(t, "3.0", types.ReleaseTypeRestricted)
	beta := f.release(t, "2.0-beta1", types.ReleaseTypePreRelease)
	v19 := f.release(t, "1.9", types.ReleaseTypeMinor)
	v110 := f.release(t, "1.10", types.ReleaseTypeMinor)
	for _, r := range []*models.Release{restricted, beta, v19, v110} {
		_, err := f.svc.Activate(ctx, r.ID)
		require.NoError(t, err)
	}

	got, err = f.svc.LatestForActivation(ctx, stable, stableKey)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "1.10", got.Version, "numeric comparison, not lexical")

	got, err = f.svc.LatestForActivation(ctx, pre, preKey)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "2.0-beta1", got.Version)

	_, err = f.svc.LatestForActivation(ctx, pre, stableKey)
	require.ErrorIs(t, err, errs.ErrInvalidArgument)
}

func TestRecordUpgradeAndProgress(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	k1, a1 := f.activate(t, "app", "one", types.TrackStable)
	_, _ = f.activate(t, "app", "two", types.TrackStable)
	_, _ = f.activate(t, "other", "three", types.TrackStable)

	old := f.release(t, "1.0", types.ReleaseTypeMajor)
	_, err := f.svc.Activate(ctx, old.ID)
	require.NoError(t, err)
	r := f.release(t, "1.1", types.ReleaseTypeMinor)
	r, err = f.svc.Activate(ctx, r.ID)
	require.NoError(t, err)

	total, err := f.svc.TotalActiveActivations(ctx, "app")
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	old, err = f.svc.Get(ctx, old.ID)
	require.NoError(t, err)
	_, err = f.svc.RecordUpgrade(ctx, a1, k1, old, time.Time{})
	require.NoError(t, err)
	u, err := f.svc.RecordUpgrade(ctx, a1, k1, r, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "1.0", u.PreviousVersion)
	require.NotNil(t, a1.ReleaseID)
	assert.Equal(t, r.ID, *a1.ReleaseID)

	p, err := f.svc.Progress(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.Updated)
	assert.Equal(t, int64(2), p.Total)
	assert.InDelta(t, 50.0, p.Percent, 0.001)

	upgrades, err := f.svc.Upgrades(ctx, a1.ID)
	require.NoError(t, err)
	assert.Len(t, upgrades, 2)

	draft := f.release(t, "1.2", types.ReleaseTypeMinor)
	_, err = f.svc.RecordUpgrade(ctx, a1, k1, draft, time.Time{})
	require.ErrorIs(t, err, errs.ErrInvalidArgument)
}

func TestTotalUpdated_IsCached(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	r := f.release(t, "1.0", types.ReleaseTypeMajor)

	n, err := f.svc.TotalUpdated(ctx, r.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	// rows written behind the service are not seen until the entry expires
	require.NoError(t, f.db.Create(&models.Upgrade{ID: tool.GenerateUUIDV7(), ActivationID: "a", ReleaseID: r.ID, UpgradedAt: time.Now()}).Error)
	n, err = f.svc.TotalUpdated(ctx, r.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	f.counts.Delete(ctx, "release-upgrade-count:"+r.ID)
	n, err = f.svc.TotalUpdated(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestChangelog(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return now }

	r1 := f.release(t, "1.0", types.ReleaseTypeMajor)
	_, err := f.svc.SetChangelog(ctx, r1.ID, "Initial release.", ChangelogReplace)
	require.NoError(t, err)
	_, err = f.svc.Activate(ctx, r1.ID)
	require.NoError(t, err)

	log, err := f.svc.Changelog(ctx, "app", 0)
	require.NoError(t, err)
	assert.Equal(t, "v1.0 - 2025-01-01\nInitial release.", log)

	now = now.AddDate(0, 1, 0)
	r2 := f.release(t, "1.1", types.ReleaseTypeMinor)
	_, err = f.svc.SetChangelog(ctx, r2.ID, "Faster.", ChangelogReplace)
	require.NoError(t, err)
	f.release(t, "2.0", types.ReleaseTypeMajor) // draft, never listed
	_, err = f.svc.Activate(ctx, r2.ID)
	require.NoError(t, err)

	log, err = f.svc.Changelog(ctx, "app", 0)
	require.NoError(t, err)
	assert.Equal(t, "v1.1 - 2025-02-01\nFaster.\n\nv1.0 - 2025-01-01\nInitial release.", log)

	log, err = f.svc.Changelog(ctx, "app", 1)
	require.NoError(t, err)
	assert.Equal(t, "v1.1 - 2025-02-01\nFaster.", log)
}
