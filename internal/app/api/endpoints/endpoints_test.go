package endpoints

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fatflowers/licensing/internal/app/api/dispatch"
	"github.com/fatflowers/licensing/internal/app/service/activation"
	"github.com/fatflowers/licensing/internal/app/service/license"
	"github.com/fatflowers/licensing/internal/app/service/product"
	"github.com/fatflowers/licensing/internal/app/service/release"
	"github.com/fatflowers/licensing/internal/models"
	"github.com/fatflowers/licensing/internal/platform/db/dbtest"
	"github.com/fatflowers/licensing/internal/platform/download"
	"github.com/fatflowers/licensing/pkg/cache"
	"github.com/fatflowers/licensing/pkg/config"
	"github.com/fatflowers/licensing/pkg/tool"
	"github.com/fatflowers/licensing/pkg/types"
)

type stubPayments struct{ cleared bool }

func (s *stubPayments) TransactionCleared(context.Context, string) (bool, error) {
	return s.cleared, nil
}

func (s *stubPayments) SubscriptionStatus(context.Context, string) (types.SubscriptionStatus, bool, error) {
	return "", false, nil
}

type fixture struct {
	engine      *gin.Engine
	payments    *stubPayments
	keys        *license.Service
	activations *activation.Service
	releases    *release.Service
}

type envelope struct {
	Success bool           `json:"success"`
	Data    map[string]any `json:"data"`
	Error   *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newFixture(t *testing.T) *fixture {
	gin.SetMode(gin.TestMode)
	gdb := dbtest.New(t)
	log := zap.NewNop().Sugar()
	cfg := &config.Config{
		API: config.APIConfig{
			Charset:        "UTF-8",
			BaseURL:        "https://licenses.example.com/",
			DownloadSecret: "s3cret",
			DownloadTTL:    time.Hour,
			Realms:         config.RealmConfig{Exists: "exists", Active: "active", ValidActivation: "activation"},
		},
		Cache:    config.CacheConfig{UpgradeCountTTL: time.Minute, ChangelogTTL: time.Minute},
		Products: []config.ProductConfig{{ID: "plugin", Name: "Plugin", OnlineSoftware: true}},
	}
	products := product.NewService(gdb, log, cfg)
	require.NoError(t, products.Seed(context.Background()))
	payments := &stubPayments{cleared: true}
	keys := license.NewService(gdb, log, products, payments)
	activations := activation.NewService(gdb, log, keys, products)
	releases := release.NewService(release.Params{
		DB: gdb, Log: log, Cfg: cfg, Products: products,
		Counts: cache.NewMemory[int64](0), Changelogs: cache.NewMemory[string](0),
	})
	signer, err := download.NewSigner(cfg)
	require.NoError(t, err)

	e := New(Params{Cfg: cfg, Log: log, Keys: keys, Activations: activations, Releases: releases, Products: products, Signer: signer})
	rt := NewRouter(cfg, log, keys, activations, e)
	engine := gin.New()
	engine.Any(BasePath+"/:action", rt.Handle)

	return &fixture{engine: engine, payments: payments, keys: keys, activations: activations, releases: releases}
}

func (f *fixture) key(t *testing.T, max int) *models.Key {
	k := &models.Key{TransactionID: tool.GenerateUUIDV7(), ProductID: "plugin", CustomerID: "cus", Max: max}
	require.NoError(t, f.keys.Create(context.Background(), k))
	return k
}

func (f *fixture) call(t *testing.T, action, user, pass string, form url.Values) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var body *strings.Reader
	if form == nil {
		body = strings.NewReader("")
	} else {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(http.MethodPost, BasePath+"/"+action, body)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if user != "" {
		req.SetBasicAuth(user, pass)
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func (f *fixture) get(t *testing.T, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestActivate(t *testing.T) {
	f := newFixture(t)
	k := f.key(t, 1)

	w, env := f.call(t, "activate", k.Key, "", url.Values{"location": {"https://www.Example.com/"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.True(t, env.Success)
	assert.Equal(t, "example.com", env.Data["location"])
	assert.Equal(t, "active", env.Data["status"])
	assert.Equal(t, "stable", env.Data["track"])
	id := env.Data["id"]

	_, env = f.call(t, "activate", k.Key, "", url.Values{"location": {"example.com"}})
	require.True(t, env.Success)
	assert.Equal(t, id, env.Data["id"], "an active location is returned as is")

	_, env = f.call(t, "activate", k.Key, "", url.Values{"location": {"second.com"}})
	require.False(t, env.Success)
	assert.Equal(t, dispatch.CodeMaxActivations, env.Error.Code)

	_, env = f.call(t, "activate", k.Key, "", url.Values{"location": {" "}})
	assert.Equal(t, dispatch.CodeInvalidLocation, env.Error.Code)

	_, env = f.call(t, "activate", k.Key, "", url.Values{"location": {"third.com"}, "track": {"nightly"}})
	assert.Equal(t, dispatch.CodeInvalidParameter, env.Error.Code)
}

func TestActivate_RejectsInactiveOrUnpaidKeys(t *testing.T) {
	f := newFixture(t)
	k := f.key(t, 0)

	require.NoError(t, f.keys.SetStatus(context.Background(), k.Key, types.KeyStatusDisabled))
	w, env := f.call(t, "activate", k.Key, "", url.Values{"location": {"example.com"}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, `Basic realm="active"`, w.Header().Get("WWW-Authenticate"))
	assert.Equal(t, dispatch.CodeInvalidKey, env.Error.Code)

	require.NoError(t, f.keys.SetStatus(context.Background(), k.Key, types.KeyStatusActive))
	f.payments.cleared = false
	w, env = f.call(t, "activate", k.Key, "", url.Values{"location": {"example.com"}})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, dispatch.CodeInvalidKey, env.Error.Code)
}

func TestDeactivateAndInfo(t *testing.T) {
	f := newFixture(t)
	k := f.key(t, 5)
	_, env := f.call(t, "activate", k.Key, "", url.Values{"location": {"one.com"}})
	id := env.Data["id"].(string)
	_, env = f.call(t, "activate", k.Key, "", url.Values{"location": {"two.com"}})
	require.True(t, env.Success)

	w, env := f.call(t, "deactivate", k.Key, id, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "deactivated", env.Data["status"])
	assert.NotNil(t, env.Data["deactivation"])

	w, env = f.call(t, "deactivate", k.Key, id, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dispatch.CodeInvalidActivation, env.Error.Code)

	require.NoError(t, f.keys.SetStatus(context.Background(), k.Key, types.KeyStatusDisabled))
	w, env = f.call(t, "info", k.Key, "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "disabled", env.Data["status"])
	assert.Equal(t, "Plugin", env.Data["product_name"])
	acts := env.Data["activations"].(map[string]any)
	assert.EqualValues(t, 2, acts["count"])
	assert.EqualValues(t, 1, acts["count_active"])
	assert.Len(t, acts["list"], 2)

	w, _ = f.call(t, "info", "NOT-A-KEY", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestVersionAndDownload(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	k := f.key(t, 0)
	_, env := f.call(t, "activate", k.Key, "", url.Values{"location": {"site.com"}})
	actID := env.Data["id"].(string)

	_, env = f.call(t, "version", k.Key, actID, nil)
	require.False(t, env.Success)
	assert.Equal(t, dispatch.CodeNoRelease, env.Error.Code)

	r, err := f.releases.Create(ctx, release.CreateRequest{
		ProductID: "plugin", Download: "https://files.example.com/plugin-1.2.zip", Version: "1.2",
		Type: types.ReleaseTypeMinor, Status: types.ReleaseStatusActive, Changelog: "Fixes.",
	})
	require.NoError(t, err)

	_, env = f.call(t, "version", k.Key, actID, nil)
	require.True(t, env.Success)
	assert.Equal(t, "1.2", env.Data["version"])
	assert.Contains(t, env.Data["changelog"], "Fixes.")
	pkg, _ := env.Data["package"].(string)
	require.True(t, strings.HasPrefix(pkg, "https://licenses.example.com/license-api/download?token="), pkg)

	u, err := url.Parse(pkg)
	require.NoError(t, err)
	w := f.get(t, u.RequestURI())
	require.Equal(t, http.StatusFound, w.Code, w.Body.String())
	assert.Equal(t, r.Download, w.Header().Get("Location"))

	a, err := f.activations.Get(ctx, actID)
	require.NoError(t, err)
	require.NotNil(t, a.ReleaseID)
	assert.Equal(t, r.ID, *a.ReleaseID)

	// downloading the installed release again records nothing new
	require.Equal(t, http.StatusFound, f.get(t, u.RequestURI()).Code)
	upgrades, err := f.releases.Upgrades(ctx, actID)
	require.NoError(t, err)
	assert.Len(t, upgrades, 1)

	w = f.get(t, BasePath+"/download?token=forged")
	assert.Equal(t, http.StatusForbidden, w.Code)

	require.NoError(t, f.keys.SetStatus(ctx, k.Key, types.KeyStatusExpired))
	_, env = f.call(t, "version", k.Key, actID, nil)
	require.True(t, env.Success)
	assert.Nil(t, env.Data["package"])
	assert.Equal(t, http.StatusForbidden, f.get(t, u.RequestURI()).Code)
}
