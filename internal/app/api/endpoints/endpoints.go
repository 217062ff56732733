// Package endpoints implements the license API actions served through
// dispatch.
package endpoints

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/samber/lo"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fatflowers/licensing/internal/app/api/dispatch"
	"github.com/fatflowers/licensing/internal/app/service/activation"
	"github.com/fatflowers/licensing/internal/app/service/license"
	"github.com/fatflowers/licensing/internal/app/service/product"
	"github.com/fatflowers/licensing/internal/app/service/release"
	"github.com/fatflowers/licensing/internal/models"
	"github.com/fatflowers/licensing/internal/platform/download"
	"github.com/fatflowers/licensing/pkg/config"
	"github.com/fatflowers/licensing/pkg/errs"
	"github.com/fatflowers/licensing/pkg/logctx"
	"github.com/fatflowers/licensing/pkg/types"
)

// BasePath is where the license API is mounted; actions follow it.
const BasePath = "/license-api"

type Params struct {
	fx.In

	Cfg         *config.Config
	Log         *zap.SugaredLogger
	Keys        *license.Service
	Activations *activation.Service
	Releases    *release.Service
	Products    *product.Service
	Signer      *download.Signer
}

type Endpoints struct {
	keys        *license.Service
	activations *activation.Service
	releases    *release.Service
	products    *product.Service
	signer      *download.Signer
	baseURL     string
	log         *zap.SugaredLogger
}

func New(p Params) *Endpoints {
	return &Endpoints{
		keys:        p.Keys,
		activations: p.Activations,
		releases:    p.Releases,
		products:    p.Products,
		signer:      p.Signer,
		baseURL:     strings.TrimRight(p.Cfg.API.BaseURL, "/"),
		log:         p.Log,
	}
}

// NewRouter builds the license API router with every action registered.
func NewRouter(cfg *config.Config, log *zap.SugaredLogger, keys *license.Service, activations *activation.Service, e *Endpoints) *dispatch.Router {
	rt := dispatch.NewRouter(keys, activations, log, dispatch.Options{Charset: cfg.API.Charset, Realms: cfg.API.Realms})
	e.Register(rt)
	return rt
}

func (e *Endpoints) Register(rt *dispatch.Router) {
	const invalidKey = "Invalid license key."
	const invalidActivation = "Invalid activation record."
	rt.Register("activate", dispatch.Authenticate(dispatch.EndpointFunc(e.activate), dispatch.ModeActive, dispatch.CodeInvalidKey, invalidKey))
	rt.Register("deactivate", dispatch.Authenticate(dispatch.EndpointFunc(e.deactivate), dispatch.ModeValidActivation, dispatch.CodeInvalidActivation, invalidActivation))
	rt.Register("info", dispatch.Authenticate(dispatch.EndpointFunc(e.info), dispatch.ModeExists, dispatch.CodeInvalidKey, invalidKey))
	rt.Register("version", dispatch.Authenticate(dispatch.EndpointFunc(e.version), dispatch.ModeValidActivation, dispatch.CodeInvalidActivation, invalidActivation))
	rt.Register("download", dispatch.EndpointFunc(e.download))
}

// activate records the caller's location against the key. Activating a
// location that is already active returns the existing record.
func (e *Endpoints) activate(ctx context.Context, req *dispatch.Request) (*dispatch.Response, error) {
	k := req.Key
	p, err := e.products.Get(ctx, k.ProductID)
	if err != nil {
		return nil, err
	}
	location, err := activation.NormalizeLocation(req.Param("location"), p.OnlineSoftware)
	if err != nil {
		return nil, dispatch.NewError(dispatch.CodeInvalidLocation, "A valid activation location is required.")
	}
	track := types.Track(req.Param("track"))
	if track == "" {
		track = types.TrackStable
	}
	if !track.Valid() {
		return nil, dispatch.NewError(dispatch.CodeInvalidParameter, "Unknown release track %q.", track)
	}

	active, err := e.activations.ListByKey(ctx, k.Key, types.ActivationStatusActive)
	if err != nil {
		return nil, err
	}
	if a, ok := lo.Find(active, func(a *models.Activation) bool { return a.Location == location }); ok {
		return dispatch.OK(dispatch.Entity(activationWire{a: a})), nil
	}

	valid, err := e.keys.IsValid(ctx, k.Key)
	if err != nil {
		return nil, err
	}
	if !valid {
		if !k.HasCapacity(int64(len(active))) {
			return nil, maxActivations(k)
		}
		return nil, dispatch.NewError(dispatch.CodeInvalidKey, "This license key is not valid for new activations.")
	}

	var releaseID *string
	if v := req.Param("version"); v != "" {
		r, err := e.releases.FindByVersion(ctx, k.ProductID, v)
		if err != nil {
			return nil, err
		}
		if r != nil {
			releaseID = &r.ID
		}
	}

	a, err := e.activations.Create(ctx, activation.CreateRequest{Key: k.Key, Location: location, ReleaseID: releaseID, Track: track})
	switch {
	case errors.Is(err, errs.ErrCapacityExceeded):
		return nil, maxActivations(k)
	case errors.Is(err, errs.ErrDuplicateLocation):
		return nil, dispatch.NewError(dispatch.CodeInvalidLocation, "This location is already active.")
	case errors.Is(err, errs.ErrInvalidTransition):
		return nil, dispatch.NewError(dispatch.CodeDisabledLocation, "This location has been disabled.")
	case errors.Is(err, errs.ErrInvalidArgument):
		return nil, dispatch.NewError(dispatch.CodeInvalidParameter, "Invalid activation request.")
	case err != nil:
		return nil, err
	}
	return dispatch.OK(dispatch.Entity(activationWire{a: a})), nil
}

func maxActivations(k *models.Key) *dispatch.Error {
	return dispatch.NewError(dispatch.CodeMaxActivations, "This license key has reached its maximum of %d activations.", k.Max)
}

func (e *Endpoints) deactivate(ctx context.Context, req *dispatch.Request) (*dispatch.Response, error) {
	a, err := e.activations.Deactivate(ctx, req.Activation.ID, time.Time{})
	if errors.Is(err, errs.ErrAlreadyDeactivated) || errors.Is(err, errs.ErrNotFound) {
		return nil, dispatch.NewError(dispatch.CodeInvalidActivation, "This activation is no longer active.")
	}
	if err != nil {
		return nil, err
	}
	return dispatch.OK(dispatch.Entity(activationWire{a: a})), nil
}

// info describes the key and its activations. Any existing key may ask.
func (e *Endpoints) info(ctx context.Context, req *dispatch.Request) (*dispatch.Response, error) {
	k := req.Key
	activations, err := e.activations.ListByKey(ctx, k.Key, "")
	if err != nil {
		return nil, err
	}
	p, err := e.products.Get(ctx, k.ProductID)
	if err != nil && !errors.Is(err, errs.ErrNotFound) {
		return nil, err
	}
	return dispatch.OK(dispatch.Entity(keyWire{k: k, p: p, activations: activations})), nil
}

// version reports the release the activation should be running. Keys that
// are no longer active still learn about it but get no download link.
func (e *Endpoints) version(ctx context.Context, req *dispatch.Request) (*dispatch.Response, error) {
	k, a := req.Key, req.Activation
	r, err := e.releases.LatestForActivation(ctx, a, k)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, dispatch.NewError(dispatch.CodeNoRelease, "No release is available for this product.")
	}
	changelog, err := e.releases.Changelog(ctx, k.ProductID, 0)
	if err != nil {
		return nil, err
	}

	data := releaseWire{r: r}.ToWireFormat()
	data["changelog"] = dispatch.String(changelog)
	data["package"] = dispatch.Null()
	data["expires"] = dispatch.Null()
	if k.Status == types.KeyStatusActive {
		token, expires, err := e.signer.Sign(a.ID, r.ID)
		if err != nil {
			return nil, err
		}
		data["package"] = dispatch.String(e.baseURL + BasePath + "/download?token=" + url.QueryEscape(token))
		data["expires"] = dispatch.Time(&expires)
	}
	return dispatch.OK(data), nil
}

// download redeems a link from version: it records the upgrade and redirects
// to the release file.
func (e *Endpoints) download(ctx context.Context, req *dispatch.Request) (*dispatch.Response, error) {
	invalid := dispatch.NewError(dispatch.CodeInvalidDownload, "This download link is invalid or has expired.").WithStatus(http.StatusForbidden)

	claims, err := e.signer.Verify(req.Param("token"))
	if err != nil {
		return nil, invalid
	}
	a, err := e.activations.Find(ctx, claims.ActivationID)
	if err != nil {
		return nil, err
	}
	if !a.IsActive() {
		return nil, invalid
	}
	k, err := e.keys.Find(ctx, a.Key)
	if err != nil {
		return nil, err
	}
	if k == nil || k.Status != types.KeyStatusActive {
		return nil, invalid
	}
	r, err := e.releases.Find(ctx, claims.ReleaseID)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, invalid
	}

	if a.ReleaseID == nil || *a.ReleaseID != r.ID {
		_, err := e.releases.RecordUpgrade(ctx, a, k, r, time.Time{})
		if errors.Is(err, errs.ErrInvalidArgument) {
			return nil, invalid
		}
		if err != nil {
			return nil, err
		}
		logctx.FromCtx(ctx, e.log).Infow("release downloaded", "activation_id", a.ID, "release_id", r.ID, "version", r.Version)
	}

	resp := dispatch.OK(dispatch.Mapping{"url": dispatch.String(r.Download)}).SetHeader("Location", r.Download)
	resp.Status = http.StatusFound
	return resp, nil
}

var Module = fx.Options(
	fx.Provide(download.NewSigner, New, NewRouter),
)
