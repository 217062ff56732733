// Package dispatch routes license API actions to endpoints, authenticating
// callers with their license key and activation id.
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fatflowers/licensing/internal/models"
	"github.com/fatflowers/licensing/pkg/config"
	"github.com/fatflowers/licensing/pkg/logctx"
	"github.com/fatflowers/licensing/pkg/metrics"
	"github.com/fatflowers/licensing/pkg/response"
	"github.com/fatflowers/licensing/pkg/types"
)

// KeyFinder looks up a key; a miss is (nil, nil).
type KeyFinder interface {
	Find(ctx context.Context, key string) (*models.Key, error)
}

// ActivationFinder looks up an activation by id; a miss is (nil, nil).
type ActivationFinder interface {
	Find(ctx context.Context, id string) (*models.Activation, error)
}

type Options struct {
	Charset string
	Realms  config.RealmConfig
}

// Router maps actions to endpoints. Endpoints are registered while the
// process starts and never change afterwards.
type Router struct {
	endpoints   map[string]Endpoint
	keys        KeyFinder
	activations ActivationFinder
	log         *zap.SugaredLogger
	opts        Options
}

// DefaultRealm is sent with 401s when no realm is configured for the mode.
const DefaultRealm = "A license key is required to access this resource, passed as the username. Leave password blank."

func NewRouter(keys KeyFinder, activations ActivationFinder, log *zap.SugaredLogger, opts Options) *Router {
	if opts.Charset == "" {
		opts.Charset = "UTF-8"
	}
	if opts.Realms.Exists == "" {
		opts.Realms.Exists = DefaultRealm
	}
	return &Router{
		endpoints:   make(map[string]Endpoint),
		keys:        keys,
		activations: activations,
		log:         log,
		opts:        opts,
	}
}

// Register binds ep to action. Registering an action twice panics.
func (rt *Router) Register(action string, ep Endpoint) {
	if _, dup := rt.endpoints[action]; dup {
		panic(fmt.Sprintf("dispatch: action %q registered twice", action))
	}
	rt.endpoints[action] = ep
}

// Actions lists the registered actions in order.
func (rt *Router) Actions() []string {
	out := make([]string, 0, len(rt.endpoints))
	for a := range rt.endpoints {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// Dispatch serves req with the endpoint registered for req.Action. It always
// returns a response: failures are turned into error envelopes.
func (rt *Router) Dispatch(ctx context.Context, req *Request) (resp *Response) {
	ep, ok := rt.endpoints[req.Action]
	if !ok {
		metrics.Inc(metrics.LicenseAPICalls, "unknown", "not_found")
		return Fail(http.StatusNotFound, http.StatusNotFound, "API Action Not Found")
	}

	if auth, ok := ep.(Authenticated); ok && !rt.authenticate(ctx, auth.AuthMode(), req) {
		metrics.Inc(metrics.LicenseAPICalls, req.Action, "unauthorized")
		code, message := auth.AuthError()
		return Fail(http.StatusUnauthorized, code, message).
			SetHeader("WWW-Authenticate", `Basic realm="`+rt.realm(auth.AuthMode())+`"`)
	}

	defer func() {
		if p := recover(); p != nil {
			logctx.FromCtx(ctx, rt.log).Errorw("license api endpoint panicked", "action", req.Action, "panic", p)
			metrics.Inc(metrics.LicenseAPICalls, req.Action, "error")
			resp = fromError(fmt.Errorf("%v", p))
		}
	}()
	resp, err := ep.Serve(ctx, req)
	if err != nil {
		var apiErr *Error
		if !errors.As(err, &apiErr) {
			logctx.FromCtx(ctx, rt.log).Errorw("license api endpoint failed", "action", req.Action, "err", err)
		}
		metrics.Inc(metrics.LicenseAPICalls, req.Action, "error")
		return fromError(err)
	}
	if resp == nil {
		resp = OK(nil)
	}
	metrics.Inc(metrics.LicenseAPICalls, req.Action, "ok")
	return resp
}

// authenticate resolves the credentials onto req and checks them against mode.
func (rt *Router) authenticate(ctx context.Context, mode Mode, req *Request) bool {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return false
	}
	key, err := rt.keys.Find(ctx, username)
	if err != nil {
		logctx.FromCtx(ctx, rt.log).Errorw("license api key lookup failed", "err", err)
		return false
	}
	if key == nil {
		return false
	}
	req.Key = key

	if password := strings.TrimSpace(req.Password); password != "" {
		a, err := rt.activations.Find(ctx, password)
		if err != nil {
			logctx.FromCtx(ctx, rt.log).Errorw("license api activation lookup failed", "err", err)
		}
		req.Activation = a
	}

	switch mode {
	case ModeExists:
		return true
	case ModeActive:
		return key.Status == types.KeyStatusActive
	case ModeValidActivation:
		a := req.Activation
		return a != nil && a.Status == types.ActivationStatusActive && a.Key == key.Key
	default:
		return false
	}
}

func (rt *Router) realm(mode Mode) string {
	var r string
	switch mode {
	case ModeActive:
		r = rt.opts.Realms.Active
	case ModeValidActivation:
		r = rt.opts.Realms.ValidActivation
	}
	if r == "" {
		r = rt.opts.Realms.Exists
	}
	return r
}

func fromError(err error) *Response {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		status := apiErr.Status
		if status == 0 {
			status = http.StatusOK
		}
		return Fail(status, apiErr.Code, apiErr.Message)
	}
	return Fail(http.StatusOK, 0, fmt.Sprintf("Unknown error %s with code %d", err.Error(), 0))
}

// Encode renders resp as the JSON envelope. A panic raised while rendering
// an entity is returned as an error.
func Encode(resp *Response) (out []byte, err error) {
	defer func() {
		if p := recover(); p != nil {
			out, err = nil, fmt.Errorf("encode response: %v", p)
		}
	}()
	body := response.APIResponse[any]{Success: resp.Error == nil, Error: resp.Error}
	if resp.Error == nil {
		data, err := Prepare(resp.Data)
		if err != nil {
			return nil, err
		}
		body.Data = data
	}
	return json.Marshal(body)
}

// Write sends resp. A body that cannot be encoded is replaced by a 500
// envelope carrying the encoder's message.
func (rt *Router) Write(w http.ResponseWriter, resp *Response) {
	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}
	body, err := Encode(resp)
	if err != nil {
		rt.log.Errorw("license api response encoding failed", "err", err)
		status = http.StatusInternalServerError
		body, _ = json.Marshal(response.ErrorT[any](response.APIErrorCodeError, err.Error()))
	}

	h := w.Header()
	h.Set("Content-Type", "application/json; charset="+rt.opts.Charset)
	for k, vs := range resp.Header {
		for _, v := range vs {
			// header values are folded onto one line
			h.Add(k, strings.Join(strings.Fields(v), " "))
		}
	}
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// Handle is the gin entry point; the action is the ":action" path parameter.
func (rt *Router) Handle(c *gin.Context) {
	_ = c.Request.ParseForm()
	username, password, _ := c.Request.BasicAuth()
	req := &Request{
		Action:   c.Param("action"),
		Query:    c.Request.URL.Query(),
		Form:     c.Request.PostForm,
		Header:   c.Request.Header,
		Username: username,
		Password: password,
	}
	ctx := c.Request.Context()
	if username != "" {
		c.Set(logctx.LicenseKey, username)
		ctx = logctx.WithLicenseKey(ctx, username)
	}
	rt.Write(c.Writer, rt.Dispatch(ctx, req))
	c.Abort()
}
