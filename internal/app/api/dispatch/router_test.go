package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fatflowers/licensing/internal/models"
	"github.com/fatflowers/licensing/pkg/config"
	"github.com/fatflowers/licensing/pkg/types"
)

type keyMap map[string]*models.Key

func (m keyMap) Find(_ context.Context, key string) (*models.Key, error) { return m[key], nil }

type activationMap map[string]*models.Activation

func (m activationMap) Find(_ context.Context, id string) (*models.Activation, error) {
	return m[id], nil
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type spy struct {
	calls int
	last  *Request
	resp  *Response
	err   error
}

func (s *spy) Serve(_ context.Context, req *Request) (*Response, error) {
	s.calls++
	s.last = req
	return s.resp, s.err
}

var realms = config.RealmConfig{Exists: "exists realm", Active: "active realm", ValidActivation: "activation realm"}

func newTestRouter() *Router {
	keys := keyMap{
		"ACTIVE-KEY":   {Key: "ACTIVE-KEY", Status: types.KeyStatusActive},
		"DISABLED-KEY": {Key: "DISABLED-KEY", Status: types.KeyStatusDisabled},
		"EXPIRED-KEY":  {Key: "EXPIRED-KEY", Status: types.KeyStatusExpired},
		"OTHER-KEY":    {Key: "OTHER-KEY", Status: types.KeyStatusActive},
	}
	activations := activationMap{
		"a-live": {ID: "a-live", Key: "ACTIVE-KEY", Status: types.ActivationStatusActive},
		"a-off":  {ID: "a-off", Key: "ACTIVE-KEY", Status: types.ActivationStatusDeactivated},
		"a-else": {ID: "a-else", Key: "OTHER-KEY", Status: types.ActivationStatusActive},
	}
	return NewRouter(keys, activations, zap.NewNop().Sugar(), Options{Charset: "ISO-8859-1", Realms: realms})
}

func serve(t *testing.T, rt *Router, method, action, user, pass string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Any("/license-api/:action", rt.Handle)

	req := httptest.NewRequest(method, "/license-api/"+action, nil)
	if user != "" || pass != "" {
		req.SetBasicAuth(user, pass)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func TestDispatch_UnknownAction(t *testing.T) {
	w, env := serve(t, newTestRouter(), http.MethodGet, "garbage", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "application/json; charset=ISO-8859-1", w.Header().Get("Content-Type"))
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, 404, env.Error.Code)
	assert.Equal(t, "API Action Not Found", env.Error.Message)
}

func TestDispatch_AuthMatrix(t *testing.T) {
	cases := []struct {
		name    string
		mode    Mode
		user    string
		pass    string
		served  bool
		wantRlm string
	}{
		{"exists without key", ModeExists, "", "", false, "exists realm"},
		{"exists with unknown key", ModeExists, "NOPE", "", false, "exists realm"},
		{"exists with active key", ModeExists, "ACTIVE-KEY", "", true, ""},
		{"exists with disabled key", ModeExists, "DISABLED-KEY", "", true, ""},
		{"exists with expired key", ModeExists, "EXPIRED-KEY", "", true, ""},
		{"active with active key", ModeActive, "ACTIVE-KEY", "", true, ""},
		{"active with disabled key", ModeActive, "DISABLED-KEY", "", false, "active realm"},
		{"active with expired key", ModeActive, "EXPIRED-KEY", "", false, "active realm"},
		{"activation without password", ModeValidActivation, "ACTIVE-KEY", "", false, "activation realm"},
		{"activation unknown", ModeValidActivation, "ACTIVE-KEY", "missing", false, "activation realm"},
		{"activation deactivated", ModeValidActivation, "ACTIVE-KEY", "a-off", false, "activation realm"},
		{"activation of another key", ModeValidActivation, "ACTIVE-KEY", "a-else", false, "activation realm"},
		{"activation live", ModeValidActivation, "ACTIVE-KEY", "a-live", true, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rt := newTestRouter()
			ep := &spy{resp: OK(Mapping{"hello": String("world")})}
			rt.Register("mock", Authenticate(ep, tc.mode, CodeInvalidKey, "bad key"))

			w, env := serve(t, rt, http.MethodGet, "mock", tc.user, tc.pass)
			if tc.served {
				assert.Equal(t, 1, ep.calls)
				assert.Equal(t, http.StatusOK, w.Code)
				assert.True(t, env.Success)
				assert.JSONEq(t, `{"hello":"world"}`, string(env.Data))
				return
			}
			assert.Zero(t, ep.calls)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, `Basic realm="`+tc.wantRlm+`"`, w.Header().Get("WWW-Authenticate"))
			require.NotNil(t, env.Error)
			assert.Equal(t, CodeInvalidKey, env.Error.Code)
			assert.Equal(t, "bad key", env.Error.Message)
		})
	}
}

func TestDispatch_AttachesCredentialsEvenWhenModeRejects(t *testing.T) {
	rt := newTestRouter()
	req := &Request{Action: "mock", Username: "DISABLED-KEY", Password: "a-live"}
	ep := &spy{}
	rt.Register("mock", Authenticate(ep, ModeActive, CodeInvalidKey, "inactive"))

	resp := rt.Dispatch(context.Background(), req)
	assert.Equal(t, http.StatusUnauthorized, resp.Status)
	require.NotNil(t, req.Key)
	assert.Equal(t, "DISABLED-KEY", req.Key.Key)
	require.NotNil(t, req.Activation)
	assert.Equal(t, "a-live", req.Activation.ID)
}

func TestDispatch_ReturnsEndpointResponseUnmodified(t *testing.T) {
	rt := newTestRouter()
	want := OK(String("payload")).SetHeader("X-Extra", "one\n   two")
	want.Status = http.StatusAccepted
	rt.Register("mock", &spy{resp: want})

	assert.Same(t, want, rt.Dispatch(context.Background(), &Request{Action: "mock"}))

	w, env := serve(t, rt, http.MethodPost, "mock", "", "")
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "one two", w.Header().Get("X-Extra"))
	assert.JSONEq(t, `"payload"`, string(env.Data))
}

func TestDispatch_Errors(t *testing.T) {
	t.Run("api error passes through", func(t *testing.T) {
		rt := newTestRouter()
		rt.Register("mock", &spy{err: NewError(5, "Error")})
		w, env := serve(t, rt, http.MethodGet, "mock", "", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.False(t, env.Success)
		assert.Equal(t, 5, env.Error.Code)
		assert.Equal(t, "Error", env.Error.Message)
	})
	t.Run("wrapped api error keeps its status", func(t *testing.T) {
		rt := newTestRouter()
		rt.Register("mock", &spy{err: errors.Join(errors.New("ctx"), NewError(CodeNoRelease, "none").WithStatus(http.StatusConflict))})
		w, env := serve(t, rt, http.MethodGet, "mock", "", "")
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, CodeNoRelease, env.Error.Code)
	})
	t.Run("other errors are wrapped", func(t *testing.T) {
		rt := newTestRouter()
		rt.Register("mock", &spy{err: errors.New("boom")})
		w, env := serve(t, rt, http.MethodGet, "mock", "", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 0, env.Error.Code)
		assert.Equal(t, "Unknown error boom with code 0", env.Error.Message)
	})
	t.Run("panics are wrapped", func(t *testing.T) {
		rt := newTestRouter()
		rt.Register("mock", EndpointFunc(func(context.Context, *Request) (*Response, error) { panic("kaput") }))
		w, env := serve(t, rt, http.MethodGet, "mock", "", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Unknown error kaput with code 0", env.Error.Message)
	})
}

func TestDispatch_EncodingFailureFallsBack(t *testing.T) {
	rt := newTestRouter()
	rt.Register("mock", &spy{resp: OK(Mapping{"ratio": Float(math.NaN())})})
	w, env := serve(t, rt, http.MethodGet, "mock", "", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, 500, env.Error.Code)
	assert.Contains(t, env.Error.Message, "unsupported value")
}

type explodingEntity struct{}

func (explodingEntity) ToWireFormat() Mapping {
	var m *Mapping
	return *m
}

func TestDispatch_EntityPanicIsEncodedAsError(t *testing.T) {
	rt := newTestRouter()
	rt.Register("mock", &spy{resp: OK(Mapping{"item": Entity(explodingEntity{})})})
	w, env := serve(t, rt, http.MethodGet, "mock", "", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "application/json; charset=ISO-8859-1", w.Header().Get("Content-Type"))
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, 500, env.Error.Code)
	assert.Contains(t, env.Error.Message, "encode response")
}

func TestDispatch_RealmFallsBackToExists(t *testing.T) {
	cases := []struct {
		name   string
		realms config.RealmConfig
		want   string
	}{
		{"configured exists only", config.RealmConfig{Exists: "exists realm"}, "exists realm"},
		{"nothing configured", config.RealmConfig{}, DefaultRealm},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rt := NewRouter(keyMap{"DISABLED-KEY": {Key: "DISABLED-KEY", Status: types.KeyStatusDisabled}},
				activationMap{}, zap.NewNop().Sugar(), Options{Realms: tc.realms})
			rt.Register("active", Authenticate(&spy{resp: OK(nil)}, ModeActive, CodeInvalidKey, "bad key"))
			rt.Register("activation", Authenticate(&spy{resp: OK(nil)}, ModeValidActivation, CodeInvalidKey, "bad key"))

			for _, action := range []string{"active", "activation"} {
				w, _ := serve(t, rt, http.MethodGet, action, "DISABLED-KEY", "")
				assert.Equal(t, http.StatusUnauthorized, w.Code)
				assert.Equal(t, `Basic realm="`+tc.want+`"`, w.Header().Get("WWW-Authenticate"), action)
			}
		})
	}
}

func TestDispatch_ParamsReachEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rt := newTestRouter()
	ep := &spy{}
	rt.Register("mock", ep)
	r := gin.New()
	r.Any("/license-api/:action", rt.Handle)

	form := url.Values{"location": {"example.com"}}
	req := httptest.NewRequest(http.MethodPost, "/license-api/mock?track=stable", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.ServeHTTP(httptest.NewRecorder(), req)

	require.Equal(t, 1, ep.calls)
	assert.Equal(t, "example.com", ep.last.Param("location"))
	assert.Equal(t, "stable", ep.last.Param("track"))
}

func TestRegister_DuplicatePanics(t *testing.T) {
	rt := newTestRouter()
	rt.Register("a", &spy{})
	rt.Register("b", &spy{})
	assert.Panics(t, func() { rt.Register("a", &spy{}) })
	assert.Equal(t, []string{"a", "b"}, rt.Actions())
}
