package dispatch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/fatflowers/licensing/internal/models"
	"github.com/fatflowers/licensing/pkg/response"
)

// Error codes shared by the license API endpoints.
const (
	CodeInvalidKey        = 1
	CodeMaxActivations    = 2
	CodeInvalidLocation   = 3
	CodeInvalidActivation = 4
	CodeNoRelease         = 5
	CodeInvalidDownload   = 6
	CodeDisabledLocation  = 7
	CodeInvalidParameter  = 8
)

// Mode is how an endpoint authenticates the caller.
type Mode string

const (
	// ModeExists passes when the key exists, whatever its status.
	ModeExists Mode = "exists"
	// ModeActive passes when the key is active.
	ModeActive Mode = "active"
	// ModeValidActivation passes when the activation is active and belongs
	// to the key.
	ModeValidActivation Mode = "valid_activation"
)

// Request is what an endpoint is served with. Key and Activation are filled in
// by authentication, even when it fails for the endpoint's mode.
type Request struct {
	Action   string
	Query    url.Values
	Form     url.Values
	Header   http.Header
	Username string
	Password string

	Key        *models.Key
	Activation *models.Activation
}

// Param reads a form value, falling back to the query string.
func (r *Request) Param(name string) string {
	if v := r.Form.Get(name); v != "" {
		return v
	}
	return r.Query.Get(name)
}

// Response is an endpoint result. Exactly one of Data and Error is sent.
type Response struct {
	Status int
	Data   Value
	Error  *response.APIError
	Header http.Header
}

func OK(data Value) *Response {
	return &Response{Status: http.StatusOK, Data: data, Header: http.Header{}}
}

func Fail(status, code int, message string) *Response {
	return &Response{
		Status: status,
		Error:  &response.APIError{Code: response.APIErrorCode(code), Message: message},
		Header: http.Header{},
	}
}

// SetHeader adds a header sent along with the body.
func (r *Response) SetHeader(key, value string) *Response {
	if r.Header == nil {
		r.Header = http.Header{}
	}
	r.Header.Set(key, value)
	return r
}

// Endpoint serves one API action.
type Endpoint interface {
	Serve(ctx context.Context, req *Request) (*Response, error)
}

type EndpointFunc func(ctx context.Context, req *Request) (*Response, error)

func (f EndpointFunc) Serve(ctx context.Context, req *Request) (*Response, error) { return f(ctx, req) }

// Authenticated endpoints are only served to callers passing their mode. The
// code and message are sent when authentication fails.
type Authenticated interface {
	Endpoint
	AuthMode() Mode
	AuthError() (code int, message string)
}

type authenticated struct {
	Endpoint
	mode    Mode
	code    int
	message string
}

func (a authenticated) AuthMode() Mode { return a.mode }
func (a authenticated) AuthError() (int, string) { return a.code, a.message }

// Authenticate guards ep with mode.
func Authenticate(ep Endpoint, mode Mode, code int, message string) Authenticated {
	return authenticated{Endpoint: ep, mode: mode, code: code, message: message}
}

// Error is returned by endpoints to send a code and message to the client as
// they are. Status defaults to 200.
type Error struct {
	Status  int
	Code    int
	Message string
}

func NewError(code int, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func (e *Error) WithStatus(status int) *Error {
	e.Status = status
	return e
}

func (e *Error) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Code, e.Message)
}
