package response

// APIErrorCode is the numeric error code carried in failure envelopes.
type APIErrorCode int

const (
	APIErrorCodeUnknown      APIErrorCode = 0
	APIErrorCodeBadRequest   APIErrorCode = 400
	APIErrorCodeUnauthorized APIErrorCode = 401
	APIErrorCodeNotFound     APIErrorCode = 404
	APIErrorCodeConflict     APIErrorCode = 409
	APIErrorCodeError        APIErrorCode = 500
)

var codeToMsg = map[APIErrorCode]string{
	APIErrorCodeBadRequest:   "bad request",
	APIErrorCodeUnauthorized: "unauthorized",
	APIErrorCodeNotFound:     "not found",
	APIErrorCodeConflict:     "conflict",
	APIErrorCodeError:        "unexpected error",
}

type APIError struct {
	Code    APIErrorCode `json:"code"`
	Message string       `json:"message"`
}

// APIResponse is the envelope shared by the admin and license HTTP APIs:
// {"success": bool, "data": ..., "error": {"code", "message"}}.
// Use OKT / ErrorT helpers to construct instances.
type APIResponse[T any] struct {
	Success bool      `json:"success"`
	Data    T         `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
}

// OKT returns a successful response with data.
func OKT[T any](data T) *APIResponse[T] {
	return &APIResponse[T]{Success: true, Data: data}
}

// ErrorT returns an error response; an empty message falls back to the code's default text.
func ErrorT[T any](code APIErrorCode, message string) *APIResponse[T] {
	if message == "" {
		message = codeToMsg[code]
	}
	return &APIResponse[T]{Error: &APIError{Code: code, Message: message}}
}
