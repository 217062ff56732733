package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fatflowers/licensing/pkg/errs"
	"github.com/fatflowers/licensing/pkg/logctx"
	"github.com/fatflowers/licensing/pkg/response"
)

var nopLogger = zap.NewNop().Sugar()

// ListResponse is a page of admin list results.
type ListResponse[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
}

func errorCode(err error) response.APIErrorCode {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		return response.APIErrorCodeNotFound
	case errors.Is(err, errs.ErrInvalidArgument):
		return response.APIErrorCodeBadRequest
	case errors.Is(err, errs.ErrInvalidTransition),
		errors.Is(err, errs.ErrCapacityExceeded),
		errors.Is(err, errs.ErrDuplicateLocation),
		errors.Is(err, errs.ErrAlreadyDeactivated),
		errors.Is(err, errs.ErrNotRenewable):
		return response.APIErrorCodeConflict
	}
	return response.APIErrorCodeError
}

// fail writes err in the envelope. Errors that are not a domain kind are logged.
func fail(c *gin.Context, err error) {
	code := errorCode(err)
	if code == response.APIErrorCodeError {
		logctx.FromGin(c, nopLogger).Errorw("admin_request_failed", "path", c.FullPath(), "err", err)
	}
	c.JSON(http.StatusOK, response.ErrorT[any](code, err.Error()))
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusOK, response.ErrorT[any](response.APIErrorCodeBadRequest, err.Error()))
}
