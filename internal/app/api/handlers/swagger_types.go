package handlers

import (
	nh "github.com/fatflowers/licensing/internal/app/service/notification_handler"
	"github.com/fatflowers/licensing/internal/app/service/statistics"
	"github.com/fatflowers/licensing/internal/models"
	"github.com/fatflowers/licensing/pkg/response"
)

// The Resp* types spell out response.APIResponse[T] for each endpoint so
// swag can render them.

// RespOK is the envelope of endpoints returning no data.
type RespOK struct {
	Success bool               `json:"success"`
	Error   *response.APIError `json:"error,omitempty"`
	Data    interface{}        `json:"data,omitempty"`
}

type RespKey struct {
	Success bool               `json:"success"`
	Error   *response.APIError `json:"error,omitempty"`
	Data    models.Key         `json:"data"`
}

type RespKeyList struct {
	Success bool                     `json:"success"`
	Error   *response.APIError       `json:"error,omitempty"`
	Data    ListResponse[models.Key] `json:"data"`
}

type RespKeyDetail struct {
	Success bool               `json:"success"`
	Error   *response.APIError `json:"error,omitempty"`
	Data    KeyDetail          `json:"data"`
}

type RespRenewal struct {
	Success bool               `json:"success"`
	Error   *response.APIError `json:"error,omitempty"`
	Data    models.Renewal     `json:"data"`
}

type RespActivation struct {
	Success bool               `json:"success"`
	Error   *response.APIError `json:"error,omitempty"`
	Data    models.Activation  `json:"data"`
}

type RespActivationList struct {
	Success bool                            `json:"success"`
	Error   *response.APIError              `json:"error,omitempty"`
	Data    ListResponse[models.Activation] `json:"data"`
}

type RespActivationDetail struct {
	Success bool               `json:"success"`
	Error   *response.APIError `json:"error,omitempty"`
	Data    ActivationDetail   `json:"data"`
}

type RespRelease struct {
	Success bool               `json:"success"`
	Error   *response.APIError `json:"error,omitempty"`
	Data    models.Release     `json:"data"`
}

type RespReleaseList struct {
	Success bool                         `json:"success"`
	Error   *response.APIError           `json:"error,omitempty"`
	Data    ListResponse[models.Release] `json:"data"`
}

type RespReleaseDetail struct {
	Success bool               `json:"success"`
	Error   *response.APIError `json:"error,omitempty"`
	Data    ReleaseDetail      `json:"data"`
}

type RespChangelog struct {
	Success bool               `json:"success"`
	Error   *response.APIError `json:"error,omitempty"`
	Data    map[string]string  `json:"data"`
}

type RespProductList struct {
	Success bool               `json:"success"`
	Error   *response.APIError `json:"error,omitempty"`
	Data    []models.Product   `json:"data"`
}

type RespBilling struct {
	Success bool               `json:"success"`
	Error   *response.APIError `json:"error,omitempty"`
	Data    nh.Result          `json:"data"`
}

type RespStatistics struct {
	Success bool                         `json:"success"`
	Error   *response.APIError           `json:"error,omitempty"`
	Data    statistics.StatisticResponse `json:"data"`
}

type RespBillingLogList struct {
	Success bool                                          `json:"success"`
	Error   *response.APIError                            `json:"error,omitempty"`
	Data    ListResponse[models.PaymentNotificationLog] `json:"data"`
}
