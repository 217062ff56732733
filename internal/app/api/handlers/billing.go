package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	nh "github.com/fatflowers/licensing/internal/app/service/notification_handler"
	notificationlog "github.com/fatflowers/licensing/internal/app/service/notification_log"
	"github.com/fatflowers/licensing/internal/models"
	"github.com/fatflowers/licensing/pkg/logctx"
	"github.com/fatflowers/licensing/pkg/response"
	"github.com/fatflowers/licensing/pkg/types"
)

// @Summary      Billing event
// @Description  Records a purchase, renewal, refund, revocation or subscription change reported by the billing provider. Purchases issue a key and renewals extend it.
// @Tags         Webhook
// @Accept       json
// @Produce      json
// @Param        request body notification_handler.Event true "Event"
// @Success      200  {object}  handlers.RespBilling
// @Router       /api/v1/billing/events [post]
func ApiBillingEvent(h *nh.NotificationHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := c.GetRawData()
		if err != nil {
			badRequest(c, err)
			return
		}
		parser, err := nh.ParseJSONNotification(body, time.Now())
		if err != nil {
			badRequest(c, err)
			return
		}
		res, err := h.HandleNotification(c.Request.Context(), c.GetString(logctx.TraceIDKey), parser)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// @Summary      List billing event logs (Admin)
// @Description  Received and outcome rows of billing events. Filter by provider_id, external_id, event_type, customer_id, trace_id, status, occurred_at, created_at.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body types.ScanRequest true "Scan"
// @Success      200  {object}  handlers.RespBillingLogList
// @Router       /api/v1/admin/billing/log/list [post]
func ApiListBillingLogs(logs *notificationlog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.ScanRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		items, total, err := logs.Scan(c.Request.Context(), &req)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(&ListResponse[*models.PaymentNotificationLog]{Items: items, Total: total}))
	}
}
