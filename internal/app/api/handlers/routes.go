package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/fatflowers/licensing/internal/app/service/activation"
	"github.com/fatflowers/licensing/internal/app/service/license"
	nh "github.com/fatflowers/licensing/internal/app/service/notification_handler"
	notificationlog "github.com/fatflowers/licensing/internal/app/service/notification_log"
	"github.com/fatflowers/licensing/internal/app/service/payment"
	"github.com/fatflowers/licensing/internal/app/service/product"
	"github.com/fatflowers/licensing/internal/app/service/release"
	"github.com/fatflowers/licensing/internal/app/service/statistics"
)

// AdminDeps are the services behind the admin API.
type AdminDeps struct {
	fx.In

	Keys        *license.Service
	Activations *activation.Service
	Releases    *release.Service
	Products    *product.Service
	Payments    *payment.Service
	Statistics  *statistics.Service
	BillingLogs *notificationlog.Service
}

// RegisterAdminRoutes mounts the admin API, expected under "/api/v1/admin".
func RegisterAdminRoutes(r gin.IRouter, d AdminDeps) {
	key := r.Group("/key")
	key.POST("/list", ApiListKeys(d.Keys))
	key.POST("/get", ApiGetKey(d.Keys, d.Activations))
	key.POST("/create", ApiCreateKey(d.Keys))
	key.POST("/update", ApiUpdateKey(d.Keys))
	key.POST("/extend", ApiExtendKey(d.Keys))
	key.POST("/renew", ApiRenewKey(d.Keys, d.Payments))
	key.POST("/expire", ApiExpireKey(d.Keys))
	key.POST("/delete", ApiDeleteKey(d.Keys))

	act := r.Group("/activation")
	act.POST("/list", ApiListActivations(d.Activations))
	act.POST("/get", ApiGetActivation(d.Activations, d.Releases))
	act.POST("/create", ApiCreateActivation(d.Activations))
	act.POST("/deactivate", ApiDeactivateActivation(d.Activations))
	act.POST("/disable", ApiDisableActivation(d.Activations))
	act.POST("/track", ApiSetActivationTrack(d.Activations))
	act.POST("/delete", ApiDeleteActivation(d.Activations))

	rel := r.Group("/release")
	rel.POST("/list", ApiListReleases(d.Releases))
	rel.POST("/get", ApiGetRelease(d.Releases))
	rel.POST("/create", ApiCreateRelease(d.Releases))
	rel.POST("/activate", ApiActivateRelease(d.Releases))
	rel.POST("/pause", ApiPauseRelease(d.Releases))
	rel.POST("/archive", ApiArchiveRelease(d.Releases))
	rel.POST("/update", ApiUpdateRelease(d.Releases))
	rel.POST("/delete", ApiDeleteRelease(d.Releases))
	rel.POST("/changelog", ApiChangelog(d.Releases))

	r.POST("/product/list", ApiListProducts(d.Products))
	r.POST("/statistics", ApiGetStatistics(d.Statistics))
	r.POST("/billing/log/list", ApiListBillingLogs(d.BillingLogs))
}

// RegisterBillingRoutes mounts the billing webhook, expected under "/api/v1/billing".
func RegisterBillingRoutes(r gin.IRouter, h *nh.NotificationHandler) {
	r.POST("/events", ApiBillingEvent(h))
}
