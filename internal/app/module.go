package app

import (
	"time"

	"go.uber.org/fx"

	"github.com/fatflowers/licensing/internal/app/api/endpoints"
	"github.com/fatflowers/licensing/internal/app/api/server"
	"github.com/fatflowers/licensing/internal/app/service/activation"
	"github.com/fatflowers/licensing/internal/app/service/license"
	notificationhandler "github.com/fatflowers/licensing/internal/app/service/notification_handler"
	notificationlog "github.com/fatflowers/licensing/internal/app/service/notification_log"
	"github.com/fatflowers/licensing/internal/app/service/payment"
	"github.com/fatflowers/licensing/internal/app/service/product"
	"github.com/fatflowers/licensing/internal/app/service/release"
	"github.com/fatflowers/licensing/internal/app/service/statistics"
	"github.com/fatflowers/licensing/internal/app/worker"
	"github.com/fatflowers/licensing/internal/platform/cache"
	"github.com/fatflowers/licensing/internal/platform/db"
	"github.com/fatflowers/licensing/pkg/config"
	"github.com/fatflowers/licensing/pkg/logger"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

// Services is everything except the HTTP server and background workers; the
// CLI runs on it.
var Services = fx.Options(
	logger.Module,
	config.Module,
	db.Module,
	cache.Module,
	product.Module,
	payment.Module,
	license.Module,
	activation.Module,
	release.Module,
	notificationlog.Module,
	statistics.Module,
)

var Module = fx.Options(
	Services,
	notificationhandler.Module,
	endpoints.Module,
	server.Module,
	worker.Module,
)
