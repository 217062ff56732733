package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fatflowers/licensing/docs"
	"github.com/fatflowers/licensing/internal/app/api/dispatch"
	"github.com/fatflowers/licensing/internal/app/api/endpoints"
	"github.com/fatflowers/licensing/internal/app/api/handlers"
	mw "github.com/fatflowers/licensing/internal/app/api/middleware"
	nh "github.com/fatflowers/licensing/internal/app/service/notification_handler"
	cfgpkg "github.com/fatflowers/licensing/pkg/config"
	"github.com/fatflowers/licensing/pkg/metrics"
)

func newEngine(cfg *cfgpkg.Config) *gin.Engine {
	if cfg.Env == cfgpkg.EnvProd {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	// request logger & access log are attached per group in registerRoutes
	r.Use(mw.Trace())
	r.Use(cors.New(corsConfig(cfg.API.CORSOrigins)))
	return r
}

func corsConfig(origins []string) cors.Config {
	c := cors.DefaultConfig()
	if len(origins) == 0 || lo.Contains(origins, "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	c.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	c.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", mw.RequestIDHeader}
	c.ExposeHeaders = []string{"Content-Length", "WWW-Authenticate", mw.RequestIDHeader}
	return c
}

type routeParams struct {
	fx.In

	Log      *zap.SugaredLogger
	Cfg      *cfgpkg.Config
	DB       *gorm.DB
	Engine   *gin.Engine
	Dispatch *dispatch.Router
	Admin    handlers.AdminDeps
	Billing  *nh.NotificationHandler
}

func registerRoutes(p routeParams) {
	r, log := p.Engine, p.Log

	pub := r.Group("/")
	pub.Use(mw.RequestLogger(log), mw.AccessLogMiddleware(log))
	handlers.RegisterHealthRoutes(pub, p.DB)
	// Swagger UI
	docs.SwaggerInfo.BasePath = "/"
	pub.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// License API: one path per action, credentials in Basic auth.
	licenseAPI := r.Group(endpoints.BasePath)
	licenseAPI.Use(mw.RequestLogger(log), mw.AccessLogMiddleware(log))
	licenseAPI.GET("/:action", p.Dispatch.Handle)
	licenseAPI.POST("/:action", p.Dispatch.Handle)

	apiV1 := r.Group("/api/v1")
	apiV1.Use(mw.RequestLogger(log), mw.AccessLogMiddleware(log), mw.AdminTokenMiddleware(p.Cfg.Admin.Token))
	handlers.RegisterAdminRoutes(apiV1.Group("/admin"), p.Admin)
	handlers.RegisterBillingRoutes(apiV1.Group("/billing"), p.Billing)

	log.Infow("license api registered", "base_path", endpoints.BasePath, "actions", p.Dispatch.Actions())
}

// runMetrics registers the HTTP and domain collectors and serves them on a
// separate listener so the public port never exposes them.
func runMetrics(lc fx.Lifecycle, log *zap.SugaredLogger, cfg *cfgpkg.Config, r *gin.Engine) {
	if cfg.MetricsAddr == "" {
		return
	}
	p := metrics.NewPrometheus(metrics.NewPrometheusOptions{Subsystem: "licensing", Logger: log})
	r.Use(p.HandlerFunc())
	srv := &http.Server{Addr: cfg.MetricsAddr, Handler: p.Handler(), ReadHeaderTimeout: 5 * time.Second}
	serve(lc, log, srv, "metrics")
}

func runServer(lc fx.Lifecycle, log *zap.SugaredLogger, cfg *cfgpkg.Config, r *gin.Engine) {
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}
	serve(lc, log, srv, "HTTP")
}

func serve(lc fx.Lifecycle, log *zap.SugaredLogger, srv *http.Server, name string) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting "+name+" server", "addr", srv.Addr)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Errorf("%s server error: %v", name, err)
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("stopping " + name + " server")
			shutdownCtx, cancel := context.WithTimeout(ctx, 120*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

var Module = fx.Options(
	fx.Provide(newEngine),
	// metrics middleware must be installed before routes are registered
	fx.Invoke(runMetrics),
	fx.Invoke(registerRoutes),
	fx.Invoke(runServer),
)
