package metrics

// Gin middleware derived from github.com/zsais/go-gin-prometheus with the push
// gateway removed and logging routed through zap.

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const defaultMetricPath = "/metrics"

var (
	reqCnt = &Metric{
		ID:          "reqCnt",
		Name:        "req_total",
		Description: "How many HTTP requests processed, partitioned by status code and HTTP method.",
		Type:        "counter_vec",
		Args:        []string{"code", "method", "url"},
	}
	reqDur = &Metric{
		ID:          "reqDur",
		Name:        "req_dur_ms",
		Description: "The HTTP request latencies in milliseconds.",
		Type:        "histogram_vec",
		Args:        []string{"code", "method", "url"},
	}
	resSz = &Metric{
		ID:          "resSz",
		Name:        "resp_sz_bytes",
		Description: "The HTTP response sizes in bytes.",
		Type:        "summary_vec",
		Args:        []string{"code", "method", "url"},
	}
)

// Prometheus holds the HTTP collectors and serves them on MetricsPath.
type Prometheus struct {
	reqCnt *prometheus.CounterVec
	reqDur *prometheus.HistogramVec
	resSz  *prometheus.SummaryVec

	MetricsPath string
	log         *zap.SugaredLogger
}

type NewPrometheusOptions struct {
	Subsystem   string
	MetricsPath string
	// Registerer defaults to prometheus.DefaultRegisterer.
	Registerer prometheus.Registerer
	Logger     *zap.SugaredLogger
}

// NewPrometheus registers the HTTP and domain metrics under subsystem.
func NewPrometheus(opts NewPrometheusOptions) *Prometheus {
	p := &Prometheus{MetricsPath: opts.MetricsPath, log: opts.Logger}
	if p.MetricsPath == "" {
		p.MetricsPath = defaultMetricPath
	}
	if p.log == nil {
		p.log = zap.NewNop().Sugar()
	}
	reg := opts.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	for _, def := range append([]*Metric{reqCnt, reqDur, resSz}, DomainMetrics...) {
		metric := NewMetric(def, opts.Subsystem)
		if err := reg.Register(metric); err != nil {
			var already prometheus.AlreadyRegisteredError
			if errors.As(err, &already) {
				metric = already.ExistingCollector
			} else {
				p.log.Errorf("%s could not be registered in Prometheus, err=%v", def.Name, err)
				continue
			}
		}
		def.MetricCollector = metric
		switch def {
		case reqCnt:
			p.reqCnt = metric.(*prometheus.CounterVec)
		case reqDur:
			p.reqDur = metric.(*prometheus.HistogramVec)
		case resSz:
			p.resSz = metric.(*prometheus.SummaryVec)
		}
	}
	return p
}

// Use adds the middleware to e and serves the metrics endpoint on it.
func (p *Prometheus) Use(e *gin.Engine) {
	e.Use(p.HandlerFunc())
	e.GET(p.MetricsPath, gin.WrapH(promhttp.Handler()))
}

// Handler serves the metrics endpoint on a separate listener.
func (p *Prometheus) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(p.MetricsPath, promhttp.Handler())
	return mux
}

// HandlerFunc records request count, latency and response size. The url label
// is the route template so path parameters do not explode cardinality.
func (p *Prometheus) HandlerFunc() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == p.MetricsPath {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		url := c.FullPath()
		if url == "" {
			url = "unmatched"
		}
		if p.reqDur != nil {
			p.reqDur.WithLabelValues(status, c.Request.Method, url).Observe(float64(time.Since(start).Microseconds()) / 1000)
		}
		if p.reqCnt != nil {
			p.reqCnt.WithLabelValues(status, c.Request.Method, url).Inc()
		}
		if p.resSz != nil {
			p.resSz.WithLabelValues(status, c.Request.Method, url).Observe(float64(c.Writer.Size()))
		}
	}
}
