package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/piwi3910/PalletPlan/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private Prometheus registry so tests and embedders can run
// several servers in one process.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal *prometheus.CounterVec   // method, path, status
	PlansTotal        *prometheus.CounterVec   // algorithm, outcome
	PlanDuration      *prometheus.HistogramVec // algorithm
	PlacedCases       prometheus.Histogram
}

// NewMetrics registers the planner metrics plus Go runtime and process collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{registry: reg}

	m.HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "palletplan_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	m.PlansTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "palletplan_plans_total",
		Help: "Plans computed, by algorithm and outcome",
	}, []string{"algorithm", "outcome"})

	m.PlanDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "palletplan_plan_duration_seconds",
		Help:    "Time spent solving a single job",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
	}, []string{"algorithm"})

	m.PlacedCases = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "palletplan_placed_cases",
		Help:    "Cases placed per successful plan",
		Buckets: prometheus.ExponentialBuckets(1, 2, 16),
	})

	reg.MustRegister(m.HTTPRequestsTotal, m.PlansTotal, m.PlanDuration, m.PlacedCases)
	return m
}

// Handler returns the HTTP handler exposing the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// observePlan records one planner call.
func (m *Metrics) observePlan(alg model.Algorithm, elapsed time.Duration, plan model.Plan, err error) {
	label := string(alg)
	if label == "" {
		label = "default"
	}
	if err != nil {
		m.PlansTotal.WithLabelValues(label, "error").Inc()
		return
	}
	m.PlansTotal.WithLabelValues(string(plan.Algorithm), "ok").Inc()
	m.PlanDuration.WithLabelValues(string(plan.Algorithm)).Observe(elapsed.Seconds())
	m.PlacedCases.Observe(float64(plan.Count()))
}

// instrument counts requests by route template rather than raw path.
func (m *Metrics) instrument() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
	}
}
