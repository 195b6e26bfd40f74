package admin

import (
	"net/http"
	"strconv"

	"dbconsole/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "dbconsole"

// statusCollector reports service liveness by asking the supervisor at
// scrape time, so the values can never go stale.
type statusCollector struct {
	sup     services.Supervisor
	version string

	up        *prometheus.Desc
	present   *prometheus.Desc
	buildInfo *prometheus.Desc
}

func newStatusCollector(sup services.Supervisor, version string) *statusCollector {
	return &statusCollector{
		sup:     sup,
		version: version,
		up: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "service", "up"),
			"Whether the service is currently running (1) or not (0).",
			[]string{"kind"}, nil,
		),
		present: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "service", "present"),
			"Whether an instance exists for the service slot.",
			[]string{"kind"}, nil,
		),
		buildInfo: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "build_info"),
			"Build information of the running launcher.",
			[]string{"version"}, nil,
		),
	}
}

func (c *statusCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.up
	ch <- c.present
	ch <- c.buildInfo
}

func (c *statusCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.buildInfo, prometheus.GaugeValue, 1, c.version)
	if c.sup == nil {
		return
	}
	for _, st := range c.sup.Status() {
		kind := st.Kind.String()
		ch <- prometheus.MustNewConstMetric(c.up, prometheus.GaugeValue, boolToFloat(st.Running), kind)
		ch <- prometheus.MustNewConstMetric(c.present, prometheus.GaugeValue, boolToFloat(st.Present), kind)
	}
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// httpMetrics counts admin requests by route pattern and status code.
type httpMetrics struct {
	requests *prometheus.CounterVec
}

func newHTTPMetrics(reg prometheus.Registerer) *httpMetrics {
	m := &httpMetrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "admin",
				Name:      "http_requests_total",
				Help:      "Requests served by the admin endpoint.",
			},
			[]string{"method", "route", "code"},
		),
	}
	reg.MustRegister(m.requests)
	return m
}

func (m *httpMetrics) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
	})
}
