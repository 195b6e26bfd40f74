package admin

import (
	"encoding/json"
	"net/http"
	"time"

	"dbconsole/internal/services"
	"dbconsole/pkg/logging"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StatusResponse is the body of GET /api/status.
type StatusResponse struct {
	Version  string                `json:"version"`
	BaseDir  string                `json:"baseDir,omitempty"`
	Time     time.Time             `json:"time"`
	Services []services.SlotStatus `json:"services"`
}

type handler struct {
	sup     services.Supervisor
	version string
	baseDir string
}

// newRouter wires the admin routes:
//
//	GET  /             redirect to /api/status
//	GET  /health       liveness of the admin endpoint itself
//	GET  /api/status   status of every service slot
//	POST /api/shutdown ask the launcher to shut down
//	GET  /metrics      Prometheus metrics
//	GET  /sse          MCP event stream
//	POST /message      MCP messages
//
// The shutdown and message routes go through guard. RealIP is left out so
// that RemoteAddr stays the peer the guard checks.
func newRouter(h *handler, reg *prometheus.Registry, sse *server.SSEServer, guard *requestGuard) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(newHTTPMetrics(reg).middleware)
	r.Use(middleware.Recoverer)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/api/status", http.StatusTemporaryRedirect)
	})
	r.Get("/health", h.health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", h.status)
		r.With(guard.middleware).Post("/shutdown", h.shutdown)
	})

	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	if sse != nil {
		r.Handle("/sse", sse.SSEHandler())
		r.With(guard.middleware).Handle("/message", sse.MessageHandler())
	}

	return r
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (h *handler) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{
		Version:  h.version,
		BaseDir:  h.baseDir,
		Time:     time.Now().UTC(),
		Services: h.sup.Status(),
	})
}

func (h *handler) shutdown(w http.ResponseWriter, r *http.Request) {
	logging.Info(subsystem, "Shutdown requested by %s", r.RemoteAddr)
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "shutting down"})
	requestShutdown(h.sup)
}

// requestShutdown relays a remote shutdown request. It never runs on the
// request goroutine: stopping the admin server waits for in-flight handlers.
func requestShutdown(sup services.Supervisor) {
	time.AfterFunc(shutdownDelay, func() {
		sup.ShutdownNow(services.TriggerRemote)
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logging.Debug(subsystem, "failed to write response: %v", err)
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		logging.Debug(subsystem, "%s %s -> %d (%d bytes, %s) request_id=%s",
			r.Method, r.URL.Path, ww.Status(), ww.BytesWritten(), time.Since(start), middleware.GetReqID(r.Context()))
	})
}
