package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tourdesk_http_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tourdesk_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	assignmentMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tourdesk_assignment_mutations_total",
		Help: "Committed assignment writes by operation.",
	}, []string{"op"})

	orphanedAssignments = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tourdesk_orphaned_assignments_total",
		Help: "Assignments seen by a dispatch read whose booking no longer exists.",
	}, []string{"view"})

	outboxEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tourdesk_outbox_events_total",
		Help: "Outbox events handled by the relay, by result.",
	}, []string{"result"})

	calendarCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tourdesk_calendar_cache_total",
		Help: "Calendar feed cache lookups by result.",
	}, []string{"result"})

	wsClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tourdesk_calendar_ws_clients",
		Help: "Connected calendar websocket clients.",
	})
)

// Middleware records request count and latency under the matched route
// pattern, so ids in paths do not blow up label cardinality.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		httpRequests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

func Handler() http.Handler {
	return promhttp.Handler()
}

func AssignmentMutation(op string) { assignmentMutations.WithLabelValues(op).Inc() }

func OrphanedAssignments(view string, n int) {
	if n > 0 {
		orphanedAssignments.WithLabelValues(view).Add(float64(n))
	}
}

func OutboxPublished(n int) {
	if n > 0 {
		outboxEvents.WithLabelValues("published").Add(float64(n))
	}
}

func OutboxFailed(n int) {
	if n > 0 {
		outboxEvents.WithLabelValues("failed").Add(float64(n))
	}
}

func CalendarCacheHit()  { calendarCache.WithLabelValues("hit").Inc() }
func CalendarCacheMiss() { calendarCache.WithLabelValues("miss").Inc() }

func WSClientConnected()    { wsClients.Inc() }
func WSClientDisconnected() { wsClients.Dec() }
