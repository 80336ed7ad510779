// Package observability exposes a live-progress /metrics endpoint
// over plain net/http, grounded on the teacher's httpServe
// (internal/servers/http.go), which serves prometheus/client_golang's
// promhttp.Handler() the same way — minus the grpc-gateway mux this
// module has no use for (see DESIGN.md "dropped teacher dependencies").
// This supplements, rather than replaces, the post-run CSV report in
// internal/sim/metrics.
package observability

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// These are transition counters, not point-in-time gauges: the
// dispatcher only ever learns about a courier's condition change as
// an event, so "currently idle" isn't observable without polling
// state the dispatcher doesn't expose live. A rate() over
// mdrpsim_courier_idle_total still shows idle churn over a run.
var (
	CourierIdleTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mdrpsim_courier_idle_total",
		Help: "Courier idle-state transitions observed.",
	})
	CourierMovingTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mdrpsim_courier_moving_total",
		Help: "Courier moving-state transitions observed.",
	})
	CourierBusyTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mdrpsim_courier_busy_total",
		Help: "Courier picking-up/dropping-off transitions observed.",
	})
	NotificationsSent = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mdrpsim_notifications_sent_total",
		Help: "Notifications the dispatcher has sent to couriers.",
	})
	NotificationsAccepted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mdrpsim_notifications_accepted_total",
		Help: "Notifications couriers have accepted.",
	})
	NotificationsRejected = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mdrpsim_notifications_rejected_total",
		Help: "Notifications couriers have rejected.",
	})
)

func init() {
	prometheus.MustRegister(
		CourierIdleTotal, CourierMovingTotal, CourierBusyTotal,
		NotificationsSent, NotificationsAccepted, NotificationsRejected,
	)
}

// Server serves the /metrics endpoint in the background.
type Server struct {
	http *http.Server
}

// Serve starts the metrics server on port and returns immediately; a
// port of 0 disables the endpoint and returns nil.
func Serve(port int) *Server {
	if port == 0 {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go srv.ListenAndServe()

	return &Server{http: srv}
}

// Shutdown stops the metrics server, if running.
func (s *Server) Shutdown(ctx context.Context) error {
	if s == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

// Collector implements dispatcher.Tracer by translating trace events
// into counter updates, so it can be wired into the dispatcher
// alongside (or instead of) the JSON-lines trace.Sink.
type Collector struct{}

func (Collector) Trace(event string, fields map[string]any) {
	switch event {
	case "courier_idle":
		CourierIdleTotal.Inc()
	case "courier_moving":
		CourierMovingTotal.Inc()
	case "courier_picking_up", "courier_dropping_off":
		CourierBusyTotal.Inc()
	case "notification_sent":
		NotificationsSent.Inc()
	case "notification_accepted":
		NotificationsAccepted.Inc()
	case "notification_rejected":
		NotificationsRejected.Inc()
	}
}
