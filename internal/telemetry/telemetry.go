// Package telemetry reports heartbeats and errors from a run.
//
// The crawler is a batch job, so metrics are pushed to a Prometheus
// Pushgateway at the end of the run instead of being scraped. Every call
// here is fire-and-forget: telemetry must never fail the crawl.
package telemetry

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"go.uber.org/zap"

	"github.com/vadviktor/animefeed/internal/config"
)

// Reporter accumulates run metrics and pushes them on Flush.
type Reporter struct {
	log      *zap.Logger
	enabled  bool
	registry *prometheus.Registry
	pusher   *push.Pusher

	heartbeats *prometheus.GaugeVec
	errorCount prometheus.Counter
}

// New builds a Reporter. With telemetry disabled every method is a no-op
// apart from logging.
func New(cfg config.TelemetryConfig, log *zap.Logger) *Reporter {
	r := &Reporter{
		log:      log,
		enabled:  cfg.Enabled,
		registry: prometheus.NewRegistry(),
		heartbeats: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "animefeed_heartbeat",
			Help: "Run heartbeat values, labeled by metric name.",
		}, []string{"metric"}),
		errorCount: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "animefeed_errors_total",
			Help: "Total errors reported during the run.",
		}),
	}
	r.registry.MustRegister(r.heartbeats, r.errorCount)

	if cfg.Enabled {
		r.pusher = push.New(cfg.PushgatewayURL, cfg.JobName).Gatherer(r.registry)
	}
	return r
}

// Heartbeat records a named run metric.
func (r *Reporter) Heartbeat(name string, value float64) {
	r.log.Info("heartbeat", zap.String("metric", name), zap.Float64("value", value))
	r.heartbeats.WithLabelValues(name).Set(value)
}

// Error reports a failure. The error still propagates through the normal
// return path; this only records it.
func (r *Reporter) Error(err error) {
	r.log.Error("reported error", zap.Error(err))
	r.errorCount.Inc()
}

// Message reports a free-text event.
func (r *Reporter) Message(text string) {
	r.log.Info("reported message", zap.String("text", text))
}

// Flush pushes accumulated metrics. Push failures are logged, never
// returned.
func (r *Reporter) Flush(ctx context.Context) {
	if !r.enabled || r.pusher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := r.pusher.PushContext(ctx); err != nil {
		r.log.Warn("pushgateway push failed", zap.Error(err))
	}
}
