// Package metrics exposes plugin counters in Prometheus format.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "twitchdeck"

type Metrics struct {
	registry *prometheus.Registry

	ActionsTotal    *prometheus.CounterVec
	ActionDuration  *prometheus.HistogramVec
	HostEventsTotal *prometheus.CounterVec
	RaidsTotal      prometheus.Counter
	TokenInvalid    prometheus.Counter
	BusDropsTotal   *prometheus.CounterVec
	HeldMessages    prometheus.Gauge
}

// New registers every collector on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		ActionsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_total",
			Help:      "Key presses executed against Twitch, by action and result.",
		}, []string{"action", "result"}),
		ActionDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "action_duration_seconds",
			Help:      "Time spent executing a key press.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"action"}),
		HostEventsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "host_events_total",
			Help:      "Inbound Stream Deck events handled by the plugin.",
		}, []string{"event"}),
		RaidsTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "raids_total",
			Help:      "Incoming raids seen in chat.",
		}),
		TokenInvalid: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_invalid_total",
			Help:      "Token checks that found an invalid or expired token.",
		}),
		BusDropsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bus_drops_total",
			Help:      "Events dropped by slow bus subscribers.",
		}, []string{"topic"}),
		HeldMessages: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "automod_held_messages",
			Help:      "AutoMod-held messages waiting for approval.",
		}),
	}
}

func (m *Metrics) ObserveAction(action, result string, d time.Duration) {
	m.ActionsTotal.WithLabelValues(action, result).Inc()
	m.ActionDuration.WithLabelValues(action).Observe(d.Seconds())
}

func (m *Metrics) ObserveHostEvent(event string) {
	m.HostEventsTotal.WithLabelValues(event).Inc()
}

func (m *Metrics) ObserveDrop(topic string) {
	m.BusDropsTotal.WithLabelValues(topic).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("metrics: listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics: serve: %w", err)
	}
	return nil
}
