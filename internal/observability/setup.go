package observability

import (
	"context"
	"net/http"
	"time"

	promreg "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ncecere/cursor_port_sync/internal/config"
)

type Provider struct {
	registry    *promreg.Registry
	promHandler http.Handler

	runsCounter      *promreg.CounterVec
	recordsCounter   *promreg.CounterVec
	fetchLatencyHist *promreg.HistogramVec
	exportLatency    promreg.Histogram
}

func Setup(_ context.Context, cfg config.ObservabilityConfig) (*Provider, error) {
	if !cfg.EnableMetrics {
		return nil, nil
	}

	registry := promreg.NewRegistry()

	runs := promreg.NewCounterVec(
		promreg.CounterOpts{
			Namespace: "cursor_port_sync",
			Name:      "runs_total",
			Help:      "Total number of per-day sync runs by outcome.",
		},
		[]string{"status"},
	)
	records := promreg.NewCounterVec(
		promreg.CounterOpts{
			Namespace: "cursor_port_sync",
			Name:      "exported_records_total",
			Help:      "Total number of records exported to Port by kind.",
		},
		[]string{"kind"},
	)
	latencyBuckets := []float64{0.05, 0.1, 0.2, 0.5, 1, 2, 5, 10, 30, 60}
	fetchLatency := promreg.NewHistogramVec(
		promreg.HistogramOpts{
			Namespace: "cursor_port_sync",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of Cursor Admin API fetches.",
			Buckets:   latencyBuckets,
		},
		[]string{"endpoint"},
	)
	exportLatency := promreg.NewHistogram(
		promreg.HistogramOpts{
			Namespace: "cursor_port_sync",
			Name:      "export_duration_seconds",
			Help:      "Duration of Port bulk upserts per day.",
			Buckets:   latencyBuckets,
		},
	)

	for _, c := range []promreg.Collector{runs, records, fetchLatency, exportLatency} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}

	return &Provider{
		registry:         registry,
		promHandler:      promhttp.HandlerFor(registry, promhttp.HandlerOpts{EnableOpenMetrics: true}),
		runsCounter:      runs,
		recordsCounter:   records,
		fetchLatencyHist: fetchLatency,
		exportLatency:    exportLatency,
	}, nil
}

func (p *Provider) PrometheusHandler() http.Handler {
	if p == nil || p.promHandler == nil {
		return nil
	}
	return p.promHandler
}

func (p *Provider) RecordRun(status string) {
	if p == nil || p.runsCounter == nil {
		return
	}
	p.runsCounter.WithLabelValues(status).Inc()
}

func (p *Provider) RecordExported(kind string, count int) {
	if p == nil || p.recordsCounter == nil || count <= 0 {
		return
	}
	p.recordsCounter.WithLabelValues(kind).Add(float64(count))
}

func (p *Provider) RecordFetch(endpoint string, duration time.Duration) {
	if p == nil || p.fetchLatencyHist == nil {
		return
	}
	p.fetchLatencyHist.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (p *Provider) RecordExport(duration time.Duration) {
	if p == nil || p.exportLatency == nil {
		return
	}
	p.exportLatency.Observe(duration.Seconds())
}
