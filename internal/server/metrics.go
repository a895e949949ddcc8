package server

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shivavenkatesh/chunkviz/internal/pipeline"
	"github.com/shivavenkatesh/chunkviz/pkg/types"
)

const metricsNamespace = "chunkviz"

// metrics holds the server's Prometheus collectors on a private registry
type metrics struct {
	registry   *prometheus.Registry
	requests   *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	chunks     prometheus.Histogram
	mismatches prometheus.Histogram
	truncated  prometheus.Counter
}

func newMetrics(svc pipeline.Service) *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		chunks: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "chunks_per_request",
			Help:      "Number of chunks produced per compute request.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
		mismatches: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "boundary_mismatches_per_request",
			Help:      "Chunk cut points that split a paragraph, per compute request.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
		truncated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "truncated_inputs_total",
			Help:      "Compute requests whose input was truncated.",
		}),
	}

	cacheHits := prometheus.NewCounterFunc(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "result_cache_hits_total",
		Help:      "Result cache hits.",
	}, func() float64 {
		return float64(svc.CacheStats().Hits)
	})
	cacheMisses := prometheus.NewCounterFunc(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "result_cache_misses_total",
		Help:      "Result cache misses.",
	}, func() float64 {
		return float64(svc.CacheStats().Misses)
	})

	cacheEntries := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "result_cache_entries",
		Help:      "Results currently held in the cache.",
	}, func() float64 {
		return float64(svc.CacheStats().Entries)
	})

	m.registry.MustRegister(
		m.requests, m.duration, m.chunks, m.mismatches, m.truncated,
		cacheHits, cacheMisses, cacheEntries,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// instrumentedService records chunk metrics for every compute, whichever
// surface (HTTP or MCP) it came from
type instrumentedService struct {
	pipeline.Service
	metrics *metrics
}

func (s *instrumentedService) Compute(ctx context.Context, req types.ComputeRequest) (*types.Result, error) {
	res, err := s.Service.Compute(ctx, req)
	if err != nil {
		return nil, err
	}
	s.metrics.chunks.Observe(float64(res.Statistics.Count))
	s.metrics.mismatches.Observe(float64(res.Highlight.BoundaryMismatchCount))
	if res.Truncated {
		s.metrics.truncated.Inc()
	}
	return res, nil
}
