package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by method, path and status",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	// ImportRows counts pasted data rows by outcome (parsed, skipped)
	ImportRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "route_import_rows_total",
		Help: "Pasted route rows by outcome",
	}, []string{"result"})

	RouteMerges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "route_merges_total",
		Help: "Route re-imports reconciled with saved state",
	}, []string{"result"})

	DocumentsRendered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "documents_rendered_total",
		Help: "Filled documents by outcome",
	}, []string{"result"})

	UnresolvedBindings = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "document_unresolved_bindings_total",
		Help: "Variable bindings drawn as placeholders",
	}, []string{"variable"})
)
