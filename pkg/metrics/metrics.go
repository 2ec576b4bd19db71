// Package metrics provides the Prometheus registry used by the catalog client.
// All metrics are defined in their respective packages (client, pagination,
// lookup, session) to maintain modularity and avoid circular dependencies.
//
// This package provides documentation for all available metrics and a text
// dump for command-line use.
package metrics

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Registry is the default Prometheus registry used by the catalog client.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Gatherer reads back the metrics registered with Registry.
var Gatherer = prometheus.DefaultGatherer

// Prefix is the name prefix shared by every catalog client metric.
const Prefix = "catalog_"

// WriteText writes the metric families of g whose names start with prefix in
// the Prometheus text exposition format, sorted by name. An empty prefix
// writes everything.
func WriteText(w io.Writer, g prometheus.Gatherer, prefix string) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}

	sort.Slice(families, func(i, j int) bool {
		return families[i].GetName() < families[j].GetName()
	})

	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), prefix) {
			continue
		}
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("write %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - catalog_requests_total{resource, status} (Counter): Requests by resource and HTTP status
//   - catalog_request_duration_seconds{resource} (Histogram): Request duration by resource
//   - catalog_errors_total{class} (Counter): Errors by class (client, server, network, decode)
//
// Aggregation Metrics (pkg/pagination):
//   - catalog_aggregations_total{reason} (Counter): Page walks by termination reason
//     (short_page, max_pages, failed)
//   - catalog_aggregation_pages (Histogram): Pages fetched per walk
//
// Lookup Metrics (pkg/lookup):
//   - catalog_lookups_total{result} (Counter): Label lookups (found, not_found, failed)
//
// Session Metrics (pkg/session):
//   - catalog_stale_responses_total (Counter): Responses discarded after a newer request
//
// Numeric path segments are collapsed to {id} in the resource label, so
// /api/movies/42 is reported as /api/movies/{id}.
//
// Example Prometheus Queries:
//
//   # Request Error Rate
//   rate(catalog_errors_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(catalog_request_duration_seconds_bucket[5m]))
//
//   # Share of aggregations cut off by the page cap
//   rate(catalog_aggregations_total{reason="max_pages"}[1h]) /
//   sum(rate(catalog_aggregations_total[1h]))
