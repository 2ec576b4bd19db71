package pagination

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for page walks.
var (
	aggregationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_aggregations_total",
		Help: "Total aggregation runs by termination reason",
	}, []string{"reason"})

	aggregationPages = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "catalog_aggregation_pages",
		Help:    "Pages fetched per aggregation run",
		Buckets: []float64{1, 2, 5, 10, 20, 50},
	})
)

// Result is the outcome of a successful CollectAll run.
type Result[T any] struct {
	// Items holds every collected item in backend order (page 1 first).
	Items []T

	// Pages is the number of pages fetched.
	Pages int

	// Total is the total reported by the last page fetched.
	Total int

	// Reason is StopShortPage or StopMaxPages.
	Reason StopReason
}

// Complete reports whether the walk reached a short page. A capped result
// may be missing items when Total exceeds PageSize*MaxPages.
func (r *Result[T]) Complete() bool {
	return r.Reason == StopShortPage
}

// cursor is the per-run accumulator of CollectAll.
type cursor[T any] struct {
	collected []T
	total     int
}

// CollectAll walks every page of fetcher and returns the concatenated items.
// A cap hit is a success with Reason StopMaxPages; any fetch error aborts the
// run and no partial items are returned.
func CollectAll[T any](ctx context.Context, fetcher PageFetcher[T], config Config) (*Result[T], error) {
	start := time.Now()

	it := NewIterator(fetcher, config)
	cur := &cursor[T]{}

	for it.Next(ctx) {
		page := it.Page()
		cur.collected = append(cur.collected, page.Items...)
		cur.total = page.Total
	}

	aggregationsTotal.WithLabelValues(it.Reason().String()).Inc()
	aggregationPages.Observe(float64(it.Pages()))

	if err := it.Err(); err != nil {
		log.Warn().
			Err(err).
			Int("pages_fetched", it.Pages()).
			Msg("Aggregation aborted")
		return nil, err
	}

	if it.Reason() == StopMaxPages {
		log.Warn().
			Int("pages", it.Pages()).
			Int("items", len(cur.collected)).
			Int("total", cur.total).
			Msg("Aggregation reached page cap - result may be partial")
	} else {
		log.Debug().
			Int("pages", it.Pages()).
			Int("items", len(cur.collected)).
			Dur("duration", time.Since(start)).
			Msg("Aggregation complete")
	}

	return &Result[T]{
		Items:  cur.collected,
		Pages:  it.Pages(),
		Total:  cur.total,
		Reason: it.Reason(),
	}, nil
}
