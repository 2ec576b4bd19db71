// Package lookup resolves display labels for identifiers that the catalog
// cannot serve by id, by scanning a reference listing page by page.
package lookup

import (
	"context"

	"github.com/Sternrassler/movie-catalog-client/pkg/pagination"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
)

var lookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "catalog_lookups_total",
	Help: "Total label lookups by result",
}, []string{"result"})

// Labeled is a reference row with an identifier and a display label.
type Labeled interface {
	RefID() int
	Label() string
}

// ResolveLabel scans fetcher's pages in ascending order and returns the label
// of the first item whose id matches. The scan stops at the matching page,
// at a short page or at the page cap; found is false when the id was not
// seen before the scan ended. Fetch errors abort the scan.
func ResolveLabel[T Labeled](ctx context.Context, fetcher pagination.PageFetcher[T], id int, config pagination.Config) (label string, found bool, err error) {
	it := pagination.NewIterator(fetcher, config)

	for it.Next(ctx) {
		for _, item := range it.Page().Items {
			if item.RefID() == id {
				it.Stop()
				lookupsTotal.WithLabelValues("found").Inc()
				log.Debug().
					Int("id", id).
					Int("pages", it.Pages()).
					Msg("Label resolved")
				return item.Label(), true, nil
			}
		}
	}

	if err := it.Err(); err != nil {
		lookupsTotal.WithLabelValues("failed").Inc()
		return "", false, err
	}

	lookupsTotal.WithLabelValues("not_found").Inc()
	log.Debug().
		Int("id", id).
		Int("pages", it.Pages()).
		Str("reason", it.Reason().String()).
		Msg("Label not found")

	return "", false, nil
}
