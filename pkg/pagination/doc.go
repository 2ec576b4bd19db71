// Package pagination drains page-based catalog endpoints.
//
// The catalog API only exposes fixed-size pages. This package reconstructs
// complete result sets by walking pages 1, 2, 3, ... strictly in order
// until a short page marks the end, bounded by a hard page cap.
//
// Example usage:
//
//	cfg := pagination.DefaultConfig()
//	fetcher := pagination.FetchFunc[catalog.MovieShort](func(ctx context.Context, page, size int) (*client.Page[catalog.MovieShort], error) {
//		return client.FetchPage[catalog.MovieShort](ctx, c, "/api/movies", req.WithPage(page))
//	})
//	result, err := pagination.CollectAll[catalog.MovieShort](ctx, fetcher, cfg)
//
// Termination, checked after every page:
//   - Short page (fewer items than the page size): complete result
//   - Pages fetched reached MaxPages: capped, possibly partial result
//   - Any fetch error: the run aborts and collected items are discarded
//
// Iterator exposes the same walk lazily, one page envelope at a time, with
// the termination reason available once it stops.
package pagination
