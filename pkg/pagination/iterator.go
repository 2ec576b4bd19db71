package pagination

import (
	"context"
	"fmt"

	"github.com/Sternrassler/movie-catalog-client/pkg/client"
)

// Config holds the bounds of a page walk.
type Config struct {
	// PageSize is the fixed page size requested on every fetch.
	// The catalog backend accepts at most 100.
	PageSize int

	// MaxPages caps the number of pages fetched in one walk
	// (at most PageSize*MaxPages items are collected).
	MaxPages int
}

// DefaultConfig returns the default bounds: 100 items per page, 50 pages.
func DefaultConfig() Config {
	return Config{
		PageSize: 100,
		MaxPages: 50,
	}
}

// Validate rejects non-positive bounds.
func (c Config) Validate() error {
	if c.PageSize < 1 {
		return client.InvalidArgumentf("page size must be >= 1 (got %d)", c.PageSize)
	}
	if c.MaxPages < 1 {
		return client.InvalidArgumentf("max pages must be >= 1 (got %d)", c.MaxPages)
	}
	return nil
}

// PageFetcher fetches a single page of a fixed query.
type PageFetcher[T any] interface {
	FetchPage(ctx context.Context, page, size int) (*client.Page[T], error)
}

// FetchFunc adapts a function to PageFetcher.
type FetchFunc[T any] func(ctx context.Context, page, size int) (*client.Page[T], error)

// FetchPage calls f.
func (f FetchFunc[T]) FetchPage(ctx context.Context, page, size int) (*client.Page[T], error) {
	return f(ctx, page, size)
}

// StopReason describes why a page walk ended.
type StopReason int

const (
	// StopNone means the walk has not ended yet.
	StopNone StopReason = iota

	// StopShortPage means the last page held fewer items than the page size.
	StopShortPage

	// StopMaxPages means MaxPages pages were fetched without a short page.
	StopMaxPages

	// StopFailed means a fetch returned an error.
	StopFailed

	// StopAborted means the consumer stopped the walk early.
	StopAborted
)

// String returns the metric/log label of the reason.
func (r StopReason) String() string {
	switch r {
	case StopNone:
		return "none"
	case StopShortPage:
		return "short_page"
	case StopMaxPages:
		return "max_pages"
	case StopFailed:
		return "failed"
	case StopAborted:
		return "aborted"
	default:
		return fmt.Sprintf("StopReason(%d)", int(r))
	}
}

// Iterator walks pages lazily, one fetch per Next call. Pages are fetched
// strictly in ascending order; page N+1 is never requested before page N has
// been received.
//
//	it := pagination.NewIterator[T](fetcher, cfg)
//	for it.Next(ctx) {
//		use(it.Page())
//	}
//	if err := it.Err(); err != nil { ... }
//	reason := it.Reason()
//
// An Iterator is not safe for concurrent use.
type Iterator[T any] struct {
	fetcher PageFetcher[T]
	config  Config

	nextPage int
	fetched  int
	current  *client.Page[T]
	reason   StopReason
	err      error
}

// NewIterator creates an iterator starting at page 1. An invalid config makes
// the first Next fail with ErrInvalidArgument.
func NewIterator[T any](fetcher PageFetcher[T], config Config) *Iterator[T] {
	it := &Iterator[T]{
		fetcher:  fetcher,
		config:   config,
		nextPage: 1,
	}
	if err := config.Validate(); err != nil {
		it.stop(StopFailed, err)
	}
	return it
}

// Next fetches the next page. It returns false once the walk has ended; the
// page that triggered a short-page or cap stop is still yielded.
func (it *Iterator[T]) Next(ctx context.Context) bool {
	if it.reason != StopNone {
		it.current = nil
		return false
	}

	page, err := it.fetcher.FetchPage(ctx, it.nextPage, it.config.PageSize)
	if err != nil {
		it.current = nil
		it.stop(StopFailed, fmt.Errorf("fetch page %d: %w", it.nextPage, err))
		return false
	}

	it.current = page
	it.fetched++
	it.nextPage++

	switch {
	case len(page.Items) < it.config.PageSize:
		it.stop(StopShortPage, nil)
	case it.fetched >= it.config.MaxPages:
		it.stop(StopMaxPages, nil)
	}

	return true
}

// Page returns the page fetched by the last successful Next.
func (it *Iterator[T]) Page() *client.Page[T] {
	return it.current
}

// Stop ends the walk early. It is a no-op if the walk already ended.
func (it *Iterator[T]) Stop() {
	if it.reason == StopNone {
		it.stop(StopAborted, nil)
	}
}

// Err returns the error that ended the walk, if any.
func (it *Iterator[T]) Err() error {
	return it.err
}

// Reason returns why the walk ended, or StopNone while it is still running.
func (it *Iterator[T]) Reason() StopReason {
	return it.reason
}

// Pages returns the number of pages fetched successfully.
func (it *Iterator[T]) Pages() int {
	return it.fetched
}

func (it *Iterator[T]) stop(reason StopReason, err error) {
	it.reason = reason
	it.err = err
}
