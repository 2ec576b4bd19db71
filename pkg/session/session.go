// Package session holds the interactive browse state of one catalog view and
// fetches the page it describes, discarding responses overtaken by a newer
// request.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Sternrassler/movie-catalog-client/pkg/catalog"
	"github.com/Sternrassler/movie-catalog-client/pkg/client"
	"github.com/Sternrassler/movie-catalog-client/pkg/filter"
	"github.com/Sternrassler/movie-catalog-client/pkg/token"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var staleResponses = promauto.NewCounter(prometheus.CounterOpts{
	Name: "catalog_stale_responses_total",
	Help: "Total responses discarded because a newer request was issued",
})

// ErrStale is returned by Apply when a newer request was issued while the
// response was in flight. The response has been discarded.
var ErrStale = errors.New("stale response discarded")

// DefaultPageSize is the browse page size.
const DefaultPageSize = 10

// Result is the page shown for one applied state.
type Result struct {
	State      filter.State
	Page       *client.Page[catalog.MovieShort]
	TotalPages int
	Token      uint64
}

// Session is safe for concurrent use.
type Session struct {
	catalog  *catalog.Catalog
	guard    *token.Guard
	pageSize int
	logger   zerolog.Logger

	mu    sync.Mutex
	state filter.State
}

// New creates a session starting from filter.New(). A nil guard uses an
// in-process sequencer; pageSize <= 0 uses DefaultPageSize.
func New(cat *catalog.Catalog, guard *token.Guard, pageSize int) *Session {
	if cat == nil {
		panic("catalog cannot be nil")
	}
	if guard == nil {
		guard = token.NewGuard(nil)
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Session{
		catalog:  cat,
		guard:    guard,
		pageSize: pageSize,
		logger:   log.With().Str("component", "session").Logger(),
		state:    filter.New(),
	}
}

// State returns the current filter state.
func (s *Session) State() filter.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// PageSize returns the browse page size.
func (s *Session) PageSize() int {
	return s.pageSize
}

// Update replaces the state with fn(state). It never fetches.
func (s *Session) Update(fn func(filter.State) filter.State) filter.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = fn(s.state)
	return s.state
}

// Apply fetches the page described by the current state. If a newer token
// was issued in the guard's sequence before this response arrived, by this
// session or by any other sharing the sequence, the response is dropped and
// ErrStale returned.
func (s *Session) Apply(ctx context.Context) (*Result, error) {
	state := s.State()

	tok, err := s.guard.Issue(ctx)
	if err != nil {
		return nil, fmt.Errorf("issue request token: %w", err)
	}

	page, err := s.catalog.Movies(ctx, state.Criteria(), state.Sort(), state.Page(), s.pageSize)
	latest, lerr := s.guard.IsLatest(ctx, tok)
	if lerr != nil {
		return nil, fmt.Errorf("check request token: %w", lerr)
	}
	if !latest {
		staleResponses.Inc()
		s.logger.Debug().
			Uint64("token", tok).
			Msg("Discarding stale response")
		return nil, ErrStale
	}
	if err != nil {
		return nil, err
	}

	return &Result{
		State:      state,
		Page:       page,
		TotalPages: filter.TotalPages(page.Total, s.pageSize),
		Token:      tok,
	}, nil
}
