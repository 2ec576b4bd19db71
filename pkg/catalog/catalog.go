// Package catalog exposes the browsing operations of the movie catalog:
// single listing pages, movie details, full aggregations, person profiles,
// search and filter facets.
package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/Sternrassler/movie-catalog-client/pkg/client"
	"github.com/Sternrassler/movie-catalog-client/pkg/lookup"
	"github.com/Sternrassler/movie-catalog-client/pkg/pagination"
	"github.com/Sternrassler/movie-catalog-client/pkg/query"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// API resources.
const (
	ResourceMovies    = "/api/movies"
	ResourceGenres    = "/api/genres"
	ResourceCountries = "/api/countries"
	ResourcePersons   = "/api/persons"
)

// Page sizes used by search and the filter facets.
const (
	SearchMoviesSize  = 20
	SearchPersonsSize = 50
	FacetsSize        = 100
)

// Catalog wraps a client with the catalog's browsing operations.
type Catalog struct {
	client      *client.Client
	aggregation pagination.Config
	logger      zerolog.Logger
}

// New creates a Catalog. The aggregation bounds apply to AllMovies,
// MoviesByPerson and PersonName.
func New(c *client.Client, aggregation pagination.Config) (*Catalog, error) {
	if c == nil {
		return nil, fmt.Errorf("client is required")
	}
	if err := aggregation.Validate(); err != nil {
		return nil, fmt.Errorf("aggregation config: %w", err)
	}
	return &Catalog{
		client:      c,
		aggregation: aggregation,
		logger:      log.With().Str("component", "catalog").Logger(),
	}, nil
}

// Movies fetches one page of movies matching criteria.
func (c *Catalog) Movies(ctx context.Context, criteria query.MovieCriteria, sort query.Sort, page, size int) (*client.Page[MovieShort], error) {
	return client.FetchPage[MovieShort](ctx, c.client, ResourceMovies, query.PageRequest{
		Criteria: criteria,
		Sort:     sort,
		Page:     page,
		Size:     size,
	})
}

// Movie fetches the details of one movie. A missing movie yields a
// *client.RequestFailedError for which client.IsNotFound is true.
func (c *Catalog) Movie(ctx context.Context, id int) (*MovieDetails, error) {
	if id < 1 {
		return nil, client.InvalidArgumentf("movie id must be >= 1 (got %d)", id)
	}

	var details MovieDetails
	if err := c.client.GetJSON(ctx, fmt.Sprintf("%s/%d", ResourceMovies, id), nil, &details); err != nil {
		return nil, err
	}
	return &details, nil
}

// Genres fetches one page of genres, optionally filtered by a name search.
func (c *Catalog) Genres(ctx context.Context, search string, page, size int) (*client.Page[Genre], error) {
	return fetchReference[Genre](ctx, c, ResourceGenres, search, page, size)
}

// Countries fetches one page of countries, optionally filtered by a name search.
func (c *Catalog) Countries(ctx context.Context, search string, page, size int) (*client.Page[Country], error) {
	return fetchReference[Country](ctx, c, ResourceCountries, search, page, size)
}

// Persons fetches one page of persons, optionally filtered by a name search.
func (c *Catalog) Persons(ctx context.Context, search string, page, size int) (*client.Page[Person], error) {
	return fetchReference[Person](ctx, c, ResourcePersons, search, page, size)
}

func fetchReference[T any](ctx context.Context, c *Catalog, resource, search string, page, size int) (*client.Page[T], error) {
	return client.FetchPage[T](ctx, c.client, resource, query.PageRequest{
		Criteria: query.ReferenceCriteria{Search: strings.TrimSpace(search)},
		Page:     page,
		Size:     size,
	})
}

// AllMovies collects every movie matching criteria across pages, within the
// aggregation bounds.
func (c *Catalog) AllMovies(ctx context.Context, criteria query.MovieCriteria, sort query.Sort) (*pagination.Result[MovieShort], error) {
	criteria = criteria.Clone()
	fetcher := pagination.FetchFunc[MovieShort](func(ctx context.Context, page, size int) (*client.Page[MovieShort], error) {
		return c.Movies(ctx, criteria, sort, page, size)
	})
	return pagination.CollectAll[MovieShort](ctx, fetcher, c.aggregation)
}

// MoviesByPerson collects every movie personID appears in, best rated first.
func (c *Catalog) MoviesByPerson(ctx context.Context, personID int) (*pagination.Result[MovieShort], error) {
	if personID < 1 {
		return nil, client.InvalidArgumentf("person id must be >= 1 (got %d)", personID)
	}
	return c.AllMovies(ctx, query.MovieCriteria{PersonIDs: []int{personID}}, query.SortRatingDesc)
}

// PersonName resolves a person's full name by scanning the person listing.
// found is false when the scan ended without seeing id.
func (c *Catalog) PersonName(ctx context.Context, id int) (name string, found bool, err error) {
	fetcher := pagination.FetchFunc[Person](func(ctx context.Context, page, size int) (*client.Page[Person], error) {
		return c.Persons(ctx, "", page, size)
	})
	return lookup.ResolveLabel[Person](ctx, fetcher, id, c.aggregation)
}

// PersonProfile resolves a person's name and collects their movies
// concurrently. An unresolved name falls back to "Person #<id>". Either
// failure fails the whole profile.
func (c *Catalog) PersonProfile(ctx context.Context, id int) (*PersonProfile, error) {
	if id < 1 {
		return nil, client.InvalidArgumentf("person id must be >= 1 (got %d)", id)
	}

	profile := &PersonProfile{ID: id}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		name, found, err := c.PersonName(gctx, id)
		if err != nil {
			return fmt.Errorf("resolve person name: %w", err)
		}
		profile.Name, profile.Found = name, found
		return nil
	})
	g.Go(func() error {
		result, err := c.MoviesByPerson(gctx, id)
		if err != nil {
			return fmt.Errorf("collect person movies: %w", err)
		}
		profile.Movies, profile.Complete = result.Items, result.Complete()
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if !profile.Found {
		profile.Name = FallbackPersonName(id)
	}

	c.logger.Debug().
		Int("person_id", id).
		Bool("name_found", profile.Found).
		Int("movies", len(profile.Movies)).
		Msg("Person profile loaded")

	return profile, nil
}

// FallbackPersonName is the label shown for a person whose name is unknown.
func FallbackPersonName(id int) string {
	return fmt.Sprintf("Person #%d", id)
}

// Search looks up movies by title and persons by name concurrently. A blank
// query returns an empty result without contacting the API.
func (c *Catalog) Search(ctx context.Context, q string) (*SearchResult, error) {
	q = strings.TrimSpace(q)
	result := &SearchResult{Query: q}
	if q == "" {
		return result, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		page, err := c.Movies(gctx, query.MovieCriteria{Query: q}, query.SortRatingDesc, 1, SearchMoviesSize)
		if err != nil {
			return fmt.Errorf("search movies: %w", err)
		}
		result.Movies = page.Items
		return nil
	})
	g.Go(func() error {
		page, err := c.Persons(gctx, q, 1, SearchPersonsSize)
		if err != nil {
			return fmt.Errorf("search persons: %w", err)
		}
		result.Persons = page.Items
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

// Facets loads the first page of genres and countries concurrently.
func (c *Catalog) Facets(ctx context.Context) (*Facets, error) {
	facets := &Facets{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		page, err := c.Genres(gctx, "", 1, FacetsSize)
		if err != nil {
			return fmt.Errorf("load genres: %w", err)
		}
		facets.Genres = page.Items
		return nil
	})
	g.Go(func() error {
		page, err := c.Countries(gctx, "", 1, FacetsSize)
		if err != nil {
			return fmt.Errorf("load countries: %w", err)
		}
		facets.Countries = page.Items
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return facets, nil
}
