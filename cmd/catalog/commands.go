package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Sternrassler/movie-catalog-client/pkg/filter"
	"github.com/Sternrassler/movie-catalog-client/pkg/query"
	"github.com/Sternrassler/movie-catalog-client/pkg/session"
)

// movieFlags mirror the movie listing query fields.
type movieFlags struct {
	query      string
	genres     []string
	countries  []string
	persons    []string
	yearFrom   int
	yearTo     int
	ratingFrom float64
	ratingTo   float64
	sort       string
	page       int
	size       int
	all        bool
}

func newMoviesCmd(a *app) *cobra.Command {
	f := &movieFlags{}

	cmd := &cobra.Command{
		Use:   "movies",
		Short: "List movies matching filter criteria",
		Long: `List one page of movies matching the given filters, or every matching movie
with --all. Genre, country and person filters accept ids or names.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runMovies(cmd, f)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&f.query, "query", "q", "", "title search text")
	flags.StringSliceVar(&f.genres, "genre", nil, "genre id or name (repeatable)")
	flags.StringSliceVar(&f.countries, "country", nil, "country id or name (repeatable)")
	flags.StringSliceVar(&f.persons, "person", nil, "person id or name (repeatable)")
	flags.IntVar(&f.yearFrom, "year-from", 0, "earliest release year")
	flags.IntVar(&f.yearTo, "year-to", 0, "latest release year")
	flags.Float64Var(&f.ratingFrom, "rating-from", 0, "minimum rating")
	flags.Float64Var(&f.ratingTo, "rating-to", 0, "maximum rating")
	flags.StringVarP(&f.sort, "sort", "s", string(query.DefaultSort), "sort: rating, year, title; prefix '-' for descending")
	flags.IntVarP(&f.page, "page", "p", 1, "page number")
	flags.IntVar(&f.size, "size", 0, "page size (default browse.page_size)")
	flags.BoolVar(&f.all, "all", false, "collect every matching movie across pages")

	return cmd
}

func (a *app) runMovies(cmd *cobra.Command, f *movieFlags) error {
	ctx := cmd.Context()

	state, err := a.buildState(cmd, f)
	if err != nil {
		return err
	}

	out := newFormatter(cmd.OutOrStdout())

	if f.all {
		result, err := a.catalog.AllMovies(ctx, state.Criteria(), state.Sort())
		if err != nil {
			return fmt.Errorf("failed to collect movies: %w", err)
		}
		out.MovieAggregate(result, state.ActiveFilterCount())
		return nil
	}

	size := f.size
	if size == 0 {
		size = a.cfg.Browse.PageSize
	}

	sess := session.New(a.catalog, a.guard, size)
	sess.Update(func(filter.State) filter.State { return state })

	res, err := sess.Apply(ctx)
	if err != nil {
		return fmt.Errorf("failed to list movies: %w", err)
	}
	out.MoviePage(res)
	return nil
}

// buildState applies the flags to a fresh filter state.
func (a *app) buildState(cmd *cobra.Command, f *movieFlags) (filter.State, error) {
	ctx := cmd.Context()
	flags := cmd.Flags()

	sort, err := query.ParseSort(f.sort)
	if err != nil {
		return filter.State{}, err
	}

	state := filter.New().SetQuery(f.query)

	dims := []struct {
		dim    filter.Dimension
		values []string
	}{
		{filter.Genre, f.genres},
		{filter.Country, f.countries},
		{filter.Person, f.persons},
	}
	for _, d := range dims {
		ids, err := a.resolveIDs(ctx, d.dim, d.values)
		if err != nil {
			return filter.State{}, err
		}
		for _, id := range ids {
			if !state.IsSelected(d.dim, id) {
				state = state.ToggleCategory(d.dim, id)
			}
		}
	}

	bounds := []struct {
		flag  string
		dim   filter.RangeDimension
		bound filter.Bound
		value float64
	}{
		{"year-from", filter.Year, filter.Lower, float64(f.yearFrom)},
		{"year-to", filter.Year, filter.Upper, float64(f.yearTo)},
		{"rating-from", filter.Rating, filter.Lower, f.ratingFrom},
		{"rating-to", filter.Rating, filter.Upper, f.ratingTo},
	}
	for _, b := range bounds {
		if flags.Changed(b.flag) {
			v := b.value
			state = state.SetRange(b.dim, b.bound, &v)
		}
	}

	return state.SetSort(sort).SetPage(f.page), nil
}

func newMovieCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "movie <id>",
		Short: "Show movie details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			details, err := a.catalog.Movie(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("failed to get movie %d: %w", id, err)
			}
			newFormatter(cmd.OutOrStdout()).MovieDetails(details)
			return nil
		},
	}
}

func newPersonCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "person <id>",
		Short: "Show a person and every movie they appear in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			profile, err := a.catalog.PersonProfile(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("failed to load person %d: %w", id, err)
			}
			newFormatter(cmd.OutOrStdout()).PersonProfile(profile)
			return nil
		},
	}
}

func newSearchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "search <text>",
		Short: "Search movies by title and persons by name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := a.catalog.Search(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("search failed: %w", err)
			}
			newFormatter(cmd.OutOrStdout()).SearchResult(result)
			return nil
		},
	}
}

// referenceFlags are shared by the genre, country and person listings.
type referenceFlags struct {
	search string
	page   int
	size   int
}

func (f *referenceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.search, "search", "", "name search text")
	cmd.Flags().IntVarP(&f.page, "page", "p", 1, "page number")
	cmd.Flags().IntVar(&f.size, "size", 50, "page size")
}

func newGenresCmd(a *app) *cobra.Command {
	f := &referenceFlags{}
	cmd := &cobra.Command{
		Use:   "genres",
		Short: "List genres",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := a.catalog.Genres(cmd.Context(), f.search, f.page, f.size)
			if err != nil {
				return fmt.Errorf("failed to list genres: %w", err)
			}
			newFormatter(cmd.OutOrStdout()).References("Genres", page.Page, page.Size, page.Total, labels(page.Items))
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func newCountriesCmd(a *app) *cobra.Command {
	f := &referenceFlags{}
	cmd := &cobra.Command{
		Use:   "countries",
		Short: "List countries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := a.catalog.Countries(cmd.Context(), f.search, f.page, f.size)
			if err != nil {
				return fmt.Errorf("failed to list countries: %w", err)
			}
			newFormatter(cmd.OutOrStdout()).References("Countries", page.Page, page.Size, page.Total, labels(page.Items))
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func newPersonsCmd(a *app) *cobra.Command {
	f := &referenceFlags{}
	cmd := &cobra.Command{
		Use:   "persons",
		Short: "List persons",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := a.catalog.Persons(cmd.Context(), f.search, f.page, f.size)
			if err != nil {
				return fmt.Errorf("failed to list persons: %w", err)
			}
			newFormatter(cmd.OutOrStdout()).References("Persons", page.Page, page.Size, page.Total, labels(page.Items))
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid id %q: must be a positive integer", s)
	}
	return id, nil
}
