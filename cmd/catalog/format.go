package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Sternrassler/movie-catalog-client/pkg/catalog"
	"github.com/Sternrassler/movie-catalog-client/pkg/filter"
	"github.com/Sternrassler/movie-catalog-client/pkg/pagination"
	"github.com/Sternrassler/movie-catalog-client/pkg/session"
)

const (
	branch     = "\u251c\u2500\u2500 "
	lastBranch = "\u2514\u2500\u2500 "
	indent     = "\u2502   "
	lastIndent = "    "
)

// formatter writes command output as a tree. Styling is dropped when the
// writer is not a terminal.
type formatter struct {
	w       io.Writer
	heading lipgloss.Style
	title   lipgloss.Style
	muted   lipgloss.Style
	warn    lipgloss.Style
}

func newFormatter(w io.Writer) *formatter {
	r := lipgloss.NewRenderer(w)
	return &formatter{
		w:       w,
		heading: r.NewStyle().Bold(true),
		title:   r.NewStyle().Foreground(lipgloss.Color("12")),
		muted:   r.NewStyle().Foreground(lipgloss.Color("8")),
		warn:    r.NewStyle().Foreground(lipgloss.Color("11")),
	}
}

// MoviePage prints one browse page.
func (f *formatter) MoviePage(res *session.Result) {
	header := fmt.Sprintf("Movies (page %d of %d, %d total)", res.Page.Page, res.TotalPages, res.Page.Total)
	fmt.Fprintf(f.w, "\n%s", f.heading.Render(header))
	if n := res.State.ActiveFilterCount(); n > 0 {
		fmt.Fprintf(f.w, " %s", f.muted.Render(fmt.Sprintf("[%d active filters]", n)))
	}
	fmt.Fprint(f.w, ":\n\n")

	f.movies(res.Page.Items)
}

// MovieAggregate prints every movie collected by a page walk.
func (f *formatter) MovieAggregate(result *pagination.Result[catalog.MovieShort], activeFilters int) {
	header := fmt.Sprintf("Movies (%d of %d, %d pages)", len(result.Items), result.Total, result.Pages)
	fmt.Fprintf(f.w, "\n%s", f.heading.Render(header))
	if activeFilters > 0 {
		fmt.Fprintf(f.w, " %s", f.muted.Render(fmt.Sprintf("[%d active filters]", activeFilters)))
	}
	fmt.Fprint(f.w, ":\n\n")

	f.movies(result.Items)

	if !result.Complete() {
		fmt.Fprintf(f.w, "%s\n", f.warn.Render("Page limit reached; the list may be incomplete."))
	}
}

// MovieDetails prints one movie with its references.
func (f *formatter) MovieDetails(m *catalog.MovieDetails) {
	fmt.Fprintf(f.w, "\n%s (%s)\n", f.heading.Render(m.Title), m.YearString())

	fields := []struct {
		name  string
		value string
	}{
		{"Rating", m.RatingString()},
		{"Genres", joinLabels(m.Genres)},
		{"Countries", joinLabels(m.Countries)},
		{"Persons", joinLabels(m.Persons)},
	}
	if m.Description != nil && *m.Description != "" {
		fields = append(fields, struct {
			name  string
			value string
		}{"Description", *m.Description})
	}

	for i, field := range fields {
		prefix := branch
		if i == len(fields)-1 {
			prefix = lastBranch
		}
		fmt.Fprintf(f.w, "%s%s: %s\n", prefix, f.muted.Render(field.name), field.value)
	}
	fmt.Fprintln(f.w)
}

// PersonProfile prints a person's filmography.
func (f *formatter) PersonProfile(p *catalog.PersonProfile) {
	fmt.Fprintf(f.w, "\n%s %s\n", f.heading.Render(p.Name), f.muted.Render(fmt.Sprintf("#%d", p.ID)))
	fmt.Fprintf(f.w, "Movies (%d):\n\n", len(p.Movies))

	f.movies(p.Movies)

	if !p.Complete {
		fmt.Fprintf(f.w, "%s\n", f.warn.Render("Page limit reached; the list may be incomplete."))
	}
}

// SearchResult prints movie and person matches.
func (f *formatter) SearchResult(r *catalog.SearchResult) {
	if r.Query == "" {
		fmt.Fprintln(f.w, "Nothing to search for")
		return
	}
	if r.Empty() {
		fmt.Fprintf(f.w, "No results for %q\n", r.Query)
		return
	}

	fmt.Fprintf(f.w, "\n%s:\n\n", f.heading.Render(fmt.Sprintf("Movies (%d)", len(r.Movies))))
	f.movies(r.Movies)

	fmt.Fprintf(f.w, "%s:\n\n", f.heading.Render(fmt.Sprintf("Persons (%d)", len(r.Persons))))
	f.labeled(labels(r.Persons))
}

// References prints one page of a reference listing.
func (f *formatter) References(kind string, page, size, total int, items []labeled) {
	header := fmt.Sprintf("%s (page %d of %d, %d total)", kind, page, filter.TotalPages(total, size), total)
	fmt.Fprintf(f.w, "\n%s:\n\n", f.heading.Render(header))
	f.labeled(items)
}

func (f *formatter) movies(movies []catalog.MovieShort) {
	if len(movies) == 0 {
		fmt.Fprintf(f.w, "%s\n\n", f.muted.Render("No movies found"))
		return
	}

	for i, m := range movies {
		isLast := i == len(movies)-1
		prefix, sub := branch, indent
		if isLast {
			prefix, sub = lastBranch, lastIndent
		}
		fmt.Fprintf(f.w, "%s%s (%s) %s\n", prefix, f.title.Render(m.Title), m.YearString(), f.muted.Render(fmt.Sprintf("#%d", m.ID)))
		fmt.Fprintf(f.w, "%sRating: %s\n", sub, m.RatingString())
	}
	fmt.Fprintln(f.w)
}

func (f *formatter) labeled(items []labeled) {
	if len(items) == 0 {
		fmt.Fprintf(f.w, "%s\n\n", f.muted.Render("None"))
		return
	}

	for i, item := range items {
		prefix := branch
		if i == len(items)-1 {
			prefix = lastBranch
		}
		fmt.Fprintf(f.w, "%s%s %s\n", prefix, item.label, f.muted.Render(fmt.Sprintf("#%d", item.id)))
	}
	fmt.Fprintln(f.w)
}

func joinLabels[T interface{ Label() string }](items []T) string {
	if len(items) == 0 {
		return "-"
	}
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = item.Label()
	}
	return strings.Join(parts, ", ")
}
