package catalog

import "strconv"

// MovieShort is a movie as it appears in listings.
type MovieShort struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	ReleaseYear *int     `json:"release_year"`
	Rating      *float64 `json:"rating"`
}

// RefID returns the movie id.
func (m MovieShort) RefID() int { return m.ID }

// Label returns the movie title.
func (m MovieShort) Label() string { return m.Title }

// YearString formats the release year, or "-" when unknown.
func (m MovieShort) YearString() string {
	if m.ReleaseYear == nil {
		return "-"
	}
	return strconv.Itoa(*m.ReleaseYear)
}

// RatingString formats the rating with one decimal, or "-" when unknown.
func (m MovieShort) RatingString() string {
	if m.Rating == nil {
		return "-"
	}
	return strconv.FormatFloat(*m.Rating, 'f', 1, 64)
}

// MovieDetails is the full movie record served by /api/movies/{id}.
type MovieDetails struct {
	MovieShort
	Description *string   `json:"description"`
	Genres      []Genre   `json:"genres"`
	Countries   []Country `json:"countries"`
	Persons     []Person  `json:"persons"`
}

// Genre is a genre reference row.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func (g Genre) RefID() int    { return g.ID }
func (g Genre) Label() string { return g.Name }

// Country is a country reference row.
type Country struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func (c Country) RefID() int    { return c.ID }
func (c Country) Label() string { return c.Name }

// Person is a person reference row.
type Person struct {
	ID       int    `json:"id"`
	FullName string `json:"full_name"`
}

func (p Person) RefID() int    { return p.ID }
func (p Person) Label() string { return p.FullName }

// PersonProfile is a person's display name with every movie they appear in,
// best rated first.
type PersonProfile struct {
	ID     int
	Name   string
	Movies []MovieShort

	// Found is false when Name is the fallback label.
	Found bool

	// Complete is false when the movie walk hit the page cap.
	Complete bool
}

// SearchResult holds the first page of movie and person matches for a query.
type SearchResult struct {
	Query   string
	Movies  []MovieShort
	Persons []Person
}

// Empty reports whether nothing matched.
func (r *SearchResult) Empty() bool {
	return len(r.Movies) == 0 && len(r.Persons) == 0
}

// Facets are the genre and country options offered by the filter sidebar.
type Facets struct {
	Genres    []Genre
	Countries []Country
}
