// Package filter models the user's browse selection as an immutable value.
//
// Every transition returns a new State and leaves the receiver untouched.
// Transitions never fetch; callers apply the resulting state explicitly.
package filter

import (
	"strconv"
	"strings"

	"github.com/Sternrassler/movie-catalog-client/pkg/query"
)

// Dimension is a categorical filter holding a set of ids.
type Dimension int

const (
	Genre Dimension = iota
	Country
	Person
)

func (d Dimension) String() string {
	switch d {
	case Genre:
		return "genre"
	case Country:
		return "country"
	case Person:
		return "person"
	default:
		return "Dimension(" + strconv.Itoa(int(d)) + ")"
	}
}

// RangeDimension is a numeric filter with optional lower and upper bounds.
type RangeDimension int

const (
	Year RangeDimension = iota
	Rating
)

// Bound selects one end of a range.
type Bound int

const (
	Lower Bound = iota
	Upper
)

// State is a snapshot of filters, sort and current page.
type State struct {
	criteria query.MovieCriteria
	sort     query.Sort
	page     int
}

// New returns the initial state: no filters, default sort, page 1.
func New() State {
	return State{sort: query.DefaultSort, page: 1}
}

// Criteria returns a copy of the current filter criteria.
func (s State) Criteria() query.MovieCriteria {
	return s.criteria.Clone()
}

// Sort returns the current sort key.
func (s State) Sort() query.Sort {
	return s.sort
}

// Page returns the current page, always >= 1.
func (s State) Page() int {
	if s.page < 1 {
		return 1
	}
	return s.page
}

// Selected returns a copy of the ids selected in dimension d.
func (s State) Selected(d Dimension) []int {
	ids := s.ids(d)
	if len(ids) == 0 {
		return nil
	}
	out := make([]int, len(ids))
	copy(out, ids)
	return out
}

// IsSelected reports whether id is selected in dimension d.
func (s State) IsSelected(d Dimension, id int) bool {
	return indexOf(s.ids(d), id) >= 0
}

// ToggleCategory removes id from dimension d if present and appends it
// otherwise. Applying it twice restores the original set.
func (s State) ToggleCategory(d Dimension, id int) State {
	next := s.clone()
	ids := next.ids(d)

	if i := indexOf(ids, id); i >= 0 {
		ids = append(ids[:i:i], ids[i+1:]...)
	} else {
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		ids = nil
	}

	next.setIDs(d, ids)
	return next
}

// SetRange replaces one bound of one range; nil clears it. The other bound
// is untouched and bounds are not checked against each other. Year values
// are truncated to whole years.
func (s State) SetRange(d RangeDimension, b Bound, value *float64) State {
	next := s.clone()
	c := &next.criteria

	switch d {
	case Year:
		var year *int
		if value != nil {
			v := int(*value)
			year = &v
		}
		if b == Lower {
			c.YearFrom = year
		} else {
			c.YearTo = year
		}
	case Rating:
		var rating *query.Decimal
		if value != nil {
			v := query.Decimal(*value)
			rating = &v
		}
		if b == Lower {
			c.RatingFrom = rating
		} else {
			c.RatingTo = rating
		}
	}

	return next
}

// SetQuery replaces the free-text term. Surrounding whitespace is dropped.
func (s State) SetQuery(q string) State {
	next := s.clone()
	next.criteria.Query = strings.TrimSpace(q)
	return next
}

// SetSort replaces the sort key and resets the page to 1.
func (s State) SetSort(sort query.Sort) State {
	next := s.clone()
	next.sort = sort
	next.page = 1
	return next
}

// SetPage moves to page p; values below 1 become 1.
func (s State) SetPage(p int) State {
	next := s.clone()
	if p < 1 {
		p = 1
	}
	next.page = p
	return next
}

// Reset returns the initial state.
func (s State) Reset() State {
	return New()
}

// ActiveFilterCount counts selected ids across all dimensions, populated
// range bounds and a non-empty query. The sort key is not a filter.
func (s State) ActiveFilterCount() int {
	c := s.criteria
	n := len(c.GenreIDs) + len(c.CountryIDs) + len(c.PersonIDs)
	if c.Query != "" {
		n++
	}
	for _, set := range []bool{c.YearFrom != nil, c.YearTo != nil, c.RatingFrom != nil, c.RatingTo != nil} {
		if set {
			n++
		}
	}
	return n
}

// Request derives the page request for the current state.
func (s State) Request(size int) query.PageRequest {
	return query.PageRequest{
		Criteria: s.Criteria(),
		Sort:     s.sort,
		Page:     s.Page(),
		Size:     size,
	}
}

// TotalPages returns the number of pages needed for total items, at least 1.
func TotalPages(total, size int) int {
	if size < 1 || total <= 0 {
		return 1
	}
	return (total + size - 1) / size
}

func (s State) clone() State {
	return State{
		criteria: s.criteria.Clone(),
		sort:     s.sort,
		page:     s.page,
	}
}

func (s State) ids(d Dimension) []int {
	switch d {
	case Genre:
		return s.criteria.GenreIDs
	case Country:
		return s.criteria.CountryIDs
	case Person:
		return s.criteria.PersonIDs
	default:
		return nil
	}
}

func (s *State) setIDs(d Dimension, ids []int) {
	switch d {
	case Genre:
		s.criteria.GenreIDs = ids
	case Country:
		s.criteria.CountryIDs = ids
	case Person:
		s.criteria.PersonIDs = ids
	}
}

func indexOf(ids []int, id int) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
