package query

import (
	"fmt"
	"strings"
)

// Sort is a signed sort token: the bare field name sorts ascending, a
// leading "-" sorts descending.
type Sort string

// Supported sort tokens.
const (
	SortRatingAsc  Sort = "rating"
	SortRatingDesc Sort = "-rating"
	SortYearAsc    Sort = "year"
	SortYearDesc   Sort = "-year"
	SortTitleAsc   Sort = "title"
	SortTitleDesc  Sort = "-title"
)

// DefaultSort is the ordering a fresh browse session starts with.
const DefaultSort = SortRatingDesc

var validSorts = map[Sort]bool{
	SortRatingAsc:  true,
	SortRatingDesc: true,
	SortYearAsc:    true,
	SortYearDesc:   true,
	SortTitleAsc:   true,
	SortTitleDesc:  true,
}

// ParseSort validates a sort token.
func ParseSort(s string) (Sort, error) {
	sort := Sort(strings.TrimSpace(s))
	if !sort.Valid() {
		return "", fmt.Errorf("unknown sort %q (want one of rating, -rating, year, -year, title, -title)", s)
	}
	return sort, nil
}

// Valid reports whether s is one of the supported tokens.
func (s Sort) Valid() bool {
	return validSorts[s]
}

// Field returns the base field name without the direction prefix.
func (s Sort) Field() string {
	return strings.TrimPrefix(string(s), "-")
}

// Descending reports whether the token carries the descending prefix.
func (s Sort) Descending() bool {
	return strings.HasPrefix(string(s), "-")
}

// Reverse flips the direction of the token.
func (s Sort) Reverse() Sort {
	if s.Descending() {
		return Sort(s.Field())
	}
	return Sort("-" + s.Field())
}
