// Package query encodes catalog listing requests into canonical URL query
// parameters.
//
// List-valued criteria become repeated keys (genre_id=1&genre_id=2) in input
// order. Absent pointers, empty strings and empty lists are omitted, so a
// request without any active field encodes to an empty query.
package query

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/go-querystring/query"
)

// ErrNotStruct is returned when criteria cannot be reflected into URL values.
var ErrNotStruct = errors.New("criteria must be a struct")

// Query parameter names shared by every listing endpoint.
const (
	ParamPage = "page"
	ParamSize = "size"
	ParamSort = "sort"
)

// Criteria is implemented by the filter structs accepted in a PageRequest.
// Field encoding is driven by `url` struct tags.
type Criteria interface {
	criteria()
}

// MovieCriteria filters the movie listing endpoint.
type MovieCriteria struct {
	Query      string   `url:"q,omitempty"`
	GenreIDs   []int    `url:"genre_id,omitempty"`
	CountryIDs []int    `url:"country_id,omitempty"`
	PersonIDs  []int    `url:"person_id,omitempty"`
	YearFrom   *int     `url:"year_from,omitempty"`
	YearTo     *int     `url:"year_to,omitempty"`
	RatingFrom *Decimal `url:"rating_from,omitempty"`
	RatingTo   *Decimal `url:"rating_to,omitempty"`
}

// Decimal is a fractional bound written in plain notation with a '.'
// separator, never in exponent form.
type Decimal float64

// EncodeValues implements query.Encoder.
func (d Decimal) EncodeValues(key string, v *url.Values) error {
	v.Add(key, strconv.FormatFloat(float64(d), 'f', -1, 64))
	return nil
}

func (MovieCriteria) criteria() {}

// Clone returns a deep copy so callers can derive new criteria without
// aliasing the receiver's slices or bounds.
func (c MovieCriteria) Clone() MovieCriteria {
	out := MovieCriteria{
		Query:      c.Query,
		GenreIDs:   cloneInts(c.GenreIDs),
		CountryIDs: cloneInts(c.CountryIDs),
		PersonIDs:  cloneInts(c.PersonIDs),
	}
	if c.YearFrom != nil {
		v := *c.YearFrom
		out.YearFrom = &v
	}
	if c.YearTo != nil {
		v := *c.YearTo
		out.YearTo = &v
	}
	if c.RatingFrom != nil {
		v := *c.RatingFrom
		out.RatingFrom = &v
	}
	if c.RatingTo != nil {
		v := *c.RatingTo
		out.RatingTo = &v
	}
	return out
}

// ReferenceCriteria filters the genre, country and person listings.
type ReferenceCriteria struct {
	Search string `url:"search,omitempty"`
}

func (ReferenceCriteria) criteria() {}

// PageRequest is one page of a filtered, sorted listing.
type PageRequest struct {
	Criteria Criteria
	Sort     Sort
	Page     int
	Size     int
}

// WithPage returns a copy of the request targeting another page.
func (r PageRequest) WithPage(page int) PageRequest {
	r.Page = page
	return r
}

// Encode converts a request into URL values. Pagination fields and sort are
// plain scalars and are omitted when zero.
func Encode(req PageRequest) (url.Values, error) {
	values := url.Values{}

	if req.Criteria != nil {
		encoded, err := query.Values(req.Criteria)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNotStruct, err)
		}
		values = encoded
	}

	if req.Sort != "" {
		values.Set(ParamSort, string(req.Sort))
	}
	if req.Page != 0 {
		values.Set(ParamPage, strconv.Itoa(req.Page))
	}
	if req.Size != 0 {
		values.Set(ParamSize, strconv.Itoa(req.Size))
	}

	return values, nil
}

func cloneInts(in []int) []int {
	if len(in) == 0 {
		return nil
	}
	out := make([]int, len(in))
	copy(out, in)
	return out
}
