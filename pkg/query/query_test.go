package query

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }
func decimalPtr(v float64) *Decimal { d := Decimal(v); return &d }

func TestEncode_EmptyRequest(t *testing.T) {
	values, err := Encode(PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, values)

	values, err = Encode(PageRequest{Criteria: MovieCriteria{}})
	require.NoError(t, err)
	assert.Empty(t, values.Encode())
}

func TestEncode_OmitsEmptyFields(t *testing.T) {
	req := PageRequest{
		Criteria: MovieCriteria{
			Query:    "",
			GenreIDs: []int{},
		},
		Page: 1,
		Size: 10,
	}

	values, err := Encode(req)
	require.NoError(t, err)

	for _, key := range []string{"q", "genre_id", "country_id", "person_id", "year_from", "year_to", "rating_from", "rating_to", "sort"} {
		_, ok := values[key]
		assert.False(t, ok, "key %q should be absent", key)
	}
	assert.Equal(t, "1", values.Get(ParamPage))
	assert.Equal(t, "10", values.Get(ParamSize))
}

func TestEncode_RepeatedKeysPreserveOrder(t *testing.T) {
	req := PageRequest{
		Criteria: MovieCriteria{
			GenreIDs:   []int{7, 2, 11},
			CountryIDs: []int{3},
			PersonIDs:  []int{42, 1},
		},
	}

	values, err := Encode(req)
	require.NoError(t, err)

	assert.Equal(t, []string{"7", "2", "11"}, values["genre_id"])
	assert.Equal(t, []string{"3"}, values["country_id"])
	assert.Equal(t, []string{"42", "1"}, values["person_id"])
}

func TestEncode_Scalars(t *testing.T) {
	req := PageRequest{
		Criteria: MovieCriteria{
			Query:      "matrix",
			YearFrom:   intPtr(1999),
			YearTo:     intPtr(12000),
			RatingFrom: decimalPtr(7.5),
			RatingTo:   decimalPtr(9),
		},
		Sort: SortYearDesc,
		Page: 3,
		Size: 100,
	}

	values, err := Encode(req)
	require.NoError(t, err)

	want := url.Values{
		"q":           {"matrix"},
		"year_from":   {"1999"},
		"year_to":     {"12000"},
		"rating_from": {"7.5"},
		"rating_to":   {"9"},
		"sort":        {"-year"},
		"page":        {"3"},
		"size":        {"100"},
	}
	assert.Equal(t, want, values)
}

func TestEncode_DecimalsArePlain(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{1e-7, "0.0000001"},
		{1e21, "1000000000000000000000"},
		{8.25, "8.25"},
		{10, "10"},
	}

	for _, tt := range tests {
		values, err := Encode(PageRequest{Criteria: MovieCriteria{RatingFrom: decimalPtr(tt.value), RatingTo: decimalPtr(tt.value)}})
		require.NoError(t, err)
		assert.Equal(t, []string{tt.want}, values["rating_from"], tt.want)
		assert.Equal(t, []string{tt.want}, values["rating_to"], tt.want)
	}
}

func TestEncode_ZeroBoundIsPresent(t *testing.T) {
	values, err := Encode(PageRequest{Criteria: MovieCriteria{RatingFrom: decimalPtr(0)}})
	require.NoError(t, err)
	assert.Equal(t, []string{"0"}, values["rating_from"])
}

func TestEncode_OutOfOrderRangePassesThrough(t *testing.T) {
	values, err := Encode(PageRequest{Criteria: MovieCriteria{YearFrom: intPtr(2020), YearTo: intPtr(1990)}})
	require.NoError(t, err)
	assert.Equal(t, "2020", values.Get("year_from"))
	assert.Equal(t, "1990", values.Get("year_to"))
}

func TestEncode_ReferenceCriteria(t *testing.T) {
	values, err := Encode(PageRequest{Criteria: ReferenceCriteria{Search: "nolan"}, Page: 2, Size: 50})
	require.NoError(t, err)
	assert.Equal(t, "search=nolan&page=2&size=50", canonical(values, "search", "page", "size"))

	values, err = Encode(PageRequest{Criteria: ReferenceCriteria{}, Page: 1, Size: 100})
	require.NoError(t, err)
	_, ok := values["search"]
	assert.False(t, ok)
}

func TestMovieCriteria_Clone(t *testing.T) {
	orig := MovieCriteria{GenreIDs: []int{1, 2}, YearFrom: intPtr(2000)}
	cp := orig.Clone()

	cp.GenreIDs[0] = 99
	*cp.YearFrom = 1900

	assert.Equal(t, []int{1, 2}, orig.GenreIDs)
	assert.Equal(t, 2000, *orig.YearFrom)
}

func TestParseSort(t *testing.T) {
	tests := []struct {
		in      string
		want    Sort
		wantErr bool
	}{
		{in: "rating", want: SortRatingAsc},
		{in: "-rating", want: SortRatingDesc},
		{in: " -title ", want: SortTitleDesc},
		{in: "year", want: SortYearAsc},
		{in: "", wantErr: true},
		{in: "--year", wantErr: true},
		{in: "popularity", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSort(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSort_FieldAndDirection(t *testing.T) {
	assert.Equal(t, "rating", SortRatingDesc.Field())
	assert.True(t, SortRatingDesc.Descending())
	assert.False(t, SortTitleAsc.Descending())
	assert.Equal(t, SortTitleDesc, SortTitleAsc.Reverse())
	assert.Equal(t, SortYearAsc, SortYearDesc.Reverse())
}

// canonical joins the given keys in order, for readable assertions.
func canonical(values url.Values, keys ...string) string {
	out := ""
	for i, k := range keys {
		if i > 0 {
			out += "&"
		}
		out += k + "=" + values.Get(k)
	}
	return out
}
