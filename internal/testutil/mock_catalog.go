// Package testutil provides testing utilities for the movie catalog client.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Movie is a catalog movie as served by the mock.
type Movie struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	ReleaseYear *int     `json:"release_year"`
	Rating      *float64 `json:"rating"`
	Description *string  `json:"description,omitempty"`
	GenreIDs    []int    `json:"-"`
	CountryIDs  []int    `json:"-"`
	PersonIDs   []int    `json:"-"`
}

// Named is a genre, country or person reference row.
type Named struct {
	ID   int
	Name string
}

// MockCatalog is a configurable in-memory catalog API server for testing.
// It implements the listing endpoints with filtering, sorting and paging.
type MockCatalog struct {
	server *httptest.Server

	mu        sync.RWMutex
	movies    []Movie
	genres    []Named
	countries []Named
	persons   []Named
	handlers  map[string]func(w http.ResponseWriter, r *http.Request)

	// Tracking
	requests []string
}

// NewMockCatalog creates a new mock catalog server.
func NewMockCatalog() *MockCatalog {
	mock := &MockCatalog{
		handlers: make(map[string]func(w http.ResponseWriter, r *http.Request)),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.requests = append(mock.requests, r.URL.RequestURI())
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.Unlock()

		if exists {
			handler(w, r)
			return
		}

		mock.defaultHandler(w, r)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockCatalog) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockCatalog) Close() {
	m.server.Close()
}

// Reset clears the request log.
func (m *MockCatalog) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = nil
}

// SetHandler overrides the handler for a specific path.
func (m *MockCatalog) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// AddMovies appends movies to the dataset.
func (m *MockCatalog) AddMovies(movies ...Movie) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.movies = append(m.movies, movies...)
}

// AddGenres appends genres to the dataset.
func (m *MockCatalog) AddGenres(genres ...Named) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.genres = append(m.genres, genres...)
}

// AddCountries appends countries to the dataset.
func (m *MockCatalog) AddCountries(countries ...Named) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.countries = append(m.countries, countries...)
}

// AddPersons appends persons to the dataset.
func (m *MockCatalog) AddPersons(persons ...Named) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.persons = append(m.persons, persons...)
}

// Requests returns the request URIs received so far, in order.
func (m *MockCatalog) Requests() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.requests))
	copy(out, m.requests)
	return out
}

// RequestCount returns the number of requests received for path.
func (m *MockCatalog) RequestCount(path string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, uri := range m.requests {
		if strings.SplitN(uri, "?", 2)[0] == path {
			n++
		}
	}
	return n
}

func (m *MockCatalog) defaultHandler(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	switch {
	case path == "/api/movies":
		m.listMovies(w, r)
	case strings.HasPrefix(path, "/api/movies/"):
		m.movieDetails(w, strings.TrimPrefix(path, "/api/movies/"))
	case path == "/api/genres":
		m.listNamed(w, r, m.genres, "name")
	case path == "/api/countries":
		m.listNamed(w, r, m.countries, "name")
	case path == "/api/persons":
		m.listNamed(w, r, m.persons, "full_name")
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not Found"})
	}
}

func (m *MockCatalog) listMovies(w http.ResponseWriter, r *http.Request) {
	page, size, ok := parsePaging(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()

	m.mu.RLock()
	var matched []Movie
	for _, mv := range m.movies {
		if text := q.Get("q"); text != "" && !strings.Contains(strings.ToLower(mv.Title), strings.ToLower(text)) {
			continue
		}
		if !containsAny(mv.GenreIDs, q["genre_id"]) || !containsAny(mv.CountryIDs, q["country_id"]) || !containsAny(mv.PersonIDs, q["person_id"]) {
			continue
		}
		matched = append(matched, mv)
	}
	m.mu.RUnlock()

	sortMovies(matched, q.Get("sort"))

	items := make([]Movie, 0, size)
	for i := (page - 1) * size; i < len(matched) && len(items) < size; i++ {
		items = append(items, matched[i])
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"items": items,
		"page":  page,
		"size":  size,
		"total": len(matched),
	})
}

func (m *MockCatalog) movieDetails(w http.ResponseWriter, rawID string) {
	id, err := strconv.Atoi(rawID)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "invalid id"})
		return
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, mv := range m.movies {
		if mv.ID != id {
			continue
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"id":           mv.ID,
			"title":        mv.Title,
			"release_year": mv.ReleaseYear,
			"rating":       mv.Rating,
			"description":  mv.Description,
			"genres":       m.lookup(m.genres, mv.GenreIDs, "name"),
			"countries":    m.lookup(m.countries, mv.CountryIDs, "name"),
			"persons":      m.lookup(m.persons, mv.PersonIDs, "full_name"),
		})
		return
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Movie not found"})
}

func (m *MockCatalog) listNamed(w http.ResponseWriter, r *http.Request, rows []Named, labelKey string) {
	page, size, ok := parsePaging(w, r)
	if !ok {
		return
	}
	search := strings.ToLower(r.URL.Query().Get("search"))

	m.mu.RLock()
	var matched []Named
	for _, row := range rows {
		if search == "" || strings.Contains(strings.ToLower(row.Name), search) {
			matched = append(matched, row)
		}
	}
	m.mu.RUnlock()

	items := make([]map[string]any, 0, size)
	for i := (page - 1) * size; i < len(matched) && len(items) < size; i++ {
		items = append(items, map[string]any{"id": matched[i].ID, labelKey: matched[i].Name})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"items": items,
		"page":  page,
		"size":  size,
		"total": len(matched),
	})
}

func (m *MockCatalog) lookup(rows []Named, ids []int, labelKey string) []map[string]any {
	out := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		for _, row := range rows {
			if row.ID == id {
				out = append(out, map[string]any{"id": row.ID, labelKey: row.Name})
			}
		}
	}
	return out
}

// parsePaging applies the backend's paging defaults and bounds
// (page >= 1, 1 <= size <= 100) and answers 422 otherwise.
func parsePaging(w http.ResponseWriter, r *http.Request) (page, size int, ok bool) {
	page, size = 1, 20
	q := r.URL.Query()
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "page must be >= 1"})
			return 0, 0, false
		}
		page = n
	}
	if v := q.Get("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 100 {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "size must be between 1 and 100"})
			return 0, 0, false
		}
		size = n
	}
	return page, size, true
}

func containsAny(have []int, want []string) bool {
	if len(want) == 0 {
		return true
	}
	for _, w := range want {
		id, err := strconv.Atoi(w)
		if err != nil {
			continue
		}
		for _, h := range have {
			if h == id {
				return true
			}
		}
	}
	return false
}

func sortMovies(movies []Movie, token string) {
	if token == "" {
		token = "title"
	}
	desc := strings.HasPrefix(token, "-")
	field := strings.TrimPrefix(token, "-")

	less := func(a, b Movie) bool {
		switch field {
		case "rating":
			return deref(a.Rating) < deref(b.Rating)
		case "year":
			return derefInt(a.ReleaseYear) < derefInt(b.ReleaseYear)
		default:
			return a.Title < b.Title
		}
	}

	sort.SliceStable(movies, func(i, j int) bool {
		if desc {
			return less(movies[j], movies[i])
		}
		return less(movies[i], movies[j])
	})
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func derefInt(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		panic(fmt.Sprintf("testutil: encode response: %v", err))
	}
}

// NewMovies generates n movies with ids starting at firstID, all linked to
// personID (0 for none). Ratings descend with the index so "-rating" keeps
// generation order.
func NewMovies(firstID, n, personID int) []Movie {
	movies := make([]Movie, 0, n)
	for i := 0; i < n; i++ {
		year := 1950 + i%70
		rating := 10 - float64(i)/float64(n+1)
		mv := Movie{
			ID:          firstID + i,
			Title:       fmt.Sprintf("Movie %04d", firstID+i),
			ReleaseYear: &year,
			Rating:      &rating,
		}
		if personID != 0 {
			mv.PersonIDs = []int{personID}
		}
		movies = append(movies, mv)
	}
	return movies
}

// NewPersons generates n persons with ids starting at firstID.
func NewPersons(firstID, n int) []Named {
	persons := make([]Named, 0, n)
	for i := 0; i < n; i++ {
		persons = append(persons, Named{ID: firstID + i, Name: fmt.Sprintf("Person %d", firstID+i)})
	}
	return persons
}

// NewPageHandler returns a handler that serves fixed pages by number. Pages
// beyond len(pages) are served empty. Each page is a slice of arbitrary
// items.
func NewPageHandler(size, total int, pages ...[]any) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		items := []any{}
		if page >= 1 && page <= len(pages) {
			items = pages[page-1]
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"items": items,
			"page":  page,
			"size":  size,
			"total": total,
		})
	}
}

// NewErrorHandler returns a handler that always answers status with body.
func NewErrorHandler(status int, body string) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}
}
