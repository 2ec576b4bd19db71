package session

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/Sternrassler/movie-catalog-client/internal/testutil"
	"github.com/Sternrassler/movie-catalog-client/pkg/catalog"
	"github.com/Sternrassler/movie-catalog-client/pkg/client"
	"github.com/Sternrassler/movie-catalog-client/pkg/filter"
	"github.com/Sternrassler/movie-catalog-client/pkg/pagination"
	"github.com/Sternrassler/movie-catalog-client/pkg/query"
	"github.com/Sternrassler/movie-catalog-client/pkg/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingSequencer struct{}

func (failingSequencer) Next(ctx context.Context) (uint64, error) {
	return 0, errors.New("sequencer down")
}

func (failingSequencer) Latest(ctx context.Context) (uint64, error) {
	return 0, errors.New("sequencer down")
}

// checkFailingSequencer issues tokens but cannot report the latest one.
type checkFailingSequencer struct {
	*token.Local
}

func (checkFailingSequencer) Latest(ctx context.Context) (uint64, error) {
	return 0, errors.New("sequencer down")
}

func newTestSession(t *testing.T, mock *testutil.MockCatalog, guard *token.Guard) *Session {
	t.Helper()

	c, err := client.New(client.DefaultConfig(mock.URL()))
	require.NoError(t, err)
	cat, err := catalog.New(c, pagination.DefaultConfig())
	require.NoError(t, err)

	return New(cat, guard, 0)
}

func TestUpdate_DoesNotFetch(t *testing.T) {
	mock := testutil.NewMockCatalog()
	defer mock.Close()

	s := newTestSession(t, mock, nil)
	assert.Equal(t, DefaultPageSize, s.PageSize())
	assert.Equal(t, filter.New(), s.State())

	st := s.Update(func(st filter.State) filter.State {
		return st.ToggleCategory(filter.Genre, 3).SetPage(2)
	})

	assert.Equal(t, []int{3}, st.Selected(filter.Genre))
	assert.Equal(t, st, s.State())
	assert.Empty(t, mock.Requests())
}

func TestApply(t *testing.T) {
	mock := testutil.NewMockCatalog()
	defer mock.Close()
	mock.AddMovies(testutil.NewMovies(1, 25, 0)...)

	s := newTestSession(t, mock, nil)
	s.Update(func(st filter.State) filter.State {
		return st.SetSort(query.SortTitleAsc).SetPage(3)
	})

	res, err := s.Apply(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, res.State.Page())
	assert.Equal(t, 25, res.Page.Total)
	assert.Len(t, res.Page.Items, 5)
	assert.Equal(t, 3, res.TotalPages)
	assert.Equal(t, uint64(1), res.Token)
	assert.Equal(t, []string{"/api/movies?page=3&size=10&sort=title"}, mock.Requests())
}

func TestApply_EmptyListingHasOnePage(t *testing.T) {
	mock := testutil.NewMockCatalog()
	defer mock.Close()

	s := newTestSession(t, mock, nil)

	res, err := s.Apply(context.Background())
	require.NoError(t, err)
	assert.Empty(t, res.Page.Items)
	assert.Equal(t, 1, res.TotalPages)
}

func TestApply_DiscardsStaleResponse(t *testing.T) {
	mock := testutil.NewMockCatalog()
	defer mock.Close()

	started := make(chan struct{})
	release := make(chan struct{})
	pages := testutil.NewPageHandler(10, 0)
	mock.SetHandler(catalog.ResourceMovies, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "1" {
			close(started)
			<-release
		}
		pages(w, r)
	})

	s := newTestSession(t, mock, nil)

	type outcome struct {
		res *Result
		err error
	}
	first := make(chan outcome, 1)
	go func() {
		res, err := s.Apply(context.Background())
		first <- outcome{res, err}
	}()

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("first request never reached the server")
	}

	s.Update(func(st filter.State) filter.State { return st.SetPage(2) })
	second, err := s.Apply(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, second.Page.Page)

	close(release)

	select {
	case out := <-first:
		assert.ErrorIs(t, out.err, ErrStale)
		assert.Nil(t, out.res)
	case <-time.After(5 * time.Second):
		t.Fatal("first Apply did not return")
	}
}

func TestApply_RequestError(t *testing.T) {
	mock := testutil.NewMockCatalog()
	defer mock.Close()
	mock.SetHandler(catalog.ResourceMovies, testutil.NewErrorHandler(http.StatusBadGateway, "bad gateway"))

	s := newTestSession(t, mock, nil)

	_, err := s.Apply(context.Background())
	var reqErr *client.RequestFailedError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, http.StatusBadGateway, reqErr.Status)
}

func TestApply_SequencerError(t *testing.T) {
	mock := testutil.NewMockCatalog()
	defer mock.Close()

	s := newTestSession(t, mock, token.NewGuard(failingSequencer{}))

	_, err := s.Apply(context.Background())
	require.Error(t, err)
	assert.Empty(t, mock.Requests())
}

func TestApply_TokenCheckError(t *testing.T) {
	mock := testutil.NewMockCatalog()
	defer mock.Close()

	s := newTestSession(t, mock, token.NewGuard(checkFailingSequencer{token.NewLocal()}))

	res, err := s.Apply(context.Background())
	require.Error(t, err)
	assert.Nil(t, res)
	assert.Len(t, mock.Requests(), 1)
}

func TestApply_SharedSequenceSupersedes(t *testing.T) {
	mock := testutil.NewMockCatalog()
	defer mock.Close()

	seq := token.NewLocal()
	other := token.NewGuard(seq)
	pages := testutil.NewPageHandler(10, 0)
	mock.SetHandler(catalog.ResourceMovies, func(w http.ResponseWriter, r *http.Request) {
		// another client sharing the sequence issues a request meanwhile
		if _, err := other.Issue(r.Context()); err != nil {
			t.Errorf("Issue() error: %v", err)
		}
		pages(w, r)
	})

	s := newTestSession(t, mock, token.NewGuard(seq))

	res, err := s.Apply(context.Background())
	assert.ErrorIs(t, err, ErrStale)
	assert.Nil(t, res)
}

func TestNew_NilCatalogPanics(t *testing.T) {
	assert.Panics(t, func() { New(nil, nil, 0) })
}
