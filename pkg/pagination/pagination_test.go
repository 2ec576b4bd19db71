package pagination

import (
	"context"
	"errors"
	"testing"

	"github.com/Sternrassler/movie-catalog-client/pkg/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFetcher serves generated pages and records every requested page.
type fakeFetcher struct {
	pageSizes []int // item count per page; pages beyond are empty
	full      bool  // serve full pages forever
	failOn    int   // page number that fails (0 = never)
	total     int
	requested []int
}

func (f *fakeFetcher) FetchPage(ctx context.Context, page, size int) (*client.Page[int], error) {
	f.requested = append(f.requested, page)

	if f.failOn == page {
		return nil, &client.RequestFailedError{Status: 500, Body: "boom"}
	}

	n := 0
	switch {
	case f.full:
		n = size
	case page <= len(f.pageSizes):
		n = f.pageSizes[page-1]
	}

	items := make([]int, n)
	for i := range items {
		items[i] = (page-1)*size + i
	}
	return &client.Page[int]{Items: items, Page: page, Size: size, Total: f.total}, nil
}

func seq(from, to int) []int {
	out := make([]int, 0, to-from)
	for i := from; i < to; i++ {
		out = append(out, i)
	}
	return out
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 100, cfg.PageSize)
	assert.Equal(t, 50, cfg.MaxPages)
	assert.NoError(t, cfg.Validate())
}

func TestCollectAll_StopsOnShortPage(t *testing.T) {
	f := &fakeFetcher{pageSizes: []int{10, 10, 10, 4}, total: 34}

	result, err := CollectAll[int](context.Background(), f, Config{PageSize: 10, MaxPages: 50})
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3, 4}, f.requested)
	assert.Equal(t, seq(0, 34), result.Items)
	assert.Equal(t, 4, result.Pages)
	assert.Equal(t, 34, result.Total)
	assert.Equal(t, StopShortPage, result.Reason)
	assert.True(t, result.Complete())
}

func TestCollectAll_ExactMultipleFetchesTrailingEmptyPage(t *testing.T) {
	f := &fakeFetcher{pageSizes: []int{10, 10}, total: 20}

	result, err := CollectAll[int](context.Background(), f, Config{PageSize: 10, MaxPages: 50})
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3}, f.requested)
	assert.Len(t, result.Items, 20)
	assert.True(t, result.Complete())
}

func TestCollectAll_EmptyFirstPage(t *testing.T) {
	f := &fakeFetcher{}

	result, err := CollectAll[int](context.Background(), f, DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, []int{1}, f.requested)
	assert.Empty(t, result.Items)
	assert.True(t, result.Complete())
}

func TestCollectAll_CapNeverExceeded(t *testing.T) {
	f := &fakeFetcher{full: true, total: 1_000_000}

	result, err := CollectAll[int](context.Background(), f, Config{PageSize: 7, MaxPages: 5})
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3, 4, 5}, f.requested, "no 6th fetch")
	assert.Len(t, result.Items, 35)
	assert.Equal(t, StopMaxPages, result.Reason)
	assert.False(t, result.Complete())
}

func TestCollectAll_ShortPageWinsOverCap(t *testing.T) {
	f := &fakeFetcher{pageSizes: []int{10, 10, 3}}

	result, err := CollectAll[int](context.Background(), f, Config{PageSize: 10, MaxPages: 3})
	require.NoError(t, err)

	assert.Equal(t, StopShortPage, result.Reason)
	assert.Len(t, result.Items, 23)
}

func TestCollectAll_FailureDiscardsPartialResult(t *testing.T) {
	f := &fakeFetcher{full: true, failOn: 3}

	result, err := CollectAll[int](context.Background(), f, Config{PageSize: 10, MaxPages: 50})
	require.Error(t, err)
	assert.Nil(t, result)

	var reqErr *client.RequestFailedError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, 500, reqErr.Status)
	assert.Equal(t, []int{1, 2, 3}, f.requested, "no retry, no further pages")
	assert.Contains(t, err.Error(), "fetch page 3")
}

func TestCollectAll_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "zero page size", cfg: Config{PageSize: 0, MaxPages: 5}},
		{name: "negative max pages", cfg: Config{PageSize: 10, MaxPages: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeFetcher{full: true}
			_, err := CollectAll[int](context.Background(), f, tt.cfg)
			assert.ErrorIs(t, err, client.ErrInvalidArgument)
			assert.Empty(t, f.requested)
		})
	}
}

// 137 movies at 100 per page: two fetches, order preserved.
func TestCollectAll_PersonScenario(t *testing.T) {
	f := &fakeFetcher{pageSizes: []int{100, 37}, total: 137}

	result, err := CollectAll[int](context.Background(), f, DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2}, f.requested)
	assert.Equal(t, seq(0, 137), result.Items)
}

func TestIterator_YieldsPagesLazily(t *testing.T) {
	f := &fakeFetcher{pageSizes: []int{2, 2, 1}}
	it := NewIterator[int](f, Config{PageSize: 2, MaxPages: 10})
	ctx := context.Background()

	assert.Equal(t, StopNone, it.Reason())
	assert.Empty(t, f.requested)

	require.True(t, it.Next(ctx))
	assert.Equal(t, 1, it.Page().Page)
	assert.Equal(t, []int{1}, f.requested)

	require.True(t, it.Next(ctx))
	assert.Equal(t, 2, it.Page().Page)
	assert.Equal(t, StopNone, it.Reason())

	require.True(t, it.Next(ctx), "the short page itself is yielded")
	assert.Equal(t, []int{4}, it.Page().Items)
	assert.Equal(t, StopShortPage, it.Reason())

	assert.False(t, it.Next(ctx))
	assert.Nil(t, it.Page())
	assert.NoError(t, it.Err())
	assert.Equal(t, 3, it.Pages())
	assert.Equal(t, []int{1, 2, 3}, f.requested)
}

func TestIterator_Stop(t *testing.T) {
	f := &fakeFetcher{full: true}
	it := NewIterator[int](f, Config{PageSize: 5, MaxPages: 10})

	require.True(t, it.Next(context.Background()))
	it.Stop()

	assert.False(t, it.Next(context.Background()))
	assert.Equal(t, StopAborted, it.Reason())
	assert.Equal(t, []int{1}, f.requested)

	it.Stop()
	assert.Equal(t, StopAborted, it.Reason())
}

func TestIterator_Failure(t *testing.T) {
	f := &fakeFetcher{failOn: 1}
	it := NewIterator[int](f, DefaultConfig())

	assert.False(t, it.Next(context.Background()))
	assert.Equal(t, StopFailed, it.Reason())
	assert.Error(t, it.Err())
	assert.Zero(t, it.Pages())
}

func TestFetchFunc(t *testing.T) {
	var gotPage, gotSize int
	fn := FetchFunc[string](func(ctx context.Context, page, size int) (*client.Page[string], error) {
		gotPage, gotSize = page, size
		return &client.Page[string]{Items: []string{"a"}, Page: page, Size: size, Total: 1}, nil
	})

	result, err := CollectAll[string](context.Background(), fn, Config{PageSize: 25, MaxPages: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, result.Items)
	assert.Equal(t, 1, gotPage)
	assert.Equal(t, 25, gotSize)
}

func TestStopReason_String(t *testing.T) {
	assert.Equal(t, "none", StopNone.String())
	assert.Equal(t, "short_page", StopShortPage.String())
	assert.Equal(t, "max_pages", StopMaxPages.String())
	assert.Equal(t, "failed", StopFailed.String())
	assert.Equal(t, "aborted", StopAborted.String())
	assert.Equal(t, "StopReason(42)", StopReason(42).String())
}
