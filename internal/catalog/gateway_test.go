package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"reeldiary-server/pkg/cache"
	"reeldiary-server/pkg/tmdb"
)

// fakeAPI serves canned pages and records which pages were requested.
type fakeAPI struct {
	mu         sync.Mutex
	totalPages int
	failPage   int // page number that errors; 0 = none
	pageCalls  []int
	details    map[int64]*tmdb.MovieDetails
	detailErr  error
	detailHits int
	providers  map[int64]map[string]tmdb.RegionProviders
	lastQuery  tmdb.DiscoverQuery
}

func (f *fakeAPI) page(page int) (*tmdb.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pageCalls = append(f.pageCalls, page)
	if page == f.failPage {
		return nil, &tmdb.StatusError{Path: "/x", StatusCode: 500}
	}
	return &tmdb.Page{
		Page:       page,
		TotalPages: f.totalPages,
		Results:    []tmdb.Result{{ID: int64(page*10 + 1)}, {ID: int64(page*10 + 2)}},
	}, nil
}

func (f *fakeAPI) MovieRecommendations(_ context.Context, _ int64, page int) (*tmdb.Page, error) {
	return f.page(page)
}

func (f *fakeAPI) Discover(_ context.Context, q tmdb.DiscoverQuery, page int) (*tmdb.Page, error) {
	f.mu.Lock()
	f.lastQuery = q
	f.mu.Unlock()
	return f.page(page)
}

func (f *fakeAPI) MovieDetails(_ context.Context, id int64) (*tmdb.MovieDetails, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detailHits++
	if f.detailErr != nil {
		return nil, f.detailErr
	}
	m, ok := f.details[id]
	if !ok {
		return nil, tmdb.ErrNotFound
	}
	return m, nil
}

func (f *fakeAPI) WatchProviders(_ context.Context, id int64) (map[string]tmdb.RegionProviders, error) {
	p, ok := f.providers[id]
	if !ok {
		return nil, errors.New("boom")
	}
	return p, nil
}

func newGateway(api API, c cache.Cache) *Gateway {
	cfg := DefaultConfig()
	cfg.Breaker.Name = "test-" + time.Now().Format("150405.000000000")
	return New(api, c, cfg, zerolog.Nop())
}

func ids(rs []tmdb.Result) []int64 {
	out := make([]int64, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.ID)
	}
	return out
}

func TestFetchPagedStopsAtMaxPages(t *testing.T) {
	api := &fakeAPI{totalPages: 10}
	g := newGateway(api, nil)

	got := g.SimilarMovies(context.Background(), 1)
	if len(got) != 6 {
		t.Fatalf("got %d results, want 6 (3 pages x 2)", len(got))
	}
	if len(api.pageCalls) != 3 {
		t.Fatalf("requested pages %v, want exactly 3", api.pageCalls)
	}
}

func TestFetchPagedStopsAtTotalPages(t *testing.T) {
	api := &fakeAPI{totalPages: 1}
	g := newGateway(api, nil)

	got := g.DiscoverByGenre(context.Background(), 878)
	if len(got) != 2 || len(api.pageCalls) != 1 {
		t.Fatalf("results=%v calls=%v, want one page", ids(got), api.pageCalls)
	}
	if api.lastQuery.GenreID != 878 || api.lastQuery.MinVoteCount != 1000 || api.lastQuery.MinVoteAverage != 6.5 {
		t.Fatalf("discover query = %+v", api.lastQuery)
	}
}

func TestFetchPagedKeepsPartialResults(t *testing.T) {
	api := &fakeAPI{totalPages: 5, failPage: 2}
	g := newGateway(api, nil)

	got := g.DiscoverByDirector(context.Background(), 42)
	want := []int64{11, 12}
	if gotIDs := ids(got); len(gotIDs) != 2 || gotIDs[0] != want[0] || gotIDs[1] != want[1] {
		t.Fatalf("got %v, want %v", gotIDs, want)
	}
	if len(api.pageCalls) != 2 {
		t.Fatalf("pagination should stop after the failed page, calls=%v", api.pageCalls)
	}
	if api.lastQuery.CrewID != 42 {
		t.Fatalf("crew id = %d", api.lastQuery.CrewID)
	}
}

func TestFetchPagedFirstPageFailure(t *testing.T) {
	api := &fakeAPI{totalPages: 5, failPage: 1}
	g := newGateway(api, nil)
	if got := g.SimilarMovies(context.Background(), 1); len(got) != 0 {
		t.Fatalf("expected empty result, got %v", ids(got))
	}
}

func TestMovieDetailsAbsent(t *testing.T) {
	api := &fakeAPI{details: map[int64]*tmdb.MovieDetails{}}
	g := newGateway(api, nil)
	if m := g.MovieDetails(context.Background(), 99); m != nil {
		t.Fatalf("expected nil details, got %+v", m)
	}
}

func TestMovieDetailsCached(t *testing.T) {
	api := &fakeAPI{details: map[int64]*tmdb.MovieDetails{
		7: {ID: 7, Title: "Seven", Overview: "x"},
	}}
	g := newGateway(api, cache.NewInMemory())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		m := g.MovieDetails(ctx, 7)
		if m == nil || m.Title != "Seven" {
			t.Fatalf("call %d: got %+v", i, m)
		}
	}
	if api.detailHits != 1 {
		t.Fatalf("upstream hit %d times, want 1", api.detailHits)
	}
}

func TestStreamingProvidersRegionAndFlatrateOnly(t *testing.T) {
	api := &fakeAPI{providers: map[int64]map[string]tmdb.RegionProviders{
		1: {"US": {Flatrate: []tmdb.Provider{{ProviderID: 8, ProviderName: "Netflix"}}}},
		2: {"US": {Rent: []tmdb.Provider{{ProviderID: 2}}}, "GB": {Flatrate: []tmdb.Provider{{ProviderID: 9}}}},
	}}
	g := newGateway(api, nil)
	ctx := context.Background()

	if got := g.StreamingProviders(ctx, 1); len(got) != 1 {
		t.Fatalf("movie 1 providers = %+v", got)
	}
	if got := g.StreamingProviders(ctx, 2); len(got) != 0 {
		t.Fatalf("rent-only / other-region availability should not count, got %+v", got)
	}
	if got := g.StreamingProviders(ctx, 3); got != nil {
		t.Fatalf("failed lookup should be empty, got %+v", got)
	}
}

func TestBreakerOpensAndDegradesToEmpty(t *testing.T) {
	api := &fakeAPI{detailErr: &tmdb.StatusError{Path: "/movie", StatusCode: 503}}
	g := newGateway(api, nil)
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		if m := g.MovieDetails(ctx, int64(i)); m != nil {
			t.Fatalf("expected nil details while upstream fails")
		}
	}
	if api.detailHits >= 20 {
		t.Fatalf("breaker should have short-circuited some calls, upstream saw %d", api.detailHits)
	}
}

func TestNotFoundDoesNotTripBreaker(t *testing.T) {
	api := &fakeAPI{details: map[int64]*tmdb.MovieDetails{}}
	g := newGateway(api, nil)
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		_ = g.MovieDetails(ctx, int64(i))
	}
	if api.detailHits != 20 {
		t.Fatalf("not-found answers must not open the breaker, upstream saw %d of 20", api.detailHits)
	}
}

func TestBreakerClassifiesErrors(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, true},
		{tmdb.ErrNotFound, true},
		{tmdb.ErrMalformed, true},
		{context.Canceled, true},
		{fmt.Errorf("movie details: %w", context.Canceled), true},
		{&tmdb.StatusError{Path: "/movie/1", StatusCode: 401}, true},
		{&tmdb.StatusError{Path: "/movie/1", StatusCode: 422}, true},
		{&tmdb.StatusError{Path: "/movie/1", StatusCode: 429}, false},
		{&tmdb.StatusError{Path: "/movie/1", StatusCode: 502}, false},
		{context.DeadlineExceeded, false},
		{errors.New("connection reset"), false},
	}
	for _, c := range cases {
		if got := countsAsSuccess(c.err); got != c.want {
			t.Errorf("countsAsSuccess(%v) = %v, want %v", c.err, got, c.want)
		}
	}
}

func TestClientErrorsDoNotTripBreaker(t *testing.T) {
	api := &fakeAPI{detailErr: &tmdb.StatusError{Path: "/movie", StatusCode: 400}}
	g := newGateway(api, nil)
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		_ = g.MovieDetails(ctx, int64(i))
	}
	if api.detailHits != 20 {
		t.Fatalf("4xx answers must not open the breaker, upstream saw %d of 20", api.detailHits)
	}
}
