package recommend

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"reeldiary-server/internal/model"
	"reeldiary-server/pkg/tmdb"
)

// fakeCatalog is an in-memory Catalog. Movies without an entry in streaming are not available.
type fakeCatalog struct {
	mu        sync.Mutex
	details   map[int64]*tmdb.MovieDetails
	streaming map[int64]bool
	similar   map[int64][]int64
	genre     map[int64][]int64
	director  map[int64][]int64
	panicOn   int64 // SimilarMovies panics for this anchor
	calls     map[string]int
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		details:   map[int64]*tmdb.MovieDetails{},
		streaming: map[int64]bool{},
		similar:   map[int64][]int64{},
		genre:     map[int64][]int64{},
		director:  map[int64][]int64{},
		calls:     map[string]int{},
	}
}

func (f *fakeCatalog) hit(name string) {
	f.mu.Lock()
	f.calls[name]++
	f.mu.Unlock()
}

func (f *fakeCatalog) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

// movie registers a fully valid, streamable candidate.
func (f *fakeCatalog) movie(id int64, title string, genres []tmdb.Genre, directors ...tmdb.CrewMember) {
	f.details[id] = &tmdb.MovieDetails{
		ID:       id,
		Title:    title,
		Overview: title + " overview",
		Genres:   genres,
		Credits:  tmdb.Credits{Crew: directors},
	}
	f.streaming[id] = true
}

func results(ids []int64) []tmdb.Result {
	out := make([]tmdb.Result, 0, len(ids))
	for _, id := range ids {
		out = append(out, tmdb.Result{ID: id})
	}
	return out
}

func (f *fakeCatalog) SimilarMovies(_ context.Context, movieID int64) []tmdb.Result {
	f.hit("similar")
	if f.panicOn != 0 && movieID == f.panicOn {
		panic("catalog exploded")
	}
	return results(f.similar[movieID])
}

func (f *fakeCatalog) DiscoverByGenre(_ context.Context, genreID int64) []tmdb.Result {
	f.hit("genre")
	return results(f.genre[genreID])
}

func (f *fakeCatalog) DiscoverByDirector(_ context.Context, personID int64) []tmdb.Result {
	f.hit("director")
	return results(f.director[personID])
}

func (f *fakeCatalog) MovieDetails(_ context.Context, id int64) *tmdb.MovieDetails {
	f.hit("details")
	return f.details[id]
}

func (f *fakeCatalog) StreamingProviders(_ context.Context, id int64) []tmdb.Provider {
	f.hit("providers")
	if f.streaming[id] {
		return []tmdb.Provider{{ProviderID: 8, ProviderName: "Netflix"}}
	}
	return nil
}

// fakeStore keeps per-user logs and recommendation sets in memory.
type fakeStore struct {
	mu          sync.Mutex
	users       []uuid.UUID
	logs        map[uuid.UUID][]model.ViewingLog
	history     map[uuid.UUID][]int64
	recs        map[uuid.UUID][]model.Recommendation
	failUsers   error
	failReplace map[uuid.UUID]error
	replaces    int
	deletes     int
	block       chan struct{}
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		logs:        map[uuid.UUID][]model.ViewingLog{},
		history:     map[uuid.UUID][]int64{},
		recs:        map[uuid.UUID][]model.Recommendation{},
		failReplace: map[uuid.UUID]error{},
	}
}

// addUser registers a user with logs given most recent first as (movie, rating) pairs.
func (s *fakeStore) addUser(pairs ...[2]float64) uuid.UUID {
	id := uuid.New()
	s.users = append(s.users, id)
	now := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	for i, p := range pairs {
		mid := int64(p[0])
		s.logs[id] = append(s.logs[id], model.ViewingLog{
			ID:          int64(i + 1),
			UserID:      id,
			MovieID:     mid,
			Rating:      p[1],
			WatchedDate: now.AddDate(0, 0, -i),
		})
		s.history[id] = append(s.history[id], mid)
	}
	return id
}

func (s *fakeStore) ListUserIDs(context.Context) ([]uuid.UUID, error) {
	if s.block != nil {
		<-s.block
	}
	if s.failUsers != nil {
		return nil, s.failUsers
	}
	return append([]uuid.UUID(nil), s.users...), nil
}

func (s *fakeStore) ListRecentViewingLogs(_ context.Context, userID uuid.UUID, limit int32) ([]model.ViewingLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	logs := s.logs[userID]
	if len(logs) > int(limit) {
		logs = logs[:limit]
	}
	return append([]model.ViewingLog(nil), logs...), nil
}

func (s *fakeStore) ListLoggedMovieIDs(_ context.Context, userID uuid.UUID) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int64(nil), s.history[userID]...), nil
}

func (s *fakeStore) ReplaceRecommendations(_ context.Context, userID uuid.UUID, recs []model.Recommendation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failReplace[userID]; err != nil {
		return err
	}
	s.replaces++
	s.recs[userID] = append([]model.Recommendation(nil), recs...)
	return nil
}

func (s *fakeStore) DeleteRecommendations(_ context.Context, userID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes++
	n := int64(len(s.recs[userID]))
	delete(s.recs, userID)
	return n, nil
}

func (s *fakeStore) writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.replaces + s.deletes
}

var errStoreDown = errors.New("store down")

var (
	sciFi  = tmdb.Genre{ID: 878, Name: "Science Fiction"}
	drama  = tmdb.Genre{ID: 18, Name: "Drama"}
	nolan  = tmdb.CrewMember{ID: 525, Name: "Christopher Nolan", Job: "Director"}
	villen = tmdb.CrewMember{ID: 137427, Name: "Denis Villeneuve", Job: "Director"}
)
