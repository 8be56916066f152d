package recommend

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"reeldiary-server/internal/model"
	"reeldiary-server/pkg/tmdb"
)

const (
	// RecentLogLimit is how many of a user's latest viewing logs feed the signals.
	RecentLogLimit = 20
	// MinDistinctMovies is the floor below which a user is not personalised at all.
	MinDistinctMovies = 3
	// AffinityWindow is how many of the most recent distinct movies are scored for genre/director affinity.
	AffinityWindow = 10
	// SourceMovieLimit bounds the provenance ids stored on each recommendation.
	SourceMovieLimit = 5
)

// ErrInsufficientSignal means the user has too few distinct logged movies to personalise.
var ErrInsufficientSignal = errors.New("insufficient viewing history")

// DedupeRecent keeps the first log per movie. logs must be ordered most recent first,
// so the kept instance is the latest watch of each movie.
func DedupeRecent(logs []model.ViewingLog) []model.ViewingLog {
	seen := make(map[int64]struct{}, len(logs))
	out := make([]model.ViewingLog, 0, len(logs))
	for _, l := range logs {
		if _, ok := seen[l.MovieID]; ok {
			continue
		}
		seen[l.MovieID] = struct{}{}
		out = append(out, l)
	}
	return out
}

// AnchorOf returns the highest rated log; on ties the earliest in the list wins.
func AnchorOf(logs []model.ViewingLog) (model.ViewingLog, bool) {
	if len(logs) == 0 {
		return model.ViewingLog{}, false
	}
	best := logs[0]
	for _, l := range logs[1:] {
		if l.Rating > best.Rating {
			best = l
		}
	}
	return best, true
}

// Affinity is an accumulated preference for a genre or a person.
type Affinity struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// RatedMovie pairs a user's rating with the catalog record of the rated movie.
type RatedMovie struct {
	Rating  float64
	Details *tmdb.MovieDetails
}

// scoreboard sums scores per id and remembers first-encounter order for tie-breaks.
type scoreboard struct {
	order []int64
	byID  map[int64]*Affinity
}

func newScoreboard() *scoreboard { return &scoreboard{byID: map[int64]*Affinity{}} }

func (s *scoreboard) add(id int64, name string, score float64) {
	a, ok := s.byID[id]
	if !ok {
		a = &Affinity{ID: id, Name: name}
		s.byID[id] = a
		s.order = append(s.order, id)
	}
	a.Score += score
}

func (s *scoreboard) top() *Affinity {
	var best *Affinity
	for _, id := range s.order {
		a := s.byID[id]
		if best == nil || a.Score > best.Score {
			best = a
		}
	}
	if best == nil {
		return nil
	}
	out := *best
	return &out
}

// TopGenre sums each movie's rating into every genre it carries and returns the best genre.
func TopGenre(movies []RatedMovie) *Affinity {
	sb := newScoreboard()
	for _, m := range movies {
		if m.Details == nil {
			continue
		}
		for _, g := range m.Details.Genres {
			sb.add(g.ID, g.Name, m.Rating)
		}
	}
	return sb.top()
}

// TopDirector is TopGenre keyed on crew credited as "Director".
func TopDirector(movies []RatedMovie) *Affinity {
	sb := newScoreboard()
	for _, m := range movies {
		if m.Details == nil {
			continue
		}
		for _, d := range m.Details.Directors() {
			sb.add(d.ID, d.Name, m.Rating)
		}
	}
	return sb.top()
}

type AnchorSignal struct {
	MovieID int64
	Title   string
	Rating  float64
}

// Signals are the per-user preference dimensions. Each may be nil.
type Signals struct {
	Anchor         *AnchorSignal
	Genre          *Affinity
	Director       *Affinity
	SourceMovieIDs []int64
}

// Extractor turns a viewing history into Signals, using the catalog for genres and credits.
type Extractor struct {
	catalog     Catalog
	concurrency int
}

func NewExtractor(c Catalog, concurrency int) *Extractor {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Extractor{catalog: c, concurrency: concurrency}
}

// Extract derives signals from logs ordered most recent first. It returns
// ErrInsufficientSignal when fewer than MinDistinctMovies distinct movies were logged.
func (e *Extractor) Extract(ctx context.Context, logs []model.ViewingLog) (Signals, error) {
	recent := DedupeRecent(logs)
	if len(recent) < MinDistinctMovies {
		return Signals{}, ErrInsufficientSignal
	}

	var s Signals
	for i := 0; i < len(recent) && i < SourceMovieLimit; i++ {
		s.SourceMovieIDs = append(s.SourceMovieIDs, recent[i].MovieID)
	}

	window := recent
	if len(window) > AffinityWindow {
		window = window[:AffinityWindow]
	}
	details := e.fetchDetails(ctx, window)
	rated := make([]RatedMovie, 0, len(window))
	byID := make(map[int64]*tmdb.MovieDetails, len(window))
	for i, l := range window {
		if details[i] == nil {
			continue
		}
		rated = append(rated, RatedMovie{Rating: l.Rating, Details: details[i]})
		byID[l.MovieID] = details[i]
	}
	s.Genre = TopGenre(rated)
	s.Director = TopDirector(rated)

	if a, ok := AnchorOf(recent); ok {
		s.Anchor = &AnchorSignal{MovieID: a.MovieID, Rating: a.Rating}
		d, ok := byID[a.MovieID]
		if !ok {
			d = e.catalog.MovieDetails(ctx, a.MovieID)
		}
		if d != nil {
			s.Anchor.Title = d.Title
		}
	}
	return s, nil
}

// fetchDetails looks up every log's movie concurrently; the result is index-aligned with logs.
func (e *Extractor) fetchDetails(ctx context.Context, logs []model.ViewingLog) []*tmdb.MovieDetails {
	out := make([]*tmdb.MovieDetails, len(logs))
	var g errgroup.Group
	g.SetLimit(e.concurrency)
	for i, l := range logs {
		g.Go(func() error {
			out[i] = e.catalog.MovieDetails(ctx, l.MovieID)
			return nil
		})
	}
	_ = g.Wait()
	return out
}
