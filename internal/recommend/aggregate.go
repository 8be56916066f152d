package recommend

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"reeldiary-server/internal/metrics"
	"reeldiary-server/internal/model"
	"reeldiary-server/pkg/tmdb"
)

// TargetPerCategory is how many recommendations each signal may contribute.
const TargetPerCategory = 6

// Catalog is the best-effort view of the movie catalog. catalog.Gateway implements it.
type Catalog interface {
	SimilarMovies(ctx context.Context, movieID int64) []tmdb.Result
	DiscoverByGenre(ctx context.Context, genreID int64) []tmdb.Result
	DiscoverByDirector(ctx context.Context, personID int64) []tmdb.Result
	MovieDetails(ctx context.Context, id int64) *tmdb.MovieDetails
	StreamingProviders(ctx context.Context, id int64) []tmdb.Provider
}

// Claims tracks which movie ids are off limits for a user within one run:
// everything they ever logged, plus everything already accepted.
type Claims struct {
	watched map[int64]struct{}
	claimed map[int64]struct{}
}

func NewClaims(watched []int64) *Claims {
	c := &Claims{
		watched: make(map[int64]struct{}, len(watched)),
		claimed: map[int64]struct{}{},
	}
	for _, id := range watched {
		c.watched[id] = struct{}{}
	}
	return c
}

func (c *Claims) MarkWatched(id int64) { c.watched[id] = struct{}{} }

func (c *Claims) Watched(id int64) bool {
	_, ok := c.watched[id]
	return ok
}

func (c *Claims) Claimed(id int64) bool {
	_, ok := c.claimed[id]
	return ok
}

func (c *Claims) Claim(id int64) { c.claimed[id] = struct{}{} }

// Producer turns one signal into a candidate list tagged with a category and reason.
type Producer struct {
	Category   string
	Reason     string
	Candidates func(ctx context.Context) []tmdb.Result
}

// Producers lists the producers for s in claim priority order: movie, genre, director.
// Absent signals contribute nothing.
func Producers(c Catalog, s Signals) []Producer {
	var out []Producer
	if a := s.Anchor; a != nil {
		out = append(out, Producer{
			Category:   model.CategoryMovie,
			Reason:     movieReason(a.Title),
			Candidates: func(ctx context.Context) []tmdb.Result { return c.SimilarMovies(ctx, a.MovieID) },
		})
	}
	if g := s.Genre; g != nil {
		out = append(out, Producer{
			Category:   model.CategoryGenre,
			Reason:     fmt.Sprintf("Because you enjoy %s movies", g.Name),
			Candidates: func(ctx context.Context) []tmdb.Result { return c.DiscoverByGenre(ctx, g.ID) },
		})
	}
	if d := s.Director; d != nil {
		out = append(out, Producer{
			Category:   model.CategoryDirector,
			Reason:     fmt.Sprintf("Because you like films directed by %s", d.Name),
			Candidates: func(ctx context.Context) []tmdb.Result { return c.DiscoverByDirector(ctx, d.ID) },
		})
	}
	return out
}

func movieReason(title string) string {
	if title == "" {
		return "Because you rated a recent watch highly"
	}
	return fmt.Sprintf("Because you liked %s", title)
}

// Aggregator validates candidates and assembles a user's recommendation set.
type Aggregator struct {
	catalog Catalog
	target  int
	batch   int
}

// NewAggregator builds an aggregator accepting up to target movies per category.
// batch bounds how many candidates are validated concurrently; 1 is strictly sequential.
func NewAggregator(c Catalog, target, batch int) *Aggregator {
	if target < 1 {
		target = TargetPerCategory
	}
	if batch < 1 {
		batch = 1
	}
	return &Aggregator{catalog: c, target: target, batch: batch}
}

// Collect runs producers in order against a shared Claims, so a movie accepted by an
// earlier category is never offered again by a later one.
func (a *Aggregator) Collect(ctx context.Context, userID uuid.UUID, producers []Producer, claims *Claims, sourceIDs []int64) []model.Recommendation {
	var out []model.Recommendation
	for _, p := range producers {
		if ctx.Err() != nil {
			break
		}
		for _, id := range a.collectCategory(ctx, p, claims) {
			out = append(out, model.Recommendation{
				UserID:             userID,
				RecommendedMovieID: id,
				SourceMovieIDs:     append([]int64(nil), sourceIDs...),
				Reason:             p.Reason,
				Category:           p.Category,
			})
		}
	}
	return out
}

// collectCategory walks candidates in catalog order and returns accepted ids.
// Eligible candidates are validated in small concurrent batches; acceptance is then
// applied in list order, which yields the same result as one-at-a-time validation.
func (a *Aggregator) collectCategory(ctx context.Context, p Producer, claims *Claims) []int64 {
	candidates := p.Candidates(ctx)
	var accepted []int64
	seen := make(map[int64]struct{}, len(candidates))
	i := 0
	for i < len(candidates) && len(accepted) < a.target {
		size := min(a.batch, a.target-len(accepted))
		batch := make([]int64, 0, size)
		for i < len(candidates) && len(batch) < size {
			id := candidates[i].ID
			i++
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			switch {
			case claims.Watched(id):
				metrics.CandidatesRejected.WithLabelValues("watched").Inc()
			case claims.Claimed(id):
				metrics.CandidatesRejected.WithLabelValues("claimed").Inc()
			default:
				batch = append(batch, id)
			}
		}
		if len(batch) == 0 {
			continue
		}
		for j, ok := range a.validateBatch(ctx, batch) {
			if ok && len(accepted) < a.target {
				claims.Claim(batch[j])
				accepted = append(accepted, batch[j])
				metrics.RecommendationsAccepted.WithLabelValues(p.Category).Inc()
			}
		}
	}
	return accepted
}

func (a *Aggregator) validateBatch(ctx context.Context, ids []int64) []bool {
	out := make([]bool, len(ids))
	if len(ids) == 1 {
		out[0] = a.validate(ctx, ids[0])
		return out
	}
	var g errgroup.Group
	g.SetLimit(a.batch)
	for j, id := range ids {
		g.Go(func() error {
			out[j] = a.validate(ctx, id)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// validate applies the quality and availability filters to one candidate.
func (a *Aggregator) validate(ctx context.Context, id int64) bool {
	d := a.catalog.MovieDetails(ctx, id)
	if d == nil {
		metrics.CandidatesRejected.WithLabelValues("no_details").Inc()
		return false
	}
	if strings.TrimSpace(d.Overview) == "" {
		metrics.CandidatesRejected.WithLabelValues("no_overview").Inc()
		return false
	}
	if len(a.catalog.StreamingProviders(ctx, id)) == 0 {
		metrics.CandidatesRejected.WithLabelValues("not_streaming").Inc()
		return false
	}
	return true
}
