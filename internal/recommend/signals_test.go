package recommend

import (
	"context"
	"errors"
	"testing"

	"reeldiary-server/internal/model"
	"reeldiary-server/pkg/tmdb"
)

func logsOf(pairs ...[2]float64) []model.ViewingLog {
	out := make([]model.ViewingLog, 0, len(pairs))
	for i, p := range pairs {
		out = append(out, model.ViewingLog{ID: int64(i + 1), MovieID: int64(p[0]), Rating: p[1]})
	}
	return out
}

func TestDedupeRecentKeepsMostRecent(t *testing.T) {
	logs := logsOf([2]float64{1, 2}, [2]float64{2, 4}, [2]float64{1, 5}, [2]float64{3, 3})
	got := DedupeRecent(logs)
	if len(got) != 3 {
		t.Fatalf("got %d logs, want 3", len(got))
	}
	if got[0].MovieID != 1 || got[0].Rating != 2 {
		t.Fatalf("movie 1 should keep its latest rating 2, got %+v", got[0])
	}
}

func TestAnchorOfFirstWinsTies(t *testing.T) {
	logs := logsOf([2]float64{10, 4.5}, [2]float64{11, 5}, [2]float64{12, 5}, [2]float64{13, 1})
	a, ok := AnchorOf(logs)
	if !ok || a.MovieID != 11 {
		t.Fatalf("anchor = %+v, want movie 11", a)
	}
	if _, ok := AnchorOf(nil); ok {
		t.Fatal("empty logs should have no anchor")
	}
}

func TestTopGenreSumsRatings(t *testing.T) {
	movies := []RatedMovie{
		{Rating: 4.5, Details: &tmdb.MovieDetails{Genres: []tmdb.Genre{sciFi}}},
		{Rating: 3, Details: &tmdb.MovieDetails{Genres: []tmdb.Genre{drama}}},
		{Rating: 4.5, Details: &tmdb.MovieDetails{Genres: []tmdb.Genre{sciFi}}},
		{Rating: 5, Details: nil},
	}
	g := TopGenre(movies)
	if g == nil || g.ID != sciFi.ID || g.Score != 9 {
		t.Fatalf("top genre = %+v, want Science Fiction with 9", g)
	}
}

func TestTopGenreTieGoesToFirstEncountered(t *testing.T) {
	movies := []RatedMovie{
		{Rating: 3, Details: &tmdb.MovieDetails{Genres: []tmdb.Genre{drama}}},
		{Rating: 3, Details: &tmdb.MovieDetails{Genres: []tmdb.Genre{sciFi}}},
	}
	if g := TopGenre(movies); g == nil || g.ID != drama.ID {
		t.Fatalf("top genre = %+v, want Drama", g)
	}
	if g := TopGenre(nil); g != nil {
		t.Fatalf("no movies should yield no genre, got %+v", g)
	}
}

func TestTopDirectorIgnoresOtherCrew(t *testing.T) {
	dop := tmdb.CrewMember{ID: 1, Name: "Roger Deakins", Job: "Director of Photography"}
	movies := []RatedMovie{
		{Rating: 5, Details: &tmdb.MovieDetails{Credits: tmdb.Credits{Crew: []tmdb.CrewMember{dop, villen}}}},
		{Rating: 5, Details: &tmdb.MovieDetails{Credits: tmdb.Credits{Crew: []tmdb.CrewMember{dop}}}},
	}
	d := TopDirector(movies)
	if d == nil || d.ID != villen.ID || d.Score != 5 {
		t.Fatalf("top director = %+v, want Villeneuve with 5", d)
	}
}

func TestExtractInsufficientSignal(t *testing.T) {
	c := newFakeCatalog()
	e := NewExtractor(c, 2)
	logs := logsOf([2]float64{1, 5}, [2]float64{2, 4}, [2]float64{1, 3})
	if _, err := e.Extract(context.Background(), logs); !errors.Is(err, ErrInsufficientSignal) {
		t.Fatalf("expected ErrInsufficientSignal, got %v", err)
	}
	if c.count("details") != 0 {
		t.Fatal("catalog should not be consulted below the signal floor")
	}
}

func TestExtractSignals(t *testing.T) {
	c := newFakeCatalog()
	c.movie(1, "Arrival", []tmdb.Genre{sciFi}, villen)
	c.movie(2, "Dune", []tmdb.Genre{sciFi}, villen)
	c.movie(3, "Marriage Story", []tmdb.Genre{drama})
	c.movie(4, "Interstellar", []tmdb.Genre{sciFi, drama}, nolan)
	c.movie(5, "Tenet", []tmdb.Genre{sciFi}, nolan)
	c.movie(6, "Memento", nil, nolan)

	logs := logsOf(
		[2]float64{1, 4}, [2]float64{2, 4.5}, [2]float64{3, 3}, [2]float64{4, 5},
		[2]float64{5, 2}, [2]float64{6, 3}, [2]float64{1, 1},
	)
	s, err := NewExtractor(c, 3).Extract(context.Background(), logs)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if s.Anchor == nil || s.Anchor.MovieID != 4 || s.Anchor.Title != "Interstellar" {
		t.Fatalf("anchor = %+v", s.Anchor)
	}
	if s.Genre == nil || s.Genre.ID != sciFi.ID {
		t.Fatalf("genre = %+v", s.Genre)
	}
	// nolan 5+2+3=10 vs villeneuve 4+4.5=8.5
	if s.Director == nil || s.Director.ID != nolan.ID || s.Director.Score != 10 {
		t.Fatalf("director = %+v", s.Director)
	}
	want := []int64{1, 2, 3, 4, 5}
	if len(s.SourceMovieIDs) != len(want) {
		t.Fatalf("source ids = %v, want %v", s.SourceMovieIDs, want)
	}
	for i := range want {
		if s.SourceMovieIDs[i] != want[i] {
			t.Fatalf("source ids = %v, want %v", s.SourceMovieIDs, want)
		}
	}
}

func TestExtractAffinityWindow(t *testing.T) {
	c := newFakeCatalog()
	var pairs [][2]float64
	for i := int64(1); i <= 12; i++ {
		c.movie(i, "m", []tmdb.Genre{drama})
		pairs = append(pairs, [2]float64{float64(i), 3})
	}
	// the two oldest movies are sci-fi and heavily rated, but fall outside the window
	c.details[11].Genres = []tmdb.Genre{sciFi}
	c.details[12].Genres = []tmdb.Genre{sciFi}
	pairs[10][1], pairs[11][1] = 5, 5

	s, err := NewExtractor(c, 4).Extract(context.Background(), logsOf(pairs...))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if s.Genre == nil || s.Genre.ID != drama.ID {
		t.Fatalf("genre = %+v, want Drama from the last 10 movies", s.Genre)
	}
	// anchor considers all recent distinct logs, not just the window
	if s.Anchor == nil || s.Anchor.MovieID != 11 {
		t.Fatalf("anchor = %+v, want 11", s.Anchor)
	}
}

func TestExtractMissingCatalogData(t *testing.T) {
	c := newFakeCatalog()
	logs := logsOf([2]float64{1, 5}, [2]float64{2, 4}, [2]float64{3, 3})
	s, err := NewExtractor(c, 1).Extract(context.Background(), logs)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if s.Genre != nil || s.Director != nil {
		t.Fatalf("no catalog data should mean no affinity signals, got %+v %+v", s.Genre, s.Director)
	}
	if s.Anchor == nil || s.Anchor.MovieID != 1 || s.Anchor.Title != "" {
		t.Fatalf("anchor = %+v, want untitled movie 1", s.Anchor)
	}
	if got := Producers(c, s); len(got) != 1 || got[0].Reason != "Because you rated a recent watch highly" {
		t.Fatalf("producers = %+v", got)
	}
}
