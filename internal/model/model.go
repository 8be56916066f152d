package model

import (
	"time"

	"github.com/google/uuid"
)

// Recommendation categories, in the order they may claim a movie.
const (
	CategoryMovie    = "movie"
	CategoryGenre    = "genre"
	CategoryDirector = "director"
)

var AllowedCategories = map[string]struct{}{
	CategoryMovie:    {},
	CategoryGenre:    {},
	CategoryDirector: {},
}

// ViewingLog is one watch event. Rewatches produce several logs for the same movie.
type ViewingLog struct {
	ID          int64     `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	MovieID     int64     `json:"movie_id"` // TMDb id
	Rating      float64   `json:"rating"`
	WatchedDate time.Time `json:"watched_date"`
}

type Recommendation struct {
	ID                 int64     `json:"id,omitempty"`
	UserID             uuid.UUID `json:"user_id"`
	RecommendedMovieID int64     `json:"recommended_movie_id"` // TMDb id
	SourceMovieIDs     []int64   `json:"source_movie_ids"`
	Reason             string    `json:"reason"`
	Category           string    `json:"category"`
	CreatedAt          time.Time `json:"created_at,omitempty"`
}
