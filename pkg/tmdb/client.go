package tmdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"
)

const DefaultBaseURL = "https://api.themoviedb.org/3"

var (
	// ErrNotFound is returned when TMDb has no record for the requested id.
	ErrNotFound = errors.New("tmdb: not found")
	// ErrMalformed is returned when a detail response cannot be used (e.g. missing id).
	ErrMalformed = errors.New("tmdb: malformed response")
)

// StatusError reports a non-2xx response other than 404.
type StatusError struct {
	Path       string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("tmdb %s status %d", e.Path, e.StatusCode)
}

// Temporary reports whether the failure is worth counting against the upstream (rate limits, 5xx).
func (e *StatusError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

type Client struct {
	APIKey   string
	BaseURL  string
	Language string
	Client   *http.Client

	limiter *rate.Limiter
}

type Option func(*Client)

func WithBaseURL(u string) Option { return func(c *Client) { c.BaseURL = u } }

func WithLanguage(lang string) Option { return func(c *Client) { c.Language = lang } }

func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.Client = h } }

// WithRateLimit caps outgoing requests per second. A non-positive rps disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		APIKey:   apiKey,
		BaseURL:  DefaultBaseURL,
		Language: "en-US",
		Client:   &http.Client{Timeout: 15 * time.Second},
		limiter:  rate.NewLimiter(20, 20),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Page is one page of a list endpoint (recommendations, discover).
type Page struct {
	Page         int      `json:"page"`
	TotalPages   int      `json:"total_pages"`
	TotalResults int      `json:"total_results"`
	Results      []Result `json:"results"`
}

type Result struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	ReleaseDate string  `json:"release_date"`
	PosterPath  string  `json:"poster_path"`
	VoteAverage float64 `json:"vote_average"`
	VoteCount   int     `json:"vote_count"`
	Popularity  float64 `json:"popularity"`
	Adult       bool    `json:"adult"`
}

type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type CrewMember struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Job        string `json:"job"`
	Department string `json:"department"`
}

type Credits struct {
	Crew []CrewMember `json:"crew"`
}

type MovieDetails struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	ReleaseDate string  `json:"release_date"`
	PosterPath  string  `json:"poster_path"`
	Runtime     int     `json:"runtime"`
	VoteAverage float64 `json:"vote_average"`
	VoteCount   int     `json:"vote_count"`
	Genres      []Genre `json:"genres"`
	Credits     Credits `json:"credits"`
}

// Directors returns the crew members credited with the "Director" job, in credit order.
func (m *MovieDetails) Directors() []CrewMember {
	var out []CrewMember
	for _, c := range m.Credits.Crew {
		if c.Job == "Director" {
			out = append(out, c)
		}
	}
	return out
}

type Provider struct {
	ProviderID      int64  `json:"provider_id"`
	ProviderName    string `json:"provider_name"`
	LogoPath        string `json:"logo_path"`
	DisplayPriority int    `json:"display_priority"`
}

// RegionProviders is the availability of a movie in one region.
type RegionProviders struct {
	Link     string     `json:"link"`
	Flatrate []Provider `json:"flatrate"`
	Rent     []Provider `json:"rent"`
	Buy      []Provider `json:"buy"`
}

type watchProvidersResp struct {
	ID      int64                      `json:"id"`
	Results map[string]RegionProviders `json:"results"`
}

// DiscoverQuery filters /discover/movie. Exactly one of GenreID or CrewID is normally set.
type DiscoverQuery struct {
	GenreID        int64
	CrewID         int64
	MinVoteCount   int
	MinVoteAverage float64
	SortBy         string
}

func (q DiscoverQuery) values() url.Values {
	v := url.Values{}
	if q.GenreID != 0 {
		v.Set("with_genres", strconv.FormatInt(q.GenreID, 10))
	}
	if q.CrewID != 0 {
		v.Set("with_crew", strconv.FormatInt(q.CrewID, 10))
	}
	sortBy := q.SortBy
	if sortBy == "" {
		sortBy = "vote_average.desc"
	}
	v.Set("sort_by", sortBy)
	if q.MinVoteCount > 0 {
		v.Set("vote_count.gte", strconv.Itoa(q.MinVoteCount))
	}
	if q.MinVoteAverage > 0 {
		v.Set("vote_average.gte", strconv.FormatFloat(q.MinVoteAverage, 'f', -1, 64))
	}
	v.Set("include_adult", "false")
	return v
}

// MovieRecommendations fetches one page of movies TMDb considers similar to movieID.
func (c *Client) MovieRecommendations(ctx context.Context, movieID int64, page int) (*Page, error) {
	v := url.Values{}
	v.Set("page", strconv.Itoa(page))
	var out Page
	if err := c.get(ctx, fmt.Sprintf("/movie/%d/recommendations", movieID), v, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Discover fetches one page of /discover/movie for the given query.
func (c *Client) Discover(ctx context.Context, q DiscoverQuery, page int) (*Page, error) {
	v := q.values()
	v.Set("page", strconv.Itoa(page))
	var out Page
	if err := c.get(ctx, "/discover/movie", v, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MovieDetails fetches a movie with its genres and credits in one request.
func (c *Client) MovieDetails(ctx context.Context, movieID int64) (*MovieDetails, error) {
	v := url.Values{}
	v.Set("append_to_response", "credits")
	var out MovieDetails
	if err := c.get(ctx, fmt.Sprintf("/movie/%d", movieID), v, &out); err != nil {
		return nil, err
	}
	if out.ID == 0 {
		return nil, ErrMalformed
	}
	return &out, nil
}

// WatchProviders returns availability for every region TMDb knows about, keyed by ISO 3166-1 code.
func (c *Client) WatchProviders(ctx context.Context, movieID int64) (map[string]RegionProviders, error) {
	var out watchProvidersResp
	if err := c.get(ctx, fmt.Sprintf("/movie/%d/watch/providers", movieID), nil, &out); err != nil {
		return nil, err
	}
	if out.Results == nil {
		return map[string]RegionProviders{}, nil
	}
	return out.Results, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	if c.APIKey == "" {
		return fmt.Errorf("missing TMDB API key")
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	u, err := url.Parse(c.BaseURL + path)
	if err != nil {
		return err
	}
	q := u.Query()
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	q.Set("api_key", c.APIKey)
	if c.Language != "" {
		q.Set("language", c.Language)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusNotFound:
		_, _ = io.Copy(io.Discard, resp.Body)
		return ErrNotFound
	case resp.StatusCode != http.StatusOK:
		_, _ = io.Copy(io.Discard, resp.Body)
		return &StatusError{Path: path, StatusCode: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
