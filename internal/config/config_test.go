package config

import (
	"strings"
	"testing"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "TMDB_REGION", "RECOMMEND_HOUR_UTC", "RECOMMEND_USER_CONCURRENCY", "ENV", "LOG_LEVEL", "LOG_FORMAT", "CURSOR_SECRET", "RECOMMEND_CLEAR_ON_EMPTY"} {
		t.Setenv(k, "")
	}
	c := FromEnv()
	if c.Port != "8080" || c.TMDBRegion != "US" || c.TMDBLanguage != "en-US" {
		t.Fatalf("unexpected defaults %+v", c)
	}
	if c.RecommendHourUTC != 4 || c.RecommendUserConcurrency != 1 || c.RecommendClearOnEmpty {
		t.Fatalf("unexpected recommender defaults %+v", c)
	}
	if len(c.CursorSecret) != 32 {
		t.Fatalf("expected a generated 32 byte cursor secret, got %d bytes", len(c.CursorSecret))
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("defaults should validate in development: %v", err)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("TMDB_REGION", "gb")
	t.Setenv("RECOMMEND_HOUR_UTC", "23")
	t.Setenv("RECOMMEND_CLEAR_ON_EMPTY", "1")
	t.Setenv("RECOMMEND_USER_CONCURRENCY", "nope")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	c := FromEnv()
	if c.TMDBRegion != "GB" || c.RecommendHourUTC != 23 || !c.RecommendClearOnEmpty {
		t.Fatalf("overrides not applied: %+v", c)
	}
	if c.RecommendUserConcurrency != 1 {
		t.Fatalf("bad integer should fall back to default, got %d", c.RecommendUserConcurrency)
	}
	if len(c.CORSAllowedOrigins) != 2 {
		t.Fatalf("origins = %v", c.CORSAllowedOrigins)
	}
}

func TestValidate(t *testing.T) {
	base := Config{
		Port:                     "8080",
		DatabaseURL:              "postgres://x",
		TMDBRegion:               "US",
		TMDBLanguage:             "en-US",
		Env:                      "development",
		LogLevel:                 "info",
		LogFormat:                "json",
		RecommendUserConcurrency: 1,
	}
	if err := base.Validate(); err != nil {
		t.Fatalf("base config: %v", err)
	}

	cases := map[string]func(c *Config){
		"hour":        func(c *Config) { c.RecommendHourUTC = 24 },
		"concurrency": func(c *Config) { c.RecommendUserConcurrency = 0 },
		"region":      func(c *Config) { c.TMDBRegion = "USA" },
		"log level":   func(c *Config) { c.LogLevel = "loud" },
		"prod secret": func(c *Config) { c.Env = "production"; c.TMDBAPIKey = "k" },
		"prod tmdb":   func(c *Config) { c.Env = "production"; c.CronSecret = "s" },
	}
	for name, mutate := range cases {
		c := base
		mutate(&c)
		err := c.Validate()
		if err == nil {
			t.Errorf("%s: expected validation error", name)
			continue
		}
		if !strings.HasPrefix(err.Error(), "invalid config") {
			t.Errorf("%s: unexpected error %v", name, err)
		}
	}

	prod := base
	prod.Env, prod.TMDBAPIKey, prod.CronSecret = "production", "k", "s"
	if err := prod.Validate(); err != nil {
		t.Fatalf("complete production config: %v", err)
	}
}
