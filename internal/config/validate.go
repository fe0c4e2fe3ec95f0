package config

import (
	"fmt"
	"net/url"
)

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true, "": true,
}

var validPosterSizes = map[string]bool{
	"w92": true, "w154": true, "w185": true, "w342": true, "w500": true, "w780": true, "original": true,
}

// Validate checks the configuration for errors.
// Returns a slice of error messages (empty if valid).
func (c *Config) Validate() []string {
	var errs []string

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port: must be between 1 and 65535, got %d", c.Server.Port))
	}
	if !validLogLevels[c.Server.LogLevel] {
		errs = append(errs, fmt.Sprintf("server.log_level: must be one of debug, info, warn, error; got %q", c.Server.LogLevel))
	}
	if c.Server.SearchRateLimit < 0 {
		errs = append(errs, fmt.Sprintf("server.search_rate_limit: must not be negative, got %d", c.Server.SearchRateLimit))
	}

	if c.Database.Path == "" {
		errs = append(errs, "database.path: required")
	}
	if c.Posters.Dir == "" {
		errs = append(errs, "posters.dir: required")
	}

	for field, raw := range map[string]string{
		"tmdb.base_url":       c.TMDB.BaseURL,
		"tmdb.image_base_url": c.TMDB.ImageBaseURL,
	} {
		if raw == "" {
			continue
		}
		if u, err := url.Parse(raw); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Sprintf("%s: must be an absolute URL, got %q", field, raw))
		}
	}
	if !validPosterSizes[c.TMDB.PosterSize] {
		errs = append(errs, fmt.Sprintf("tmdb.poster_size: unsupported size %q", c.TMDB.PosterSize))
	}
	if c.TMDB.Timeout < 0 {
		errs = append(errs, "tmdb.timeout: must not be negative")
	}
	if c.TMDB.CacheTTL < 0 {
		errs = append(errs, "tmdb.cache_ttl: must not be negative")
	}
	if c.TMDB.Enrich() < 0 {
		errs = append(errs, fmt.Sprintf("tmdb.enrich_limit: must not be negative, got %d", c.TMDB.Enrich()))
	}

	return errs
}
