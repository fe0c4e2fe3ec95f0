// Package config handles TOML configuration loading with environment variable substitution.
package config

import (
	"fmt"
	"net"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the root configuration structure.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Posters  PostersConfig  `toml:"posters"`
	TMDB     TMDBConfig     `toml:"tmdb"`
}

type ServerConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	LogLevel string `toml:"log_level"`
	// SearchRateLimit is requests per minute per client on TMDB-backed routes; 0 disables.
	SearchRateLimit int `toml:"search_rate_limit"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type PostersConfig struct {
	Dir string `toml:"dir"`
}

type TMDBConfig struct {
	APIKey       string        `toml:"api_key"`
	BaseURL      string        `toml:"base_url"`
	ImageBaseURL string        `toml:"image_base_url"`
	PosterSize   string        `toml:"poster_size"`
	Timeout      time.Duration `toml:"timeout"`
	CacheTTL     time.Duration `toml:"cache_ttl"`
	EnrichLimit  *int          `toml:"enrich_limit"`
}

// Enrich returns the effective enrich limit.
func (t TMDBConfig) Enrich() int {
	if t.EnrichLimit == nil {
		return defaultEnrichLimit
	}
	return *t.EnrichLimit
}

const (
	defaultHost            = "0.0.0.0"
	defaultPort            = 5000
	defaultLogLevel        = "info"
	defaultSearchRateLimit = 30
	defaultDatabasePath    = "./data/movies.db"
	defaultPostersDir      = "./data/posters"
	defaultPosterSize      = "w342"
	defaultTMDBTimeout     = 10 * time.Second
	defaultCacheTTL        = time.Hour
	defaultEnrichLimit     = 5
)

// Default returns a config with every default applied and no file behind it.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	cfg.Server.SearchRateLimit = defaultSearchRateLimit
	return cfg
}

// Load reads and parses the configuration file.
// Unresolved ${VAR} references without a default are reported as a *ConfigError.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	content, missing := substituteEnvVars(string(data))
	if len(missing) > 0 {
		return nil, &ConfigError{Path: path, Missing: missing}
	}

	var cfg Config
	md, err := toml.Decode(content, &cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if !md.IsDefined("server", "search_rate_limit") {
		cfg.Server.SearchRateLimit = defaultSearchRateLimit
	}
	cfg.applyDefaults()

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = defaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = defaultPort
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = defaultLogLevel
	}
	if c.Database.Path == "" {
		c.Database.Path = defaultDatabasePath
	}
	if c.Posters.Dir == "" {
		c.Posters.Dir = defaultPostersDir
	}
	if c.TMDB.PosterSize == "" {
		c.TMDB.PosterSize = defaultPosterSize
	}
	if c.TMDB.Timeout == 0 {
		c.TMDB.Timeout = defaultTMDBTimeout
	}
	if c.TMDB.CacheTTL == 0 {
		c.TMDB.CacheTTL = defaultCacheTTL
	}
}

// envVarPattern matches ${NAME} and ${NAME:-default}.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

// substituteEnvVars expands environment references and returns the names
// that had neither a value nor a default.
func substituteEnvVars(content string) (string, []string) {
	var missing []string
	seen := make(map[string]bool)
	out := envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		sub := envVarPattern.FindStringSubmatch(match)
		name := sub[1]
		value, ok := os.LookupEnv(name)
		if strings.Contains(match, ":-") {
			if value != "" {
				return value
			}
			return sub[2]
		}
		if ok {
			return value
		}
		if !seen[name] {
			seen[name] = true
			missing = append(missing, name)
		}
		return match
	})
	return out, missing
}
