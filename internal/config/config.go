// Package config defines bifrost's runtime configuration, sourced from
// environment variables with documented defaults.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/psychonautwiki/bifrost/internal/bferrors"
)

// Config holds all runtime configuration for bifrost. Each field documents
// its source environment variable, default, and purpose via struct tags,
// following the same schema convention used throughout this codebase's
// configurable components.
type Config struct {
	// Host is the interface bifrost's HTTP server binds to.
	Host string `schema:"type:string,env:HOST,default:0.0.0.0,description:HTTP bind address"`

	// Port is the TCP port bifrost's HTTP server listens on.
	Port int `schema:"type:int,env:PORT,default:3000,description:HTTP bind port"`

	// CacheTTL controls how long an upstream response is considered fresh
	// before a read triggers a background revalidation.
	CacheTTL time.Duration `schema:"type:duration,env:CACHE_TTL_MS,default:86400000,description:SWR cache freshness window"`

	// LogLevel controls the minimum severity of emitted log records.
	LogLevel string `schema:"type:string,env:LOG_LEVEL,default:info,description:debug|info|warn|error"`

	// LogFormat is read from LOG_FORMAT but is not consulted when the logger
	// is built; cmd/bifrost picks text or JSON from --json-logs
	// (LOG_FORMAT_JSON).
	LogFormat string `schema:"type:string,env:LOG_FORMAT,default:json,description:json|text"`

	// UpstreamBaseURL is the MediaWiki instance bifrost queries.
	UpstreamBaseURL string `schema:"type:string,env:UPSTREAM_BASE_URL,default:https://psychonautwiki.org,description:MediaWiki base URL"`

	// CDNURL is the base used to derive substance thumbnail URLs.
	CDNURL string `schema:"type:string,env:CDN_URL,default:https://psychonautwiki.org/,description:CDN base URL for derived images"`

	// PlebisciteEnabled turns on the optional Erowid experience-report
	// connector and the erowid GraphQL field. The experiences field is in the
	// schema either way.
	PlebisciteEnabled bool `schema:"type:bool,env:PLEBISCITE,default:false,description:enable Erowid experience reports"`

	// MongoURL is required when PlebisciteEnabled is true.
	MongoURL string `schema:"type:string,env:MONGO_URL,description:MongoDB connection string"`

	// MongoDatabase is the database holding Erowid experience reports.
	MongoDatabase string `schema:"type:string,env:MONGO_DB,default:bifrost,description:MongoDB database name"`

	// MongoCollection is the collection holding Erowid experience reports.
	MongoCollection string `schema:"type:string,env:MONGO_COLLECTION,default:plebiscite,description:MongoDB collection name"`

	// RequestTimeout bounds the total time a single GraphQL HTTP request is
	// allowed to take before bifrost aborts it.
	RequestTimeout time.Duration `schema:"type:duration,env:REQUEST_TIMEOUT_MS,default:10000,description:per-request timeout"`

	// EnablePlayground serves the GraphQL Playground UI on GET requests to "/".
	EnablePlayground bool `schema:"type:bool,env:ENABLE_PLAYGROUND,default:true,description:serve GraphQL Playground"`
}

// DefaultConfig returns a Config populated with the documented defaults.
func DefaultConfig() Config {
	return Config{
		Host:              "0.0.0.0",
		Port:              3000,
		CacheTTL:          24 * time.Hour,
		LogLevel:          "info",
		LogFormat:         "json",
		UpstreamBaseURL:   "https://psychonautwiki.org",
		CDNURL:            "https://psychonautwiki.org/",
		PlebisciteEnabled: false,
		MongoDatabase:     "bifrost",
		MongoCollection:   "plebiscite",
		RequestTimeout:    10 * time.Second,
		EnablePlayground:  true,
	}
}

// FromEnv builds a Config from environment variables, falling back to
// DefaultConfig's values for anything unset, then validates the result.
func FromEnv() (Config, error) {
	cfg := DefaultConfig()

	cfg.Host = getEnv("HOST", cfg.Host)
	cfg.Port = getEnvInt("PORT", cfg.Port)
	cfg.CacheTTL = getEnvDurationMS("CACHE_TTL_MS", cfg.CacheTTL)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("LOG_FORMAT", cfg.LogFormat)
	cfg.UpstreamBaseURL = getEnv("UPSTREAM_BASE_URL", cfg.UpstreamBaseURL)
	cfg.CDNURL = getEnv("CDN_URL", cfg.CDNURL)
	cfg.PlebisciteEnabled = getEnvBool("PLEBISCITE", cfg.PlebisciteEnabled)
	cfg.MongoURL = getEnv("MONGO_URL", cfg.MongoURL)
	cfg.MongoDatabase = getEnv("MONGO_DB", cfg.MongoDatabase)
	cfg.MongoCollection = getEnv("MONGO_COLLECTION", cfg.MongoCollection)
	cfg.RequestTimeout = getEnvDurationMS("REQUEST_TIMEOUT_MS", cfg.RequestTimeout)
	cfg.EnablePlayground = getEnvBool("ENABLE_PLAYGROUND", cfg.EnablePlayground)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for internal consistency. It does not
// apply defaults; callers that build a Config by hand (e.g. tests) should
// start from DefaultConfig.
func (c Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return bferrors.WrapInvalid(fmt.Errorf("port %d out of range", c.Port), "config", "Validate", "check port")
	}
	if c.CacheTTL <= 0 {
		return bferrors.WrapInvalid(fmt.Errorf("cache TTL must be positive"), "config", "Validate", "check cache ttl")
	}
	if c.UpstreamBaseURL == "" {
		return bferrors.WrapInvalid(bferrors.ErrMissingConfig, "config", "Validate", "check upstream base url")
	}
	if c.PlebisciteEnabled && c.MongoURL == "" {
		return bferrors.WrapInvalid(bferrors.ErrMissingMongoURL, "config", "Validate", "check mongo url")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return bferrors.WrapInvalid(fmt.Errorf("unknown log level %q", c.LogLevel), "config", "Validate", "check log level")
	}
	return nil
}

// Addr returns the host:port pair the HTTP server should bind to.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getEnvInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvDurationMS(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	ms, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return time.Duration(ms) * time.Millisecond
}
