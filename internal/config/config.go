package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

const defaultDatabaseName = "frontline-fury"

type Config struct {
	MongoURI      string `envconfig:"MONGO_URI" validate:"required"`
	MongoURIAlt   string `envconfig:"MONGODB_URI"`
	MongoDatabase string `envconfig:"MONGO_DB_NAME"`

	MongoMinPoolSize            uint64        `envconfig:"MONGO_MIN_POOL_SIZE" default:"0" validate:"ltefield=MongoMaxPoolSize"`
	MongoMaxPoolSize            uint64        `envconfig:"MONGO_MAX_POOL_SIZE" default:"10" validate:"gte=1"`
	MongoServerSelectionTimeout time.Duration `envconfig:"MONGO_SERVER_SELECTION_TIMEOUT" default:"5s" validate:"gt=0"`
	MongoSocketTimeout          time.Duration `envconfig:"MONGO_SOCKET_TIMEOUT" default:"45s" validate:"gte=0"`
	MongoRetryDelay             time.Duration `envconfig:"MONGO_RETRY_DELAY" default:"5s" validate:"gt=0"`

	RedisURI string        `envconfig:"REDIS_URI"`
	CacheTTL time.Duration `envconfig:"CACHE_TTL" default:"30s" validate:"gt=0"`

	Port        string `envconfig:"PORT" default:"5000" validate:"numeric"`
	Environment string `envconfig:"ENV"`
	NodeEnv     string `envconfig:"NODE_ENV"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=trace debug info warn error"`

	// CORS: "*" or a comma separated list of origins.
	AllowedOriginsRaw string   `envconfig:"ALLOWED_ORIGINS" default:"*"`
	AllowedOrigins    []string `ignored:"true"`

	RateLimitRPS   float64 `envconfig:"RATE_LIMIT_RPS" default:"10" validate:"gt=0"`
	RateLimitBurst int     `envconfig:"RATE_LIMIT_BURST" default:"20" validate:"gte=1"`
	// Take the client address from X-Forwarded-For instead of the socket.
	TrustProxy bool `envconfig:"TRUST_PROXY" default:"false"`
}

// Load reads the process environment. The .env file, if any, must already be
// loaded by the caller.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}

	if cfg.MongoURI == "" {
		cfg.MongoURI = cfg.MongoURIAlt
	}
	if cfg.MongoURI == "" {
		cfg.MongoURI = "mongodb://localhost:27017/" + defaultDatabaseName
	}
	if cfg.MongoDatabase == "" {
		cfg.MongoDatabase = databaseFromURI(cfg.MongoURI)
	}

	env := cfg.Environment
	if env == "" {
		env = cfg.NodeEnv
	}
	if env == "" {
		env = "development"
	}
	cfg.Environment = strings.ToLower(strings.TrimSpace(env))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))

	cfg.AllowedOrigins = parseOrigins(cfg.AllowedOriginsRaw)
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// IsProduction returns true when ENV (or NODE_ENV) is "production".
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// MaskedMongoURI returns the connection string with the password replaced,
// safe to print in logs.
func (c *Config) MaskedMongoURI() string {
	return maskURI(c.MongoURI)
}

// databaseFromURI extracts the database name from
// mongodb://host/<db>?opts, falling back to the default name.
func databaseFromURI(uri string) string {
	rest := uri
	if i := strings.Index(rest, "://"); i >= 0 {
		rest = rest[i+3:]
	}
	slash := strings.Index(rest, "/")
	if slash < 0 {
		return defaultDatabaseName
	}
	name := strings.SplitN(rest[slash+1:], "?", 2)[0]
	if name == "" {
		return defaultDatabaseName
	}
	return name
}

func maskURI(uri string) string {
	scheme := strings.Index(uri, "://")
	at := strings.LastIndex(uri, "@")
	if scheme < 0 || at < scheme {
		return uri
	}
	creds := uri[scheme+3 : at]
	colon := strings.Index(creds, ":")
	if colon < 0 {
		return uri
	}
	return uri[:scheme+3] + creds[:colon+1] + "***" + uri[at:]
}

func parseOrigins(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
