package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Environment string `env:"ENV" envDefault:"development"` // production, development, etc.
	Port        string `env:"PORT" envDefault:"8080"`
	Host        string `env:"HOST" envDefault:"http://localhost:8080"`
	AllowedHost string `env:"-"` // Hostname only for strict host check (production only)

	MongoURI string `env:"MONGO_URL" envDefault:"mongodb://localhost:27017"`
	DBName   string `env:"DB_NAME" envDefault:"datapath"`
	RedisURI string `env:"REDIS_URI"` // empty disables the session cache and shared rate limit

	CORSOrigins    string   `env:"CORS_ORIGINS" envDefault:"http://localhost:3000"`
	AllowedOrigins []string `env:"-"`
	TrustProxy     bool     `env:"TRUST_PROXY" envDefault:"false"`

	EmergentSessionURL string        `env:"EMERGENT_SESSION_URL" envDefault:"https://demobackend.emergentagent.com/auth/v1/env/oauth/session-data"`
	FirebaseProjectID  string        `env:"FIREBASE_PROJECT_ID"`
	FirebaseCertsURL   string        `env:"FIREBASE_CERTS_URL" envDefault:"https://www.googleapis.com/robot/v1/metadata/x509/securetoken@system.gserviceaccount.com"`
	IdentityTimeout    time.Duration `env:"IDENTITY_TIMEOUT" envDefault:"5s"`

	SessionCacheTTL time.Duration `env:"SESSION_CACHE_TTL" envDefault:"5m"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"5s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.Environment = strings.ToLower(strings.TrimSpace(cfg.Environment))

	// AllowedHost is only set in production; host check is skipped in development
	if cfg.IsProduction() {
		cfg.AllowedHost = hostname(cfg.Host)
	}

	cfg.AllowedOrigins = parseOrigins(cfg.CORSOrigins)
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"http://localhost:3000"}
	}

	if cfg.IdentityTimeout <= 0 {
		return nil, fmt.Errorf("IDENTITY_TIMEOUT must be positive")
	}
	return &cfg, nil
}

func hostname(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

func parseOrigins(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" && !containsOrigin(out, part) {
			out = append(out, part)
		}
	}
	return out
}

func containsOrigin(list []string, o string) bool {
	o = strings.TrimSpace(strings.ToLower(o))
	for _, v := range list {
		if strings.TrimSpace(strings.ToLower(v)) == o {
			return true
		}
	}
	return false
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return strings.ToLower(strings.TrimSpace(c.Environment)) == "production"
}

// RedisEnabled reports whether a Redis URI was configured.
func (c *Config) RedisEnabled() bool {
	return strings.TrimSpace(c.RedisURI) != ""
}
