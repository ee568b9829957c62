package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/Skotchmaster/scope_auth/internal/tokens"
)

type Config struct {
	ServiceName string `env:"SERVICE_NAME" envDefault:"auth"`
	ServerAddr  string `env:"SERVER_ADDR"  envDefault:":8080"`
	LogLevel    string `env:"LOG_LEVEL"    envDefault:"info"`

	DBDriver    string `env:"DB_DRIVER"     envDefault:"sqlite"`
	DBSQLDriver string `env:"DB_SQL_DRIVER" envDefault:"pgx"`
	DatabaseURL string `env:"DATABASE_URL"  envDefault:"auth.db"`

	SecretKey                 string `env:"SECRET_KEY"`
	TokenAlgorithm            string `env:"USER_TOKEN_ALGORITHM"         envDefault:"HS256"`
	PrivateKey                string `env:"PRIVATE_KEY"`
	PublicKey                 string `env:"PUBLIC_KEY"`
	AccessTokenExpireMinutes  int    `env:"ACCESS_TOKEN_EXPIRE_MINUTES"  envDefault:"15"`
	RefreshTokenExpireMinutes int    `env:"REFRESH_TOKEN_EXPIRE_MINUTES" envDefault:"4320"`
	RefreshCookieSecure       bool   `env:"REFRESH_COOKIE_SECURE"        envDefault:"true"`

	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`

	ESURL         string `env:"ES_URL"`
	ESUser        string `env:"ES_USER"`
	ESPassword    string `env:"ES_PASSWORD"`
	ESEventsIndex string `env:"ES_EVENTS_INDEX" envDefault:"auth-events"`
}

// Load reads .env files (when present) into the process environment and
// then parses the environment into a Config.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		} else if err != nil {
			log.Printf("notice: %s not found, using system environment variables", f)
		}
	}

	return Parse()
}

func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.KafkaBrokers = compact(cfg.KafkaBrokers)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	switch strings.ToUpper(c.TokenAlgorithm) {
	case tokens.AlgHS256:
		if c.SecretKey == "" {
			errs = append(errs, errors.New("SECRET_KEY is required for HS256"))
		}
	case tokens.AlgRS256:
		if c.PrivateKey == "" {
			errs = append(errs, errors.New("PRIVATE_KEY is required for RS256"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported USER_TOKEN_ALGORITHM %q", c.TokenAlgorithm))
	}

	if c.AccessTokenExpireMinutes <= 0 {
		errs = append(errs, errors.New("ACCESS_TOKEN_EXPIRE_MINUTES must be positive"))
	}
	if c.RefreshTokenExpireMinutes <= 0 {
		errs = append(errs, errors.New("REFRESH_TOKEN_EXPIRE_MINUTES must be positive"))
	}

	switch c.DBDriver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver))
	}
	switch c.DBSQLDriver {
	case "pgx", "pq":
	default:
		errs = append(errs, fmt.Errorf("unsupported DB_SQL_DRIVER %q", c.DBSQLDriver))
	}

	return errors.Join(errs...)
}

func (c *Config) AccessTTL() time.Duration {
	return time.Duration(c.AccessTokenExpireMinutes) * time.Minute
}

func (c *Config) RefreshTTL() time.Duration {
	return time.Duration(c.RefreshTokenExpireMinutes) * time.Minute
}

func (c *Config) Tokens() tokens.Config {
	return tokens.Config{
		Algorithm:     c.TokenAlgorithm,
		Secret:        []byte(c.SecretKey),
		PrivateKeyPEM: []byte(c.PrivateKey),
		PublicKeyPEM:  []byte(c.PublicKey),
	}
}

func compact(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
