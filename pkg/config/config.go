package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultEnv            = "development"
	defaultIssuer         = "referanslar.github.io"
	defaultStoreTTL       = 86400 * time.Second
	defaultDotEnvPath     = ".env"
	productionEnvironment = "production"
)

type Config struct {
	Env      string
	Port     string
	LogLevel string

	DatabaseURL string

	RedisHost     string
	RedisPort     int
	RedisPassword string

	TokenIssuer string

	AccessTokenSecret string
	AccessTokenTTL    time.Duration

	RefreshTokenSecret string
	RefreshTokenTTL    time.Duration
	// RefreshStoreTTL is how long Redis keeps the live refresh token.
	// It is independent from RefreshTokenTTL, which is the exp claim.
	RefreshStoreTTL time.Duration
}

func (c *Config) IsProduction() bool {
	return c.Env == productionEnvironment
}

func (c *Config) ListenAddr() string {
	return ":" + c.Port
}

func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// Load reads .env (when present) and the process environment. Every missing
// or malformed variable is reported in the returned error.
func Load() (*Config, error) {
	if err := godotenv.Load(defaultDotEnvPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: read %s: %w", defaultDotEnvPath, err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from the given lookup function.
func FromEnv(getenv func(string) string) (*Config, error) {
	r := reader{getenv: getenv}

	cfg := &Config{
		Env:                r.optional("APP_ENV", defaultEnv),
		Port:               r.required("PORT"),
		LogLevel:           r.optional("LOG_LEVEL", ""),
		DatabaseURL:        r.required("DATABASE_URL"),
		RedisHost:          r.required("REDIS_HOST"),
		RedisPort:          r.requiredInt("REDIS_PORT"),
		RedisPassword:      r.optional("REDIS_PASSWORD", ""),
		TokenIssuer:        r.optional("TOKEN_ISSUER", defaultIssuer),
		AccessTokenSecret:  r.required("ACCESS_TOKEN_SECRET"),
		AccessTokenTTL:     r.requiredExpiry("ACCESS_TOKEN_EXPIRATION"),
		RefreshTokenSecret: r.required("REFRESH_TOKEN_SECRET"),
		RefreshTokenTTL:    r.requiredExpiry("REFRESH_TOKEN_EXPIRATION"),
		RefreshStoreTTL:    r.optionalExpiry("REFRESH_TOKEN_STORE_TTL", defaultStoreTTL),
	}

	if len(r.problems) > 0 {
		return nil, fmt.Errorf("config: %s", strings.Join(r.problems, "; "))
	}
	return cfg, nil
}

type reader struct {
	getenv   func(string) string
	problems []string
}

func (r *reader) required(key string) string {
	value := strings.TrimSpace(r.getenv(key))
	if value == "" {
		r.problems = append(r.problems, "missing required environment variable "+key)
	}
	return value
}

func (r *reader) optional(key, fallback string) string {
	if value := strings.TrimSpace(r.getenv(key)); value != "" {
		return value
	}
	return fallback
}

func (r *reader) requiredInt(key string) int {
	raw := r.required(key)
	if raw == "" {
		return 0
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		r.problems = append(r.problems, fmt.Sprintf("invalid int for %s: %q", key, raw))
	}
	return value
}

func (r *reader) requiredExpiry(key string) time.Duration {
	raw := r.required(key)
	if raw == "" {
		return 0
	}
	d, err := ParseExpiry(raw)
	if err != nil {
		r.problems = append(r.problems, fmt.Sprintf("invalid expiry for %s: %v", key, err))
	}
	return d
}

func (r *reader) optionalExpiry(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(r.getenv(key))
	if raw == "" {
		return fallback
	}
	d, err := ParseExpiry(raw)
	if err != nil {
		r.problems = append(r.problems, fmt.Sprintf("invalid expiry for %s: %v", key, err))
	}
	return d
}

// ParseExpiry accepts Go durations ("15m", "24h"), a day suffix ("7d") and
// bare integers, which are seconds.
func ParseExpiry(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, errors.New("empty expiry")
	}

	var (
		d   time.Duration
		err error
	)
	switch {
	case isDigits(raw):
		d, err = scaledExpiry(raw, raw, time.Second)
	case strings.HasSuffix(raw, "d") && isDigits(strings.TrimSuffix(raw, "d")):
		d, err = scaledExpiry(raw, strings.TrimSuffix(raw, "d"), 24*time.Hour)
	default:
		d, err = time.ParseDuration(raw)
	}
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("expiry must be positive, got %q", raw)
	}
	return d, nil
}

func scaledExpiry(raw, digits string, unit time.Duration) (time.Duration, error) {
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || n > math.MaxInt64/int64(unit) {
		return 0, fmt.Errorf("expiry too large, got %q", raw)
	}
	return time.Duration(n) * unit, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
