package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds every setting the server reads from the environment.
type Config struct {
	Port            string
	Env             string
	LogLevel        string
	DBDriver        string
	DatabaseURL     string
	JWTSecret       string
	TokenTTL        time.Duration
	RedisURL        string
	CORSOrigins     []string
	SellerReward    int
	BuyerReward     int
	ShutdownTimeout time.Duration
}

// LoadEnvFile copies the variables in the .env files at paths (".env" when
// none are given) into the process environment. Variables already set win.
func LoadEnvFile(paths ...string) error {
	return godotenv.Load(paths...)
}

// FromEnv builds a Config from the process environment.
func FromEnv() (*Config, error) {
	var err error
	cfg := &Config{
		Port:        getenv("SERVER_PORT", "8080"),
		Env:         getenv("APP_ENV", "production"),
		LogLevel:    getenv("LOG_LEVEL", "info"),
		DBDriver:    strings.ToLower(getenv("DB_DRIVER", DriverPostgres)),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		RedisURL:    os.Getenv("REDIS_URL"),
		CORSOrigins: splitList(getenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = postgresURL()
	}

	if cfg.TokenTTL, err = durationEnv("TOKEN_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = durationEnv("SHUTDOWN_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.SellerReward, err = intEnv("ECO_SCORE_SELLER", 5); err != nil {
		return nil, err
	}
	if cfg.BuyerReward, err = intEnv("ECO_SCORE_BUYER", 3); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.DBDriver != DriverPostgres && c.DBDriver != DriverMemory {
		return fmt.Errorf("DB_DRIVER must be %q or %q, got %q", DriverPostgres, DriverMemory, c.DBDriver)
	}
	if c.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}
	return nil
}

// postgresURL assembles a connection URL from the DB_* variables.
func postgresURL() string {
	u := url.URL{
		Scheme: "postgres",
		Host:   getenv("DB_HOST", "localhost") + ":" + getenv("DB_PORT", "5432"),
		Path:   "/" + getenv("DB_NAME", "leafloop"),
	}
	user := getenv("DB_USER", "postgres")
	if pw := os.Getenv("DB_PASSWORD"); pw != "" {
		u.User = url.UserPassword(user, pw)
	} else {
		u.User = url.User(user)
	}
	u.RawQuery = "sslmode=" + getenv("DB_SSLMODE", "disable")
	return u.String()
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func intEnv(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
