package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rentguard/rentguard/internal/db"
	"github.com/rentguard/rentguard/internal/services"
)

const (
	defaultPort          = "8080"
	defaultFreeTierLimit = 2
	minSecretKeyLength   = 32

	// DefaultRateTable is an illustrative annual CPI sequence, not a live feed.
	DefaultRateTable = "64.77,44.38"
)

var insecureSecretKeys = map[string]struct{}{
	"change_me_in_production":                    {},
	"replace_with_at_least_32_random_characters": {},
	"secret":                                     {},
}

type Config struct {
	Port            string
	Location        *time.Location
	SecretKey       string
	DBDriver        string
	DBPath          string
	DatabaseURL     string
	FreeTierLimit   int
	Rates           services.StaticRateTable
	DayOverflow     services.DayOverflowPolicy
	CookieSecure    bool
	DefaultLanguage string
	AllowedOrigins  string
	RedisAddr       string
	RedisPassword   string
	KafkaBrokers    []string
	KafkaPrefix     string
}

// Load reads .env when present and resolves every option once.
func Load() (Config, error) {
	loadDotEnv()
	return FromEnv()
}

// LoadDatabaseOnly resolves just the storage options, for operator commands
// that never sign tokens.
func LoadDatabaseOnly() (Config, error) {
	loadDotEnv()
	return databaseFromEnv()
}

func loadDotEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("config: .env not loaded: %v", err)
	}
}

func databaseFromEnv() (Config, error) {
	cfg := Config{
		DBDriver:    strings.ToLower(getEnv("DB_DRIVER", db.DriverSQLite)),
		DBPath:      getEnv("DB_PATH", filepath.Join("data", "rentguard.db")),
		DatabaseURL: getEnv("DATABASE_URL", ""),
	}
	if err := validateDriver(cfg.DBDriver); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func FromEnv() (Config, error) {
	cfg, err := databaseFromEnv()
	if err != nil {
		return Config{}, err
	}

	if cfg.Port, err = resolvePort(); err != nil {
		return Config{}, err
	}
	if cfg.SecretKey, err = resolveSecretKey(); err != nil {
		return Config{}, err
	}
	if cfg.FreeTierLimit, err = resolveFreeTierLimit(); err != nil {
		return Config{}, err
	}
	if cfg.Rates, err = services.ParseRateTable(getEnv("HISTORICAL_RATE_TABLE", DefaultRateTable)); err != nil {
		return Config{}, fmt.Errorf("HISTORICAL_RATE_TABLE: %w", err)
	}
	if cfg.DayOverflow, err = services.ParseDayOverflowPolicy(os.Getenv("PAYMENT_DAY_OVERFLOW")); err != nil {
		return Config{}, fmt.Errorf("PAYMENT_DAY_OVERFLOW: %w", err)
	}
	if cfg.CookieSecure, err = parseBoolEnv("COOKIE_SECURE", false); err != nil {
		return Config{}, err
	}

	cfg.Location = loadLocation(getEnv("TZ", "UTC"))
	cfg.DefaultLanguage = getEnv("DEFAULT_LANGUAGE", "tr")
	cfg.AllowedOrigins = strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS"))
	cfg.RedisAddr = strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	cfg.KafkaBrokers = splitList(os.Getenv("KAFKA_BROKERS"))
	cfg.KafkaPrefix = getEnv("KAFKA_TOPIC_PREFIX", "rentguard.")
	return cfg, nil
}

func resolveSecretKey() (string, error) {
	secret := strings.TrimSpace(os.Getenv("SECRET_KEY"))
	if secret == "" {
		return "", errors.New("SECRET_KEY is required")
	}
	if _, insecure := insecureSecretKeys[strings.ToLower(secret)]; insecure {
		return "", errors.New("SECRET_KEY uses an insecure placeholder value")
	}
	if len(secret) < minSecretKeyLength {
		return "", fmt.Errorf("SECRET_KEY must be at least %d characters", minSecretKeyLength)
	}
	return secret, nil
}

func resolvePort() (string, error) {
	raw := strings.TrimSpace(getEnv("PORT", defaultPort))
	port, err := strconv.Atoi(raw)
	if err != nil {
		return "", fmt.Errorf("PORT must be numeric: %w", err)
	}
	if port < 1 || port > 65535 {
		return "", fmt.Errorf("PORT must be between 1 and 65535, got %d", port)
	}
	return strconv.Itoa(port), nil
}

// resolveFreeTierLimit treats 0 as no limit.
func resolveFreeTierLimit() (int, error) {
	raw := strings.TrimSpace(os.Getenv("FREE_TIER_LIMIT"))
	if raw == "" {
		return defaultFreeTierLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, fmt.Errorf("FREE_TIER_LIMIT must be a non-negative integer, got %q", raw)
	}
	return limit, nil
}

func validateDriver(driver string) error {
	switch driver {
	case db.DriverSQLite, db.DriverPostgres:
		return nil
	default:
		return fmt.Errorf("DB_DRIVER must be %q or %q, got %q", db.DriverSQLite, db.DriverPostgres, driver)
	}
}

func parseBoolEnv(key string, fallback bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	return value, nil
}

func loadLocation(name string) *time.Location {
	location, err := time.LoadLocation(name)
	if err != nil {
		log.Printf("invalid TZ %q, falling back to UTC", name)
		return time.UTC
	}
	return location
}

func splitList(raw string) []string {
	items := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		if item := strings.TrimSpace(part); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func getEnv(key string, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}
