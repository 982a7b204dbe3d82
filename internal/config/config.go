package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is everything the server reads from the environment.
type Config struct {
	Port              string
	DatabasePath      string
	LogLevel          string
	LogFormat         string
	MatchTimeout      time.Duration
	ReconcileParallel int
	ClientCacheTTL    time.Duration
	CumulativeActuals bool
	PipelineTemplates string
	APIKey            string
	APIKeyHash        string
	JWTSecret         string
	AppEnv            string
	DevBypassToken    string
}

// Load reads .env files (missing files are fine) and then the process environment.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		_ = godotenv.Load(f)
	}

	cfg := Config{
		Port:              getenv("PORT", "8765"),
		DatabasePath:      getenv("DATABASE_PATH", filepath.Join("data", "staffing.db")),
		LogLevel:          getenv("LOG_LEVEL", "info"),
		LogFormat:         getenv("LOG_FORMAT", "text"),
		PipelineTemplates: os.Getenv("PIPELINE_TEMPLATES"),
		APIKey:            os.Getenv("VANGUARD_API_KEY"),
		APIKeyHash:        os.Getenv("VANGUARD_API_KEY_HASH"),
		JWTSecret:         getenv("JWT_SECRET", "dev_jwt_secret_super_secure"),
		AppEnv:            os.Getenv("APP_ENV"),
		DevBypassToken:    os.Getenv("DEV_BYPASS_TOKEN"),
	}

	var err error
	if cfg.MatchTimeout, err = durationEnv("MATCH_TIMEOUT", 5*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.ClientCacheTTL, err = durationEnv("CLIENT_CACHE_TTL", 10*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.ReconcileParallel, err = intEnv("RECONCILE_PARALLEL", 4); err != nil {
		return Config{}, err
	}
	if cfg.ReconcileParallel < 1 {
		return Config{}, fmt.Errorf("RECONCILE_PARALLEL must be at least 1, got %d", cfg.ReconcileParallel)
	}
	if cfg.CumulativeActuals, err = boolEnv("CUMULATIVE_ACTUALS", true); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func intEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func boolEnv(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}
