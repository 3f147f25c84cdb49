package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr      string
	Data      DataConfig
	Query     QueryConfig
	Estimates EstimatesConfig
	Fetch     FetchConfig
	Scheduler SchedulerConfig
	Finder    FinderConfig
	Markets   MarketsConfig
	LogLevel  string
}

type DataConfig struct {
	File    string
	TTL     time.Duration
	MaxRows int
}

type QueryConfig struct {
	HardMinPrice float64
}

// EstimatesConfig parameterizes the rent/NOI back-fill used when a
// spreadsheet row has no rent or NOI figure of its own.
type EstimatesConfig struct {
	RentBase     float64
	RentPerBed   float64
	FallbackBeds float64
	ExpenseRatio float64
}

type FetchConfig struct {
	Timeout  time.Duration
	ProxyURL string
}

type SchedulerConfig struct {
	Cron     string
	Interval time.Duration
}

type FinderConfig struct {
	Enabled bool
}

type MarketsConfig struct {
	Dir     string
	Default string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Addr: getEnv("ADDR", ":8080"),
		Data: DataConfig{
			File:    getEnv("DATA_FILE", "data/listings.xlsx"),
			TTL:     getEnvDuration("CACHE_TTL", time.Hour),
			MaxRows: getEnvInt("MAX_ROWS", 8000),
		},
		Query: QueryConfig{
			HardMinPrice: getEnvFloat("HARD_MIN_PRICE", 200000),
		},
		Estimates: EstimatesConfig{
			RentBase:     getEnvFloat("RENT_BASE", 1200),
			RentPerBed:   getEnvFloat("RENT_PER_BED", 700),
			FallbackBeds: getEnvFloat("RENT_FALLBACK_BEDS", 2),
			ExpenseRatio: getEnvFloat("EXPENSE_RATIO", 0.35),
		},
		Fetch: FetchConfig{
			Timeout:  getEnvDuration("FETCH_TIMEOUT", 15*time.Second),
			ProxyURL: os.Getenv("PROXY_URL"),
		},
		Scheduler: SchedulerConfig{
			Cron: os.Getenv("REFRESH_CRON"),
		},
		Finder: FinderConfig{
			Enabled: os.Getenv("FINDER_ENABLED") == "true",
		},
		Markets: MarketsConfig{
			Dir:     getEnv("MARKETS_DIR", "config/markets"),
			Default: getEnv("MARKET", "canada"),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	if interval := os.Getenv("REFRESH_INTERVAL"); interval != "" {
		if d, err := time.ParseDuration(interval); err == nil {
			cfg.Scheduler.Interval = d
		}
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
