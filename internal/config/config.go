package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port            int
	DBDSN           string
	BaseURL         string // used for returning absolute short URLs
	CreateRateRPS   float64
	CreateRateBurst int
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getint(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getfloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			return n
		}
	}
	return def
}

func Load() Config {
	_ = godotenv.Load() // best-effort; no .env in prod is fine

	return Config{
		Port:            getint("PORT", 8080),
		DBDSN:           getenv("DB_DSN", "file:shortlink.db?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL"),
		BaseURL:         getenv("BASE_URL", ""),
		CreateRateRPS:   getfloat("CREATE_RATE_RPS", 2.0),
		CreateRateBurst: getint("CREATE_RATE_BURST", 5),
	}
}
