package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultAuthURL   = "https://api.digikey.com/v1/oauth2/token"
	DefaultSearchURL = "https://api.digikey.com/products/v4/search/keyword"
	DefaultGenURL    = "ws://127.0.0.1:8765"
)

type Config struct {
	// Catalog API. Credentials come from the environment only; there are
	// no fallback values.
	CatalogClientID     string
	CatalogClientSecret string
	CatalogAuthURL      string
	CatalogSearchURL    string

	// Generation service.
	GenServerURL   string
	GenModel       string
	GenTemperature float32

	// Web app.
	HTTPAddr    string
	DBPath      string
	MetricsPort string

	// Dev generation server only.
	OpenAIKey string

	JWTSecret   string
	JWTIssuer   string
	JWTDuration time.Duration
}

func Load() *Config {
	// .env in the working directory, if present; real deployments set
	// the environment directly.
	_ = godotenv.Load()

	return &Config{
		CatalogClientID:     os.Getenv("CLAP_CATALOG_CLIENT_ID"),
		CatalogClientSecret: os.Getenv("CLAP_CATALOG_CLIENT_SECRET"),
		CatalogAuthURL:      getEnv("CLAP_CATALOG_AUTH_URL", DefaultAuthURL),
		CatalogSearchURL:    getEnv("CLAP_CATALOG_SEARCH_URL", DefaultSearchURL),
		GenServerURL:        getEnv("MCP_SERVER_URL", DefaultGenURL),
		GenModel:            getEnv("CLAP_GEN_MODEL", "gpt-4o-mini"),
		GenTemperature:      0.2,
		HTTPAddr:            getEnv("CLAP_HTTP_ADDR", ":8080"),
		DBPath:              os.Getenv("CLAP_DB_PATH"),
		MetricsPort:         getEnv("CLAP_METRICS_PORT", "9090"),
		OpenAIKey:           os.Getenv("OPENAI_API_KEY"),
		JWTSecret:           getEnv("CLAP_JWT_SECRET", "dev-secret-change-me"),
		JWTIssuer:           getEnv("CLAP_JWT_ISSUER", "clapclient"),
		JWTDuration:         jwtTTL(),
	}
}

func getEnv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

// jwtTTL reads CLAP_JWT_TTL_HOURS; falls back to 24h on missing or bad
// values.
func jwtTTL() time.Duration {
	raw := os.Getenv("CLAP_JWT_TTL_HOURS")
	if raw == "" {
		return 24 * time.Hour
	}
	hours, err := strconv.Atoi(raw)
	if err != nil || hours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(hours) * time.Hour
}
