package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	LambdaHandler    string
	SnowflakeNode    int64
	SeedSampleMeters bool

	OTLPEndpoint   string
	MetricsEnabled bool

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBPath            string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int
	DBLogLevel        string
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	environment := getenv("ENVIRONMENT", "development")

	cfg := Config{
		AppName:           getenv("APP_SERVICE", "metr"),
		AppVersion:        getenv("APP_VERSION", "0.1.0"),
		Environment:       environment,
		HTTPAddr:          getenv("HTTP_ADDR", ":8080"),
		LambdaHandler:     normalizeHandler(getenv("LAMBDA_HANDLER", HandlerRouter)),
		SnowflakeNode:     getenvInt64("SNOWFLAKE_NODE", 1),
		SeedSampleMeters:  getenvBool("SEED_SAMPLE_METERS", false),
		OTLPEndpoint:      getenv("OTLP_ENDPOINT", "localhost:4317"),
		MetricsEnabled:    getenvBool("METRICS_ENABLED", true),
		DBType:            strings.ToLower(getenv("DATABASE_TYPE", "postgres")),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "metr"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBPath:            getenv("DATABASE_PATH", "metr.db"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 2),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 5),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 300),
		DBConnMaxIdleTime: getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 60),
		DBLogLevel:        getenv("DATABASE_LOG_LEVEL", "warn"),
	}

	return cfg
}

// Lambda handler selectors. A function deployed per route picks one of the
// verb handlers; a single function behind a catch-all route uses the router.
const (
	HandlerRouter = "router"
	HandlerList   = "list"
	HandlerGet    = "get"
	HandlerCreate = "create"
	HandlerUpdate = "update"
	HandlerDelete = "delete"
)

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func normalizeHandler(raw string) string {
	value := strings.ToLower(strings.TrimSpace(raw))
	switch value {
	case HandlerList, HandlerGet, HandlerCreate, HandlerUpdate, HandlerDelete:
		return value
	default:
		return HandlerRouter
	}
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvInt64(key string, def int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return def
	}
	return parsed
}
