package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable. Both JWT secrets are required and the process
// refuses to start without them; token lifetimes fall back to 7 days for
// access tokens and 30 days for refresh tokens.
type Config struct {
	Env            string        // application environment (e.g. "dev", "prod")
	Port           string        // HTTP port to listen on
	DBUser         string        // database username
	DBPass         string        // database password (optional)
	DBHost         string        // database host address
	DBPort         string        // database port number
	DBName         string        // database name
	DBMaxOpen      int           // connection pool ceiling
	DBMaxIdle      int           // idle connections kept around
	DBConnLifetime time.Duration // recycle connections after this long
	AccessSecret   string        // secret used to sign access tokens
	RefreshSecret  string        // secret used to sign refresh tokens
	AccessTTL      time.Duration // access token lifetime
	RefreshTTL     time.Duration // refresh token lifetime
	BcryptCost     int           // bcrypt cost for password hashing
}

// MinioConfig holds connection settings for the S3-compatible object store
// used for file attachments. File storage is optional: when Endpoint is
// empty the file routes are not registered.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Load reads configuration values from environment variables and returns a
// Config. A .env file is honored when present. Required variables are
// enforced by must() and missing values cause the program to exit with a
// fatal log message.
func Load() Config {
	_ = godotenv.Load() // best effort; real env always wins

	return Config{
		Env:            getenv("APP_ENV", "dev"),
		Port:           getenv("APP_PORT", "5000"),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"),
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		DBMaxOpen:      envInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdle:      envInt("DB_MAX_IDLE_CONNS", 25),
		DBConnLifetime: envDur("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		AccessSecret:   must("JWT_SECRET"),
		RefreshSecret:  must("JWT_REFRESH_SECRET"),
		AccessTTL:      envDays("JWT_EXPIRE", 7*24*time.Hour),
		RefreshTTL:     envDays("JWT_REFRESH_EXPIRE", 30*24*time.Hour),
		BcryptCost:     envInt("BCRYPT_COST", 12),
	}
}

// LoadMinio reads object store settings. Unlike Load it never exits: an
// unset MINIO_ENDPOINT simply disables file storage.
func LoadMinio() MinioConfig {
	return MinioConfig{
		Endpoint:  os.Getenv("MINIO_ENDPOINT"),
		AccessKey: getenv("MINIO_ACCESS_KEY", "minioadmin"),
		SecretKey: getenv("MINIO_SECRET_KEY", "minioadmin"),
		Bucket:    getenv("MINIO_BUCKET", "crm-files"),
		UseSSL:    envBool("MINIO_USE_SSL", false),
	}
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, v)
	}
	return n
}

// envDays parses a token lifetime. A bare number or an "Nd" value is
// treated as days so configs written as "7", "7d" or "30d" keep working;
// anything else must be a Go duration string ("168h", "30m").
func envDays(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if n, err := strconv.Atoi(strings.TrimSuffix(v, "d")); err == nil {
		return time.Duration(n) * 24 * time.Hour
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Fatalf("invalid duration for %s: %q", key, v)
	}
	return d
}

func envDur(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func envBool(key string, def bool) bool {
	switch os.Getenv(key) {
	case "1", "true", "TRUE", "True", "yes", "on":
		return true
	case "0", "false", "FALSE", "False", "no", "off":
		return false
	}
	return def
}
