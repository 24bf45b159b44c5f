package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config contains runtime configuration values.
type Config struct {
	Environment string
	HTTPAddr    string
	LogLevel    string

	DatabaseURL          string
	DBMaxOpenConns       int
	DBMaxIdleConns       int
	DBConnMaxLifetime    time.Duration
	DBAutoMigrate        bool
	DBSlowQueryThreshold time.Duration

	RateLimitRPM       int
	CORSAllowedOrigins []string
	// Proxies whose X-Forwarded-For is believed. Empty means the socket
	// address is the client.
	TrustedProxies []string

	GeminiAPIKey string
	GeminiModel  string

	GmailCredentialsFile string
	GmailTokenFile       string
	MailFrom             string

	ResumeBucket      string
	ResumeS3Region    string
	ResumeS3Endpoint  string
	ResumeS3PathStyle bool
	ResumeURLTTL      time.Duration
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Environment: getEnv("APP_ENV", "development"),
		HTTPAddr:    getEnv("HTTP_ADDR", ":8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		DatabaseURL:          strings.TrimSpace(os.Getenv("DATABASE_URL")),
		DBMaxOpenConns:       getInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:       getInt("DB_MAX_IDLE_CONNS", 10),
		DBConnMaxLifetime:    getDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		DBAutoMigrate:        getBool("DB_AUTO_MIGRATE", true),
		DBSlowQueryThreshold: getDuration("DB_SLOW_QUERY_THRESHOLD", 200*time.Millisecond),

		RateLimitRPM:       getInt("RATE_LIMIT_RPM", 600),
		CORSAllowedOrigins: getList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		TrustedProxies:     getList("TRUSTED_PROXIES", nil),

		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),

		GmailCredentialsFile: os.Getenv("GMAIL_CREDENTIALS_FILE"),
		GmailTokenFile:       getEnv("GMAIL_TOKEN_FILE", "token.json"),
		MailFrom:             os.Getenv("MAIL_FROM"),

		ResumeBucket:      os.Getenv("RESUME_BUCKET"),
		ResumeS3Region:    getEnv("RESUME_S3_REGION", "us-east-1"),
		ResumeS3Endpoint:  os.Getenv("RESUME_S3_ENDPOINT"),
		ResumeS3PathStyle: getBool("RESUME_S3_PATH_STYLE", false),
		ResumeURLTTL:      getDuration("RESUME_URL_TTL", 15*time.Minute),
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.DBMaxIdleConns > cfg.DBMaxOpenConns {
		cfg.DBMaxIdleConns = cfg.DBMaxOpenConns
	}

	return cfg, nil
}

func (c Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return def
}

func getInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getBool(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		switch strings.ToLower(v) {
		case "1", "true", "t", "yes", "y", "on":
			return true
		case "0", "false", "f", "no", "n", "off":
			return false
		}
	}
	return def
}

func getList(key string, def []string) []string {
	if v, ok := os.LookupEnv(key); ok {
		var cleaned []string
		for _, p := range strings.Split(v, ",") {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				cleaned = append(cleaned, trimmed)
			}
		}
		if len(cleaned) > 0 {
			return cleaned
		}
	}
	return def
}
