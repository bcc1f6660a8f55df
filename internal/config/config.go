package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port     string
	DBDSN    string
	LogFile  string
	LogLevel string

	Auth AuthConfig

	AllowedOrigins      []string
	RateLimitPerMin     int
	AuthRateLimitPerMin int
	BodyLimitBytes      int
	ReconcileSchedule   string
}

type AuthConfig struct {
	Mode string // firebase | jwt

	FirebaseProjectID       string
	FirebaseCredentialsPath string

	JWTSigningKey string
	JWTIssuer     string
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() Config {
	if err := godotenv.Load(); err == nil {
		log.Printf("[config] loaded .env")
	}

	cfg := Config{
		Port:     getEnv("PORT", "5000"),
		DBDSN:    getEnv("DB_DSN", "localbazaar.db"),
		LogFile:  getEnv("LOG_FILE", ""),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Auth: AuthConfig{
			Mode:                    strings.ToLower(getEnv("AUTH_MODE", "jwt")),
			FirebaseProjectID:       getEnv("FIREBASE_PROJECT_ID", ""),
			FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
			JWTSigningKey:           getEnv("JWT_SIGNING_KEY", ""),
			JWTIssuer:               getEnv("JWT_ISSUER", "localbazaar"),
		},
		AllowedOrigins:      splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:8081,http://localhost:19006")),
		RateLimitPerMin:     getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
		AuthRateLimitPerMin: getEnvInt("AUTH_RATE_LIMIT_PER_MINUTE", 20),
		BodyLimitBytes:      getEnvInt("BODY_LIMIT_BYTES", 1<<20),
		ReconcileSchedule:   getEnv("RECONCILE_SCHEDULE", "@every 6h"),
	}
	log.Printf("[config] PORT=%s DB_DSN=%s AUTH_MODE=%s LOG_LEVEL=%s", cfg.Port, cfg.DBDSN, cfg.Auth.Mode, cfg.LogLevel)
	return cfg
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
