package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port        string
	Environment string

	DBDriver string
	DBURL    string

	// Identity boundary. With Auth0Domain set tokens are verified against the
	// tenant's JWKS, otherwise HS256 with JWTSecret.
	JWTSecret     string
	Auth0Domain   string
	Auth0Audience string
	TokenIssuer   string

	CORSOrigins []string

	RedisAddr   string
	RedisPrefix string
	CacheTTL    time.Duration

	CollationLocale     string
	SharedDirectoryName string
}

func (c *Config) IsDevelopment() bool {
	return c.Environment != "prod" && c.Environment != "production"
}

func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "dev"),

		DBDriver: strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DBURL:    getEnv("DB_URL", ""),

		JWTSecret:     getEnv("JWT_SECRET_KEY", ""),
		Auth0Domain:   getEnv("AUTH0_DOMAIN", ""),
		Auth0Audience: getEnv("AUTH0_AUDIENCE", "workbook-api"),
		TokenIssuer:   getEnv("TOKEN_ISSUER", "workbook-api"),

		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),

		RedisAddr:   getEnv("REDIS_ADDR", ""),
		RedisPrefix: getEnv("REDIS_PREFIX", "workbook:"),
		CacheTTL:    time.Duration(getEnvInt("CACHE_TTL_SECONDS", 300)) * time.Second,

		CollationLocale:     getEnv("COLLATION_LOCALE", "ja"),
		SharedDirectoryName: getEnv("SHARED_DIRECTORY_NAME", "Shared Items"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(v)
	if err != nil || i < 0 {
		return defaultValue
	}
	return i
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
