package config // package config loads application configuration from environment variables

import (
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration values. Each field corresponds
// to an environment variable. Secrets for external dependencies (the
// database, the OpenAI key) are allowed to be absent: the service still
// starts and the endpoints that need the missing dependency answer 500,
// which keeps the health endpoint and the remaining surface alive.
type Config struct {
	Env  string // application environment (e.g. "dev", "prod")
	Port string // HTTP port to listen on

	DBUser string // database username
	DBPass string // database password (optional)
	DBHost string // database host address; empty disables the user store
	DBPort string // database port number
	DBName string // database name

	OpenAIKey   string        // API key for the text-generation backend; empty disables generation
	OpenAIBase  string        // base URL of the OpenAI-compatible API
	OpenAIModel string        // chat model used for comment generation
	GenTimeout  time.Duration // upper bound for one generation call

	JWTSecret    string // secret used to sign login tokens
	AccessTTLMin int    // access token time-to-live in minutes
	BcryptCost   int    // bcrypt cost for password hashing
}

// Load reads configuration from environment variables, applying defaults
// for everything that has a sensible one.
func Load() Config {
	return Config{
		Env:  envStr("APP_ENV", "dev"),
		Port: envStr("APP_PORT", "8080"),

		DBUser: os.Getenv("DB_USER"),
		DBPass: os.Getenv("DB_PASS"),
		DBHost: os.Getenv("DB_HOST"),
		DBPort: envStr("DB_PORT", "3306"),
		DBName: envStr("DB_NAME", "linkedin_proxy"),

		OpenAIKey:   os.Getenv("OPENAI_API_KEY"),
		OpenAIBase:  envStr("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIModel: envStr("OPENAI_MODEL", "gpt-3.5-turbo"),
		GenTimeout:  envDur("GENERATION_TIMEOUT", 30*time.Second),

		JWTSecret:    os.Getenv("JWT_SECRET"),
		AccessTTLMin: envInt("ACCESS_TOKEN_TTL_MIN", 60),
		BcryptCost:   envInt("BCRYPT_COST", 10),
	}
}

// env helpers shared across the config package.

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envBool(k string, d bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	switch v {
	case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
		return false
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	return d
}
