package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// SeedUser describes one account created at startup when the users table is
// empty.
type SeedUser struct {
	Name     string
	Password string
	Role     string
}

// Config holds all runtime settings, read once from the environment.
type Config struct {
	ServerPort string

	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret    string
	JWTExpiresIn time.Duration

	// AllowedOrigins is the CORS allowlist. Empty means same-origin only;
	// there is deliberately no wildcard fallback.
	AllowedOrigins []string

	RateLimitEnabled bool
	UserRatePerSec   int
	UserBurst        int

	Environment string

	SeedUsers []SeedUser
}

// Load reads configuration from the environment, with an optional .env file
// for local development.
func Load() *Config {
	if err := godotenv.Load(); err == nil {
		log.Println("loaded configuration from .env")
	}

	cfg := &Config{
		ServerPort: getEnv("SERVER_PORT", "8090"),

		DBUser:     getEnv("DB_USER", "voteuser"),
		DBPassword: getEnv("DB_PASSWORD", "votepassword"),
		DBHost:     getEnv("DB_HOST", "mysql"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBName:     getEnv("DB_NAME", "votappdb"),

		RedisAddr:     getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		JWTSecret:    getEnv("JWT_SECRET", ""),
		JWTExpiresIn: getEnvDuration("JWT_EXPIRES_IN", 7*24*time.Hour),

		RateLimitEnabled: getEnv("ENABLE_RATE_LIMIT", "false") == "true",
		UserRatePerSec:   getEnvInt("USER_RATE_LIMIT", 10),
		UserBurst:        getEnvInt("USER_RATE_BURST", 20),

		Environment: getEnv("ENVIRONMENT", "development"),
	}

	if origins := getEnv("ALLOWED_ORIGINS", "http://localhost:5173"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
			}
		}
	}

	cfg.SeedUsers = []SeedUser{
		{Name: getEnv("SEED_ADMIN_USER", "admin"), Password: getEnv("SEED_ADMIN_PASSWORD", "admin123"), Role: "admin"},
		{Name: getEnv("SEED_VOTER1_USER", "voter1"), Password: getEnv("SEED_VOTER1_PASSWORD", "voter123"), Role: "voter"},
		{Name: getEnv("SEED_VOTER2_USER", "voter2"), Password: getEnv("SEED_VOTER2_PASSWORD", "voter123"), Role: "voter"},
	}

	return cfg
}

// IsDevelopment reports whether the process runs in the development posture.
// Error responses include internal detail only in development.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("invalid integer in %s: %v, using default", key, err)
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("invalid duration in %s: %v, using default", key, err)
		return defaultValue
	}
	return d
}
