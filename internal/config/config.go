package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration, loaded once from the environment.
type Config struct {
	ServerPort  string
	Environment string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	RedisAddress string

	JWTSecret string

	SESFromEmail string
	SESRegion    string

	// StrictReject requires a request to be pending before it can be
	// rejected. The source system allowed rejecting already-handled
	// requests; the guard is behind this flag pending product sign-off.
	StrictReject bool

	CORSOrigins []string
}

// Load reads configuration from the environment, loading configs/.env first
// if present. Missing values fall back to development defaults.
func Load() Config {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		if os.Getenv("GIN_MODE") == "release" {
			panic("FATAL: JWT_SECRET environment variable is required in production mode")
		}
		secret = "default_super_secret_key" // Development fallback only
	}

	return Config{
		ServerPort:   getEnv("PORT", "8080"),
		Environment:  getEnv("ENV", "development"),
		DBHost:       getEnv("DB_HOST", "localhost"),
		DBPort:       getEnv("DB_PORT", "5432"),
		DBUser:       getEnv("DB_USER", "postgres"),
		DBPassword:   getEnv("DB_PASSWORD", "postgres"),
		DBName:       getEnv("DB_NAME", "buildsite"),
		DBSSLMode:    getEnv("DB_SSLMODE", "disable"),
		RedisAddress: getEnv("REDIS_ADDRESS", "localhost:6379"),
		JWTSecret:    secret,
		SESFromEmail: os.Getenv("SES_FROM_EMAIL"),
		SESRegion:    getEnv("SES_AWS_REGION", "ap-south-1"),
		StrictReject: os.Getenv("STRICT_REJECT") == "true",
		CORSOrigins: []string{
			getEnv("FRONTEND_ORIGIN", "http://localhost:5173"),
			"http://127.0.0.1:5173",
		},
	}
}

// DSN assembles the Postgres connection string.
func (c Config) DSN() string {
	return "postgres://" + c.DBUser + ":" + c.DBPassword + "@" + c.DBHost + ":" + c.DBPort +
		"/" + c.DBName + "?sslmode=" + c.DBSSLMode
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
