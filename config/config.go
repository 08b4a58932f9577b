package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort int
	CORSOrigin string
	Database   DatabaseConfig
	JWT        JWTConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	UseSSL   bool
}

// JWTConfig holds token signing settings. All three values are required;
// the server refuses to start without them.
type JWTConfig struct {
	Secret   string
	Issuer   string
	Audience string
}

func LoadConfig() Config {
	if os.Getenv("ENV") == "dev" {
		godotenv.Load()
	}

	dbConfig := DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnvInt("DB_PORT", 5432),
		User:     getEnv("DB_USER", "authapi"),
		Password: getEnv("DB_PASSWORD", "password"),
		DBName:   getEnv("DB_NAME", "authapi_db"),
		UseSSL:   getEnv("DB_SSL", "false") == "true",
	}

	jwtConfig := JWTConfig{
		Secret:   getEnv("JWT_SECRET", ""),
		Issuer:   getEnv("JWT_ISSUER", ""),
		Audience: getEnv("JWT_AUDIENCE", ""),
	}

	return Config{
		ServerPort: getEnvInt("SERVER_PORT", 8080),
		CORSOrigin: getEnv("CORS_ORIGIN", "http://localhost:5173"),
		Database:   dbConfig,
		JWT:        jwtConfig,
	}
}

// Validate reports missing required settings. A failure here is fatal at
// startup; the server must not begin serving traffic without a signing key.
func (c Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.JWT.Issuer == "" {
		return errors.New("JWT_ISSUER is required")
	}
	if c.JWT.Audience == "" {
		return errors.New("JWT_AUDIENCE is required")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		var value int
		fmt.Sscanf(valueStr, "%d", &value)
		return value
	}
	return defaultValue
}
