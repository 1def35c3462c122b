package config

import (
	"os"
	"strconv"
	"time"
)

// TokenConfig holds the secret and lifetime for one token kind.
type TokenConfig struct {
	Secret    string
	ExpiresIn time.Duration
}

// Config carries all process configuration. Values are read from the
// environment once at startup; main loads .env via godotenv beforehand.
type Config struct {
	Server struct {
		Host string
		Port int
	}
	Client struct {
		WebBaseURL string
	}
	Token struct {
		Access        TokenConfig
		Refresh       TokenConfig
		ResetPassword TokenConfig
	}
}

// Load reads configuration from environment variables, applying defaults
// suitable for local development.
func Load() Config {
	var cfg Config

	cfg.Server.Host = getEnv("SERVER_HOST_NAME", "127.0.0.1")
	cfg.Server.Port = getEnvInt("SERVER_PORT", 1337)
	cfg.Client.WebBaseURL = getEnv("CLIENT_WEB_BASE_URL", "http://127.0.0.1:3000")

	cfg.Token.Access = TokenConfig{
		Secret:    getEnv("ACCESS_TOKEN_SECRET", "defaultaccesstokensecret"),
		ExpiresIn: getEnvDuration("ACCESS_TOKEN_TTL", 2*time.Hour),
	}
	cfg.Token.Refresh = TokenConfig{
		Secret:    getEnv("REFRESH_TOKEN_SECRET", "defaultrefreshtokensecret"),
		ExpiresIn: getEnvDuration("REFRESH_TOKEN_TTL", 48*time.Hour),
	}
	cfg.Token.ResetPassword = TokenConfig{
		Secret:    getEnv("RESET_PASSWORD_TOKEN_SECRET", "defaultresetpasswordtokensecret"),
		ExpiresIn: getEnvDuration("RESET_PASSWORD_TOKEN_TTL", time.Hour),
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
