// backend-go/internal/config/config.go
package config

import (
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server ServerConfig
	Auth   AuthConfig
	App    AppConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type AuthConfig struct {
	Enabled        bool
	JWKSURL        string
	Issuer         string
	JWKSTTLSeconds int
}

type AppConfig struct {
	MaxUploadMB        int64
	DefaultHorizonDays int
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		// Set default values
		viper.SetDefault("SERVER_PORT", "8080")
		viper.SetDefault("SERVER_MODE", "debug")
		viper.SetDefault("SERVER_READ_TIMEOUT", 30)
		viper.SetDefault("SERVER_WRITE_TIMEOUT", 30)
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
		viper.SetDefault("AUTH_ENABLED", false)
		viper.SetDefault("AUTH_JWKS_URL", "")
		viper.SetDefault("AUTH_ISSUER", "")
		viper.SetDefault("AUTH_JWKS_TTL_SECONDS", 3600)
		viper.SetDefault("APP_MAX_UPLOAD_MB", 16)
		viper.SetDefault("APP_DEFAULT_HORIZON_DAYS", 30)

		// Read from environment variables
		viper.AutomaticEnv()

		instance = &Config{
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				Mode:           viper.GetString("SERVER_MODE"),
				ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
				WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			},
			Auth: AuthConfig{
				Enabled:        viper.GetBool("AUTH_ENABLED"),
				JWKSURL:        viper.GetString("AUTH_JWKS_URL"),
				Issuer:         viper.GetString("AUTH_ISSUER"),
				JWKSTTLSeconds: viper.GetInt("AUTH_JWKS_TTL_SECONDS"),
			},
			App: AppConfig{
				MaxUploadMB:        viper.GetInt64("APP_MAX_UPLOAD_MB"),
				DefaultHorizonDays: viper.GetInt("APP_DEFAULT_HORIZON_DAYS"),
			},
		}
	})

	return instance
}
