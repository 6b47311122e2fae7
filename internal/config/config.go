package config

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	DBDriver      string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBDSN         string
	RedisHost     string
	RedisPort     string
	SessionSecret string
	GinMode       string
	Port          string
	LogLevel      string
	CORSOrigins   []string

	Push       PushConfig
	AppVersion AppVersionConfig
}

// PushConfig controls the outbound push notification dispatcher.
type PushConfig struct {
	Endpoint      string
	BatchSize     int
	Workers       int
	QueueSize     int
	RatePerSecond float64
}

// AppVersionConfig is the static compatibility descriptor served to the mobile client.
type AppVersionConfig struct {
	Android int
	IOS     string
}

// Load reads configuration from the environment, optionally seeded from a .env file.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Msg("Failed to load .env file")
	}

	v := viper.New()
	v.SetDefault("DB_DRIVER", "mysql")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "3306")
	v.SetDefault("DB_USER", "fremont")
	v.SetDefault("DB_PASSWORD", "fremontpassword")
	v.SetDefault("DB_NAME", "fremont")
	v.SetDefault("DB_DSN", "")
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("SESSION_SECRET", "default-secret-key-change-me")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("PUSH_ENDPOINT", "https://exp.host/--/api/v2/push/send")
	v.SetDefault("PUSH_BATCH_SIZE", 100)
	v.SetDefault("PUSH_WORKERS", 2)
	v.SetDefault("PUSH_QUEUE_SIZE", 64)
	v.SetDefault("PUSH_RATE_PER_SECOND", 0)
	v.SetDefault("APP_VERSION_ANDROID", 1)
	v.SetDefault("APP_VERSION_IOS", "1.0")
	v.AutomaticEnv()

	return &Config{
		DBDriver:      strings.ToLower(v.GetString("DB_DRIVER")),
		DBHost:        v.GetString("DB_HOST"),
		DBPort:        v.GetString("DB_PORT"),
		DBUser:        v.GetString("DB_USER"),
		DBPassword:    v.GetString("DB_PASSWORD"),
		DBName:        v.GetString("DB_NAME"),
		DBDSN:         v.GetString("DB_DSN"),
		RedisHost:     v.GetString("REDIS_HOST"),
		RedisPort:     v.GetString("REDIS_PORT"),
		SessionSecret: v.GetString("SESSION_SECRET"),
		GinMode:       v.GetString("GIN_MODE"),
		Port:          v.GetString("PORT"),
		LogLevel:      v.GetString("LOG_LEVEL"),
		CORSOrigins:   splitList(v.GetString("CORS_ORIGINS")),
		Push: PushConfig{
			Endpoint:      v.GetString("PUSH_ENDPOINT"),
			BatchSize:     v.GetInt("PUSH_BATCH_SIZE"),
			Workers:       v.GetInt("PUSH_WORKERS"),
			QueueSize:     v.GetInt("PUSH_QUEUE_SIZE"),
			RatePerSecond: v.GetFloat64("PUSH_RATE_PER_SECOND"),
		},
		AppVersion: AppVersionConfig{
			Android: v.GetInt("APP_VERSION_ANDROID"),
			IOS:     v.GetString("APP_VERSION_IOS"),
		},
	}
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
