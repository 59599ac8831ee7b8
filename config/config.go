package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// CalendarSource is one upstream iCal feed (booking platform export).
type CalendarSource struct {
	Name string `mapstructure:"name"`
	URL  string `mapstructure:"url"`
}

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Feed cache configuration.
	CacheTTLMinutes int `mapstructure:"CACHE_TTL_MINUTES"`

	// Upstream fetch configuration.
	FetchTimeoutSeconds int `mapstructure:"FETCH_TIMEOUT_SECONDS"`
	MinFeedBytes        int `mapstructure:"MIN_FEED_BYTES"`

	// CORS allow-list for the front-end origins.
	AllowedOrigins []string `mapstructure:"ALLOWED_ORIGINS"`

	// Optional cron expression for background warm refreshes ("" disables).
	RefreshCron string `mapstructure:"REFRESH_CRON"`

	// Configured calendar feeds, static (not discovered dynamically).
	CalendarSources []CalendarSource `mapstructure:"calendar_sources"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("CACHE_TTL_MINUTES", 60)
	viper.SetDefault("FETCH_TIMEOUT_SECONDS", 10)
	viper.SetDefault("MIN_FEED_BYTES", 50)
	viper.SetDefault("ALLOWED_ORIGINS", []string{"http://localhost:3000"})
	viper.SetDefault("REFRESH_CRON", "")

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

// CacheTTL returns the configured feed cache TTL as a duration.
func CacheTTL() time.Duration {
	return time.Duration(AppConfig.CacheTTLMinutes) * time.Minute
}

// FetchTimeout returns the per-fetch upstream timeout.
func FetchTimeout() time.Duration {
	return time.Duration(AppConfig.FetchTimeoutSeconds) * time.Second
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
