package main

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds everything the app needs to run. Values come from the
// environment (optionally seeded from a .env file) or an optional
// config.yaml, with sensible dev defaults for everything but secrets.
type Config struct {
	Port int
	Env  string

	Pepper  string
	HMACKey string
	CSRFKey string

	// PageSize is the fixed number of posts per feed page.
	PageSize int
	// FeedCacheTTL bounds staleness of the cached home/group feeds.
	// Zero disables the cache.
	FeedCacheTTL time.Duration

	// ImagesDir is where uploaded post images live on disk.
	ImagesDir string

	Database PostgresConfig
}

// IsProd reports whether the app runs in production mode.
func (c Config) IsProd() bool {
	return c.Env == "prod"
}

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
}

// ConnectionInfo builds the postgres connection string.
func (pc PostgresConfig) ConnectionInfo() string {
	if pc.Password == "" {
		return fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=disable",
			pc.Host, pc.Port, pc.User, pc.Name)
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		pc.Host, pc.Port, pc.User, pc.Password, pc.Name)
}

// LoadConfig loads the configuration using viper. A .env file is picked
// up first if present, then env variables override the defaults, then an
// optional config file overrides those.
func LoadConfig() Config {
	_ = godotenv.Load()

	viper.SetDefault("PORT", 1111)
	viper.SetDefault("ENV", "dev")

	viper.SetDefault("PEPPER", "secret-random-string")
	viper.SetDefault("HMAC_KEY", "secret-hmac-key")
	viper.SetDefault("CSRF_KEY", "32-byte-long-auth-key-change-me!")

	viper.SetDefault("PAGE_SIZE", 10)
	viper.SetDefault("FEED_CACHE_TTL", "20s")
	viper.SetDefault("IMAGES_DIR", "./images")

	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", 5432)
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "")
	viper.SetDefault("DB_NAME", "quill")

	viper.AutomaticEnv()

	// Optional config file support.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	_ = viper.ReadInConfig() // ignore error if no file

	return Config{
		Port:         viper.GetInt("PORT"),
		Env:          viper.GetString("ENV"),
		Pepper:       viper.GetString("PEPPER"),
		HMACKey:      viper.GetString("HMAC_KEY"),
		CSRFKey:      viper.GetString("CSRF_KEY"),
		PageSize:     viper.GetInt("PAGE_SIZE"),
		FeedCacheTTL: parseDuration(viper.GetString("FEED_CACHE_TTL"), 20*time.Second),
		ImagesDir:    viper.GetString("IMAGES_DIR"),
		Database: PostgresConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetInt("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Name:     viper.GetString("DB_NAME"),
		},
	}
}

func parseDuration(s string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	return def
}
