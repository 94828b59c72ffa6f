package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the assessment API service.
type Config struct {
	AppName     string
	AppEnv      string
	AppPort     string
	DatabaseURL string
	RedisURL    string
	NATSURL     string
	JWTSecret   string
	// ComplaintLockDuration is how long an acquired complaint lock excludes
	// other reviewers before it may be taken over.
	ComplaintLockDuration time.Duration
	// NotificationChannel is the base name for the redis channel and NATS
	// subject complaint events are published on.
	NotificationChannel string
	// ComplaintRateLimit caps how many complaint requests one user may send
	// per minute.
	ComplaintRateLimit int
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("GRADEFLOW")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "GradeFlow Assessment API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("complaint.lock_duration", "5m")
	v.SetDefault("notification.channel", "gradeflow")
	v.SetDefault("complaint.rate_limit", 60)

	lockDurationString := v.GetString("complaint.lock_duration")
	if lockDurationString == "" {
		lockDurationString = "5m"
	}

	lockDuration, err := time.ParseDuration(lockDurationString)
	if err != nil {
		return Config{}, fmt.Errorf("invalid complaint lock duration: %w", err)
	}
	if lockDuration <= 0 {
		return Config{}, fmt.Errorf("complaint lock duration must be positive")
	}

	cfg := Config{
		AppName:               v.GetString("app.name"),
		AppEnv:                v.GetString("app.env"),
		AppPort:               v.GetString("app.port"),
		DatabaseURL:           v.GetString("database.url"),
		RedisURL:              v.GetString("redis.url"),
		NATSURL:               v.GetString("nats.url"),
		JWTSecret:             v.GetString("jwt.secret"),
		ComplaintLockDuration: lockDuration,
		NotificationChannel:   v.GetString("notification.channel"),
		ComplaintRateLimit:    v.GetInt("complaint.rate_limit"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	return cfg, nil
}
