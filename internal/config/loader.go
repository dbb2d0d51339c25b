// internal/config/loader.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads config.yaml (if present) and environment overrides into a
// Config. Environment variables win, with dots mapped to underscores, e.g.
// DATABASE_HOST overrides database.host.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	applyDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func applyDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "campaignhub")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.public_base_url", "http://localhost:8080")

	v.SetDefault("http.port", "8080")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "campaignhub")
	v.SetDefault("database.database", "campaignhub")
	v.SetDefault("database.sslmode", "disable")

	v.SetDefault("auth.session_ttl", 24*time.Hour)
	v.SetDefault("auth.bcrypt_cost", 12)

	v.SetDefault("email.region", "us-east-1")
	v.SetDefault("email.from", "onboarding@campaignhub.dev")

	v.SetDefault("sms.provider", "none")
	v.SetDefault("sms.region", "us-east-1")

	v.SetDefault("dispatch.send_timeout", 10*time.Second)
	v.SetDefault("dispatch.poller_enabled", false)
	v.SetDefault("dispatch.poll_interval", time.Minute)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}
