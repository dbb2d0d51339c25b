// internal/config/config.go
package config

import (
	"fmt"
	"time"
)

// Config is the process-wide application configuration, loaded once at
// startup and passed by reference.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Database PostgresConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Email    EmailConfig    `mapstructure:"email"`
	SMS      SMSConfig      `mapstructure:"sms"`
	Dispatch DispatchConfig `mapstructure:"dispatch"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	// PublicBaseURL is the externally reachable root used to build campaign
	// landing links and QR codes.
	PublicBaseURL string `mapstructure:"public_base_url"`
}

type HTTPConfig struct {
	Port string `mapstructure:"port"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.Database, p.SSLMode,
	)
}

type AuthConfig struct {
	JWTSecret  string        `mapstructure:"jwt_secret"`
	SessionTTL time.Duration `mapstructure:"session_ttl"`
	BcryptCost int           `mapstructure:"bcrypt_cost"`
}

type EmailConfig struct {
	Region string `mapstructure:"region"`
	From   string `mapstructure:"from"`
}

type SMSConfig struct {
	// Provider selects the SMS transport: "sns" or "none". With "none" the
	// gateway reports SMS sends as unimplemented instead of faking success.
	Provider string `mapstructure:"provider"`
	Region   string `mapstructure:"region"`
}

type DispatchConfig struct {
	// SendTimeout bounds each outbound delivery call. A timed-out call
	// counts as failed.
	SendTimeout time.Duration `mapstructure:"send_timeout"`
	// PollerEnabled turns on time-triggered execution of due schedules.
	// Manual execute via the API works regardless.
	PollerEnabled bool          `mapstructure:"poller_enabled"`
	PollInterval  time.Duration `mapstructure:"poll_interval"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
