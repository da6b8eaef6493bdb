package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite3"
)

type Config struct {
	App struct {
		Name     string     `envconfig:"APP_NAME" default:"SmartCity Ledger"`
		Port     int        `envconfig:"PORT" default:"8080"`
		LogLevel slog.Level `envconfig:"LOG_LEVEL" default:"INFO"`
	}

	DB struct {
		Driver   string `envconfig:"DB_DRIVER" default:"pgx"`
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"smartcity"`
		// Path is only used by the sqlite3 driver.
		Path    string `envconfig:"DB_PATH" default:"smartcity.db"`
		Migrate bool   `envconfig:"DB_MIGRATE" default:"false"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}

	Auth struct {
		JWTSecret string `envconfig:"JWT_SECRET"`
		RolesFile string `envconfig:"ROLES_FILE"`
	}

	CORS struct {
		AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	}

	TUI struct {
		UserID int64 `envconfig:"TUI_USER_ID"`
	}
}

func (c *Config) ConnectionString() string {
	if c.DB.Driver == DriverSQLite {
		return fmt.Sprintf("file:%s?_foreign_keys=on&_journal_mode=WAL", c.DB.Path)
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

// Load reads the configuration from the environment. A .env file in the
// working directory is applied first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.DB.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DB.Driver)
	}

	return nil
}
