package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/garyjia/billed/pkg/utils"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// EnvPrefix prefixes every environment override, e.g. BILLED_SERVER_PORT
const EnvPrefix = "BILLED"

// Database drivers
const (
	DriverSQLite = "sqlite"
	DriverBolt   = "bolt"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Session  SessionConfig  `mapstructure:"session"`
	Client   ClientConfig   `mapstructure:"client"`
	Preview  PreviewConfig  `mapstructure:"preview"`
	Logger   LoggerConfig   `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	MaxUploadBytes int64         `mapstructure:"max_upload_bytes"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// StorageConfig holds proof file storage configuration
type StorageConfig struct {
	AttachmentDir string `mapstructure:"attachment_dir"`
	PublicBaseURL string `mapstructure:"public_base_url"`
}

// SessionConfig is the user the CLI acts as
type SessionConfig struct {
	Type  string `mapstructure:"type"`
	Email string `mapstructure:"email"`
}

// ClientConfig configures the store the CLI talks to.
// An empty APIBaseURL uses the local database directly.
type ClientConfig struct {
	APIBaseURL       string        `mapstructure:"api_base_url"`
	Timeout          time.Duration `mapstructure:"timeout"`
	NavigationPolicy string        `mapstructure:"navigation_policy"`
}

// PreviewConfig holds proof preview rendering configuration
type PreviewConfig struct {
	DPI float64 `mapstructure:"dpi"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load reads configuration from defaults, an optional YAML file, a .env file
// in the working directory, and BILLED_* environment variables, in increasing
// order of precedence.
func Load(configPath string) (*Config, error) {
	if err := gotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvVars(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.max_upload_bytes", 10<<20)

	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.path", "data/billed.db")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)

	v.SetDefault("storage.attachment_dir", "data/attachments")
	v.SetDefault("storage.public_base_url", "http://localhost:8080")

	v.SetDefault("session.type", "Employee")
	v.SetDefault("session.email", "")

	v.SetDefault("client.api_base_url", "")
	v.SetDefault("client.timeout", 30*time.Second)
	v.SetDefault("client.navigation_policy", "optimistic")

	v.SetDefault("preview.dpi", 72)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.output_path", "stderr")
	v.SetDefault("logger.format", "json")
}

// bindEnvVars binds the short names kept for compatibility with existing deployments
func bindEnvVars(v *viper.Viper) {
	_ = v.BindEnv("session.email", "BILLED_USER_EMAIL")
	_ = v.BindEnv("client.api_base_url", "BILLED_API_URL")
	_ = v.BindEnv("database.path", "BILLED_DB_PATH")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite, DriverBolt:
	default:
		return fmt.Errorf("database.driver must be %q or %q, got %q", DriverSQLite, DriverBolt, c.Database.Driver)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}

	if c.Storage.AttachmentDir == "" {
		return fmt.Errorf("storage.attachment_dir is required")
	}
	if err := utils.ValidateURL(c.Storage.PublicBaseURL); err != nil {
		return fmt.Errorf("storage.public_base_url: %w", err)
	}

	if c.Session.Email != "" {
		if err := utils.ValidateEmail(c.Session.Email); err != nil {
			return fmt.Errorf("session.email: %w", err)
		}
	}

	if c.Client.APIBaseURL != "" {
		if err := utils.ValidateURL(c.Client.APIBaseURL); err != nil {
			return fmt.Errorf("client.api_base_url: %w", err)
		}
	}
	switch c.Client.NavigationPolicy {
	case "optimistic", "after_persist":
	default:
		return fmt.Errorf("client.navigation_policy must be optimistic or after_persist, got %q", c.Client.NavigationPolicy)
	}

	return nil
}
