package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for medimate
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Mail      MailConfig      `mapstructure:"mail"`
	Calendar  CalendarConfig  `mapstructure:"calendar"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Security  SecurityConfig  `mapstructure:"security"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Address      string `mapstructure:"address"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
}

// StorageConfig holds database settings
type StorageConfig struct {
	DataDir    string `mapstructure:"data_dir"`
	SQLitePath string `mapstructure:"sqlite_path"`
	BadgerPath string `mapstructure:"badger_path"`
}

// MailConfig holds SMTP transport settings. Mail delivery is optional:
// missing credentials disable it rather than failing startup.
type MailConfig struct {
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	Username      string `mapstructure:"username"`
	Password      string `mapstructure:"password"`
	From          string `mapstructure:"from"`
	RatePerMinute int    `mapstructure:"rate_per_minute"`
}

// Enabled reports whether the mail transport is configured
func (m MailConfig) Enabled() bool {
	return m.Username != "" && m.Password != ""
}

// Sender returns the From address, falling back to the SMTP username
func (m MailConfig) Sender() string {
	if m.From != "" {
		return m.From
	}
	return m.Username
}

// CalendarConfig holds Google Calendar OAuth settings
type CalendarConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RefreshToken string `mapstructure:"refresh_token"`
	Timezone     string `mapstructure:"timezone"`
}

// Available reports whether calendar sync is configured
func (c CalendarConfig) Available() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.RefreshToken != ""
}

// SchedulerConfig holds reminder loop settings
type SchedulerConfig struct {
	DispatchTimeout int `mapstructure:"dispatch_timeout"` // seconds per dispatch
	MaxConcurrent   int `mapstructure:"max_concurrent"`   // concurrent dispatches per cycle
}

// SecurityConfig holds API security settings
type SecurityConfig struct {
	JWTSecret    string   `mapstructure:"jwt_secret"`
	APIPassword  string   `mapstructure:"api_password"`
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// Load loads configuration from file, env, and defaults
func Load(configPath, dataDir string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if dataDir == "" {
		dataDir = getDefaultDataDir()
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	v.Set("storage.data_dir", dataDir)
	v.SetDefault("storage.sqlite_path", filepath.Join(dataDir, "medimate.db"))
	v.SetDefault("storage.badger_path", filepath.Join(dataDir, "badger"))

	if configPath == "" {
		configPath = filepath.Join(dataDir, "medimate.yaml")
	}

	if _, err := os.Stat(configPath); err == nil {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	// Environment variables (MEDIMATE_MAIL_USERNAME, MEDIMATE_SERVER_PORT, etc.)
	v.SetEnvPrefix("MEDIMATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30)
	v.SetDefault("server.write_timeout", 30)

	v.SetDefault("mail.host", "smtp.gmail.com")
	v.SetDefault("mail.port", 587)
	v.SetDefault("mail.rate_per_minute", 60)

	v.SetDefault("calendar.timezone", "UTC")

	v.SetDefault("scheduler.dispatch_timeout", 30)
	v.SetDefault("scheduler.max_concurrent", 4)

	v.SetDefault("security.jwt_secret", "medimate-dev-secret")
	v.SetDefault("security.allow_origins", []string{"*"})
}

func validate(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", cfg.Server.Port)
	}
	if cfg.Scheduler.DispatchTimeout <= 0 {
		return fmt.Errorf("scheduler dispatch_timeout must be positive")
	}
	if cfg.Scheduler.MaxConcurrent <= 0 {
		return fmt.Errorf("scheduler max_concurrent must be positive")
	}
	return nil
}

func getDefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".medimate"
	}
	return filepath.Join(home, ".medimate")
}
