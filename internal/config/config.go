package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Google   GoogleConfig   `mapstructure:"google"`
	Session  SessionConfig  `mapstructure:"session"`
	Calendar CalendarConfig `mapstructure:"calendar"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type GoogleConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURL  string `mapstructure:"redirect_url"`
	// TokenURL and APIEndpoint default to the public Google endpoints and
	// exist so tests can point at a local server.
	TokenURL    string `mapstructure:"token_url"`
	APIEndpoint string `mapstructure:"api_endpoint"`
}

type SessionConfig struct {
	Secret   string `mapstructure:"secret"`
	TTLHours int    `mapstructure:"ttl_hours"`
}

type CalendarConfig struct {
	DefaultName string `mapstructure:"default_name"`
	TimeZone    string `mapstructure:"time_zone"`
}

var defaultConfig = Config{
	Server: ServerConfig{
		Addr: ":8080",
	},
	Session: SessionConfig{
		TTLHours: 24 * 30,
	},
	Calendar: CalendarConfig{
		DefaultName: "업무_회의",
		TimeZone:    "Asia/Seoul",
	},
}

func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("toml")
	v.SetConfigName("config")

	if configPath == "" {
		configDir, err := getDefaultConfigDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get config directory: %w", err)
		}
		configPath = configDir
	}

	v.AddConfigPath(configPath)
	v.AddConfigPath(".")

	setDefaults(v)
	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		// Missing config file is fine: env vars plus defaults are a complete
		// configuration for the server.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

// Validate checks the fields the server cannot run without.
func (c *Config) Validate() error {
	if c.Google.ClientID == "" {
		return fmt.Errorf("google.client_id is required (set GOOGLE_CLIENT_ID)")
	}
	if c.Google.ClientSecret == "" {
		return fmt.Errorf("google.client_secret is required (set GOOGLE_CLIENT_SECRET)")
	}
	if c.Session.Secret == "" {
		return fmt.Errorf("session.secret is required (set AUTH_SECRET)")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", defaultConfig.Server.Addr)
	v.SetDefault("session.ttl_hours", defaultConfig.Session.TTLHours)
	v.SetDefault("calendar.default_name", defaultConfig.Calendar.DefaultName)
	v.SetDefault("calendar.time_zone", defaultConfig.Calendar.TimeZone)
}

func bindEnv(v *viper.Viper) {
	// Same variable names the deployment already uses.
	_ = v.BindEnv("server.addr", "SERVER_ADDR")
	_ = v.BindEnv("google.client_id", "GOOGLE_CLIENT_ID")
	_ = v.BindEnv("google.client_secret", "GOOGLE_CLIENT_SECRET")
	_ = v.BindEnv("google.redirect_url", "OAUTH_REDIRECT_URL")
	_ = v.BindEnv("session.secret", "AUTH_SECRET")
	_ = v.BindEnv("calendar.default_name", "DEFAULT_CALENDAR")
	_ = v.BindEnv("calendar.time_zone", "CALENDAR_TIME_ZONE")
}

func getDefaultConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "jarviscs"), nil
}
