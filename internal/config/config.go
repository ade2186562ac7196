package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	envPrefix              = "AZOAI"
	defaultHTTPAddress     = "0.0.0.0:8080"
	defaultDatabasePath    = "botadmin.db"
	defaultLogLevel        = "info"
	defaultBotSessionID    = "main"
	defaultTokenTTLMinutes = 720
	defaultChangelogLimit  = 5
	defaultUpdateLogLimit  = 10
)

// AppConfig captures runtime configuration for the dashboard API server.
type AppConfig struct {
	HTTPAddress    string
	DatabasePath   string
	LogLevel       string
	SigningSecret  string
	AdminAccessKey string
	TokenTTL       time.Duration
	BotSessionID   string
	ChangelogLimit int
	UpdateLogLimit int
}

// NewViper returns a viper instance with defaults and env bindings configured.
func NewViper() *viper.Viper {
	configViper := viper.New()
	ApplyDefaults(configViper)
	return configViper
}

// ApplyDefaults configures defaults and env bindings on the provided viper instance.
func ApplyDefaults(configViper *viper.Viper) {
	configViper.SetEnvPrefix(envPrefix)
	configViper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	configViper.AutomaticEnv()

	configViper.SetDefault("http.address", defaultHTTPAddress)
	configViper.SetDefault("database.path", defaultDatabasePath)
	configViper.SetDefault("log.level", defaultLogLevel)
	configViper.SetDefault("bot.session_id", defaultBotSessionID)
	configViper.SetDefault("auth.token_ttl_minutes", defaultTokenTTLMinutes)
	configViper.SetDefault("logs.changelog_limit", defaultChangelogLimit)
	configViper.SetDefault("logs.updatelog_limit", defaultUpdateLogLimit)
}

// Load parses runtime configuration from viper.
func Load(configViper *viper.Viper) (AppConfig, error) {
	cfg := AppConfig{
		HTTPAddress:    configViper.GetString("http.address"),
		DatabasePath:   configViper.GetString("database.path"),
		LogLevel:       configViper.GetString("log.level"),
		SigningSecret:  configViper.GetString("auth.signing_secret"),
		AdminAccessKey: configViper.GetString("auth.access_key"),
		TokenTTL:       time.Duration(configViper.GetInt("auth.token_ttl_minutes")) * time.Minute,
		BotSessionID:   configViper.GetString("bot.session_id"),
		ChangelogLimit: configViper.GetInt("logs.changelog_limit"),
		UpdateLogLimit: configViper.GetInt("logs.updatelog_limit"),
	}

	if err := cfg.validate(); err != nil {
		return AppConfig{}, err
	}

	return cfg, nil
}

func (c AppConfig) validate() error {
	if strings.TrimSpace(c.SigningSecret) == "" {
		return fmt.Errorf("auth.signing_secret is required")
	}
	if strings.TrimSpace(c.AdminAccessKey) == "" {
		return fmt.Errorf("auth.access_key is required")
	}
	if strings.TrimSpace(c.DatabasePath) == "" {
		return fmt.Errorf("database.path is required")
	}
	if strings.TrimSpace(c.BotSessionID) == "" {
		return fmt.Errorf("bot.session_id is required")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl_minutes must be positive")
	}
	if c.ChangelogLimit <= 0 || c.UpdateLogLimit <= 0 {
		return fmt.Errorf("logs limits must be positive")
	}
	return nil
}
