package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	envPrefix           = "SQUIRE"
	defaultHTTPAddress  = "0.0.0.0:8080"
	defaultDatabasePath = "squire.db"
	defaultLogLevel     = "info"
	defaultIRCPort      = 6697
	defaultIRCNick      = "squire"
)

// AppConfig captures runtime configuration for the bot process.
type AppConfig struct {
	IRCServer   string
	IRCPort     int
	IRCNick     string
	IRCChannels []string

	Masters    []string
	URLPreview bool

	LastFMAPIKey  string
	YouTubeAPIKey string

	HTTPAddress  string
	DatabasePath string
	LogLevel     string
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

	configViper.SetDefault("irc.port", defaultIRCPort)
	configViper.SetDefault("irc.nick", defaultIRCNick)
	configViper.SetDefault("bot.url_preview", false)
	configViper.SetDefault("http.address", defaultHTTPAddress)
	configViper.SetDefault("database.path", defaultDatabasePath)
	configViper.SetDefault("log.level", defaultLogLevel)
}

// Load parses runtime configuration from viper.
func Load(configViper *viper.Viper) (AppConfig, error) {
	cfg := AppConfig{
		IRCServer:     configViper.GetString("irc.server"),
		IRCPort:       configViper.GetInt("irc.port"),
		IRCNick:       configViper.GetString("irc.nick"),
		IRCChannels:   splitList(configViper.GetString("irc.channels")),
		Masters:       splitList(configViper.GetString("bot.masters")),
		URLPreview:    configViper.GetBool("bot.url_preview"),
		LastFMAPIKey:  configViper.GetString("lastfm.api_key"),
		YouTubeAPIKey: configViper.GetString("youtube.api_key"),
		HTTPAddress:   configViper.GetString("http.address"),
		DatabasePath:  configViper.GetString("database.path"),
		LogLevel:      configViper.GetString("log.level"),
	}

	if err := cfg.validate(); err != nil {
		return AppConfig{}, err
	}

	return cfg, nil
}

func (c AppConfig) validate() error {
	if strings.TrimSpace(c.IRCServer) == "" {
		return fmt.Errorf("irc.server is required")
	}
	if len(c.IRCChannels) == 0 {
		return fmt.Errorf("irc.channels is required")
	}
	if strings.TrimSpace(c.IRCNick) == "" {
		return fmt.Errorf("irc.nick is required")
	}
	if strings.TrimSpace(c.DatabasePath) == "" {
		return fmt.Errorf("database.path is required")
	}
	return nil
}

// splitList parses a comma-separated value into trimmed non-empty entries.
func splitList(raw string) []string {
	var entries []string
	for _, piece := range strings.Split(raw, ",") {
		piece = strings.TrimSpace(piece)
		if piece != "" {
			entries = append(entries, piece)
		}
	}
	return entries
}
