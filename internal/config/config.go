// Package config describes the configuration of the post composer bot.
package config

import (
	"fmt"
	"strings"
	"time"

	coreconfig "github.com/m3rciful/postbot/core/config"
	coredatabase "github.com/m3rciful/postbot/core/database"
)

// ChannelConfig names the broadcast destination.
type ChannelConfig struct {
	// ID is a channel username ("@news") or a numeric chat id ("-1001234567890").
	ID string `yaml:"id" envconfig:"CHANNEL_ID"`
}

// DraftsConfig bounds how long an abandoned draft is kept.
type DraftsConfig struct {
	// IdleTTL evicts drafts untouched for this long; 0 keeps them until /start or /cancel.
	IdleTTL       time.Duration `yaml:"idle_ttl" envconfig:"DRAFTS_IDLE_TTL"`
	SweepInterval time.Duration `yaml:"sweep_interval" envconfig:"DRAFTS_SWEEP_INTERVAL"`
}

// Config is the full application configuration.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Channel  ChannelConfig       `yaml:"channel"`
	Drafts   DraftsConfig        `yaml:"drafts"`
	Database coredatabase.Config `yaml:"database"`
}

// CoreConfig exposes the embedded framework configuration.
func (c *Config) CoreConfig() *coreconfig.Config {
	return &c.Config
}

// JournalEnabled reports whether a publication journal database is configured.
func (c *Config) JournalEnabled() bool {
	return strings.TrimSpace(c.Database.Host) != ""
}

// Load reads the YAML file at path, overlays the environment and validates the result.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.Decode(path, &cfg); err != nil {
		return nil, err
	}
	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates application settings and fills defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	if err := coreconfig.Normalize(&cfg.Config); err != nil {
		return err
	}

	cfg.Channel.ID = strings.TrimSpace(cfg.Channel.ID)
	if cfg.Channel.ID == "" {
		return fmt.Errorf("channel.id is required")
	}

	if cfg.Drafts.IdleTTL < 0 {
		return fmt.Errorf("drafts.idle_ttl must be >= 0")
	}
	if cfg.Drafts.SweepInterval < 0 {
		return fmt.Errorf("drafts.sweep_interval must be >= 0")
	}
	if cfg.Drafts.IdleTTL > 0 && cfg.Drafts.SweepInterval == 0 {
		cfg.Drafts.SweepInterval = time.Minute
	}

	if cfg.JournalEnabled() {
		if cfg.Database.Port == "" {
			cfg.Database.Port = "5432"
		}
		if cfg.Database.SSLMode == "" {
			cfg.Database.SSLMode = "disable"
		}
		if cfg.Database.MaxConnections <= 0 {
			cfg.Database.MaxConnections = 5
		}
		if cfg.Database.Name == "" {
			return fmt.Errorf("database.name is required when database.host is set")
		}
	}
	return nil
}
