package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// TelegramConfig holds the bot credentials and update delivery mode.
type TelegramConfig struct {
	Token string `yaml:"token" envconfig:"BOT_TOKEN"`
	// AdminID is the operator allowed to drive admin-only commands; 0 disables the check.
	AdminID int64  `yaml:"admin_id" envconfig:"TELEGRAM_ADMIN_ID"`
	RunMode string `yaml:"run_mode" envconfig:"TELEGRAM_RUN_MODE"`
	// LongPollTimeoutSeconds is the getUpdates timeout; 0 uses the poller default.
	LongPollTimeoutSeconds int `yaml:"longpoll_timeout_seconds" envconfig:"TELEGRAM_LONGPOLL_TIMEOUT_SECONDS"`
}

// WebhookConfig is required when RunMode is webhook.
type WebhookConfig struct {
	URL    string `yaml:"url" envconfig:"WEBHOOK_URL"`
	Listen string `yaml:"listen" envconfig:"WEBHOOK_LISTEN"`
	Port   int    `yaml:"port" envconfig:"WEBHOOK_PORT"`
	// SecretToken, when set, must arrive in the X-Telegram-Bot-Api-Secret-Token header.
	SecretToken string `yaml:"secret_token" envconfig:"WEBHOOK_SECRET_TOKEN"`
}

// LoggingConfig configures core/logger.
type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LOG_LEVEL"`
	Format string `yaml:"format" envconfig:"LOG_FORMAT"`
	// KeysOrder is a comma separated list of leading keys; empty keeps the default.
	KeysOrder string `yaml:"keys_order"`
	// DebugSample is "n/d" or "d"; sampled debug events pass n of every d.
	DebugSample string `yaml:"debug_sample" envconfig:"LOG_DEBUG_SAMPLE"`
	Dir         string `yaml:"dir" envconfig:"LOG_DIR"`
	BotFile     string `yaml:"bot_file"`
	// ErrorsFile, when set together with Dir, receives a copy of ERROR lines.
	ErrorsFile string `yaml:"errors_file"`
	// Profile indicates environment profile such as "debug" or "prod".
	Profile string `yaml:"profile"`
}

// Run modes accepted in TelegramConfig.RunMode. "polling" is read as longpoll.
const (
	RunModeWebhook  = "webhook"
	RunModeLongpoll = "longpoll"
)

// Update kinds accepted in RateLimitConfig.ExcludeUpdates.
const (
	UpdateCallback    = "callback"
	UpdateMessage     = "message"
	UpdateInlineQuery = "inline_query"
	// UpdateMediaGroup covers album items, which Telegram delivers as a burst.
	UpdateMediaGroup = "media_group"
)

var updateKinds = []string{UpdateCallback, UpdateMessage, UpdateInlineQuery, UpdateMediaGroup}

// RateLimitConfig throttles each user to one update per interval; 0 disables
// the limit. ExcludeUpdates lists update kinds that are never throttled.
type RateLimitConfig struct {
	IntervalMS     int      `yaml:"interval_ms" envconfig:"RATE_LIMIT_INTERVAL_MS"`
	ExcludeUpdates []string `yaml:"exclude_updates" envconfig:"RATE_LIMIT_EXCLUDE_UPDATES"`
}

// Config aggregates the configuration that belongs to the reusable core.
type Config struct {
	Telegram  TelegramConfig  `yaml:"telegram"`
	Webhook   WebhookConfig   `yaml:"webhook"`
	Logging   LoggingConfig   `yaml:"logging"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// Load reads and validates a core-only configuration.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := Decode(path, &cfg); err != nil {
		return nil, err
	}
	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Decode fills dst from the YAML file at path and then overlays environment
// variables declared with envconfig tags. dst must be a pointer to a struct.
func Decode(path string, dst any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("parse YAML config: %w", err)
	}
	if err := envconfig.Process("", dst); err != nil {
		return fmt.Errorf("process env: %w", err)
	}
	return nil
}

// Normalize validates cfg and canonicalizes the run mode and update kinds.
// All problems are reported together.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return errors.New("nil config")
	}
	var errs []error
	if strings.TrimSpace(cfg.Telegram.Token) == "" {
		errs = append(errs, errors.New("telegram.token is required"))
	}
	errs = append(errs, cfg.normalizeRunMode()...)
	errs = append(errs, cfg.RateLimit.normalize()...)
	return errors.Join(errs...)
}

func (cfg *Config) normalizeRunMode() []error {
	mode := strings.ToLower(strings.TrimSpace(cfg.Telegram.RunMode))
	switch mode {
	case "", "polling":
		mode = RunModeLongpoll
	}

	var errs []error
	switch mode {
	case RunModeLongpoll:
		if cfg.Telegram.LongPollTimeoutSeconds < 0 {
			errs = append(errs, errors.New("telegram.longpoll_timeout_seconds must be >= 0"))
		}
	case RunModeWebhook:
		wh := cfg.Webhook
		if strings.TrimSpace(wh.URL) == "" {
			errs = append(errs, errors.New("webhook.url is required in webhook mode"))
		}
		if strings.TrimSpace(wh.Listen) == "" {
			errs = append(errs, errors.New("webhook.listen is required in webhook mode"))
		}
		if wh.Port <= 0 {
			errs = append(errs, errors.New("webhook.port must be > 0 in webhook mode"))
		}
	default:
		return []error{fmt.Errorf("invalid telegram.run_mode %q; allowed: %s, %s",
			cfg.Telegram.RunMode, RunModeWebhook, RunModeLongpoll)}
	}
	cfg.Telegram.RunMode = mode
	return errs
}

func (rl *RateLimitConfig) normalize() []error {
	var errs []error
	if rl.IntervalMS < 0 {
		errs = append(errs, errors.New("rate_limit.interval_ms must be >= 0"))
	}
	kinds := rl.ExcludeUpdates[:0]
	for _, v := range rl.ExcludeUpdates {
		kind := strings.ToLower(strings.TrimSpace(v))
		switch {
		case kind == "":
		case slices.Contains(updateKinds, kind):
			kinds = append(kinds, kind)
		default:
			errs = append(errs, fmt.Errorf("invalid rate_limit.exclude_updates value %q; allowed: %s",
				v, strings.Join(updateKinds, ", ")))
		}
	}
	rl.ExcludeUpdates = kinds
	return errs
}
