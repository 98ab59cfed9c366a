package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	coreconfig "github.com/m3rciful/postbot/core/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadYAMLAndEnv(t *testing.T) {
	path := writeConfig(t, `
telegram:
  token: "123:abc"
  admin_id: 77
channel:
  id: "@news"
drafts:
  idle_ttl: 30m
`)
	t.Setenv("CHANNEL_ID", "@override")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Telegram.Token != "123:abc" || cfg.Telegram.AdminID != 77 {
		t.Fatalf("telegram = %#v", cfg.Telegram)
	}
	if cfg.Telegram.RunMode != coreconfig.RunModeLongpoll {
		t.Fatalf("run mode = %q", cfg.Telegram.RunMode)
	}
	if cfg.Channel.ID != "@override" {
		t.Fatalf("channel = %q, want env override", cfg.Channel.ID)
	}
	if cfg.Drafts.IdleTTL != 30*time.Minute || cfg.Drafts.SweepInterval != time.Minute {
		t.Fatalf("drafts = %#v", cfg.Drafts)
	}
	if cfg.JournalEnabled() {
		t.Fatal("journal must be disabled without database.host")
	}
	if cfg.CoreConfig() != &cfg.Config {
		t.Fatal("CoreConfig must expose the embedded config")
	}
}

func TestNormalizeRequiresChannel(t *testing.T) {
	cfg := &Config{}
	cfg.Telegram.Token = "t"
	if err := Normalize(cfg); err == nil {
		t.Fatal("expected error without channel id")
	}
}

func TestNormalizeRejectsNegativeTTL(t *testing.T) {
	cfg := &Config{Channel: ChannelConfig{ID: "@c"}, Drafts: DraftsConfig{IdleTTL: -time.Second}}
	cfg.Telegram.Token = "t"
	if err := Normalize(cfg); err == nil {
		t.Fatal("expected error for negative idle_ttl")
	}
}

func TestNormalizeDatabaseDefaults(t *testing.T) {
	cfg := &Config{Channel: ChannelConfig{ID: "@c"}}
	cfg.Telegram.Token = "t"
	cfg.Database.Host = "db"
	if err := Normalize(cfg); err == nil {
		t.Fatal("expected error without database name")
	}

	cfg.Database.Name = "posts"
	if err := Normalize(cfg); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if cfg.Database.Port != "5432" || cfg.Database.SSLMode != "disable" || cfg.Database.MaxConnections != 5 {
		t.Fatalf("database defaults = %#v", cfg.Database)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
