package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	coreconfig "github.com/m3rciful/postbot/core/config"
	coretelegram "github.com/m3rciful/postbot/core/telegram"
)

type testConfig struct{ core coreconfig.Config }

func (c *testConfig) CoreConfig() *coreconfig.Config { return &c.core }

type testApp struct{}

func (testApp) TelegramRunOptions() (coretelegram.RunOptions, error) {
	return coretelegram.RunOptions{}, nil
}

func TestRunLoadsEnvFileAndConfig(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "test.env")
	if err := os.WriteFile(envFile, []byte("POSTBOT_TEST_CONFIG="+filepath.Join(dir, "cfg.yaml")+"\n"), 0o600); err != nil {
		t.Fatalf("write env: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("POSTBOT_TEST_CONFIG") })

	var (
		loadedPath string
		ran        bool
	)
	err := Run(Options{
		ConfigEnvVar: "POSTBOT_TEST_CONFIG",
		EnvFiles:     []string{envFile, filepath.Join(dir, "missing.env")},
		LoadConfig: func(path string) (ConfigCarrier, error) {
			loadedPath = path
			return &testConfig{}, nil
		},
		Bootstrap:      func(ConfigCarrier) (TelegramApp, error) { return testApp{}, nil },
		ShutdownLogger: func() error { return nil },
		RunTelegram: func(ctx context.Context, opts coretelegram.RunOptions) error {
			ran = opts.OnStart != nil && opts.OnStop != nil
			return nil
		},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if loadedPath != filepath.Join(dir, "cfg.yaml") {
		t.Fatalf("config path = %q", loadedPath)
	}
	if !ran {
		t.Fatal("lifecycle hooks not installed")
	}
}

func TestRunRequiresHooks(t *testing.T) {
	if err := Run(Options{EnvFiles: []string{}}); err == nil {
		t.Fatal("expected error without LoadConfig")
	}
	boom := errors.New("boom")
	err := Run(Options{
		EnvFiles:          []string{},
		DefaultConfigPath: "config.yaml",
		LoadConfig:        func(string) (ConfigCarrier, error) { return nil, boom },
		Bootstrap:         func(ConfigCarrier) (TelegramApp, error) { return testApp{}, nil },
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped load error, got %v", err)
	}
}
