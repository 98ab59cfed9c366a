package database

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestConfigDSNQuotesSpecialValues(t *testing.T) {
	cfg := Config{Host: "db", Port: "5432", User: "post bot", Password: "it's", Name: "posts", SSLMode: "disable"}
	got := cfg.DSN()
	for _, want := range []string{"user='post bot'", `password='it\'s'`, "host=db", "dbname=posts", "sslmode=disable"} {
		if !strings.Contains(got, want) {
			t.Fatalf("DSN %q missing %q", got, want)
		}
	}
}

func TestConfigURLEscapesCredentials(t *testing.T) {
	cfg := Config{Host: "db", Port: "5432", User: "bot", Password: "p@ss/word", Name: "posts", SSLMode: "disable"}
	got := cfg.URL()
	want := "postgres://bot:p%40ss%2Fword@db:5432/posts?sslmode=disable"
	if got != want {
		t.Fatalf("URL = %q, want %q", got, want)
	}
}

func TestSelectApplied(t *testing.T) {
	files := []string{"000001_a.up.sql", "000002_b.up.sql", "000003_c.up.sql"}
	if got := selectApplied(files, 1, 3); !reflect.DeepEqual(got, []string{"000002_b.up.sql", "000003_c.up.sql"}) {
		t.Fatalf("selectApplied = %v", got)
	}
	if got := selectApplied(files, 3, 3); got != nil {
		t.Fatalf("expected nothing applied, got %v", got)
	}
	if v := parseVersion("000042_name.up.sql"); v != 42 {
		t.Fatalf("parseVersion = %d", v)
	}
}

func TestListMigrationFilesOnlyUp(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"000002_b.up.sql", "000001_a.up.sql", "000001_a.down.sql"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("--"), 0o600); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	got := listMigrationFiles(dir)
	if !reflect.DeepEqual(got, []string{"000001_a.up.sql", "000002_b.up.sql"}) {
		t.Fatalf("listMigrationFiles = %v", got)
	}
}

func TestMigrationsDir(t *testing.T) {
	abs := filepath.Join(t.TempDir(), "m")
	if got, err := migrationsDir(Config{MigrationsDir: abs}); err != nil || got != abs {
		t.Fatalf("migrationsDir abs = %q, %v", got, err)
	}
	got, err := migrationsDir(Config{})
	if err != nil {
		t.Fatalf("migrationsDir: %v", err)
	}
	if filepath.Base(got) != DefaultMigrationsDir {
		t.Fatalf("default dir = %q", got)
	}
}
