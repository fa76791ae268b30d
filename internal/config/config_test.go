package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	home := t.TempDir()
	cfg, err := Load(home)
	if err != nil {
		t.Fatal(err)
	}
	if cfg != Default(home) {
		t.Fatalf("got %+v, want defaults", cfg)
	}
	if cfg.DBPath != filepath.Join(home, "studylog.db") {
		t.Fatalf("db path = %q", cfg.DBPath)
	}
	if cfg.Timezone != "Asia/Dhaka" || cfg.StorageKey != "sessions" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadOverrides(t *testing.T) {
	home := t.TempDir()
	yml := `
db_path: data/custom.db
storage_key: study
timezone: Europe/London
log_level: debug
flush_every: 0
`
	if err := os.WriteFile(filepath.Join(home, FileName), []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(home)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DBPath != filepath.Join(home, "data", "custom.db") {
		t.Fatalf("relative db path should anchor at home, got %q", cfg.DBPath)
	}
	if cfg.StorageKey != "study" || cfg.Timezone != "Europe/London" || cfg.LogLevel != "debug" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.FlushEvery != 0 {
		t.Fatalf("flush_every = %d", cfg.FlushEvery)
	}
	// Unset keys keep their defaults.
	if cfg.LogFile != filepath.Join(home, "studylog.log") {
		t.Fatalf("log file = %q", cfg.LogFile)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := map[string]string{
		"yaml":     "db_path: [unclosed",
		"timezone": "timezone: Mars/Olympus",
		"flush":    "flush_every: -1",
	}
	for name, yml := range tests {
		t.Run(name, func(t *testing.T) {
			home := t.TempDir()
			os.WriteFile(filepath.Join(home, FileName), []byte(yml), 0o644)
			if _, err := Load(home); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestResolveHomeOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(HomeEnv, dir)

	got, err := ResolveHome()
	if err != nil {
		t.Fatal(err)
	}
	if got != dir {
		t.Fatalf("ResolveHome = %q, want %q", got, dir)
	}
}

func TestResolveHomeTilde(t *testing.T) {
	t.Setenv(HomeEnv, "~/studylog-test")
	got, err := ResolveHome()
	if err != nil {
		t.Fatal(err)
	}
	if strings.HasPrefix(got, "~") || !strings.HasSuffix(got, "studylog-test") {
		t.Fatalf("tilde not expanded: %q", got)
	}
}

func TestResolveHomeBlankOverride(t *testing.T) {
	t.Setenv(HomeEnv, "   ")
	got, err := ResolveHome()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(got, "studylog") {
		t.Fatalf("blank override should fall back, got %q", got)
	}
}

func TestLocation(t *testing.T) {
	loc, err := Config{Timezone: "Asia/Dhaka"}.Location()
	if err != nil {
		t.Fatal(err)
	}
	if loc.String() != "Asia/Dhaka" {
		t.Fatalf("loc = %s", loc)
	}

	loc, err = Config{}.Location()
	if err != nil || loc != nil && loc.String() != "Local" {
		t.Fatalf("empty timezone should be Local, got %v %v", loc, err)
	}
}
