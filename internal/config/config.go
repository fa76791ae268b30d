package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

const (
	// HomeEnv overrides where studylog keeps its database, config and log.
	HomeEnv = "STUDYLOG_HOME"

	FileName = "config.yaml"
)

type Config struct {
	DBPath     string `yaml:"db_path"`
	StorageKey string `yaml:"storage_key"`
	Timezone   string `yaml:"timezone"`
	LogFile    string `yaml:"log_file"`
	LogLevel   string `yaml:"log_level"`
	// FlushEvery persists running timers every N ticks; 0 only on stop.
	FlushEvery int `yaml:"flush_every"`
}

// Default returns the configuration used when no file exists.
func Default(home string) Config {
	return Config{
		DBPath:     filepath.Join(home, "studylog.db"),
		StorageKey: "sessions",
		Timezone:   "Asia/Dhaka",
		LogFile:    filepath.Join(home, "studylog.log"),
		LogLevel:   "info",
		FlushEvery: 30,
	}
}

// ResolveHome returns $STUDYLOG_HOME, or <user config dir>/studylog.
func ResolveHome() (string, error) {
	if override, ok := os.LookupEnv(HomeEnv); ok {
		override = strings.TrimSpace(override)
		if override != "" {
			return normalizePath(override)
		}
	}

	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "studylog"), nil
}

// Load reads home/config.yaml over the defaults. A missing file is not an
// error.
func Load(home string) (Config, error) {
	cfg := Default(home)

	data, err := os.ReadFile(filepath.Join(home, FileName))
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg.DBPath, err = resolvePath(home, cfg.DBPath)
	if err != nil {
		return Config{}, err
	}
	cfg.LogFile, err = resolvePath(home, cfg.LogFile)
	if err != nil {
		return Config{}, err
	}
	if cfg.StorageKey == "" {
		cfg.StorageKey = "sessions"
	}
	if cfg.FlushEvery < 0 {
		return Config{}, fmt.Errorf("flush_every must not be negative, got %d", cfg.FlushEvery)
	}
	if _, err := cfg.Location(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Location resolves the timezone used for start and end clock strings.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// resolvePath expands ~ and anchors relative paths at home.
func resolvePath(home, p string) (string, error) {
	if p == "" {
		return "", nil
	}
	p, err := normalizePath(p)
	if err != nil {
		return "", err
	}
	if !filepath.IsAbs(p) {
		p = filepath.Join(home, p)
	}
	return p, nil
}

func normalizePath(input string) (string, error) {
	if strings.HasPrefix(input, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		input = filepath.Join(home, strings.TrimPrefix(input, "~"))
	}
	return input, nil
}
