package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/tmsolberg/hrdeck/internal/dashboard"
)

type Config struct {
	Database  DatabaseConfig  `toml:"database"`
	Identity  IdentityConfig  `toml:"identity"`
	Dashboard DashboardConfig `toml:"dashboard"`
	Server    ServerConfig    `toml:"server"`
	Logging   LoggingConfig   `toml:"logging"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

// IdentityConfig names the local operator, used for "assigned to me"
// filtering and the activity-log actor.
type IdentityConfig struct {
	UserID      string `toml:"user_id"`
	DisplayName string `toml:"display_name"`
}

type DashboardConfig struct {
	DefaultView string `toml:"default_view"` // board | list | calendar | timeline
	SortKey     string `toml:"sort_key"`
	SortOrder   string `toml:"sort_order"`
	DebounceMS  int    `toml:"search_debounce_ms"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

type LoggingConfig struct {
	Level   string `toml:"level"`
	DevFile string `toml:"dev_file"`
}

func Default(dbPath string) Config {
	return Config{
		Database: DatabaseConfig{
			Path: dbPath,
		},
		Identity: IdentityConfig{},
		Dashboard: DashboardConfig{
			DefaultView: string(dashboard.ViewBoard),
			SortKey:     string(dashboard.SortByCreatedAt),
			SortOrder:   string(dashboard.SortAscending),
			DebounceMS:  int(dashboard.DefaultDebounce.Milliseconds()),
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8787",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return errors.New("database path is required")
	}

	view := dashboard.ViewMode(strings.TrimSpace(strings.ToLower(c.Dashboard.DefaultView)))
	if view != "" && !slices.Contains(dashboard.ViewModes, view) {
		return fmt.Errorf("invalid dashboard.default_view: %q", c.Dashboard.DefaultView)
	}

	key := dashboard.SortKey(strings.TrimSpace(c.Dashboard.SortKey))
	if key != "" && !slices.Contains(dashboard.SortKeys, key) {
		return fmt.Errorf("invalid dashboard.sort_key: %q", c.Dashboard.SortKey)
	}

	switch strings.TrimSpace(strings.ToLower(c.Dashboard.SortOrder)) {
	case "", string(dashboard.SortAscending), string(dashboard.SortDescending):
	default:
		return fmt.Errorf("invalid dashboard.sort_order: %q", c.Dashboard.SortOrder)
	}

	if c.Dashboard.DebounceMS < 0 {
		return errors.New("dashboard.search_debounce_ms must be >= 0")
	}

	switch strings.TrimSpace(strings.ToLower(c.Logging.Level)) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging.level: %q", c.Logging.Level)
	}

	return nil
}

func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
