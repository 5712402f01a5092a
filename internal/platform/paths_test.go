package platform

import (
	"path/filepath"
	"testing"
)

func TestPathsForLinuxWithXDG(t *testing.T) {
	p, err := PathsFor("linux", map[string]string{
		"XDG_CONFIG_HOME": "/xdg/config",
		"XDG_DATA_HOME":   "/xdg/data",
	}, "/fallback/config", "/fallback/data", "hrdeck")
	if err != nil {
		t.Fatalf("PathsFor() error = %v", err)
	}
	wantConfig := filepath.Join("/xdg/config", "hrdeck", "config.toml")
	wantDB := filepath.Join("/xdg/data", "hrdeck", "hrdeck.db")
	if p.ConfigPath != wantConfig {
		t.Fatalf("unexpected config path %q", p.ConfigPath)
	}
	if p.DBPath != wantDB {
		t.Fatalf("unexpected db path %q", p.DBPath)
	}
	if p.LogPath != filepath.Join("/xdg/data", "hrdeck", "hrdeck.log") {
		t.Fatalf("unexpected log path %q", p.LogPath)
	}
}

func TestPathsForWindowsUsesAppData(t *testing.T) {
	p, err := PathsFor("windows", map[string]string{
		"APPDATA":      `C:\Users\me\AppData\Roaming`,
		"LOCALAPPDATA": `C:\Users\me\AppData\Local`,
	}, `C:\fallback\config`, `C:\fallback\data`, "hrdeck")
	if err != nil {
		t.Fatalf("PathsFor() error = %v", err)
	}

	wantConfig := filepath.Join(`C:\Users\me\AppData\Roaming`, "hrdeck", "config.toml")
	wantDB := filepath.Join(`C:\Users\me\AppData\Local`, "hrdeck", "hrdeck.db")
	if p.ConfigPath != wantConfig {
		t.Fatalf("unexpected config path %q", p.ConfigPath)
	}
	if p.DBPath != wantDB {
		t.Fatalf("unexpected db path %q", p.DBPath)
	}
}

func TestPathsForEmptyDirsFails(t *testing.T) {
	if _, err := PathsFor("darwin", nil, "", "/tmp/data", "hrdeck"); err == nil {
		t.Fatal("expected error for empty dirs")
	}
}

func TestPathsForDarwinFallback(t *testing.T) {
	p, err := PathsFor("darwin", map[string]string{
		"XDG_CONFIG_HOME": "/ignored",
		"XDG_DATA_HOME":   "/ignored",
	}, "/Users/me/Library/Application Support", "/Users/me/Library/Application Support", "hrdeck")
	if err != nil {
		t.Fatalf("PathsFor() error = %v", err)
	}
	wantConfig := filepath.Join("/Users/me/Library/Application Support", "hrdeck", "config.toml")
	if p.ConfigPath != wantConfig {
		t.Fatalf("unexpected config path %q", p.ConfigPath)
	}
}

func TestPathsForUnknownFallback(t *testing.T) {
	p, err := PathsFor("freebsd", map[string]string{}, "/cfg", "/data", "hrdeck")
	if err != nil {
		t.Fatalf("PathsFor() error = %v", err)
	}
	if p.ConfigPath != filepath.Join("/cfg", "hrdeck", "config.toml") {
		t.Fatalf("unexpected config path %q", p.ConfigPath)
	}
	if p.DataDir != filepath.Join("/data", "hrdeck") {
		t.Fatalf("unexpected data dir %q", p.DataDir)
	}
}

func TestDefaultPathsSmoke(t *testing.T) {
	p, err := DefaultPaths()
	if err != nil {
		t.Fatalf("DefaultPaths() error = %v", err)
	}
	if p.ConfigPath == "" || p.DBPath == "" || p.DataDir == "" || p.LogPath == "" {
		t.Fatalf("expected non-empty paths, got %#v", p)
	}
}

func TestDefaultPathsWithOptionsDevMode(t *testing.T) {
	p, err := DefaultPathsWithOptions(Options{AppName: "hrdeck", DevMode: true})
	if err != nil {
		t.Fatalf("DefaultPathsWithOptions() error = %v", err)
	}
	if filepath.Base(filepath.Dir(p.ConfigPath)) != "hrdeck-dev" {
		t.Fatalf("expected dev config dir suffix, got %q", p.ConfigPath)
	}
	if filepath.Base(p.DBPath) != "hrdeck-dev.db" {
		t.Fatalf("expected dev db name, got %q", p.DBPath)
	}
}
