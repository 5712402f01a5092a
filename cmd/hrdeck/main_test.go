package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/tmsolberg/hrdeck/internal/config"
	"github.com/tmsolberg/hrdeck/internal/dashboard"
)

// TestMain sets deterministic environment defaults for CLI tests.
func TestMain(m *testing.M) {
	_ = os.Setenv("HRDECK_DEV_MODE", "false")
	os.Exit(m.Run())
}

type fakeProgram struct {
	runErr error
}

func (f fakeProgram) Run() (tea.Model, error) {
	return nil, f.runErr
}

func TestRunVersion(t *testing.T) {
	var out strings.Builder
	err := run(context.Background(), []string{"--version"}, &out, io.Discard)
	if err != nil {
		t.Fatalf("run(version) error = %v", err)
	}
	if !strings.Contains(out.String(), "hrdeck") {
		t.Fatalf("expected version output, got %q", out.String())
	}
}

func TestRunPathsCommand(t *testing.T) {
	var out strings.Builder
	err := run(context.Background(), []string{"paths"}, &out, io.Discard)
	if err != nil {
		t.Fatalf("run(paths) error = %v", err)
	}
	for _, field := range []string{"config:", "data_dir:", "db:", "log:"} {
		if !strings.Contains(out.String(), field) {
			t.Fatalf("paths output missing %q:\n%s", field, out.String())
		}
	}
}

func TestRunUnknownCommand(t *testing.T) {
	err := run(context.Background(), []string{"frobnicate"}, io.Discard, io.Discard)
	if err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Fatalf("expected unknown command error, got %v", err)
	}
}

func TestRunStartsProgram(t *testing.T) {
	origFactory := programFactory
	t.Cleanup(func() { programFactory = origFactory })
	programFactory = func(_ tea.Model) program { return fakeProgram{} }

	tmp := t.TempDir()
	dbPath := filepath.Join(tmp, "hrdeck.db")
	cfgPath := filepath.Join(tmp, "config.toml")
	err := run(context.Background(), []string{"--db", dbPath, "--config", cfgPath}, io.Discard, io.Discard)
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("expected database file at %s: %v", dbPath, err)
	}
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	tmp := t.TempDir()
	cfgPath := filepath.Join(tmp, "config.toml")
	content := "[dashboard]\ndefault_view = \"spreadsheet\"\n"
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	err := run(context.Background(), []string{"--db", filepath.Join(tmp, "x.db"), "--config", cfgPath}, io.Discard, io.Discard)
	if err == nil || !strings.Contains(err.Error(), "load config") {
		t.Fatalf("expected config load failure, got %v", err)
	}
}

func TestParseBoolEnv(t *testing.T) {
	t.Setenv("HRDECK_TEST_BOOL", "true")
	v, ok := parseBoolEnv("HRDECK_TEST_BOOL")
	if !ok || !v {
		t.Fatalf("parseBoolEnv(true) = %v, %v", v, ok)
	}

	t.Setenv("HRDECK_TEST_BOOL", "not-a-bool")
	if _, ok := parseBoolEnv("HRDECK_TEST_BOOL"); ok {
		t.Fatalf("expected parse failure for garbage value")
	}

	if _, ok := parseBoolEnv("HRDECK_TEST_BOOL_UNSET"); ok {
		t.Fatalf("expected unset env to report not-ok")
	}
}

func TestResolveServeAddr(t *testing.T) {
	if got := resolveServeAddr(nil, "127.0.0.1:8787"); got != "127.0.0.1:8787" {
		t.Fatalf("fallback addr = %q", got)
	}
	if got := resolveServeAddr([]string{"-addr", ":9000"}, "127.0.0.1:8787"); got != ":9000" {
		t.Fatalf("flag addr = %q", got)
	}
}

func TestControllerOptionsFromConfig(t *testing.T) {
	cfg := config.DashboardConfig{
		DefaultView: "timeline",
		SortKey:     "priority",
		SortOrder:   "desc",
		DebounceMS:  150,
	}
	ctrl := dashboard.NewController(nil, nil, controllerOptions(cfg)...)
	if ctrl.View() != dashboard.ViewTimeline {
		t.Fatalf("view = %q, want timeline", ctrl.View())
	}
	key, order := ctrl.Sort()
	if key != dashboard.SortByPriority || order != dashboard.SortDescending {
		t.Fatalf("sort = %q/%q, want priority/desc", key, order)
	}
	if ctrl.Debounce() != 150*time.Millisecond {
		t.Fatalf("debounce = %v, want 150ms", ctrl.Debounce())
	}
}

func TestRuntimeLoggerFileSink(t *testing.T) {
	tmp := t.TempDir()
	logPath := filepath.Join(tmp, "run.log")
	logger, err := newRuntimeLogger(io.Discard, "hrdeck", false, config.LoggingConfig{
		Level:   "debug",
		DevFile: logPath,
	}, "")
	if err != nil {
		t.Fatalf("newRuntimeLogger() error = %v", err)
	}
	logger.SetConsoleEnabled(false)
	logger.Info("sink check", "key", "value")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(content), "sink check") {
		t.Fatalf("log file missing entry:\n%s", content)
	}
}

func TestRuntimeLoggerRejectsBadLevel(t *testing.T) {
	_, err := newRuntimeLogger(io.Discard, "hrdeck", false, config.LoggingConfig{Level: "shout"}, "")
	if err == nil {
		t.Fatalf("expected level parse error")
	}
}
