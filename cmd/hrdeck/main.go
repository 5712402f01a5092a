package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	charmLog "github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/tmsolberg/hrdeck/internal/adapters/server"
	"github.com/tmsolberg/hrdeck/internal/adapters/storage/sqlite"
	"github.com/tmsolberg/hrdeck/internal/app"
	"github.com/tmsolberg/hrdeck/internal/config"
	"github.com/tmsolberg/hrdeck/internal/dashboard"
	"github.com/tmsolberg/hrdeck/internal/platform"
	"github.com/tmsolberg/hrdeck/internal/tui"
)

var version = "dev"

// program abstracts the TUI event loop so tests can swap in a stub runner.
type program interface {
	Run() (tea.Model, error)
}

var programFactory = func(m tea.Model) program {
	return tea.NewProgram(m)
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// run runs the requested command flow.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	fs := flag.NewFlagSet("hrdeck", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var (
		configPath string
		dbPath     string
		appName    string
		devMode    bool
		showVer    bool
	)
	defaultDevMode := version == "dev"
	if envDev, ok := parseBoolEnv("HRDECK_DEV_MODE"); ok {
		defaultDevMode = envDev
	}
	if envApp := strings.TrimSpace(os.Getenv("HRDECK_APP_NAME")); envApp != "" {
		appName = envApp
	} else {
		appName = "hrdeck"
	}
	fs.StringVar(&configPath, "config", "", "path to config TOML")
	fs.StringVar(&dbPath, "db", "", "path to sqlite database")
	fs.StringVar(&appName, "app", appName, "application name for config/data path resolution")
	fs.BoolVar(&devMode, "dev", defaultDevMode, "use dev mode paths (<app>-dev)")
	fs.BoolVar(&showVer, "version", false, "show version")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if showVer {
		_, _ = fmt.Fprintf(stdout, "hrdeck %s\n", version)
		return nil
	}

	paths, err := platform.DefaultPathsWithOptions(platform.Options{
		AppName: appName,
		DevMode: devMode,
	})
	if err != nil {
		return err
	}

	command := firstArg(fs.Args())
	switch command {
	case "paths":
		_, _ = fmt.Fprintf(stdout, "app: %s\n", appName)
		_, _ = fmt.Fprintf(stdout, "dev_mode: %t\n", devMode)
		_, _ = fmt.Fprintf(stdout, "config: %s\n", paths.ConfigPath)
		_, _ = fmt.Fprintf(stdout, "data_dir: %s\n", paths.DataDir)
		_, _ = fmt.Fprintf(stdout, "db: %s\n", paths.DBPath)
		_, _ = fmt.Fprintf(stdout, "log: %s\n", paths.LogPath)
		return nil
	case "", "serve":
		// Continue.
	default:
		return fmt.Errorf("unknown command: %s", command)
	}

	dbOverridden := strings.TrimSpace(dbPath) != ""
	if configPath == "" {
		if envPath := strings.TrimSpace(os.Getenv("HRDECK_CONFIG")); envPath != "" {
			configPath = envPath
		} else {
			configPath = paths.ConfigPath
		}
	}
	if !dbOverridden {
		if envPath := strings.TrimSpace(os.Getenv("HRDECK_DB_PATH")); envPath != "" {
			dbPath = envPath
			dbOverridden = true
		} else {
			dbPath = paths.DBPath
		}
	}

	defaultCfg := config.Default(dbPath)
	cfg, err := config.Load(configPath, defaultCfg)
	if err != nil {
		return fmt.Errorf("load config %q: %w", configPath, err)
	}
	if dbOverridden {
		cfg.Database.Path = dbPath
	}

	logger, err := newRuntimeLogger(stderr, appName, devMode, cfg.Logging, paths.LogPath)
	if err != nil {
		return fmt.Errorf("configure runtime logger: %w", err)
	}
	if command == "" {
		// Keep dashboard rendering clean: runtime logs stay in the file sink
		// while the board is on screen.
		logger.SetConsoleEnabled(false)
	}
	defer func() {
		if closeErr := logger.Close(); closeErr != nil && logger.consoleEnabled {
			_, _ = fmt.Fprintf(stderr, "warning: close runtime log sink: %v\n", closeErr)
		}
	}()

	logger.Info("startup configuration resolved", "app", appName, "dev_mode", devMode, "command", command)
	logger.Debug("runtime paths resolved", "config_path", configPath, "data_dir", paths.DataDir, "db_path", dbPath)
	logger.Info("configuration loaded", "config_path", configPath, "db_path", cfg.Database.Path, "log_level", cfg.Logging.Level)
	if logger.filePath != "" {
		logger.Info("file logging enabled", "path", logger.filePath)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	repo, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Error("sqlite open failed", "db_path", cfg.Database.Path, "err", err)
		return fmt.Errorf("open sqlite repository: %w", err)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			logger.Warn("sqlite close failed", "db_path", cfg.Database.Path, "err", closeErr)
		}
	}()
	logger.Info("sqlite repository ready", "db_path", cfg.Database.Path, "migrations", "ensured")

	svc := app.NewService(repo, uuid.NewString, nil, app.ServiceConfig{
		ActingUserID: strings.TrimSpace(cfg.Identity.UserID),
		Notifier:     logNotifier{logger: logger},
	})
	logger.Debug("application service initialized", "acting_user", cfg.Identity.UserID)

	if command == "serve" {
		addr := resolveServeAddr(fs.Args()[1:], cfg.Server.Addr)
		logger.Info("command flow start", "command", "serve", "addr", addr)
		if err := server.Run(ctx, server.Config{HTTPBind: addr, Version: version}, svc); err != nil {
			logger.Error("command flow failed", "command", "serve", "err", err)
			return fmt.Errorf("run http server: %w", err)
		}
		logger.Info("command flow complete", "command", "serve")
		return nil
	}

	ctrl := dashboard.NewController(svc, svc, controllerOptions(cfg.Dashboard)...)
	m := tui.NewModel(svc, ctrl)

	logger.Info("starting tui program loop")
	if _, err := programFactory(m).Run(); err != nil {
		logger.Error("tui program terminated with error", "err", err)
		return fmt.Errorf("run tui program: %w", err)
	}
	logger.Info("command flow complete", "command", "tui")
	return nil
}

// resolveServeAddr applies the serve subcommand's -addr flag over the config value.
func resolveServeAddr(args []string, fallback string) string {
	fs := flag.NewFlagSet("hrdeck serve", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	addr := fs.String("addr", fallback, "http listen address")
	if err := fs.Parse(args); err != nil {
		return fallback
	}
	if strings.TrimSpace(*addr) == "" {
		return fallback
	}
	return *addr
}

// controllerOptions maps persisted dashboard settings into controller options.
func controllerOptions(cfg config.DashboardConfig) []dashboard.ControllerOption {
	opts := make([]dashboard.ControllerOption, 0, 3)
	if view := strings.TrimSpace(strings.ToLower(cfg.DefaultView)); view != "" {
		opts = append(opts, dashboard.WithInitialView(dashboard.ViewMode(view)))
	}
	key := dashboard.SortKey(strings.TrimSpace(cfg.SortKey))
	order := dashboard.SortOrder(strings.TrimSpace(strings.ToLower(cfg.SortOrder)))
	if key != "" || order != "" {
		if key == "" {
			key = dashboard.SortByCreatedAt
		}
		if order == "" {
			order = dashboard.SortAscending
		}
		opts = append(opts, dashboard.WithInitialSort(key, order))
	}
	if cfg.DebounceMS > 0 {
		opts = append(opts, dashboard.WithDebounce(time.Duration(cfg.DebounceMS)*time.Millisecond))
	}
	return opts
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

// parseBoolEnv parses input into a normalized form.
func parseBoolEnv(name string) (bool, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}

// logNotifier routes service notifications into the runtime log sinks.
type logNotifier struct {
	logger *runtimeLogger
}

func (n logNotifier) Notify(message string, severity app.Severity) {
	switch severity {
	case app.SeverityWarning:
		n.logger.Warn(message)
	case app.SeverityError:
		n.logger.Error(message)
	default:
		n.logger.Info(message)
	}
}

// runtimeLogger fans log events to a styled console sink and an optional file sink.
type runtimeLogger struct {
	sinks          []*charmLog.Logger
	consoleSink    *charmLog.Logger
	consoleEnabled bool
	closeFile      func() error
	filePath       string
}

// newRuntimeLogger configures runtime log sinks from CLI/config state. The file
// sink is active in dev mode or when logging.dev_file names an explicit path.
func newRuntimeLogger(stderr io.Writer, appName string, devMode bool, cfg config.LoggingConfig, defaultLogPath string) (*runtimeLogger, error) {
	levelName := strings.TrimSpace(cfg.Level)
	if levelName == "" {
		levelName = "info"
	}
	level, err := charmLog.ParseLevel(levelName)
	if err != nil {
		return nil, fmt.Errorf("parse logging level %q: %w", cfg.Level, err)
	}
	if stderr == nil {
		stderr = io.Discard
	}

	consoleLogger := charmLog.NewWithOptions(stderr, charmLog.Options{
		Level:           level,
		Prefix:          appName,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Formatter:       charmLog.TextFormatter,
	})

	logger := &runtimeLogger{
		sinks:          []*charmLog.Logger{consoleLogger},
		consoleSink:    consoleLogger,
		consoleEnabled: true,
	}

	logPath := strings.TrimSpace(cfg.DevFile)
	if logPath == "" && devMode {
		logPath = defaultLogPath
	}
	if logPath == "" {
		return logger, nil
	}

	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	// Keep file output parseable and unstyled while preserving styled console logs.
	fileLogger := charmLog.NewWithOptions(logFile, charmLog.Options{
		Level:           level,
		Prefix:          appName,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Formatter:       charmLog.LogfmtFormatter,
	})
	logger.sinks = append(logger.sinks, fileLogger)
	logger.closeFile = logFile.Close
	logger.filePath = logPath
	return logger, nil
}

func (l *runtimeLogger) Close() error {
	if l == nil || l.closeFile == nil {
		return nil
	}
	return l.closeFile()
}

// SetConsoleEnabled toggles whether the console sink receives runtime events.
func (l *runtimeLogger) SetConsoleEnabled(enabled bool) {
	if l == nil {
		return
	}
	l.consoleEnabled = enabled
}

func (l *runtimeLogger) shouldLogToSink(sink *charmLog.Logger) bool {
	if l == nil || sink == nil {
		return false
	}
	if sink == l.consoleSink && !l.consoleEnabled {
		return false
	}
	return true
}

func (l *runtimeLogger) Debug(msg string, keyvals ...any) { l.emit(charmLog.DebugLevel, msg, keyvals) }
func (l *runtimeLogger) Info(msg string, keyvals ...any)  { l.emit(charmLog.InfoLevel, msg, keyvals) }
func (l *runtimeLogger) Warn(msg string, keyvals ...any)  { l.emit(charmLog.WarnLevel, msg, keyvals) }
func (l *runtimeLogger) Error(msg string, keyvals ...any) { l.emit(charmLog.ErrorLevel, msg, keyvals) }

func (l *runtimeLogger) emit(level charmLog.Level, msg string, keyvals []any) {
	if l == nil {
		return
	}
	for _, sink := range l.sinks {
		if !l.shouldLogToSink(sink) {
			continue
		}
		sink.Log(level, msg, keyvals...)
	}
}
