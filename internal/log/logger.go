// Package log wraps slog with the component tagging and field vocabulary
// shared by the server and the workers.
package log

import (
	"log/slog"
	"os"
	"strings"
)

// Logger stamps every record with the component that emitted it. The
// component attribute is attached once at construction, not per call.
type Logger struct {
	*slog.Logger
	component string
}

// Config holds logger configuration. Handler overrides Level when set;
// tests use it to capture output.
type Config struct {
	Level     slog.Level
	Component string
	Handler   slog.Handler
}

// DefaultConfig reads the level from LOG_LEVEL and tags records as the main
// application component.
func DefaultConfig() Config {
	return Config{
		Level:     LevelFromEnv(),
		Component: ComponentApp,
	}
}

// LevelFromEnv maps LOG_LEVEL (debug, info, warn, error) onto a slog level,
// defaulting to info.
func LevelFromEnv() slog.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New creates a logger from the given configuration.
func New(config Config) *Logger {
	handler := config.Handler
	if handler == nil {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: config.Level,
		})
	}

	component := config.Component
	if component == "" {
		component = ComponentApp
	}

	return &Logger{
		Logger:    slog.New(handler).With(FieldComponent, component),
		component: component,
	}
}

// With returns a logger carrying the extra attributes.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		Logger:    l.Logger.With(args...),
		component: l.component,
	}
}

// Component returns the logger's component name.
func (l *Logger) Component() string {
	return l.component
}

// SetDefault routes the package-level slog calls through this logger, so
// code that logs via slog directly inherits the component tag.
func SetDefault(logger *Logger) {
	slog.SetDefault(logger.Logger)
}
