// Package logger wires log/slog for the service: tint for terminals, JSON for
// collectors, with source locations attached only where they pay off.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/lmittmann/tint"
	"golang.org/x/term"
)

// Options configures the process-wide logger.
type Options struct {
	Level      string
	Format     string
	OutputPath string
	// Verbose attaches source locations to every level instead of warn and above.
	Verbose bool
}

var (
	mu    sync.RWMutex
	root  *slog.Logger
	level = new(slog.LevelVar)
)

// Init builds the root logger and installs it as slog's default.
func Init(opts Options) error {
	level.Set(ParseLevel(opts.Level))

	writer, err := openOutput(opts.OutputPath)
	if err != nil {
		return err
	}

	sourceFrom := slog.LevelWarn
	if opts.Verbose {
		sourceFrom = slog.LevelDebug
	}

	var base slog.Handler
	if strings.EqualFold(opts.Format, "json") {
		base = slog.NewJSONHandler(writer, &slog.HandlerOptions{Level: level})
	} else {
		base = tint.NewHandler(writer, &tint.Options{
			Level:       level,
			TimeFormat:  time.DateTime,
			NoColor:     !isTerminal(writer),
			ReplaceAttr: tintErrors,
		})
	}

	l := slog.New(newSourceHandler(base, sourceFrom))

	mu.Lock()
	root = l
	mu.Unlock()
	slog.SetDefault(l)
	return nil
}

// ParseLevel maps a config string to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetLevel changes the level of the root logger at runtime.
func SetLevel(l slog.Level) {
	level.Set(l)
}

// Get returns the root logger, creating a terminal logger if Init was never called.
func Get() *slog.Logger {
	mu.RLock()
	l := root
	mu.RUnlock()
	if l != nil {
		return l
	}

	mu.Lock()
	defer mu.Unlock()
	if root == nil {
		base := tint.NewHandler(os.Stdout, &tint.Options{
			Level:       level,
			TimeFormat:  time.DateTime,
			NoColor:     !isTerminal(os.Stdout),
			ReplaceAttr: tintErrors,
		})
		root = slog.New(newSourceHandler(base, slog.LevelWarn))
	}
	return root
}

// WithComponent returns the root logger tagged with a component name.
func WithComponent(component string) *slog.Logger {
	return Get().With("component", component)
}

func openOutput(path string) (io.Writer, error) {
	switch strings.ToLower(path) {
	case "", "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	default:
		return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	}
}

func tintErrors(_ []string, a slog.Attr) slog.Attr {
	if a.Key == "error" && a.Value.Kind() == slog.KindAny {
		if err, ok := a.Value.Any().(error); ok {
			return tint.Err(err)
		}
	}
	return a
}

func isTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}
