// Package logger provides the process-wide structured logger, adapted from
// the corpus's own internal/logger: a package-level slog.Logger behind an
// atomic level/format so every goroutine logs through the same sink without
// threading a *slog.Logger through every call site, plus a context-carried
// LogContext for per-conversation fields (vnode, cookie, peer).
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Level is the logger's own level enum, independent of slog.Level, so
// callers configure it with the same DEBUG/INFO/WARN/ERROR strings used
// throughout the rest of the ambient stack.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func toSlogLevel(l Level) slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Config configures the package logger. Format is "text" or "json"; Output
// is "stdout", "stderr", or a file path.
type Config struct {
	Level  string
	Format string
	Output string
}

var (
	currentLevel  atomic.Int32
	currentFormat atomic.Value

	mu      sync.RWMutex
	output  io.Writer = os.Stdout
	slogger *slog.Logger
)

func init() {
	currentLevel.Store(int32(LevelInfo))
	currentFormat.Store("text")
	reconfigure()
}

func reconfigure() {
	mu.Lock()
	defer mu.Unlock()

	levelVar := new(slog.LevelVar)
	levelVar.Set(toSlogLevel(Level(currentLevel.Load())))
	opts := &slog.HandlerOptions{Level: levelVar}

	format, _ := currentFormat.Load().(string)
	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(output, opts)
	} else {
		handler = slog.NewTextHandler(output, opts)
	}
	slogger = slog.New(handler)
}

// Init applies cfg to the package logger. Any zero field is left unchanged.
func Init(cfg Config) error {
	if cfg.Output != "" {
		mu.Lock()
		switch strings.ToLower(cfg.Output) {
		case "stdout":
			output = os.Stdout
		case "stderr":
			output = os.Stderr
		default:
			f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				mu.Unlock()
				return fmt.Errorf("logger: open %q: %w", cfg.Output, err)
			}
			output = f
		}
		mu.Unlock()
		reconfigure()
	}

	if cfg.Level != "" {
		SetLevel(cfg.Level)
	}
	if cfg.Format != "" {
		SetFormat(cfg.Format)
	}
	return nil
}

// SetLevel sets the minimum level to emit; unrecognized values are ignored.
func SetLevel(level string) {
	switch strings.ToUpper(level) {
	case "DEBUG":
		currentLevel.Store(int32(LevelDebug))
	case "INFO":
		currentLevel.Store(int32(LevelInfo))
	case "WARN":
		currentLevel.Store(int32(LevelWarn))
	case "ERROR":
		currentLevel.Store(int32(LevelError))
	default:
		return
	}
	reconfigure()
}

// SetFormat sets the output format; unrecognized values are ignored.
func SetFormat(format string) {
	format = strings.ToLower(format)
	if format != "text" && format != "json" {
		return
	}
	currentFormat.Store(format)
	reconfigure()
}

func get() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return slogger
}

func Debug(msg string, args ...any) { get().Debug(msg, args...) }
func Info(msg string, args ...any)  { get().Info(msg, args...) }
func Warn(msg string, args ...any)  { get().Warn(msg, args...) }
func Error(msg string, args ...any) { get().Error(msg, args...) }

// DebugCtx, InfoCtx, WarnCtx, and ErrorCtx log with LogContext fields (if
// present on ctx) prepended to args.
func DebugCtx(ctx context.Context, msg string, args ...any) { get().Debug(msg, withCtx(ctx, args)...) }
func InfoCtx(ctx context.Context, msg string, args ...any)  { get().Info(msg, withCtx(ctx, args)...) }
func WarnCtx(ctx context.Context, msg string, args ...any)  { get().Warn(msg, withCtx(ctx, args)...) }
func ErrorCtx(ctx context.Context, msg string, args ...any) { get().Error(msg, withCtx(ctx, args)...) }

func withCtx(ctx context.Context, args []any) []any {
	lc := FromContext(ctx)
	if lc == nil {
		return args
	}

	ctxArgs := make([]any, 0, 8+len(args))
	if lc.TraceID != "" {
		ctxArgs = append(ctxArgs, "trace_id", lc.TraceID)
	}
	if lc.VNode != 0 {
		ctxArgs = append(ctxArgs, "vnode", lc.VNode)
	}
	if lc.Cookie != 0 {
		ctxArgs = append(ctxArgs, "cookie", lc.Cookie)
	}
	if lc.Peer != "" {
		ctxArgs = append(ctxArgs, "peer", lc.Peer)
	}
	return append(ctxArgs, args...)
}

// With returns a logger carrying args as pre-bound fields.
func With(args ...any) *slog.Logger { return get().With(args...) }

// Duration returns the elapsed time since start in fractional milliseconds,
// a convenient value to attach as a log field.
func Duration(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}
