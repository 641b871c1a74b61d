// Package logx holds the process-wide zap logger.
//
// The console (stderr) gets a short human format, masked unless secrets are
// explicitly allowed. The optional log file gets one JSON object per line
// with caller and full timestamps, so it can be read next to found.jsonl.
package logx

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

type Config struct {
	Level                string // debug|info|warn|error, applies to console and file
	FilePath             string // e.g. "logs/solvanity_{start}.log"; {start} and {pid} are expanded; "" disables the file
	HideSecretsInConsole bool

	// Console overrides stderr; used by tests.
	Console io.Writer
}

var started = time.Now()

var (
	mu      sync.Mutex
	global  = zap.NewNop()
	sugar   = global.Sugar()
	fileOut *os.File
)

// Init replaces the global logger. Until it is called every logger returned
// by this package discards its output.
func Init(cfg Config) error {
	level := parseLevel(cfg.Level)

	console := cfg.Console
	if console == nil {
		console = os.Stderr
	}
	consoleCore := zapcore.NewCore(consoleEncoder(isTerminal(console)), zapcore.Lock(zapcore.AddSync(console)), level)
	if cfg.HideSecretsInConsole {
		consoleCore = newMaskingCore(consoleCore)
	}
	cores := []zapcore.Core{consoleCore}

	var f *os.File
	if cfg.FilePath != "" {
		path := expandPath(cfg.FilePath)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("create log dir: %w", err)
		}
		var err error
		f, err = os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		cores = append(cores, zapcore.NewCore(fileEncoder(), zapcore.AddSync(f), level))
	}

	logger := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zapcore.PanicLevel))

	Close()
	mu.Lock()
	fileOut = f
	mu.Unlock()
	Use(logger)
	return nil
}

// Use installs l as the global logger and returns a func restoring the
// previous one. Init calls it; tests call it with an observer.
func Use(l *zap.Logger) (restore func()) {
	mu.Lock()
	defer mu.Unlock()
	prevG, prevS := global, sugar
	global, sugar = l, l.Sugar()
	return func() {
		mu.Lock()
		defer mu.Unlock()
		global, sugar = prevG, prevS
	}
}

// Close flushes the logger and closes the log file, if any.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	_ = global.Sync()
	if fileOut != nil {
		_ = fileOut.Close()
		fileOut = nil
	}
}

func L() *zap.Logger {
	mu.Lock()
	defer mu.Unlock()
	return global
}

func S() *zap.SugaredLogger {
	mu.Lock()
	defer mu.Unlock()
	return sugar
}

func With(name string) *zap.SugaredLogger     { return S().Named(name) }
func WithFields(kv ...any) *zap.SugaredLogger { return S().With(kv...) }

// consoleEncoder prints "15:04:05 INFO  msg  k=v", colored on a terminal.
func consoleEncoder(color bool) zapcore.Encoder {
	cfg := zapcore.EncoderConfig{
		TimeKey:          "ts",
		LevelKey:         "lvl",
		NameKey:          "logger",
		MessageKey:       "msg",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeTime:       zapcore.TimeEncoderOfLayout(time.TimeOnly),
		EncodeDuration:   zapcore.StringDurationEncoder,
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		ConsoleSeparator: " ",
	}
	if color {
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	return zapcore.NewConsoleEncoder(cfg)
}

func fileEncoder() zapcore.Encoder {
	return zapcore.NewJSONEncoder(zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stack",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeTime:     zapcore.RFC3339NanoTimeEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	})
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func expandPath(tmpl string) string {
	return strings.NewReplacer(
		"{start}", started.Format("2006-01-02_15-04-05"),
		"{pid}", strconv.Itoa(os.Getpid()),
	).Replace(tmpl)
}

func parseLevel(lvl string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error", "err":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
