package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/sydlexius/coverlens/internal/config"
)

// Config describes the desired logging configuration. Output defaults to
// stderr so that command output on stdout stays machine-readable.
type Config struct {
	Level          string
	Format         string
	FilePath       string
	FileMaxSizeMB  int
	FileMaxFiles   int
	FileMaxAgeDays int
	Output         io.Writer
}

// FromConfig converts the logging section of the application config.
func FromConfig(c config.LoggingConfig) Config {
	return Config{
		Level:          c.Level,
		Format:         c.Format,
		FilePath:       c.FilePath,
		FileMaxSizeMB:  c.FileMaxSizeMB,
		FileMaxFiles:   c.FileMaxFiles,
		FileMaxAgeDays: c.FileMaxAgeDays,
	}
}

// swapHandler is a slog.Handler whose inner handler can be replaced
// atomically. Loggers derived with With keep following the swaps.
type swapHandler struct {
	inner *atomic.Pointer[slog.Handler]
	attrs []slog.Attr
	group string
}

func (s *swapHandler) current() slog.Handler {
	h := *s.inner.Load()
	if s.group != "" {
		h = h.WithGroup(s.group)
	}
	if len(s.attrs) > 0 {
		h = h.WithAttrs(s.attrs)
	}
	return h
}

func (s *swapHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return (*s.inner.Load()).Enabled(ctx, level)
}

func (s *swapHandler) Handle(ctx context.Context, r slog.Record) error {
	return s.current().Handle(ctx, r)
}

func (s *swapHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(s.attrs)+len(attrs))
	merged = append(merged, s.attrs...)
	merged = append(merged, attrs...)
	return &swapHandler{inner: s.inner, attrs: merged, group: s.group}
}

// WithGroup supports a single group level, which is all this codebase uses.
func (s *swapHandler) WithGroup(name string) slog.Handler {
	return &swapHandler{inner: s.inner, attrs: s.attrs, group: name}
}

// output is the part of a Config that decides where and how records are
// written. A change to it requires a new handler.
type output struct {
	format   string
	filePath string
	sizeMB   int
	files    int
	ageDays  int
}

func (c Config) output() output {
	return output{
		format:   c.Format,
		filePath: c.FilePath,
		sizeMB:   c.FileMaxSizeMB,
		files:    c.FileMaxFiles,
		ageDays:  c.FileMaxAgeDays,
	}
}

// Manager owns the handler behind every logger it hands out. Level changes
// apply in place; output changes swap the handler and release the old file.
type Manager struct {
	level   *slog.LevelVar
	handler *atomic.Pointer[slog.Handler]

	mu   sync.Mutex
	cfg  Config
	file *lumberjack.Logger
}

// NewManager builds the handler for cfg and returns a logger bound to it.
func NewManager(cfg Config) (*Manager, *slog.Logger) {
	m := &Manager{
		level:   new(slog.LevelVar),
		handler: new(atomic.Pointer[slog.Handler]),
	}
	m.level.Set(parseLevel(cfg.Level))
	m.install(cfg)
	m.cfg = cfg
	return m, slog.New(&swapHandler{inner: m.handler})
}

// install points the shared handler at cfg's output. Callers hold mu or
// own m exclusively.
func (m *Manager) install(cfg Config) {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	m.file = nil
	if cfg.FilePath != "" {
		m.file = &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    orDefault(cfg.FileMaxSizeMB, 100),
			MaxBackups: orDefault(cfg.FileMaxFiles, 3),
			MaxAge:     orDefault(cfg.FileMaxAgeDays, 30),
		}
		out = io.MultiWriter(out, m.file)
	}

	opts := &slog.HandlerOptions{Level: m.level}
	var h slog.Handler = slog.NewTextHandler(out, opts)
	if cfg.Format == "json" {
		h = slog.NewJSONHandler(out, opts)
	}
	m.handler.Store(&h)
}

// Reconfigure applies cfg to every logger already handed out. A nil Output
// keeps the current destination.
func (m *Manager) Reconfigure(cfg Config) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if cfg.Output == nil {
		cfg.Output = m.cfg.Output
	}
	m.level.Set(parseLevel(cfg.Level))
	if cfg.output() != m.cfg.output() {
		old := m.file
		m.install(cfg)
		if old != nil {
			old.Close() //nolint:errcheck
		}
	}
	m.cfg = cfg
}

// Config returns the active configuration.
func (m *Manager) Config() Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cfg
}

// Close releases the log file, if any. It is safe to call more than once.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.file == nil {
		return nil
	}
	f := m.file
	m.file = nil
	return f.Close()
}

// parseLevel accepts slog level names in any case and falls back to Info.
func parseLevel(s string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// String summarizes the config for log lines.
func (c Config) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "level=%s format=%s", c.Level, c.Format)
	if c.FilePath != "" {
		fmt.Fprintf(&b, " file=%s", c.FilePath)
	}
	return b.String()
}
