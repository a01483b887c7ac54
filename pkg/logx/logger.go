package logx

import (
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

// Fields is a map of structured data
type Fields map[string]interface{}

// Logger is the main logger instance. Formatting and encoding are delegated
// to zerolog; Logger owns the level gate and the exit hook.
type Logger struct {
	config   *Config
	mu       sync.RWMutex
	zl       zerolog.Logger
	exitFunc func(int)
}

// NewLogger creates a new logger with the given config
func NewLogger(config *Config) *Logger {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Output == nil {
		config.Output = os.Stdout
	}

	l := &Logger{
		config:   config,
		exitFunc: os.Exit,
	}
	l.zl = l.build(config.Output)
	return l
}

func (l *Logger) build(w io.Writer) zerolog.Logger {
	out := w
	if l.config.Format == FormatConsole {
		out = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: l.config.TimeFormat,
			NoColor:    !l.config.EnableColors,
		}
	}

	ctx := zerolog.New(out).Level(zerolog.TraceLevel).With().Timestamp()
	if l.config.EnableCaller {
		ctx = ctx.CallerWithSkipFrameCount(4)
	}
	return ctx.Logger()
}

// SetLevel sets the log level
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.config.Level = level
}

// GetLevel returns the current log level
func (l *Logger) GetLevel() Level {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.config.Level
}

// SetOutput sets the output writer
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.config.Output = w
	l.zl = l.build(w)
}

func (l *Logger) log(level Level, msg string, fields Fields, err error) {
	l.mu.RLock()
	enabled := l.config.Level.Enabled(level)
	zl := l.zl
	l.mu.RUnlock()

	if !enabled {
		return
	}

	ev := zl.WithLevel(level.zerolog())
	if len(fields) > 0 {
		ev = ev.Fields(map[string]interface{}(fields))
	}
	if err != nil {
		ev = ev.Err(err)
	}
	ev.Msg(msg)
}

// WithField creates a new entry with a field
func (l *Logger) WithField(key string, value interface{}) *Entry {
	return newEntry(l).WithField(key, value)
}

// WithFields creates a new entry with fields
func (l *Logger) WithFields(fields Fields) *Entry {
	return newEntry(l).WithFields(fields)
}

// WithError creates a new entry with an error
func (l *Logger) WithError(err error) *Entry {
	return newEntry(l).WithError(err)
}

// exit calls the exit function (useful for testing)
func (l *Logger) exit(code int) {
	l.exitFunc(code)
}
