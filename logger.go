package mojogen

import (
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/refaktor/mojogen/textutils"
)

type LogLevel int

const (
	INFO  LogLevel = 0
	WARN  LogLevel = 1
	ERROR LogLevel = 2
	FATAL LogLevel = 99
)

// Logger is a small leveled logger. The zero value discards everything,
// as does a nil *Logger.
type Logger struct {
	Prefix   string
	MinLevel LogLevel

	z *zap.Logger
}

// NewLogger creates a Logger writing to w, as human readable lines or,
// if json is set, as one JSON object per line.
func NewLogger(w io.Writer, json bool) *Logger {
	encCfg := zapcore.EncoderConfig{
		LevelKey:    "level",
		NameKey:     "logger",
		MessageKey:  "msg",
		LineEnding:  zapcore.DefaultLineEnding,
		EncodeLevel: zapcore.CapitalLevelEncoder,
		EncodeName:  zapcore.FullNameEncoder,
	}
	var enc zapcore.Encoder
	if json {
		encCfg.TimeKey = "ts"
		encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		enc = zapcore.NewConsoleEncoder(encCfg)
	}
	return &Logger{
		z: zap.New(zapcore.NewCore(enc, zapcore.AddSync(w), zap.DebugLevel)),
	}
}

// Sync flushes buffered log entries.
func (l *Logger) Sync() error {
	if l == nil || l.z == nil {
		return nil
	}
	return l.z.Sync()
}

// Log formats a message like [fmt.Printf] and logs it. Multi-line
// messages start on their own line and are indented. FATAL exits the
// process after logging.
func (l *Logger) Log(level LogLevel, format string, args ...any) {
	if l == nil || l.z == nil || level < l.MinLevel {
		return
	}
	z := l.z
	if l.Prefix != "" {
		z = z.Named(l.Prefix)
	}
	s := fmt.Sprintf(format, args...)
	if strings.Contains(strings.TrimSuffix(s, "\n"), "\n") {
		s = "\n" + strings.TrimSuffix(textutils.IndentString(s, "  ", 1), "\n")
	} else {
		s = strings.TrimSuffix(s, "\n")
	}
	switch level {
	case INFO:
		z.Info(s)
	case WARN:
		z.Warn(s)
	case ERROR:
		z.Error(s)
	case FATAL:
		z.Fatal(s)
	default:
		panic(fmt.Sprintf("invalid log level: %v", level))
	}
}
