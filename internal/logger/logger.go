package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls which sinks the logger writes to. All sinks are optional;
// with none configured Init returns a no-op logger.
type Options struct {
	// Debug lowers the level from Info to Debug.
	Debug bool

	// FilePath enables a rotated JSON log file when non-empty.
	FilePath string

	// Buffer receives every entry for in-app display.
	Buffer *LogBuffer

	// Console enables human-readable output on stderr. Keep this off while
	// the TUI owns the terminal.
	Console bool
}

// Init builds the application logger. Structured JSON goes to the rotated
// file and to the in-memory buffer so the logs screen sees exactly what is
// on disk.
func Init(opts Options) *zap.Logger {
	level := zap.InfoLevel
	if opts.Debug {
		level = zap.DebugLevel
	}

	encoderConfig := zapcore.EncoderConfig{
		MessageKey:     "msg",
		LevelKey:       "level",
		TimeKey:        "time",
		NameKey:        "logger",
		CallerKey:      "",
		StacktraceKey:  "",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}

	var cores []zapcore.Core

	if opts.FilePath != "" {
		fileWriter := &lumberjack.Logger{
			Filename:   opts.FilePath,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     7, // days
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderConfig),
			zapcore.AddSync(fileWriter),
			level,
		))
	}

	if opts.Buffer != nil {
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderConfig),
			zapcore.AddSync(opts.Buffer),
			level,
		))
	}

	if opts.Console {
		cores = append(cores, zapcore.NewCore(
			PrettyEncoder(),
			zapcore.AddSync(zapcore.Lock(os.Stderr)),
			level,
		))
	}

	if len(cores) == 0 {
		return zap.NewNop()
	}

	return zap.New(zapcore.NewTee(cores...))
}
