package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/muesli/termenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/eugenenazirov/servicekit/internal/config"
)

// Bootstrap creates the JSON logger used before configuration is resolved.
func Bootstrap() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "json"
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.StacktraceKey = "stacktrace"
	cfg.DisableStacktrace = false

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}

// Options selects the sinks of a logger built by New.
type Options struct {
	Verbosity config.Verbosity
	Color     config.Color
	// Loggers lists the sinks. When empty a single stderr console sink is used.
	Loggers []config.LoggerConfig
	Stdout  zapcore.WriteSyncer
	Stderr  zapcore.WriteSyncer
}

// FromConfiguration derives Options from a resolved configuration.
func FromConfiguration(cfg config.Configuration) Options {
	return Options{
		Verbosity: cfg.Verbosity,
		Color:     cfg.Color,
		Loggers:   cfg.Logging,
	}
}

// New builds a logger teeing every configured sink. The returned close
// function releases file sinks.
func New(opts Options) (*zap.Logger, func() error, error) {
	if opts.Stdout == nil {
		opts.Stdout = zapcore.Lock(os.Stdout)
	}
	if opts.Stderr == nil {
		opts.Stderr = zapcore.Lock(os.Stderr)
	}

	loggers := opts.Loggers
	if len(loggers) == 0 {
		loggers = []config.LoggerConfig{{
			Console: config.ConsoleStderr,
			Level:   config.LevelRange{Min: config.LogLevelError, Max: config.LogLevelTrace},
		}}
	}

	threshold := Threshold(opts.Verbosity)
	var (
		cores   []zapcore.Core
		closers []io.Closer
	)
	for i, logger := range loggers {
		if logger.Console == config.ConsoleNone && !logger.HasFile() {
			return nil, nil, fmt.Errorf("logger %d has neither a console nor a file", i)
		}

		if logger.Console != config.ConsoleNone {
			out := opts.Stdout
			if logger.Console == config.ConsoleStderr {
				out = opts.Stderr
			}
			cores = append(cores, zapcore.NewCore(
				consoleEncoder(ColorEnabled(opts.Color, out)),
				out,
				consoleEnabler(threshold, logger.Level),
			))
		}

		if logger.HasFile() {
			sink := fileSink(logger)
			closers = append(closers, sink)
			cores = append(cores, zapcore.NewCore(
				fileEncoder(),
				zapcore.AddSync(sink),
				rangeEnabler(logger.Level),
			))
		}
	}

	closeFn := func() error {
		var errs []error
		for _, c := range closers {
			errs = append(errs, c.Close())
		}
		return errors.Join(errs...)
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller()), closeFn, nil
}

// Threshold is the least severe zap level console sinks emit at verbosity v.
func Threshold(v config.Verbosity) zapcore.Level {
	switch v {
	case config.VerbosityWarn:
		return zapcore.WarnLevel
	case config.VerbosityInfo:
		return zapcore.InfoLevel
	case config.VerbosityDebug, config.VerbosityTrace:
		return zapcore.DebugLevel
	default:
		return zapcore.ErrorLevel
	}
}

func toLogLevel(l zapcore.Level) config.LogLevel {
	switch {
	case l <= zapcore.DebugLevel:
		return config.LogLevelDebug
	case l == zapcore.InfoLevel:
		return config.LogLevelInfo
	case l == zapcore.WarnLevel:
		return config.LogLevelWarn
	default:
		return config.LogLevelError
	}
}

func rangeEnabler(levels config.LevelRange) zap.LevelEnablerFunc {
	return func(l zapcore.Level) bool {
		return levels.Contains(toLogLevel(l))
	}
}

// Console sinks obey both their own range and the global verbosity.
func consoleEnabler(threshold zapcore.Level, levels config.LevelRange) zap.LevelEnablerFunc {
	return func(l zapcore.Level) bool {
		return l >= threshold && levels.Contains(toLogLevel(l))
	}
}

// ColorEnabled resolves mode for out; auto checks for a terminal and honours
// NO_COLOR and CLICOLOR_FORCE.
func ColorEnabled(mode config.Color, out io.Writer) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	default:
		return termenv.NewOutput(out).EnvColorProfile() != termenv.Ascii
	}
}

func consoleEncoder(color bool) zapcore.Encoder {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	if color {
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	return zapcore.NewConsoleEncoder(cfg)
}

func fileEncoder() zapcore.Encoder {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "timestamp"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	return zapcore.NewJSONEncoder(cfg)
}

func fileSink(logger config.LoggerConfig) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   filepath.Join(logger.Directory, logger.Name+".log"),
		MaxSize:    logger.MaxSizeMB,
		MaxBackups: logger.MaxBackups,
		MaxAge:     logger.MaxAgeDays,
		Compress:   logger.Compress,
		LocalTime:  true,
	}
}
