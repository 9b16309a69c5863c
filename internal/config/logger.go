package config

import (
	"strconv"
	"strings"

	"github.com/eugenenazirov/servicekit/internal/identity"
)

// LogLevel is a severity accepted by a single logger, ordered from the most
// severe (error) to the most verbose (trace).
type LogLevel int

const (
	LogLevelError LogLevel = iota + 1
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
	LogLevelTrace
)

// DefaultLogLevel applies to loggers that do not name a level.
const DefaultLogLevel = LogLevelInfo

var logLevelNames = []string{"error", "warn", "info", "debug", "trace"}

func ParseLogLevel(raw string) (LogLevel, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	for i, name := range logLevelNames {
		if value == name {
			return LogLevel(i + 1), nil
		}
	}
	return 0, &identity.ValidationError{Field: "log level", Value: raw, Accepted: logLevelNames}
}

func (l LogLevel) String() string {
	if l < LogLevelError || l > LogLevelTrace {
		return "level(" + strconv.Itoa(int(l)) + ")"
	}
	return logLevelNames[l-1]
}

func (l LogLevel) MarshalText() ([]byte, error) {
	if l == 0 {
		return nil, nil
	}
	return []byte(l.String()), nil
}

func (l *LogLevel) UnmarshalText(text []byte) error {
	parsed, err := ParseLogLevel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// LevelRange bounds the levels a logger writes. A single level in a source
// document sets both ends.
type LevelRange struct {
	Min LogLevel `mapstructure:"min" json:"min,omitempty" yaml:"min,omitempty" toml:"min,omitempty"`
	Max LogLevel `mapstructure:"max" json:"max,omitempty" yaml:"max,omitempty" toml:"max,omitempty"`
}

// SingleLevel is the range holding only level.
func SingleLevel(level LogLevel) LevelRange {
	return LevelRange{Min: level, Max: level}
}

func (r *LevelRange) UnmarshalText(text []byte) error {
	level, err := ParseLogLevel(string(text))
	if err != nil {
		return err
	}
	*r = SingleLevel(level)
	return nil
}

// Bounds returns the inclusive range in severity order. Unset ends fall back
// to DefaultLogLevel.
func (r LevelRange) Bounds() (LogLevel, LogLevel) {
	lo, hi := r.Min, r.Max
	if lo == 0 {
		lo = DefaultLogLevel
	}
	if hi == 0 {
		hi = lo
	}
	if lo > hi {
		lo, hi = hi, lo
	}
	return lo, hi
}

// Contains reports whether level falls inside the range.
func (r LevelRange) Contains(level LogLevel) bool {
	lo, hi := r.Bounds()
	return level >= lo && level <= hi
}

// ConsoleTarget selects the standard stream of a console logger.
type ConsoleTarget string

const (
	ConsoleNone   ConsoleTarget = ""
	ConsoleStdout ConsoleTarget = "stdout"
	ConsoleStderr ConsoleTarget = "stderr"
)

func (c *ConsoleTarget) UnmarshalText(text []byte) error {
	switch value := ConsoleTarget(strings.ToLower(strings.TrimSpace(string(text)))); value {
	case ConsoleNone, ConsoleStdout, ConsoleStderr:
		*c = value
		return nil
	default:
		return &identity.ValidationError{Field: "console", Value: string(text), Accepted: []string{"stdout", "stderr"}}
	}
}

// LoggerConfig describes one log sink. A logger writes to the console, to a
// size-rotated file under Directory, or to both.
type LoggerConfig struct {
	Console    ConsoleTarget `mapstructure:"console" json:"console,omitempty" yaml:"console,omitempty" toml:"console,omitempty"`
	Directory  string        `mapstructure:"directory" json:"directory,omitempty" yaml:"directory,omitempty" toml:"directory,omitempty"`
	Name       string        `mapstructure:"name" json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
	Level      LevelRange    `mapstructure:"level" json:"level" yaml:"level" toml:"level"`
	MaxSizeMB  int           `mapstructure:"max_size_mb" json:"max_size_mb,omitempty" yaml:"max_size_mb,omitempty" toml:"max_size_mb,omitempty"`
	MaxBackups int           `mapstructure:"max_backups" json:"max_backups,omitempty" yaml:"max_backups,omitempty" toml:"max_backups,omitempty"`
	MaxAgeDays int           `mapstructure:"max_age_days" json:"max_age_days,omitempty" yaml:"max_age_days,omitempty" toml:"max_age_days,omitempty"`
	Compress   bool          `mapstructure:"compress" json:"compress,omitempty" yaml:"compress,omitempty" toml:"compress,omitempty"`
}

// HasFile reports whether the logger writes to a file.
func (c LoggerConfig) HasFile() bool {
	return c.Name != ""
}

// UnmarshalText expands a preset name.
func (c *LoggerConfig) UnmarshalText(text []byte) error {
	preset, err := ParseLoggerPreset(string(text))
	if err != nil {
		return err
	}
	*c = preset.Config()
	return nil
}

// LoggerPreset names a predefined LoggerConfig.
type LoggerPreset string

const (
	PresetStdout       LoggerPreset = "stdout"
	PresetStderr       LoggerPreset = "stderr"
	PresetError        LoggerPreset = "error"
	PresetRollingInfo  LoggerPreset = "rolling-info"
	PresetRollingDebug LoggerPreset = "rolling-debug"
)

func LoggerPresets() []LoggerPreset {
	return []LoggerPreset{PresetStdout, PresetStderr, PresetError, PresetRollingInfo, PresetRollingDebug}
}

func ParseLoggerPreset(raw string) (LoggerPreset, error) {
	value := LoggerPreset(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), "_", "-"))
	for _, preset := range LoggerPresets() {
		if value == preset {
			return preset, nil
		}
	}
	return "", &identity.ValidationError{Field: "logger preset", Value: raw, Accepted: names(LoggerPresets())}
}

const (
	presetDirectory = "logs"
	presetMaxSizeMB = 100
)

// Config expands the preset.
func (p LoggerPreset) Config() LoggerConfig {
	switch p {
	case PresetStdout:
		return LoggerConfig{Console: ConsoleStdout, Level: LevelRange{Min: LogLevelInfo, Max: LogLevelTrace}}
	case PresetStderr:
		return LoggerConfig{Console: ConsoleStderr, Level: LevelRange{Min: LogLevelError, Max: LogLevelWarn}}
	case PresetError:
		return LoggerConfig{
			Directory: presetDirectory,
			Name:      "app.error",
			Level:     LevelRange{Min: LogLevelError, Max: LogLevelWarn},
		}
	case PresetRollingInfo:
		return LoggerConfig{
			Directory:  presetDirectory,
			Name:       "app",
			Level:      SingleLevel(LogLevelInfo),
			MaxSizeMB:  presetMaxSizeMB,
			MaxBackups: 7,
		}
	case PresetRollingDebug:
		return LoggerConfig{
			Directory:  presetDirectory,
			Name:       "app.debug",
			Level:      LevelRange{Min: LogLevelError, Max: LogLevelTrace},
			MaxSizeMB:  presetMaxSizeMB,
			MaxBackups: 3,
			Compress:   true,
		}
	default:
		return LoggerConfig{}
	}
}
