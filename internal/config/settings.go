package config

import (
	"strconv"
	"strings"

	"github.com/eugenenazirov/servicekit/internal/identity"
)

// Verbosity is the global log verbosity selected by the -v count.
type Verbosity int

const (
	VerbosityOff Verbosity = iota
	VerbosityError
	VerbosityWarn
	VerbosityInfo
	VerbosityDebug
	VerbosityTrace
)

var verbosityNames = []string{"off", "error", "warn", "info", "debug", "trace"}

// VerbosityFromCount maps a repeated -v flag to a Verbosity, saturating at
// trace.
func VerbosityFromCount(count int) Verbosity {
	switch {
	case count <= 0:
		return VerbosityOff
	case count >= int(VerbosityTrace):
		return VerbosityTrace
	default:
		return Verbosity(count)
	}
}

// ParseVerbosity accepts a level name or its numeric position.
func ParseVerbosity(raw string) (Verbosity, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	if value == "" {
		return VerbosityOff, nil
	}
	if n, err := strconv.Atoi(value); err == nil && n >= 0 && n < len(verbosityNames) {
		return Verbosity(n), nil
	}
	for i, name := range verbosityNames {
		if value == name {
			return Verbosity(i), nil
		}
	}
	return VerbosityOff, &identity.ValidationError{Field: "verbosity", Value: raw, Accepted: verbosityNames}
}

func (v Verbosity) Valid() bool {
	return v >= VerbosityOff && v <= VerbosityTrace
}

func (v Verbosity) String() string {
	if !v.Valid() {
		return "verbosity(" + strconv.Itoa(int(v)) + ")"
	}
	return verbosityNames[v]
}

func (v Verbosity) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

func (v *Verbosity) UnmarshalText(text []byte) error {
	parsed, err := ParseVerbosity(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Color controls whether console output is colored.
type Color string

const (
	ColorAlways Color = "always"
	ColorAuto   Color = "auto"
	ColorNever  Color = "never"
)

// Colors returns the accepted color modes.
func Colors() []Color {
	return []Color{ColorAlways, ColorAuto, ColorNever}
}

func ParseColor(raw string) (Color, error) {
	value := Color(strings.ToLower(strings.TrimSpace(raw)))
	for _, c := range Colors() {
		if value == c {
			return c, nil
		}
	}
	return "", &identity.ValidationError{Field: "color", Value: raw, Accepted: names(Colors())}
}

func (c Color) Valid() bool {
	_, err := ParseColor(string(c))
	return err == nil
}

func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ServiceManagerKind names the OS service manager used to install the
// service. The empty value means the platform's native manager.
type ServiceManagerKind string

const (
	ServiceManagerNative  ServiceManagerKind = ""
	ServiceManagerSystemd ServiceManagerKind = "systemd"
	ServiceManagerWinSW   ServiceManagerKind = "winsw"
	ServiceManagerLaunchd ServiceManagerKind = "launchd"
	ServiceManagerOpenRC  ServiceManagerKind = "openrc"
	ServiceManagerRcd     ServiceManagerKind = "rcd"
	ServiceManagerSc      ServiceManagerKind = "sc"
)

// ServiceManagers returns every explicit service manager kind.
func ServiceManagers() []ServiceManagerKind {
	return []ServiceManagerKind{
		ServiceManagerSystemd,
		ServiceManagerWinSW,
		ServiceManagerLaunchd,
		ServiceManagerOpenRC,
		ServiceManagerRcd,
		ServiceManagerSc,
	}
}

func ParseServiceManager(raw string) (ServiceManagerKind, error) {
	value := ServiceManagerKind(strings.ToLower(strings.TrimSpace(raw)))
	if value == ServiceManagerNative {
		return ServiceManagerNative, nil
	}
	for _, kind := range ServiceManagers() {
		if value == kind {
			return kind, nil
		}
	}
	return "", &identity.ValidationError{Field: "service manager", Value: raw, Accepted: names(ServiceManagers())}
}

func (k ServiceManagerKind) Valid() bool {
	_, err := ParseServiceManager(string(k))
	return err == nil
}

func (k *ServiceManagerKind) UnmarshalText(text []byte) error {
	parsed, err := ParseServiceManager(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

const redacted = "[redacted]"

// Secret holds a sensitive string. It prints and serialises as a fixed
// placeholder; Reveal returns the real value.
type Secret string

func (s Secret) Reveal() string {
	return string(s)
}

func (s Secret) String() string {
	if s == "" {
		return ""
	}
	return redacted
}

func (s Secret) GoString() string {
	return s.String()
}

func (s Secret) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Secret) UnmarshalText(text []byte) error {
	*s = Secret(text)
	return nil
}

func names[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}
