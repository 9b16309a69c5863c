package config

import (
	"fmt"
	"net"
	"net/netip"
	"strconv"
	"time"

	"github.com/eugenenazirov/servicekit/internal/identity"
)

const (
	defaultHost           = "0.0.0.0"
	defaultPort           = 80
	defaultRateLimitRPS   = 25.0
	defaultRateLimitBurst = 50
)

// Configuration is the resolved process configuration. It is built once by
// Resolver.Resolve and only read afterwards.
type Configuration struct {
	Environment identity.Environment `mapstructure:"environment" json:"environment" yaml:"environment" toml:"environment"`
	Verbosity   Verbosity            `mapstructure:"verbosity" json:"verbosity" yaml:"verbosity" toml:"verbosity"`
	Color       Color                `mapstructure:"color" json:"color" yaml:"color" toml:"color"`
	Server      NetworkConfig        `mapstructure:"server" json:"server" yaml:"server" toml:"server"`
	Service     ServiceConfig        `mapstructure:"service" json:"service" yaml:"service" toml:"service"`
	Logging     []LoggerConfig       `mapstructure:"logging" json:"logging,omitempty" yaml:"logging,omitempty" toml:"logging,omitempty"`
	Deployment  *DeploymentConfig    `mapstructure:"deployment" json:"deployment,omitempty" yaml:"deployment,omitempty" toml:"deployment,omitempty"`
	Secret      Secret               `mapstructure:"secret" json:"secret,omitempty" yaml:"secret,omitempty" toml:"secret,omitempty"`
}

// NetworkConfig is the bind address and HTTP server tuning.
type NetworkConfig struct {
	Host      string          `mapstructure:"host" json:"host" yaml:"host" toml:"host"`
	Port      int             `mapstructure:"port" json:"port" yaml:"port" toml:"port"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit" json:"rate_limit" yaml:"rate_limit" toml:"rate_limit"`
	Timeouts  TimeoutConfig   `mapstructure:"timeouts" json:"timeouts" yaml:"timeouts" toml:"timeouts"`
}

// RateLimitConfig configures the per-client token bucket. A zero RPS
// disables rate limiting.
type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps" json:"rps" yaml:"rps" toml:"rps"`
	Burst int     `mapstructure:"burst" json:"burst" yaml:"burst" toml:"burst"`
}

// DefaultRateLimit is the token bucket used when no source configures one.
func DefaultRateLimit() RateLimitConfig {
	return RateLimitConfig{RPS: defaultRateLimitRPS, Burst: defaultRateLimitBurst}
}

// Enabled reports whether requests should be limited at all.
func (r RateLimitConfig) Enabled() bool {
	return r.RPS > 0
}

// TimeoutConfig holds the HTTP server timeouts.
type TimeoutConfig struct {
	ReadHeader time.Duration `mapstructure:"read_header" json:"read_header" yaml:"read_header" toml:"read_header"`
	Write      time.Duration `mapstructure:"write" json:"write" yaml:"write" toml:"write"`
	Idle       time.Duration `mapstructure:"idle" json:"idle" yaml:"idle" toml:"idle"`
	Shutdown   time.Duration `mapstructure:"shutdown" json:"shutdown" yaml:"shutdown" toml:"shutdown"`
}

// Address validates host and port and joins them.
func (n NetworkConfig) Address() (string, error) {
	if n.Port < 0 || n.Port > 65535 {
		return "", fmt.Errorf("port %d out of range", n.Port)
	}
	if n.Host == "" {
		return "", fmt.Errorf("host is empty")
	}
	if _, err := netip.ParseAddr(n.Host); err != nil && !validHostname(n.Host) {
		return "", fmt.Errorf("invalid host %q", n.Host)
	}
	return net.JoinHostPort(n.Host, strconv.Itoa(n.Port)), nil
}

func validHostname(host string) bool {
	if len(host) > 253 {
		return false
	}
	for _, r := range host {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.':
		default:
			return false
		}
	}
	return true
}

// ServiceConfig identifies the service to the OS service manager.
type ServiceConfig struct {
	Name           string             `mapstructure:"name" json:"name" yaml:"name" toml:"name"`
	ServiceManager ServiceManagerKind `mapstructure:"service_manager" json:"service_manager,omitempty" yaml:"service_manager,omitempty" toml:"service_manager,omitempty"`
	System         bool               `mapstructure:"system" json:"system" yaml:"system" toml:"system"`
}

// DeploymentConfig describes remote hosts and container artifacts. It is
// carried as data; nothing in this module acts on it.
type DeploymentConfig struct {
	Hosts     []HostConfig    `mapstructure:"hosts" json:"hosts,omitempty" yaml:"hosts,omitempty" toml:"hosts,omitempty"`
	Artifacts ArtifactsConfig `mapstructure:"artifacts" json:"artifacts" yaml:"artifacts" toml:"artifacts"`
	Security  SecurityConfig  `mapstructure:"security" json:"security" yaml:"security" toml:"security"`
}

type HostConfig struct {
	Address string `mapstructure:"address" json:"address" yaml:"address" toml:"address"`
	Port    int    `mapstructure:"port" json:"port,omitempty" yaml:"port,omitempty" toml:"port,omitempty"`
	User    string `mapstructure:"user" json:"user,omitempty" yaml:"user,omitempty" toml:"user,omitempty"`
	Auth    Secret `mapstructure:"auth" json:"auth,omitempty" yaml:"auth,omitempty" toml:"auth,omitempty"`
}

type ArtifactsConfig struct {
	Containers ContainersConfig `mapstructure:"containers" json:"containers" yaml:"containers" toml:"containers"`
}

type ContainersConfig struct {
	Registry RegistryConfig `mapstructure:"registry" json:"registry" yaml:"registry" toml:"registry"`
	Images   []ImageConfig  `mapstructure:"images" json:"images,omitempty" yaml:"images,omitempty" toml:"images,omitempty"`
}

type RegistryConfig struct {
	Account string `mapstructure:"account" json:"account,omitempty" yaml:"account,omitempty" toml:"account,omitempty"`
	Host    string `mapstructure:"host" json:"host,omitempty" yaml:"host,omitempty" toml:"host,omitempty"`
	Token   Secret `mapstructure:"token" json:"token,omitempty" yaml:"token,omitempty" toml:"token,omitempty"`
}

type ImageConfig struct {
	Definition string `mapstructure:"definition" json:"definition,omitempty" yaml:"definition,omitempty" toml:"definition,omitempty"`
	Name       string `mapstructure:"name" json:"name" yaml:"name" toml:"name"`
	Label      string `mapstructure:"label" json:"label,omitempty" yaml:"label,omitempty" toml:"label,omitempty"`
	Namespace  string `mapstructure:"namespace" json:"namespace,omitempty" yaml:"namespace,omitempty" toml:"namespace,omitempty"`
	Repo       string `mapstructure:"repo" json:"repo,omitempty" yaml:"repo,omitempty" toml:"repo,omitempty"`
}

// SecurityConfig configures TLS certificates for deployed hosts.
type SecurityConfig struct {
	Type       string   `mapstructure:"type" json:"type,omitempty" yaml:"type,omitempty" toml:"type,omitempty"`
	Domains    []string `mapstructure:"domains" json:"domains,omitempty" yaml:"domains,omitempty" toml:"domains,omitempty"`
	Emails     []string `mapstructure:"emails" json:"emails,omitempty" yaml:"emails,omitempty" toml:"emails,omitempty"`
	Cache      string   `mapstructure:"cache" json:"cache,omitempty" yaml:"cache,omitempty" toml:"cache,omitempty"`
	Production bool     `mapstructure:"production" json:"production,omitempty" yaml:"production,omitempty" toml:"production,omitempty"`
}

// Defaults returns the configuration used when no source sets a field.
func Defaults(name identity.ServiceName) Configuration {
	return Configuration{
		Environment: identity.DefaultEnvironment,
		Verbosity:   VerbosityOff,
		Color:       ColorAuto,
		Server: NetworkConfig{
			Host: defaultHost,
			Port: defaultPort,
			RateLimit: DefaultRateLimit(),
			Timeouts: TimeoutConfig{
				ReadHeader: 5 * time.Second,
				Write:      15 * time.Second,
				Idle:       60 * time.Second,
				Shutdown:   10 * time.Second,
			},
		},
		Service: ServiceConfig{
			Name: name.String(),
		},
	}
}

// validate checks the decoded values that the decoder cannot reject on its
// own, such as out-of-range numbers.
func validate(cfg Configuration) error {
	if !cfg.Verbosity.Valid() {
		return fmt.Errorf("verbosity %d out of range", int(cfg.Verbosity))
	}
	if !cfg.Color.Valid() {
		return fmt.Errorf("invalid color %q", cfg.Color)
	}
	if !cfg.Service.ServiceManager.Valid() {
		return fmt.Errorf("invalid service manager %q", cfg.Service.ServiceManager)
	}
	if _, err := cfg.Server.Address(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if cfg.Server.RateLimit.RPS < 0 {
		return fmt.Errorf("server.rate_limit.rps must be >= 0")
	}
	if cfg.Server.RateLimit.Burst < 0 {
		return fmt.Errorf("server.rate_limit.burst must be >= 0")
	}
	return nil
}
