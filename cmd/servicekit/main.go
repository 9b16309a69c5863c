package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/muesli/termenv"
	"go.uber.org/zap"

	"github.com/eugenenazirov/servicekit/internal/application"
	"github.com/eugenenazirov/servicekit/internal/config"
	"github.com/eugenenazirov/servicekit/internal/identity"
	"github.com/eugenenazirov/servicekit/internal/logging"
	"github.com/eugenenazirov/servicekit/internal/sources"
)

var (
	signalNotify    = signal.Notify
	shutdownContext = context.WithTimeout
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "servicekit: %v\n", err)
		os.Exit(1)
	}
}

type cli struct {
	app *kingpin.Application

	verbose        *int
	host           *string
	port           *int
	portSet        bool
	name           *string
	nameSet        bool
	configFile     *string
	environment    *string
	color          *string
	serviceManager *string
	system         *bool

	sources *kingpin.CmdClause
	show    *kingpin.CmdClause
	format  *string
	serve   *kingpin.CmdClause
}

func newCLI() *cli {
	c := &cli{app: kingpin.New("servicekit", "Resolve layered service configuration and serve it for diagnostics")}

	c.verbose = c.app.Flag("verbose", "Increase verbosity (repeatable)").Short('v').Counter()
	c.host = c.app.Flag("host", "Bind host").Short('H').String()
	c.port = c.app.Flag("port", "Bind port").Short('P').IsSetByUser(&c.portSet).Int()
	c.name = c.app.Flag("name", "Service name").Short('n').IsSetByUser(&c.nameSet).Default(defaultServiceName()).String()
	c.configFile = c.app.Flag("config-file", "Base name for configuration files and environment variables").String()
	c.environment = c.app.Flag("environment", "Deployment environment ("+strings.Join(enumValues(identity.Environments()), ", ")+")").Short('e').String()
	c.color = c.app.Flag("color", "Color output").Enum(enumValues(config.Colors())...)
	c.serviceManager = c.app.Flag("service-manager", "Service manager kind").Enum(enumValues(config.ServiceManagers())...)
	c.system = c.app.Flag("system", "Install as a system-wide service").Bool()

	c.sources = c.app.Command("sources", "List every configuration source consulted")
	c.show = c.app.Command("show", "Print the resolved configuration")
	c.format = c.show.Flag("format", "Output format").Short('f').Default("yaml").Enum(enumValues(sources.Formats())...)
	c.serve = c.app.Command("serve", "Serve the diagnostics API").Default()

	return c
}

// overrides converts the parsed flags. Enum flags are already validated by
// kingpin; environment and name are validated here so that case and
// surrounding space do not matter.
func (c *cli) overrides() (config.Overrides, error) {
	o := config.Overrides{
		ConfigFile: strings.TrimSpace(*c.configFile),
		Verbosity:  *c.verbose,
		System:     *c.system,
	}

	if *c.environment != "" {
		env, err := identity.ParseEnvironment(*c.environment)
		if err != nil {
			return config.Overrides{}, err
		}
		o.Environment = &env
	}
	if *c.color != "" {
		color, err := config.ParseColor(*c.color)
		if err != nil {
			return config.Overrides{}, err
		}
		o.Color = &color
	}
	if *c.serviceManager != "" {
		kind, err := config.ParseServiceManager(*c.serviceManager)
		if err != nil {
			return config.Overrides{}, err
		}
		o.ServiceManager = &kind
	}
	if c.nameSet {
		name, err := identity.ParseServiceName(*c.name)
		if err != nil {
			return config.Overrides{}, err
		}
		value := name.String()
		o.Name = &value
	}
	if *c.host != "" {
		o.Host = c.host
	}
	if c.portSet {
		o.Port = c.port
	}

	return o, nil
}

func run(args []string, stdout io.Writer, opts ...config.ResolverOption) error {
	c := newCLI()
	command, err := c.app.Parse(args)
	if err != nil {
		return err
	}

	name, err := identity.ParseServiceName(*c.name)
	if err != nil {
		return err
	}
	overrides, err := c.overrides()
	if err != nil {
		return err
	}

	bootstrap, err := logging.Bootstrap()
	if err != nil {
		return err
	}
	defer func() {
		_ = bootstrap.Sync()
	}()

	resolver := config.NewResolver(append([]config.ResolverOption{config.WithLogger(bootstrap)}, opts...)...)
	cfg, manifest, err := resolver.Resolve(name, overrides)
	if err != nil {
		return fmt.Errorf("resolve configuration: %w", err)
	}

	switch command {
	case c.sources.FullCommand():
		return printSources(stdout, cfg.Color, manifest)
	case c.show.FullCommand():
		format, err := sources.ParseFormat(*c.format)
		if err != nil {
			return err
		}
		out, err := config.Marshal(cfg, format)
		if err != nil {
			return fmt.Errorf("render configuration: %w", err)
		}
		_, err = stdout.Write(out)
		return err
	default:
		return serve(cfg, manifest)
	}
}

func serve(cfg config.Configuration, manifest sources.Manifest) error {
	logger, closeLogs, err := logging.New(logging.FromConfiguration(cfg))
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
		_ = closeLogs()
	}()

	logger.Info("configuration resolved",
		zap.String("environment", cfg.Environment.String()),
		zap.Strings("sources", manifest.Known().Strings()),
	)

	app, err := application.New(cfg, manifest, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	if err := app.Start(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	shutdown(app.Server(), cfg.Server.Timeouts.Shutdown, logger)
	return nil
}

func printSources(w io.Writer, mode config.Color, manifest sources.Manifest) error {
	profile := termenv.Ascii
	if logging.ColorEnabled(mode, w) {
		profile = termenv.ANSI
	}
	out := termenv.NewOutput(w, termenv.WithProfile(profile))

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, def := range manifest.Definitions() {
		status := out.String("found").Foreground(out.Color("2"))
		if !def.Found() {
			status = out.String("missing").Faint()
		}

		location := def.Path()
		if def.Kind() == sources.KindEnvVar {
			location = def.Prefix() + "*"
		}
		var kind string
		switch def.Kind() {
		case sources.KindFile:
			kind = def.Format().String()
		case sources.KindEnvVar:
			kind = def.Kind().String()
		default:
			kind = strings.TrimPrefix(filepath.Ext(location), ".")
		}
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\n", status, kind, location); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func shutdown(server *http.Server, timeout time.Duration, logger *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signalNotify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	logger.Info("shutting down server", zap.Duration("timeout", timeout))

	ctx, cancel := shutdownContext(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("forced close failed", zap.Error(closeErr))
		}
	}
}

// defaultServiceName is the executable's base name without extension.
func defaultServiceName() string {
	exe := filepath.Base(os.Args[0])
	if path, err := os.Executable(); err == nil {
		exe = filepath.Base(path)
	}
	return strings.TrimSuffix(exe, filepath.Ext(exe))
}

func enumValues[T any](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = fmt.Sprint(v)
	}
	return out
}
