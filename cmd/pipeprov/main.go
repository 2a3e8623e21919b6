package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/spf13/afero"

	"github.com/GriffinCanCode/AgentOS/pipeprov/internal/infrastructure/config"
	"github.com/GriffinCanCode/AgentOS/pipeprov/internal/infrastructure/logging"
)

// runtime is bound into every command's Run method.
type runtime struct {
	Config *config.Config
	Logger *logging.Logger
	Fs     afero.Fs
	Out    io.Writer
	Output string
}

// The top-level pipeprov CLI.
type cli struct {
	// Subcommands.
	Provision provisionCmd `cmd:"" help:"Create named pipes."`
	Remove    removeCmd    `cmd:"" help:"Remove named pipes created by provision."`
	Scan      scanCmd      `cmd:"" help:"List named pipes below a directory."`
	Manifest  manifestCmd  `cmd:"" help:"Print a manifest for the given pipes."`

	// Flags.
	Output   string `default:"text" enum:"text,json,yaml" help:"Result format (${enum})." short:"o"`
	LogLevel string `default:"${log_level}" enum:"debug,info,warn,error,dpanic,panic,fatal" help:"Log level (${enum})."`
	LogDev   bool   `default:"${log_dev}" help:"Human-readable colored logs."`

	MetricsTextfile string `default:"${metrics_textfile}" help:"Write Prometheus metrics to this file after each batch." placeholder:"FILE"`
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "pipeprov: %v\n", err)
		os.Exit(2)
	}

	var c cli
	parser := kong.Must(&c, options(cfg)...)

	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	cfg.Logging.Level = c.LogLevel
	cfg.Logging.Development = c.LogDev
	cfg.Metrics.Textfile = c.MetricsTextfile
	logger, err := logging.New(logging.Config{Level: cfg.Logging.Level, Development: cfg.Logging.Development})
	parser.FatalIfErrorf(err)
	defer logger.Sync() //nolint:errcheck // stderr sync fails on some terminals.

	err = ctx.Run(&runtime{
		Config: cfg,
		Logger: logger,
		Fs:     afero.NewOsFs(),
		Out:    os.Stdout,
		Output: c.Output,
	})
	ctx.FatalIfErrorf(err)
}

func options(cfg *config.Config) []kong.Option {
	return []kong.Option{
		kong.Name("pipeprov"),
		kong.Description("Provision named pipes (FIFOs) from a manifest or the command line."),
		kong.Vars(vars(cfg)),
		kong.ConfigureHelp(kong.HelpOptions{
			FlagsLast:      true,
			Compact:        true,
			WrapUpperBound: 80,
		}),
		kong.UsageOnError(),
	}
}

// vars exposes environment configuration as flag defaults.
func vars(cfg *config.Config) kong.Vars {
	return kong.Vars{
		"log_level":        logLevel(cfg.Logging.Level),
		"log_dev":          strconv.FormatBool(cfg.Logging.Development),
		"manifest":         cfg.Provision.Manifest,
		"strict":           strconv.FormatBool(cfg.Provision.Strict),
		"metrics_textfile": cfg.Metrics.Textfile,
	}
}

// logLevel normalizes LOG_LEVEL to the spelling the --log-level enum takes.
func logLevel(level string) string {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "" {
		return "info"
	}
	return level
}
