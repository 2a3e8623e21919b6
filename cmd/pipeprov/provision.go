package main

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/pipeprov/internal/boundary"
	"github.com/GriffinCanCode/AgentOS/pipeprov/internal/infrastructure/config"
	"github.com/GriffinCanCode/AgentOS/pipeprov/internal/pipes"
)

// errFailures is returned by --strict runs that had failed requests.
var errFailures = errors.New("one or more pipes failed")

// Source selects the pipes a batch command operates on.
type Source struct {
	Specs    []string `arg:"" help:"Pipes as PATH[:MODE]. MODE is octal (0666) or symbolic (rw-rw-rw-). Defaults to PIPEPROV_PIPES." name:"spec" optional:""`
	Manifest string   `default:"${manifest}" help:"Manifest file (.yaml, .yml, .toml or .json)." placeholder:"FILE" short:"m"`
}

// apply returns a copy of cfg pointed at the pipes named on the command line.
func (s *Source) apply(cfg *config.Config) *config.Config {
	c := *cfg
	c.Provision.Manifest = s.Manifest
	if len(s.Specs) > 0 {
		c.Provision.Pipes = s.Specs
	}
	return &c
}

type provisionCmd struct {
	Source

	UmaskPolicy string `help:"How the process umask affects new pipes (exact or process). Overrides the manifest and PIPEPROV_UMASK_POLICY." placeholder:"POLICY"`
	Strict      bool   `default:"${strict}" help:"Exit non-zero if any pipe could not be created."`
}

func (c *provisionCmd) Run(rt *runtime) error {
	var opts []boundary.Option
	if c.UmaskPolicy != "" {
		policy, err := pipes.ParseUmaskPolicy(c.UmaskPolicy)
		if err != nil {
			return err
		}
		opts = append(opts, boundary.WithUmaskPolicy(policy))
	}

	report, err := batch(rt, c.apply(rt.Config), func(b boundary.Binding) *pipes.Report {
		return b.Provisioner.Provision(context.Background(), b.Requests)
	}, opts...)
	if err != nil {
		return err
	}
	if c.Strict && report.HasFailures() {
		return fmt.Errorf("%w: %d of %d", errFailures, report.Summary.Failed, report.Summary.Total)
	}
	return nil
}

type removeCmd struct {
	Source

	Strict bool `default:"${strict}" help:"Exit non-zero if any pipe could not be removed."`
}

func (c *removeCmd) Run(rt *runtime) error {
	report, err := batch(rt, c.apply(rt.Config), func(b boundary.Binding) *pipes.Report {
		return b.Provisioner.Remove(context.Background(), b.Requests)
	})
	if err != nil {
		return err
	}
	if c.Strict && report.HasFailures() {
		return fmt.Errorf("%w: %d of %d", errFailures, report.Summary.Failed, report.Summary.Total)
	}
	return nil
}

// batch resolves cfg into a binding, runs fn and renders the report.
func batch(rt *runtime, cfg *config.Config, fn func(boundary.Binding) *pipes.Report, opts ...boundary.Option) (*pipes.Report, error) {
	b, err := boundary.FromConfig(cfg, rt.Fs, rt.Logger, opts...)
	if err != nil {
		return nil, err
	}

	report := fn(b)

	if cfg.Metrics.Textfile != "" {
		if err := b.Metrics.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			rt.Logger.Warn("Failed to write metrics",
				zap.String("path", cfg.Metrics.Textfile),
				zap.Error(err))
		}
	}

	if err := render(rt.Out, rt.Output, report); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	return report, nil
}
