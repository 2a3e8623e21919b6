// Package boundary adapts the pipe provisioner to a caller that can neither
// pass arguments nor receive a result, such as a foreign-function export.
//
// The pipe set and provisioner are installed into process-wide state once at
// startup; CreateFifos then runs the batch and reports only through the
// installed logger.
package boundary

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/pipeprov/internal/infrastructure/config"
	"github.com/GriffinCanCode/AgentOS/pipeprov/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AgentOS/pipeprov/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/pipeprov/internal/manifest"
	"github.com/GriffinCanCode/AgentOS/pipeprov/internal/pipes"
)

// ErrNoPipes is returned when the environment names no pipe source.
var ErrNoPipes = errors.New("no pipes configured: set PIPEPROV_MANIFEST or PIPEPROV_PIPES")

// Binding is everything CreateFifos needs.
type Binding struct {
	Requests    []pipes.Request
	Provisioner *pipes.Provisioner
	Logger      *logging.Logger
	Metrics     *monitoring.Metrics
	// MetricsTextfile, when set, receives the metrics after every batch.
	MetricsTextfile string
}

var (
	mu      sync.Mutex
	binding *Binding
	last    *pipes.Report
)

// Install replaces the process-wide binding. The request slice is copied.
func Install(b Binding) {
	if b.Logger == nil {
		b.Logger = logging.Nop()
	}
	if b.Provisioner == nil {
		b.Provisioner = pipes.New(pipes.Options{Logger: b.Logger, Metrics: b.Metrics})
	}
	b.Requests = append([]pipes.Request(nil), b.Requests...)

	mu.Lock()
	binding = &b
	mu.Unlock()
}

// Reset removes the binding and the last report.
func Reset() {
	mu.Lock()
	binding, last = nil, nil
	mu.Unlock()
}

// Option adjusts how FromConfig resolves a binding.
type Option func(*options)

type options struct {
	policy pipes.UmaskPolicy
}

// WithUmaskPolicy sets a policy that wins over both the manifest and the
// environment. An empty policy is ignored.
func WithUmaskPolicy(policy pipes.UmaskPolicy) Option {
	return func(o *options) {
		o.policy = policy
	}
}

// FromConfig builds a binding from configuration, reading any manifest
// through fsys. Inline pipes follow the manifest's. The umask policy is
// taken from WithUmaskPolicy, then the manifest, then cfg.
func FromConfig(cfg *config.Config, fsys afero.Fs, logger *logging.Logger, opts ...Option) (Binding, error) {
	if !cfg.HasSources() {
		return Binding{}, ErrNoPipes
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	policy := o.policy

	var reqs []pipes.Request
	if cfg.Provision.Manifest != "" {
		m, err := manifest.Load(fsys, cfg.Provision.Manifest)
		if err != nil {
			return Binding{}, err
		}
		p, err := m.Policy()
		if err != nil {
			return Binding{}, fmt.Errorf("manifest %s: %w", cfg.Provision.Manifest, err)
		}
		if policy == "" {
			policy = p
		}
		if reqs, err = m.Requests(); err != nil {
			return Binding{}, fmt.Errorf("manifest %s: %w", cfg.Provision.Manifest, err)
		}
	}

	if policy == "" {
		p, err := pipes.ParseUmaskPolicy(cfg.Provision.UmaskPolicy)
		if err != nil {
			return Binding{}, err
		}
		policy = p
	}

	inline, err := manifest.ParseSpecs(cfg.Provision.Pipes)
	if err != nil {
		return Binding{}, err
	}
	reqs = append(reqs, inline...)

	metrics := monitoring.NewMetrics()
	return Binding{
		Requests: reqs,
		Provisioner: pipes.New(pipes.Options{
			Logger:      logger,
			Metrics:     metrics,
			UmaskPolicy: policy,
		}),
		Logger:          logger,
		Metrics:         metrics,
		MetricsTextfile: cfg.Metrics.Textfile,
	}, nil
}

// InstallFromEnv installs a binding built from the environment.
func InstallFromEnv() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := logging.New(logging.Config{Level: cfg.Logging.Level, Development: cfg.Logging.Development})
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}

	b, err := FromConfig(cfg, afero.NewOsFs(), logger)
	if err != nil {
		return err
	}
	Install(b)
	return nil
}

// CreateFifos provisions the installed pipe set, installing one from the
// environment on first use. It takes no arguments, returns nothing and
// never panics; every outcome goes to the installed logger.
func CreateFifos() {
	defer func() {
		if r := recover(); r != nil {
			logging.NewDefault().Error("Pipe provisioning panicked", zap.Any("panic", r))
		}
	}()

	mu.Lock()
	b := binding
	mu.Unlock()

	if b == nil {
		if err := InstallFromEnv(); err != nil {
			logging.NewDefault().Error("Pipe provisioning not configured", zap.Error(err))
			return
		}
		mu.Lock()
		b = binding
		mu.Unlock()
	}

	report := b.Provisioner.Provision(context.Background(), b.Requests)

	mu.Lock()
	last = report
	mu.Unlock()

	for _, res := range report.Failures() {
		b.Logger.Error("Pipe not provisioned",
			zap.String("run_id", report.RunID.String()),
			zap.String("path", res.Path),
			zap.String("reason", string(res.Reason)),
			zap.String("detail", res.Detail))
	}

	if b.Metrics != nil && b.MetricsTextfile != "" {
		if err := b.Metrics.WriteTextfile(b.MetricsTextfile); err != nil {
			b.Logger.Warn("Failed to write metrics", zap.Error(err))
		}
	}

	_ = b.Logger.Sync()
}

// LastReport returns the report of the most recent CreateFifos call.
func LastReport() (*pipes.Report, bool) {
	mu.Lock()
	defer mu.Unlock()
	return last, last != nil
}
