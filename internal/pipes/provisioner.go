package pipes

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/pipeprov/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AgentOS/pipeprov/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/pipeprov/internal/shared/id"
	"github.com/GriffinCanCode/AgentOS/pipeprov/internal/shared/paths"
)

// UmaskPolicy selects how the process umask affects created pipes.
type UmaskPolicy string

const (
	// UmaskExact chmods new pipes to exactly the requested bits.
	UmaskExact UmaskPolicy = "exact"
	// UmaskProcess leaves the kernel's umask in effect.
	UmaskProcess UmaskPolicy = "process"
)

// ParseUmaskPolicy parses a policy name; empty selects UmaskExact.
func ParseUmaskPolicy(s string) (UmaskPolicy, error) {
	switch p := UmaskPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return UmaskExact, nil
	case UmaskExact, UmaskProcess:
		return p, nil
	}
	return "", fmt.Errorf("unknown umask policy %q (want %q or %q)", s, UmaskExact, UmaskProcess)
}

// Options configures a Provisioner. Zero values are usable.
type Options struct {
	Logger      *logging.Logger
	Metrics     *monitoring.Metrics
	UmaskPolicy UmaskPolicy
}

// Provisioner creates and removes batches of named pipes.
type Provisioner struct {
	logger  *logging.Logger
	metrics *monitoring.Metrics
	policy  UmaskPolicy
	nodes   nodeOps
}

// New creates a provisioner backed by the local filesystem.
func New(opts Options) *Provisioner {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	policy := opts.UmaskPolicy
	if policy == "" {
		policy = UmaskExact
	}

	return &Provisioner{
		logger:  logger.Named("pipes"),
		metrics: opts.Metrics,
		policy:  policy,
		nodes:   osNodes{},
	}
}

// Policy returns the umask policy in effect.
func (p *Provisioner) Policy() UmaskPolicy {
	return p.policy
}

// Provision creates a named pipe for every request. It always returns one
// result per request, in order, and never stops early.
func (p *Provisioner) Provision(ctx context.Context, reqs []Request) *Report {
	return p.run(ctx, OpProvision, reqs, p.provisionOne)
}

// Remove deletes the named pipes listed by reqs. Request modes are ignored
// and nodes that are not FIFOs are left in place. The type check and the
// unlink are separate calls, so a node swapped in between by a concurrent
// writer is removed whatever its type.
func (p *Provisioner) Remove(ctx context.Context, reqs []Request) *Report {
	return p.run(ctx, OpRemove, reqs, p.removeOne)
}

func (p *Provisioner) run(ctx context.Context, op Operation, reqs []Request, one func(context.Context, Request) Result) *Report {
	start := time.Now()
	runID := id.NewRunID()
	log := p.logger.With(zap.String("run_id", runID.String()), zap.String("operation", string(op)))

	log.Debug("Batch started", zap.Int("requests", len(reqs)), zap.String("umask_policy", string(p.policy)))

	results := make([]Result, 0, len(reqs))
	for _, req := range reqs {
		res := one(ctx, req)
		p.observe(log, op, res)
		results = append(results, res)
	}

	report := &Report{
		RunID:     runID,
		Operation: op,
		Results:   results,
		Summary:   summarize(results),
		Duration:  time.Since(start),
	}

	if p.metrics != nil {
		p.metrics.RecordBatch(string(op), report.Summary.Failed, report.Duration)
	}

	fields := []zap.Field{
		zap.Int("total", report.Summary.Total),
		zap.Int("created", report.Summary.Created),
		zap.Int("already_exists", report.Summary.AlreadyExists),
		zap.Int("removed", report.Summary.Removed),
		zap.Int("absent", report.Summary.Absent),
		zap.Int("failed", report.Summary.Failed),
		zap.Duration("duration", report.Duration),
	}
	if report.HasFailures() {
		log.Warn("Batch completed with failures", fields...)
	} else {
		log.Info("Batch completed", fields...)
	}

	return report
}

func (p *Provisioner) observe(log *logging.Logger, op Operation, res Result) {
	if p.metrics != nil {
		p.metrics.RecordRequest(string(op), string(res.Outcome), string(res.Reason))
	}

	fields := []zap.Field{zap.String("path", res.Path), zap.String("outcome", string(res.Outcome))}
	switch res.Outcome {
	case OutcomeCreated:
		log.Info("Pipe created", append(fields, zap.Stringer("mode", res.Mode))...)
	case OutcomeRemoved:
		log.Info("Pipe removed", fields...)
	case OutcomeAlreadyExists:
		log.Debug("Pipe already exists", append(fields, zap.Stringer("mode", res.Mode))...)
	case OutcomeAbsent:
		log.Debug("Pipe already absent", fields...)
	case OutcomeFailed:
		fields = append(fields, zap.String("reason", string(res.Reason)), zap.Error(res.Err))
		if res.Reason == ReasonParentMissing {
			fields = append(fields, zap.String("parent", paths.Parent(res.Path)))
		}
		log.Warn("Pipe request failed", fields...)
	}
}

func (p *Provisioner) provisionOne(ctx context.Context, req Request) Result {
	if err := req.Validate(); err != nil {
		return failed(req.Path, ReasonInvalidRequest, err)
	}
	if err := ctx.Err(); err != nil {
		return failed(req.Path, ReasonTimeout, err)
	}

	err := p.nodes.Mkfifo(req.Path, req.Mode.Perm())
	switch {
	case err == nil:
		return p.settle(req)
	case errors.Is(err, fs.ErrExist):
		return p.inspectExisting(req.Path, err)
	}
	return failed(req.Path, classify(err), err)
}

// settle applies the umask policy to a pipe this call just created. A pipe
// whose mode cannot be fixed is removed again.
func (p *Provisioner) settle(req Request) Result {
	if p.policy == UmaskExact {
		if err := p.nodes.Chmod(req.Path, req.Mode.Perm()); err != nil {
			if rmErr := p.nodes.Remove(req.Path); rmErr != nil {
				err = errors.Join(err, fmt.Errorf("rollback: %w", rmErr))
			}
			return failed(req.Path, classify(err), err)
		}
	}

	mode := req.Mode
	if fm, err := p.nodes.Lstat(req.Path); err == nil {
		mode = FromFileMode(fm)
	}
	return Result{Path: req.Path, Outcome: OutcomeCreated, Mode: &mode}
}

// inspectExisting decides whether an existing node satisfies the request.
// The node itself is never modified.
func (p *Provisioner) inspectExisting(path string, cause error) Result {
	mode, err := p.nodes.Lstat(path)
	if err != nil {
		return failed(path, classify(err), errors.Join(err, cause))
	}
	if !isFIFO(mode) {
		return failed(path, ReasonIncompatible, fmt.Errorf("%w: %s is a %s", ErrIncompatibleNode, path, describe(mode)))
	}
	return Result{Path: path, Outcome: OutcomeAlreadyExists, Mode: observed(mode)}
}

func (p *Provisioner) removeOne(ctx context.Context, req Request) Result {
	if err := paths.Validate(req.Path); err != nil {
		return failed(req.Path, ReasonInvalidRequest, err)
	}
	if err := ctx.Err(); err != nil {
		return failed(req.Path, ReasonTimeout, err)
	}

	mode, err := p.nodes.Lstat(req.Path)
	if err != nil {
		if classify(err) == ReasonParentMissing {
			return Result{Path: req.Path, Outcome: OutcomeAbsent}
		}
		return failed(req.Path, classify(err), err)
	}
	if !isFIFO(mode) {
		return failed(req.Path, ReasonIncompatible, fmt.Errorf("%w: %s is a %s", ErrIncompatibleNode, req.Path, describe(mode)))
	}

	if err := p.nodes.Remove(req.Path); err != nil {
		if classify(err) == ReasonParentMissing {
			return Result{Path: req.Path, Outcome: OutcomeAbsent}
		}
		return failed(req.Path, classify(err), err)
	}
	return Result{Path: req.Path, Outcome: OutcomeRemoved, Mode: observed(mode)}
}
