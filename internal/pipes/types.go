package pipes

import (
	"errors"
	"fmt"

	"github.com/GriffinCanCode/AgentOS/pipeprov/internal/shared/paths"
)

// Request describes one named pipe to provision.
type Request struct {
	Path string `json:"path" yaml:"path" toml:"path"`
	Mode Mode   `json:"mode" yaml:"mode" toml:"mode"`
}

// Validate checks the request before any filesystem call is made.
func (r Request) Validate() error {
	if err := paths.Validate(r.Path); err != nil {
		return err
	}
	if !r.Mode.Valid() {
		return fmt.Errorf("%w: %s has bits outside %s", ErrModeRange, r.Mode.Octal(), ModeMask.Octal())
	}
	return nil
}

// Outcome is the result of processing one request.
type Outcome string

const (
	OutcomeCreated       Outcome = "created"
	OutcomeAlreadyExists Outcome = "already_exists"
	OutcomeRemoved       Outcome = "removed"
	OutcomeAbsent        Outcome = "absent"
	OutcomeFailed        Outcome = "failed"
)

// Reason classifies a failed outcome.
type Reason string

const (
	// ReasonIncompatible means a node other than a FIFO occupies the path.
	ReasonIncompatible Reason = "path_already_exists_incompatible"
	// ReasonParentMissing means the containing directory does not exist.
	ReasonParentMissing Reason = "parent_directory_missing"
	// ReasonPermissionDenied means the filesystem refused access.
	ReasonPermissionDenied Reason = "permission_denied"
	// ReasonIOError covers every other filesystem failure.
	ReasonIOError Reason = "io_error"
	// ReasonInvalidRequest means the request was rejected before any syscall.
	ReasonInvalidRequest Reason = "invalid_request"
	// ReasonTimeout means the caller's context ended before the request ran.
	ReasonTimeout Reason = "timeout"
)

var (
	// ErrModeRange reports permission bits outside owner/group/other rwx.
	ErrModeRange = errors.New("mode out of range")
	// ErrIncompatibleNode reports a non-FIFO node at a pipe path.
	ErrIncompatibleNode = errors.New("path is occupied by a non-FIFO node")
	// ErrUnsupported reports a platform without named pipes.
	ErrUnsupported = errors.New("named pipes are not supported on this platform")
)

// Result is produced for every request, in request order.
type Result struct {
	Path    string  `json:"path" yaml:"path"`
	Outcome Outcome `json:"outcome" yaml:"outcome"`
	Reason  Reason  `json:"reason,omitempty" yaml:"reason,omitempty"`
	// Mode is the permission observed on disk for created, existing or
	// removed pipes, and nil otherwise. A pipe with no permission bits has
	// a non-nil zero Mode.
	Mode   *Mode  `json:"mode,omitempty" yaml:"mode,omitempty"`
	Detail string `json:"detail,omitempty" yaml:"detail,omitempty"`
	Err    error  `json:"-" yaml:"-"`
}

// Failed reports whether the request failed.
func (r Result) Failed() bool {
	return r.Outcome == OutcomeFailed
}

func failed(path string, reason Reason, err error) Result {
	res := Result{Path: path, Outcome: OutcomeFailed, Reason: reason, Err: err}
	if err != nil {
		res.Detail = err.Error()
	}
	return res
}
