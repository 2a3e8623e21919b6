package pipes

import (
	"time"

	"github.com/GriffinCanCode/AgentOS/pipeprov/internal/shared/id"
)

// Operation names the kind of batch a report describes.
type Operation string

const (
	OpProvision Operation = "provision"
	OpRemove    Operation = "remove"
)

// Summary counts results by outcome.
type Summary struct {
	Total         int `json:"total" yaml:"total"`
	Created       int `json:"created" yaml:"created"`
	AlreadyExists int `json:"already_exists" yaml:"already_exists"`
	Removed       int `json:"removed" yaml:"removed"`
	Absent        int `json:"absent" yaml:"absent"`
	Failed        int `json:"failed" yaml:"failed"`
}

// Report is the aggregate outcome of one batch.
type Report struct {
	RunID     id.RunID      `json:"run_id" yaml:"run_id"`
	Operation Operation     `json:"operation" yaml:"operation"`
	Results   []Result      `json:"results" yaml:"results"`
	Summary   Summary       `json:"summary" yaml:"summary"`
	Duration  time.Duration `json:"duration_ns" yaml:"duration_ns"`
}

// HasFailures reports whether any request in the batch failed.
func (r *Report) HasFailures() bool {
	return r.Summary.Failed > 0
}

// Failures returns the failed results in request order.
func (r *Report) Failures() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Failed() {
			out = append(out, res)
		}
	}
	return out
}

func summarize(results []Result) Summary {
	s := Summary{Total: len(results)}
	for _, res := range results {
		switch res.Outcome {
		case OutcomeCreated:
			s.Created++
		case OutcomeAlreadyExists:
			s.AlreadyExists++
		case OutcomeRemoved:
			s.Removed++
		case OutcomeAbsent:
			s.Absent++
		case OutcomeFailed:
			s.Failed++
		}
	}
	return s
}
