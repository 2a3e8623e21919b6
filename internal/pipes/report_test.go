package pipes

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	results := []Result{
		{Path: "/a", Outcome: OutcomeCreated},
		{Path: "/b", Outcome: OutcomeAlreadyExists},
		failed("/c", ReasonIOError, errors.New("disk full")),
		{Path: "/d", Outcome: OutcomeRemoved},
		{Path: "/e", Outcome: OutcomeAbsent},
		{Path: "/f", Outcome: OutcomeCreated},
	}

	assert.Equal(t, Summary{
		Total:         6,
		Created:       2,
		AlreadyExists: 1,
		Removed:       1,
		Absent:        1,
		Failed:        1,
	}, summarize(results))
}

func TestReportFailures(t *testing.T) {
	results := []Result{
		failed("/a", ReasonPermissionDenied, nil),
		{Path: "/b", Outcome: OutcomeCreated},
		failed("/c", ReasonParentMissing, errors.New("no such file or directory")),
	}
	report := &Report{Results: results, Summary: summarize(results)}

	assert.True(t, report.HasFailures())
	failures := report.Failures()
	if assert.Len(t, failures, 2) {
		assert.Equal(t, "/a", failures[0].Path)
		assert.Equal(t, "/c", failures[1].Path)
		assert.Empty(t, failures[0].Detail)
		assert.Equal(t, "no such file or directory", failures[1].Detail)
	}

	clean := &Report{Results: results[1:2], Summary: summarize(results[1:2])}
	assert.False(t, clean.HasFailures())
	assert.Empty(t, clean.Failures())
}
