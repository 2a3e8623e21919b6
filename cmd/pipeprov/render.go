package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/bytedance/sonic"
	"github.com/goccy/go-yaml"

	"github.com/GriffinCanCode/AgentOS/pipeprov/internal/pipes"
)

// render writes v to w in the requested output format.
func render(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		data, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s\n", data)
		return err
	case "yaml":
		data, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	switch v := v.(type) {
	case *pipes.Report:
		renderReport(tw, v)
	case []pipes.Node:
		renderNodes(tw, v)
	default:
		return fmt.Errorf("cannot render %T as text", v)
	}
	return tw.Flush()
}

func renderReport(w io.Writer, r *pipes.Report) {
	fmt.Fprintln(w, "PATH\tOUTCOME\tMODE\tREASON")
	for _, res := range r.Results {
		mode, reason := "-", "-"
		if res.Mode != nil {
			mode = res.Mode.String()
		}
		if res.Reason != "" {
			reason = string(res.Reason)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", res.Path, res.Outcome, mode, reason)
	}

	s := r.Summary
	fmt.Fprintf(w, "\n%s %s", r.Operation, r.RunID)
	if started, err := r.RunID.Time(); err == nil {
		fmt.Fprintf(w, " at %s", started.UTC().Format(time.RFC3339))
	}
	fmt.Fprintf(w, ": %d total, %d created, %d already existed, %d removed, %d absent, %d failed\n",
		s.Total, s.Created, s.AlreadyExists, s.Removed, s.Absent, s.Failed)
}

func renderNodes(w io.Writer, nodes []pipes.Node) {
	fmt.Fprintln(w, "PATH\tMODE")
	for _, n := range nodes {
		fmt.Fprintf(w, "%s\t%s\n", n.Path, n.Mode)
	}
}
