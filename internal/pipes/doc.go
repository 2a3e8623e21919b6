// Package pipes provisions named pipes (FIFOs) on the local filesystem.
//
// A batch of Requests is processed in order and yields exactly one Result per
// request. Failures are classified and recorded in the result; they never stop
// the rest of the batch. Creating a pipe that already exists as a FIFO is not
// an error, so provisioning can be repeated safely.
//
// # Umask policy
//
// With UmaskExact (the default) a freshly created pipe is chmod'ed to the
// requested bits, so the mode on disk matches the request whatever the process
// umask is. With UmaskProcess the kernel applies the umask as usual. The
// process-wide umask is never modified.
//
// # Usage
//
//	p := pipes.New(pipes.Options{Logger: logger, Metrics: metrics})
//	report := p.Provision(ctx, []pipes.Request{
//	    {Path: "/run/app/pipe0", Mode: 0o660},
//	})
//	if report.HasFailures() {
//	    // caller decides whether the batch as a whole failed
//	}
package pipes
