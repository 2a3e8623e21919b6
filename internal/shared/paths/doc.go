// Package paths validates and constructs filesystem locations for pipe nodes.
//
// A pipe path must be absolute and already canonical. Rejecting unclean paths
// instead of cleaning them keeps the path echoed in a result identical to the
// one the caller asked for.
//
// # Usage
//
//	if err := paths.Validate("/run/app/pipe0"); err != nil {
//	    // reject the request
//	}
//
//	// /run/app/pipe0 .. /run/app/pipe9
//	pool, err := paths.Pool("/run/app", "pipe", 10)
package paths
