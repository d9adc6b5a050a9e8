// Package preflight diagnoses whether factcheck can work in the current
// environment before the user starts searching.
//
// The package validates:
//   - Configuration validity
//   - Backend reachability through the probe endpoint
//   - Both ranking endpoints and the suggestion endpoint
//   - Write permissions of the log and data directories
//   - Disk space for logs and statistics
//
// Use the Checker type to run all validations:
//
//	checker := preflight.New(preflight.WithBackend(c))
//	results := checker.RunAll(ctx, preflight.Targets{LogDir: dir, DataDir: data})
//	if checker.HasCriticalFailures(results) {
//	    // Handle failures
//	}
package preflight
