// Package exitcode defines the process exit codes of the CLI.
package exitcode

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates bad input: flags, arguments, unknown or ambiguous
	// task ids, invalid configuration.
	UserError = 1

	// AuthError indicates missing or rejected credentials.
	AuthError = 2

	// BackendError indicates a failure of the backend or of state storage.
	BackendError = 3
)
