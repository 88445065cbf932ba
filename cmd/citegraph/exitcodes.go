package main

// Exit codes used by the citegraph CLI
const (
	// ExitSuccess indicates successful completion
	ExitSuccess = 0

	// ExitError indicates a general error
	ExitError = 1

	// ExitConfigError indicates a configuration problem
	ExitConfigError = 2

	// ExitDataError indicates a data integrity problem
	ExitDataError = 3
)
