package main

import (
	"encoding/json"
	"fmt"
	"os"
)

// ErrorResponse is the JSON shape for command errors
type ErrorResponse struct {
	Error string `json:"error"`
}

// outputJSON writes v to stdout as indented JSON.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputHuman writes a human-readable line to stdout.
func outputHuman(format string, args ...interface{}) {
	fmt.Fprintf(os.Stdout, format+"\n", args...)
}

// outputError writes an error to stderr, as JSON unless --human is set,
// and returns the exit code to use.
func outputError(err error, code int) int {
	if humanOutput {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return code
	}
	enc := json.NewEncoder(os.Stderr)
	enc.SetIndent("", "  ")
	_ = enc.Encode(ErrorResponse{Error: err.Error()})
	return code
}

// exitWithError prints an error and exits with the given code.
func exitWithError(err error, code int) {
	os.Exit(outputError(err, code))
}
