// Package app is the testable entry point behind cmd/motifscan: it
// wires the command tree to the given streams and maps errors to
// process exit codes.
package app

import (
	"errors"
	"fmt"
	"io"

	"motifscan/internal/cli"
)

// Run executes argv and returns the exit code: 0 success, 1 input
// error, 2 usage error, 3 runtime error.
func Run(argv []string, stdout, stderr io.Writer) int {
	root := cli.NewRootCommand(stdout, stderr)
	root.SetArgs(argv)

	err := root.Execute()
	if err == nil {
		return 0
	}

	var xe *cli.ExitError
	if errors.As(err, &xe) {
		fmt.Fprintf(stderr, "error: %v\n", xe.Err)
		return xe.Code
	}

	// Anything else came out of flag/argument parsing.
	fmt.Fprintf(stderr, "error: %v\n", err)
	return 2
}
