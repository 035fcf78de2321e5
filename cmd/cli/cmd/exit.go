package cmd

import (
	stderrors "errors"
	"fmt"
)

const (
	// ExitOK means the run succeeded and stayed under any threshold
	ExitOK = 0

	// ExitError means a fatal error or a failed preview
	ExitError = 1

	// ExitThresholdExceeded means the estimated total is above the threshold
	ExitThresholdExceeded = 2
)

// exitError carries a process exit code. Its message is empty when the
// outcome was already reported on stdout.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string {
	if e.msg == "" {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.msg
}

// ExitCode maps an Execute error to a process exit code
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var ee *exitError
	if stderrors.As(err, &ee) {
		return ee.code
	}
	return ExitError
}

// Silent reports whether err needs no message on stderr
func Silent(err error) bool {
	var ee *exitError
	return stderrors.As(err, &ee) && ee.msg == ""
}
