package exit

import (
	"fmt"
	"io"
	"os"
)

const (
	CodeSuccess = 0
	CodeFailure = 1
)

// Result is what the command prints before it terminates, and with which code.
type Result struct {
	Output   io.Writer
	ExitCode int
	Message  string
}

func (r *Result) Print() {
	fmt.Fprint(r.Output, r.Message)
}

// Success writes message to stdout and exits with CodeSuccess.
func Success(message string) *Result {
	return &Result{
		Output:   os.Stdout,
		ExitCode: CodeSuccess,
		Message:  message,
	}
}

// Error writes message to stderr and exits with CodeFailure.
func Error(message string) *Result {
	return &Result{
		Output:   os.Stderr,
		ExitCode: CodeFailure,
		Message:  message,
	}
}

func Errorf(format string, a ...any) *Result {
	return Error(fmt.Sprintf(format, a...))
}

// FromError reports err on stderr, prefixed with the input it concerns.
func FromError(source string, err error) *Result {
	if source == "" {
		return Errorf("Error: %v\n", err)
	}
	return Errorf("Error: %s: %v\n", source, err)
}
