package exit

import (
	"bytes"
	"errors"
	"os"
	"testing"
)

func TestSuccess(t *testing.T) {
	result := Success("done")

	if result.ExitCode != CodeSuccess {
		t.Errorf("Success() ExitCode = %d, want %d", result.ExitCode, CodeSuccess)
	}
	if result.Message != "done" {
		t.Errorf("Success() Message = %q, want %q", result.Message, "done")
	}
	if result.Output != os.Stdout {
		t.Error("Success() expected output to stdout")
	}
}

func TestError(t *testing.T) {
	tests := []struct {
		name    string
		result  *Result
		message string
	}{
		{name: "error", result: Error("failed"), message: "failed"},
		{name: "errorf", result: Errorf("bad %s (%d)", "query", 2), message: "bad query (2)"},
		{name: "from error", result: FromError("data.json", errors.New("empty document")), message: "Error: data.json: empty document\n"},
		{name: "from error without source", result: FromError("", errors.New("boom")), message: "Error: boom\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.result.ExitCode != CodeFailure {
				t.Errorf("ExitCode = %d, want %d", tt.result.ExitCode, CodeFailure)
			}
			if tt.result.Message != tt.message {
				t.Errorf("Message = %q, want %q", tt.result.Message, tt.message)
			}
			if tt.result.Output != os.Stderr {
				t.Error("expected output to stderr")
			}
		})
	}
}

func TestPrint(t *testing.T) {
	var buf bytes.Buffer
	result := &Result{Output: &buf, Message: "[1, 2]\n"}

	result.Print()

	if buf.String() != "[1, 2]\n" {
		t.Errorf("Print() output = %q, want %q", buf.String(), "[1, 2]\n")
	}
}
