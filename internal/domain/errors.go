package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMalformedAnswer is returned when a model answer contains neither a
	// command block nor a clarification block.
	ErrMalformedAnswer = errors.New("malformed answer")
	// ErrClarificationExhausted is returned when the model keeps asking for
	// clarification past the configured number of turns.
	ErrClarificationExhausted = errors.New("clarification turns exhausted")
	// ErrInvalidRepositoryReference is returned for unparseable repository identifiers.
	ErrInvalidRepositoryReference = errors.New("invalid repository reference")
	// ErrUserAborted is returned when the user ends an interactive prompt (EOF, interrupt).
	ErrUserAborted = errors.New("aborted by user")
	// ErrEmptyIntent is returned for blank input lines.
	ErrEmptyIntent = errors.New("empty intent")
)

// ExecutionFailure describes a command that exited with an error.
type ExecutionFailure struct {
	Command  string
	ExitCode int
	Stdout   string
	Stderr   string
	Err      error
}

func (e *ExecutionFailure) Error() string {
	detail := strings.TrimSpace(e.Stderr)
	if detail == "" && e.Err != nil {
		detail = e.Err.Error()
	}
	return fmt.Sprintf("command %q failed with exit code %d: %s", e.Command, e.ExitCode, detail)
}

func (e *ExecutionFailure) Unwrap() error {
	return e.Err
}
