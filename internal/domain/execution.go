package domain

import "time"

// Verdict is the safety classification of a single command line.
type Verdict string

const (
	// VerdictSkip marks a line that is commentary, not a command. It is never executed.
	VerdictSkip Verdict = "skip"
	// VerdictReadOnly commands run without confirmation.
	VerdictReadOnly Verdict = "read_only"
	// VerdictMutating commands require explicit confirmation.
	VerdictMutating Verdict = "mutating"
)

// CommandState tracks a command through the execution state machine.
type CommandState string

const (
	StatePending              CommandState = "pending"
	StateSanitized            CommandState = "sanitized"
	StateClassified           CommandState = "classified"
	StateAwaitingConfirmation CommandState = "awaiting_confirmation"
	StateExplaining           CommandState = "explaining"
	StateConfirmed            CommandState = "confirmed"
	StateDeclined             CommandState = "declined"
	StateExecuted             CommandState = "executed"
	StateFailed               CommandState = "failed"
	StateSkipped              CommandState = "skipped"
)

// Terminal reports whether no further transitions are possible.
func (s CommandState) Terminal() bool {
	switch s {
	case StateDeclined, StateExecuted, StateFailed, StateSkipped:
		return true
	default:
		return false
	}
}

// ConfirmChoice is the user's answer to a confirmation prompt.
type ConfirmChoice string

const (
	ChoiceYes     ConfirmChoice = "Yes"
	ChoiceNo      ConfirmChoice = "No"
	ChoiceExplain ConfirmChoice = "Explain"
)

// ConfirmChoices lists the options offered for a mutating command, in display order.
var ConfirmChoices = []ConfirmChoice{ChoiceYes, ChoiceNo, ChoiceExplain}

// ExecutionResult is the outcome of one command in a run.
type ExecutionResult struct {
	Command    string
	Verdict    Verdict
	State      CommandState
	Stdout     string
	Stderr     string
	ExitCode   int
	DurationMS int64
	Err        error
}

// Succeeded reports whether the command ran and exited cleanly.
func (r ExecutionResult) Succeeded() bool {
	return r.State == StateExecuted
}

// RunStatus is the terminal status of a command list run.
type RunStatus string

const (
	RunCompleted       RunStatus = "completed"
	RunHaltedOnDecline RunStatus = "halted_on_decline"
	RunHaltedOnFailure RunStatus = "halted_on_failure"
)

// RunReport aggregates the results of executing one command list.
type RunReport struct {
	RunID     string
	Intent    string
	Status    RunStatus
	Results   []ExecutionResult
	StartedAt time.Time
	// Failure is set when Status is RunHaltedOnFailure.
	Failure *ExecutionFailure
}

// Executed returns the commands that actually ran successfully.
func (r RunReport) Executed() []ExecutionResult {
	var out []ExecutionResult
	for _, res := range r.Results {
		if res.State == StateExecuted {
			out = append(out, res)
		}
	}
	return out
}

// ShellResult is the raw output of a shell invocation.
type ShellResult struct {
	Stdout     string
	Stderr     string
	ExitCode   int
	DurationMS int64
}
