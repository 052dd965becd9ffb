package domain

import "time"

// HistoryRecord captures one command that went through the execution engine.
type HistoryRecord struct {
	RunID      string       `json:"run_id"`
	Timestamp  time.Time    `json:"timestamp"`
	Intent     string       `json:"intent"`
	Command    string       `json:"command"`
	Verdict    Verdict      `json:"verdict"`
	State      CommandState `json:"state"`
	ExitCode   int          `json:"exit_code"`
	DurationMS int64        `json:"duration_ms"`
}

// Succeeded reports whether the recorded command ran cleanly.
func (r HistoryRecord) Succeeded() bool {
	return r.State == StateExecuted
}
