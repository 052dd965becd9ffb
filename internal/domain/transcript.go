package domain

import (
	"fmt"
	"strings"
)

// Turn is one clarification question and the user's answer.
type Turn struct {
	Question string
	Answer   string
}

// Transcript accumulates the original intent plus every clarification turn of
// one interaction cycle. It only grows.
type Transcript struct {
	Intent string
	Turns  []Turn
}

// NewTranscript starts a transcript rooted at intent.
func NewTranscript(intent string) *Transcript {
	return &Transcript{Intent: intent}
}

// Append records a question/answer pair.
func (t *Transcript) Append(question, answer string) {
	t.Turns = append(t.Turns, Turn{Question: question, Answer: answer})
}

// Len returns the number of clarification turns recorded so far.
func (t *Transcript) Len() int {
	return len(t.Turns)
}

// String renders the transcript as plain text for re-prompting.
func (t *Transcript) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "User: %s\n", t.Intent)
	for _, turn := range t.Turns {
		fmt.Fprintf(&b, "Assistant: %s\n", turn.Question)
		fmt.Fprintf(&b, "User: %s\n", turn.Answer)
	}
	return strings.TrimRight(b.String(), "\n")
}
