package domain

// Markers of the text protocol spoken with the language model. Matching is
// exact and case-sensitive.
const (
	MarkerStart        = "<START>"
	MarkerEnd          = "<END>"
	MarkerSeparator    = "<SEP>"
	MarkerClarify      = "<CLARIFY>"
	MarkerClarifyClose = "</CLARIFY>"
)

// FallbackClarificationQuestion is asked when the model signals doubt without
// phrasing a question.
const FallbackClarificationQuestion = "Could you describe in more detail what you want to do?"

// CommandList is an ordered sequence of commands extracted from a command block.
type CommandList []string

// Decision is the outcome of parsing one model answer: either commands to run
// or a question for the user.
type Decision struct {
	Commands CommandList
	// Clarify is set when the model asked for more information. Commands is
	// always empty when Clarify is true.
	Clarify  bool
	Question string
}

// NeedsClarification reports whether the user must be asked before proceeding.
func (d Decision) NeedsClarification() bool {
	return d.Clarify
}

// ClarificationQuestion returns the question to show, falling back to a
// generic prompt when the model did not provide one.
func (d Decision) ClarificationQuestion() string {
	if d.Question == "" {
		return FallbackClarificationQuestion
	}
	return d.Question
}
