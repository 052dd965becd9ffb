// Package command implements the command pipeline: parse a model answer,
// resolve placeholders, classify each command, confirm and execute, and run
// the clarification dialogue when the model needs more information.
package command

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/doeshing/gitbrew/internal/domain"
)

var (
	commandBlockPattern = regexp.MustCompile(`(?s)` + regexp.QuoteMeta(domain.MarkerStart) + `(.*?)` + regexp.QuoteMeta(domain.MarkerEnd))
	clarifyBlockPattern = regexp.MustCompile(`(?s)` + regexp.QuoteMeta(domain.MarkerClarify) + `(.*?)` + regexp.QuoteMeta(domain.MarkerClarifyClose))
)

// ParseAnswer extracts a command list or a clarification request from a raw
// model answer.
//
// When an answer carries both a command block and a clarification marker the
// clarification wins and the commands are dropped.
func ParseAnswer(answer string) (domain.Decision, error) {
	question, hasClarifyBlock := extractQuestion(answer)
	clarify := strings.Contains(answer, domain.MarkerClarify)

	if block := commandBlockPattern.FindStringSubmatch(answer); block != nil {
		if clarify {
			return domain.Decision{Clarify: true, Question: question}, nil
		}
		return domain.Decision{Commands: splitCommands(block[1])}, nil
	}

	if hasClarifyBlock {
		return domain.Decision{Clarify: true, Question: question}, nil
	}

	return domain.Decision{}, fmt.Errorf("%w: expected %s...%s or %s...%s block",
		domain.ErrMalformedAnswer,
		domain.MarkerStart, domain.MarkerEnd,
		domain.MarkerClarify, domain.MarkerClarifyClose)
}

func extractQuestion(answer string) (string, bool) {
	m := clarifyBlockPattern.FindStringSubmatch(answer)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

func splitCommands(block string) domain.CommandList {
	commands := domain.CommandList{}
	for _, piece := range strings.Split(block, domain.MarkerSeparator) {
		piece = strings.TrimSpace(piece)
		if piece == "" {
			continue
		}
		commands = append(commands, piece)
	}
	return commands
}
