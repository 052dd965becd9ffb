package command

import (
	"context"
	"strings"

	"github.com/doeshing/gitbrew/internal/application/prompts"
	"github.com/doeshing/gitbrew/internal/ports"
)

// ModelExplainer asks the language model to explain a command.
type ModelExplainer struct {
	Completer ports.Completer
	Prompts   *prompts.Library
}

// Explain implements ports.Explainer.
func (m ModelExplainer) Explain(ctx context.Context, command string) (string, error) {
	messages, err := m.Prompts.ExplainCommand(command)
	if err != nil {
		return "", err
	}
	text, err := m.Completer.Complete(ctx, messages)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}
