package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/doeshing/gitbrew/internal/application/prompts"
	"github.com/doeshing/gitbrew/internal/domain"
	"github.com/doeshing/gitbrew/internal/ports"
)

// Clarifier runs the question/answer dialogue with the user until the model
// produces a command block or the turn budget is spent.
type Clarifier struct {
	Completer ports.Completer
	Prompter  ports.Prompter
	Prompts   *prompts.Library
	Logger    ports.Logger
	// MaxTurns bounds the number of questions shown to the user.
	MaxTurns int
}

// Clarify asks question, re-prompts the model with the grown transcript and
// repeats while the model keeps asking. It returns the first command list the
// model produces, or domain.ErrClarificationExhausted after MaxTurns questions.
func (c *Clarifier) Clarify(ctx context.Context, question string, transcript *domain.Transcript) (domain.CommandList, error) {
	if c.Completer == nil || c.Prompter == nil || c.Prompts == nil {
		return nil, errors.New("command.Clarifier dependencies not satisfied")
	}
	maxTurns := c.MaxTurns
	if maxTurns <= 0 {
		maxTurns = domain.DefaultMaxClarificationTurns
	}

	for turn := 1; turn <= maxTurns; turn++ {
		answer, err := c.Prompter.Ask(ctx, question)
		if err != nil {
			return nil, err
		}
		transcript.Append(question, answer)

		messages, err := c.Prompts.Clarification(transcript)
		if err != nil {
			return nil, err
		}
		reply, err := c.Completer.Complete(ctx, messages)
		if err != nil {
			return nil, fmt.Errorf("clarification request: %w", err)
		}

		decision, err := ParseAnswer(reply)
		if err != nil {
			return nil, err
		}
		if !decision.NeedsClarification() {
			c.log("clarification resolved", map[string]interface{}{
				"turns":    turn,
				"commands": len(decision.Commands),
			})
			return decision.Commands, nil
		}

		question = decision.ClarificationQuestion()
		c.log("model asked again", map[string]interface{}{"turn": turn, "question": question})
	}

	return nil, fmt.Errorf("%w after %d turns", domain.ErrClarificationExhausted, maxTurns)
}

func (c *Clarifier) log(msg string, fields map[string]interface{}) {
	if c.Logger != nil {
		c.Logger.Debug(msg, fields)
	}
}
