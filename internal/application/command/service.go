package command

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/doeshing/gitbrew/internal/application/prompts"
	"github.com/doeshing/gitbrew/internal/domain"
	"github.com/doeshing/gitbrew/internal/ports"
)

// Service orchestrates one interaction cycle end-to-end: intent to model,
// model answer to commands, commands through the engine.
type Service struct {
	Completer ports.Completer
	Prompts   *prompts.Library
	Clarifier *Clarifier
	Engine    *Engine
	History   ports.HistoryRepository
	Logger    ports.Logger
}

// Plan turns an intent into a command list, running the clarification
// dialogue when the model asks for it.
func (s *Service) Plan(ctx context.Context, intent string) (domain.CommandList, error) {
	if s.Completer == nil || s.Prompts == nil || s.Clarifier == nil || s.Logger == nil {
		return nil, errors.New("command.Service dependencies not satisfied")
	}
	if strings.TrimSpace(intent) == "" {
		return nil, domain.ErrEmptyIntent
	}

	messages, err := s.Prompts.GenerateCommand(intent)
	if err != nil {
		return nil, err
	}

	s.Logger.Info("requesting commands", map[string]interface{}{"intent": intent})
	answer, err := s.Completer.Complete(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("generate commands: %w", err)
	}

	decision, err := ParseAnswer(answer)
	if err != nil {
		s.Logger.Warn("unparseable answer", map[string]interface{}{"answer": answer})
		return nil, err
	}
	if !decision.NeedsClarification() {
		return decision.Commands, nil
	}

	s.Logger.Info("model asked for clarification", map[string]interface{}{"question": decision.Question})
	return s.Clarifier.Clarify(ctx, decision.ClarificationQuestion(), domain.NewTranscript(intent))
}

// Handle plans and executes intent. Declines and failures come back in the
// report; the error covers parse, clarification and prompt failures.
func (s *Service) Handle(ctx context.Context, intent string) (domain.RunReport, error) {
	commands, err := s.Plan(ctx, intent)
	if err != nil {
		return domain.RunReport{Intent: intent}, err
	}
	if s.Engine == nil {
		return domain.RunReport{Intent: intent}, errors.New("command.Service has no engine")
	}

	report, err := s.Engine.Execute(ctx, commands)
	report.Intent = strings.TrimSpace(intent)
	s.record(ctx, report)
	return report, err
}

func (s *Service) record(ctx context.Context, report domain.RunReport) {
	if s.History == nil {
		return
	}
	for _, result := range report.Results {
		rec := domain.HistoryRecord{
			RunID:      report.RunID,
			Timestamp:  time.Now(),
			Intent:     report.Intent,
			Command:    result.Command,
			Verdict:    result.Verdict,
			State:      result.State,
			ExitCode:   result.ExitCode,
			DurationMS: result.DurationMS,
		}
		if err := s.History.Save(ctx, rec); err != nil {
			s.Logger.Warn("history save failed", map[string]interface{}{"error": err.Error()})
		}
	}
}
