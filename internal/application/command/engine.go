package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/doeshing/gitbrew/internal/domain"
	"github.com/doeshing/gitbrew/internal/ports"
)

// Engine runs a command list one command at a time, asking for confirmation
// before anything mutating. It stops at the first decline or failure and
// never rolls back commands that already ran.
type Engine struct {
	Sanitizer  *Sanitizer
	Classifier Classifier
	Executor   ports.CommandExecutor
	Prompter   ports.Prompter
	Explainer  ports.Explainer
	Observer   ports.RunObserver
	Logger     ports.Logger
	// Timeout bounds each shell invocation. Zero disables it.
	Timeout time.Duration
}

// Execute runs commands in order. Declines and failures are reported in the
// returned RunReport; the error is reserved for prompt failures such as the
// user closing stdin.
func (e *Engine) Execute(ctx context.Context, commands domain.CommandList) (domain.RunReport, error) {
	if e.Sanitizer == nil || e.Executor == nil || e.Prompter == nil || e.Logger == nil {
		return domain.RunReport{}, errors.New("command.Engine dependencies not satisfied")
	}

	report := domain.RunReport{
		RunID:     uuid.NewString(),
		Status:    domain.RunCompleted,
		StartedAt: time.Now(),
	}

	for idx, raw := range commands {
		result, err := e.step(ctx, raw)
		if result.State != domain.StatePending {
			report.Results = append(report.Results, result)
		}
		if err != nil {
			return report, err
		}

		switch result.State {
		case domain.StateDeclined:
			report.Status = domain.RunHaltedOnDecline
			e.Logger.Info("run halted on decline", map[string]interface{}{
				"run_id":    report.RunID,
				"command":   result.Command,
				"abandoned": len(commands) - idx - 1,
			})
			return report, nil
		case domain.StateFailed:
			report.Status = domain.RunHaltedOnFailure
			report.Failure = &domain.ExecutionFailure{
				Command:  result.Command,
				ExitCode: result.ExitCode,
				Stdout:   result.Stdout,
				Stderr:   result.Stderr,
				Err:      result.Err,
			}
			e.Logger.Warn("run halted on failure", map[string]interface{}{
				"run_id":    report.RunID,
				"command":   result.Command,
				"exit_code": result.ExitCode,
				"abandoned": len(commands) - idx - 1,
			})
			return report, nil
		}
	}

	return report, nil
}

// step drives one command through the state machine until a terminal state.
func (e *Engine) step(ctx context.Context, raw string) (domain.ExecutionResult, error) {
	result := domain.ExecutionResult{Command: raw, State: domain.StatePending}

	command, err := e.Sanitizer.Sanitize(ctx, raw)
	if err != nil {
		return result, err
	}
	result.Command = command
	e.transition(&result, domain.StateSanitized)

	result.Verdict = e.Classifier.Classify(command)
	e.transition(&result, domain.StateClassified)

	switch result.Verdict {
	case domain.VerdictSkip:
		e.Logger.Info("skipping non-command line", map[string]interface{}{"line": command})
		e.transition(&result, domain.StateSkipped)
		e.observer().CommandSkipped(command)
		return result, nil
	case domain.VerdictReadOnly:
		e.transition(&result, domain.StateConfirmed)
	case domain.VerdictMutating:
		confirmed, err := e.confirm(ctx, &result)
		if err != nil {
			return result, err
		}
		if !confirmed {
			e.transition(&result, domain.StateDeclined)
			return result, nil
		}
		e.transition(&result, domain.StateConfirmed)
	}

	e.run(ctx, &result)
	e.observer().CommandFinished(result)
	return result, nil
}

// confirm loops on the Yes/No/Explain prompt. Explain never changes the verdict.
func (e *Engine) confirm(ctx context.Context, result *domain.ExecutionResult) (bool, error) {
	options := make([]string, 0, len(domain.ConfirmChoices))
	for _, choice := range domain.ConfirmChoices {
		options = append(options, string(choice))
	}
	question := fmt.Sprintf("Run `%s`?", result.Command)

	for {
		e.transition(result, domain.StateAwaitingConfirmation)
		answer, err := e.Prompter.Choose(ctx, question, options)
		if err != nil {
			return false, err
		}

		switch domain.ConfirmChoice(answer) {
		case domain.ChoiceYes:
			return true, nil
		case domain.ChoiceNo:
			return false, nil
		case domain.ChoiceExplain:
			e.transition(result, domain.StateExplaining)
			e.explain(ctx, result.Command)
		default:
			e.Logger.Warn("unrecognised confirmation answer", map[string]interface{}{"answer": answer})
		}
	}
}

func (e *Engine) explain(ctx context.Context, command string) {
	if e.Explainer == nil {
		e.observer().Explanation(command, "No explanation available.")
		return
	}
	text, err := e.Explainer.Explain(ctx, command)
	if err != nil {
		e.Logger.Error("explain command", err, map[string]interface{}{"command": command})
		text = fmt.Sprintf("Could not get an explanation: %v", err)
	}
	e.observer().Explanation(command, text)
}

func (e *Engine) run(ctx context.Context, result *domain.ExecutionResult) {
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	e.Logger.Info("executing command", map[string]interface{}{
		"command": result.Command,
		"verdict": result.Verdict,
	})

	out, err := e.Executor.Execute(ctx, result.Command)
	result.Stdout = out.Stdout
	result.Stderr = out.Stderr
	result.ExitCode = out.ExitCode
	result.DurationMS = out.DurationMS
	if err != nil {
		result.Err = err
		if result.ExitCode == 0 {
			result.ExitCode = -1
		}
		e.transition(result, domain.StateFailed)
		return
	}
	e.transition(result, domain.StateExecuted)
}

func (e *Engine) transition(result *domain.ExecutionResult, next domain.CommandState) {
	e.Logger.Debug("command state", map[string]interface{}{
		"command": result.Command,
		"from":    result.State,
		"to":      next,
	})
	result.State = next
}

func (e *Engine) observer() ports.RunObserver {
	if e.Observer == nil {
		return nopObserver{}
	}
	return e.Observer
}

type nopObserver struct{}

func (nopObserver) CommandSkipped(string)                  {}
func (nopObserver) Explanation(string, string)             {}
func (nopObserver) CommandFinished(domain.ExecutionResult) {}
