package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/doeshing/gitbrew/internal/domain"
)

// replPrompt is printed before every REPL line.
const replPrompt = "gitbrew> "

// replCommand is one thing a REPL line can ask for.
type replCommand int

const (
	replIntent replCommand = iota
	replEmpty
	replExit
	replHelp
	replIssues
	replReview
	replReadme
	replHistory
	replPolicy
)

var replKeywords = map[string]replCommand{
	"exit":    replExit,
	"quit":    replExit,
	"help":    replHelp,
	"issues":  replIssues,
	"review":  replReview,
	"readme":  replReadme,
	"history": replHistory,
	"policy":  replPolicy,
}

// parseReplLine splits a line into its command and argument. Lines that do
// not start with a keyword are intents.
func parseReplLine(line string) (replCommand, string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return replEmpty, ""
	}
	head, rest, _ := strings.Cut(line, " ")
	if cmd, ok := replKeywords[strings.ToLower(head)]; ok {
		return cmd, strings.TrimSpace(rest)
	}
	return replIntent, line
}

const replHelpText = `Type what you want git to do, for example "undo my last commit".

  issues [owner/repo]     list, create and de-duplicate issues
  review [pull-url]       review a pull request with the model
  readme <owner/repo>     generate a README for a repository
  history                 show recent commands
  policy                  show which commands run without asking
  help                    show this help
  exit, quit              leave`

// repl reads lines until exit or end of input. Errors from one line are
// printed and the loop continues.
func (s *session) repl(ctx context.Context) error {
	s.renderer.Info("gitbrew: describe a git task, or type help.")
	for {
		line, err := s.prompter.ReadLine(ctx, replPrompt)
		if err != nil {
			if errors.Is(err, domain.ErrUserAborted) || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		cmd, arg := parseReplLine(line)
		if cmd == replExit {
			return nil
		}
		if err := s.dispatch(ctx, cmd, arg); err != nil {
			if errors.Is(err, domain.ErrUserAborted) {
				s.renderer.Info("cancelled")
				continue
			}
			s.renderer.Error(err)
		}
	}
}

func (s *session) dispatch(ctx context.Context, cmd replCommand, arg string) error {
	switch cmd {
	case replEmpty, replExit:
		return nil
	case replHelp:
		s.renderer.Info("%s", replHelpText)
		return nil
	case replIssues:
		return s.issuesWorkflow(ctx, arg)
	case replReview:
		return s.reviewWorkflow(ctx, arg)
	case replReadme:
		if arg == "" {
			return fmt.Errorf("usage: readme <owner/repo>")
		}
		return s.generateReadme(ctx, arg, "", false)
	case replHistory:
		return s.listHistory(ctx, domain.DefaultHistoryLimit, "")
	case replPolicy:
		s.showPolicy()
		return nil
	case replIntent:
		return s.handleIntent(ctx, arg)
	default:
		return fmt.Errorf("unhandled repl command %d", cmd)
	}
}
