package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doeshing/gitbrew/internal/application/command"
	"github.com/doeshing/gitbrew/internal/application/issues"
	"github.com/doeshing/gitbrew/internal/application/readme"
	"github.com/doeshing/gitbrew/internal/application/review"
	"github.com/doeshing/gitbrew/internal/domain"
)

func newRunCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "run <intent...>",
		Short: "Turn one request into git commands and run them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.runIntent(cmd.Context(), args)
		},
	}
}

func newIssuesCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "issues [owner/repo]",
		Short: "List, create and find duplicate or similar issues",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.issuesWorkflow(cmd.Context(), firstArg(args))
		},
	}
}

func newReviewCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "review [pull-request-url]",
		Short: "Review a pull request file by file and post the comments",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.reviewWorkflow(cmd.Context(), firstArg(args))
		},
	}
}

func newReadmeCommand(s *session) *cobra.Command {
	var (
		out   string
		force bool
	)
	cmd := &cobra.Command{
		Use:   "readme <owner/repo>",
		Short: "Generate a README from the repository's files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.generateReadme(cmd.Context(), args[0], out, force)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the README to this file instead of printing it")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite the output file if it exists")
	return cmd
}

func newPolicyCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:         "policy",
		Short:       "Show which git commands run without confirmation",
		Annotations: skipAnnotation(),
		RunE: func(cmd *cobra.Command, args []string) error {
			prefix := domain.DefaultToolPrefix
			if cfg, err := s.loader().Load(cmd.Context()); err == nil {
				prefix = cfg.GetToolPrefix()
			}
			s.renderer.Policy(prefix, command.Policy())
			return nil
		},
	}
}

// runIntent handles a one-shot intent. Unlike the REPL, errors end the process.
func (s *session) runIntent(ctx context.Context, args []string) error {
	return s.handleIntent(ctx, strings.Join(args, " "))
}

func (s *session) handleIntent(ctx context.Context, intent string) error {
	report, err := s.container.CommandService.Handle(ctx, intent)
	if len(report.Results) > 0 {
		s.renderer.Report(report)
	}
	if errors.Is(err, domain.ErrClarificationExhausted) {
		return fmt.Errorf("%w; try rephrasing the request", err)
	}
	return err
}

func (s *session) issuesWorkflow(ctx context.Context, repoArg string) error {
	repo, err := s.container.ResolveRepo(ctx, repoArg)
	if err != nil {
		return err
	}
	for {
		label, err := s.prompter.Choose(ctx, fmt.Sprintf("Issues in %s:", repo), issues.Labels())
		if err != nil {
			return err
		}
		action, err := issues.ParseAction(label)
		if err != nil {
			return err
		}
		res, err := s.container.IssueService.Handle(ctx, action, repo)
		if err != nil {
			if errors.Is(err, domain.ErrUserAborted) {
				return err
			}
			s.renderer.Error(err)
			continue
		}
		if res.Action == issues.ActionCancel {
			return nil
		}
		s.renderer.IssueResult(res)
	}
}

func (s *session) reviewWorkflow(ctx context.Context, arg string) error {
	svc := s.container.ReviewService
	if arg != "" {
		res, err := svc.ReviewAndPost(ctx, arg)
		s.renderer.ReviewResult(res)
		return err
	}

	for {
		label, err := s.prompter.Choose(ctx, "Pull requests:", review.Labels())
		if err != nil {
			return err
		}
		action, err := review.ParseAction(label)
		if err != nil {
			return err
		}
		var repo domain.RepoRef
		if action == review.ActionList {
			if repo, err = s.container.ResolveRepo(ctx, ""); err != nil {
				s.renderer.Error(err)
				continue
			}
		}
		res, err := svc.Handle(ctx, action, repo)
		if err != nil {
			if errors.Is(err, domain.ErrUserAborted) {
				return err
			}
			s.renderer.Error(err)
			continue
		}
		if res.Action == review.ActionExit {
			return nil
		}
		s.renderer.ReviewResult(res)
	}
}

func (s *session) generateReadme(ctx context.Context, repoArg, out string, force bool) error {
	repo, err := domain.ParseRepoRef(repoArg)
	if err != nil {
		return err
	}
	content, err := s.container.ReadmeService.Generate(ctx, repo)
	if err != nil {
		return err
	}
	if out == "" {
		s.renderer.Markdown(content)
		return nil
	}
	if err := readme.WriteFile(out, content, force); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	s.renderer.Info("README written to %s", out)
	return nil
}

func (s *session) showPolicy() {
	s.renderer.Policy(s.container.Config.GetToolPrefix(), command.Policy())
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
