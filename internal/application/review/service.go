// Package review asks the language model to review pull request diffs file by
// file and posts the result back as review comments.
package review

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/doeshing/gitbrew/internal/application/prompts"
	"github.com/doeshing/gitbrew/internal/domain"
	"github.com/doeshing/gitbrew/internal/ports"
)

// Action is one entry of the review menu.
type Action int

const (
	ActionList Action = iota
	ActionReview
	ActionExit
)

// Actions lists the menu in display order.
var Actions = []Action{ActionList, ActionReview, ActionExit}

func (a Action) String() string {
	switch a {
	case ActionList:
		return "List pull requests"
	case ActionReview:
		return "Review a pull request"
	case ActionExit:
		return "Exit"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// ParseAction maps a menu label back to its action.
func ParseAction(label string) (Action, error) {
	for _, a := range Actions {
		if strings.EqualFold(a.String(), strings.TrimSpace(label)) {
			return a, nil
		}
	}
	return ActionExit, fmt.Errorf("unknown review action %q", label)
}

// Labels returns the menu labels in display order.
func Labels() []string {
	out := make([]string, len(Actions))
	for i, a := range Actions {
		out[i] = a.String()
	}
	return out
}

// FileReview is the model's review of one changed file.
type FileReview struct {
	Filename string
	Review   string
}

// Result carries whatever the executed action produced.
type Result struct {
	Action       Action
	PullRequests []domain.PullRequest
	PullRequest  domain.PullRequest
	Reviews      []FileReview
	Skipped      []string
	Posted       bool
}

// Presenter shows finished reviews before the user decides to post them.
type Presenter func(pr domain.PullRequest, reviews []FileReview)

// Service orchestrates pull request reviews.
type Service struct {
	Host      ports.GitHost
	Completer ports.Completer
	Prompts   *prompts.Library
	Prompter  ports.Prompter
	Logger    ports.Logger
	Present   Presenter

	NonCodeExtensions []string
	Header            string
}

// Handle runs one action. List works on repo; Review asks for a pull request URL.
func (s *Service) Handle(ctx context.Context, action Action, repo domain.RepoRef) (Result, error) {
	if s.Host == nil || s.Prompter == nil || s.Logger == nil {
		return Result{}, errors.New("review.Service dependencies not satisfied")
	}

	switch action {
	case ActionList:
		prs, err := s.Host.ListPullRequests(ctx, repo, "open")
		return Result{Action: action, PullRequests: prs}, err

	case ActionReview:
		url, err := s.Prompter.Ask(ctx, "Pull request URL")
		if err != nil {
			return Result{Action: action}, err
		}
		return s.ReviewAndPost(ctx, url)

	case ActionExit:
		return Result{Action: action}, nil

	default:
		return Result{Action: action}, fmt.Errorf("unhandled review action %v", action)
	}
}

// ReviewAndPost reviews the pull request at url, presents the reviews and
// posts them once the user confirms.
func (s *Service) ReviewAndPost(ctx context.Context, url string) (Result, error) {
	res, err := s.Review(ctx, url)
	if err != nil || len(res.Reviews) == 0 {
		return res, err
	}
	if s.Present != nil {
		s.Present(res.PullRequest, res.Reviews)
	}

	post, err := s.Prompter.Confirm(ctx, fmt.Sprintf("Post %d review comment(s) to #%d?", len(res.Reviews), res.PullRequest.Number))
	if err != nil || !post {
		return res, err
	}
	repo, number, err := domain.ParsePullRequestURL(url)
	if err != nil {
		return res, err
	}
	if err := s.Post(ctx, repo, number, res.Reviews); err != nil {
		return res, err
	}
	res.Posted = true
	return res, nil
}

// Review fetches the pull request and reviews every code file in it.
func (s *Service) Review(ctx context.Context, url string) (Result, error) {
	res := Result{Action: ActionReview}
	if s.Completer == nil || s.Prompts == nil {
		return res, errors.New("review needs a language model")
	}

	repo, number, err := domain.ParsePullRequestURL(url)
	if err != nil {
		return res, err
	}
	pr, err := s.Host.GetPullRequest(ctx, repo, number)
	if err != nil {
		return res, err
	}
	res.PullRequest = pr

	files, err := s.Host.ListPullRequestFiles(ctx, repo, number)
	if err != nil {
		return res, err
	}

	for _, file := range files {
		if s.isNonCode(file.Filename) || strings.TrimSpace(file.Patch) == "" {
			res.Skipped = append(res.Skipped, file.Filename)
			continue
		}
		messages, err := s.Prompts.ReviewPullRequest(pr, file)
		if err != nil {
			return res, err
		}
		s.Logger.Info("reviewing file", map[string]interface{}{"pr": number, "file": file.Filename})
		text, err := s.Completer.Complete(ctx, messages)
		if err != nil {
			return res, fmt.Errorf("review %s: %w", file.Filename, err)
		}
		res.Reviews = append(res.Reviews, FileReview{Filename: file.Filename, Review: strings.TrimSpace(text)})
	}
	return res, nil
}

// Post publishes one COMMENT review per file.
func (s *Service) Post(ctx context.Context, repo domain.RepoRef, number int, reviews []FileReview) error {
	for _, r := range reviews {
		if err := s.Host.CreateReview(ctx, repo, number, s.commentBody(r)); err != nil {
			return err
		}
	}
	s.Logger.Info("reviews posted", map[string]interface{}{"repo": repo.String(), "pr": number, "count": len(reviews)})
	return nil
}

func (s *Service) commentBody(r FileReview) string {
	header := s.Header
	if header == "" {
		header = domain.DefaultReviewHeader
	}
	return fmt.Sprintf("%s## %s\n\n%s", header, r.Filename, r.Review)
}

func (s *Service) isNonCode(name string) bool {
	exts := s.NonCodeExtensions
	if len(exts) == 0 {
		exts = domain.DefaultNonCodeExtensions
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, skip := range exts {
		if ext == strings.ToLower(skip) {
			return true
		}
	}
	return false
}
