// Package issues lists, creates and de-duplicates hosted issues using
// embeddings.
package issues

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/doeshing/gitbrew/internal/domain"
	"github.com/doeshing/gitbrew/internal/ports"
)

// Service orchestrates the issue workflows.
type Service struct {
	Host     ports.GitHost
	Embedder ports.Embedder
	Index    ports.SimilarityIndex
	Prompter ports.Prompter
	Logger   ports.Logger

	Threshold   float64
	TopN        int
	Concurrency int
}

// Result carries whatever the executed action produced.
type Result struct {
	Action     Action
	Issues     []domain.Issue
	Created    *domain.Issue
	Duplicates []DuplicateGroup
	Similar    []ScoredIssue
}

// Handle runs one action against repo, prompting for any input it needs.
func (s *Service) Handle(ctx context.Context, action Action, repo domain.RepoRef) (Result, error) {
	if s.Host == nil || s.Prompter == nil || s.Logger == nil {
		return Result{}, errors.New("issues.Service dependencies not satisfied")
	}
	res := Result{Action: action}

	switch action {
	case ActionList:
		state, err := s.Prompter.Choose(ctx, "Which issues?", []string{
			string(domain.IssueStateOpen), string(domain.IssueStateClosed), string(domain.IssueStateAll),
		})
		if err != nil {
			return res, err
		}
		res.Issues, err = s.List(ctx, repo, domain.IssueState(state))
		return res, err

	case ActionCreate:
		title, body, err := s.askDraft(ctx)
		if err != nil {
			return res, err
		}
		issue, err := s.Create(ctx, repo, title, body)
		if err != nil {
			return res, err
		}
		res.Created = &issue
		return res, nil

	case ActionFindDuplicates:
		var err error
		res.Duplicates, err = s.FindDuplicates(ctx, repo)
		return res, err

	case ActionFindSimilar:
		title, body, err := s.askDraft(ctx)
		if err != nil {
			return res, err
		}
		res.Similar, err = s.FindSimilar(ctx, repo, title, body)
		return res, err

	case ActionCancel:
		return res, nil

	default:
		return res, fmt.Errorf("unhandled issues action %v", action)
	}
}

// List returns issues in the given state.
func (s *Service) List(ctx context.Context, repo domain.RepoRef, state domain.IssueState) ([]domain.Issue, error) {
	if state == "" {
		state = domain.IssueStateOpen
	}
	return s.Host.ListIssues(ctx, repo, state)
}

// Create opens an issue.
func (s *Service) Create(ctx context.Context, repo domain.RepoRef, title, body string) (domain.Issue, error) {
	if strings.TrimSpace(title) == "" {
		return domain.Issue{}, errors.New("issue title is required")
	}
	issue, err := s.Host.CreateIssue(ctx, repo, title, body)
	if err != nil {
		return domain.Issue{}, err
	}
	s.Logger.Info("issue created", map[string]interface{}{"repo": repo.String(), "number": issue.Number})
	return issue, nil
}

// FindDuplicates embeds every open issue and groups pairs whose similarity
// exceeds the threshold, best group first.
func (s *Service) FindDuplicates(ctx context.Context, repo domain.RepoRef) ([]DuplicateGroup, error) {
	open, err := s.Host.ListIssues(ctx, repo, domain.IssueStateOpen)
	if err != nil {
		return nil, err
	}
	if len(open) < 2 {
		return nil, nil
	}
	vectors, err := s.embedAll(ctx, open)
	if err != nil {
		return nil, err
	}
	return groupDuplicates(open, vectors, s.threshold()), nil
}

// FindSimilar returns the open issues closest to a draft, refreshing the
// repository's index first when new issues were opened since the last run.
func (s *Service) FindSimilar(ctx context.Context, repo domain.RepoRef, title, body string) ([]ScoredIssue, error) {
	if s.Embedder == nil || s.Index == nil {
		return nil, errors.New("similar issue search needs an embedder and an index")
	}
	open, err := s.Host.ListIssues(ctx, repo, domain.IssueStateOpen)
	if err != nil {
		return nil, err
	}
	if len(open) == 0 {
		return nil, nil
	}
	if err := s.ensureIndexed(ctx, repo, open); err != nil {
		return nil, err
	}

	draft, err := s.Embedder.Embed(ctx, domain.Issue{Title: title, Body: body}.Text())
	if err != nil {
		return nil, fmt.Errorf("embed draft: %w", err)
	}
	matches, err := s.Index.Query(ctx, repo.String(), draft, s.topN())
	if err != nil {
		return nil, err
	}

	byNumber := make(map[string]domain.Issue, len(open))
	for _, issue := range open {
		byNumber[strconv.Itoa(issue.Number)] = issue
	}
	var out []ScoredIssue
	for _, m := range matches {
		issue, ok := byNumber[m.ID]
		if !ok {
			continue
		}
		out = append(out, ScoredIssue{Issue: issue, Score: m.Score})
	}
	return out, nil
}

// ensureIndexed re-embeds the open issues when the newest one differs from
// the marker stored with the index.
func (s *Service) ensureIndexed(ctx context.Context, repo domain.RepoRef, open []domain.Issue) error {
	namespace := repo.String()
	newest := newestNumber(open)

	marker, found, err := s.Index.Fetch(ctx, namespace, domain.IndexMarkerID)
	if err != nil {
		return err
	}
	if found && len(marker.Values) > 0 && int(marker.Values[0]) == newest {
		s.Logger.Debug("issue index up to date", map[string]interface{}{"repo": namespace, "newest": newest})
		return nil
	}

	s.Logger.Info("indexing issues", map[string]interface{}{"repo": namespace, "count": len(open)})
	vectors, err := s.embedAll(ctx, open)
	if err != nil {
		return err
	}
	batch := make([]domain.Vector, 0, len(open)+1)
	for i, issue := range open {
		batch = append(batch, domain.Vector{ID: strconv.Itoa(issue.Number), Values: vectors[i]})
	}
	batch = append(batch, domain.Vector{ID: domain.IndexMarkerID, Values: []float64{float64(newest)}})
	return s.Index.Upsert(ctx, namespace, batch)
}

// embedAll embeds issues with bounded concurrency, preserving order.
func (s *Service) embedAll(ctx context.Context, issues []domain.Issue) ([][]float64, error) {
	if s.Embedder == nil {
		return nil, errors.New("no embedder configured")
	}
	vectors := make([][]float64, len(issues))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency())

	for i, issue := range issues {
		i, issue := i, issue
		g.Go(func() error {
			vec, err := s.Embedder.Embed(gctx, issue.Text())
			if err != nil {
				return fmt.Errorf("embed issue #%d: %w", issue.Number, err)
			}
			vectors[i] = vec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vectors, nil
}

func (s *Service) askDraft(ctx context.Context) (string, string, error) {
	title, err := s.Prompter.Ask(ctx, "Issue title")
	if err != nil {
		return "", "", err
	}
	body, err := s.Prompter.Ask(ctx, "Issue body")
	if err != nil {
		return "", "", err
	}
	return title, body, nil
}

func newestNumber(issues []domain.Issue) int {
	newest := 0
	for _, issue := range issues {
		if issue.Number > newest {
			newest = issue.Number
		}
	}
	return newest
}

func (s *Service) threshold() float64 {
	if s.Threshold <= 0 || s.Threshold > 1 {
		return domain.DefaultSimilarityThreshold
	}
	return s.Threshold
}

func (s *Service) topN() int {
	if s.TopN <= 0 {
		return domain.DefaultSimilarTopN
	}
	return s.TopN
}

func (s *Service) concurrency() int {
	if s.Concurrency <= 0 {
		return domain.DefaultEmbedConcurrency
	}
	return s.Concurrency
}
