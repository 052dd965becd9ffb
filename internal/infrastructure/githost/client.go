// Package githost implements ports.GitHost on the GitHub REST API.
package githost

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/go-github/v66/github"

	"github.com/doeshing/gitbrew/internal/domain"
	"github.com/doeshing/gitbrew/internal/ports"
)

const perPage = 100

// Client wraps a go-github client.
type Client struct {
	gh *github.Client
}

// Options configures the client.
type Options struct {
	Token string
	// BaseURL points at a GitHub Enterprise API root. Empty uses github.com.
	BaseURL    string
	HTTPClient *http.Client
}

// New builds a client. An empty token gives unauthenticated, rate-limited access.
func New(opts Options) (*Client, error) {
	gh := github.NewClient(opts.HTTPClient)
	if opts.Token != "" {
		gh = gh.WithAuthToken(opts.Token)
	}
	if opts.BaseURL != "" {
		var err error
		gh, err = gh.WithEnterpriseURLs(opts.BaseURL, opts.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("github base url: %w", err)
		}
	}
	return &Client{gh: gh}, nil
}

// ListIssues returns issues (pull requests excluded) in the given state.
func (c *Client) ListIssues(ctx context.Context, repo domain.RepoRef, state domain.IssueState) ([]domain.Issue, error) {
	opts := &github.IssueListByRepoOptions{
		State:       string(state),
		Sort:        "created",
		Direction:   "desc",
		ListOptions: github.ListOptions{PerPage: perPage},
	}
	var out []domain.Issue
	for {
		issues, resp, err := c.gh.Issues.ListByRepo(ctx, repo.Owner, repo.Name, opts)
		if err != nil {
			return nil, fmt.Errorf("list issues for %s: %w", repo, err)
		}
		for _, issue := range issues {
			if issue.IsPullRequest() {
				continue
			}
			out = append(out, toIssue(issue))
		}
		if resp.NextPage == 0 {
			return out, nil
		}
		opts.Page = resp.NextPage
	}
}

// GetIssue fetches one issue.
func (c *Client) GetIssue(ctx context.Context, repo domain.RepoRef, number int) (domain.Issue, error) {
	issue, _, err := c.gh.Issues.Get(ctx, repo.Owner, repo.Name, number)
	if err != nil {
		return domain.Issue{}, fmt.Errorf("get issue %s#%d: %w", repo, number, err)
	}
	return toIssue(issue), nil
}

// CreateIssue opens a new issue.
func (c *Client) CreateIssue(ctx context.Context, repo domain.RepoRef, title, body string) (domain.Issue, error) {
	issue, _, err := c.gh.Issues.Create(ctx, repo.Owner, repo.Name, &github.IssueRequest{
		Title: github.String(title),
		Body:  github.String(body),
	})
	if err != nil {
		return domain.Issue{}, fmt.Errorf("create issue in %s: %w", repo, err)
	}
	return toIssue(issue), nil
}

// ListPullRequests returns pull requests in the given state (open, closed, all).
func (c *Client) ListPullRequests(ctx context.Context, repo domain.RepoRef, state string) ([]domain.PullRequest, error) {
	opts := &github.PullRequestListOptions{
		State:       state,
		ListOptions: github.ListOptions{PerPage: perPage},
	}
	var out []domain.PullRequest
	for {
		prs, resp, err := c.gh.PullRequests.List(ctx, repo.Owner, repo.Name, opts)
		if err != nil {
			return nil, fmt.Errorf("list pull requests for %s: %w", repo, err)
		}
		for _, pr := range prs {
			out = append(out, toPullRequest(pr))
		}
		if resp.NextPage == 0 {
			return out, nil
		}
		opts.Page = resp.NextPage
	}
}

// GetPullRequest fetches one pull request.
func (c *Client) GetPullRequest(ctx context.Context, repo domain.RepoRef, number int) (domain.PullRequest, error) {
	pr, _, err := c.gh.PullRequests.Get(ctx, repo.Owner, repo.Name, number)
	if err != nil {
		return domain.PullRequest{}, fmt.Errorf("get pull request %s#%d: %w", repo, number, err)
	}
	return toPullRequest(pr), nil
}

// ListPullRequestFiles returns every changed file with its patch.
func (c *Client) ListPullRequestFiles(ctx context.Context, repo domain.RepoRef, number int) ([]domain.FileChange, error) {
	opts := &github.ListOptions{PerPage: perPage}
	var out []domain.FileChange
	for {
		files, resp, err := c.gh.PullRequests.ListFiles(ctx, repo.Owner, repo.Name, number, opts)
		if err != nil {
			return nil, fmt.Errorf("list files of %s#%d: %w", repo, number, err)
		}
		for _, f := range files {
			out = append(out, domain.FileChange{
				Filename: f.GetFilename(),
				Patch:    f.GetPatch(),
				Status:   f.GetStatus(),
			})
		}
		if resp.NextPage == 0 {
			return out, nil
		}
		opts.Page = resp.NextPage
	}
}

// CreateReview posts a COMMENT review on a pull request.
func (c *Client) CreateReview(ctx context.Context, repo domain.RepoRef, number int, body string) error {
	_, _, err := c.gh.PullRequests.CreateReview(ctx, repo.Owner, repo.Name, number, &github.PullRequestReviewRequest{
		Body:  github.String(body),
		Event: github.String("COMMENT"),
	})
	if err != nil {
		return fmt.Errorf("create review on %s#%d: %w", repo, number, err)
	}
	return nil
}

// ListContents walks the default branch tree and returns the decoded content
// of every blob whose path keep accepts.
func (c *Client) ListContents(ctx context.Context, repo domain.RepoRef, keep func(path string) bool) ([]domain.ContentFile, error) {
	r, _, err := c.gh.Repositories.Get(ctx, repo.Owner, repo.Name)
	if err != nil {
		return nil, fmt.Errorf("get repository %s: %w", repo, err)
	}
	tree, _, err := c.gh.Git.GetTree(ctx, repo.Owner, repo.Name, r.GetDefaultBranch(), true)
	if err != nil {
		return nil, fmt.Errorf("get tree of %s: %w", repo, err)
	}

	var out []domain.ContentFile
	for _, entry := range tree.Entries {
		if entry.GetType() != "blob" || (keep != nil && !keep(entry.GetPath())) {
			continue
		}
		file, _, _, err := c.gh.Repositories.GetContents(ctx, repo.Owner, repo.Name, entry.GetPath(),
			&github.RepositoryContentGetOptions{Ref: r.GetDefaultBranch()})
		if err != nil {
			return nil, fmt.Errorf("get %s: %w", entry.GetPath(), err)
		}
		if file == nil {
			continue
		}
		content, err := file.GetContent()
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", entry.GetPath(), err)
		}
		out = append(out, domain.ContentFile{Path: entry.GetPath(), Content: content})
	}
	return out, nil
}

func toIssue(issue *github.Issue) domain.Issue {
	return domain.Issue{
		Number:    issue.GetNumber(),
		Title:     issue.GetTitle(),
		Body:      strings.TrimSpace(issue.GetBody()),
		State:     issue.GetState(),
		URL:       issue.GetHTMLURL(),
		CreatedAt: issue.GetCreatedAt().Time,
	}
}

func toPullRequest(pr *github.PullRequest) domain.PullRequest {
	return domain.PullRequest{
		Number: pr.GetNumber(),
		Title:  pr.GetTitle(),
		Body:   pr.GetBody(),
		URL:    pr.GetHTMLURL(),
		State:  pr.GetState(),
	}
}

var _ ports.GitHost = (*Client)(nil)
