package readme

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/gitbrew/internal/application/prompts"
	"github.com/doeshing/gitbrew/internal/domain"
	"github.com/doeshing/gitbrew/internal/pkg/logger"
)

type contentsHost struct {
	files []domain.ContentFile
	kept  []string
}

func (h *contentsHost) ListIssues(context.Context, domain.RepoRef, domain.IssueState) ([]domain.Issue, error) {
	return nil, nil
}

func (h *contentsHost) GetIssue(context.Context, domain.RepoRef, int) (domain.Issue, error) {
	return domain.Issue{}, nil
}

func (h *contentsHost) CreateIssue(context.Context, domain.RepoRef, string, string) (domain.Issue, error) {
	return domain.Issue{}, nil
}

func (h *contentsHost) ListPullRequests(context.Context, domain.RepoRef, string) ([]domain.PullRequest, error) {
	return nil, nil
}

func (h *contentsHost) GetPullRequest(context.Context, domain.RepoRef, int) (domain.PullRequest, error) {
	return domain.PullRequest{}, nil
}

func (h *contentsHost) ListPullRequestFiles(context.Context, domain.RepoRef, int) ([]domain.FileChange, error) {
	return nil, nil
}

func (h *contentsHost) CreateReview(context.Context, domain.RepoRef, int, string) error { return nil }

func (h *contentsHost) ListContents(_ context.Context, _ domain.RepoRef, keep func(string) bool) ([]domain.ContentFile, error) {
	var out []domain.ContentFile
	for _, f := range h.files {
		if keep(f.Path) {
			h.kept = append(h.kept, f.Path)
			out = append(out, f)
		}
	}
	return out, nil
}

type recordingCompleter struct {
	prompts []string
}

func (c *recordingCompleter) Complete(_ context.Context, messages []domain.ChatMessage) (string, error) {
	last := messages[len(messages)-1].Content
	c.prompts = append(c.prompts, last)
	if strings.Contains(last, "write a readme") {
		return "# cat\n\nA tool.", nil
	}
	return "summary", nil
}

func TestGenerateSummarizesThenWrites(t *testing.T) {
	host := &contentsHost{files: []domain.ContentFile{
		{Path: "main.go", Content: "package main"},
		{Path: "logo.png", Content: "\x89PNG"},
		{Path: "go.mod", Content: "module x"},
		{Path: "docs/guide.md", Content: "# guide"},
	}}
	completer := &recordingCompleter{}
	var progress []string
	svc := &Service{
		Host:      host,
		Completer: completer,
		Prompts:   prompts.MustLoad(),
		Logger:    logger.Nop(),
		Progress:  func(_, _ int, path string) { progress = append(progress, path) },
	}

	out, err := svc.Generate(context.Background(), domain.RepoRef{Owner: "octo", Name: "cat"})
	require.NoError(t, err)

	assert.Equal(t, "# cat\n\nA tool.\n", out)
	assert.Equal(t, []string{"docs/guide.md", "go.mod", "main.go"}, progress)
	require.Len(t, completer.prompts, 4)
	assert.Contains(t, completer.prompts[3], "## main.go\nsummary")
	assert.NotContains(t, host.kept, "logo.png")
}

func TestGenerateCapsFileCount(t *testing.T) {
	host := &contentsHost{files: []domain.ContentFile{
		{Path: "a.go"}, {Path: "b.go"}, {Path: "c.go"},
	}}
	completer := &recordingCompleter{}
	svc := &Service{Host: host, Completer: completer, Prompts: prompts.MustLoad(), Logger: logger.Nop(), MaxFiles: 2}

	_, err := svc.Generate(context.Background(), domain.RepoRef{Owner: "o", Name: "r"})
	require.NoError(t, err)
	assert.Len(t, completer.prompts, 3)
}

func TestGenerateWithoutFiles(t *testing.T) {
	svc := &Service{Host: &contentsHost{}, Completer: &recordingCompleter{}, Prompts: prompts.MustLoad(), Logger: logger.Nop()}
	_, err := svc.Generate(context.Background(), domain.RepoRef{Owner: "o", Name: "r"})
	assert.Error(t, err)
}

func TestWriteFileRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "README.md")
	require.NoError(t, WriteFile(path, "one", false))
	assert.Error(t, WriteFile(path, "two", false))
	require.NoError(t, WriteFile(path, "three", true))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "three", string(raw))
}
