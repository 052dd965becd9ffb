package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/doeshing/gitbrew/internal/application/command"
	"github.com/doeshing/gitbrew/internal/application/issues"
	"github.com/doeshing/gitbrew/internal/application/review"
	"github.com/doeshing/gitbrew/internal/domain"
)

func TestRendererObservesRun(t *testing.T) {
	var out bytes.Buffer
	r := NewRenderer(&out, false)

	r.CommandSkipped("Here is what I will do:")
	r.CommandFinished(domain.ExecutionResult{Command: "git status", State: domain.StateExecuted, Stdout: "On branch main\n"})
	r.CommandFinished(domain.ExecutionResult{Command: "git push", State: domain.StateFailed, ExitCode: 128, Stderr: "rejected\n"})

	got := out.String()
	assert.Contains(t, got, "# Here is what I will do:")
	assert.Contains(t, got, "$ git status\nOn branch main\n")
	assert.Contains(t, got, "rejected")
	assert.Contains(t, got, "exit code 128")
}

func TestRendererReport(t *testing.T) {
	tests := []struct {
		name   string
		report domain.RunReport
		want   string
	}{
		{
			name:   "completed",
			report: domain.RunReport{Status: domain.RunCompleted, Results: []domain.ExecutionResult{{State: domain.StateExecuted}}},
			want:   "Done: 1 command(s) ran.",
		},
		{
			name:   "declined",
			report: domain.RunReport{Status: domain.RunHaltedOnDecline},
			want:   "command declined",
		},
		{
			name: "failed",
			report: domain.RunReport{Status: domain.RunHaltedOnFailure, Failure: &domain.ExecutionFailure{
				Command: "git pull", ExitCode: 1, Stderr: "conflict",
			}},
			want: `command "git pull" failed with exit code 1: conflict`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			NewRenderer(&out, false).Report(tt.report)
			assert.Contains(t, out.String(), tt.want)
		})
	}
}

func TestRendererTables(t *testing.T) {
	var out bytes.Buffer
	r := NewRenderer(&out, false)

	r.IssueResult(issues.Result{Action: issues.ActionList, Issues: []domain.Issue{{Number: 7, State: "open", Title: "Login fails"}}})
	r.IssueResult(issues.Result{Action: issues.ActionFindDuplicates, Duplicates: []issues.DuplicateGroup{{
		Issue:      domain.Issue{Number: 7, Title: "Login fails"},
		Duplicates: []issues.ScoredIssue{{Issue: domain.Issue{Number: 3, Title: "Cannot log in"}, Score: 0.91}},
	}}})
	r.Policy("git", command.Policy())
	r.History([]domain.HistoryRecord{{Command: "git log", State: domain.StateExecuted, Intent: "show history"}})

	got := out.String()
	for _, want := range []string{"#7", "Login fails", "#3 Cannot log in", "0.910", "git status", "read_only", "git log", "show history"} {
		assert.Contains(t, got, want)
	}
}

func TestRendererEmptyResults(t *testing.T) {
	var out bytes.Buffer
	r := NewRenderer(&out, false)

	r.IssueResult(issues.Result{Action: issues.ActionFindSimilar})
	r.ReviewResult(review.Result{Action: review.ActionList})
	r.History(nil)
	r.Error(errors.New("boom"))

	got := out.String()
	assert.Contains(t, got, "No similar issues.")
	assert.Contains(t, got, "No pull requests.")
	assert.Contains(t, got, "No history recorded yet.")
	assert.Contains(t, got, "error: boom")
}

func TestRendererHealthAndMarkdown(t *testing.T) {
	var out bytes.Buffer
	r := NewRenderer(&out, false)

	r.Health(domain.HealthReport{Checks: []domain.HealthCheck{
		{Name: "Tool", Status: domain.HealthOK, Details: "/usr/bin/git"},
		{Name: "GitHub token", Status: domain.HealthWarn, Details: "GITHUB_TOKEN missing"},
	}})
	r.Markdown("# cat\n\nA tool.\n")

	got := out.String()
	assert.Contains(t, got, "[OK] Tool - /usr/bin/git")
	assert.Contains(t, got, "[WARN] GitHub token - GITHUB_TOKEN missing")
	assert.Contains(t, got, "# cat\n\nA tool.\n")
}
