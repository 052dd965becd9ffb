// Package ports defines the interfaces (ports) for the hexagonal architecture.
//
// This package establishes the contract between the application core and external
// adapters (infrastructure). Following the Ports and Adapters (Hexagonal) pattern,
// these interfaces allow the command pipeline to remain independent of the
// language-model backend, the git host, the shell and the terminal.
//
// Key architectural concepts:
//   - Ports: Interfaces defined here (e.g., Completer, Prompter)
//   - Adapters: Concrete implementations in the infrastructure layer
//   - Dependency inversion: Application depends on abstractions, not implementations
package ports

import (
	"context"

	"github.com/doeshing/gitbrew/internal/domain"
)

// ConfigProvider loads the latest configuration from persistent storage.
// Implementations typically read from ~/.gitbrew/config.yaml.
type ConfigProvider interface {
	Load(context.Context) (domain.Config, error)
}

// Completer is the language-model backend: messages in, text out.
type Completer interface {
	Complete(ctx context.Context, messages []domain.ChatMessage) (string, error)
}

// Embedder turns text into a vector for similarity search.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// CompleterFactory builds a completer for a configured model.
type CompleterFactory interface {
	ForModel(domain.ModelDefinition) (Completer, error)
}

// Prompter handles interactive user input. Every method blocks on the console.
type Prompter interface {
	// Ask shows a question and returns the trimmed free-text answer.
	Ask(ctx context.Context, question string) (string, error)
	// Choose shows a list of options and returns the selected one.
	Choose(ctx context.Context, question string, options []string) (string, error)
	// Confirm asks a yes/no question.
	Confirm(ctx context.Context, question string) (bool, error)
}

// CommandExecutor runs shell commands in the configured shell environment.
type CommandExecutor interface {
	Execute(ctx context.Context, command string) (domain.ShellResult, error)
}

// RunObserver receives progress from the execution engine so the caller can
// show output as each command finishes.
type RunObserver interface {
	CommandSkipped(command string)
	Explanation(command, explanation string)
	CommandFinished(result domain.ExecutionResult)
}

// Explainer produces a plain-language explanation of a command.
type Explainer interface {
	Explain(ctx context.Context, command string) (string, error)
}

// GitHost is the source-control host API.
type GitHost interface {
	ListIssues(ctx context.Context, repo domain.RepoRef, state domain.IssueState) ([]domain.Issue, error)
	GetIssue(ctx context.Context, repo domain.RepoRef, number int) (domain.Issue, error)
	CreateIssue(ctx context.Context, repo domain.RepoRef, title, body string) (domain.Issue, error)
	ListPullRequests(ctx context.Context, repo domain.RepoRef, state string) ([]domain.PullRequest, error)
	GetPullRequest(ctx context.Context, repo domain.RepoRef, number int) (domain.PullRequest, error)
	ListPullRequestFiles(ctx context.Context, repo domain.RepoRef, number int) ([]domain.FileChange, error)
	CreateReview(ctx context.Context, repo domain.RepoRef, number int, body string) error
	ListContents(ctx context.Context, repo domain.RepoRef, keep func(path string) bool) ([]domain.ContentFile, error)
}

// SimilarityIndex stores vectors per namespace and answers nearest-neighbour queries.
type SimilarityIndex interface {
	Upsert(ctx context.Context, namespace string, vectors []domain.Vector) error
	Query(ctx context.Context, namespace string, vector []float64, topK int) ([]domain.Match, error)
	Fetch(ctx context.Context, namespace, id string) (domain.Vector, bool, error)
}

// HistoryRepository persists executed commands.
type HistoryRepository interface {
	Save(ctx context.Context, record domain.HistoryRecord) error
	Records(ctx context.Context, limit int, search string) ([]domain.HistoryRecord, error)
	Prune(ctx context.Context, olderThanDays int) (int64, error)
	Clear(ctx context.Context) error
}

// Logger provides structured logging abstraction for the application layer.
// Implementations can route to different backends (stdout, files, external services).
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
