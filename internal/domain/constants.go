package domain

import "time"

// File permissions constants
const (
	// DirectoryPermissions is the default permission for directories (rwxr-xr-x)
	DirectoryPermissions = 0o755
	// SecureFilePermissions is the permission for sensitive files (rw-------)
	SecureFilePermissions = 0o600
)

// Assistant defaults
const (
	// DefaultMaxClarificationTurns bounds the clarification dialogue for one intent
	DefaultMaxClarificationTurns = 5
	// DefaultLLMTimeout is the default timeout for a single model request
	DefaultLLMTimeout = 60 * time.Second
	// DefaultShell is the shell used to run generated commands
	DefaultShell = "/bin/sh"
	// DefaultToolPrefix is the first token every executable command must carry
	DefaultToolPrefix = "git"
)

// Git host defaults
const (
	DefaultGitHubTokenEnvVar = "GITHUB_TOKEN"
	DefaultReviewHeader      = "# [GITBREW]: This is an auto-generated review. \n\n"
)

// Issue similarity defaults
const (
	DefaultSimilarityThreshold = 0.8
	DefaultSimilarTopN         = 10
	DefaultEmbedConcurrency    = 4
	// IssueTextTemplate is how an issue is flattened before embedding
	IssueTextTemplate = "Title: %s\n Body: %s"
)

// History constants
const (
	// DefaultHistoryLimit is the default number of history records to display
	DefaultHistoryLimit = 20
	// DefaultHistorySearchLimit is the default number of search results to return
	DefaultHistorySearchLimit = 50
	// DefaultHistoryRetainDays is the default number of days to retain history
	DefaultHistoryRetainDays = 30
)

// README generation defaults
const (
	DefaultReadmeMaxFiles = 40
)

// Model configuration constants
const (
	// DefaultMaxTokens is the default maximum number of tokens
	DefaultMaxTokens = 1024
	// DefaultTemperature matches the low-variance sampling used for command generation
	DefaultTemperature = 0.2
)

// Time formats
const (
	// TimestampFormat is the standard timestamp format
	TimestampFormat = time.RFC3339
)

// DefaultNonCodeExtensions are skipped when reviewing pull requests.
var DefaultNonCodeExtensions = []string{".txt", ".md", ".html", ".toml", ".lock", ".json", ".yml", ".yaml"}

// DefaultReadmeExtensions are the files worth summarizing for a README.
var DefaultReadmeExtensions = []string{
	// code
	".py", ".js", ".ts", ".html", ".css", ".scss", ".sql", ".java", ".kt", ".go",
	".rb", ".php", ".c", ".cpp", ".h", ".hpp", ".cs", ".swift", ".rs", ".sh",
	// config
	".yml", ".yaml", ".ini",
	// requirements
	"requirements.txt", "Pipfile", "package.json", "Gemfile", ".toml", "go.mod",
	// docs
	".md", ".txt", ".rst", ".adoc",
}
