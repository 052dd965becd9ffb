package domain

// Config mirrors ~/.gitbrew/config.yaml.
type Config struct {
	ConfigFormatVersion string            `yaml:"config_format_version"`
	Preferences         Preferences       `yaml:"preferences"`
	Models              []ModelDefinition `yaml:"models"`
	Assistant           AssistantSettings `yaml:"assistant"`
	GitHub              GitHubSettings    `yaml:"github"`
	Issues              IssueSettings     `yaml:"issues"`
	Review              ReviewSettings    `yaml:"review"`
	Readme              ReadmeSettings    `yaml:"readme"`
	History             HistorySettings   `yaml:"history"`
	Logging             LoggingSettings   `yaml:"logging"`
}

// Preferences captures user level toggles.
type Preferences struct {
	DefaultModel string  `yaml:"default_model"`
	Temperature  float64 `yaml:"temperature"`
}

// AssistantSettings controls the command generation pipeline.
type AssistantSettings struct {
	MaxClarificationTurns int    `yaml:"max_clarification_turns"`
	LLMTimeout            string `yaml:"llm_timeout"`
	CommandTimeout        string `yaml:"command_timeout"`
	Shell                 string `yaml:"shell"`
	ToolPrefix            string `yaml:"tool_prefix"`
	WorkingDir            string `yaml:"working_dir,omitempty"`
}

// GitHubSettings configures the git host client.
type GitHubSettings struct {
	TokenEnvVar string `yaml:"token_env_var"`
	DefaultRepo string `yaml:"default_repo,omitempty"`
	APIBaseURL  string `yaml:"api_base_url,omitempty"`
}

// IssueSettings configures duplicate and similar issue detection.
type IssueSettings struct {
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
	TopN                int     `yaml:"top_n"`
	EmbedConcurrency    int     `yaml:"embed_concurrency"`
	IndexPath           string  `yaml:"index_path"`
}

// ReviewSettings configures pull request reviews.
type ReviewSettings struct {
	Model             string   `yaml:"model,omitempty"`
	NonCodeExtensions []string `yaml:"non_code_extensions"`
	Header            string   `yaml:"header"`
}

// ReadmeSettings configures README generation.
type ReadmeSettings struct {
	Model      string   `yaml:"model,omitempty"`
	Extensions []string `yaml:"extensions"`
	MaxFiles   int      `yaml:"max_files"`
}

// HistorySettings configures execution history persistence.
type HistorySettings struct {
	Enabled       bool   `yaml:"enabled"`
	Path          string `yaml:"path"`
	RetentionDays int    `yaml:"retention_days"`
}

// LoggingSettings configures the structured logger.
type LoggingSettings struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}
