package domain

import (
	"fmt"
	"time"
)

// GetDefaultModel retrieves the default model definition from configuration
// Returns an error if the default model is not found
func (c *Config) GetDefaultModel() (ModelDefinition, error) {
	if c.Preferences.DefaultModel == "" {
		if len(c.Models) > 0 {
			return c.Models[0], nil
		}
		return ModelDefinition{}, fmt.Errorf("no default model configured")
	}

	for _, model := range c.Models {
		if model.Name == c.Preferences.DefaultModel {
			return model, nil
		}
	}

	return ModelDefinition{}, fmt.Errorf("default model %s not found in configuration", c.Preferences.DefaultModel)
}

// ModelOrDefault returns the named model, or the default model when name is empty.
func (c *Config) ModelOrDefault(name string) (ModelDefinition, error) {
	if name == "" {
		return c.GetDefaultModel()
	}
	if model, ok := c.FindModelByName(name); ok {
		return model, nil
	}
	return ModelDefinition{}, fmt.Errorf("model %s not configured", name)
}

// FindModelByName searches for a model by its name
// Returns the model definition and true if found, empty model and false otherwise
func (c *Config) FindModelByName(name string) (ModelDefinition, bool) {
	for _, model := range c.Models {
		if model.Name == name {
			return model, true
		}
	}
	return ModelDefinition{}, false
}

// HasModel checks if a model with the given name exists in the configuration
func (c *Config) HasModel(name string) bool {
	_, exists := c.FindModelByName(name)
	return exists
}

// SetDefaultModel changes the default model to the specified name
// Returns an error if the model doesn't exist
func (c *Config) SetDefaultModel(name string) error {
	if !c.HasModel(name) {
		return fmt.Errorf("cannot set default model: model %s does not exist", name)
	}

	c.Preferences.DefaultModel = name
	return nil
}

// GetMaxClarificationTurns returns how many clarification round trips a single
// intent may take before giving up.
func (c *Config) GetMaxClarificationTurns() int {
	if c.Assistant.MaxClarificationTurns <= 0 {
		return DefaultMaxClarificationTurns
	}
	return c.Assistant.MaxClarificationTurns
}

// GetLLMTimeout returns the per-request timeout for model calls.
func (c *Config) GetLLMTimeout() time.Duration {
	return parseDurationOr(c.Assistant.LLMTimeout, DefaultLLMTimeout)
}

// GetCommandTimeout returns the per-command shell timeout. Zero means no timeout.
func (c *Config) GetCommandTimeout() time.Duration {
	return parseDurationOr(c.Assistant.CommandTimeout, 0)
}

// GetExecutionShell returns the configured shell for command execution
// Returns the default shell if not configured
func (c *Config) GetExecutionShell() string {
	if c.Assistant.Shell == "" {
		return DefaultShell
	}
	return c.Assistant.Shell
}

// GetToolPrefix returns the token every executable command must start with.
func (c *Config) GetToolPrefix() string {
	if c.Assistant.ToolPrefix == "" {
		return DefaultToolPrefix
	}
	return c.Assistant.ToolPrefix
}

// GetSimilarityThreshold returns the cosine similarity above which two issues
// are considered duplicates.
func (c *Config) GetSimilarityThreshold() float64 {
	if c.Issues.SimilarityThreshold <= 0 || c.Issues.SimilarityThreshold > 1 {
		return DefaultSimilarityThreshold
	}
	return c.Issues.SimilarityThreshold
}

// GetSimilarTopN returns how many similar issues to show.
func (c *Config) GetSimilarTopN() int {
	if c.Issues.TopN <= 0 {
		return DefaultSimilarTopN
	}
	return c.Issues.TopN
}

// GetEmbedConcurrency returns the maximum number of concurrent embedding requests.
func (c *Config) GetEmbedConcurrency() int {
	if c.Issues.EmbedConcurrency <= 0 {
		return DefaultEmbedConcurrency
	}
	return c.Issues.EmbedConcurrency
}

// GetNonCodeExtensions returns the file suffixes skipped by pull request reviews.
func (c *Config) GetNonCodeExtensions() []string {
	if len(c.Review.NonCodeExtensions) == 0 {
		return append([]string(nil), DefaultNonCodeExtensions...)
	}
	return c.Review.NonCodeExtensions
}

// GetReviewHeader returns the prefix added to posted reviews.
func (c *Config) GetReviewHeader() string {
	if c.Review.Header == "" {
		return DefaultReviewHeader
	}
	return c.Review.Header
}

// GetReadmeExtensions returns the file suffixes summarized for README generation.
func (c *Config) GetReadmeExtensions() []string {
	if len(c.Readme.Extensions) == 0 {
		return append([]string(nil), DefaultReadmeExtensions...)
	}
	return c.Readme.Extensions
}

// GetReadmeMaxFiles caps how many files are summarized.
func (c *Config) GetReadmeMaxFiles() int {
	if c.Readme.MaxFiles <= 0 {
		return DefaultReadmeMaxFiles
	}
	return c.Readme.MaxFiles
}

// GetHistoryRetentionDays returns the number of days to retain history
func (c *Config) GetHistoryRetentionDays() int {
	if c.History.RetentionDays <= 0 {
		return DefaultHistoryRetainDays
	}
	return c.History.RetentionDays
}

// GetGitHubTokenEnvVar returns the environment variable holding the GitHub token.
func (c *Config) GetGitHubTokenEnvVar() string {
	if c.GitHub.TokenEnvVar == "" {
		return DefaultGitHubTokenEnvVar
	}
	return c.GitHub.TokenEnvVar
}

// ValidateConsistency checks the internal consistency of the configuration
// Returns an error if there are inconsistencies (e.g., default model doesn't exist)
func (c *Config) ValidateConsistency() error {
	if c.Preferences.DefaultModel != "" && !c.HasModel(c.Preferences.DefaultModel) {
		return fmt.Errorf("default model %s does not exist in models list", c.Preferences.DefaultModel)
	}
	if c.Review.Model != "" && !c.HasModel(c.Review.Model) {
		return fmt.Errorf("review model %s does not exist in models list", c.Review.Model)
	}
	if c.Readme.Model != "" && !c.HasModel(c.Readme.Model) {
		return fmt.Errorf("readme model %s does not exist in models list", c.Readme.Model)
	}
	return nil
}

func parseDurationOr(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		return fallback
	}
	return d
}
