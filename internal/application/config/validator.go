package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/doeshing/gitbrew/internal/domain"
)

// Validate ensures config structure is consistent.
func Validate(cfg domain.Config) error {
	if len(cfg.Models) == 0 {
		return errors.New("at least one model must be configured")
	}
	if err := validateModels(cfg.Models); err != nil {
		return err
	}
	if err := cfg.ValidateConsistency(); err != nil {
		return err
	}
	if err := validateAssistant(cfg.Assistant); err != nil {
		return err
	}
	if err := validateIssues(cfg.Issues); err != nil {
		return err
	}
	if err := validateHistory(cfg.History); err != nil {
		return err
	}
	return validateLogging(cfg.Logging)
}

func validateModels(models []domain.ModelDefinition) error {
	seen := map[string]bool{}
	for _, model := range models {
		if model.Name == "" {
			return errors.New("models: every model needs a name")
		}
		if seen[model.Name] {
			return fmt.Errorf("models: duplicate model name %s", model.Name)
		}
		seen[model.Name] = true
		if model.Endpoint == "" {
			return fmt.Errorf("models.%s: endpoint must be set", model.Name)
		}
		if model.MaxTokens < 0 {
			return fmt.Errorf("models.%s: max_tokens must be >= 0", model.Name)
		}
	}
	return nil
}

func validateAssistant(a domain.AssistantSettings) error {
	if a.MaxClarificationTurns < 0 {
		return fmt.Errorf("assistant.max_clarification_turns must be >= 0")
	}
	for name, raw := range map[string]string{
		"assistant.llm_timeout":     a.LLMTimeout,
		"assistant.command_timeout": a.CommandTimeout,
	} {
		if raw == "" {
			continue
		}
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("%s invalid: %w", name, err)
		}
		if d < 0 {
			return fmt.Errorf("%s must not be negative", name)
		}
	}
	if strings.ContainsAny(a.ToolPrefix, " \t") {
		return fmt.Errorf("assistant.tool_prefix must be a single token, got %q", a.ToolPrefix)
	}
	return nil
}

func validateIssues(is domain.IssueSettings) error {
	if is.SimilarityThreshold < 0 || is.SimilarityThreshold > 1 {
		return fmt.Errorf("issues.similarity_threshold must be within [0, 1], got %v", is.SimilarityThreshold)
	}
	if is.TopN < 0 || is.EmbedConcurrency < 0 {
		return fmt.Errorf("issues.top_n and issues.embed_concurrency must be >= 0")
	}
	return nil
}

func validateHistory(h domain.HistorySettings) error {
	if h.RetentionDays < 0 {
		return fmt.Errorf("history.retention_days must be >= 0")
	}
	if h.Enabled && h.Path == "" {
		return fmt.Errorf("history.path must be set when history is enabled")
	}
	return nil
}

func validateLogging(l domain.LoggingSettings) error {
	switch strings.ToLower(l.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug|info|warn|error, got %s", l.Level)
	}
	switch strings.ToLower(l.Format) {
	case "", "json", "console":
	default:
		return fmt.Errorf("logging.format must be json|console, got %s", l.Format)
	}
	return nil
}
