package config

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/doeshing/gitbrew/internal/domain"
)

func validConfig() domain.Config {
	return domain.Config{
		Preferences: domain.Preferences{DefaultModel: "m"},
		Models:      []domain.ModelDefinition{{Name: "m", Endpoint: "http://localhost:11434/v1/chat/completions"}},
		Assistant:   domain.AssistantSettings{LLMTimeout: "30s", CommandTimeout: "0"},
		History:     domain.HistorySettings{Enabled: true, Path: "/tmp/h.db"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*domain.Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*domain.Config) {}},
		{name: "no models", mutate: func(c *domain.Config) { c.Models = nil }, wantErr: "at least one model"},
		{name: "duplicate model", mutate: func(c *domain.Config) { c.Models = append(c.Models, c.Models[0]) }, wantErr: "duplicate"},
		{name: "unknown default", mutate: func(c *domain.Config) { c.Preferences.DefaultModel = "x" }, wantErr: "does not exist"},
		{name: "bad timeout", mutate: func(c *domain.Config) { c.Assistant.LLMTimeout = "soon" }, wantErr: "llm_timeout"},
		{name: "negative turns", mutate: func(c *domain.Config) { c.Assistant.MaxClarificationTurns = -1 }, wantErr: "max_clarification_turns"},
		{name: "threshold out of range", mutate: func(c *domain.Config) { c.Issues.SimilarityThreshold = 1.5 }, wantErr: "similarity_threshold"},
		{name: "history without path", mutate: func(c *domain.Config) { c.History.Path = "" }, wantErr: "history.path"},
		{name: "bad log level", mutate: func(c *domain.Config) { c.Logging.Level = "loud" }, wantErr: "logging.level"},
		{name: "multi token prefix", mutate: func(c *domain.Config) { c.Assistant.ToolPrefix = "git -C" }, wantErr: "tool_prefix"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := Validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			if assert.Error(t, err) {
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
