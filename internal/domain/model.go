// Package domain defines core business entities and value objects for gitbrew.
//
// This file contains language-model definitions used throughout the application.
// The domain layer is independent of infrastructure concerns and represents pure
// business logic and data structures.
package domain

import "strings"

// ModelDefinition describes a language-model endpoint declared in the config file.
type ModelDefinition struct {
	Name              string    `yaml:"name"`
	Endpoint          string    `yaml:"endpoint"`
	EmbeddingEndpoint string    `yaml:"embedding_endpoint,omitempty"`
	EmbeddingModel    string    `yaml:"embedding_model,omitempty"`
	AuthEnvVar        string    `yaml:"auth_env_var"`
	OrgEnvVar         string    `yaml:"org_env_var,omitempty"`
	ModelID           string    `yaml:"model_id"`
	MaxTokens         int       `yaml:"max_tokens"`
	APIFormat         APIFormat `yaml:"api_format,omitempty"`
}

// ProviderKind identifies the wire format spoken by an endpoint.
type ProviderKind string

const (
	ProviderKindUnknown   ProviderKind = "unknown"
	ProviderKindAnthropic ProviderKind = "anthropic"
	ProviderKindOpenAI    ProviderKind = "openai"
	ProviderKindOllama    ProviderKind = "ollama"
)

// Kind infers the provider from the endpoint, unless APIFormat.Provider pins it.
func (m ModelDefinition) Kind() ProviderKind {
	if m.APIFormat.Provider != "" {
		return ProviderKind(strings.ToLower(m.APIFormat.Provider))
	}
	nameLower := strings.ToLower(m.Name)
	switch {
	case strings.Contains(m.Endpoint, "anthropic.com"):
		return ProviderKindAnthropic
	case strings.Contains(m.Endpoint, "openai.com"):
		return ProviderKindOpenAI
	case strings.Contains(nameLower, "ollama"), strings.Contains(m.Endpoint, "11434"):
		return ProviderKindOllama
	default:
		return ProviderKindUnknown
	}
}

// APIFormat overrides request construction for endpoints that do not match a
// known provider. All fields are optional.
type APIFormat struct {
	// Provider pins the wire format: "anthropic", "openai" or "ollama".
	Provider string `yaml:"provider,omitempty"`

	// ExtraHeaders contains additional HTTP headers to send with each request.
	// Example: {"anthropic-version": "2023-06-01"}
	ExtraHeaders map[string]string `yaml:"extra_headers,omitempty"`
}

// Role is the speaker of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage follows the role/content pair required by most chat APIs.
type ChatMessage struct {
	Role    Role   `json:"role" yaml:"role"`
	Content string `json:"content" yaml:"content"`
}

// UserMessage is shorthand for a single user turn.
func UserMessage(content string) ChatMessage {
	return ChatMessage{Role: RoleUser, Content: content}
}

// SystemMessage is shorthand for a system instruction.
func SystemMessage(content string) ChatMessage {
	return ChatMessage{Role: RoleSystem, Content: content}
}
