// Package ai adapts HTTP language-model endpoints to the Completer and
// Embedder ports.
//
// The wire format is picked per model: Anthropic messages, OpenAI chat
// completions, or Ollama (OpenAI-compatible chat plus its own embeddings
// endpoint). Endpoints that match none of these are spoken to as
// OpenAI-compatible.
package ai

import (
	"net/http"
	"time"

	"github.com/doeshing/gitbrew/internal/domain"
	"github.com/doeshing/gitbrew/internal/ports"
)

// Credentials are the secrets for one model, resolved once at startup.
type Credentials struct {
	APIKey       string
	Organization string
}

// CredentialsFromEnv resolves the auth env vars named by each model.
func CredentialsFromEnv(models []domain.ModelDefinition, getenv func(string) string) map[string]Credentials {
	creds := make(map[string]Credentials, len(models))
	for _, model := range models {
		var c Credentials
		if model.AuthEnvVar != "" {
			c.APIKey = getenv(model.AuthEnvVar)
		}
		if model.OrgEnvVar != "" {
			c.Organization = getenv(model.OrgEnvVar)
		}
		creds[model.Name] = c
	}
	return creds
}

// Options configures the factory.
type Options struct {
	Timeout     time.Duration
	Temperature float64
	Credentials map[string]Credentials
	// HTTPClient overrides the default client; Timeout is ignored when set.
	HTTPClient *http.Client
}

// Factory creates clients based on model definitions. It keeps a single HTTP
// client shared across all of them.
type Factory struct {
	httpClient  *http.Client
	temperature float64
	credentials map[string]Credentials
}

// NewFactory creates a new client factory.
func NewFactory(opts Options) *Factory {
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = domain.DefaultLLMTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Factory{
		httpClient:  client,
		temperature: opts.Temperature,
		credentials: opts.Credentials,
	}
}

// Client builds the concrete client for model.
func (f *Factory) Client(model domain.ModelDefinition) *Client {
	return &Client{
		model:       model,
		httpClient:  f.httpClient,
		adapter:     adapterFor(model.Kind()),
		creds:       f.credentials[model.Name],
		temperature: f.temperature,
	}
}

// ForModel implements ports.CompleterFactory.
func (f *Factory) ForModel(model domain.ModelDefinition) (ports.Completer, error) {
	return f.Client(model), nil
}

var _ ports.CompleterFactory = (*Factory)(nil)
