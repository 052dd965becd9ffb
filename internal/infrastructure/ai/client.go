package ai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/doeshing/gitbrew/internal/domain"
	"github.com/doeshing/gitbrew/internal/ports"
)

// ErrEmbeddingUnsupported is returned by Embed for models without an
// embeddings endpoint.
var ErrEmbeddingUnsupported = errors.New("model has no embedding endpoint")

const maxErrorBody = 512

// Client talks to one configured model.
type Client struct {
	model       domain.ModelDefinition
	httpClient  *http.Client
	adapter     providerAdapter
	creds       Credentials
	temperature float64
}

// Model returns the definition the client was built from.
func (c *Client) Model() domain.ModelDefinition {
	return c.model
}

// Complete implements ports.Completer.
func (c *Client) Complete(ctx context.Context, messages []domain.ChatMessage) (string, error) {
	body, err := c.adapter.buildRequest(c.model, messages, c.temperature)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	raw, err := c.post(ctx, c.model.Endpoint, body)
	if err != nil {
		return "", err
	}

	content, err := c.adapter.parseResponse(raw)
	if err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}
	return content, nil
}

// Embed implements ports.Embedder.
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	endpoint := c.embeddingEndpoint()
	if endpoint == "" || c.adapter.buildEmbedding == nil {
		return nil, fmt.Errorf("%s: %w", c.model.Name, ErrEmbeddingUnsupported)
	}

	body, err := c.adapter.buildEmbedding(c.embeddingModel(), text)
	if err != nil {
		return nil, fmt.Errorf("build embedding request: %w", err)
	}
	raw, err := c.post(ctx, endpoint, body)
	if err != nil {
		return nil, err
	}
	vec, err := c.adapter.parseEmbedding(raw)
	if err != nil {
		return nil, fmt.Errorf("parse embedding: %w", err)
	}
	if len(vec) == 0 {
		return nil, errors.New("empty embedding in response")
	}
	return vec, nil
}

func (c *Client) embeddingEndpoint() string {
	if c.model.EmbeddingEndpoint != "" {
		return c.model.EmbeddingEndpoint
	}
	if c.model.Kind() == domain.ProviderKindOpenAI {
		return strings.Replace(c.model.Endpoint, "/chat/completions", "/embeddings", 1)
	}
	return ""
}

func (c *Client) embeddingModel() string {
	if c.model.EmbeddingModel != "" {
		return c.model.EmbeddingModel
	}
	return c.model.ModelID
}

func (c *Client) post(ctx context.Context, endpoint string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if err := c.adapter.setHeaders(req, c.model, c.creds); err != nil {
		return nil, err
	}
	for k, v := range c.model.APIFormat.ExtraHeaders {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode >= 400 {
		detail := strings.TrimSpace(string(raw))
		if len(detail) > maxErrorBody {
			detail = detail[:maxErrorBody]
		}
		return nil, fmt.Errorf("%s: HTTP %d: %s", c.model.Name, resp.StatusCode, detail)
	}
	return raw, nil
}

var (
	_ ports.Completer = (*Client)(nil)
	_ ports.Embedder  = (*Client)(nil)
)
