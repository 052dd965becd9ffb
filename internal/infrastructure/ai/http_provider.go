package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/doeshing/gitbrew/internal/domain"
)

const anthropicVersion = "2023-06-01"

type providerAdapter struct {
	buildRequest   func(domain.ModelDefinition, []domain.ChatMessage, float64) ([]byte, error)
	parseResponse  func([]byte) (string, error)
	setHeaders     func(*http.Request, domain.ModelDefinition, Credentials) error
	buildEmbedding func(model, text string) ([]byte, error)
	parseEmbedding func([]byte) ([]float64, error)
}

func adapterFor(kind domain.ProviderKind) providerAdapter {
	switch kind {
	case domain.ProviderKindAnthropic:
		return anthropicAdapter()
	case domain.ProviderKindOllama:
		return ollamaAdapter()
	case domain.ProviderKindOpenAI, domain.ProviderKindUnknown:
		return openaiAdapter()
	default:
		return openaiAdapter()
	}
}

func anthropicAdapter() providerAdapter {
	return providerAdapter{
		buildRequest:  buildAnthropicRequest,
		parseResponse: parseAnthropicResponse,
		setHeaders:    setAnthropicHeaders,
	}
}

func openaiAdapter() providerAdapter {
	return providerAdapter{
		buildRequest:   buildChatCompletionRequest,
		parseResponse:  parseChatCompletionResponse,
		setHeaders:     setOpenAIHeaders,
		buildEmbedding: buildOpenAIEmbeddingRequest,
		parseEmbedding: parseOpenAIEmbeddingResponse,
	}
}

func ollamaAdapter() providerAdapter {
	return providerAdapter{
		buildRequest:   buildChatCompletionRequest,
		parseResponse:  parseChatCompletionResponse,
		setHeaders:     setOllamaHeaders,
		buildEmbedding: buildOllamaEmbeddingRequest,
		parseEmbedding: parseOllamaEmbeddingResponse,
	}
}

func buildAnthropicRequest(model domain.ModelDefinition, messages []domain.ChatMessage, temperature float64) ([]byte, error) {
	systemPrompt, chatMessages := splitSystemMessages(messages)

	request := map[string]interface{}{
		"model":      model.ModelID,
		"max_tokens": defaultInt(model.MaxTokens, domain.DefaultMaxTokens),
		"messages":   chatMessages,
	}
	if systemPrompt != "" {
		request["system"] = systemPrompt
	}
	if temperature > 0 {
		request["temperature"] = temperature
	}
	return json.Marshal(request)
}

func splitSystemMessages(messages []domain.ChatMessage) (string, []map[string]interface{}) {
	var systemLines []string
	var chatMessages []map[string]interface{}

	for _, msg := range messages {
		if msg.Role == domain.RoleSystem {
			systemLines = append(systemLines, msg.Content)
			continue
		}
		chatMessages = append(chatMessages, map[string]interface{}{
			"role": string(msg.Role),
			"content": []map[string]string{
				{"type": "text", "text": msg.Content},
			},
		})
	}

	return strings.TrimSpace(strings.Join(systemLines, "\n")), chatMessages
}

func parseAnthropicResponse(body []byte) (string, error) {
	var response struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return "", err
	}

	var parts []string
	for _, block := range response.Content {
		if block.Type == "" || block.Type == "text" {
			parts = append(parts, block.Text)
		}
	}
	if len(parts) == 0 {
		return "", errors.New("no text content in response")
	}
	return strings.TrimSpace(strings.Join(parts, "")), nil
}

func setAnthropicHeaders(req *http.Request, model domain.ModelDefinition, creds Credentials) error {
	if creds.APIKey == "" {
		return fmt.Errorf("missing API key: set %s", defaultString(model.AuthEnvVar, "the model's auth_env_var"))
	}
	req.Header.Set("x-api-key", creds.APIKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	return nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

func buildChatCompletionRequest(model domain.ModelDefinition, messages []domain.ChatMessage, temperature float64) ([]byte, error) {
	request := chatCompletionRequest{
		Model:       model.ModelID,
		Messages:    make([]chatMessage, 0, len(messages)),
		MaxTokens:   model.MaxTokens,
		Temperature: temperature,
	}
	for _, msg := range messages {
		request.Messages = append(request.Messages, chatMessage{Role: string(msg.Role), Content: msg.Content})
	}
	return json.Marshal(request)
}

// parseChatCompletionResponse accepts the OpenAI shape and Ollama's native
// /api/chat shape.
func parseChatCompletionResponse(body []byte) (string, error) {
	var response struct {
		Choices []struct {
			Message chatMessage `json:"message"`
		} `json:"choices"`
		Message *chatMessage `json:"message"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return "", err
	}

	switch {
	case len(response.Choices) > 0:
		return strings.TrimSpace(response.Choices[0].Message.Content), nil
	case response.Message != nil:
		return strings.TrimSpace(response.Message.Content), nil
	default:
		return "", errors.New("no choices in response")
	}
}

func setOpenAIHeaders(req *http.Request, model domain.ModelDefinition, creds Credentials) error {
	if creds.APIKey == "" {
		if model.Kind() == domain.ProviderKindOpenAI {
			return fmt.Errorf("missing API key: set %s", defaultString(model.AuthEnvVar, "the model's auth_env_var"))
		}
		return nil
	}
	req.Header.Set("Authorization", "Bearer "+creds.APIKey)
	if creds.Organization != "" {
		req.Header.Set("OpenAI-Organization", creds.Organization)
	}
	return nil
}

func setOllamaHeaders(req *http.Request, _ domain.ModelDefinition, creds Credentials) error {
	if creds.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+creds.APIKey)
	}
	return nil
}

func buildOpenAIEmbeddingRequest(model, text string) ([]byte, error) {
	return json.Marshal(map[string]interface{}{"model": model, "input": text})
}

func parseOpenAIEmbeddingResponse(body []byte) ([]float64, error) {
	var response struct {
		Data []struct {
			Embedding []float64 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, err
	}
	if len(response.Data) == 0 {
		return nil, nil
	}
	return response.Data[0].Embedding, nil
}

func buildOllamaEmbeddingRequest(model, text string) ([]byte, error) {
	return json.Marshal(map[string]interface{}{"model": model, "prompt": text})
}

func parseOllamaEmbeddingResponse(body []byte) ([]float64, error) {
	var response struct {
		Embedding []float64 `json:"embedding"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, err
	}
	return response.Embedding, nil
}

func defaultString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func defaultInt(value, fallback int) int {
	if value == 0 {
		return fallback
	}
	return value
}
