package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// GroqClient вызывает OpenAI-совместимый chat completions API (Groq).
type GroqClient struct {
	apiKey     string
	baseURL    string
	model      string
	maxTokens  int
	httpClient *http.Client
}

type groqChatRequest struct {
	Model          string            `json:"model"`
	Messages       []Message         `json:"messages"`
	Temperature    float64           `json:"temperature,omitempty"`
	MaxTokens      int               `json:"max_tokens,omitempty"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
}

type groqChatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewGroqClient создает клиент Groq.
func NewGroqClient(cfg ClientConfig) *GroqClient {
	return &GroqClient{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		model:      cfg.Model,
		maxTokens:  cfg.MaxTokens,
		httpClient: newHTTPClient(cfg.Timeout),
	}
}

// Chat отправляет сообщения в Groq и возвращает текст ответа.
func (c *GroqClient) Chat(ctx context.Context, messages []Message) (string, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return "", errors.New("groq api key is missing")
	}

	request := groqChatRequest{
		Model:          c.model,
		Messages:       messages,
		Temperature:    0.2,
		MaxTokens:      resolveMaxTokens(c.maxTokens),
		ResponseFormat: map[string]string{"type": "json_object"},
	}

	headers := map[string]string{"Authorization": "Bearer " + c.apiKey}
	body, status, err := postJSON(ctx, c.httpClient, c.baseURL+"/chat/completions", headers, request)
	if err != nil {
		return "", err
	}

	var parsed groqChatResponse
	decodeErr := json.Unmarshal(body, &parsed)

	if !isSuccess(status) {
		message := strings.TrimSpace(string(body))
		if decodeErr == nil && parsed.Error != nil {
			message = parsed.Error.Message
		}
		return "", &APIError{Provider: ProviderGroq, StatusCode: status, Message: message}
	}
	if decodeErr != nil {
		return "", decodeErr
	}

	if len(parsed.Choices) == 0 {
		return "", errors.New("groq response missing choices")
	}

	return parsed.Choices[0].Message.Content, nil
}
