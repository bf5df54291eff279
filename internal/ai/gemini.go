package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// GeminiClient вызывает Google Generative Language API.
type GeminiClient struct {
	apiKey     string
	baseURL    string
	model      string
	maxTokens  int
	httpClient *http.Client
}

type geminiRequest struct {
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
	GenerationConfig  *geminiConfig   `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiConfig struct {
	Temperature      float64 `json:"temperature,omitempty"`
	MaxOutputTokens  int     `json:"maxOutputTokens,omitempty"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewGeminiClient создает клиент Gemini.
func NewGeminiClient(cfg ClientConfig) *GeminiClient {
	return &GeminiClient{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		model:      cfg.Model,
		maxTokens:  cfg.MaxTokens,
		httpClient: newHTTPClient(cfg.Timeout),
	}
}

// Chat отправляет сообщения в Gemini и возвращает текст ответа.
func (c *GeminiClient) Chat(ctx context.Context, messages []Message) (string, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return "", errors.New("gemini api key is missing")
	}

	request, err := buildGeminiRequest(messages, resolveMaxTokens(c.maxTokens))
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, url.PathEscape(c.model))
	body, status, err := postJSON(ctx, c.httpClient, endpoint, map[string]string{"x-goog-api-key": c.apiKey}, request)
	if err != nil {
		return "", err
	}

	var parsed geminiResponse
	decodeErr := json.Unmarshal(body, &parsed)

	if !isSuccess(status) {
		message := strings.TrimSpace(string(body))
		if decodeErr == nil && parsed.Error != nil {
			message = parsed.Error.Message
		}
		return "", &APIError{Provider: ProviderGemini, StatusCode: status, Message: message}
	}
	if decodeErr != nil {
		return "", decodeErr
	}

	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("gemini response missing content")
	}

	var builder strings.Builder
	for _, part := range parsed.Candidates[0].Content.Parts {
		builder.WriteString(part.Text)
	}

	return builder.String(), nil
}

// buildGeminiRequest раскладывает диалог на системную инструкцию и реплики user/model.
func buildGeminiRequest(messages []Message, maxTokens int) (geminiRequest, error) {
	var systemParts []geminiPart
	contents := make([]geminiContent, 0, len(messages))

	for _, message := range messages {
		text := strings.TrimSpace(message.Content)
		if text == "" {
			continue
		}

		switch strings.ToLower(strings.TrimSpace(message.Role)) {
		case "system":
			systemParts = append(systemParts, geminiPart{Text: text})
		case "assistant", "model":
			contents = append(contents, geminiContent{Role: "model", Parts: []geminiPart{{Text: text}}})
		default:
			contents = append(contents, geminiContent{Role: "user", Parts: []geminiPart{{Text: text}}})
		}
	}

	if len(contents) == 0 {
		return geminiRequest{}, errors.New("gemini request has no user content")
	}

	request := geminiRequest{
		Contents: contents,
		GenerationConfig: &geminiConfig{
			Temperature:      0.2,
			MaxOutputTokens:  maxTokens,
			ResponseMimeType: "application/json",
		},
	}
	if len(systemParts) > 0 {
		request.SystemInstruction = &geminiContent{Parts: systemParts}
	}

	return request, nil
}
