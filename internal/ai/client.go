package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultMaxTokens = 256

	ProviderGemini = "gemini"
	ProviderGroq   = "groq"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client отправляет диалог провайдеру и возвращает текст ответа модели.
type Client interface {
	Chat(ctx context.Context, messages []Message) (string, error)
}

// ClientConfig описывает подключение к провайдеру.
type ClientConfig struct {
	Provider  string
	APIKey    string
	BaseURL   string
	Model     string
	Timeout   time.Duration
	MaxTokens int
}

// NewClient создает клиент выбранного провайдера.
func NewClient(cfg ClientConfig) (Client, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case ProviderGemini:
		return NewGeminiClient(cfg), nil
	case ProviderGroq:
		return NewGroqClient(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported ai provider: %q", cfg.Provider)
	}
}

// APIError описывает ответ провайдера с не-2xx статусом.
type APIError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s api error (%d): %s", e.Provider, e.StatusCode, e.Message)
}

func resolveMaxTokens(value int) int {
	if value > 0 {
		return value
	}

	return defaultMaxTokens
}

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// postJSON отправляет payload и возвращает тело ответа и код статуса.
func postJSON(ctx context.Context, httpClient *http.Client, endpoint string, headers map[string]string, payload interface{}) ([]byte, int, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, 0, err
	}
	request.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		request.Header.Set(key, value)
	}

	response, err := httpClient.Do(request)
	if err != nil {
		return nil, 0, err
	}
	defer response.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(response.Body, 1<<20))
	if err != nil {
		return nil, response.StatusCode, err
	}

	return raw, response.StatusCode, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
