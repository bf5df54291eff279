package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientSelectsProvider(t *testing.T) {
	client, err := NewClient(ClientConfig{Provider: "Gemini"})
	require.NoError(t, err)
	assert.IsType(t, &GeminiClient{}, client)

	client, err = NewClient(ClientConfig{Provider: "groq"})
	require.NoError(t, err)
	assert.IsType(t, &GroqClient{}, client)

	_, err = NewClient(ClientConfig{Provider: "other"})
	assert.Error(t, err)
}

func TestGroqClientChat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))

		var request groqChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&request))
		assert.Equal(t, "model-x", request.Model)
		assert.Len(t, request.Messages, 2)

		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"categories\":[\"Dining\"]}"}}]}`))
	}))
	defer server.Close()

	client := NewGroqClient(ClientConfig{APIKey: "key", BaseURL: server.URL + "/", Model: "model-x", Timeout: time.Second})
	content, err := client.Chat(context.Background(), []Message{
		{Role: "system", Content: "sys"},
		{Role: "user", Content: "hi"},
	})

	require.NoError(t, err)
	assert.Equal(t, `{"categories":["Dining"]}`, content)
}

func TestGroqClientAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"slow down"}}`))
	}))
	defer server.Close()

	client := NewGroqClient(ClientConfig{APIKey: "key", BaseURL: server.URL, Model: "m", Timeout: time.Second})
	_, err := client.Chat(context.Background(), []Message{{Role: "user", Content: "hi"}})

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.Equal(t, "slow down", apiErr.Message)
}

func TestGeminiClientChat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-test:generateContent", r.URL.Path)
		assert.Equal(t, "key", r.Header.Get("x-goog-api-key"))

		var request geminiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&request))
		require.NotNil(t, request.SystemInstruction)
		assert.Equal(t, "sys", request.SystemInstruction.Parts[0].Text)
		require.Len(t, request.Contents, 1)
		assert.Equal(t, "user", request.Contents[0].Role)

		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"{\"categories\":"},{"text":"[\"Bills\"]}"}]}}]}`))
	}))
	defer server.Close()

	client := NewGeminiClient(ClientConfig{APIKey: "key", BaseURL: server.URL, Model: "gemini-test", Timeout: time.Second})
	content, err := client.Chat(context.Background(), []Message{
		{Role: "system", Content: "sys"},
		{Role: "user", Content: "hi"},
	})

	require.NoError(t, err)
	assert.Equal(t, `{"categories":["Bills"]}`, content)
}

func TestClientsRequireAPIKey(t *testing.T) {
	_, err := NewGeminiClient(ClientConfig{}).Chat(context.Background(), []Message{{Role: "user", Content: "hi"}})
	assert.Error(t, err)

	_, err = NewGroqClient(ClientConfig{}).Chat(context.Background(), []Message{{Role: "user", Content: "hi"}})
	assert.Error(t, err)
}
