package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"
)

const systemPrompt = "You categorize personal expenses. Respond with JSON only, without extra text."

type Service struct {
	client Client
	logger *slog.Logger
}

// NewService создает сервис подсказок категорий. client может быть nil,
// тогда подсказки всегда пустые.
func NewService(client Client, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{client: client, logger: logger}
}

// SuggestCategories возвращает до MaxSuggestions категорий для описания расхода.
// Короткие описания не отправляются провайдеру; любая ошибка дает пустой список.
func (s *Service) SuggestCategories(ctx context.Context, description string, existing []string) []string {
	description = strings.TrimSpace(description)
	if utf8.RuneCountInString(description) < MinDescriptionLength || s.client == nil {
		return []string{}
	}

	prompt, err := buildSuggestionPrompt(description, existing)
	if err != nil {
		s.logger.Warn("ai suggestion prompt failed", slog.String("error", err.Error()))
		return []string{}
	}

	messages := []Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: prompt},
	}

	content, err := s.client.Chat(ctx, messages)
	if err != nil {
		s.logger.Warn("ai suggestion request failed", slog.String("error", err.Error()))
		return []string{}
	}

	var response suggestionResponse
	if err := parseJSON(content, &response); err != nil {
		s.logger.Warn("ai suggestion response invalid", slog.String("error", err.Error()))
		return []string{}
	}

	return normalizeSuggestions(response.Categories)
}

func buildSuggestionPrompt(description string, existing []string) (string, error) {
	payload, err := json.MarshalIndent(suggestionPrompt{
		Description:        description,
		ExistingCategories: existing,
	}, "", "  ")
	if err != nil {
		return "", err
	}

	prompt := fmt.Sprintf(`Suggest spending categories for the expense below.

Requirements:
- Output JSON only, no code fences, no extra text.
- Schema: {"categories": [string]}
- Provide 1-%d categories, most relevant first.
- Prefer names from existing_categories when they fit.
- Keep each category short (<= 30 chars).

Input:
%s`, MaxSuggestions, string(payload))

	return prompt, nil
}

// normalizeSuggestions обрезает пробелы, убирает пустые и повторяющиеся без учета регистра значения.
func normalizeSuggestions(values []string) []string {
	out := make([]string, 0, MaxSuggestions)
	seen := make(map[string]struct{}, len(values))

	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, trimmed)
		if len(out) == MaxSuggestions {
			break
		}
	}

	return out
}

func parseJSON(input string, target interface{}) error {
	payload := extractJSON(input)
	if payload == "" {
		return errors.New("ai response does not contain json")
	}

	return json.Unmarshal([]byte(payload), target)
}

func extractJSON(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return ""
	}

	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimPrefix(strings.TrimSpace(trimmed), "json")
		trimmed = strings.TrimSpace(trimmed)
		if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
			trimmed = trimmed[:idx]
		}
		trimmed = strings.TrimSpace(trimmed)
	}

	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start == -1 || end == -1 || end <= start {
		return ""
	}

	return trimmed[start : end+1]
}
