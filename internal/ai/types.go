package ai

// MaxSuggestions ограничивает число предлагаемых категорий.
const MaxSuggestions = 5

// MinDescriptionLength задает минимальную длину описания для запроса подсказок.
const MinDescriptionLength = 3

type suggestionPrompt struct {
	Description        string   `json:"description"`
	ExistingCategories []string `json:"existing_categories,omitempty"`
}

type suggestionResponse struct {
	Categories []string `json:"categories"`
}
