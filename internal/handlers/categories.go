package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"example.com/expense-tracker/internal/activity"
	"example.com/expense-tracker/internal/ai"
	"example.com/expense-tracker/internal/notifications"
	"example.com/expense-tracker/internal/repository"
)

type CategoryHandler struct {
	Categories *repository.CategoryRepository
	AI         *ai.Service
	Notifier   *notifications.Hub
	Activity   *activity.Logger
}

// NewCategoryHandler создает обработчик категорий и AI-подсказок.
func NewCategoryHandler(categories *repository.CategoryRepository, service *ai.Service, notifier *notifications.Hub, activityLog *activity.Logger) *CategoryHandler {
	return &CategoryHandler{
		Categories: categories,
		AI:         service,
		Notifier:   notifier,
		Activity:   activityLog,
	}
}

type CategoryRequest struct {
	Name string `json:"name" validate:"required,max=50"`
}

type SuggestRequest struct {
	Description string `json:"description" validate:"max=200"`
}

type CategoryListResponse struct {
	Categories []string `json:"categories"`
}

type SuggestResponse struct {
	Suggestions []string `json:"suggestions"`
}

// List возвращает отсортированный набор категорий пользователя.
func (h *CategoryHandler) List(c echo.Context) error {
	email, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	return c.JSON(http.StatusOK, CategoryListResponse{Categories: h.Categories.List(email)})
}

// Create добавляет категорию; существующее имя отклоняется.
func (h *CategoryHandler) Create(c echo.Context) error {
	email, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	var req CategoryRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return validationError(c, err)
	}

	name, err := h.Categories.Add(email, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrConflict):
			return conflict(c, "category already exists")
		case errors.Is(err, repository.ErrInvalid):
			return badRequest(c, "category name is required")
		default:
			return serverError(c)
		}
	}

	publish(h.Notifier, email, notifications.EventCategoriesChanged, map[string]string{"category": name})
	h.Activity.Log(c.Request().Context(), "User '%s' added category: \"%s\".", email, name)

	return c.JSON(http.StatusCreated, CategoryListResponse{Categories: h.Categories.List(email)})
}

// Suggest предлагает категории для описания расхода. Ошибки провайдера дают пустой список.
func (h *CategoryHandler) Suggest(c echo.Context) error {
	email, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	var req SuggestRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return validationError(c, err)
	}

	suggestions := h.AI.SuggestCategories(c.Request().Context(), req.Description, h.Categories.List(email))
	return c.JSON(http.StatusOK, SuggestResponse{Suggestions: suggestions})
}
