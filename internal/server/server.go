package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"example.com/expense-tracker/internal/activity"
	"example.com/expense-tracker/internal/ai"
	"example.com/expense-tracker/internal/auth"
	"example.com/expense-tracker/internal/config"
	"example.com/expense-tracker/internal/currency"
	"example.com/expense-tracker/internal/handlers"
	"example.com/expense-tracker/internal/models"
	"example.com/expense-tracker/internal/notifications"
	"example.com/expense-tracker/internal/repository"
)

// Dependencies содержит внешние ресурсы, которые сервер получает готовыми.
type Dependencies struct {
	Users repository.UserStore
	// Ping проверяет хранилище пользователей; nil для файлового хранилища.
	Ping func(ctx context.Context) error
	// AIClient подменяет клиента провайдера; nil означает клиента из конфигурации.
	AIClient ai.Client
}

// New собирает HTTP-сервер Echo с роутами и зависимостями.
func New(cfg config.Config, logger *slog.Logger, deps Dependencies) (*echo.Echo, error) {
	if logger == nil {
		logger = slog.Default()
	}

	table := currency.DefaultTable()
	if _, err := table.Lookup(cfg.Tracker.DefaultCurrency); err != nil {
		return nil, fmt.Errorf("DEFAULT_CURRENCY: %w", err)
	}

	aiClient := deps.AIClient
	if aiClient == nil {
		client, err := ai.NewClient(ai.ClientConfig{
			Provider:  cfg.AI.Provider,
			APIKey:    cfg.AI.APIKey,
			BaseURL:   cfg.AI.BaseURL,
			Model:     cfg.AI.Model,
			Timeout:   cfg.AI.Timeout,
			MaxTokens: cfg.AI.MaxOutputTokens,
		})
		if err != nil {
			return nil, err
		}
		aiClient = client
	}

	categories := models.DefaultCategories
	if len(cfg.Tracker.DefaultCategories) > 0 {
		categories = cfg.Tracker.DefaultCategories
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogger(logger))

	cookie := auth.CookieOptions{Name: cfg.Auth.CookieName, Secure: cfg.Auth.CookieSecure}
	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.SessionTTL)
	authenticator := auth.NewAuthenticator(deps.Users)
	activityLog := activity.NewLogger(cfg.Storage.ActivityLogFile, logger)
	converter := currency.NewConverter(table)
	notificationHub := notifications.NewHub()
	aiService := ai.NewService(aiClient, logger)

	expenseRepo := repository.NewExpenseRepository()
	budgetRepo := repository.NewBudgetRepository()
	categoryRepo := repository.NewCategoryRepository(categories)
	preferenceRepo := repository.NewPreferenceRepository(cfg.Tracker.DefaultCurrency)

	registerRoutes(e, routeHandlers{
		health:        handlers.NewHealthHandler(cfg.Storage.UserStore, deps.Ping),
		auth:          handlers.NewAuthHandler(authenticator, tokenManager, cookie, activityLog),
		expenses:      handlers.NewExpenseHandler(expenseRepo, categoryRepo, preferenceRepo, converter, notificationHub, activityLog),
		categories:    handlers.NewCategoryHandler(categoryRepo, aiService, notificationHub, activityLog),
		budgets:       handlers.NewBudgetHandler(budgetRepo, categoryRepo, expenseRepo, preferenceRepo, converter, notificationHub, activityLog),
		summaries:     handlers.NewSummaryHandler(expenseRepo, preferenceRepo, converter, notificationHub),
		currencies:    handlers.NewCurrencyHandler(converter, preferenceRepo, notificationHub),
		notifications: handlers.NewNotificationHandler(notificationHub),
	}, routeMiddleware{
		session:         auth.SessionMiddleware(tokenManager, cookie),
		optionalSession: auth.OptionalSession(tokenManager, cookie),
		authRateLimiter: rateLimiter(cfg.Auth.RateLimitPerMinute, cfg.Auth.RateLimitBurst),
		aiRateLimiter:   rateLimiter(cfg.AI.RateLimitPerMinute, cfg.AI.RateLimitBurst),
	})

	return e, nil
}

// NewHTTPServer создает net/http сервер с заданными таймаутами.
func NewHTTPServer(cfg config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}

func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.String("remote_ip", v.RemoteIP),
				slog.String("request_id", v.RequestID),
				slog.Duration("latency", v.Latency),
			}

			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}

			msg := "request completed"
			if v.Status >= http.StatusInternalServerError {
				logger.LogAttrs(c.Request().Context(), slog.LevelError, msg, attrs...)
				return nil
			}

			logger.LogAttrs(c.Request().Context(), slog.LevelInfo, msg, attrs...)
			return nil
		},
	})
}

// rateLimiter ограничивает запросы с одного IP: perMinute в минуту с запасом burst.
func rateLimiter(perMinute, burst int) echo.MiddlewareFunc {
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(float64(perMinute) / 60.0),
		Burst:     burst,
		ExpiresIn: time.Minute,
	})

	return middleware.RateLimiter(store)
}
