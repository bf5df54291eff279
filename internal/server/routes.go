package server

import (
	"github.com/labstack/echo/v4"

	"example.com/expense-tracker/internal/handlers"
)

type routeHandlers struct {
	health        *handlers.HealthHandler
	auth          *handlers.AuthHandler
	expenses      *handlers.ExpenseHandler
	categories    *handlers.CategoryHandler
	budgets       *handlers.BudgetHandler
	summaries     *handlers.SummaryHandler
	currencies    *handlers.CurrencyHandler
	notifications *handlers.NotificationHandler
}

type routeMiddleware struct {
	session         echo.MiddlewareFunc
	optionalSession echo.MiddlewareFunc
	authRateLimiter echo.MiddlewareFunc
	aiRateLimiter   echo.MiddlewareFunc
}

func registerRoutes(e *echo.Echo, h routeHandlers, mw routeMiddleware) {
	e.GET("/health", h.health.Health)

	api := e.Group("/api/v1")
	authGroup := api.Group("/auth")

	authGroup.POST("/signup", h.auth.Signup, mw.authRateLimiter)
	authGroup.POST("/login", h.auth.Login, mw.authRateLimiter)
	authGroup.POST("/logout", h.auth.Logout, mw.optionalSession)
	authGroup.GET("/me", h.auth.Me, mw.session)

	api.GET("/currencies", h.currencies.List)

	preferences := api.Group("/preferences", mw.session)
	preferences.GET("/currency", h.currencies.GetPreference)
	preferences.PUT("/currency", h.currencies.SetPreference)

	expenses := api.Group("/expenses", mw.session)
	expenses.GET("", h.expenses.List)
	expenses.POST("", h.expenses.Create)
	expenses.GET("/upcoming", h.expenses.Upcoming)
	expenses.GET("/export/csv", h.expenses.ExportCSV)
	expenses.DELETE("/:id", h.expenses.Delete)

	categories := api.Group("/categories", mw.session)
	categories.GET("", h.categories.List)
	categories.POST("", h.categories.Create)
	categories.POST("/suggest", h.categories.Suggest, mw.aiRateLimiter)

	budgets := api.Group("/budgets", mw.session)
	budgets.GET("", h.budgets.List)
	budgets.GET("/unbudgeted", h.budgets.Unbudgeted)
	budgets.POST("", h.budgets.Create)
	budgets.PUT("/:period/:category", h.budgets.Update)
	budgets.DELETE("/:period/:category", h.budgets.Delete)

	summaries := api.Group("/summaries", mw.session)
	summaries.GET("", h.summaries.List)
	summaries.POST("/periods", h.summaries.EnablePeriod)
	summaries.DELETE("/periods/:id", h.summaries.DisablePeriod)

	stats := api.Group("/stats", mw.session)
	stats.GET("/chart", h.summaries.Chart)

	notifications := api.Group("/notifications", mw.session)
	notifications.GET("/stream", h.notifications.Stream)
}
