package handlers

import (
	"bytes"
	"encoding/csv"
	"net/http"

	"github.com/labstack/echo/v4"

	"example.com/expense-tracker/internal/models"
)

const exportFilename = "expenses.csv"

var expenseCSVHeader = []string{"ID", "Date", "Description", "Amount", "Category"}

// ExportCSV выгружает расходы пользователя в CSV. Суммы в базовой валюте.
func (h *ExpenseHandler) ExportCSV(c echo.Context) error {
	email, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	var buf bytes.Buffer
	if err := writeExpensesCSV(&buf, h.Expenses.List(email)); err != nil {
		return serverError(c)
	}

	h.Activity.Log(c.Request().Context(), "User '%s' exported expenses to CSV.", email)

	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename=\""+exportFilename+"\"")
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func writeExpensesCSV(buf *bytes.Buffer, expenses []models.Expense) error {
	writer := csv.NewWriter(buf)

	if err := writer.Write(expenseCSVHeader); err != nil {
		return err
	}

	for _, expense := range expenses {
		record := []string{
			expense.ID,
			expense.Date.Format(dateLayout),
			expense.Description,
			expense.Amount.String(),
			expense.Category,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
