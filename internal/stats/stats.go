package stats

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"example.com/expense-tracker/internal/models"
)

var hundred = decimal.NewFromInt(100)

// Progress описывает исполнение бюджета за его период.
type Progress struct {
	Spent          decimal.Decimal
	Remaining      decimal.Decimal
	Percent        decimal.Decimal
	DisplayPercent decimal.Decimal
	IsOverBudget   bool
}

// BudgetStatus связывает бюджет с его исполнением.
type BudgetStatus struct {
	Budget   models.Budget
	Progress Progress
}

// CategoryValue содержит сумму трат по одной категории.
type CategoryValue struct {
	Category string
	Value    decimal.Decimal
}

// Upcoming описывает ближайший платеж по регулярному расходу.
type Upcoming struct {
	Expense     models.Expense
	NextDueDate time.Time
}

// PeriodTotal содержит итог трат за период сводки. Range заполнен только для custom_range.
type PeriodTotal struct {
	Period models.SummaryPeriod
	Total  decimal.Decimal
	Range  *Range
}

// Filter возвращает расходы, дата которых удовлетворяет предикату.
func Filter(expenses []models.Expense, pred Predicate) []models.Expense {
	out := make([]models.Expense, 0, len(expenses))
	for _, expense := range expenses {
		if pred(expense.Date) {
			out = append(out, expense)
		}
	}
	return out
}

// Total суммирует все расходы.
func Total(expenses []models.Expense) decimal.Decimal {
	total := decimal.Zero
	for _, expense := range expenses {
		total = total.Add(expense.Amount)
	}
	return total
}

// TotalForPeriod суммирует расходы, попавшие в период.
func TotalForPeriod(expenses []models.Expense, pred Predicate) decimal.Decimal {
	total := decimal.Zero
	for _, expense := range expenses {
		if pred(expense.Date) {
			total = total.Add(expense.Amount)
		}
	}
	return total
}

// SpendByCategory группирует траты по категориям. Категорий без трат в карте нет.
func SpendByCategory(expenses []models.Expense) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	for _, expense := range expenses {
		out[expense.Category] = out[expense.Category].Add(expense.Amount)
	}
	return out
}

// BudgetProgress считает исполнение бюджета. Процент для отображения ограничен 100,
// перерасход определяется по остатку.
func BudgetProgress(budget models.Budget, spent decimal.Decimal) Progress {
	percent := decimal.Zero
	if !budget.Limit.IsZero() {
		percent = spent.Mul(hundred).Div(budget.Limit)
	}

	remaining := budget.Limit.Sub(spent)
	return Progress{
		Spent:          spent,
		Remaining:      remaining,
		Percent:        percent,
		DisplayPercent: decimal.Min(percent, hundred),
		IsOverBudget:   remaining.IsNegative(),
	}
}

// BudgetOverview сопоставляет бюджеты с тратами: месячные с текущим месяцем,
// годовые с текущим годом.
func BudgetOverview(budgets []models.Budget, expenses []models.Expense, now time.Time) []BudgetStatus {
	monthly := SpendByCategory(Filter(expenses, ThisMonth(now)))
	yearly := SpendByCategory(Filter(expenses, ThisYear(now)))

	out := make([]BudgetStatus, 0, len(budgets))
	for _, budget := range budgets {
		spending := monthly
		if budget.Period == models.BudgetPeriodYearly {
			spending = yearly
		}
		out = append(out, BudgetStatus{
			Budget:   budget,
			Progress: BudgetProgress(budget, spending[budget.Category]),
		})
	}
	return out
}

// Unbudgeted возвращает категории без бюджета в указанном периоде.
func Unbudgeted(categories []string, budgets []models.Budget, period models.BudgetPeriod) []string {
	taken := make(map[string]struct{}, len(budgets))
	for _, budget := range budgets {
		if budget.Period == period {
			taken[budget.Category] = struct{}{}
		}
	}

	out := make([]string, 0, len(categories))
	for _, category := range categories {
		if _, ok := taken[category]; !ok {
			out = append(out, category)
		}
	}
	return out
}

// NextRecurrence сдвигает дату на целые месяцы, пока она раньше сегодняшнего дня.
// День месяца отсчитывается от исходной даты: 31-е в 30-дневном месяце становится
// 30-м, а в следующем месяце снова 31-м.
func NextRecurrence(original, now time.Time) time.Time {
	today := startOfDay(now)
	due := original
	for months := 1; startOfDay(due.In(today.Location())).Before(today); months++ {
		due = addMonths(original, months)
	}
	return due
}

// UpcomingPayments возвращает ближайшие платежи по регулярным расходам.
func UpcomingPayments(expenses []models.Expense, now time.Time, limit int) []Upcoming {
	out := make([]Upcoming, 0)
	for _, expense := range expenses {
		if !expense.IsRecurring {
			continue
		}
		out = append(out, Upcoming{Expense: expense, NextDueDate: NextRecurrence(expense.Date, now)})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].NextDueDate.Before(out[j].NextDueDate)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// ChartBreakdown возвращает траты по категориям за период, по убыванию суммы.
func ChartBreakdown(expenses []models.Expense, pred Predicate) []CategoryValue {
	spending := SpendByCategory(Filter(expenses, pred))

	out := make([]CategoryValue, 0, len(spending))
	for category, value := range spending {
		out = append(out, CategoryValue{Category: category, Value: value})
	}

	sort.Slice(out, func(i, j int) bool {
		if cmp := out[i].Value.Cmp(out[j].Value); cmp != 0 {
			return cmp > 0
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// Summaries считает итоги по постоянным периодам и включенным дополнительным.
// Для custom_range без интервала итог нулевой и Range пустой.
func Summaries(expenses []models.Expense, additional []models.SummaryPeriod, now time.Time, custom *Range) []PeriodTotal {
	periods := make([]models.SummaryPeriod, 0, len(models.PermanentSummaries)+len(additional))
	periods = append(periods, models.PermanentSummaries...)
	periods = append(periods, additional...)

	out := make([]PeriodTotal, 0, len(periods))
	for _, period := range periods {
		total := PeriodTotal{Period: period, Total: decimal.Zero}
		pred, ok := PredicateFor(period.ID, now, custom)
		if ok {
			total.Total = TotalForPeriod(expenses, pred)
			if period.ID == models.SummaryCustomRange {
				total.Range = custom
			}
		}
		out = append(out, total)
	}
	return out
}

func addMonths(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	hour, minute, sec := t.Clock()

	first := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	if last := daysIn(first); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, hour, minute, sec, t.Nanosecond(), t.Location())
}

func daysIn(monthStart time.Time) int {
	return monthStart.AddDate(0, 1, -1).Day()
}
