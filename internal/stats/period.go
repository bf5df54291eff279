package stats

import (
	"time"

	"example.com/expense-tracker/internal/models"
)

// Predicate отбирает расходы по дате.
type Predicate func(date time.Time) bool

// Range задает интервал календарных дней, обе границы включительно.
type Range struct {
	From time.Time
	To   time.Time
}

// Today отбирает расходы за текущий календарный день.
func Today(now time.Time) Predicate {
	start := startOfDay(now)
	return within(start, start.AddDate(0, 0, 1))
}

// ThisWeek отбирает расходы за текущую неделю. Неделя начинается с воскресенья.
func ThisWeek(now time.Time) Predicate {
	today := startOfDay(now)
	start := today.AddDate(0, 0, -int(today.Weekday()))
	return within(start, start.AddDate(0, 0, 7))
}

// ThisMonth отбирает расходы за текущий календарный месяц.
func ThisMonth(now time.Time) Predicate {
	y, m, _ := now.Date()
	start := time.Date(y, m, 1, 0, 0, 0, 0, now.Location())
	return within(start, start.AddDate(0, 1, 0))
}

// ThisYear отбирает расходы за текущий календарный год.
func ThisYear(now time.Time) Predicate {
	start := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	return within(start, start.AddDate(1, 0, 0))
}

// Between отбирает расходы с from по to включительно, по календарным дням в зоне from.
func Between(from, to time.Time) Predicate {
	start := startOfDay(from)
	end := startOfDay(to.In(from.Location())).AddDate(0, 0, 1)
	return within(start, end)
}

// PredicateFor возвращает предикат для периода сводки. Для custom_range нужен rng.
func PredicateFor(id models.SummaryPeriodID, now time.Time, rng *Range) (Predicate, bool) {
	switch id {
	case models.SummaryToday:
		return Today(now), true
	case models.SummaryThisWeek:
		return ThisWeek(now), true
	case models.SummaryThisMonth:
		return ThisMonth(now), true
	case models.SummaryThisYear:
		return ThisYear(now), true
	case models.SummaryCustomRange:
		if rng == nil {
			return nil, false
		}
		return Between(rng.From, rng.To), true
	default:
		return nil, false
	}
}

func within(start, end time.Time) Predicate {
	loc := start.Location()
	return func(date time.Time) bool {
		local := date.In(loc)
		return !local.Before(start) && local.Before(end)
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
