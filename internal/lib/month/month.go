// Package month содержит расчёты календарных периодов подписки.
package month

import "time"

// PeriodEnd возвращает конец периода, начинающегося в start и длящегося months
// календарных месяцев. Переполнение дня нормализуется так же, как в
// time.AddDate: 31 января + 1 месяц = 3 марта (2 марта в високосный год).
func PeriodEnd(start time.Time, months int) time.Time {
	return start.AddDate(0, months, 0)
}

// DaysLeft возвращает количество полных и неполных суток до end.
// Для прошедшей даты возвращает 0.
func DaysLeft(now, end time.Time) int {
	if !now.Before(end) {
		return 0
	}
	d := end.Sub(now)
	days := int(d / (24 * time.Hour))
	if d%(24*time.Hour) != 0 {
		days++
	}
	return days
}

// Key возвращает ключ календарного месяца в формате YYYY-MM.
func Key(t time.Time) string {
	return t.UTC().Format("2006-01")
}

// UntilNextMonth возвращает длительность от t до начала следующего
// календарного месяца в UTC.
func UntilNextMonth(t time.Time) time.Duration {
	u := t.UTC()
	next := time.Date(u.Year(), u.Month()+1, 1, 0, 0, 0, 0, time.UTC)
	return next.Sub(u)
}
