package calendar

import (
	"fmt"
	"time"

	"crmBackend/src/apperr"
)

// Granularity размер окна календаря
type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
)

const referenceDateLayout = "2006-01-02"

// ParseReferenceDate разбирает дату вида YYYY-MM-DD
func ParseReferenceDate(value string) (time.Time, error) {
	parsed, err := time.Parse(referenceDateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", apperr.ErrInvalidDate, value)
	}
	return parsed, nil
}

// LoadUserLocation возвращает таймзону пользователя.
// Пустое или некорректное имя даёт UTC.
func LoadUserLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ResolveWindow вычисляет включительные границы окна календаря вокруг
// reference в таймзоне loc и возвращает их как UTC-инстанты. Конец окна —
// первый момент следующего периода минус миллисекунда, поэтому день и
// неделя заканчиваются в 23:59:59.999.
func ResolveWindow(reference time.Time, granularity Granularity, loc *time.Location) (time.Time, time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}

	year, month, day := reference.Date()

	var start, next time.Time
	switch granularity {
	case GranularityDay:
		start = time.Date(year, month, day, 0, 0, 0, 0, loc)
		next = start.AddDate(0, 0, 1)
	case GranularityWeek:
		// Неделя начинается с понедельника
		offset := (int(reference.Weekday()) + 6) % 7
		start = time.Date(year, month, day-offset, 0, 0, 0, 0, loc)
		next = start.AddDate(0, 0, 7)
	case GranularityMonth:
		return MonthWindow(year, int(month), loc)
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("%w: unknown view %q", apperr.ErrValidation, granularity)
	}

	return start.UTC(), next.Add(-time.Millisecond).UTC(), nil
}

// MonthWindow вычисляет включительные границы месяца в таймзоне loc.
// Последний момент месяца берётся от первого момента следующего месяца,
// переход декабрь-январь обрабатывается отдельно.
func MonthWindow(year, month int, loc *time.Location) (time.Time, time.Time, error) {
	if month < 1 || month > 12 {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: month %d", apperr.ErrValidation, month)
	}
	if loc == nil {
		loc = time.UTC
	}

	firstDay := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)

	var nextFirst time.Time
	if month == 12 {
		nextFirst = time.Date(year+1, time.January, 1, 0, 0, 0, 0, loc)
	} else {
		nextFirst = time.Date(year, time.Month(month+1), 1, 0, 0, 0, 0, loc)
	}

	return firstDay.UTC(), nextFirst.Add(-time.Millisecond).UTC(), nil
}
