package gorm_models

import (
	"time"
)

// Шаблоны повторения
const (
	PatternDaily   = "daily"
	PatternWeekly  = "weekly"
	PatternMonthly = "monthly"
	PatternYearly  = "yearly"
)

// RecurringEvent настройка повторения для базового события, ровно одна на событие.
// Дни недели нумеруются как в исходной системе: 0=понедельник .. 6=воскресенье.
type RecurringEvent struct {
	IDRecurring int64          `gorm:"column:id_recurring;primaryKey;autoIncrement"`
	IDEvent     int64          `gorm:"column:id_event;not null;uniqueIndex"`
	BaseEvent   *CalendarEvent `gorm:"foreignKey:IDEvent;references:IDEvent"`
	Pattern     string         `gorm:"column:pattern;not null;check:pattern IN ('daily','weekly','monthly','yearly')"`
	Interval    int            `gorm:"column:interval;not null;default:1"`
	EndDate     *time.Time     `gorm:"column:end_date"`
	Occurrences *int           `gorm:"column:occurrences"`
	Weekdays    []int          `gorm:"column:weekdays;type:text;serializer:json"`
}

func (RecurringEvent) TableName() string { return "crm_recurring_event" }
