package gorm_models

import (
	"time"

	"gorm.io/gorm"

	"crmBackend/src/apperr"
)

// Типы событий календаря
const (
	EventTypeEvent        = "event"
	EventTypeTask         = "task"
	EventTypeMeeting      = "meeting"
	EventTypeScheduled    = "scheduled"
	EventTypeTaskReminder = "task_reminder"
)

// Приоритеты событий
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// CalendarEvent единая модель события календаря (событие/задача/встреча)
type CalendarEvent struct {
	IDEvent         int64      `gorm:"column:id_event;primaryKey;autoIncrement"`
	Title           string     `gorm:"column:title;type:text;not null"`
	Description     *string    `gorm:"column:description;type:text"`
	EventType       string     `gorm:"column:event_type;not null;default:event;check:event_type IN ('event','task','meeting','scheduled','task_reminder');index"`
	StartDatetime   time.Time  `gorm:"column:start_datetime;not null;index:idx_event_range"`
	EndDatetime     time.Time  `gorm:"column:end_datetime;not null;index:idx_event_range"`
	DurationMinutes int        `gorm:"column:duration_minutes;not null"`
	CreatedBy       int64      `gorm:"column:created_by;not null;index"`
	Creator         *User      `gorm:"foreignKey:CreatedBy;references:IDUser"`
	TaskID          *int64     `gorm:"column:task_id"`
	MeetingID       *int64     `gorm:"column:meeting_id"`
	Location        *string    `gorm:"column:location;type:text"`
	ColorCode       string     `gorm:"column:color_code;not null;default:#22c55e"`
	Priority        string     `gorm:"column:priority;not null;default:medium;check:priority IN ('low','medium','high')"`
	IsAllDay        bool       `gorm:"column:is_all_day;not null;default:false"`
	ReminderMinutes *int       `gorm:"column:reminder_minutes"`
	IsCompleted     bool       `gorm:"column:is_completed;not null;default:false"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;autoUpdateTime"`
	Attendees       []User     `gorm:"many2many:crm_event_attendee;foreignKey:IDEvent;joinForeignKey:IDEvent;references:IDUser;joinReferences:IDUser"`
	Reminders       []EventReminder `gorm:"foreignKey:IDEvent;references:IDEvent"`
}

func (CalendarEvent) TableName() string { return "crm_calendar_event" }

// BeforeSave проверяет интервал события и пересчитывает длительность
func (e *CalendarEvent) BeforeSave(tx *gorm.DB) error {
	if !e.EndDatetime.After(e.StartDatetime) {
		return apperr.ErrInvalidRange
	}
	// Длительность всегда производная, минуты с усечением
	e.DurationMinutes = int(e.EndDatetime.Sub(e.StartDatetime) / time.Minute)
	return nil
}

// IsPast сообщает, закончилось ли событие к моменту now
func (e *CalendarEvent) IsPast(now time.Time) bool {
	return e.EndDatetime.Before(now)
}

// IsOngoing сообщает, идёт ли событие в момент now
func (e *CalendarEvent) IsOngoing(now time.Time) bool {
	return !e.StartDatetime.After(now) && !e.EndDatetime.Before(now)
}
