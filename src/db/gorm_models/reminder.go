package gorm_models

import (
	"time"
)

// EventReminder напоминание по событию для конкретного пользователя
type EventReminder struct {
	IDReminder       int64          `gorm:"column:id_reminder;primaryKey;autoIncrement"`
	IDEvent          int64          `gorm:"column:id_event;not null;uniqueIndex:idx_reminder_unique"`
	Event            *CalendarEvent `gorm:"foreignKey:IDEvent;references:IDEvent"`
	IDUser           int64          `gorm:"column:id_user;not null;uniqueIndex:idx_reminder_unique;index"`
	User             *User          `gorm:"foreignKey:IDUser;references:IDUser"`
	ReminderDatetime time.Time      `gorm:"column:reminder_datetime;not null;uniqueIndex:idx_reminder_unique;index"`
	IsSent           bool           `gorm:"column:is_sent;not null;default:false"`
	SentAt           *time.Time     `gorm:"column:sent_at"`
}

func (EventReminder) TableName() string { return "crm_event_reminder" }
