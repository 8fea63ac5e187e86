package gorm_models

// EventAttendee связка событие-участник, уникальная по паре (событие, пользователь)
type EventAttendee struct {
	IDEvent int64 `gorm:"column:id_event;not null;uniqueIndex:idx_event_attendee;index"`
	IDUser  int64 `gorm:"column:id_user;not null;uniqueIndex:idx_event_attendee;index"`
}

func (EventAttendee) TableName() string { return "crm_event_attendee" }
