package httpapi

import (
	"time"

	"crmBackend/src/db/gorm_models"
)

// userMinimal краткая карточка пользователя для создателя и участников
type userMinimal struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func newUserMinimal(u *gorm_models.User) userMinimal {
	return userMinimal{ID: u.IDUser, Username: u.UserName, Email: u.Email}
}

// eventResponse полное представление события
type eventResponse struct {
	ID              int64         `json:"id"`
	Title           string        `json:"title"`
	Description     *string       `json:"description"`
	EventType       string        `json:"event_type"`
	StartDatetime   time.Time     `json:"start_datetime"`
	EndDatetime     time.Time     `json:"end_datetime"`
	DurationMinutes int           `json:"duration_minutes"`
	CreatedBy       int64         `json:"created_by"`
	CreatedByDetail *userMinimal  `json:"created_by_detail,omitempty"`
	Attendees       []int64       `json:"attendees"`
	AttendeesDetail []userMinimal `json:"attendees_detail"`
	TaskID          *int64        `json:"task_id"`
	MeetingID       *int64        `json:"meeting_id"`
	Location        *string       `json:"location"`
	ColorCode       string        `json:"color_code"`
	Priority        string        `json:"priority"`
	IsAllDay        bool          `json:"is_all_day"`
	ReminderMinutes *int          `json:"reminder_minutes"`
	IsCompleted     bool          `json:"is_completed"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
	IsPast          bool          `json:"is_past"`
	IsOngoing       bool          `json:"is_ongoing"`
}

func newEventResponse(e *gorm_models.CalendarEvent, now time.Time) eventResponse {
	resp := eventResponse{
		ID:              e.IDEvent,
		Title:           e.Title,
		Description:     e.Description,
		EventType:       e.EventType,
		StartDatetime:   e.StartDatetime,
		EndDatetime:     e.EndDatetime,
		DurationMinutes: e.DurationMinutes,
		CreatedBy:       e.CreatedBy,
		Attendees:       make([]int64, 0, len(e.Attendees)),
		AttendeesDetail: make([]userMinimal, 0, len(e.Attendees)),
		TaskID:          e.TaskID,
		MeetingID:       e.MeetingID,
		Location:        e.Location,
		ColorCode:       e.ColorCode,
		Priority:        e.Priority,
		IsAllDay:        e.IsAllDay,
		ReminderMinutes: e.ReminderMinutes,
		IsCompleted:     e.IsCompleted,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
		IsPast:          e.IsPast(now),
		IsOngoing:       e.IsOngoing(now),
	}
	if e.Creator != nil {
		detail := newUserMinimal(e.Creator)
		resp.CreatedByDetail = &detail
	}
	for i := range e.Attendees {
		resp.Attendees = append(resp.Attendees, e.Attendees[i].IDUser)
		resp.AttendeesDetail = append(resp.AttendeesDetail, newUserMinimal(&e.Attendees[i]))
	}
	return resp
}

// eventListItem облегчённое представление для списков и видов календаря
type eventListItem struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	EventType       string    `json:"event_type"`
	StartDatetime   time.Time `json:"start_datetime"`
	EndDatetime     time.Time `json:"end_datetime"`
	DurationMinutes int       `json:"duration_minutes"`
	ColorCode       string    `json:"color_code"`
	IsCompleted     bool      `json:"is_completed"`
	AttendeeCount   int       `json:"attendee_count"`
}

func newEventList(events []gorm_models.CalendarEvent) []eventListItem {
	items := make([]eventListItem, 0, len(events))
	for i := range events {
		e := &events[i]
		items = append(items, eventListItem{
			ID:              e.IDEvent,
			Title:           e.Title,
			EventType:       e.EventType,
			StartDatetime:   e.StartDatetime,
			EndDatetime:     e.EndDatetime,
			DurationMinutes: e.DurationMinutes,
			ColorCode:       e.ColorCode,
			IsCompleted:     e.IsCompleted,
			AttendeeCount:   len(e.Attendees),
		})
	}
	return items
}

// recurrenceResponse представление настройки повторения
type recurrenceResponse struct {
	ID          int64          `json:"id"`
	BaseEvent   *eventResponse `json:"base_event,omitempty"`
	Pattern     string         `json:"pattern"`
	Interval    int            `json:"interval"`
	EndDate     *time.Time     `json:"end_date"`
	Occurrences *int           `json:"occurrences"`
	Weekdays    []int          `json:"weekdays"`
}

func newRecurrenceResponse(r *gorm_models.RecurringEvent, now time.Time) recurrenceResponse {
	resp := recurrenceResponse{
		ID:          r.IDRecurring,
		Pattern:     r.Pattern,
		Interval:    r.Interval,
		EndDate:     r.EndDate,
		Occurrences: r.Occurrences,
		Weekdays:    r.Weekdays,
	}
	if resp.Weekdays == nil {
		resp.Weekdays = []int{}
	}
	if r.BaseEvent != nil {
		event := newEventResponse(r.BaseEvent, now)
		resp.BaseEvent = &event
	}
	return resp
}

// reminderResponse представление напоминания
type reminderResponse struct {
	ID               int64          `json:"id"`
	Event            int64          `json:"event"`
	EventDetail      *eventResponse `json:"event_detail,omitempty"`
	User             int64          `json:"user"`
	ReminderDatetime time.Time      `json:"reminder_datetime"`
	IsSent           bool           `json:"is_sent"`
	SentAt           *time.Time     `json:"sent_at"`
}

func newReminderResponse(r *gorm_models.EventReminder, now time.Time) reminderResponse {
	resp := reminderResponse{
		ID:               r.IDReminder,
		Event:            r.IDEvent,
		User:             r.IDUser,
		ReminderDatetime: r.ReminderDatetime,
		IsSent:           r.IsSent,
		SentAt:           r.SentAt,
	}
	if r.Event != nil {
		event := newEventResponse(r.Event, now)
		resp.EventDetail = &event
	}
	return resp
}
