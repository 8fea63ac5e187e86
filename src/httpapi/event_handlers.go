package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"crmBackend/src/apperr"
	"crmBackend/src/calendar"
	"crmBackend/src/db/gorm_models"
)

var validEventTypes = map[string]bool{
	gorm_models.EventTypeEvent:        true,
	gorm_models.EventTypeTask:         true,
	gorm_models.EventTypeMeeting:      true,
	gorm_models.EventTypeScheduled:    true,
	gorm_models.EventTypeTaskReminder: true,
}

var validPriorities = map[string]bool{
	gorm_models.PriorityLow:    true,
	gorm_models.PriorityMedium: true,
	gorm_models.PriorityHigh:   true,
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad id %q", apperr.ErrValidation, r.PathValue("id"))
	}
	return id, nil
}

// eventRequest тело создания и изменения события.
// Указатели отличают отсутствующее поле от пустого.
type eventRequest struct {
	Title           *string    `json:"title"`
	Description     *string    `json:"description"`
	EventType       *string    `json:"event_type"`
	StartDatetime   *time.Time `json:"start_datetime"`
	EndDatetime     *time.Time `json:"end_datetime"`
	TaskID          *int64     `json:"task_id"`
	MeetingID       *int64     `json:"meeting_id"`
	Attendees       []int64    `json:"attendees"`
	Location        *string    `json:"location"`
	ColorCode       *string    `json:"color_code"`
	Priority        *string    `json:"priority"`
	IsAllDay        *bool      `json:"is_all_day"`
	ReminderMinutes *int       `json:"reminder_minutes"`
	IsCompleted     *bool      `json:"is_completed"`
}

// apply накладывает присланные поля на модель; создатель не затрагивается
func (req *eventRequest) apply(event *gorm_models.CalendarEvent) error {
	if req.Title != nil {
		event.Title = *req.Title
	}
	if req.Description != nil {
		event.Description = req.Description
	}
	if req.EventType != nil {
		if !validEventTypes[*req.EventType] {
			return fmt.Errorf("%w: unknown event_type %q", apperr.ErrValidation, *req.EventType)
		}
		event.EventType = *req.EventType
	}
	if req.StartDatetime != nil {
		event.StartDatetime = *req.StartDatetime
	}
	if req.EndDatetime != nil {
		event.EndDatetime = *req.EndDatetime
	}
	if req.TaskID != nil {
		event.TaskID = req.TaskID
	}
	if req.MeetingID != nil {
		event.MeetingID = req.MeetingID
	}
	if req.Location != nil {
		event.Location = req.Location
	}
	if req.ColorCode != nil {
		event.ColorCode = *req.ColorCode
	}
	if req.Priority != nil {
		if !validPriorities[*req.Priority] {
			return fmt.Errorf("%w: unknown priority %q", apperr.ErrValidation, *req.Priority)
		}
		event.Priority = *req.Priority
	}
	if req.IsAllDay != nil {
		event.IsAllDay = *req.IsAllDay
	}
	if req.ReminderMinutes != nil {
		event.ReminderMinutes = req.ReminderMinutes
	}
	if req.IsCompleted != nil {
		event.IsCompleted = *req.IsCompleted
	}
	return nil
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request, user *gorm_models.User) {
	query := r.URL.Query()

	filters := calendar.EventFilters{
		EventType: query.Get("event_type"),
		Search:    query.Get("search"),
		Ordering:  query.Get("ordering"),
	}
	if raw := query.Get("is_completed"); raw != "" {
		completed := raw == "true"
		filters.IsCompleted = &completed
	}
	if rawDate := query.Get("date"); rawDate != "" && query.Get("view") != "" {
		date, err := calendar.ParseReferenceDate(rawDate)
		if err != nil {
			writeError(w, err)
			return
		}
		filters.Date = &date
		filters.View = calendar.Granularity(query.Get("view"))
	}

	events, err := s.events.VisibleEvents(r.Context(), user, filters)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newEventList(events))
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request, user *gorm_models.User) {
	var req eventRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Title == nil || req.StartDatetime == nil || req.EndDatetime == nil {
		writeDetail(w, http.StatusBadRequest, "title, start_datetime and end_datetime are required")
		return
	}

	event := gorm_models.CalendarEvent{
		EventType: gorm_models.EventTypeEvent,
		ColorCode: "#22c55e",
		Priority:  gorm_models.PriorityMedium,
	}
	if err := req.apply(&event); err != nil {
		writeError(w, err)
		return
	}

	if err := s.events.CreateEvent(r.Context(), user, &event, req.Attendees); err != nil {
		writeError(w, err)
		return
	}

	created, err := s.events.GetEvent(r.Context(), user, event.IDEvent)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newEventResponse(created, s.now()))
}

func (s *Server) handleGetEvent(w http.ResponseWriter, r *http.Request, user *gorm_models.User) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	event, err := s.events.GetEvent(r.Context(), user, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newEventResponse(event, s.now()))
}

func (s *Server) handleUpdateEvent(w http.ResponseWriter, r *http.Request, user *gorm_models.User) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	event, err := s.events.GetEvent(r.Context(), user, id)
	if err != nil {
		writeError(w, err)
		return
	}

	var req eventRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := req.apply(event); err != nil {
		writeError(w, err)
		return
	}

	if err := s.events.UpdateEvent(r.Context(), event); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newEventResponse(event, s.now()))
}

func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request, user *gorm_models.User) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.events.DeleteEvent(r.Context(), user, id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleWeekView календарь на неделю вокруг ?date=YYYY-MM-DD
func (s *Server) handleWeekView(w http.ResponseWriter, r *http.Request, user *gorm_models.User) {
	// Без параметра берётся дата по UTC, как и ?date=
	reference := s.now().UTC()
	if rawDate := r.URL.Query().Get("date"); rawDate != "" {
		parsed, err := calendar.ParseReferenceDate(rawDate)
		if err != nil {
			writeError(w, err)
			return
		}
		reference = parsed
	}

	loc := calendar.LoadUserLocation(user.Timezone)
	start, end, err := calendar.ResolveWindow(reference, calendar.GranularityWeek, loc)
	if err != nil {
		writeError(w, err)
		return
	}

	events, err := s.events.EventsInWindow(r.Context(), user, start, end)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newEventList(events))
}

// handleMonthView календарь на месяц ?year=&month=
func (s *Server) handleMonthView(w http.ResponseWriter, r *http.Request, user *gorm_models.User) {
	now := s.now().UTC()
	year, month := now.Year(), int(now.Month())

	query := r.URL.Query()
	if rawYear := query.Get("year"); rawYear != "" {
		parsed, err := strconv.Atoi(rawYear)
		if err != nil {
			writeDetail(w, http.StatusBadRequest, "Invalid year or month")
			return
		}
		year = parsed
	}
	if rawMonth := query.Get("month"); rawMonth != "" {
		parsed, err := strconv.Atoi(rawMonth)
		if err != nil {
			writeDetail(w, http.StatusBadRequest, "Invalid year or month")
			return
		}
		month = parsed
	}

	loc := calendar.LoadUserLocation(user.Timezone)
	start, end, err := calendar.MonthWindow(year, month, loc)
	if err != nil {
		writeError(w, err)
		return
	}

	events, err := s.events.EventsInWindow(r.Context(), user, start, end)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newEventList(events))
}

func (s *Server) handleMarkCompleted(w http.ResponseWriter, r *http.Request, user *gorm_models.User) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	event, err := s.events.MarkCompleted(r.Context(), user, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newEventResponse(event, s.now()))
}

type attendeeRequest struct {
	UserID int64 `json:"user_id"`
}

func (s *Server) handleAddAttendee(w http.ResponseWriter, r *http.Request, user *gorm_models.User) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req attendeeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	event, err := s.events.AddAttendee(r.Context(), user, id, req.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newEventResponse(event, s.now()))
}

func (s *Server) handleRemoveAttendee(w http.ResponseWriter, r *http.Request, user *gorm_models.User) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req attendeeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	event, err := s.events.RemoveAttendee(r.Context(), user, id, req.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newEventResponse(event, s.now()))
}
