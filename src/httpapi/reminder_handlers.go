package httpapi

import (
	"net/http"
	"time"

	"crmBackend/src/db/gorm_models"
	"crmBackend/src/scheduler"
)

type reminderRequest struct {
	Event            *int64     `json:"event"`
	ReminderDatetime *time.Time `json:"reminder_datetime"`
}

func (s *Server) handleListReminders(w http.ResponseWriter, r *http.Request, user *gorm_models.User) {
	reminders, err := s.reminders.ListReminders(r.Context(), user)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newReminderList(reminders, s.now()))
}

func (s *Server) handleCreateReminder(w http.ResponseWriter, r *http.Request, user *gorm_models.User) {
	var req reminderRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Event == nil || req.ReminderDatetime == nil {
		writeDetail(w, http.StatusBadRequest, "event and reminder_datetime are required")
		return
	}

	reminder := gorm_models.EventReminder{
		IDEvent:          *req.Event,
		ReminderDatetime: *req.ReminderDatetime,
	}
	if err := s.reminders.CreateReminder(r.Context(), user, &reminder); err != nil {
		writeError(w, err)
		return
	}

	created, err := s.reminders.GetReminder(r.Context(), user, reminder.IDReminder)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newReminderResponse(created, s.now()))
}

func (s *Server) handleGetReminder(w http.ResponseWriter, r *http.Request, user *gorm_models.User) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	reminder, err := s.reminders.GetReminder(r.Context(), user, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newReminderResponse(reminder, s.now()))
}

func (s *Server) handleUpdateReminder(w http.ResponseWriter, r *http.Request, user *gorm_models.User) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req reminderRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.ReminderDatetime == nil {
		writeDetail(w, http.StatusBadRequest, "reminder_datetime is required")
		return
	}

	reminder, err := s.reminders.UpdateReminder(r.Context(), user, id, *req.ReminderDatetime)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newReminderResponse(reminder, s.now()))
}

func (s *Server) handleDeleteReminder(w http.ResponseWriter, r *http.Request, user *gorm_models.User) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.reminders.DeleteReminder(r.Context(), user, id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleUpcomingReminders неотправленные напоминания на ближайшие сутки
func (s *Server) handleUpcomingReminders(w http.ResponseWriter, r *http.Request, user *gorm_models.User) {
	reminders, err := s.reminders.DueReminders(r.Context(), user, scheduler.DefaultHorizon)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newReminderList(reminders, s.now()))
}

func newReminderList(reminders []gorm_models.EventReminder, now time.Time) []reminderResponse {
	items := make([]reminderResponse, 0, len(reminders))
	for i := range reminders {
		items = append(items, newReminderResponse(&reminders[i], now))
	}
	return items
}
