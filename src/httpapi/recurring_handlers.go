package httpapi

import (
	"net/http"
	"time"

	"crmBackend/src/calendar"
	"crmBackend/src/db/gorm_models"
)

// recurrenceRequest тело создания и изменения повторения
type recurrenceRequest struct {
	BaseEvent   *int64     `json:"base_event"`
	Pattern     *string    `json:"pattern"`
	Interval    *int       `json:"interval"`
	EndDate     *time.Time `json:"end_date"`
	Occurrences *int       `json:"occurrences"`
	Weekdays    []int      `json:"weekdays"`
}

func (s *Server) handleListRecurrences(w http.ResponseWriter, r *http.Request, user *gorm_models.User) {
	recurrences, err := s.recurrences.ListRecurrences(r.Context(), user)
	if err != nil {
		writeError(w, err)
		return
	}

	now := s.now()
	items := make([]recurrenceResponse, 0, len(recurrences))
	for i := range recurrences {
		items = append(items, newRecurrenceResponse(&recurrences[i], now))
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleCreateRecurrence(w http.ResponseWriter, r *http.Request, user *gorm_models.User) {
	var req recurrenceRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.BaseEvent == nil || req.Pattern == nil {
		writeDetail(w, http.StatusBadRequest, "base_event and pattern are required")
		return
	}

	recurrence := gorm_models.RecurringEvent{
		IDEvent:     *req.BaseEvent,
		Pattern:     *req.Pattern,
		Interval:    1,
		EndDate:     req.EndDate,
		Occurrences: req.Occurrences,
		Weekdays:    req.Weekdays,
	}
	if req.Interval != nil {
		recurrence.Interval = *req.Interval
	}

	if err := s.recurrences.CreateRecurrence(r.Context(), user, &recurrence); err != nil {
		writeError(w, err)
		return
	}

	created, err := s.recurrences.GetRecurrence(r.Context(), user, recurrence.IDRecurring)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newRecurrenceResponse(created, s.now()))
}

func (s *Server) handleGetRecurrence(w http.ResponseWriter, r *http.Request, user *gorm_models.User) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	recurrence, err := s.recurrences.GetRecurrence(r.Context(), user, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newRecurrenceResponse(recurrence, s.now()))
}

func (s *Server) handleUpdateRecurrence(w http.ResponseWriter, r *http.Request, user *gorm_models.User) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	recurrence, err := s.recurrences.GetRecurrence(r.Context(), user, id)
	if err != nil {
		writeError(w, err)
		return
	}

	var req recurrenceRequest
	if !decodeBody(w, r, &req) {
		return
	}
	// Базовое событие повторения неизменяемо
	if req.Pattern != nil {
		recurrence.Pattern = *req.Pattern
	}
	if req.Interval != nil {
		recurrence.Interval = *req.Interval
	}
	if req.EndDate != nil {
		recurrence.EndDate = req.EndDate
	}
	if req.Occurrences != nil {
		recurrence.Occurrences = req.Occurrences
	}
	if req.Weekdays != nil {
		recurrence.Weekdays = req.Weekdays
	}

	if err := s.recurrences.UpdateRecurrence(r.Context(), recurrence); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newRecurrenceResponse(recurrence, s.now()))
}

func (s *Server) handleDeleteRecurrence(w http.ResponseWriter, r *http.Request, user *gorm_models.User) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.recurrences.DeleteRecurrence(r.Context(), user, id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleOccurrences развёртка повторения в окне ?from=YYYY-MM-DD&to=YYYY-MM-DD
func (s *Server) handleOccurrences(w http.ResponseWriter, r *http.Request, user *gorm_models.User) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	query := r.URL.Query()
	from, err := calendar.ParseReferenceDate(query.Get("from"))
	if err != nil {
		writeError(w, err)
		return
	}
	to, err := calendar.ParseReferenceDate(query.Get("to"))
	if err != nil {
		writeError(w, err)
		return
	}
	// Окно включительное: to покрывает весь указанный день
	to = to.AddDate(0, 0, 1).Add(-time.Millisecond)

	occurrences, err := s.recurrences.Occurrences(r.Context(), user, id, from, to)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]time.Time{"occurrences": occurrences})
}
