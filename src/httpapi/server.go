package httpapi

import (
	"net/http"
	"time"

	"crmBackend/src/auth"
	"crmBackend/src/calendar"
	"crmBackend/src/scheduler"
)

// Server предоставляет REST API поверх провайдеров
type Server struct {
	auth        *auth.Provider
	tokens      *auth.TokenManager
	events      *calendar.EventProvider
	recurrences *calendar.RecurrenceProvider
	reminders   *scheduler.ReminderProvider
	mux         *http.ServeMux
	now         func() time.Time
}

// NewServer конструирует сервер и регистрирует маршруты
func NewServer(
	authProvider *auth.Provider,
	tokens *auth.TokenManager,
	events *calendar.EventProvider,
	recurrences *calendar.RecurrenceProvider,
	reminders *scheduler.ReminderProvider,
) *Server {
	s := &Server{
		auth:        authProvider,
		tokens:      tokens,
		events:      events,
		recurrences: recurrences,
		reminders:   reminders,
		mux:         http.NewServeMux(),
		now:         time.Now,
	}
	s.registerRoutes()
	return s
}

// Handler возвращает http.Handler сервера
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	// Аутентификация
	s.mux.HandleFunc("POST /signup", s.handleSignup)
	s.mux.HandleFunc("POST /login", s.handleLogin)
	s.mux.HandleFunc("POST /forgot-password", s.handleForgotPassword)
	s.mux.HandleFunc("POST /reset-password", s.handleResetPassword)

	// События календаря
	s.mux.HandleFunc("GET /events", s.requireUser(s.handleListEvents))
	s.mux.HandleFunc("POST /events", s.requireUser(s.handleCreateEvent))
	s.mux.HandleFunc("GET /events/week_view", s.requireUser(s.handleWeekView))
	s.mux.HandleFunc("GET /events/month_view", s.requireUser(s.handleMonthView))
	s.mux.HandleFunc("GET /events/{id}", s.requireUser(s.handleGetEvent))
	s.mux.HandleFunc("PUT /events/{id}", s.requireUser(s.handleUpdateEvent))
	s.mux.HandleFunc("PATCH /events/{id}", s.requireUser(s.handleUpdateEvent))
	s.mux.HandleFunc("DELETE /events/{id}", s.requireUser(s.handleDeleteEvent))
	s.mux.HandleFunc("POST /events/{id}/mark_completed", s.requireUser(s.handleMarkCompleted))
	s.mux.HandleFunc("POST /events/{id}/add_attendee", s.requireUser(s.handleAddAttendee))
	s.mux.HandleFunc("POST /events/{id}/remove_attendee", s.requireUser(s.handleRemoveAttendee))

	// Повторяющиеся события
	s.mux.HandleFunc("GET /recurring-events", s.requireUser(s.handleListRecurrences))
	s.mux.HandleFunc("POST /recurring-events", s.requireUser(s.handleCreateRecurrence))
	s.mux.HandleFunc("GET /recurring-events/{id}", s.requireUser(s.handleGetRecurrence))
	s.mux.HandleFunc("PUT /recurring-events/{id}", s.requireUser(s.handleUpdateRecurrence))
	s.mux.HandleFunc("PATCH /recurring-events/{id}", s.requireUser(s.handleUpdateRecurrence))
	s.mux.HandleFunc("DELETE /recurring-events/{id}", s.requireUser(s.handleDeleteRecurrence))
	s.mux.HandleFunc("GET /recurring-events/{id}/occurrences", s.requireUser(s.handleOccurrences))

	// Напоминания
	s.mux.HandleFunc("GET /reminders", s.requireUser(s.handleListReminders))
	s.mux.HandleFunc("POST /reminders", s.requireUser(s.handleCreateReminder))
	s.mux.HandleFunc("GET /reminders/upcoming", s.requireUser(s.handleUpcomingReminders))
	s.mux.HandleFunc("GET /reminders/{id}", s.requireUser(s.handleGetReminder))
	s.mux.HandleFunc("PUT /reminders/{id}", s.requireUser(s.handleUpdateReminder))
	s.mux.HandleFunc("PATCH /reminders/{id}", s.requireUser(s.handleUpdateReminder))
	s.mux.HandleFunc("DELETE /reminders/{id}", s.requireUser(s.handleDeleteReminder))
}
