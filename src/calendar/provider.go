package calendar

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"crmBackend/src/apperr"
	"crmBackend/src/db/gorm_models"
)

// EventProvider - the provider that works with calendar events in database
type EventProvider struct {
	db *gorm.DB
}

func NewEventProvider(db *gorm.DB) *EventProvider {
	return &EventProvider{db: db}
}

// EventFilters дополнительные фильтры списка событий
type EventFilters struct {
	EventType   string
	IsCompleted *bool
	// Date вместе с View ограничивают выборку окном календаря
	Date     *time.Time
	View     Granularity
	Search   string
	Ordering string
}

// допустимые поля сортировки списка
var orderingColumns = map[string]string{
	"start_datetime": "start_datetime",
	"created_at":     "created_at",
	"priority":       "priority",
}

// visibleQuery базовый предикат видимости: создатель или участник
func (p *EventProvider) visibleQuery(ctx context.Context, user *gorm_models.User) *gorm.DB {
	return p.db.WithContext(ctx).
		Model(&gorm_models.CalendarEvent{}).
		Distinct("crm_calendar_event.*").
		Joins("LEFT JOIN crm_event_attendee ON crm_event_attendee.id_event = crm_calendar_event.id_event").
		Where("crm_calendar_event.created_by = ? OR crm_event_attendee.id_user = ?", user.IDUser, user.IDUser)
}

// VisibleEvents возвращает события, видимые пользователю, с учётом фильтров.
// Окно календаря сравнивается только с началом события: событие попадает в
// окно, если оно в нём начинается. Так вела себя исходная система, и это
// поведение закреплено тестами.
func (p *EventProvider) VisibleEvents(ctx context.Context, user *gorm_models.User, filters EventFilters) ([]gorm_models.CalendarEvent, error) {
	query := p.visibleQuery(ctx, user)

	if filters.EventType != "" {
		query = query.Where("event_type = ?", filters.EventType)
	}
	if filters.IsCompleted != nil {
		query = query.Where("is_completed = ?", *filters.IsCompleted)
	}
	if filters.Search != "" {
		pattern := "%" + strings.ToLower(filters.Search) + "%"
		query = query.Where(
			"LOWER(title) LIKE ? OR LOWER(COALESCE(description, '')) LIKE ? OR LOWER(COALESCE(location, '')) LIKE ?",
			pattern, pattern, pattern,
		)
	}

	if filters.Date != nil && filters.View != "" {
		loc := LoadUserLocation(user.Timezone)
		start, end, err := ResolveWindow(*filters.Date, filters.View, loc)
		if err != nil {
			return nil, err
		}
		query = query.Where("start_datetime >= ? AND start_datetime <= ?", start, end)
	}

	order := "start_datetime"
	if filters.Ordering != "" {
		field := strings.TrimPrefix(filters.Ordering, "-")
		column, ok := orderingColumns[field]
		if !ok {
			return nil, fmt.Errorf("%w: unknown ordering %q", apperr.ErrValidation, filters.Ordering)
		}
		order = column
		if strings.HasPrefix(filters.Ordering, "-") {
			order += " DESC"
		}
	}

	var events []gorm_models.CalendarEvent
	err := query.
		Preload("Creator").
		Preload("Attendees").
		Order(order).
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

// EventsInWindow возвращает видимые события, начинающиеся внутри окна
func (p *EventProvider) EventsInWindow(ctx context.Context, user *gorm_models.User, start, end time.Time) ([]gorm_models.CalendarEvent, error) {
	var events []gorm_models.CalendarEvent
	err := p.visibleQuery(ctx, user).
		Where("start_datetime >= ? AND start_datetime <= ?", start, end).
		Preload("Creator").
		Preload("Attendees").
		Order("start_datetime").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

// GetEvent находит событие по идентификатору в пределах видимости пользователя
func (p *EventProvider) GetEvent(ctx context.Context, user *gorm_models.User, id int64) (*gorm_models.CalendarEvent, error) {
	var event gorm_models.CalendarEvent
	err := p.visibleQuery(ctx, user).
		Where("crm_calendar_event.id_event = ?", id).
		Preload("Creator").
		Preload("Attendees").
		First(&event).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: event %d", apperr.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// CreateEvent сохраняет событие от имени пользователя.
// Создатель всегда берётся из действующего пользователя.
func (p *EventProvider) CreateEvent(ctx context.Context, user *gorm_models.User, event *gorm_models.CalendarEvent, attendeeIDs []int64) error {
	event.IDEvent = 0
	event.CreatedBy = user.IDUser
	event.Creator = nil
	event.Attendees = nil

	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(event).Error; err != nil {
			return err
		}
		for _, attendeeID := range attendeeIDs {
			if err := addAttendeeTx(tx, event.IDEvent, attendeeID); err != nil {
				return err
			}
		}
		return nil
	})
}

// UpdateEvent сохраняет изменения события. Создатель и время создания
// неизменяемы.
func (p *EventProvider) UpdateEvent(ctx context.Context, event *gorm_models.CalendarEvent) error {
	return p.db.WithContext(ctx).
		Omit("created_by", "created_at", "Creator", "Attendees").
		Save(event).Error
}

// DeleteEvent удаляет событие вместе с повторением и напоминаниями
func (p *EventProvider) DeleteEvent(ctx context.Context, user *gorm_models.User, id int64) error {
	event, err := p.GetEvent(ctx, user, id)
	if err != nil {
		return err
	}

	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id_event = ?", event.IDEvent).Delete(&gorm_models.EventReminder{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id_event = ?", event.IDEvent).Delete(&gorm_models.RecurringEvent{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id_event = ?", event.IDEvent).Delete(&gorm_models.EventAttendee{}).Error; err != nil {
			return err
		}
		return tx.Delete(&gorm_models.CalendarEvent{}, "id_event = ?", event.IDEvent).Error
	})
}

// MarkCompleted помечает событие выполненным
func (p *EventProvider) MarkCompleted(ctx context.Context, user *gorm_models.User, id int64) (*gorm_models.CalendarEvent, error) {
	event, err := p.GetEvent(ctx, user, id)
	if err != nil {
		return nil, err
	}
	event.IsCompleted = true
	if err := p.UpdateEvent(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// AddAttendee добавляет участника к событию. Повторное добавление - no-op.
func (p *EventProvider) AddAttendee(ctx context.Context, user *gorm_models.User, eventID, targetUserID int64) (*gorm_models.CalendarEvent, error) {
	if _, err := p.GetEvent(ctx, user, eventID); err != nil {
		return nil, err
	}
	if err := p.requireUser(ctx, targetUserID); err != nil {
		return nil, err
	}
	if err := addAttendeeTx(p.db.WithContext(ctx), eventID, targetUserID); err != nil {
		return nil, err
	}
	return p.GetEvent(ctx, user, eventID)
}

// RemoveAttendee удаляет участника события. Отсутствующий участник - no-op.
func (p *EventProvider) RemoveAttendee(ctx context.Context, user *gorm_models.User, eventID, targetUserID int64) (*gorm_models.CalendarEvent, error) {
	if _, err := p.GetEvent(ctx, user, eventID); err != nil {
		return nil, err
	}
	if err := p.requireUser(ctx, targetUserID); err != nil {
		return nil, err
	}
	err := p.db.WithContext(ctx).
		Where("id_event = ? AND id_user = ?", eventID, targetUserID).
		Delete(&gorm_models.EventAttendee{}).Error
	if err != nil {
		return nil, err
	}
	return p.GetEvent(ctx, user, eventID)
}

func (p *EventProvider) requireUser(ctx context.Context, userID int64) error {
	var count int64
	err := p.db.WithContext(ctx).
		Model(&gorm_models.User{}).
		Where("id_user = ?", userID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("%w: user %d", apperr.ErrUserNotFound, userID)
	}
	return nil
}

func addAttendeeTx(tx *gorm.DB, eventID, userID int64) error {
	var count int64
	err := tx.Model(&gorm_models.EventAttendee{}).
		Where("id_event = ? AND id_user = ?", eventID, userID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return tx.Create(&gorm_models.EventAttendee{IDEvent: eventID, IDUser: userID}).Error
}
