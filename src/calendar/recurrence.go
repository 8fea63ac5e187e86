package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
	"gorm.io/gorm"

	"crmBackend/src/apperr"
	"crmBackend/src/db/gorm_models"
)

// Защитный потолок на количество вхождений при развёртке
const maxOccurrences = 1000

// Дни недели исходной системы: 0=понедельник .. 6=воскресенье
var recurrenceWeekdays = []rrule.Weekday{
	rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA, rrule.SU,
}

var recurrenceFrequencies = map[string]rrule.Frequency{
	gorm_models.PatternDaily:   rrule.DAILY,
	gorm_models.PatternWeekly:  rrule.WEEKLY,
	gorm_models.PatternMonthly: rrule.MONTHLY,
	gorm_models.PatternYearly:  rrule.YEARLY,
}

// RecurrenceProvider работает с настройками повторения событий
type RecurrenceProvider struct {
	db *gorm.DB
}

func NewRecurrenceProvider(db *gorm.DB) *RecurrenceProvider {
	return &RecurrenceProvider{db: db}
}

// ownedQuery повторения видны только создателю базового события
func (p *RecurrenceProvider) ownedQuery(ctx context.Context, user *gorm_models.User) *gorm.DB {
	return p.db.WithContext(ctx).
		Model(&gorm_models.RecurringEvent{}).
		Joins("JOIN crm_calendar_event ON crm_calendar_event.id_event = crm_recurring_event.id_event").
		Where("crm_calendar_event.created_by = ?", user.IDUser)
}

// ListRecurrences возвращает повторения событий пользователя
func (p *RecurrenceProvider) ListRecurrences(ctx context.Context, user *gorm_models.User) ([]gorm_models.RecurringEvent, error) {
	var recurrences []gorm_models.RecurringEvent
	err := p.ownedQuery(ctx, user).
		Preload("BaseEvent").
		Find(&recurrences).Error
	if err != nil {
		return nil, err
	}
	return recurrences, nil
}

// GetRecurrence находит повторение по идентификатору
func (p *RecurrenceProvider) GetRecurrence(ctx context.Context, user *gorm_models.User, id int64) (*gorm_models.RecurringEvent, error) {
	var recurrence gorm_models.RecurringEvent
	err := p.ownedQuery(ctx, user).
		Where("crm_recurring_event.id_recurring = ?", id).
		Preload("BaseEvent").
		First(&recurrence).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: recurrence %d", apperr.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &recurrence, nil
}

// CreateRecurrence сохраняет настройку повторения.
// На одно базовое событие допускается ровно одна запись.
func (p *RecurrenceProvider) CreateRecurrence(ctx context.Context, user *gorm_models.User, recurrence *gorm_models.RecurringEvent) error {
	if err := validateRecurrence(recurrence); err != nil {
		return err
	}

	var owned int64
	err := p.db.WithContext(ctx).
		Model(&gorm_models.CalendarEvent{}).
		Where("id_event = ? AND created_by = ?", recurrence.IDEvent, user.IDUser).
		Count(&owned).Error
	if err != nil {
		return err
	}
	if owned == 0 {
		return fmt.Errorf("%w: event %d", apperr.ErrNotFound, recurrence.IDEvent)
	}

	var existing int64
	err = p.db.WithContext(ctx).
		Model(&gorm_models.RecurringEvent{}).
		Where("id_event = ?", recurrence.IDEvent).
		Count(&existing).Error
	if err != nil {
		return err
	}
	if existing > 0 {
		return fmt.Errorf("%w: event %d already has a recurrence", apperr.ErrValidation, recurrence.IDEvent)
	}

	recurrence.IDRecurring = 0
	recurrence.BaseEvent = nil
	return p.db.WithContext(ctx).Create(recurrence).Error
}

// UpdateRecurrence сохраняет изменения повторения
func (p *RecurrenceProvider) UpdateRecurrence(ctx context.Context, recurrence *gorm_models.RecurringEvent) error {
	if err := validateRecurrence(recurrence); err != nil {
		return err
	}
	return p.db.WithContext(ctx).
		Omit("id_event", "BaseEvent").
		Save(recurrence).Error
}

// DeleteRecurrence удаляет повторение
func (p *RecurrenceProvider) DeleteRecurrence(ctx context.Context, user *gorm_models.User, id int64) error {
	recurrence, err := p.GetRecurrence(ctx, user, id)
	if err != nil {
		return err
	}
	return p.db.WithContext(ctx).
		Delete(&gorm_models.RecurringEvent{}, "id_recurring = ?", recurrence.IDRecurring).Error
}

// Occurrences развёртывает повторение в конкретные моменты начала внутри
// включительного окна [from, to]
func (p *RecurrenceProvider) Occurrences(ctx context.Context, user *gorm_models.User, id int64, from, to time.Time) ([]time.Time, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("%w: to is before from", apperr.ErrValidation)
	}

	recurrence, err := p.GetRecurrence(ctx, user, id)
	if err != nil {
		return nil, err
	}
	if recurrence.BaseEvent == nil {
		return nil, fmt.Errorf("%w: event %d", apperr.ErrNotFound, recurrence.IDEvent)
	}

	rule, err := buildRule(recurrence, recurrence.BaseEvent.StartDatetime)
	if err != nil {
		return nil, err
	}

	occurrences := rule.Between(from, to, true)
	if len(occurrences) > maxOccurrences {
		occurrences = occurrences[:maxOccurrences]
	}
	return occurrences, nil
}

func validateRecurrence(recurrence *gorm_models.RecurringEvent) error {
	if _, ok := recurrenceFrequencies[recurrence.Pattern]; !ok {
		return fmt.Errorf("%w: unknown pattern %q", apperr.ErrValidation, recurrence.Pattern)
	}
	if recurrence.Interval < 1 {
		return fmt.Errorf("%w: interval must be >= 1", apperr.ErrValidation)
	}
	for _, weekday := range recurrence.Weekdays {
		if weekday < 0 || weekday > 6 {
			return fmt.Errorf("%w: weekday %d out of range", apperr.ErrValidation, weekday)
		}
	}
	return nil
}

func buildRule(recurrence *gorm_models.RecurringEvent, dtstart time.Time) (*rrule.RRule, error) {
	option := rrule.ROption{
		Freq:     recurrenceFrequencies[recurrence.Pattern],
		Interval: recurrence.Interval,
		Dtstart:  dtstart,
	}
	if recurrence.EndDate != nil {
		option.Until = *recurrence.EndDate
	}
	if recurrence.Occurrences != nil {
		option.Count = *recurrence.Occurrences
	}
	if recurrence.Pattern == gorm_models.PatternWeekly {
		for _, weekday := range recurrence.Weekdays {
			option.Byweekday = append(option.Byweekday, recurrenceWeekdays[weekday])
		}
	}
	return rrule.NewRRule(option)
}
