package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"crmBackend/src/apperr"
	"crmBackend/src/db"
	"crmBackend/src/db/gorm_models"
)

// DefaultHorizon окно упреждения по умолчанию
const DefaultHorizon = 24 * time.Hour

// ReminderProvider работает с напоминаниями по событиям
type ReminderProvider struct {
	db  *gorm.DB
	now func() time.Time
}

func NewReminderProvider(db *gorm.DB) *ReminderProvider {
	return &ReminderProvider{db: db, now: time.Now}
}

// WithNow подменяет источник времени, используется в тестах
func (p *ReminderProvider) WithNow(now func() time.Time) *ReminderProvider {
	p.now = now
	return p
}

// ListReminders возвращает напоминания пользователя
func (p *ReminderProvider) ListReminders(ctx context.Context, user *gorm_models.User) ([]gorm_models.EventReminder, error) {
	var reminders []gorm_models.EventReminder
	err := p.db.WithContext(ctx).
		Where("id_user = ?", user.IDUser).
		Preload("Event").
		Order("reminder_datetime").
		Find(&reminders).Error
	if err != nil {
		return nil, err
	}
	return reminders, nil
}

// GetReminder находит напоминание пользователя по идентификатору
func (p *ReminderProvider) GetReminder(ctx context.Context, user *gorm_models.User, id int64) (*gorm_models.EventReminder, error) {
	var reminder gorm_models.EventReminder
	err := p.db.WithContext(ctx).
		Where("id_reminder = ? AND id_user = ?", id, user.IDUser).
		Preload("Event").
		First(&reminder).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: reminder %d", apperr.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &reminder, nil
}

// CreateReminder сохраняет напоминание от имени пользователя.
// Владелец всегда действующий пользователь, флаг отправки сбрасывается.
func (p *ReminderProvider) CreateReminder(ctx context.Context, user *gorm_models.User, reminder *gorm_models.EventReminder) error {
	var exists int64
	err := p.db.WithContext(ctx).
		Model(&gorm_models.CalendarEvent{}).
		Where("id_event = ?", reminder.IDEvent).
		Count(&exists).Error
	if err != nil {
		return err
	}
	if exists == 0 {
		return fmt.Errorf("%w: event %d", apperr.ErrNotFound, reminder.IDEvent)
	}

	reminder.IDReminder = 0
	reminder.IDUser = user.IDUser
	reminder.Event = nil
	reminder.IsSent = false
	reminder.SentAt = nil
	if err := p.db.WithContext(ctx).Create(reminder).Error; err != nil {
		if db.IsDuplicate(err) {
			return fmt.Errorf("%w: reminder already exists for this event and time", apperr.ErrValidation)
		}
		return err
	}
	return nil
}

// UpdateReminder переносит момент срабатывания. Флаг и время отправки
// через API не меняются.
func (p *ReminderProvider) UpdateReminder(ctx context.Context, user *gorm_models.User, id int64, at time.Time) (*gorm_models.EventReminder, error) {
	reminder, err := p.GetReminder(ctx, user, id)
	if err != nil {
		return nil, err
	}
	err = p.db.WithContext(ctx).
		Model(&gorm_models.EventReminder{}).
		Where("id_reminder = ?", reminder.IDReminder).
		Update("reminder_datetime", at).Error
	if err != nil {
		return nil, err
	}
	reminder.ReminderDatetime = at
	return reminder, nil
}

// DeleteReminder удаляет напоминание пользователя
func (p *ReminderProvider) DeleteReminder(ctx context.Context, user *gorm_models.User, id int64) error {
	reminder, err := p.GetReminder(ctx, user, id)
	if err != nil {
		return err
	}
	return p.db.WithContext(ctx).
		Delete(&gorm_models.EventReminder{}, "id_reminder = ?", reminder.IDReminder).Error
}

// DueReminders возвращает неотправленные напоминания пользователя с
// моментом срабатывания в окне [now, now+horizon], по возрастанию времени
func (p *ReminderProvider) DueReminders(ctx context.Context, user *gorm_models.User, horizon time.Duration) ([]gorm_models.EventReminder, error) {
	if horizon <= 0 {
		horizon = DefaultHorizon
	}
	now := p.now()

	var reminders []gorm_models.EventReminder
	err := p.db.WithContext(ctx).
		Where("id_user = ? AND is_sent = ? AND reminder_datetime >= ? AND reminder_datetime <= ?",
			user.IDUser, false, now, now.Add(horizon)).
		Preload("Event").
		Order("reminder_datetime").
		Find(&reminders).Error
	if err != nil {
		return nil, err
	}
	return reminders, nil
}

// PendingDispatch возвращает напоминания, срок которых наступил и которые
// ещё не отправлены. Используется диспетчером.
func (p *ReminderProvider) PendingDispatch(ctx context.Context) ([]gorm_models.EventReminder, error) {
	var reminders []gorm_models.EventReminder
	err := p.db.WithContext(ctx).
		Where("is_sent = ? AND reminder_datetime <= ?", false, p.now()).
		Preload("Event").
		Preload("User").
		Order("reminder_datetime").
		Find(&reminders).Error
	if err != nil {
		return nil, err
	}
	return reminders, nil
}

// MarkSent помечает напоминание отправленным не более одного раза.
// Условный UPDATE гарантирует, что конкурирующие проходы диспетчера не
// отправят одно напоминание дважды: перехватывает строку только тот, кто
// первым переключил is_sent. Возвращает true, если пометка произошла
// в этом вызове.
func (p *ReminderProvider) MarkSent(ctx context.Context, reminder *gorm_models.EventReminder) (bool, error) {
	sentAt := p.now()
	result := p.db.WithContext(ctx).
		Model(&gorm_models.EventReminder{}).
		Where("id_reminder = ? AND is_sent = ?", reminder.IDReminder, false).
		Updates(map[string]interface{}{
			"is_sent": true,
			"sent_at": sentAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		// Уже помечено другим проходом, sent_at не трогаем
		return false, p.db.WithContext(ctx).
			First(reminder, "id_reminder = ?", reminder.IDReminder).Error
	}
	reminder.IsSent = true
	reminder.SentAt = &sentAt
	return true, nil
}
