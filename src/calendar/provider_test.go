package calendar

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"crmBackend/src/apperr"
	"crmBackend/src/db"
	"crmBackend/src/db/gorm_models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	gdb, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		t.Fatalf("gorm.Open() error = %v", err)
	}
	if err := db.SetupRelations(gdb); err != nil {
		t.Fatalf("SetupRelations() error = %v", err)
	}
	err = gdb.AutoMigrate(
		&gorm_models.User{},
		&gorm_models.CalendarEvent{},
		&gorm_models.RecurringEvent{},
		&gorm_models.EventReminder{},
		&gorm_models.PasswordResetToken{},
	)
	if err != nil {
		t.Fatalf("AutoMigrate() error = %v", err)
	}
	return gdb
}

func makeUser(t *testing.T, gdb *gorm.DB, name string) *gorm_models.User {
	t.Helper()
	user := gorm_models.User{
		UserName:     name,
		Email:        name + "@example.com",
		PasswordHash: "x",
	}
	if err := gdb.Create(&user).Error; err != nil {
		t.Fatalf("создание пользователя: %v", err)
	}
	return &user
}

func makeEvent(t *testing.T, p *EventProvider, user *gorm_models.User, title string, start, end time.Time) *gorm_models.CalendarEvent {
	t.Helper()
	event := gorm_models.CalendarEvent{
		Title:         title,
		EventType:     gorm_models.EventTypeEvent,
		StartDatetime: start,
		EndDatetime:   end,
		ColorCode:     "#22c55e",
		Priority:      gorm_models.PriorityMedium,
	}
	if err := p.CreateEvent(context.Background(), user, &event, nil); err != nil {
		t.Fatalf("создание события: %v", err)
	}
	return &event
}

func TestCreateEvent_DerivesDuration(t *testing.T) {
	gdb := openTestDB(t)
	provider := NewEventProvider(gdb)
	user := makeUser(t, gdb, "owner")

	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	// 125 минут 30 секунд: секунды усекаются, не округляются
	end := start.Add(125*time.Minute + 30*time.Second)
	event := makeEvent(t, provider, user, "Planning", start, end)

	if event.DurationMinutes != 125 {
		t.Errorf("DurationMinutes = %d, want 125", event.DurationMinutes)
	}
}

func TestCreateEvent_InvalidRange(t *testing.T) {
	gdb := openTestDB(t)
	provider := NewEventProvider(gdb)
	user := makeUser(t, gdb, "owner")
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	for _, end := range []time.Time{start, start.Add(-time.Hour)} {
		event := gorm_models.CalendarEvent{
			Title:         "Broken",
			StartDatetime: start,
			EndDatetime:   end,
			EventType:     gorm_models.EventTypeEvent,
			ColorCode:     "#22c55e",
			Priority:      gorm_models.PriorityMedium,
		}
		err := provider.CreateEvent(context.Background(), user, &event, nil)
		if !errors.Is(err, apperr.ErrInvalidRange) {
			t.Fatalf("error = %v, want ErrInvalidRange", err)
		}
	}

	var count int64
	gdb.Model(&gorm_models.CalendarEvent{}).Count(&count)
	if count != 0 {
		t.Errorf("событие с некорректным интервалом сохранено, count = %d", count)
	}
}

func TestCreateEvent_CreatorFromActingUser(t *testing.T) {
	gdb := openTestDB(t)
	provider := NewEventProvider(gdb)
	user := makeUser(t, gdb, "owner")

	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	event := gorm_models.CalendarEvent{
		Title:         "Spoofed",
		StartDatetime: start,
		EndDatetime:   start.Add(time.Hour),
		EventType:     gorm_models.EventTypeEvent,
		ColorCode:     "#22c55e",
		Priority:      gorm_models.PriorityMedium,
		CreatedBy:     9999, // клиентское поле игнорируется
	}
	if err := provider.CreateEvent(context.Background(), user, &event, nil); err != nil {
		t.Fatalf("CreateEvent() error = %v", err)
	}

	stored, err := provider.GetEvent(context.Background(), user, event.IDEvent)
	if err != nil {
		t.Fatalf("GetEvent() error = %v", err)
	}
	if stored.CreatedBy != user.IDUser {
		t.Errorf("CreatedBy = %d, want %d", stored.CreatedBy, user.IDUser)
	}
}

func TestUpdateEvent_RecomputesDurationAndKeepsCreator(t *testing.T) {
	gdb := openTestDB(t)
	provider := NewEventProvider(gdb)
	user := makeUser(t, gdb, "owner")

	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	event := makeEvent(t, provider, user, "Planning", start, start.Add(time.Hour))

	event.EndDatetime = start.Add(3 * time.Hour)
	event.CreatedBy = 9999
	if err := provider.UpdateEvent(context.Background(), event); err != nil {
		t.Fatalf("UpdateEvent() error = %v", err)
	}

	stored, err := provider.GetEvent(context.Background(), user, event.IDEvent)
	if err != nil {
		t.Fatalf("GetEvent() error = %v", err)
	}
	if stored.DurationMinutes != 180 {
		t.Errorf("DurationMinutes = %d, want 180", stored.DurationMinutes)
	}
	if stored.CreatedBy != user.IDUser {
		t.Errorf("создатель изменился: CreatedBy = %d, want %d", stored.CreatedBy, user.IDUser)
	}
}

func TestVisibleEvents_CreatorAttendeeStranger(t *testing.T) {
	gdb := openTestDB(t)
	provider := NewEventProvider(gdb)
	owner := makeUser(t, gdb, "owner")
	attendee := makeUser(t, gdb, "attendee")
	stranger := makeUser(t, gdb, "stranger")

	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	event := makeEvent(t, provider, owner, "Sync", start, start.Add(time.Hour))
	if _, err := provider.AddAttendee(context.Background(), owner, event.IDEvent, attendee.IDUser); err != nil {
		t.Fatalf("AddAttendee() error = %v", err)
	}

	for _, tc := range []struct {
		user *gorm_models.User
		want int
	}{
		{owner, 1},
		{attendee, 1},
		{stranger, 0},
	} {
		events, err := provider.VisibleEvents(context.Background(), tc.user, EventFilters{})
		if err != nil {
			t.Fatalf("VisibleEvents(%s) error = %v", tc.user.UserName, err)
		}
		if len(events) != tc.want {
			t.Errorf("VisibleEvents(%s) len = %d, want %d", tc.user.UserName, len(events), tc.want)
		}
	}
}

func TestVisibleEvents_NoDuplicateForCreatorAttendee(t *testing.T) {
	gdb := openTestDB(t)
	provider := NewEventProvider(gdb)
	owner := makeUser(t, gdb, "owner")

	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	event := makeEvent(t, provider, owner, "Solo", start, start.Add(time.Hour))
	// Создатель добавлен и участником - событие не должно задвоиться
	if _, err := provider.AddAttendee(context.Background(), owner, event.IDEvent, owner.IDUser); err != nil {
		t.Fatalf("AddAttendee() error = %v", err)
	}

	events, err := provider.VisibleEvents(context.Background(), owner, EventFilters{})
	if err != nil {
		t.Fatalf("VisibleEvents() error = %v", err)
	}
	if len(events) != 1 {
		t.Errorf("len = %d, want 1", len(events))
	}
}

// Окно календаря сравнивается только с началом события: событие,
// пересекающее окно, но начавшееся раньше, в выборку не попадает.
// Так вела себя исходная система.
func TestVisibleEvents_WindowMatchesStartOnly(t *testing.T) {
	gdb := openTestDB(t)
	provider := NewEventProvider(gdb)
	owner := makeUser(t, gdb, "owner")

	inside := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	makeEvent(t, provider, owner, "Inside", inside, inside.Add(time.Hour))

	// Начинается 14-го, заканчивается 15-го: пересекает окно, но не начинается в нём
	overlap := time.Date(2025, 1, 14, 23, 0, 0, 0, time.UTC)
	makeEvent(t, provider, owner, "Overlap", overlap, overlap.Add(3*time.Hour))

	date := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	events, err := provider.VisibleEvents(context.Background(), owner, EventFilters{
		Date: &date,
		View: GranularityDay,
	})
	if err != nil {
		t.Fatalf("VisibleEvents() error = %v", err)
	}
	if len(events) != 1 || events[0].Title != "Inside" {
		t.Fatalf("в окне должно быть только событие Inside, получено %d", len(events))
	}
}

func TestVisibleEvents_TypeAndCompletionFilters(t *testing.T) {
	gdb := openTestDB(t)
	provider := NewEventProvider(gdb)
	owner := makeUser(t, gdb, "owner")

	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	makeEvent(t, provider, owner, "Plain", start, start.Add(time.Hour))

	task := gorm_models.CalendarEvent{
		Title:         "Chore",
		EventType:     gorm_models.EventTypeTask,
		StartDatetime: start.Add(2 * time.Hour),
		EndDatetime:   start.Add(3 * time.Hour),
		ColorCode:     "#22c55e",
		Priority:      gorm_models.PriorityMedium,
		IsCompleted:   true,
	}
	if err := provider.CreateEvent(context.Background(), owner, &task, nil); err != nil {
		t.Fatalf("CreateEvent() error = %v", err)
	}

	byType, err := provider.VisibleEvents(context.Background(), owner, EventFilters{EventType: gorm_models.EventTypeTask})
	if err != nil {
		t.Fatalf("VisibleEvents() error = %v", err)
	}
	if len(byType) != 1 || byType[0].Title != "Chore" {
		t.Errorf("фильтр по типу вернул %d событий", len(byType))
	}

	completed := true
	byCompletion, err := provider.VisibleEvents(context.Background(), owner, EventFilters{IsCompleted: &completed})
	if err != nil {
		t.Fatalf("VisibleEvents() error = %v", err)
	}
	if len(byCompletion) != 1 || byCompletion[0].Title != "Chore" {
		t.Errorf("фильтр по завершённости вернул %d событий", len(byCompletion))
	}
}

func TestVisibleEvents_OrderedByStart(t *testing.T) {
	gdb := openTestDB(t)
	provider := NewEventProvider(gdb)
	owner := makeUser(t, gdb, "owner")

	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	makeEvent(t, provider, owner, "Later", base.Add(5*time.Hour), base.Add(6*time.Hour))
	makeEvent(t, provider, owner, "Earlier", base, base.Add(time.Hour))

	events, err := provider.VisibleEvents(context.Background(), owner, EventFilters{})
	if err != nil {
		t.Fatalf("VisibleEvents() error = %v", err)
	}
	if len(events) != 2 || events[0].Title != "Earlier" {
		t.Fatalf("события не упорядочены по началу: %+v", events)
	}
}

func TestVisibleEvents_Search(t *testing.T) {
	gdb := openTestDB(t)
	provider := NewEventProvider(gdb)
	owner := makeUser(t, gdb, "owner")

	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	makeEvent(t, provider, owner, "Budget review", base, base.Add(time.Hour))
	makeEvent(t, provider, owner, "Standup", base.Add(2*time.Hour), base.Add(3*time.Hour))
	description := "Quarterly planning"
	described := gorm_models.CalendarEvent{
		Title:         "Sync",
		Description:   &description,
		EventType:     gorm_models.EventTypeEvent,
		StartDatetime: base.Add(4 * time.Hour),
		EndDatetime:   base.Add(5 * time.Hour),
		ColorCode:     "#22c55e",
		Priority:      gorm_models.PriorityMedium,
	}
	if err := provider.CreateEvent(context.Background(), owner, &described, nil); err != nil {
		t.Fatalf("создание события: %v", err)
	}

	// Подстрока без учёта регистра по названию
	events, err := provider.VisibleEvents(context.Background(), owner, EventFilters{Search: "BUDGET"})
	if err != nil {
		t.Fatalf("VisibleEvents() error = %v", err)
	}
	if len(events) != 1 || events[0].Title != "Budget review" {
		t.Errorf("поиск по названию вернул %+v", titlesOf(events))
	}

	// Описание тоже участвует в поиске
	events, err = provider.VisibleEvents(context.Background(), owner, EventFilters{Search: "quarterly"})
	if err != nil {
		t.Fatalf("VisibleEvents() error = %v", err)
	}
	if len(events) != 1 || events[0].Title != "Sync" {
		t.Errorf("поиск по описанию вернул %+v", titlesOf(events))
	}

	events, err = provider.VisibleEvents(context.Background(), owner, EventFilters{Search: "retro"})
	if err != nil {
		t.Fatalf("VisibleEvents() error = %v", err)
	}
	if len(events) != 0 {
		t.Errorf("поиск без совпадений вернул %+v", titlesOf(events))
	}
}

func TestVisibleEvents_OrderingParam(t *testing.T) {
	gdb := openTestDB(t)
	provider := NewEventProvider(gdb)
	owner := makeUser(t, gdb, "owner")

	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	makeEvent(t, provider, owner, "First", base, base.Add(time.Hour))
	makeEvent(t, provider, owner, "Second", base.Add(2*time.Hour), base.Add(3*time.Hour))

	events, err := provider.VisibleEvents(context.Background(), owner, EventFilters{Ordering: "-start_datetime"})
	if err != nil {
		t.Fatalf("VisibleEvents() error = %v", err)
	}
	if len(events) != 2 || events[0].Title != "Second" {
		t.Fatalf("обратная сортировка вернула %+v", titlesOf(events))
	}

	_, err = provider.VisibleEvents(context.Background(), owner, EventFilters{Ordering: "password_hash"})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("неизвестная сортировка error = %v, want ErrValidation", err)
	}
}

func titlesOf(events []gorm_models.CalendarEvent) []string {
	titles := make([]string, 0, len(events))
	for _, event := range events {
		titles = append(titles, event.Title)
	}
	return titles
}

func TestAddAttendee_Idempotent(t *testing.T) {
	gdb := openTestDB(t)
	provider := NewEventProvider(gdb)
	owner := makeUser(t, gdb, "owner")
	attendee := makeUser(t, gdb, "attendee")

	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	event := makeEvent(t, provider, owner, "Sync", start, start.Add(time.Hour))

	for i := 0; i < 2; i++ {
		if _, err := provider.AddAttendee(context.Background(), owner, event.IDEvent, attendee.IDUser); err != nil {
			t.Fatalf("AddAttendee() #%d error = %v", i+1, err)
		}
	}

	var count int64
	gdb.Model(&gorm_models.EventAttendee{}).
		Where("id_event = ? AND id_user = ?", event.IDEvent, attendee.IDUser).
		Count(&count)
	if count != 1 {
		t.Errorf("записей участия = %d, want 1", count)
	}
}

func TestRemoveAttendee_AbsentIsNoop(t *testing.T) {
	gdb := openTestDB(t)
	provider := NewEventProvider(gdb)
	owner := makeUser(t, gdb, "owner")
	attendee := makeUser(t, gdb, "attendee")

	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	event := makeEvent(t, provider, owner, "Sync", start, start.Add(time.Hour))

	if _, err := provider.RemoveAttendee(context.Background(), owner, event.IDEvent, attendee.IDUser); err != nil {
		t.Fatalf("удаление отсутствующего участника должно быть no-op, error = %v", err)
	}
}

func TestAttendeeOps_UnknownUser(t *testing.T) {
	gdb := openTestDB(t)
	provider := NewEventProvider(gdb)
	owner := makeUser(t, gdb, "owner")

	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	event := makeEvent(t, provider, owner, "Sync", start, start.Add(time.Hour))

	if _, err := provider.AddAttendee(context.Background(), owner, event.IDEvent, 777); !errors.Is(err, apperr.ErrUserNotFound) {
		t.Errorf("AddAttendee error = %v, want ErrUserNotFound", err)
	}
	if _, err := provider.RemoveAttendee(context.Background(), owner, event.IDEvent, 777); !errors.Is(err, apperr.ErrUserNotFound) {
		t.Errorf("RemoveAttendee error = %v, want ErrUserNotFound", err)
	}
}

func TestDeleteEvent_CascadesRecurrenceAndReminders(t *testing.T) {
	gdb := openTestDB(t)
	provider := NewEventProvider(gdb)
	owner := makeUser(t, gdb, "owner")

	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	event := makeEvent(t, provider, owner, "Recurring sync", start, start.Add(time.Hour))

	recurrence := gorm_models.RecurringEvent{
		IDEvent:  event.IDEvent,
		Pattern:  gorm_models.PatternWeekly,
		Interval: 1,
	}
	if err := gdb.Create(&recurrence).Error; err != nil {
		t.Fatalf("создание повторения: %v", err)
	}
	reminder := gorm_models.EventReminder{
		IDEvent:          event.IDEvent,
		IDUser:           owner.IDUser,
		ReminderDatetime: start.Add(-15 * time.Minute),
	}
	if err := gdb.Create(&reminder).Error; err != nil {
		t.Fatalf("создание напоминания: %v", err)
	}

	if err := provider.DeleteEvent(context.Background(), owner, event.IDEvent); err != nil {
		t.Fatalf("DeleteEvent() error = %v", err)
	}

	var recurrences, reminders, events int64
	gdb.Model(&gorm_models.RecurringEvent{}).Count(&recurrences)
	gdb.Model(&gorm_models.EventReminder{}).Count(&reminders)
	gdb.Model(&gorm_models.CalendarEvent{}).Count(&events)
	if recurrences != 0 || reminders != 0 || events != 0 {
		t.Errorf("каскад не сработал: recurrences=%d reminders=%d events=%d", recurrences, reminders, events)
	}
}

func TestGetEvent_NotVisible(t *testing.T) {
	gdb := openTestDB(t)
	provider := NewEventProvider(gdb)
	owner := makeUser(t, gdb, "owner")
	stranger := makeUser(t, gdb, "stranger")

	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	event := makeEvent(t, provider, owner, "Private", start, start.Add(time.Hour))

	if _, err := provider.GetEvent(context.Background(), stranger, event.IDEvent); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("GetEvent чужого события: error = %v, want ErrNotFound", err)
	}
}

func TestMarkCompleted(t *testing.T) {
	gdb := openTestDB(t)
	provider := NewEventProvider(gdb)
	owner := makeUser(t, gdb, "owner")

	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	event := makeEvent(t, provider, owner, "Task", start, start.Add(time.Hour))

	updated, err := provider.MarkCompleted(context.Background(), owner, event.IDEvent)
	if err != nil {
		t.Fatalf("MarkCompleted() error = %v", err)
	}
	if !updated.IsCompleted {
		t.Error("IsCompleted = false, want true")
	}
}
