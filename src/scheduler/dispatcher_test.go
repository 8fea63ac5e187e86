package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"

	"crmBackend/src/mail/mocks"
)

func TestDispatchDue_AtMostOnce(t *testing.T) {
	gdb := openTestDB(t)
	user, event := seedUserAndEvent(t, gdb)

	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	provider := NewReminderProvider(gdb).WithNow(func() time.Time { return now })
	seedReminder(t, gdb, user, event, now.Add(-5*time.Minute))

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mailer := mocks.NewMockMailer(ctrl)
	// Письмо уходит ровно один раз, сколько бы проходов ни было
	mailer.EXPECT().
		Send(user.Email, "Event Reminder", gomock.Any()).
		Return(nil).
		Times(1)

	dispatcher := NewDispatcher(provider, mailer, "* * * * *")
	for i := 0; i < 2; i++ {
		if err := dispatcher.DispatchDue(context.Background()); err != nil {
			t.Fatalf("DispatchDue() #%d error = %v", i+1, err)
		}
	}
}

func TestDispatchDue_SkipsFutureReminders(t *testing.T) {
	gdb := openTestDB(t)
	user, event := seedUserAndEvent(t, gdb)

	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	provider := NewReminderProvider(gdb).WithNow(func() time.Time { return now })
	seedReminder(t, gdb, user, event, now.Add(time.Hour))

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mailer := mocks.NewMockMailer(ctrl)
	// Срок не наступил - отправки нет

	dispatcher := NewDispatcher(provider, mailer, "* * * * *")
	if err := dispatcher.DispatchDue(context.Background()); err != nil {
		t.Fatalf("DispatchDue() error = %v", err)
	}
}
