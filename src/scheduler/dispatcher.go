package scheduler

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"

	"crmBackend/src/db/gorm_models"
	"crmBackend/src/mail"
)

// Dispatcher периодически рассылает созревшие напоминания по почте
type Dispatcher struct {
	provider *ReminderProvider
	mailer   mail.Mailer
	cron     *cron.Cron
	spec     string
}

func NewDispatcher(provider *ReminderProvider, mailer mail.Mailer, cronSpec string) *Dispatcher {
	return &Dispatcher{
		provider: provider,
		mailer:   mailer,
		cron:     cron.New(),
		spec:     cronSpec,
	}
}

// Start запускает периодический проход диспетчера
func (d *Dispatcher) Start() error {
	_, err := d.cron.AddFunc(d.spec, func() {
		if err := d.DispatchDue(context.Background()); err != nil {
			log.Printf("Ошибка рассылки напоминаний: %v", err)
		}
	})
	if err != nil {
		return err
	}
	d.cron.Start()
	return nil
}

// Stop останавливает диспетчер и дожидается текущего прохода
func (d *Dispatcher) Stop() {
	<-d.cron.Stop().Done()
}

// DispatchDue рассылает все созревшие напоминания. Каждое напоминание
// сначала перехватывается условной пометкой, поэтому параллельный проход
// не приводит к повторной отправке.
func (d *Dispatcher) DispatchDue(ctx context.Context) error {
	pending, err := d.provider.PendingDispatch(ctx)
	if err != nil {
		return err
	}

	for i := range pending {
		reminder := &pending[i]
		claimed, err := d.provider.MarkSent(ctx, reminder)
		if err != nil {
			return err
		}
		if !claimed {
			continue
		}
		if err := d.send(reminder); err != nil {
			// Строка уже помечена, письмо потеряно - логируем, не дублируем
			log.Printf("Ошибка отправки напоминания %d: %v", reminder.IDReminder, err)
		}
	}
	return nil
}

func (d *Dispatcher) send(reminder *gorm_models.EventReminder) error {
	if reminder.User == nil || reminder.Event == nil {
		return fmt.Errorf("напоминание %d без события или пользователя", reminder.IDReminder)
	}
	body := fmt.Sprintf("Upcoming event: %s at %s",
		reminder.Event.Title,
		reminder.Event.StartDatetime.Format("2006-01-02 15:04"))
	return d.mailer.Send(reminder.User.Email, "Event Reminder", body)
}
