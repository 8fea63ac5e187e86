package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upNewEventReminderTable, downNewEventReminderTable)
}

func upNewEventReminderTable(ctx context.Context, tx *sql.Tx) error {
	// This code is executed when the migration is applied.
	_, err := tx.ExecContext(ctx, `
		CREATE TABLE crm_event_reminder(
    		id_reminder BIGSERIAL PRIMARY KEY,
    		id_event bigint NOT NULL REFERENCES crm_calendar_event(id_event) ON DELETE CASCADE,
    		id_user bigint NOT NULL REFERENCES crm_user(id_user) ON DELETE CASCADE,
    		reminder_datetime TIMESTAMPTZ NOT NULL,
    		is_sent boolean NOT NULL DEFAULT false,
    		sent_at TIMESTAMPTZ,
    		UNIQUE (id_event, id_user, reminder_datetime)
		);
		CREATE INDEX idx_reminder_user ON crm_event_reminder(id_user);
		CREATE INDEX idx_reminder_datetime ON crm_event_reminder(reminder_datetime);
	`)
	if err != nil {
		return err
	}
	return nil
}

func downNewEventReminderTable(ctx context.Context, tx *sql.Tx) error {
	// This code is executed when the migration is rolled back.
	_, err := tx.ExecContext(ctx, `
		DROP TABLE crm_event_reminder;
	`)
	if err != nil {
		return err
	}
	return nil
}
