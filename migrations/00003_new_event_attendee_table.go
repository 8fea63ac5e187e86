package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upNewEventAttendeeTable, downNewEventAttendeeTable)
}

func upNewEventAttendeeTable(ctx context.Context, tx *sql.Tx) error {
	// This code is executed when the migration is applied.
	_, err := tx.ExecContext(ctx, `
		CREATE TABLE crm_event_attendee(
    		id_event bigint NOT NULL REFERENCES crm_calendar_event(id_event) ON DELETE CASCADE,
    		id_user bigint NOT NULL REFERENCES crm_user(id_user) ON DELETE CASCADE,
    		UNIQUE (id_event, id_user)
		);
		CREATE INDEX idx_attendee_user ON crm_event_attendee(id_user);
	`)
	if err != nil {
		return err
	}
	return nil
}

func downNewEventAttendeeTable(ctx context.Context, tx *sql.Tx) error {
	// This code is executed when the migration is rolled back.
	_, err := tx.ExecContext(ctx, `
		DROP TABLE crm_event_attendee;
	`)
	if err != nil {
		return err
	}
	return nil
}
