package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upNewRecurringEventTable, downNewRecurringEventTable)
}

func upNewRecurringEventTable(ctx context.Context, tx *sql.Tx) error {
	// This code is executed when the migration is applied.
	_, err := tx.ExecContext(ctx, `
		CREATE TABLE crm_recurring_event(
    		id_recurring BIGSERIAL PRIMARY KEY,
    		id_event bigint NOT NULL UNIQUE REFERENCES crm_calendar_event(id_event) ON DELETE CASCADE,
    		pattern VARCHAR(10) NOT NULL
    			CHECK (pattern IN ('daily','weekly','monthly','yearly')),
    		interval integer NOT NULL DEFAULT 1 CHECK (interval >= 1),
    		end_date TIMESTAMPTZ,
    		occurrences integer,
    		weekdays text
		);
	`)
	if err != nil {
		return err
	}
	return nil
}

func downNewRecurringEventTable(ctx context.Context, tx *sql.Tx) error {
	// This code is executed when the migration is rolled back.
	_, err := tx.ExecContext(ctx, `
		DROP TABLE crm_recurring_event;
	`)
	if err != nil {
		return err
	}
	return nil
}
