package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upNewCalendarEventTable, downNewCalendarEventTable)
}

func upNewCalendarEventTable(ctx context.Context, tx *sql.Tx) error {
	// This code is executed when the migration is applied.
	_, err := tx.ExecContext(ctx, `
		CREATE TABLE crm_calendar_event(
    		id_event BIGSERIAL PRIMARY KEY,
    		title text NOT NULL,
    		description text,
    		event_type VARCHAR(20) NOT NULL DEFAULT 'event'
    			CHECK (event_type IN ('event','task','meeting','scheduled','task_reminder')),
    		start_datetime TIMESTAMPTZ NOT NULL,
    		end_datetime TIMESTAMPTZ NOT NULL,
    		duration_minutes integer NOT NULL,
    		created_by bigint NOT NULL REFERENCES crm_user(id_user) ON DELETE CASCADE,
    		task_id bigint,
    		meeting_id bigint,
    		location text,
    		color_code VARCHAR(7) NOT NULL DEFAULT '#22c55e',
    		priority VARCHAR(10) NOT NULL DEFAULT 'medium'
    			CHECK (priority IN ('low','medium','high')),
    		is_all_day boolean NOT NULL DEFAULT false,
    		reminder_minutes integer,
    		is_completed boolean NOT NULL DEFAULT false,
    		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX idx_event_range ON crm_calendar_event(start_datetime, end_datetime);
		CREATE INDEX idx_event_type ON crm_calendar_event(event_type);
		CREATE INDEX idx_event_created_by ON crm_calendar_event(created_by);
	`)
	if err != nil {
		return err
	}
	return nil
}

func downNewCalendarEventTable(ctx context.Context, tx *sql.Tx) error {
	// This code is executed when the migration is rolled back.
	_, err := tx.ExecContext(ctx, `
		DROP TABLE crm_calendar_event;
	`)
	if err != nil {
		return err
	}
	return nil
}
