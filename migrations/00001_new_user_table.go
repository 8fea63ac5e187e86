package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upNewUserTable, downNewUserTable)
}

func upNewUserTable(ctx context.Context, tx *sql.Tx) error {
	// This code is executed when the migration is applied.
	_, err := tx.ExecContext(ctx, `
		CREATE TABLE crm_user(
    		id_user BIGSERIAL PRIMARY KEY,
    		user_name text NOT NULL UNIQUE,
    		email text NOT NULL UNIQUE,
    		password_hash text NOT NULL,
    		is_superuser boolean NOT NULL DEFAULT false,
    		timezone text NOT NULL DEFAULT '',
    		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
	`)
	if err != nil {
		return err
	}
	return nil
}

func downNewUserTable(ctx context.Context, tx *sql.Tx) error {
	// This code is executed when the migration is rolled back.
	_, err := tx.ExecContext(ctx, `
		DROP TABLE crm_user;
	`)
	if err != nil {
		return err
	}
	return nil
}
