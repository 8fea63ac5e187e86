package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upNewPasswordResetTokenTable, downNewPasswordResetTokenTable)
}

func upNewPasswordResetTokenTable(ctx context.Context, tx *sql.Tx) error {
	// This code is executed when the migration is applied.
	_, err := tx.ExecContext(ctx, `
		CREATE TABLE crm_password_reset_token(
    		id_token BIGSERIAL PRIMARY KEY,
    		id_user bigint NOT NULL REFERENCES crm_user(id_user) ON DELETE CASCADE,
    		token text NOT NULL UNIQUE,
    		expires_at TIMESTAMPTZ NOT NULL,
    		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
	`)
	if err != nil {
		return err
	}
	return nil
}

func downNewPasswordResetTokenTable(ctx context.Context, tx *sql.Tx) error {
	// This code is executed when the migration is rolled back.
	_, err := tx.ExecContext(ctx, `
		DROP TABLE crm_password_reset_token;
	`)
	if err != nil {
		return err
	}
	return nil
}
