package repository

import (
	"context"

	"github.com/pesio-ai/be-tbc-triage/internal/platform/errors"
)

const schema = `
CREATE TABLE IF NOT EXISTS wizard_sessions (
    id          UUID PRIMARY KEY,
    step_id     INTEGER     NOT NULL,
    context     JSONB       NOT NULL,
    completion  BIGINT      NOT NULL DEFAULT 0,
    submitted   BIGINT      NOT NULL DEFAULT 0,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

ALTER TABLE wizard_sessions ADD COLUMN IF NOT EXISTS submitted BIGINT NOT NULL DEFAULT 0;

CREATE INDEX IF NOT EXISTS wizard_sessions_updated_at_idx ON wizard_sessions (updated_at);

CREATE TABLE IF NOT EXISTS wizard_audit_log (
    id            BIGSERIAL PRIMARY KEY,
    session_id    UUID        NOT NULL,
    action        TEXT        NOT NULL,
    from_step_id  INTEGER,
    to_step_id    INTEGER,
    succeeded     BOOLEAN     NOT NULL,
    error         TEXT,
    metadata      JSONB,
    performed_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS wizard_audit_log_session_idx ON wizard_audit_log (session_id, performed_at);
`

// EnsureSchema creates the tables used by the Postgres stores
func EnsureSchema(ctx context.Context, db DB) error {
	if _, err := db.Exec(ctx, schema); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to create schema")
	}
	return nil
}
