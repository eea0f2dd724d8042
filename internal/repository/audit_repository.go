package repository

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"

	"github.com/pesio-ai/be-tbc-triage/internal/platform/errors"
)

// PostgresAuditStore appends and reads navigation events in
// wizard_audit_log. Entries are never updated or deleted.
type PostgresAuditStore struct {
	db DB
}

// NewPostgresAuditStore creates a new PostgresAuditStore.
func NewPostgresAuditStore(db DB) *PostgresAuditStore {
	return &PostgresAuditStore{db: db}
}

// Append inserts one audit entry and fills its id and timestamp.
func (r *PostgresAuditStore) Append(ctx context.Context, entry *AuditEntry) error {
	var metadataJSON []byte
	if entry.Metadata != nil {
		var err error
		metadataJSON, err = json.Marshal(entry.Metadata)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeInternal, "failed to marshal audit metadata")
		}
	}

	query := `
		INSERT INTO wizard_audit_log
		    (session_id, action, from_step_id, to_step_id,
		     succeeded, error, metadata)
		VALUES ($1, $2, $3, $4,
		        $5, $6, $7)
		RETURNING id, performed_at
	`

	err := r.db.QueryRow(ctx, query,
		entry.SessionID,
		entry.Action,
		entry.FromStepID,
		entry.ToStepID,
		entry.Succeeded,
		entry.Error,
		metadataJSON,
	).Scan(&entry.ID, &entry.PerformedAt)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to append audit entry")
	}
	return nil
}

// ListBySession returns the trail of a session ordered oldest-first.
func (r *PostgresAuditStore) ListBySession(ctx context.Context, sessionID string) ([]*AuditEntry, error) {
	query := `
		SELECT id, session_id, action, from_step_id, to_step_id,
		       succeeded, error, metadata, performed_at
		FROM wizard_audit_log
		WHERE session_id = $1
		ORDER BY performed_at ASC, id ASC
	`

	rows, err := r.db.Query(ctx, query, sessionID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to get audit log")
	}
	defer rows.Close()

	return r.scanRows(rows)
}

// ── scan helpers ──────────────────────────────────────────────────────────────

func (r *PostgresAuditStore) scanRows(rows pgx.Rows) ([]*AuditEntry, error) {
	var entries []*AuditEntry
	for rows.Next() {
		entry, err := r.scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to read audit log")
	}
	return entries, nil
}

func (r *PostgresAuditStore) scanEntry(sc pgx.Row) (*AuditEntry, error) {
	entry := &AuditEntry{}
	var metadataJSON []byte

	err := sc.Scan(
		&entry.ID,
		&entry.SessionID,
		&entry.Action,
		&entry.FromStepID,
		&entry.ToStepID,
		&entry.Succeeded,
		&entry.Error,
		&metadataJSON,
		&entry.PerformedAt,
	)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to scan audit entry")
	}

	if metadataJSON != nil {
		if err := json.Unmarshal(metadataJSON, &entry.Metadata); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to unmarshal audit metadata")
		}
	}

	return entry, nil
}
