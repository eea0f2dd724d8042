package repository

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/pesio-ai/be-tbc-triage/internal/platform/errors"
	"github.com/pesio-ai/be-tbc-triage/internal/wizard"
)

// PostgresSessionStore keeps wizard sessions in wizard_sessions.
type PostgresSessionStore struct {
	db DB
}

// NewPostgresSessionStore creates a new PostgresSessionStore.
func NewPostgresSessionStore(db DB) *PostgresSessionStore {
	return &PostgresSessionStore{db: db}
}

// Save inserts or replaces a session.
func (r *PostgresSessionStore) Save(ctx context.Context, rec *SessionRecord) error {
	contextJSON, err := json.Marshal(rec.State.Context)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to marshal session context")
	}

	query := `
		INSERT INTO wizard_sessions (id, step_id, context, completion, submitted)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET step_id    = EXCLUDED.step_id,
		    context    = EXCLUDED.context,
		    completion = EXCLUDED.completion,
		    submitted  = GREATEST(wizard_sessions.submitted, EXCLUDED.submitted),
		    updated_at = now()
		RETURNING created_at, updated_at
	`

	err = r.db.QueryRow(ctx, query,
		rec.ID,
		rec.State.StepID,
		contextJSON,
		int64(rec.State.Completion),
		int64(rec.State.Submitted),
	).Scan(&rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to save session")
	}
	return nil
}

// Get returns a session by id.
func (r *PostgresSessionStore) Get(ctx context.Context, id string) (*SessionRecord, error) {
	query := `
		SELECT id, step_id, context, completion, submitted, created_at, updated_at
		FROM wizard_sessions
		WHERE id = $1
	`

	rec := &SessionRecord{}
	var (
		contextJSON []byte
		completion  int64
		submitted   int64
	)
	err := r.db.QueryRow(ctx, query, id).Scan(
		&rec.ID,
		&rec.State.StepID,
		&contextJSON,
		&completion,
		&submitted,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if stderrors.Is(err, pgx.ErrNoRows) {
		return nil, errors.NotFound("session")
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to get session")
	}

	ctxState := wizard.NewContext()
	if err := json.Unmarshal(contextJSON, &ctxState); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to unmarshal session context")
	}
	rec.State.Context = ctxState.Clone()
	rec.State.Completion = uint64(completion)
	rec.State.Submitted = uint64(submitted)
	return rec, nil
}

// Delete removes a session.
func (r *PostgresSessionStore) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM wizard_sessions WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to delete session")
	}
	if tag.RowsAffected() == 0 {
		return errors.NotFound("session")
	}
	return nil
}

// DeleteIdle removes sessions last updated before the given time.
func (r *PostgresSessionStore) DeleteIdle(ctx context.Context, before time.Time) ([]string, error) {
	rows, err := r.db.Query(ctx, `DELETE FROM wizard_sessions WHERE updated_at < $1 RETURNING id`, before)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to delete idle sessions")
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to scan session id")
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to delete idle sessions")
	}
	return ids, nil
}
