package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pesio-ai/be-tbc-triage/internal/wizard"
)

// ── Domain types for wizard persistence ──────────────────────────────────────

// SessionRecord is the persisted state of one wizard session.
type SessionRecord struct {
	ID        string
	State     wizard.Record
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Audit actions
const (
	ActionStart   = "start"
	ActionNext    = "next"
	ActionBack    = "back"
	ActionRetry   = "retry"
	ActionRestart = "restart"
	ActionDelete  = "delete"
	ActionExpire  = "expire"
)

// AuditEntry is one immutable navigation event of a session.
type AuditEntry struct {
	ID          int64          `json:"id"`
	SessionID   string         `json:"sessionId"`
	Action      string         `json:"action"`
	FromStepID  *int           `json:"fromStepId,omitempty"`
	ToStepID    *int           `json:"toStepId,omitempty"`
	Succeeded   bool           `json:"succeeded"`
	Error       *string        `json:"error,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	PerformedAt time.Time      `json:"performedAt"`
}

// SessionStore persists wizard sessions.
type SessionStore interface {
	Save(ctx context.Context, rec *SessionRecord) error
	Get(ctx context.Context, id string) (*SessionRecord, error)
	Delete(ctx context.Context, id string) error
	// DeleteIdle removes sessions not updated since before and returns
	// their ids.
	DeleteIdle(ctx context.Context, before time.Time) ([]string, error)
}

// AuditStore appends and reads navigation events.
type AuditStore interface {
	Append(ctx context.Context, entry *AuditEntry) error
	ListBySession(ctx context.Context, sessionID string) ([]*AuditEntry, error)
}

// DB is the subset of pgxpool.Pool the Postgres stores use. pgx.Tx
// satisfies it too.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}
