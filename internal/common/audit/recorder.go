// Package audit keeps a durable trail of applied validation decisions.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"role-validation-bot/internal/models"
)

// Recorder stores applied decisions.
type Recorder interface {
	Record(ctx context.Context, rec models.DecisionRecord) error
}

const createTableSQL = `
CREATE TABLE IF NOT EXISTS decision_audit (
	id                 BIGSERIAL PRIMARY KEY,
	guild_id           TEXT        NOT NULL,
	message_id         TEXT        NOT NULL,
	member_id          TEXT        NOT NULL,
	actor_id           TEXT        NOT NULL,
	action             TEXT        NOT NULL,
	nickname           TEXT        NOT NULL DEFAULT '',
	role_ids           TEXT        NOT NULL DEFAULT '',
	validation_role_id TEXT        NOT NULL DEFAULT '',
	decided_at         TIMESTAMPTZ NOT NULL,
	UNIQUE (guild_id, message_id)
)`

const insertSQL = `
INSERT INTO decision_audit
	(guild_id, message_id, member_id, actor_id, action, nickname, role_ids, validation_role_id, decided_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (guild_id, message_id) DO NOTHING`

// PostgresRecorder writes one row per decision request.
type PostgresRecorder struct {
	db *sql.DB
}

func NewPostgresRecorder(db *sql.DB) *PostgresRecorder {
	return &PostgresRecorder{db: db}
}

// EnsureSchema creates the audit table if it does not exist.
func (r *PostgresRecorder) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("create decision_audit: %w", err)
	}
	return nil
}

func (r *PostgresRecorder) Record(ctx context.Context, rec models.DecisionRecord) error {
	_, err := r.db.ExecContext(ctx, insertSQL,
		rec.GuildID,
		rec.MessageID,
		rec.MemberID,
		rec.ActorID,
		string(rec.Action),
		rec.Nickname,
		strings.Join(rec.RoleIDs, ","),
		rec.ValidationRoleID,
		rec.DecidedAt,
	)
	if err != nil {
		return fmt.Errorf("insert decision_audit: %w", err)
	}
	return nil
}

// NopRecorder discards records; used when auditing is disabled.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, models.DecisionRecord) error { return nil }
