package audit

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"role-validation-bot/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestPostgresRecorder_EnsureSchema(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS decision_audit")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, NewPostgresRecorder(db).EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRecorder_Record(t *testing.T) {
	db, mock := setupMockDB(t)
	decidedAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO decision_audit")).
		WithArgs("g1", "m1", "u1", "staff", "accept", "Ada Lovelace", "10,11", "12", decidedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := NewPostgresRecorder(db).Record(context.Background(), models.DecisionRecord{
		GuildID:          "g1",
		MessageID:        "m1",
		MemberID:         "u1",
		ActorID:          "staff",
		Action:           models.DecisionAccept,
		Nickname:         "Ada Lovelace",
		RoleIDs:          []string{"10", "11"},
		ValidationRoleID: "12",
		DecidedAt:        decidedAt,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRecorder_RecordError(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO decision_audit")).
		WillReturnError(errors.New("connection reset"))

	err := NewPostgresRecorder(db).Record(context.Background(), models.DecisionRecord{Action: models.DecisionDeny})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert decision_audit")
}

func TestNopRecorder(t *testing.T) {
	assert.NoError(t, NopRecorder{}.Record(context.Background(), models.DecisionRecord{}))
}
