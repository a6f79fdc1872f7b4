package postgres

import (
	"context"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/efactura-api/internal/domain"
	"github.com/jhoicas/efactura-api/internal/domain/entity"
)

// recordingQuerier registra los Exec; Query/QueryRow no se usan en estos tests.
type recordingQuerier struct {
	sql      []string
	args     [][]any
	affected int64
}

func (q *recordingQuerier) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	q.sql = append(q.sql, sql)
	q.args = append(q.args, args)
	return pgconn.NewCommandTag("UPDATE " + strconv.FormatInt(q.affected, 10)), nil
}

func (q *recordingQuerier) Query(context.Context, string, ...any) (pgx.Rows, error) {
	panic("no usado")
}

func (q *recordingQuerier) QueryRow(context.Context, string, ...any) pgx.Row {
	panic("no usado")
}

func TestInvoiceRepo_MarkSubmitted(t *testing.T) {
	q := &recordingQuerier{affected: 1}
	sentAt := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

	require.NoError(t, NewInvoiceRepository(q).MarkEFacturaSubmitted(context.Background(), "inv-1", "UP-9", sentAt))
	require.Len(t, q.sql, 1)
	assert.Contains(t, q.sql[0], "efactura_index_id  = NULL")
	assert.NotContains(t, q.sql[0], "efactura_xml", "el snapshot de un rechazo previo se conserva")
	assert.Equal(t, []any{"inv-1", entity.EFacturaStatusPending, "UP-9", sentAt}, q.args[0])
}

func TestInvoiceRepo_MarkRejected(t *testing.T) {
	q := &recordingQuerier{affected: 1}
	require.NoError(t, NewInvoiceRepository(q).MarkEFacturaRejected(context.Background(), "inv-1", "<Invoice/>"))
	assert.Equal(t, []any{"inv-1", entity.EFacturaStatusError, "<Invoice/>"}, q.args[0])
}

func TestInvoiceRepo_UpdateStatusKeepsDownloadID(t *testing.T) {
	q := &recordingQuerier{affected: 1}
	repo := NewInvoiceRepository(q)

	require.NoError(t, repo.UpdateEFacturaStatus(context.Background(), "inv-1", entity.EFacturaStatusProcessing, ""))
	assert.Nil(t, q.args[0][2], "id vacío -> NULL -> COALESCE conserva el actual")
	assert.True(t, strings.Contains(q.sql[0], "COALESCE($3, efactura_index_id)"))

	require.NoError(t, repo.UpdateEFacturaStatus(context.Background(), "inv-1", entity.EFacturaStatusValidated, "D-1"))
	got, ok := q.args[1][2].(*string)
	require.True(t, ok)
	assert.Equal(t, "D-1", *got)
}

func TestInvoiceRepo_NoRowsIsNotFound(t *testing.T) {
	q := &recordingQuerier{affected: 0}
	err := NewInvoiceRepository(q).MarkEFacturaRejected(context.Background(), "nope", "<x/>")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMigrationNames(t *testing.T) {
	names, err := MigrationNames()
	require.NoError(t, err)
	require.NotEmpty(t, names)
	assert.Equal(t, "migrations/001_efactura.sql", names[0])
}

func TestMigrate_ExecutesEmbeddedScripts(t *testing.T) {
	q := &recordingQuerier{affected: 1}
	require.NoError(t, Migrate(context.Background(), q))
	require.NotEmpty(t, q.sql)
	assert.Contains(t, q.sql[0], "CREATE TABLE IF NOT EXISTS certificate_configs")
}
