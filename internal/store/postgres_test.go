package store

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leads-cli/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

func anyArgs(n int) []any {
	args := make([]any, n)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}

func TestPostgresStore_ResolveQuery_Existing(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM search_queries WHERE source = \$1 AND entity_type = \$2 AND normalized_query = \$3`).
		WithArgs("linkedin_people_google", model.EntityPerson, "cto berlin").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("q-1"))
	mock.ExpectExec(`UPDATE search_queries SET last_executed_at = \$1 WHERE id = \$2`).
		WithArgs(pgxmock.AnyArg(), "q-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	id, err := s.ResolveQuery(context.Background(), "linkedin_people_google", model.EntityPerson, "  CTO   Berlin ")
	require.NoError(t, err)
	assert.Equal(t, "q-1", id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ResolveQuery_New(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM search_queries`).
		WithArgs("linkedin_people_jina", model.EntityPerson, "cto berlin").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectExec(`INSERT INTO search_queries`).
		WithArgs(anyArgs(7)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	id, err := s.ResolveQuery(context.Background(), "linkedin_people_jina", model.EntityPerson, "CTO Berlin")
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_PersonByURL_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`FROM v_people_with_company WHERE linkedin_profile = \$1`).
		WithArgs("https://linkedin.com/in/nobody").
		WillReturnError(pgx.ErrNoRows)

	v, err := s.PersonByURL(context.Background(), "https://www.linkedin.com/in/Nobody/")
	require.NoError(t, err)
	assert.Nil(t, v)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_EnrichCompany_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM companies WHERE id = \$1`).
		WithArgs("Nobody GmbH").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(`FROM companies WHERE lower\(name\) = lower\(\$1\)`).
		WithArgs("Nobody GmbH").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()

	err := s.EnrichCompany(context.Background(), "Nobody GmbH", model.Enrichment{SizeEmployees: "1-10"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrCompanyNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_IngestBatch_ConstraintRollsBack(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM people WHERE linkedin_profile = \$1`).
		WithArgs("https://linkedin.com/in/jane-doe").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectExec(`INSERT INTO people`).
		WithArgs(anyArgs(21)...).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})
	mock.ExpectRollback()

	_, err := s.IngestBatch(context.Background(), []model.Person{{
		ProfileURL: "https://linkedin.com/in/jane-doe",
		FirstName:  "Jane",
	}}, nil, model.QueryRef{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrStoreConstraint))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_PendingEnrichment_QueryError(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`FROM companies\s+WHERE last_enriched_at IS NULL`).
		WithArgs(50).
		WillReturnError(errors.New("connection reset"))

	_, err := s.PendingEnrichment(context.Background(), 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pending enrichment")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Migrate(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS search_queries`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
