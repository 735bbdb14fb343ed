package store

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/sells-group/leads-cli/internal/model"
)

func TestRebind(t *testing.T) {
	assert.Equal(t, "SELECT 1", rebind("SELECT 1"))
	assert.Equal(t,
		"UPDATE people SET email = $1 WHERE id = $2",
		rebind("UPDATE people SET email = ? WHERE id = ?"),
	)
}

func TestClassifyWriteErr(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		constraint bool
	}{
		{"postgres unique", &pgconn.PgError{Code: "23505"}, true},
		{"postgres fk", &pgconn.PgError{Code: "23503"}, false},
		{"sqlite unique", errors.New("constraint failed: UNIQUE constraint failed: people.linkedin_profile (2067)"), true},
		{"other", errors.New("disk I/O error"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classifyWriteErr(tt.err, "insert person")
			assert.Error(t, err)
			assert.Equal(t, tt.constraint, errors.Is(err, model.ErrStoreConstraint))
			assert.Contains(t, err.Error(), "insert person")
		})
	}

	assert.NoError(t, classifyWriteErr(nil, "noop"))
}

func TestNormalizeQuery(t *testing.T) {
	assert.Equal(t, `site:linkedin.com/in "cto" "berlin"`, NormalizeQuery("  site:linkedin.com/in   \"CTO\"\t\"Berlin\" "))
	assert.Empty(t, NormalizeQuery(" \n "))
}

func TestEncodeDecodeList(t *testing.T) {
	v, err := encodeList(nil)
	assert.NoError(t, err)
	assert.Nil(t, v)

	v, err = encodeList([]string{"a", "b"})
	assert.NoError(t, err)
	assert.Equal(t, `["a","b"]`, v)
}
