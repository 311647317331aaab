package testdb

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTestDatabaseURL(t *testing.T) {
	t.Setenv(DatabaseURLEnv, "postgres://u:p@localhost/twit_test")
	assert.Equal(t, "postgres://u:p@localhost/twit_test", GetTestDatabaseURL())
}

func TestGetTestDBWithT_SkipsWithoutURL(t *testing.T) {
	t.Setenv(DatabaseURLEnv, "")
	ran := false
	t.Run("skipped", func(t *testing.T) {
		defer func() { ran = t.Skipped() }()
		GetTestDBWithT(t)
	})
	assert.True(t, ran)
}

func TestWithTx_RollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectBegin()
	mock.ExpectRollback()

	called := false
	WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		called = true
	})

	assert.True(t, called)
	assert.NoError(t, mock.ExpectationsWereMet())
}
