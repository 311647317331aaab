package postgres

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/twit-api/internal/domain"
	"github.com/phrazzld/twit-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func TestPostgresUserStore_Create(t *testing.T) {
	t.Parallel()

	t.Run("hashes password and assigns id", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewPostgresUserStore(db, bcrypt.MinCost, nil)

		user, err := domain.NewUser("ada@example.com", "Ada Lovelace", "password123")
		require.NoError(t, err)

		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
			WithArgs("ada@example.com", "Ada Lovelace", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

		require.NoError(t, s.Create(context.Background(), user))

		assert.Equal(t, int64(7), user.ID)
		assert.Empty(t, user.Password)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte("password123")))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate email", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewPostgresUserStore(db, bcrypt.MinCost, nil)

		user, err := domain.NewUser("ada@example.com", "Ada Lovelace", "password123")
		require.NoError(t, err)

		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
			WillReturnError(&pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "users_email_key"})

		err = s.Create(context.Background(), user)
		assert.ErrorIs(t, err, store.ErrEmailExists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("invalid user never reaches the database", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewPostgresUserStore(db, bcrypt.MinCost, nil)

		err := s.Create(context.Background(), &domain.User{Email: "not-an-email", FullName: "X", Password: "password123"})
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresUserStore_Get(t *testing.T) {
	t.Parallel()

	columns := []string{"id", "email", "full_name", "hashed_password", "created_at", "updated_at"}
	now := time.Now().UTC()

	t.Run("by id", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewPostgresUserStore(db, bcrypt.MinCost, nil)

		mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1")).
			WithArgs(int64(3)).
			WillReturnRows(sqlmock.NewRows(columns).AddRow(int64(3), "a@b.co", "A B", "hash", now, now))

		user, err := s.GetByID(context.Background(), 3)
		require.NoError(t, err)
		assert.Equal(t, "A B", user.FullName)
		assert.Equal(t, "hash", user.HashedPassword)
	})

	t.Run("by email not found", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewPostgresUserStore(db, bcrypt.MinCost, nil)

		mock.ExpectQuery(regexp.QuoteMeta("WHERE email = $1")).
			WithArgs("missing@b.co").
			WillReturnError(sql.ErrNoRows)

		_, err := s.GetByEmail(context.Background(), "missing@b.co")
		assert.ErrorIs(t, err, store.ErrUserNotFound)
	})
}

func TestNewPostgresUserStore_PanicsOnNilDB(t *testing.T) {
	assert.Panics(t, func() { NewPostgresUserStore(nil, bcrypt.MinCost, nil) })
}
