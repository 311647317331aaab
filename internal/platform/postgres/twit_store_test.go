package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/twit-api/internal/domain"
	"github.com/phrazzld/twit-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var twitColumns = []string{
	"id", "user_id", "content", "image", "created_at", "updated_at",
	"u_id", "email", "full_name", "u_created_at", "u_updated_at",
}

func TestPostgresTwitStore_Create(t *testing.T) {
	t.Parallel()

	owner := &domain.User{ID: 1, Email: "a@b.co", FullName: "A B"}

	t.Run("success", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewPostgresTwitStore(db, nil)

		twit, err := domain.NewTwit(owner, "hello world")
		require.NoError(t, err)
		twit.Image = "/uploads/abc_cat.png"

		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO twits")).
			WithArgs(int64(1), "hello world", "/uploads/abc_cat.png", sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(11)))

		require.NoError(t, s.Create(context.Background(), twit))
		assert.Equal(t, int64(11), twit.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown owner", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewPostgresTwitStore(db, nil)

		twit, err := domain.NewTwit(&domain.User{ID: 99}, "x")
		require.NoError(t, err)

		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO twits")).
			WillReturnError(&pgconn.PgError{Code: foreignKeyViolationCode})

		err = s.Create(context.Background(), twit)
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
	})
}

func TestPostgresTwitStore_GetByID(t *testing.T) {
	t.Parallel()
	now := time.Now().UTC()

	t.Run("populates owner", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewPostgresTwitStore(db, nil)

		mock.ExpectQuery(regexp.QuoteMeta("WHERE t.id = $1")).
			WithArgs(int64(5)).
			WillReturnRows(sqlmock.NewRows(twitColumns).
				AddRow(int64(5), int64(2), "hi", "", now, now, int64(2), "c@d.co", "C D", now, now))

		twit, err := s.GetByID(context.Background(), 5)
		require.NoError(t, err)
		assert.Equal(t, "hi", twit.Content)
		assert.Empty(t, twit.Image)
		require.NotNil(t, twit.User)
		assert.Equal(t, "C D", twit.User.FullName)
	})

	t.Run("not found", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewPostgresTwitStore(db, nil)

		mock.ExpectQuery(regexp.QuoteMeta("WHERE t.id = $1")).
			WithArgs(int64(5)).
			WillReturnError(sql.ErrNoRows)

		_, err := s.GetByID(context.Background(), 5)
		assert.ErrorIs(t, err, store.ErrTwitNotFound)
	})

	t.Run("database failure", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewPostgresTwitStore(db, nil)

		mock.ExpectQuery(regexp.QuoteMeta("WHERE t.id = $1")).
			WillReturnError(errors.New("connection reset"))

		_, err := s.GetByID(context.Background(), 5)
		var storeErr *store.StoreError
		assert.ErrorAs(t, err, &storeErr)
		assert.False(t, store.IsNotFoundError(err))
	})
}

func TestPostgresTwitStore_List(t *testing.T) {
	t.Parallel()
	now := time.Now().UTC()

	t.Run("all", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewPostgresTwitStore(db, nil)

		mock.ExpectQuery(regexp.QuoteMeta("ORDER BY t.created_at DESC")).
			WillReturnRows(sqlmock.NewRows(twitColumns).
				AddRow(int64(2), int64(1), "second", "", now, now, int64(1), "a@b.co", "A", now, now).
				AddRow(int64(1), int64(3), "first", "/uploads/x_y.png", now, now, int64(3), "c@d.co", "C", now, now))

		twits, err := s.List(context.Background())
		require.NoError(t, err)
		require.Len(t, twits, 2)
		assert.Equal(t, int64(2), twits[0].ID)
		assert.Equal(t, "/uploads/x_y.png", twits[1].Image)
	})

	t.Run("by user empty", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewPostgresTwitStore(db, nil)

		mock.ExpectQuery(regexp.QuoteMeta("WHERE t.user_id = $1")).
			WithArgs(int64(4)).
			WillReturnRows(sqlmock.NewRows(twitColumns))

		twits, err := s.ListByUser(context.Background(), 4)
		require.NoError(t, err)
		assert.NotNil(t, twits)
		assert.Empty(t, twits)
	})
}

func TestPostgresTwitStore_UpdateAndDelete(t *testing.T) {
	t.Parallel()

	twit := &domain.Twit{ID: 5, UserID: 2, Content: "edited", UpdatedAt: time.Now().UTC()}

	t.Run("update scoped to owner", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewPostgresTwitStore(db, nil)

		mock.ExpectExec(regexp.QuoteMeta("UPDATE twits")).
			WithArgs("edited", "", sqlmock.AnyArg(), int64(5), int64(2)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, s.Update(context.Background(), twit))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("update without matching row", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewPostgresTwitStore(db, nil)

		mock.ExpectExec(regexp.QuoteMeta("UPDATE twits")).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, s.Update(context.Background(), twit), store.ErrTwitNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewPostgresTwitStore(db, nil)

		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM twits WHERE id = $1 AND user_id = $2")).
			WithArgs(int64(5), int64(2)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, s.Delete(context.Background(), 5, 2))
	})

	t.Run("delete missing", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewPostgresTwitStore(db, nil)

		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM twits")).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, s.Delete(context.Background(), 5, 2), store.ErrTwitNotFound)
	})
}

func TestPostgresTwitStore_WithinTx(t *testing.T) {
	t.Parallel()
	now := time.Now().UTC()

	t.Run("locks, updates and commits", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewPostgresTwitStore(db, nil)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE OF t")).
			WithArgs(int64(5)).
			WillReturnRows(sqlmock.NewRows(twitColumns).
				AddRow(int64(5), int64(2), "hi", "", now, now, int64(2), "c@d.co", "C D", now, now))
		mock.ExpectExec(regexp.QuoteMeta("UPDATE twits")).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := s.WithinTx(context.Background(), func(ctx context.Context, txStore store.TwitStore) error {
			twit, err := txStore.GetForUpdate(ctx, 5)
			if err != nil {
				return err
			}
			twit.Content = "edited"
			return txStore.Update(ctx, twit)
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back on error", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewPostgresTwitStore(db, nil)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE OF t")).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		err := s.WithinTx(context.Background(), func(ctx context.Context, txStore store.TwitStore) error {
			_, err := txStore.GetForUpdate(ctx, 5)
			return err
		})
		assert.ErrorIs(t, err, store.ErrTwitNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
