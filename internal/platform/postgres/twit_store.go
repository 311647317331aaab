package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/twit-api/internal/domain"
	"github.com/phrazzld/twit-api/internal/platform/logger"
	"github.com/phrazzld/twit-api/internal/store"
)

// twitSelect reads a twit joined with its owner. Scanned by scanTwit.
const twitSelect = `
	SELECT t.id, t.user_id, t.content, COALESCE(t.image, ''), t.created_at, t.updated_at,
	       u.id, u.email, u.full_name, u.created_at, u.updated_at
	FROM twits t
	JOIN users u ON u.id = t.user_id
`

// PostgresTwitStore implements the store.TwitStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTwitStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTwitStore creates a new PostgreSQL implementation of the TwitStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresTwitStore(db store.DBTX, logger *slog.Logger) *PostgresTwitStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTwitStore{
		db:     db,
		logger: logger.With(slog.String("component", "twit_store")),
	}
}

// Ensure PostgresTwitStore implements store.TwitStore interface
var _ store.TwitStore = (*PostgresTwitStore)(nil)

// Create implements store.TwitStore.Create
func (s *PostgresTwitStore) Create(ctx context.Context, twit *domain.Twit) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := twit.Validate(); err != nil {
		log.Warn("twit validation failed during create", slog.String("error", err.Error()))
		return err
	}

	query := `
		INSERT INTO twits (user_id, content, image, created_at, updated_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5)
		RETURNING id
	`
	err := s.db.QueryRowContext(
		ctx,
		query,
		twit.UserID,
		twit.Content,
		twit.Image,
		twit.CreatedAt,
		twit.UpdatedAt,
	).Scan(&twit.ID)
	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during twit creation",
				slog.Int64("user_id", twit.UserID))
			return fmt.Errorf("%w: user with ID %d not found", store.ErrInvalidEntity, twit.UserID)
		}
		log.Error("failed to create twit",
			slog.String("error", err.Error()),
			slog.Int64("user_id", twit.UserID))
		return store.NewStoreError("twit", "create", "insert failed", MapError(err))
	}

	log.Info("twit created",
		slog.Int64("twit_id", twit.ID),
		slog.Int64("user_id", twit.UserID),
		slog.Bool("has_image", twit.Image != ""))
	return nil
}

// GetByID implements store.TwitStore.GetByID
func (s *PostgresTwitStore) GetByID(ctx context.Context, id int64) (*domain.Twit, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	row := s.db.QueryRowContext(ctx, twitSelect+` WHERE t.id = $1`, id)
	twit, err := scanTwit(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("twit not found", slog.Int64("twit_id", id))
			return nil, store.ErrTwitNotFound
		}
		log.Error("failed to get twit by ID",
			slog.String("error", err.Error()),
			slog.Int64("twit_id", id))
		return nil, store.NewStoreError("twit", "get", "query failed", MapError(err))
	}

	return twit, nil
}

// GetForUpdate implements store.TwitStore.GetForUpdate
func (s *PostgresTwitStore) GetForUpdate(ctx context.Context, id int64) (*domain.Twit, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	row := s.db.QueryRowContext(ctx, twitSelect+` WHERE t.id = $1 FOR UPDATE OF t`, id)
	twit, err := scanTwit(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTwitNotFound
		}
		log.Error("failed to lock twit",
			slog.String("error", err.Error()),
			slog.Int64("twit_id", id))
		return nil, store.NewStoreError("twit", "get_for_update", "query failed", MapError(err))
	}

	return twit, nil
}

// List implements store.TwitStore.List
func (s *PostgresTwitStore) List(ctx context.Context) ([]*domain.Twit, error) {
	return s.list(ctx, twitSelect+` ORDER BY t.created_at DESC, t.id DESC`)
}

// ListByUser implements store.TwitStore.ListByUser
func (s *PostgresTwitStore) ListByUser(ctx context.Context, userID int64) ([]*domain.Twit, error) {
	return s.list(ctx, twitSelect+` WHERE t.user_id = $1 ORDER BY t.created_at DESC, t.id DESC`, userID)
}

func (s *PostgresTwitStore) list(ctx context.Context, query string, args ...any) ([]*domain.Twit, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list twits", slog.String("error", err.Error()))
		return nil, store.NewStoreError("twit", "list", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	twits := make([]*domain.Twit, 0)
	for rows.Next() {
		twit, err := scanTwit(rows)
		if err != nil {
			return nil, store.NewStoreError("twit", "list", "scan failed", err)
		}
		twits = append(twits, twit)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("twit", "list", "iteration failed", err)
	}

	return twits, nil
}

// Update implements store.TwitStore.Update
func (s *PostgresTwitStore) Update(ctx context.Context, twit *domain.Twit) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := twit.Validate(); err != nil {
		return err
	}

	query := `
		UPDATE twits
		SET content = $1, image = NULLIF($2, ''), updated_at = $3
		WHERE id = $4 AND user_id = $5
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		twit.Content,
		twit.Image,
		twit.UpdatedAt,
		twit.ID,
		twit.UserID,
	)
	if err != nil {
		log.Error("failed to update twit",
			slog.String("error", err.Error()),
			slog.Int64("twit_id", twit.ID))
		return store.NewStoreError("twit", "update", "exec failed", MapError(err))
	}

	if err := CheckRowsAffected(result, store.ErrTwitNotFound); err != nil {
		return err
	}

	log.Debug("twit updated", slog.Int64("twit_id", twit.ID))
	return nil
}

// Delete implements store.TwitStore.Delete
func (s *PostgresTwitStore) Delete(ctx context.Context, id, userID int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM twits WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		log.Error("failed to delete twit",
			slog.String("error", err.Error()),
			slog.Int64("twit_id", id))
		return store.NewStoreError("twit", "delete", "exec failed", MapError(err))
	}

	if err := CheckRowsAffected(result, store.ErrTwitNotFound); err != nil {
		return err
	}

	log.Info("twit deleted", slog.Int64("twit_id", id), slog.Int64("user_id", userID))
	return nil
}

// WithTx implements store.TwitStore.WithTx
func (s *PostgresTwitStore) WithTx(tx *sql.Tx) store.TwitStore {
	return &PostgresTwitStore{
		db:     tx,
		logger: s.logger,
	}
}

// WithinTx implements store.TwitStore.WithinTx
func (s *PostgresTwitStore) WithinTx(
	ctx context.Context,
	fn func(ctx context.Context, txStore store.TwitStore) error,
) error {
	db, ok := s.db.(*sql.DB)
	if !ok {
		return fn(ctx, s)
	}
	return store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, s.WithTx(tx))
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTwit(row rowScanner) (*domain.Twit, error) {
	var twit domain.Twit
	var owner domain.User
	err := row.Scan(
		&twit.ID,
		&twit.UserID,
		&twit.Content,
		&twit.Image,
		&twit.CreatedAt,
		&twit.UpdatedAt,
		&owner.ID,
		&owner.Email,
		&owner.FullName,
		&owner.CreatedAt,
		&owner.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	twit.User = &owner
	return &twit, nil
}
