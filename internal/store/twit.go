package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/twit-api/internal/domain"
)

// TwitStore defines the interface for twit data persistence.
// Read methods populate Twit.User with the owner.
type TwitStore interface {
	// Create saves a new twit and assigns its ID.
	// Returns ErrInvalidEntity if the owner does not exist.
	Create(ctx context.Context, twit *domain.Twit) error

	// GetByID retrieves a twit by ID.
	// Returns ErrTwitNotFound if the twit does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Twit, error)

	// GetForUpdate retrieves a twit by ID and locks its row until the
	// surrounding transaction ends. Outside a transaction it behaves like GetByID.
	GetForUpdate(ctx context.Context, id int64) (*domain.Twit, error)

	// List returns every twit, newest first.
	List(ctx context.Context) ([]*domain.Twit, error)

	// ListByUser returns the twits owned by userID, newest first.
	ListByUser(ctx context.Context, userID int64) ([]*domain.Twit, error)

	// Update persists content, image and updated_at of an existing twit.
	// The write is scoped to twit.UserID; returns ErrTwitNotFound when no
	// twit with that ID belongs to that user.
	Update(ctx context.Context, twit *domain.Twit) error

	// Delete removes the twit with the given ID owned by userID.
	// Returns ErrTwitNotFound when no such twit exists for that user.
	Delete(ctx context.Context, id, userID int64) error

	// WithTx returns a new TwitStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) TwitStore

	// WithinTx runs fn in a transaction with a TwitStore bound to it.
	// The transaction commits when fn returns nil. A store that is already
	// bound to a transaction calls fn with itself.
	WithinTx(ctx context.Context, fn func(ctx context.Context, txStore TwitStore) error) error
}
