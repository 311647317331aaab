package mocks

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"github.com/phrazzld/twit-api/internal/domain"
	"github.com/phrazzld/twit-api/internal/store"
)

// MockTwitStore implements store.TwitStore for testing.
// Without function overrides it keeps twits in memory and resolves owners
// through Users when set. Reads return copies.
type MockTwitStore struct {
	// Function fields for customizable behavior
	CreateFn       func(ctx context.Context, twit *domain.Twit) error
	GetByIDFn      func(ctx context.Context, id int64) (*domain.Twit, error)
	GetForUpdateFn func(ctx context.Context, id int64) (*domain.Twit, error)
	ListFn         func(ctx context.Context) ([]*domain.Twit, error)
	ListByUserFn   func(ctx context.Context, userID int64) ([]*domain.Twit, error)
	UpdateFn       func(ctx context.Context, twit *domain.Twit) error
	DeleteFn       func(ctx context.Context, id, userID int64) error

	// Users, when set, is used to populate Twit.User and to reject unknown owners.
	Users *MockUserStore

	// Data for default implementation
	Twits      map[int64]*domain.Twit
	LastTwitID int64

	// Call tracking
	CreateCalls int
	UpdateCalls int
	DeleteCalls int
	TxCalls     int
	TxRollbacks int

	mu sync.Mutex
}

// Ensure MockTwitStore implements store.TwitStore interface
var _ store.TwitStore = (*MockTwitStore)(nil)

// NewMockTwitStore creates a new in-memory mock twit store.
func NewMockTwitStore(users *MockUserStore) *MockTwitStore {
	return &MockTwitStore{
		Users: users,
		Twits: make(map[int64]*domain.Twit),
	}
}

// Create implements the TwitStore interface
func (m *MockTwitStore) Create(ctx context.Context, twit *domain.Twit) error {
	m.mu.Lock()
	m.CreateCalls++
	m.mu.Unlock()

	if m.CreateFn != nil {
		return m.CreateFn(ctx, twit)
	}
	if err := twit.Validate(); err != nil {
		return err
	}
	if m.Users != nil {
		if _, err := m.Users.GetByID(ctx, twit.UserID); err != nil {
			return store.ErrInvalidEntity
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastTwitID++
	twit.ID = m.LastTwitID
	stored := *twit
	stored.User = nil
	m.Twits[twit.ID] = &stored
	return nil
}

// GetByID implements the TwitStore interface
func (m *MockTwitStore) GetByID(ctx context.Context, id int64) (*domain.Twit, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return m.get(ctx, id)
}

// GetForUpdate implements the TwitStore interface
func (m *MockTwitStore) GetForUpdate(ctx context.Context, id int64) (*domain.Twit, error) {
	if m.GetForUpdateFn != nil {
		return m.GetForUpdateFn(ctx, id)
	}
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return m.get(ctx, id)
}

func (m *MockTwitStore) get(ctx context.Context, id int64) (*domain.Twit, error) {
	m.mu.Lock()
	twit, ok := m.Twits[id]
	var found domain.Twit
	if ok {
		found = *twit
	}
	m.mu.Unlock()

	if !ok {
		return nil, store.ErrTwitNotFound
	}
	m.withOwner(ctx, &found)
	return &found, nil
}

// List implements the TwitStore interface
func (m *MockTwitStore) List(ctx context.Context) ([]*domain.Twit, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx)
	}
	return m.filter(ctx, func(*domain.Twit) bool { return true }), nil
}

// ListByUser implements the TwitStore interface
func (m *MockTwitStore) ListByUser(ctx context.Context, userID int64) ([]*domain.Twit, error) {
	if m.ListByUserFn != nil {
		return m.ListByUserFn(ctx, userID)
	}
	return m.filter(ctx, func(t *domain.Twit) bool { return t.UserID == userID }), nil
}

// filter returns matching copies, newest first.
func (m *MockTwitStore) filter(ctx context.Context, keep func(*domain.Twit) bool) []*domain.Twit {
	m.mu.Lock()
	result := make([]*domain.Twit, 0, len(m.Twits))
	for _, twit := range m.Twits {
		if keep(twit) {
			found := *twit
			result = append(result, &found)
		}
	}
	m.mu.Unlock()

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})
	for _, twit := range result {
		m.withOwner(ctx, twit)
	}
	return result
}

// Update implements the TwitStore interface
func (m *MockTwitStore) Update(ctx context.Context, twit *domain.Twit) error {
	m.mu.Lock()
	m.UpdateCalls++
	m.mu.Unlock()

	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, twit)
	}
	if err := twit.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.Twits[twit.ID]
	if !ok || existing.UserID != twit.UserID {
		return store.ErrTwitNotFound
	}
	existing.Content = twit.Content
	existing.Image = twit.Image
	existing.UpdatedAt = twit.UpdatedAt
	return nil
}

// Delete implements the TwitStore interface
func (m *MockTwitStore) Delete(ctx context.Context, id, userID int64) error {
	m.mu.Lock()
	m.DeleteCalls++
	m.mu.Unlock()

	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id, userID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.Twits[id]
	if !ok || existing.UserID != userID {
		return store.ErrTwitNotFound
	}
	delete(m.Twits, id)
	return nil
}

// WithTx implements the TwitStore interface. The mock has no transactions.
func (m *MockTwitStore) WithTx(tx *sql.Tx) store.TwitStore {
	return m
}

// WithinTx implements the TwitStore interface by calling fn with the mock
// itself. It counts calls and errors returned by fn as rollbacks; writes made
// before the error are not undone.
func (m *MockTwitStore) WithinTx(
	ctx context.Context,
	fn func(ctx context.Context, txStore store.TwitStore) error,
) error {
	m.mu.Lock()
	m.TxCalls++
	m.mu.Unlock()

	err := fn(ctx, m)
	if err != nil {
		m.mu.Lock()
		m.TxRollbacks++
		m.mu.Unlock()
	}
	return err
}

func (m *MockTwitStore) withOwner(ctx context.Context, twit *domain.Twit) {
	if m.Users == nil {
		return
	}
	if owner, err := m.Users.GetByID(ctx, twit.UserID); err == nil {
		twit.User = owner
	}
}
