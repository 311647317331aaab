package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/twit-api/internal/domain"
	"github.com/phrazzld/twit-api/internal/events"
	"github.com/phrazzld/twit-api/internal/platform/logger"
	"github.com/phrazzld/twit-api/internal/store"
)

// TwitService provides twit-related operations.
type TwitService interface {
	// CreateTwit persists a twit built by domain.NewTwit.
	CreateTwit(ctx context.Context, twit *domain.Twit) error

	// GetTwit retrieves a twit by ID. Returns store.ErrTwitNotFound when absent.
	GetTwit(ctx context.Context, twitID int64) (*domain.Twit, error)

	// ListTwits returns every twit, newest first.
	ListTwits(ctx context.Context) ([]*domain.Twit, error)

	// ListUserTwits returns the twits owned by userID, newest first.
	ListUserTwits(ctx context.Context, userID int64) ([]*domain.Twit, error)

	// CheckOwnership returns nil when callerID owns twit, an error wrapping
	// ErrNotOwned otherwise. It is the only ownership rule for mutations.
	CheckOwnership(callerID int64, twit *domain.Twit) error

	// UpdateTwit overwrites the content of a twit owned by callerID and, when
	// image is non-empty, replaces its image reference.
	UpdateTwit(ctx context.Context, callerID, twitID int64, content, image string) (*domain.Twit, error)

	// DeleteTwit removes a twit owned by callerID.
	DeleteTwit(ctx context.Context, callerID, twitID int64) error
}

// TwitServiceOption configures optional TwitService behavior.
type TwitServiceOption func(*twitServiceImpl)

// WithImagePruning makes the service emit events.TypeImageSuperseded and
// events.TypeTwitDeleted for image references that are no longer used.
func WithImagePruning(emitter events.EventEmitter) TwitServiceOption {
	return func(s *twitServiceImpl) {
		s.emitter = emitter
	}
}

// twitServiceImpl implements the TwitService interface
type twitServiceImpl struct {
	twitStore store.TwitStore
	emitter   events.EventEmitter
	logger    *slog.Logger
}

// Ensure twitServiceImpl implements TwitService interface
var _ TwitService = (*twitServiceImpl)(nil)

// NewTwitService creates a new TwitService.
// It returns an error if any of the required dependencies are nil.
func NewTwitService(
	twitStore store.TwitStore,
	logger *slog.Logger,
	opts ...TwitServiceOption,
) (TwitService, error) {
	if twitStore == nil {
		return nil, domain.NewValidationError("twitStore", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &twitServiceImpl{
		twitStore: twitStore,
		logger:    logger.With(slog.String("component", "twit_service")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// CreateTwit implements TwitService.CreateTwit
func (s *twitServiceImpl) CreateTwit(ctx context.Context, twit *domain.Twit) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.twitStore.Create(ctx, twit); err != nil {
		log.Error("failed to create twit",
			slog.String("error", err.Error()),
			slog.Int64("user_id", twit.UserID))
		return NewTwitServiceError("create_twit", "failed to save twit", err)
	}

	return nil
}

// GetTwit implements TwitService.GetTwit
func (s *twitServiceImpl) GetTwit(ctx context.Context, twitID int64) (*domain.Twit, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	twit, err := s.twitStore.GetByID(ctx, twitID)
	if err != nil {
		if store.IsNotFoundError(err) {
			log.Debug("twit not found", slog.Int64("twit_id", twitID))
			return nil, NewTwitServiceError("get_twit", "twit not found", store.ErrTwitNotFound)
		}
		log.Error("failed to retrieve twit",
			slog.String("error", err.Error()),
			slog.Int64("twit_id", twitID))
		return nil, NewTwitServiceError("get_twit", "failed to retrieve twit", err)
	}

	return twit, nil
}

// ListTwits implements TwitService.ListTwits
func (s *twitServiceImpl) ListTwits(ctx context.Context) ([]*domain.Twit, error) {
	twits, err := s.twitStore.List(ctx)
	if err != nil {
		return nil, NewTwitServiceError("list_twits", "failed to list twits", err)
	}
	return twits, nil
}

// ListUserTwits implements TwitService.ListUserTwits
func (s *twitServiceImpl) ListUserTwits(ctx context.Context, userID int64) ([]*domain.Twit, error) {
	twits, err := s.twitStore.ListByUser(ctx, userID)
	if err != nil {
		return nil, NewTwitServiceError("list_user_twits", "failed to list twits", err)
	}
	return twits, nil
}

// CheckOwnership implements TwitService.CheckOwnership
func (s *twitServiceImpl) CheckOwnership(callerID int64, twit *domain.Twit) error {
	if twit == nil || !twit.IsOwnedBy(callerID) {
		return fmt.Errorf("%w: twit", ErrNotOwned)
	}
	return nil
}

// UpdateTwit implements TwitService.UpdateTwit
func (s *twitServiceImpl) UpdateTwit(
	ctx context.Context,
	callerID, twitID int64,
	content, image string,
) (*domain.Twit, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var updated *domain.Twit
	var superseded string
	err := s.twitStore.WithinTx(ctx, func(ctx context.Context, txStore store.TwitStore) error {
		twit, err := txStore.GetForUpdate(ctx, twitID)
		if err != nil {
			return err
		}
		if err := s.CheckOwnership(callerID, twit); err != nil {
			return err
		}

		superseded, err = twit.Edit(content, image)
		if err != nil {
			return err
		}
		if err := txStore.Update(ctx, twit); err != nil {
			return err
		}

		updated = twit
		return nil
	})
	if err != nil {
		s.logMutationError(log, "update", callerID, twitID, err)
		return nil, NewTwitServiceError("update_twit", "failed to update twit", err)
	}

	log.Info("twit updated",
		slog.Int64("twit_id", twitID),
		slog.Bool("image_replaced", superseded != ""))

	if superseded != "" {
		s.emit(ctx, events.TypeImageSuperseded, events.ImagePayload{
			TwitID: twitID,
			UserID: callerID,
			Image:  superseded,
		})
	}

	return updated, nil
}

// DeleteTwit implements TwitService.DeleteTwit
func (s *twitServiceImpl) DeleteTwit(ctx context.Context, callerID, twitID int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var image string
	err := s.twitStore.WithinTx(ctx, func(ctx context.Context, txStore store.TwitStore) error {
		twit, err := txStore.GetForUpdate(ctx, twitID)
		if err != nil {
			return err
		}
		if err := s.CheckOwnership(callerID, twit); err != nil {
			return err
		}
		if err := txStore.Delete(ctx, twitID, callerID); err != nil {
			return err
		}

		image = twit.Image
		return nil
	})
	if err != nil {
		s.logMutationError(log, "delete", callerID, twitID, err)
		return NewTwitServiceError("delete_twit", "failed to delete twit", err)
	}

	log.Info("twit deleted", slog.Int64("twit_id", twitID))

	if image != "" {
		s.emit(ctx, events.TypeTwitDeleted, events.ImagePayload{
			TwitID: twitID,
			UserID: callerID,
			Image:  image,
		})
	}

	return nil
}

// emit publishes a cleanup event when pruning is enabled. The mutation has
// already committed, so failures are logged and not returned.
func (s *twitServiceImpl) emit(ctx context.Context, eventType string, payload events.ImagePayload) {
	if s.emitter == nil {
		return
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	event, err := events.NewEvent(eventType, payload)
	if err == nil {
		err = s.emitter.EmitEvent(ctx, event)
	}
	if err != nil {
		log.Warn("failed to emit image event",
			slog.String("error", err.Error()),
			slog.String("event_type", eventType),
			slog.Int64("twit_id", payload.TwitID))
	}
}

func (s *twitServiceImpl) logMutationError(log *slog.Logger, op string, callerID, twitID int64, err error) {
	attrs := []any{
		slog.String("operation", op),
		slog.Int64("twit_id", twitID),
		slog.Int64("caller_id", callerID),
		slog.String("error", err.Error()),
	}
	switch {
	case errors.Is(err, ErrNotOwned), store.IsNotFoundError(err), errors.Is(err, domain.ErrValidation):
		log.Debug("twit mutation rejected", attrs...)
	default:
		log.Error("twit mutation failed", attrs...)
	}
}
