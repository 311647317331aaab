package blob

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/twit-api/internal/events"
)

// CleanupHandler removes image files that twits no longer reference.
type CleanupHandler struct {
	saver  Saver
	logger *slog.Logger
}

// Ensure CleanupHandler implements events.EventHandler interface
var _ events.EventHandler = (*CleanupHandler)(nil)

// NewCleanupHandler creates a handler removing files through saver.
func NewCleanupHandler(saver Saver, logger *slog.Logger) *CleanupHandler {
	if saver == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("saver cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CleanupHandler{
		saver:  saver,
		logger: logger.With(slog.String("component", "blob_cleanup")),
	}
}

// HandleEvent implements events.EventHandler.
func (h *CleanupHandler) HandleEvent(ctx context.Context, event *events.Event) error {
	if event.Type != events.TypeImageSuperseded && event.Type != events.TypeTwitDeleted {
		return nil
	}

	var payload events.ImagePayload
	if err := event.UnmarshalPayload(&payload); err != nil {
		return fmt.Errorf("decode %s payload: %w", event.Type, err)
	}
	if payload.Image == "" {
		return nil
	}

	if err := h.saver.Remove(ctx, payload.Image); err != nil {
		return err
	}

	h.logger.Info("removed unused image",
		slog.String("event_type", event.Type),
		slog.Int64("twit_id", payload.TwitID))
	return nil
}
