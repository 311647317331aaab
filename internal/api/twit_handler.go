package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/twit-api/internal/api/shared"
	"github.com/phrazzld/twit-api/internal/blob"
	"github.com/phrazzld/twit-api/internal/domain"
	"github.com/phrazzld/twit-api/internal/platform/logger"
	"github.com/phrazzld/twit-api/internal/service"
)

const (
	contentField = "content"
	imageField   = "image"

	twitDeletedMessage = "twit deleted successfully"
)

// TwitHandler handles twit-related HTTP requests. Every route expects the
// caller to be resolved by the authentication middleware.
type TwitHandler struct {
	twitService    service.TwitService
	userService    service.UserService
	saver          blob.Saver
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewTwitHandler creates a new TwitHandler.
// maxUploadBytes bounds the whole form body; zero disables the limit.
func NewTwitHandler(
	twitService service.TwitService,
	userService service.UserService,
	saver blob.Saver,
	maxUploadBytes int64,
	log *slog.Logger,
) *TwitHandler {
	if twitService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("twitService cannot be nil")
	}
	if userService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("userService cannot be nil")
	}
	if saver == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("saver cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &TwitHandler{
		twitService:    twitService,
		userService:    userService,
		saver:          saver,
		maxUploadBytes: maxUploadBytes,
		logger:         log.With(slog.String("component", "twit_handler")),
	}
}

// CreateTwit handles POST /api/twits/create.
func (h *TwitHandler) CreateTwit(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	caller, ok := shared.GetCaller(r.Context())
	if !ok {
		log.Warn("caller not found in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	if err := shared.ParseForm(w, r, h.maxUploadBytes); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	content, err := shared.RequiredFormValue(r, contentField)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	twit, err := domain.NewTwit(caller, content)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	image, ok := h.saveImage(w, r, log)
	if !ok {
		return
	}
	twit.Image = image

	if err := h.twitService.CreateTwit(r.Context(), twit); err != nil {
		if image != "" {
			h.discardImage(r, log, image)
		}
		HandleAPIError(w, r, err, "Failed to create twit")
		return
	}

	log.Info("twit created",
		slog.Int64("twit_id", twit.ID),
		slog.Int64("user_id", caller.ID),
		slog.Bool("has_image", twit.Image != ""))

	shared.RespondWithJSON(w, r, http.StatusCreated, twitToResponse(twit, caller))
}

// ListTwits handles GET /api/twits/.
func (h *TwitHandler) ListTwits(w http.ResponseWriter, r *http.Request) {
	caller, ok := shared.GetCaller(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	twits, err := h.twitService.ListTwits(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list twits")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, twitsToResponse(twits, caller))
}

// ListUserTwits handles GET /api/twits/user/{userId}.
// The target user must exist; an unknown user is 404 rather than an empty list.
func (h *TwitHandler) ListUserTwits(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	caller, userID, ok := handleCallerAndPathID(w, r, "userId", log)
	if !ok {
		return
	}

	target, err := h.userService.GetUser(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	twits, err := h.twitService.ListUserTwits(r.Context(), target.ID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list twits")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, twitsToResponse(twits, caller))
}

// UpdateTwit handles PUT /api/twits/{twitId}.
func (h *TwitHandler) UpdateTwit(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	caller, twitID, ok := handleCallerAndPathID(w, r, "twitId", log)
	if !ok {
		return
	}

	existing, err := h.twitService.GetTwit(r.Context(), twitID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	// Reject before anything is written to the upload directory.
	if err := h.twitService.CheckOwnership(caller.ID, existing); err != nil {
		HandleAPIError(w, r, err, "You can only edit your own posts")
		return
	}

	if err := shared.ParseForm(w, r, h.maxUploadBytes); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	content, err := shared.RequiredFormValue(r, contentField)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if err := domain.ValidateContent(content); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	image, ok := h.saveImage(w, r, log)
	if !ok {
		return
	}

	updated, err := h.twitService.UpdateTwit(r.Context(), caller.ID, twitID, content, image)
	if err != nil {
		if image != "" {
			h.discardImage(r, log, image)
		}
		HandleAPIError(w, r, err, updateFailureMessage(err))
		return
	}

	log.Info("twit updated",
		slog.Int64("twit_id", twitID),
		slog.Int64("user_id", caller.ID),
		slog.Bool("image_replaced", image != ""))

	shared.RespondWithJSON(w, r, http.StatusOK, twitToResponse(updated, caller))
}

// DeleteTwit handles DELETE /api/twits/{twitId}.
func (h *TwitHandler) DeleteTwit(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	caller, twitID, ok := handleCallerAndPathID(w, r, "twitId", log)
	if !ok {
		return
	}

	if err := h.twitService.DeleteTwit(r.Context(), caller.ID, twitID); err != nil {
		message := ""
		if MapErrorToStatusCode(err) == http.StatusForbidden {
			message = "You can only delete your own posts"
		}
		HandleAPIError(w, r, err, message)
		return
	}

	log.Info("twit deleted",
		slog.Int64("twit_id", twitID),
		slog.Int64("user_id", caller.ID))

	shared.RespondWithJSON(w, r, http.StatusOK, APIResponse{
		Status:  true,
		Message: twitDeletedMessage,
	})
}

// saveImage stores the optional image part and returns its reference, or ""
// when no file was supplied. On failure it writes the response and returns false.
func (h *TwitHandler) saveImage(w http.ResponseWriter, r *http.Request, log *slog.Logger) (string, bool) {
	file, err := shared.OptionalFile(r, imageField)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to read image")
		return "", false
	}
	if file == nil {
		return "", true
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			log.Warn("failed to close uploaded file", slog.String("error", closeErr.Error()))
		}
	}()

	ref, err := h.saver.Save(r.Context(), file.Name, file.Reader())
	if err != nil {
		HandleAPIError(w, r, err, "")
		return "", false
	}

	log.Debug("image saved",
		slog.String("reference", ref),
		slog.Int64("size", file.Size))
	return ref, true
}

// discardImage removes an image saved for a request that then failed.
// Removal is best effort; the request error is what the client sees.
func (h *TwitHandler) discardImage(r *http.Request, log *slog.Logger, ref string) {
	if err := h.saver.Remove(r.Context(), ref); err != nil {
		log.Warn("failed to remove orphaned image",
			slog.String("reference", ref),
			slog.String("error", err.Error()))
		return
	}
	log.Debug("removed orphaned image", slog.String("reference", ref))
}

func updateFailureMessage(err error) string {
	switch MapErrorToStatusCode(err) {
	case http.StatusForbidden:
		return "You can only edit your own posts"
	case http.StatusInternalServerError:
		return "Failed to update twit"
	default:
		return ""
	}
}
