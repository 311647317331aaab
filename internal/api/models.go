package api

import (
	"time"

	"github.com/phrazzld/twit-api/internal/domain"
)

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email    string `json:"email"     validate:"required,email"`
	FullName string `json:"full_name" validate:"required,max=100"`
	Password string `json:"password"  validate:"required,min=8,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	// UserID is the identifier of the authenticated user
	UserID int64 `json:"user_id"`

	// Token is the bearer token used for API authorization
	Token string `json:"token"`

	// ExpiresAt is the RFC 3339 timestamp when the token expires
	ExpiresAt string `json:"expires_at"`
}

// UserSummary is the public projection of a twit's owner.
type UserSummary struct {
	ID       int64  `json:"id"`
	FullName string `json:"full_name"`
}

// TwitResponse is the presentation object for a twit, computed per viewer.
type TwitResponse struct {
	ID        int64       `json:"id"`
	Content   string      `json:"content"`
	Image     string      `json:"image,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
	User      UserSummary `json:"user"`
	IsOwner   bool        `json:"is_owner"`
}

// APIResponse is a plain acknowledgement.
type APIResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
}

// twitToResponse maps a twit to its presentation relative to viewer.
func twitToResponse(twit *domain.Twit, viewer *domain.User) TwitResponse {
	resp := TwitResponse{
		ID:        twit.ID,
		Content:   twit.Content,
		Image:     twit.Image,
		CreatedAt: twit.CreatedAt,
		UpdatedAt: twit.UpdatedAt,
		User:      UserSummary{ID: twit.UserID},
	}
	if twit.User != nil {
		resp.User.FullName = twit.User.FullName
	}
	if viewer != nil {
		resp.IsOwner = twit.IsOwnedBy(viewer.ID)
	}
	return resp
}

// twitsToResponse maps twits in order relative to viewer.
func twitsToResponse(twits []*domain.Twit, viewer *domain.User) []TwitResponse {
	resp := make([]TwitResponse, 0, len(twits))
	for _, twit := range twits {
		resp = append(resp, twitToResponse(twit, viewer))
	}
	return resp
}
