package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxContentLength is the maximum number of characters in a twit.
const MaxContentLength = 280

// Twit-specific validation errors
var (
	// ErrTwitUserIDEmpty is returned when a twit has no owner.
	ErrTwitUserIDEmpty = fmt.Errorf("%w: twit user ID cannot be empty", ErrValidation)

	// ErrTwitContentTooLong is returned when content exceeds MaxContentLength.
	ErrTwitContentTooLong = fmt.Errorf("%w: twit content exceeds %d characters", ErrValidation, MaxContentLength)

	// ErrTwitContentInvalid is returned when content is not valid UTF-8 or
	// contains NUL bytes, neither of which PostgreSQL TEXT can store.
	ErrTwitContentInvalid = fmt.Errorf("%w: twit content must be valid UTF-8 text", ErrValidation)
)

// Twit is a short text post with an optional image attachment, owned by one user.
type Twit struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Content   string    `json:"content"`
	Image     string    `json:"image,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// User is the owner, populated by stores on read.
	User *User `json:"-"`
}

// NewTwit creates a new, not yet persisted twit owned by owner.
func NewTwit(owner *User, content string) (*Twit, error) {
	if owner == nil {
		return nil, ErrTwitUserIDEmpty
	}

	now := time.Now().UTC()
	twit := &Twit{
		UserID:    owner.ID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
		User:      owner,
	}

	if err := twit.Validate(); err != nil {
		return nil, err
	}

	return twit, nil
}

// Validate checks if the Twit has valid data. Empty content is allowed.
func (t *Twit) Validate() error {
	if t.UserID == 0 {
		return ErrTwitUserIDEmpty
	}
	if err := ValidateContent(t.Content); err != nil {
		return err
	}
	return nil
}

// IsOwnedBy reports whether userID owns the twit.
func (t *Twit) IsOwnedBy(userID int64) bool {
	return userID != 0 && t.UserID == userID
}

// Edit overwrites the content and, when image is non-empty, replaces the
// image reference. It returns the superseded image reference, if any.
// On validation failure the twit is left unchanged.
func (t *Twit) Edit(content, image string) (string, error) {
	origContent := t.Content
	t.Content = content
	if err := t.Validate(); err != nil {
		t.Content = origContent
		return "", err
	}

	var superseded string
	if image != "" {
		if t.Image != "" && t.Image != image {
			superseded = t.Image
		}
		t.Image = image
	}

	t.UpdatedAt = time.Now().UTC()
	return superseded, nil
}

// ValidateContent checks twit content on its own, before a twit exists.
func ValidateContent(content string) error {
	if !utf8.ValidString(content) || strings.ContainsRune(content, 0) {
		return ErrTwitContentInvalid
	}
	if utf8.RuneCountInString(content) > MaxContentLength {
		return ErrTwitContentTooLong
	}
	return nil
}
