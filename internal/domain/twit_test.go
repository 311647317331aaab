package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestNewTwit(t *testing.T) {
	owner := &User{ID: 7, Email: "owner@example.com", FullName: "Owner"}

	twit, err := NewTwit(owner, "hello world")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if twit.UserID != 7 {
		t.Errorf("Expected user ID 7, got %d", twit.UserID)
	}
	if twit.User != owner {
		t.Error("Expected owner to be attached")
	}
	if twit.Content != "hello world" {
		t.Errorf("Expected content %q, got %q", "hello world", twit.Content)
	}
	if twit.Image != "" {
		t.Errorf("Expected no image, got %q", twit.Image)
	}
	if twit.CreatedAt.IsZero() {
		t.Error("Expected non-zero CreatedAt time")
	}

	if _, err := NewTwit(nil, "x"); !errors.Is(err, ErrTwitUserIDEmpty) {
		t.Errorf("Expected ErrTwitUserIDEmpty, got %v", err)
	}
	if _, err := NewTwit(&User{}, "x"); !errors.Is(err, ErrTwitUserIDEmpty) {
		t.Errorf("Expected ErrTwitUserIDEmpty for unsaved owner, got %v", err)
	}
}

func TestTwitValidate(t *testing.T) {
	if err := (&Twit{UserID: 1}).Validate(); err != nil {
		t.Errorf("Expected empty content to be valid, got %v", err)
	}

	atLimit := &Twit{UserID: 1, Content: strings.Repeat("é", MaxContentLength)}
	if err := atLimit.Validate(); err != nil {
		t.Errorf("Expected %d multi-byte characters to be valid, got %v", MaxContentLength, err)
	}

	overLimit := &Twit{UserID: 1, Content: strings.Repeat("a", MaxContentLength+1)}
	if err := overLimit.Validate(); !errors.Is(err, ErrTwitContentTooLong) {
		t.Errorf("Expected ErrTwitContentTooLong, got %v", err)
	}

	for _, content := range []string{"\xff\xfe", "a\x00b", "ok\xc3"} {
		if _, err := NewTwit(&User{ID: 1}, content); !errors.Is(err, ErrTwitContentInvalid) {
			t.Errorf("Expected ErrTwitContentInvalid for %q, got %v", content, err)
		}
	}

	if _, err := NewTwit(&User{ID: 1}, "héllo 👋"); err != nil {
		t.Errorf("Expected multibyte content to be valid, got %v", err)
	}
}

func TestTwitIsOwnedBy(t *testing.T) {
	twit := &Twit{UserID: 3}
	if !twit.IsOwnedBy(3) {
		t.Error("Expected owner to match")
	}
	if twit.IsOwnedBy(4) {
		t.Error("Expected other user not to match")
	}
	if (&Twit{}).IsOwnedBy(0) {
		t.Error("Expected zero user never to own anything")
	}
}

func TestTwitEdit(t *testing.T) {
	t.Run("content only keeps image", func(t *testing.T) {
		twit := &Twit{UserID: 1, Content: "v1", Image: "/uploads/a_cat.png"}
		superseded, err := twit.Edit("v2", "")
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if superseded != "" {
			t.Errorf("Expected nothing superseded, got %q", superseded)
		}
		if twit.Content != "v2" || twit.Image != "/uploads/a_cat.png" {
			t.Errorf("Unexpected twit state: %+v", twit)
		}
	})

	t.Run("new image supersedes old", func(t *testing.T) {
		twit := &Twit{UserID: 1, Content: "v1", Image: "/uploads/a_cat.png"}
		superseded, err := twit.Edit("v2", "/uploads/b_dog.png")
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if superseded != "/uploads/a_cat.png" {
			t.Errorf("Expected old image superseded, got %q", superseded)
		}
		if twit.Image != "/uploads/b_dog.png" {
			t.Errorf("Expected new image, got %q", twit.Image)
		}
	})

	t.Run("first image supersedes nothing", func(t *testing.T) {
		twit := &Twit{UserID: 1}
		superseded, err := twit.Edit("v2", "/uploads/b_dog.png")
		if err != nil || superseded != "" {
			t.Errorf("Expected no supersede and no error, got %q, %v", superseded, err)
		}
	})

	t.Run("invalid content leaves twit unchanged", func(t *testing.T) {
		twit := &Twit{UserID: 1, Content: "v1"}
		_, err := twit.Edit(strings.Repeat("a", MaxContentLength+1), "/uploads/c.png")
		if !errors.Is(err, ErrTwitContentTooLong) {
			t.Fatalf("Expected ErrTwitContentTooLong, got %v", err)
		}
		if twit.Content != "v1" || twit.Image != "" {
			t.Errorf("Expected twit unchanged, got %+v", twit)
		}
	})

	t.Run("malformed content leaves twit unchanged", func(t *testing.T) {
		twit := &Twit{UserID: 1, Content: "v1"}
		_, err := twit.Edit("bad\x00byte", "")
		if !errors.Is(err, ErrTwitContentInvalid) {
			t.Fatalf("Expected ErrTwitContentInvalid, got %v", err)
		}
		if twit.Content != "v1" {
			t.Errorf("Expected twit unchanged, got %+v", twit)
		}
	})
}
