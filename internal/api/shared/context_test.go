package shared

import (
	"context"
	"regexp"
	"testing"

	"github.com/phrazzld/twit-api/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestTraceID(t *testing.T) {
	t.Parallel()

	assert.Empty(t, GetTraceID(context.Background()))

	ctx := SetTraceID(context.Background())
	traceID := GetTraceID(ctx)
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{32}$`), traceID)

	other := GetTraceID(SetTraceID(context.Background()))
	assert.NotEqual(t, traceID, other)
}

func TestFallbackTraceID(t *testing.T) {
	t.Parallel()
	assert.Len(t, generateFallbackTraceID(), TraceIDLength*2)
}

func TestCaller(t *testing.T) {
	t.Parallel()

	_, ok := GetCaller(context.Background())
	assert.False(t, ok)

	_, ok = GetCaller(WithCaller(context.Background(), nil))
	assert.False(t, ok)

	alice := &domain.User{ID: 3, FullName: "Alice"}
	got, ok := GetCaller(WithCaller(context.Background(), alice))
	assert.True(t, ok)
	assert.Same(t, alice, got)
}
