package reqctx

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type fakeClaims struct {
	id      uuid.UUID
	expired bool
}

func (f fakeClaims) GetUserID() uuid.UUID     { return f.id }
func (f fakeClaims) GetSessionID() *uuid.UUID { return nil }
func (f fakeClaims) GetTokenType() string     { return "access" }
func (f fakeClaims) IsExpired() bool          { return f.expired }

func TestRequestMeta(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, RequestIDFromContext(ctx))

	ctx = WithRequestMeta(ctx, &RequestMeta{RequestID: "rid-1", RequestedAt: time.Now()})
	assert.Equal(t, "rid-1", RequestIDFromContext(ctx))
	assert.Equal(t, "rid-1", MustRequestMeta(ctx).RequestID)
}

func TestClaims(t *testing.T) {
	ctx := context.Background()
	assert.False(t, IsAuthenticated(ctx))
	_, ok := UserIDFromContext(ctx)
	assert.False(t, ok)

	id := uuid.New()
	ctx = WithClaims(ctx, fakeClaims{id: id})
	assert.True(t, IsAuthenticated(ctx))
	got, ok := UserIDFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, id, got)

	expired := WithClaims(context.Background(), fakeClaims{id: id, expired: true})
	assert.False(t, IsAuthenticated(expired))
}

func TestLoggerNeverNil(t *testing.T) {
	assert.NotNil(t, Logger(context.Background()))
	ctx := WithRequestMeta(context.Background(), &RequestMeta{RequestID: "x"})
	assert.NotNil(t, Logger(WithClaims(ctx, fakeClaims{id: uuid.New()})))
}
